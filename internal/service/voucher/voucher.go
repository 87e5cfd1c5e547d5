package voucher

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/logger"
	"pointsadmin/internal/models"
	"pointsadmin/internal/repository"
)

const (
	// MaxBatchCount bounds one generate call; it caps the worst-case
	// number of collision retries a single admin action can cause
	MaxBatchCount = 5000

	// maxDrawsPerSlot bounds retries for a single card before the slot is
	// reported failed instead of looping on a crowded code space
	maxDrawsPerSlot = 10
)

// GenerationError reports the slots that exhausted their retry budget.
// Vouchers for all other slots are committed and returned alongside it.
type GenerationError struct {
	FailedSlots []int
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("could not generate unique codes for %d slots: %v", len(e.FailedSlots), e.FailedSlots)
}

func (e *GenerationError) Unwrap() error {
	return apperrors.ErrCodeRetryBudget
}

type GenerateParams struct {
	Count      int
	FaceValue  decimal.Decimal
	PointValue int64
	CodeRule   string
	PwdRule    string
}

type Service struct {
	storage repository.Storage
	logger  logger.Logger
}

func NewService(storage repository.Storage, l logger.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  l,
	}
}

// GenerateBatch creates Count vouchers with fresh random codes and
// passwords. Every card is committed individually through the
// insert-if-absent repository call, so a collision (with persisted codes or
// with an earlier card of this batch) only costs a retry of that one slot.
func (s *Service) GenerateBatch(ctx context.Context, p GenerateParams) ([]models.Voucher, error) {
	if p.Count < 1 || p.Count > MaxBatchCount {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", apperrors.ErrCountOutOfRange, p.Count, MaxBatchCount)
	}

	codeAlphabet, err := Alphabet(p.CodeRule)
	if err != nil {
		return nil, err
	}
	pwdAlphabet, err := Alphabet(p.PwdRule)
	if err != nil {
		return nil, err
	}

	vouchers := make([]models.Voucher, 0, p.Count)
	var failedSlots []int

	for slot := 0; slot < p.Count; slot++ {
		v, err := s.generateOne(ctx, p, codeAlphabet, pwdAlphabet)
		switch {
		case err == nil:
			vouchers = append(vouchers, v)
		case errors.Is(err, apperrors.ErrCodeRetryBudget):
			s.logger.Warn("Voucher slot exhausted retry budget", "slot", slot)
			failedSlots = append(failedSlots, slot)
		default:
			// Infrastructure failure: stop here, committed cards stay
			return vouchers, err
		}
	}

	if len(failedSlots) > 0 {
		return vouchers, &GenerationError{FailedSlots: failedSlots}
	}

	return vouchers, nil
}

func (s *Service) generateOne(ctx context.Context, p GenerateParams, codeAlphabet, pwdAlphabet string) (models.Voucher, error) {
	for draw := 0; draw < maxDrawsPerSlot; draw++ {
		code, err := randomString(codeAlphabet, models.VoucherCodeLength)
		if err != nil {
			return models.Voucher{}, err
		}
		password, err := randomString(pwdAlphabet, models.VoucherPasswordLength)
		if err != nil {
			return models.Voucher{}, err
		}

		v, err := s.storage.Voucher().CreateVoucher(ctx, repository.CreateVoucherParams{
			Code:       code,
			Password:   password,
			FaceValue:  p.FaceValue,
			PointValue: p.PointValue,
		})

		switch {
		case err == nil:
			return v, nil
		case errors.Is(err, apperrors.ErrVoucherCodeTaken):
			continue
		default:
			return models.Voucher{}, err
		}
	}

	return models.Voucher{}, apperrors.ErrCodeRetryBudget
}

// List returns every persisted voucher, oldest first
func (s *Service) List(ctx context.Context) ([]models.Voucher, error) {
	return s.storage.Voucher().ListVouchers(ctx)
}
