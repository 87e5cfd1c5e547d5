package withdrawal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/logger"
	"pointsadmin/internal/models"
	"pointsadmin/internal/repository"
)

// IDError names one request that could not be processed and why
type IDError struct {
	ID  uuid.UUID
	Err error
}

// BatchResult reports how a settle or cancel batch went. Count is the number
// of requests actually transitioned; Failed lists the rest with reasons.
type BatchResult struct {
	Count  int
	Failed []IDError
}

func (r BatchResult) Ok() bool {
	return len(r.Failed) == 0
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

// Settle moves every referenced pending request to SETTLED: frozen points
// are released, one ledger entry is appended and the status flips, all in
// one transaction per request. Requests that are missing or already settled
// are reported in the result and skipped, never deducted twice, so the call
// is safe to retry with the same or an overlapping id set.
func (s *Service) Settle(ctx context.Context, ids []uuid.UUID) (BatchResult, error) {
	if len(ids) == 0 {
		return BatchResult{}, apperrors.ErrEmptyIDSet
	}

	var result BatchResult
	for _, id := range dedupe(ids) {
		err := s.settleOne(ctx, id)
		if err != nil {
			s.logger.Warn("Withdrawal not settled", "id", id, "error", err)
			result.Failed = append(result.Failed, IDError{ID: id, Err: err})
			continue
		}
		result.Count++
	}

	return result, nil
}

func (s *Service) settleOne(ctx context.Context, id uuid.UUID) error {
	return s.storage.InTx(ctx, func(store repository.Storage) error {
		req, err := store.Withdrawal().MarkSettled(ctx, id)
		if err != nil {
			return err
		}

		if _, err := store.Balance().ApplyDelta(ctx, req.UserID, 0, -req.Points); err != nil {
			return err
		}

		_, err = store.Ledger().Append(ctx, repository.AppendEntryParams{
			UserID:      req.UserID,
			Type:        models.LedgerTypeWithdrawal,
			PointsDelta: -req.Points,
			Remarks:     fmt.Sprintf("withdrawal request %s settled", req.ID),
		})
		return err
	})
}

// Cancel removes the referenced requests. A pending request has its
// reservation reversed (available += points, frozen -= points) with no
// ledger entry; a settled request is removed with no balance effect at all,
// its settlement already lives in the ledger.
func (s *Service) Cancel(ctx context.Context, ids []uuid.UUID) (BatchResult, error) {
	if len(ids) == 0 {
		return BatchResult{}, apperrors.ErrEmptyIDSet
	}

	var result BatchResult
	for _, id := range dedupe(ids) {
		err := s.cancelOne(ctx, id)
		if err != nil {
			s.logger.Warn("Withdrawal not cancelled", "id", id, "error", err)
			result.Failed = append(result.Failed, IDError{ID: id, Err: err})
			continue
		}
		result.Count++
	}

	return result, nil
}

// CancelAll cancels every request currently in the store
func (s *Service) CancelAll(ctx context.Context) (BatchResult, error) {
	ids, err := s.storage.Withdrawal().ListRequestIDs(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	if len(ids) == 0 {
		return BatchResult{}, nil
	}

	return s.Cancel(ctx, ids)
}

func (s *Service) cancelOne(ctx context.Context, id uuid.UUID) error {
	return s.storage.InTx(ctx, func(store repository.Storage) error {
		req, err := store.Withdrawal().DeleteRequest(ctx, id)
		if err != nil {
			return err
		}

		// Only a pending request still holds a reservation to reverse
		if req.Status != models.WithdrawalStatusPending {
			return nil
		}

		_, err = store.Balance().ApplyDelta(ctx, req.UserID, +req.Points, -req.Points)
		return err
	})
}

// List returns requests for the admin screen, optionally filtered by status
func (s *Service) List(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	switch status {
	case "", models.WithdrawalStatusPending, models.WithdrawalStatusSettled:
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownStatus, status)
	}

	return s.storage.Withdrawal().ListRequests(ctx, status)
}

// IsSkippable reports whether the failure is a per-id state condition
// (already settled or missing) rather than an infrastructure error
func IsSkippable(err error) bool {
	return errors.Is(err, apperrors.ErrRequestNotFound) || errors.Is(err, apperrors.ErrRequestNotPending)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
