package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/models"
	"pointsadmin/internal/repository"
)

// MemStorage is an in-memory repository.Storage for service tests. It keeps
// the same per-call contracts as the postgres implementation (conditional
// settle, insert-if-absent voucher codes, negative balance rejection) but
// InTx runs the callback directly with no rollback, so tests that need real
// transactional atomicity belong in the postgres package.
type MemStorage struct {
	mu sync.Mutex

	balances map[uuid.UUID]models.Balance
	requests map[uuid.UUID]models.WithdrawalRequest
	entries  []models.LedgerEntry
	vouchers map[string]models.Voucher

	// Error injection for infrastructure failure paths
	LedgerAppendErr  error
	VoucherCreateErr error
}

var _ repository.Storage = (*MemStorage)(nil)

func NewMemStorage() *MemStorage {
	return &MemStorage{
		balances: make(map[uuid.UUID]models.Balance),
		requests: make(map[uuid.UUID]models.WithdrawalRequest),
		vouchers: make(map[string]models.Voucher),
	}
}

func (m *MemStorage) Balance() repository.BalanceRepo       { return m }
func (m *MemStorage) Withdrawal() repository.WithdrawalRepo { return m }
func (m *MemStorage) Ledger() repository.LedgerRepo         { return m }
func (m *MemStorage) Voucher() repository.VoucherRepo       { return m }

func (m *MemStorage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	return fn(m)
}

// Balance repo

func (m *MemStorage) CreateBalance(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.balances[userID]; ok {
		return fmt.Errorf("user balance already exists")
	}
	m.balances[userID] = models.Balance{UserID: userID}
	return nil
}

func (m *MemStorage) GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.balances[userID]
	if !ok {
		return b, apperrors.ErrUserNotFound
	}
	return b, nil
}

func (m *MemStorage) ApplyDelta(ctx context.Context, userID uuid.UUID, availableDelta int64, frozenDelta int64) (models.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.balances[userID]
	if !ok {
		return b, apperrors.ErrUserNotFound
	}

	b.Available += availableDelta
	b.Frozen += frozenDelta
	if b.Available < 0 || b.Frozen < 0 {
		return models.Balance{}, fmt.Errorf("balance would become negative")
	}

	m.balances[userID] = b
	return b, nil
}

// Withdrawal repo

func (m *MemStorage) CreateRequest(ctx context.Context, arg repository.CreateRequestParams) (models.WithdrawalRequest, error) {
	req := models.WithdrawalRequest{
		ID:          uuid.New(),
		UserID:      arg.UserID,
		Points:      arg.Points,
		Money:       arg.Money,
		BankInfo:    arg.BankInfo,
		Status:      models.WithdrawalStatusPending,
		RequestedAt: time.Now(),
	}

	if _, err := m.ApplyDelta(ctx, arg.UserID, -arg.Points, +arg.Points); err != nil {
		return req, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
	return req, nil
}

func (m *MemStorage) GetRequest(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return req, apperrors.ErrRequestNotFound
	}
	return req, nil
}

func (m *MemStorage) ListRequests(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.WithdrawalRequest
	for _, req := range m.requests {
		if status == "" || req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *MemStorage) ListRequestIDs(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(m.requests))
	for id := range m.requests {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *MemStorage) MarkSettled(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	switch {
	case !ok:
		return req, apperrors.ErrRequestNotFound
	case req.Status != models.WithdrawalStatusPending:
		return req, apperrors.ErrRequestNotPending
	}

	now := time.Now()
	req.Status = models.WithdrawalStatusSettled
	req.SettledAt = &now
	m.requests[id] = req
	return req, nil
}

func (m *MemStorage) DeleteRequest(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return req, apperrors.ErrRequestNotFound
	}
	delete(m.requests, id)
	return req, nil
}

// Ledger repo

func (m *MemStorage) Append(ctx context.Context, arg repository.AppendEntryParams) (models.LedgerEntry, error) {
	if m.LedgerAppendErr != nil {
		return models.LedgerEntry{}, m.LedgerAppendErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := models.LedgerEntry{
		ID:          uuid.New(),
		UserID:      arg.UserID,
		Type:        arg.Type,
		PointsDelta: arg.PointsDelta,
		Remarks:     arg.Remarks,
		CreatedAt:   time.Now(),
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *MemStorage) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.LedgerEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Voucher repo

func (m *MemStorage) CreateVoucher(ctx context.Context, arg repository.CreateVoucherParams) (models.Voucher, error) {
	if m.VoucherCreateErr != nil {
		return models.Voucher{}, m.VoucherCreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.vouchers[arg.Code]; ok {
		return models.Voucher{}, apperrors.ErrVoucherCodeTaken
	}

	v := models.Voucher{
		ID:         uuid.New(),
		Code:       arg.Code,
		Password:   arg.Password,
		FaceValue:  arg.FaceValue,
		PointValue: arg.PointValue,
		SaleStatus: models.VoucherSaleStatusOnHold,
		UseStatus:  models.VoucherUseStatusUnused,
		CreatedAt:  time.Now(),
	}
	m.vouchers[arg.Code] = v
	return v, nil
}

func (m *MemStorage) CodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.vouchers[code]
	return ok, nil
}

func (m *MemStorage) ListVouchers(ctx context.Context) ([]models.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Voucher, 0, len(m.vouchers))
	for _, v := range m.vouchers {
		out = append(out, v)
	}
	return out, nil
}
