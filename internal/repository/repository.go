package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pointsadmin/internal/models"
)

// Balance repository interface
type BalanceRepo interface {
	// Create zero balance for user
	CreateBalance(ctx context.Context, userID uuid.UUID) error

	// Get balance
	// If user balance not found must return apperrors.ErrUserNotFound
	GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error)

	// Apply signed deltas to both buckets in a single statement
	// The database rejects any update that would make a bucket negative
	ApplyDelta(ctx context.Context, userID uuid.UUID, availableDelta int64, frozenDelta int64) (models.Balance, error)
}

// Withdrawal request repository interface
type WithdrawalRepo interface {
	// Create pending request and move points from available to frozen
	// This is the front-end reservation path, kept here so the full
	// lifecycle is exercisable; the admin services never call it
	CreateRequest(ctx context.Context, arg CreateRequestParams) (models.WithdrawalRequest, error)

	// Get request by id
	// If request not found must return apperrors.ErrRequestNotFound
	GetRequest(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error)

	// List requests, optionally filtered by status ("" means all)
	ListRequests(ctx context.Context, status string) ([]models.WithdrawalRequest, error)

	// List ids of every stored request (for cancel-all)
	ListRequestIDs(ctx context.Context) ([]uuid.UUID, error)

	// Flip status PENDING -> SETTLED as one conditional update
	// If request not found must return apperrors.ErrRequestNotFound
	// If request is not pending must return apperrors.ErrRequestNotPending
	// The row is returned in its settled state
	MarkSettled(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error)

	// Delete request and return the removed row (status tells the caller
	// whether a reservation reversal is due)
	// If request not found must return apperrors.ErrRequestNotFound
	DeleteRequest(ctx context.Context, id uuid.UUID) (models.WithdrawalRequest, error)
}

type CreateRequestParams struct {
	UserID   uuid.UUID
	Points   int64
	Money    decimal.Decimal
	BankInfo string
}

// Ledger repository interface
// The ledger is append-only: no update or delete methods exist on purpose
type LedgerRepo interface {
	Append(ctx context.Context, arg AppendEntryParams) (models.LedgerEntry, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error)
}

type AppendEntryParams struct {
	UserID      uuid.UUID
	Type        string
	PointsDelta int64
	Remarks     string
}

// Voucher repository interface
type VoucherRepo interface {
	// Insert voucher if its code is absent
	// If the code is already taken must return apperrors.ErrVoucherCodeTaken
	// so the generator can retry with a fresh draw
	CreateVoucher(ctx context.Context, arg CreateVoucherParams) (models.Voucher, error)

	// Check whether a code is already persisted
	CodeExists(ctx context.Context, code string) (bool, error)

	ListVouchers(ctx context.Context) ([]models.Voucher, error)
}

type CreateVoucherParams struct {
	Code       string
	Password   string
	FaceValue  decimal.Decimal
	PointValue int64
}

// Storage combines all repositories and provides transaction support
type Storage interface {
	Balance() BalanceRepo
	Withdrawal() WithdrawalRepo
	Ledger() LedgerRepo
	Voucher() VoucherRepo

	// InTx runs fn with a Storage bound to a single transaction
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
