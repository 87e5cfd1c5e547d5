package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	WithdrawalStatusPending = "PENDING"
	WithdrawalStatusSettled = "SETTLED"
)

// WithdrawalRequest is created by the member-facing front-end (which moves
// the requested points from Available to Frozen) and consumed here: the
// admin side either settles it or cancels it, nothing else.
type WithdrawalRequest struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Points      int64
	Money       decimal.Decimal
	BankInfo    string
	Status      string
	RequestedAt time.Time
	SettledAt   *time.Time
}
