package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LedgerTypeWithdrawal = "withdrawal"
)

// LedgerEntry is one row of the append-only balance log. Entries are written
// exactly once per settled withdrawal and never updated or deleted.
type LedgerEntry struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        string
	PointsDelta int64
	Remarks     string
	CreatedAt   time.Time
}
