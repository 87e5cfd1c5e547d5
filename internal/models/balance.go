package models

import (
	"github.com/google/uuid"
)

// Balance holds the two point buckets kept per user.
// Frozen points are earmarked for pending withdrawal requests and move back
// to Available only when the request is cancelled.
type Balance struct {
	UserID    uuid.UUID
	Available int64
	Frozen    int64
}

// Total is the user's net point holding regardless of reservation state.
func (b Balance) Total() int64 {
	return b.Available + b.Frozen
}
