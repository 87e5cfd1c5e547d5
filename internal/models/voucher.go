package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	VoucherSaleStatusOnHold = "ON_HOLD"
	VoucherSaleStatusOnSale = "ON_SALE"

	VoucherUseStatusUnused = "UNUSED"
	VoucherUseStatusUsed   = "USED"
)

const (
	VoucherCodeLength     = 16
	VoucherPasswordLength = 8
)

// Voucher is a prepaid point card. Code is the unique lookup key; the
// password is random per card but carries no uniqueness guarantee.
// Redemption (UNUSED -> USED) happens in the member front-end, not here.
type Voucher struct {
	ID         uuid.UUID
	Code       string
	Password   string
	FaceValue  decimal.Decimal
	PointValue int64
	SaleStatus string
	UseStatus  string
	CreatedAt  time.Time
}
