package apperrors

import (
	"errors"
)

var (
	ErrUserNotFound = errors.New("user not found")

	ErrRequestNotFound   = errors.New("withdrawal request not found")
	ErrRequestNotPending = errors.New("withdrawal request is not pending")
	ErrUnknownStatus     = errors.New("unknown withdrawal status")

	ErrEmptyIDSet      = errors.New("empty identifier set")
	ErrCountOutOfRange = errors.New("voucher count out of range")
	ErrUnknownCharRule = errors.New("unknown character rule")

	ErrCodeRetryBudget  = errors.New("code generation retry budget exhausted")
	ErrVoucherCodeTaken = errors.New("voucher code already exists")

	ErrSettingsKeyEmpty     = errors.New("settings key is empty")
	ErrSettingsKeyNotFound  = errors.New("settings key not found")
	ErrSettingsKeyProtected = errors.New("settings key is protected")
)
