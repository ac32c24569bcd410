package voucher

import "errors"

var (
	ErrInvalidClass       = errors.New("voucher type must be SHIPPING or PRODUCT")
	ErrUnknownVoucher     = errors.New("voucher is not available")
	ErrBelowMinOrderValue = errors.New("order does not reach the voucher minimum")
)
