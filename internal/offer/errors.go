package offer

import "errors"

var (
	ErrNilAsset           = errors.New("base and counter assets are required")
	ErrSameAsset          = errors.New("base and counter must be distinct assets")
	ErrInvalidDecimal     = errors.New("amount and price must be positive decimal numbers")
	ErrNonIntegralAtScale = errors.New("amount not integral at target scale")
	ErrDivisionByZero     = errors.New("price must be nonzero to invert for a long position")
	ErrAmountOverflow     = errors.New("scaled amount exceeds the signed 64-bit range")
)
