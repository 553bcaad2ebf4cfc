package fixedpoint

import "errors"

var (
	// ErrArithmeticOverflow is returned when the exact result of an operation
	// is negative or does not fit in 256 bits.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrDivisionByZero     = errors.New("division by zero")
	// ErrMalformedAmount is returned when a decimal string cannot be scaled into
	// base units.
	ErrMalformedAmount = errors.New("malformed amount")
	ErrInvalidDecimals = errors.New("invalid decimals")
)
