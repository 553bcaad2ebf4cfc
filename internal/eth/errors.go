package eth

import "errors"

var (
	// ErrPairMismatch is returned when a pair does not trade the expected
	// token against WETH.
	ErrPairMismatch     = errors.New("pair does not match token/WETH")
	ErrUnexpectedReturn = errors.New("unexpected contract return value")
)
