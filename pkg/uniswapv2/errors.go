package uniswapv2

import "errors"

var (
	// ErrInvalidTrade is returned when a pool cannot serve the requested
	// amount: the computed counter-amount is zero, does not fit below
	// MaxUint256, or the request drains the output reserve.
	ErrInvalidTrade          = errors.New("invalid trade")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)
