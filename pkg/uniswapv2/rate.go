package uniswapv2

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
)

// ExchangeRate returns the price of one unit of the input side expressed in
// the output side, scaled by 10^18: outputReserve*10^18/inputReserve. With
// invert set the direction flips. Both sides carry 18 decimals, so no further
// decimal adjustment applies.
//
// ok is false when either reserve is missing or zero, or when the rate does
// not fit in 256 bits. Callers treat that as "quote not ready", never as a
// zero price.
func ExchangeRate(inputReserve, outputReserve *uint256.Int, invert bool) (rate *uint256.Int, ok bool) {
	if inputReserve == nil || outputReserve == nil {
		return nil, false
	}
	num, den := outputReserve, inputReserve
	if invert {
		num, den = inputReserve, outputReserve
	}
	rate, err := fixedpoint.MulDiv(num, fixedpoint.One, den)
	if err != nil {
		return nil, false
	}
	return rate, true
}
