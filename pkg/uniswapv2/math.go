// Package uniswapv2 implements the constant-product pricing of Uniswap V2
// pairs over 256-bit integers.
package uniswapv2

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
)

// fee: 0.3% => multiplier 997/1000
var (
	feeMul = uint256.NewInt(997)
	feeDen = uint256.NewInt(1000)
)

// GetAmountOut computes floor(amountIn*997*reserveOut / (reserveIn*1000 + amountIn*997))
// into dst using t1 and t2 as scratch space. Only overflow is checked; the
// result is not range-validated.
func GetAmountOut(dst, t1, t2 *uint256.Int, amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	// t1 = amountIn * 997
	if _, overflow := t1.MulOverflow(amountIn, feeMul); overflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	// t2 = reserveIn * 1000
	if _, overflow := t2.MulOverflow(reserveIn, feeDen); overflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	// t2 = t2 + t1  (denominator)
	if _, overflow := t2.AddOverflow(t2, t1); overflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	if t2.IsZero() {
		return nil, fixedpoint.ErrDivisionByZero
	}
	// dst = t1 * reserveOut (numerator)
	if _, overflow := dst.MulOverflow(t1, reserveOut); overflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	return dst.Div(dst, t2), nil
}

// GetAmountIn computes floor(reserveIn*amountOut*1000 / ((reserveOut-amountOut)*997)) + 1
// into dst using t1 and t2 as scratch space. The trailing +1 rounds the cost
// up so the pair never receives less than it requires.
func GetAmountIn(dst, t1, t2 *uint256.Int, amountOut, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	// t1 = reserveIn * amountOut * 1000 (numerator)
	if _, overflow := t1.MulOverflow(reserveIn, amountOut); overflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	if _, overflow := t1.MulOverflow(t1, feeDen); overflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	// t2 = (reserveOut - amountOut) * 997 (denominator)
	if _, underflow := t2.SubOverflow(reserveOut, amountOut); underflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	if _, overflow := t2.MulOverflow(t2, feeMul); overflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	if t2.IsZero() {
		return nil, fixedpoint.ErrDivisionByZero
	}
	dst.Div(t1, t2)
	if _, overflow := dst.AddOverflow(dst, uint256.NewInt(1)); overflow {
		return nil, fixedpoint.ErrArithmeticOverflow
	}
	return dst, nil
}

// OutputFromInput returns the amount of the output asset received for
// selling exactly inputAmount into the pair.
func OutputFromInput(inputAmount, inputReserve, outputReserve *uint256.Int) (*uint256.Int, error) {
	if err := checkReserves(inputReserve, outputReserve); err != nil {
		return nil, err
	}
	var t1, t2 uint256.Int
	out, err := GetAmountOut(new(uint256.Int), &t1, &t2, inputAmount, inputReserve, outputReserve)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrade, err)
	}
	return validated(out)
}

// InputFromOutput returns the amount of the input asset that must be sold to
// receive exactly outputAmount. Requests of the whole output reserve or more
// are rejected.
func InputFromOutput(outputAmount, inputReserve, outputReserve *uint256.Int) (*uint256.Int, error) {
	if err := checkReserves(inputReserve, outputReserve); err != nil {
		return nil, err
	}
	if outputAmount.Cmp(outputReserve) >= 0 {
		return nil, fmt.Errorf("%w: output %s exceeds reserve %s", ErrInvalidTrade, outputAmount.Dec(), outputReserve.Dec())
	}
	var t1, t2 uint256.Int
	in, err := GetAmountIn(new(uint256.Int), &t1, &t2, outputAmount, inputReserve, outputReserve)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrade, err)
	}
	return validated(in)
}

func checkReserves(reserveIn, reserveOut *uint256.Int) error {
	if reserveIn == nil || reserveOut == nil || reserveIn.IsZero() || reserveOut.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidTrade, ErrInsufficientLiquidity)
	}
	return nil
}

func validated(amount *uint256.Int) (*uint256.Int, error) {
	if !fixedpoint.IsValid(amount) {
		return nil, fmt.Errorf("%w: amount %s out of range", ErrInvalidTrade, amount.Dec())
	}
	return amount, nil
}
