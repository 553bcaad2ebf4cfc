// Package fixedpoint implements checked arithmetic over 256-bit unsigned
// integers holding token amounts in base units.
//
// Every operation returns a fresh value and never mutates its operands. Any
// result that would be negative or exceed MaxUint256 fails with
// ErrArithmeticOverflow instead of wrapping, so callers reproduce the exact
// truncating integer semantics of the on-chain contracts.
package fixedpoint

import "github.com/holiman/uint256"

// Decimals is the precision of every amount handled by this module.
const Decimals = 18

var (
	// MaxUint256 is 2^256 - 1.
	MaxUint256 = new(uint256.Int).SetAllOne()
	// One is 10^18, one whole token in base units.
	One = Exp10(Decimals)
)

// Exp10 returns 10^n. It panics if the result does not fit in 256 bits, so it
// is meant for package-level constants only.
func Exp10(n uint64) *uint256.Int {
	v, err := Pow(uint256.NewInt(10), n)
	if err != nil {
		panic(err)
	}
	return v
}

// Zero returns a new zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// IsValid reports whether 0 < x < MaxUint256.
func IsValid(x *uint256.Int) bool {
	return x != nil && !x.IsZero() && x.Lt(MaxUint256)
}

// Add returns x + y, or ErrArithmeticOverflow above MaxUint256.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

// Sub returns x - y. A negative result is reported as ErrArithmeticOverflow.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

// Mul returns x * y, or ErrArithmeticOverflow above MaxUint256.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

// Div returns x / y truncated toward zero.
func Div(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, ErrDivisionByZero
	}
	return new(uint256.Int).Div(x, y), nil
}

// MulDiv returns floor(x * y / d). The product is kept at 512 bits so only a
// quotient that itself exceeds 256 bits overflows.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

// Pow returns base^exp by square-and-multiply with overflow checks on every
// step.
func Pow(base *uint256.Int, exp uint64) (*uint256.Int, error) {
	result := uint256.NewInt(1)
	b := new(uint256.Int).Set(base)
	var overflow bool
	for exp > 0 {
		if exp&1 == 1 {
			if _, overflow = result.MulOverflow(result, b); overflow {
				return nil, ErrArithmeticOverflow
			}
		}
		exp >>= 1
		if exp == 0 {
			break
		}
		if _, overflow = b.MulOverflow(b, b); overflow {
			return nil, ErrArithmeticOverflow
		}
	}
	return result, nil
}

// Cmp compares x and y and returns -1, 0 or +1.
func Cmp(x, y *uint256.Int) int {
	return x.Cmp(y)
}

// Min returns the smaller of x and y.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return new(uint256.Int).Set(x)
	}
	return new(uint256.Int).Set(y)
}

// Max returns the larger of x and y.
func Max(x, y *uint256.Int) *uint256.Int {
	if x.Gt(y) {
		return new(uint256.Int).Set(x)
	}
	return new(uint256.Int).Set(y)
}
