package trade

import (
	"errors"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
	"github.com/nulln0ne/pino-redeem/pkg/uniswapv2"
)

// Errors that make a quote unusable. They are returned instead of a result.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidTrade        = uniswapv2.ErrInvalidTrade
	ErrArithmeticOverflow  = fixedpoint.ErrArithmeticOverflow
	ErrUnsupportedRoute    = errors.New("unsupported route")
	ErrReservesUnavailable = errors.New("reserves unavailable")
)

// Advisory errors. They are reported on a ValidationResult whose amounts are
// still usable for display, and only disable submission.
var (
	ErrInsufficientEthGas               = errors.New("insufficient ETH for gas")
	ErrInsufficientSelectedTokenBalance = errors.New("insufficient selected token balance")
	ErrInsufficientAllowance            = errors.New("insufficient allowance")
	ErrInsufficientBaseBalance          = errors.New("insufficient base token balance")
)

// IsAdvisory reports whether err is one of the non-breaking validation errors.
func IsAdvisory(err error) bool {
	return errors.Is(err, ErrInsufficientEthGas) ||
		errors.Is(err, ErrInsufficientSelectedTokenBalance) ||
		errors.Is(err, ErrInsufficientAllowance) ||
		errors.Is(err, ErrInsufficientBaseBalance)
}
