package trade

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
)

const (
	// GasMarginBips inflates estimated gas limits by 10%.
	GasMarginBips = 1000
	// GasPriceInflationPercent is applied to the node's suggested gas price so
	// the transaction outpaces base fee drift until it is mined.
	GasPriceInflationPercent = 150
)

// GasEstimate is the gas budget handed to the transaction layer.
type GasEstimate struct {
	Limit uint64
	Price *uint256.Int
}

// WithGasMargin returns limit + limit*marginBips/10000.
func WithGasMargin(limit, marginBips uint64) (uint64, error) {
	l := uint256.NewInt(limit)
	offset, err := fixedpoint.MulDiv(l, uint256.NewInt(marginBips), bipsDenominator)
	if err != nil {
		return 0, err
	}
	total, err := fixedpoint.Add(l, offset)
	if err != nil {
		return 0, err
	}
	if !total.IsUint64() {
		return 0, fmt.Errorf("gas limit %s: %w", total.Dec(), ErrArithmeticOverflow)
	}
	return total.Uint64(), nil
}

// InflateGasPrice returns price*150/100.
func InflateGasPrice(price *uint256.Int) (*uint256.Int, error) {
	return fixedpoint.MulDiv(price, uint256.NewInt(GasPriceInflationPercent), uint256.NewInt(100))
}

// NewGasEstimate applies the gas margin to an estimated limit and the
// inflation to a suggested price.
func NewGasEstimate(estimatedLimit uint64, suggestedPrice *uint256.Int) (GasEstimate, error) {
	limit, err := WithGasMargin(estimatedLimit, GasMarginBips)
	if err != nil {
		return GasEstimate{}, fmt.Errorf("gas limit: %w", err)
	}
	price, err := InflateGasPrice(suggestedPrice)
	if err != nil {
		return GasEstimate{}, fmt.Errorf("gas price: %w", err)
	}
	return GasEstimate{Limit: limit, Price: price}, nil
}
