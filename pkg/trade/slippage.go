package trade

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
)

// AllowedSlippageBips is the system-wide slippage tolerance (2%).
const AllowedSlippageBips = 200

var bipsDenominator = uint256.NewInt(10_000)

// Bounds are the acceptable extremes around a quoted amount.
type Bounds struct {
	Minimum *uint256.Int
	Maximum *uint256.Int
}

// SlippageBounds returns value ∓ value*toleranceBips/10000, clamped to
// [0, MaxUint256].
func SlippageBounds(value *uint256.Int, toleranceBips uint64) Bounds {
	offset, err := fixedpoint.MulDiv(value, uint256.NewInt(toleranceBips), bipsDenominator)
	if err != nil {
		// offset beyond 256 bits: both sides saturate
		return Bounds{Minimum: fixedpoint.Zero(), Maximum: new(uint256.Int).Set(fixedpoint.MaxUint256)}
	}

	b := Bounds{}
	if b.Minimum, err = fixedpoint.Sub(value, offset); err != nil {
		b.Minimum = fixedpoint.Zero()
	}
	if b.Maximum, err = fixedpoint.Add(value, offset); err != nil {
		b.Maximum = new(uint256.Int).Set(fixedpoint.MaxUint256)
	}
	return b
}
