package fixedpoint

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// amountPattern is a plain unsigned decimal: digits with an optional
// fraction, or a bare fraction such as ".5". Exponents and signs are not
// accepted.
var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]*)?$|^\.[0-9]+$`)

// maxUint256Digits is the number of decimal digits of MaxUint256.
const maxUint256Digits = 78

// ParseUnits scales a human-entered decimal string such as "1.5" into base
// units of a token with the given number of decimals. Anything but plain
// digits with an optional fraction, more fractional digits than decimals and
// results above MaxUint256 are rejected with ErrMalformedAmount.
func ParseUnits(s string, decimals int32) (*uint256.Int, error) {
	if decimals < 0 || decimals > maxUint256Digits {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDecimals, decimals)
	}
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrMalformedAmount)
	}
	if !amountPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrMalformedAmount, s, decimals)
	}
	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", int(decimals)-len(frac)), "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	if len(digits) > maxUint256Digits {
		return nil, fmt.Errorf("%w: %q exceeds 256 bits", ErrMalformedAmount, s)
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q exceeds 256 bits", ErrMalformedAmount, s)
	}
	return v, nil
}

func toDecimal(x *uint256.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(x.ToBig(), -decimals)
}

// FormatUnits renders base units as a plain decimal string without trailing
// zeros, e.g. 1500000000000000000 with 18 decimals is "1.5".
func FormatUnits(x *uint256.Int, decimals int32) string {
	if x == nil {
		return ""
	}
	return toDecimal(x, decimals).String()
}

// FormatAmount renders x for display with at most displayDecimals fractional
// digits, rounding half up. Non-zero amounts below the smallest displayable
// unit render as "<0.001" (for three display decimals) when useLessThan is
// set. A nil amount renders as the empty string.
func FormatAmount(x *uint256.Int, baseDecimals, displayDecimals int32, useLessThan bool) (string, error) {
	if baseDecimals > Decimals || displayDecimals > Decimals || displayDecimals > baseDecimals || displayDecimals < 0 {
		return "", fmt.Errorf("%w: base %d, display %d", ErrInvalidDecimals, baseDecimals, displayDecimals)
	}
	if x == nil {
		return "", nil
	}
	if x.IsZero() {
		return "0", nil
	}

	minimum := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(baseDecimals-displayDecimals)), nil)
	if x.ToBig().Cmp(minimum) < 0 {
		if useLessThan {
			return "<" + decimal.NewFromBigInt(minimum, -baseDecimals).String(), nil
		}
		return FormatUnits(x, baseDecimals), nil
	}
	return toDecimal(x, baseDecimals).Round(displayDecimals).String(), nil
}
