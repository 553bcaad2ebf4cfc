package trade

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
)

// GasDust is the minimum ETH balance (0.01 ETH) a trader must hold to pay for
// a transaction.
var GasDust = uint256.NewInt(10_000_000_000_000_000)

// Snapshot is everything a validation reads, captured at one point in time.
// Nil balances and allowances are unknown (no account) and their checks are
// skipped. BalanceSelected and AllowanceSelected are ignored when the
// selected side is ETH.
type Snapshot struct {
	Base     Reserves
	Selected Reserves

	BalanceETH        *uint256.Int
	BalanceBase       *uint256.Int
	BalanceSelected   *uint256.Int
	AllowanceBase     *uint256.Int
	AllowanceSelected *uint256.Int
}

// Quote holds the amounts of a validated trade. A buy fills MaximumInput, a
// sell fills MinimumOutput.
type Quote struct {
	Input         *uint256.Int
	Output        *uint256.Int
	MaximumInput  *uint256.Int
	MinimumOutput *uint256.Int
	Route         *Route
}

// ValidationResult is a quote plus the advisory errors found for it. Err is
// the highest-priority advisory, nil when the trade can be submitted. The
// quote is always complete, even when Err is set.
type ValidationResult struct {
	Quote
	Err        error
	Advisories []error
}

// Submittable reports whether no advisory check failed.
func (r *ValidationResult) Submittable() bool {
	return r.Err == nil
}

// advisories collects failed checks in evaluation order.
type advisories []error

func (a *advisories) check(failed bool, err error) {
	if failed {
		*a = append(*a, err)
	}
}

func (a advisories) result(q Quote) *ValidationResult {
	res := &ValidationResult{Quote: q, Advisories: []error(a)}
	if len(a) > 0 {
		res.Err = a[0]
	}
	return res
}

// below reports whether a known have is less than need.
func below(have, need *uint256.Int) bool {
	return have != nil && need != nil && have.Lt(need)
}

// ParseAmount parses a decimal base-token amount into base units and checks
// it lies strictly between zero and MaxUint256.
func ParseAmount(amount string) (*uint256.Int, error) {
	v, err := fixedpoint.ParseUnits(amount, fixedpoint.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if !fixedpoint.IsValid(v) {
		return nil, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, amount)
	}
	return v, nil
}

// ValidateBuy quotes buying amount base tokens with the selected asset.
// The checks run in priority order: ETH for gas, balance of the selected
// asset against the maximum input, then its allowance (not for ETH).
func ValidateBuy(amount string, selected Side, snap Snapshot) (*ValidationResult, error) {
	parsed, err := ParseAmount(amount)
	if err != nil {
		return nil, err
	}

	route, err := Resolve(selected, SideBase, parsed, snap.Base, snap.Selected)
	if err != nil {
		return nil, err
	}
	bounds := SlippageBounds(route.Amount, AllowedSlippageBips)

	balance := snap.BalanceSelected
	if selected == SideETH {
		balance = snap.BalanceETH
	}

	var adv advisories
	adv.check(below(snap.BalanceETH, GasDust), ErrInsufficientEthGas)
	adv.check(below(balance, bounds.Maximum), ErrInsufficientSelectedTokenBalance)
	if selected != SideETH {
		adv.check(below(snap.AllowanceSelected, bounds.Maximum), ErrInsufficientAllowance)
	}

	return adv.result(Quote{
		Input:        route.Amount,
		Output:       parsed,
		MaximumInput: bounds.Maximum,
		Route:        route,
	}), nil
}

// ValidateSell quotes selling amount base tokens for the selected asset.
// The checks run in priority order: ETH for gas, base token balance against
// the input, then the base token allowance.
func ValidateSell(amount string, selected Side, snap Snapshot) (*ValidationResult, error) {
	parsed, err := ParseAmount(amount)
	if err != nil {
		return nil, err
	}

	route, err := Resolve(SideBase, selected, parsed, snap.Base, snap.Selected)
	if err != nil {
		return nil, err
	}
	bounds := SlippageBounds(route.Amount, AllowedSlippageBips)

	var adv advisories
	adv.check(below(snap.BalanceETH, GasDust), ErrInsufficientEthGas)
	adv.check(below(snap.BalanceBase, parsed), ErrInsufficientSelectedTokenBalance)
	adv.check(below(snap.AllowanceBase, parsed), ErrInsufficientAllowance)

	return adv.result(Quote{
		Input:         parsed,
		Output:        route.Amount,
		MinimumOutput: bounds.Minimum,
		Route:         route,
	}), nil
}

// Redeemable reports whether balance holds at least one whole base token.
func Redeemable(balance *uint256.Int) bool {
	return balance != nil && !balance.Lt(fixedpoint.One)
}

// ValidateRedeem checks burning amount base tokens for a physical
// redemption. No pool is involved, so only Input is set.
func ValidateRedeem(amount string, snap Snapshot) (*ValidationResult, error) {
	parsed, err := ParseAmount(amount)
	if err != nil {
		return nil, err
	}

	var adv advisories
	adv.check(below(snap.BalanceETH, GasDust), ErrInsufficientEthGas)
	adv.check(below(snap.BalanceBase, parsed), ErrInsufficientBaseBalance)

	return adv.result(Quote{Input: parsed}), nil
}
