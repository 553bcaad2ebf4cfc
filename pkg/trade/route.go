// Package trade turns a requested PINO amount into the amounts, bounds and
// router call of a Uniswap V2 trade, and checks the trade against the
// trader's balances and allowances.
//
// Every function is pure: reserves, balances and allowances arrive as one
// immutable snapshot per call and nothing is cached between calls.
package trade

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/uniswapv2"
)

// Side identifies an asset taking part in a trade.
type Side uint8

const (
	SideETH Side = iota
	SideBase
	SideOther
)

func (s Side) String() string {
	switch s {
	case SideETH:
		return "ETH"
	case SideBase:
		return "BASE"
	case SideOther:
		return "OTHER"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// Reserves is one pair's reserves at query time: the WETH side and the token
// side. A nil field means the pair has not been read yet.
type Reserves struct {
	ETH   *uint256.Int
	Token *uint256.Int
}

// Ready reports whether both sides are known.
func (r Reserves) Ready() bool {
	return r.ETH != nil && r.Token != nil
}

// Route is the resolved counter-amount of a trade. Intermediate is the ETH
// amount passed between the two legs of an indirect route, nil otherwise.
type Route struct {
	Input        Side
	Output       Side
	Amount       *uint256.Int
	Intermediate *uint256.Int
	Hops         int
}

// Resolve computes the counter-amount for trading amount of the base token.
//
// When buying the base token (output is SideBase) amount is the exact output
// and the returned Amount is the input required. When selling (input is
// SideBase) amount is the exact input and Amount is the output received.
// Routes involving SideOther go through ETH using the selected pair; the
// selected reserves are ignored otherwise.
func Resolve(input, output Side, amount *uint256.Int, base, selected Reserves) (*Route, error) {
	r := &Route{Input: input, Output: output, Hops: 1}

	indirect := input == SideOther || output == SideOther
	if !base.Ready() || (indirect && !selected.Ready()) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTrade, ErrReservesUnavailable)
	}

	var err error
	switch {
	// eth to base - buy
	case input == SideETH && output == SideBase:
		r.Amount, err = uniswapv2.InputFromOutput(amount, base.ETH, base.Token)

	// base to eth - sell
	case input == SideBase && output == SideETH:
		r.Amount, err = uniswapv2.OutputFromInput(amount, base.Token, base.ETH)

	// other to base - buy: eth needed for the base amount, then tokens needed for that eth
	case input == SideOther && output == SideBase:
		r.Hops = 2
		if r.Intermediate, err = uniswapv2.InputFromOutput(amount, base.ETH, base.Token); err != nil {
			return nil, fmt.Errorf("base leg: %w", err)
		}
		r.Amount, err = uniswapv2.InputFromOutput(r.Intermediate, selected.Token, selected.ETH)

	// base to other - sell: eth gained from the base amount, then tokens yielded by that eth
	case input == SideBase && output == SideOther:
		r.Hops = 2
		if r.Intermediate, err = uniswapv2.OutputFromInput(amount, base.Token, base.ETH); err != nil {
			return nil, fmt.Errorf("base leg: %w", err)
		}
		r.Amount, err = uniswapv2.OutputFromInput(r.Intermediate, selected.ETH, selected.Token)

	default:
		return nil, fmt.Errorf("%w: %w: %s to %s", ErrInvalidTrade, ErrUnsupportedRoute, input, output)
	}
	if err != nil {
		if r.Hops == 2 {
			return nil, fmt.Errorf("selected leg: %w", err)
		}
		return nil, err
	}
	return r, nil
}
