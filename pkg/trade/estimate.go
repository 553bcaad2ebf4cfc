package trade

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/uniswapv2"
)

// leg is one pool crossing: amount goes in on the in side and comes out on
// the out side.
type leg struct {
	in, out *uint256.Int
}

func fromETH(p Reserves) leg { return leg{in: p.ETH, out: p.Token} }
func toETH(p Reserves) leg   { return leg{in: p.Token, out: p.ETH} }

// EstimateOutput computes the output of selling exactly amount of input for
// output. Unlike Resolve, either side may be the base token or not: ETH
// trades cross one pool and token to token trades cross two through ETH.
// The pool of SideBase is base and the pool of SideOther is selected.
func EstimateOutput(input, output Side, amount *uint256.Int, base, selected Reserves) (*Route, error) {
	if input == output || input > SideOther || output > SideOther {
		return nil, fmt.Errorf("%w: %w: %s to %s", ErrInvalidTrade, ErrUnsupportedRoute, input, output)
	}
	pool := func(s Side) Reserves {
		if s == SideBase {
			return base
		}
		return selected
	}

	var legs []leg
	if input != SideETH {
		legs = append(legs, toETH(pool(input)))
	}
	if output != SideETH {
		legs = append(legs, fromETH(pool(output)))
	}
	for _, l := range legs {
		if l.in == nil || l.out == nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTrade, ErrReservesUnavailable)
		}
	}

	r := &Route{Input: input, Output: output, Hops: len(legs)}
	out := amount
	for i, l := range legs {
		next, err := uniswapv2.OutputFromInput(out, l.in, l.out)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i+1, err)
		}
		if i == 0 && len(legs) == 2 {
			r.Intermediate = next
		}
		out = next
	}
	r.Amount = out
	return r, nil
}
