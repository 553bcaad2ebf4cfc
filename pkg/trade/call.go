package trade

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// DeadlineFromNow is how long a submitted swap stays executable.
const DeadlineFromNow = 15 * time.Minute

// Deadline returns the unix timestamp, rounded up to the second, after which
// a swap submitted at now reverts.
func Deadline(now time.Time) uint64 {
	sec := now.Unix()
	if now.Nanosecond() > 0 {
		sec++
	}
	return uint64(sec) + uint64(DeadlineFromNow/time.Second)
}

const routerABI = `[
 {"name":"swapETHForExactTokens","type":"function","stateMutability":"payable",
  "inputs":[{"name":"amountOut","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],
  "outputs":[{"name":"amounts","type":"uint256[]"}]},
 {"name":"swapTokensForExactTokens","type":"function","stateMutability":"nonpayable",
  "inputs":[{"name":"amountOut","type":"uint256"},{"name":"amountInMax","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],
  "outputs":[{"name":"amounts","type":"uint256[]"}]},
 {"name":"swapExactTokensForETH","type":"function","stateMutability":"nonpayable",
  "inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],
  "outputs":[{"name":"amounts","type":"uint256[]"}]},
 {"name":"swapExactTokensForTokens","type":"function","stateMutability":"nonpayable",
  "inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],
  "outputs":[{"name":"amounts","type":"uint256[]"}]}
]`

// RouterABI is the subset of the Uniswap V2 Router02 interface used for swaps.
var RouterABI = mustParseABI(routerABI)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

var errIncompleteQuote = errors.New("quote is missing amounts")

// Addresses are the token contracts a swap path is built from.
type Addresses struct {
	WETH     common.Address
	Base     common.Address
	Selected common.Address
}

// SwapCall is a router invocation ready to be estimated and submitted.
// Value is the ETH attached to the call.
type SwapCall struct {
	Method   string
	Amount   *uint256.Int // amountOut for exact-output, amountIn for exact-input swaps
	Limit    *uint256.Int // amountInMax or amountOutMin; nil for swapETHForExactTokens
	Path     []common.Address
	To       common.Address
	Deadline uint64
	Value    *uint256.Int
}

// BuyCall builds the router call for a validated buy.
func BuyCall(q Quote, selected Side, addrs Addresses, to common.Address, deadline uint64) (SwapCall, error) {
	if q.Output == nil || q.MaximumInput == nil {
		return SwapCall{}, errIncompleteQuote
	}
	c := SwapCall{Amount: q.Output, To: to, Deadline: deadline, Value: new(uint256.Int)}
	switch selected {
	case SideETH:
		c.Method = "swapETHForExactTokens"
		c.Path = []common.Address{addrs.WETH, addrs.Base}
		c.Value = q.MaximumInput
	case SideOther:
		c.Method = "swapTokensForExactTokens"
		c.Limit = q.MaximumInput
		c.Path = []common.Address{addrs.Selected, addrs.WETH, addrs.Base}
	default:
		return SwapCall{}, fmt.Errorf("%w: buy with %s", ErrUnsupportedRoute, selected)
	}
	return c, nil
}

// SellCall builds the router call for a validated sell.
func SellCall(q Quote, selected Side, addrs Addresses, to common.Address, deadline uint64) (SwapCall, error) {
	if q.Input == nil || q.MinimumOutput == nil {
		return SwapCall{}, errIncompleteQuote
	}
	c := SwapCall{Amount: q.Input, Limit: q.MinimumOutput, To: to, Deadline: deadline, Value: new(uint256.Int)}
	switch selected {
	case SideETH:
		c.Method = "swapExactTokensForETH"
		c.Path = []common.Address{addrs.Base, addrs.WETH}
	case SideOther:
		c.Method = "swapExactTokensForTokens"
		c.Path = []common.Address{addrs.Base, addrs.WETH, addrs.Selected}
	default:
		return SwapCall{}, fmt.Errorf("%w: sell for %s", ErrUnsupportedRoute, selected)
	}
	return c, nil
}

// Calldata ABI-encodes the call for the router.
func (c SwapCall) Calldata() ([]byte, error) {
	args := []interface{}{c.Amount.ToBig()}
	if c.Limit != nil {
		args = append(args, c.Limit.ToBig())
	}
	args = append(args, c.Path, c.To, new(big.Int).SetUint64(c.Deadline))
	return RouterABI.Pack(c.Method, args...)
}
