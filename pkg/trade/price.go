package trade

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
	"github.com/nulln0ne/pino-redeem/pkg/uniswapv2"
)

// Dollarize converts amount into dollars using a rate scaled by 10^18.
// Display only.
func Dollarize(amount, rate *uint256.Int) (*uint256.Int, error) {
	return fixedpoint.MulDiv(amount, rate, fixedpoint.One)
}

// USDRate returns the dollar value of one unit of the selected asset, scaled
// by 10^18, priced through the DAI/ETH pair. ok is false until the needed
// reserves are known.
func USDRate(dai Reserves, selected Side, selectedPool Reserves) (*uint256.Int, bool) {
	daiPerETH, ok := uniswapv2.ExchangeRate(dai.ETH, dai.Token, false)
	if !ok {
		return nil, false
	}
	if selected == SideETH {
		return daiPerETH, true
	}
	tokensPerETH, ok := uniswapv2.ExchangeRate(selectedPool.ETH, selectedPool.Token, false)
	if !ok {
		return nil, false
	}
	rate, err := fixedpoint.MulDiv(daiPerETH, fixedpoint.One, tokensPerETH)
	if err != nil {
		return nil, false
	}
	return rate, true
}

// DollarPrice returns the dollar spot price of one base token, scaled by 10^18.
func DollarPrice(base, dai Reserves) (*uint256.Int, bool) {
	ethPerBase, ok := uniswapv2.ExchangeRate(base.Token, base.ETH, false)
	if !ok {
		return nil, false
	}
	usdPerETH, ok := USDRate(dai, SideETH, Reserves{})
	if !ok {
		return nil, false
	}
	price, err := Dollarize(ethPerBase, usdPerETH)
	if err != nil {
		return nil, false
	}
	return price, true
}
