package trade

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), fixedpoint.One)
}

// 100 ETH : 1000 PINO
func basePool() Reserves {
	return Reserves{ETH: ether(100), Token: ether(1000)}
}

// 1000 ETH : 2,000,000 DAI
func daiPool() Reserves {
	return Reserves{ETH: ether(1000), Token: ether(2_000_000)}
}

// richSnapshot has every balance and allowance comfortably above any quote
// used in the tests.
func richSnapshot(selected Reserves) Snapshot {
	return Snapshot{
		Base:              basePool(),
		Selected:          selected,
		BalanceETH:        ether(50),
		BalanceBase:       ether(50),
		BalanceSelected:   ether(100_000),
		AllowanceBase:     fixedpoint.MaxUint256,
		AllowanceSelected: fixedpoint.MaxUint256,
	}
}
