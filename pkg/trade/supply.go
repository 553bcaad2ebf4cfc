package trade

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
)

// InitialSupply is the base token's supply at launch: 1000 tokens. Physical
// redemptions burn tokens, so the supply only shrinks from here.
var InitialSupply = new(uint256.Int).Mul(uint256.NewInt(1000), fixedpoint.One)

// Redeemed returns how many base units have been burned for redemption,
// InitialSupply - totalSupply, floored at zero.
func Redeemed(totalSupply *uint256.Int) *uint256.Int {
	if totalSupply == nil || !totalSupply.Lt(InitialSupply) {
		return fixedpoint.Zero()
	}
	return new(uint256.Int).Sub(InitialSupply, totalSupply)
}
