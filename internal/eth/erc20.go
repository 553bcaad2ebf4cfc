package eth

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20JSON = `[
 {"name":"totalSupply","type":"function","stateMutability":"view",
  "inputs":[],
  "outputs":[{"name":"","type":"uint256"}]},
 {"name":"balanceOf","type":"function","stateMutability":"view",
  "inputs":[{"name":"owner","type":"address"}],
  "outputs":[{"name":"","type":"uint256"}]},
 {"name":"allowance","type":"function","stateMutability":"view",
  "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
  "outputs":[{"name":"","type":"uint256"}]},
 {"name":"approve","type":"function","stateMutability":"nonpayable",
  "inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],
  "outputs":[{"name":"","type":"bool"}]}
]`

// ERC20ABI is the subset of the ERC20 interface the reader calls.
var ERC20ABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20JSON))
	if err != nil {
		panic(err)
	}
	return parsed
}()
