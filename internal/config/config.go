package config

import (
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SymbolETH selects native ether as the traded asset.
const SymbolETH = "ETH"

// Token is an ERC20 traded against WETH through a Uniswap V2 pair.
type Token struct {
	Symbol  string
	Address common.Address
	Pair    common.Address
}

// Contracts are the on-chain addresses the service reads and quotes against.
type Contracts struct {
	WETH   common.Address
	Router common.Address
	Base   Token
	// Selectable are the tokens that can be traded against the base token
	// besides ETH, keyed by upper-case symbol.
	Selectable map[string]Token
	// DAI prices amounts in dollars when set.
	DAI *Token
}

// Lookup returns the selectable token for symbol. ok is false for ETH and
// unknown symbols.
func (c Contracts) Lookup(symbol string) (Token, bool) {
	t, ok := c.Selectable[strings.ToUpper(symbol)]
	return t, ok
}

type Config struct {
	Addr        string
	RPCEndpoint string
	LogLevel    string
	LogFormat   string
	Contracts   Contracts
}

func FromEnv() (*Config, error) {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":1337"
	}

	rpcURL := os.Getenv("ETH_RPC_URL")
	if rpcURL == "" {
		return nil, ErrMissingRPCEndpoint
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}

	contracts, err := contractsFromEnv()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:        addr,
		RPCEndpoint: rpcURL,
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		Contracts:   *contracts,
	}

	return cfg, nil
}

func contractsFromEnv() (*Contracts, error) {
	weth, err := requiredAddress("WETH_ADDRESS")
	if err != nil {
		return nil, err
	}
	router, err := requiredAddress("ROUTER_ADDRESS")
	if err != nil {
		return nil, err
	}
	baseToken, err := requiredAddress("BASE_TOKEN_ADDRESS")
	if err != nil {
		return nil, err
	}
	basePair, err := requiredAddress("BASE_PAIR_ADDRESS")
	if err != nil {
		return nil, err
	}

	c := &Contracts{
		WETH:       weth,
		Router:     router,
		Base:       Token{Symbol: "PINO", Address: baseToken, Pair: basePair},
		Selectable: map[string]Token{},
	}

	dai, err := optionalToken("DAI", "DAI_TOKEN_ADDRESS", "DAI_PAIR_ADDRESS")
	if err != nil {
		return nil, err
	}
	if dai != nil {
		c.DAI = dai
		c.Selectable[dai.Symbol] = *dai
	}

	return c, nil
}

func requiredAddress(name string) (common.Address, error) {
	v := os.Getenv(name)
	if v == "" {
		return common.Address{}, newAddressError(ErrMissingAddress, name)
	}
	if !common.IsHexAddress(v) {
		return common.Address{}, newAddressError(ErrInvalidAddress, name)
	}
	return common.HexToAddress(v), nil
}

func optionalToken(symbol, tokenVar, pairVar string) (*Token, error) {
	token, pair := os.Getenv(tokenVar), os.Getenv(pairVar)
	if token == "" && pair == "" {
		return nil, nil
	}
	if token == "" || pair == "" {
		return nil, newAddressError(ErrIncompletePair, symbol)
	}
	for name, v := range map[string]string{tokenVar: token, pairVar: pair} {
		if !common.IsHexAddress(v) {
			return nil, newAddressError(ErrInvalidAddress, name)
		}
	}
	return &Token{Symbol: symbol, Address: common.HexToAddress(token), Pair: common.HexToAddress(pair)}, nil
}
