// Package service contains business logic and integrations backing HTTP handlers.
package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nulln0ne/pino-redeem/internal/config"
	"github.com/nulln0ne/pino-redeem/internal/eth"
	"github.com/nulln0ne/pino-redeem/pkg/trade"
)

// BaseService provides common dependencies for service types.
type BaseService struct {
	logger    *slog.Logger
	reader    *eth.Reader
	contracts config.Contracts
}

type asset struct {
	symbol string
	side   trade.Side
	token  config.Token
}

// lookupAsset resolves symbol to ETH, the base token or a selectable token.
// Symbols match case-insensitively and an empty symbol means ETH.
func (b *BaseService) lookupAsset(symbol string) (asset, error) {
	switch {
	case symbol == "" || strings.EqualFold(symbol, config.SymbolETH):
		return asset{symbol: config.SymbolETH, side: trade.SideETH}, nil
	case strings.EqualFold(symbol, b.contracts.Base.Symbol):
		return asset{symbol: b.contracts.Base.Symbol, side: trade.SideBase, token: b.contracts.Base}, nil
	}
	t, ok := b.contracts.Lookup(symbol)
	if !ok {
		return asset{}, fmt.Errorf("%w: %q", ErrUnknownToken, symbol)
	}
	return asset{symbol: t.Symbol, side: trade.SideOther, token: t}, nil
}

func (b *BaseService) basePair() eth.TokenPair {
	return eth.TokenPair{Token: b.contracts.Base.Address, Pair: b.contracts.Base.Pair}
}
