package config

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("ETH_RPC_URL", "http://localhost:8545")
	t.Setenv("WETH_ADDRESS", "0x00000000000000000000000000000000000000ee")
	t.Setenv("ROUTER_ADDRESS", "0x00000000000000000000000000000000000000ff")
	t.Setenv("BASE_TOKEN_ADDRESS", "0x00000000000000000000000000000000000000aa")
	t.Setenv("BASE_PAIR_ADDRESS", "0x0000000000000000000000000000000000000abc")
	t.Setenv("DAI_TOKEN_ADDRESS", "")
	t.Setenv("DAI_PAIR_ADDRESS", "")
	t.Setenv("ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, ":1337", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.Nil(t, cfg.Contracts.DAI)
	require.Empty(t, cfg.Contracts.Selectable)
}

func TestFromEnvWithDAI(t *testing.T) {
	setRequired(t)
	t.Setenv("DAI_TOKEN_ADDRESS", "0x00000000000000000000000000000000000000dd")
	t.Setenv("DAI_PAIR_ADDRESS", "0x0000000000000000000000000000000000000ddd")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.Contracts.DAI)

	tok, ok := cfg.Contracts.Lookup("dai")
	require.True(t, ok)
	require.Equal(t, common.HexToAddress("0x0000000000000000000000000000000000000ddd"), tok.Pair)

	_, ok = cfg.Contracts.Lookup(SymbolETH)
	require.False(t, ok)
}

func TestFromEnvErrors(t *testing.T) {
	setRequired(t)
	t.Setenv("ETH_RPC_URL", "")
	_, err := FromEnv()
	require.ErrorIs(t, err, ErrMissingRPCEndpoint)

	setRequired(t)
	t.Setenv("ROUTER_ADDRESS", "")
	_, err = FromEnv()
	require.ErrorIs(t, err, ErrMissingAddress)

	setRequired(t)
	t.Setenv("WETH_ADDRESS", "not-an-address")
	_, err = FromEnv()
	require.ErrorIs(t, err, ErrInvalidAddress)

	setRequired(t)
	t.Setenv("DAI_TOKEN_ADDRESS", "0x00000000000000000000000000000000000000dd")
	_, err = FromEnv()
	require.ErrorIs(t, err, ErrIncompletePair)
}
