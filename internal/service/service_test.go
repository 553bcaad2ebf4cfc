package service

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nulln0ne/pino-redeem/internal/config"
	"github.com/nulln0ne/pino-redeem/internal/eth"
	"github.com/nulln0ne/pino-redeem/internal/ethtest"
	"github.com/nulln0ne/pino-redeem/internal/logging"
	"github.com/nulln0ne/pino-redeem/internal/metrics"
)

var (
	weth     = common.HexToAddress("0x0000000000000000000000000000000000000001")
	pino     = common.HexToAddress("0x0000000000000000000000000000000000000002")
	dai      = common.HexToAddress("0x0000000000000000000000000000000000000003")
	basePair = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	daiPair  = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	router   = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	account  = common.HexToAddress("0x00000000000000000000000000000000000000ee")

	fixedNow = time.Unix(1_700_000_000, 0)
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func contracts(withDAI bool) config.Contracts {
	c := config.Contracts{
		WETH:       weth,
		Router:     router,
		Base:       config.Token{Symbol: "PINO", Address: pino, Pair: basePair},
		Selectable: map[string]config.Token{},
	}
	if withDAI {
		d := config.Token{Symbol: "DAI", Address: dai, Pair: daiPair}
		c.DAI = &d
		c.Selectable["DAI"] = d
	}
	return c
}

// newBackend serves a 100 ETH : 1000 PINO base pair and a
// 1000 ETH : 2,000,000 DAI pair at block 77.
func newBackend() *ethtest.Backend {
	b := ethtest.New()
	b.SetBlock(77)
	b.SetPair(basePair, weth, pino, ether(100), ether(1000))
	b.SetPair(daiPair, dai, weth, ether(2_000_000), ether(1000))
	return b
}

func newQuoteService(t *testing.T, b *ethtest.Backend, withDAI bool) (*QuoteService, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	reader := eth.NewReader(logging.Discard(), b.Client(t), weth, router)
	svc := NewQuoteService(logging.Discard(), reader, contracts(withDAI), metrics.New(reg))
	svc.now = func() time.Time { return fixedNow }
	return svc, reg
}
