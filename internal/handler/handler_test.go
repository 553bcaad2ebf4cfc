package handler

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/pino-redeem/internal/config"
	"github.com/nulln0ne/pino-redeem/internal/eth"
	"github.com/nulln0ne/pino-redeem/internal/ethtest"
	"github.com/nulln0ne/pino-redeem/internal/logging"
	"github.com/nulln0ne/pino-redeem/internal/metrics"
	"github.com/nulln0ne/pino-redeem/internal/service"
)

var (
	weth     = common.HexToAddress("0x0000000000000000000000000000000000000001")
	pino     = common.HexToAddress("0x0000000000000000000000000000000000000002")
	dai      = common.HexToAddress("0x0000000000000000000000000000000000000003")
	basePair = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	daiPair  = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	router   = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	account  = common.HexToAddress("0x00000000000000000000000000000000000000ee")
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// newQuoteApp serves every route over a 100 ETH : 1000 PINO pair and
// a 1000 ETH : 2,000,000 DAI pair.
func newQuoteApp(t *testing.T, withDAI bool) (*fiber.App, *ethtest.Backend) {
	t.Helper()
	b := ethtest.New()
	b.SetBlock(77)
	b.SetPair(basePair, weth, pino, ether(100), ether(1000))
	b.SetPair(daiPair, dai, weth, ether(2_000_000), ether(1000))

	contracts := config.Contracts{
		WETH:       weth,
		Router:     router,
		Base:       config.Token{Symbol: "PINO", Address: pino, Pair: basePair},
		Selectable: map[string]config.Token{},
	}
	if withDAI {
		d := config.Token{Symbol: "DAI", Address: dai, Pair: daiPair}
		contracts.DAI = &d
		contracts.Selectable["DAI"] = d
	}

	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	reader := eth.NewReader(logger, b.Client(t), weth, router)
	svc := service.NewQuoteService(logger, reader, contracts, metrics.New(reg))
	h := NewQuoteHandler(logger, svc, router)
	est := NewEstimateHandler(logger, service.NewEstimateService(logger, reader, contracts))

	app := fiber.New()
	app.Get("/quote/buy", h.Buy())
	app.Get("/quote/sell", h.Sell())
	app.Get("/redeem", h.Redeem())
	app.Get("/unlock", h.Unlock())
	app.Get("/price", h.Price())
	app.Get("/stats", h.Stats())
	app.Get("/estimate", est.Handle())
	app.Get("/metrics", Metrics(reg))
	return app, b
}

func getJSON(t *testing.T, app *fiber.App, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil))
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}
