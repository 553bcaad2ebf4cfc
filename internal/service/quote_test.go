package service

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/pino-redeem/pkg/trade"
)

func TestBuy_WithETH(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.SetEther(account, ether(3))
	svc, _ := newQuoteService(t, b, true)

	q, err := svc.Buy(context.Background(), QuoteRequest{Amount: "1", Asset: "eth", Account: account})
	require.NoError(t, err)

	require.EqualValues(t, 77, q.Block)
	require.Equal(t, "ETH", q.Asset)
	require.True(t, q.Submittable())
	require.Equal(t, "100401304012136510", q.Input.Dec())
	require.Equal(t, "102409330092379240", q.MaximumInput.Dec())
	require.Equal(t, "1000000000000000000", q.Output.Dec())

	require.NotNil(t, q.Call)
	require.Equal(t, "swapETHForExactTokens", q.Call.Method)
	require.Equal(t, []common.Address{weth, pino}, q.Call.Path)
	require.Equal(t, q.MaximumInput, q.Call.Value)
	require.Equal(t, account, q.Call.To)
	require.EqualValues(t, 1_700_000_900, q.Call.Deadline)

	// 2000 $/ETH, 200 $/PINO
	require.Equal(t, "200802608024273020000", q.InputUSD.Dec())
	require.Equal(t, "200000000000000000000", q.OutputUSD.Dec())
}

func TestBuy_WithTokenNeedsAllowance(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.SetEther(account, ether(3))
	b.SetTokenBalance(dai, account, ether(1_000_000))
	svc, _ := newQuoteService(t, b, true)

	q, err := svc.Buy(context.Background(), QuoteRequest{Amount: "1", Asset: "DAI", Account: account})
	require.NoError(t, err)

	require.Equal(t, "DAI", q.Asset)
	require.Equal(t, 2, q.Route.Hops)
	require.Equal(t, "100401304012136510", q.Route.Intermediate.Dec())
	require.ErrorIs(t, q.Err, trade.ErrInsufficientAllowance)
	require.Equal(t, "swapTokensForExactTokens", q.Call.Method)
	require.Equal(t, []common.Address{dai, weth, pino}, q.Call.Path)
}

func TestBuy_WithoutAccount(t *testing.T) {
	t.Parallel()

	svc, _ := newQuoteService(t, newBackend(), false)

	q, err := svc.Buy(context.Background(), QuoteRequest{Amount: "1"})
	require.NoError(t, err)
	require.True(t, q.Submittable())
	require.Nil(t, q.Call)
	require.Nil(t, q.InputUSD)
	require.Nil(t, q.OutputUSD)
}

func TestSell_AdvisoryKeepsAmounts(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.SetEther(account, ether(3))
	svc, _ := newQuoteService(t, b, true)

	q, err := svc.Sell(context.Background(), QuoteRequest{Amount: "1", Asset: "ETH", Account: account})
	require.NoError(t, err)

	require.ErrorIs(t, q.Err, trade.ErrInsufficientSelectedTokenBalance)
	require.Equal(t, []error{trade.ErrInsufficientSelectedTokenBalance, trade.ErrInsufficientAllowance}, q.Advisories)
	require.Equal(t, "99600698103990321", q.Output.Dec())
	require.Equal(t, "97608684141910515", q.MinimumOutput.Dec())
	require.Equal(t, "swapExactTokensForETH", q.Call.Method)

	require.Equal(t, "200000000000000000000", q.InputUSD.Dec())
	require.Equal(t, "199201396207980642000", q.OutputUSD.Dec())
}

func TestQuote_Rejections(t *testing.T) {
	t.Parallel()

	svc, reg := newQuoteService(t, newBackend(), true)
	ctx := context.Background()

	_, err := svc.Buy(ctx, QuoteRequest{Amount: "1", Asset: "USDC"})
	require.ErrorIs(t, err, ErrUnknownToken)

	_, err = svc.Buy(ctx, QuoteRequest{Amount: "abc"})
	require.ErrorIs(t, err, trade.ErrInvalidAmount)

	// the pair only holds 1000 PINO
	_, err = svc.Buy(ctx, QuoteRequest{Amount: "1000"})
	require.ErrorIs(t, err, trade.ErrInvalidTrade)

	_, err = svc.Sell(ctx, QuoteRequest{Amount: "1", Asset: "pino"})
	require.ErrorIs(t, err, ErrSameToken)

	n, err := testutil.GatherAndCount(reg, "pino_quotes_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRedeem(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.SetEther(account, ether(1))
	b.SetTokenBalance(pino, account, ether(5))
	svc, _ := newQuoteService(t, b, false)
	ctx := context.Background()

	r, err := svc.Redeem(ctx, "2", account)
	require.NoError(t, err)
	require.True(t, r.Submittable())
	require.True(t, r.Redeemable)
	require.Equal(t, ether(5).String(), r.Balance.Dec())

	r, err = svc.Redeem(ctx, "10", account)
	require.NoError(t, err)
	require.ErrorIs(t, r.Err, trade.ErrInsufficientBaseBalance)

	_, err = svc.Redeem(ctx, "1", common.Address{})
	require.ErrorIs(t, err, ErrAccountRequired)
}

func TestUnlockGas(t *testing.T) {
	t.Parallel()

	svc, _ := newQuoteService(t, newBackend(), true)
	ctx := context.Background()

	est, err := svc.UnlockGas(ctx, account, "PINO")
	require.NoError(t, err)
	require.EqualValues(t, 50_600, est.Limit)
	require.Equal(t, "30000000000", est.Price.Dec())

	_, err = svc.UnlockGas(ctx, account, "dai")
	require.NoError(t, err)

	_, err = svc.UnlockGas(ctx, account, "ETH")
	require.ErrorIs(t, err, ErrNothingToUnlock)

	_, err = svc.UnlockGas(ctx, account, "USDC")
	require.ErrorIs(t, err, ErrUnknownToken)

	_, err = svc.UnlockGas(ctx, common.Address{}, "PINO")
	require.ErrorIs(t, err, ErrAccountRequired)
}

func TestDollarPrice(t *testing.T) {
	t.Parallel()

	svc, _ := newQuoteService(t, newBackend(), true)
	price, block, err := svc.DollarPrice(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 77, block)
	require.Equal(t, "200000000000000000000", price.Dec())

	svc, _ = newQuoteService(t, newBackend(), false)
	_, _, err = svc.DollarPrice(context.Background())
	require.ErrorIs(t, err, ErrPricingUnavailable)
}

func TestStats(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.SetTotalSupply(pino, ether(988))
	svc, reg := newQuoteService(t, b, false)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 77, st.Block)
	require.Equal(t, ether(988).String(), st.TotalSupply.Dec())
	require.Equal(t, ether(12).String(), st.Redeemed.Dec())
	require.Equal(t, ether(1000).String(), st.PoolReserve.Dec())

	n, err := testutil.GatherAndCount(reg, "pino_quotes_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP pino_snapshot_block Block number of the latest chain snapshot
# TYPE pino_snapshot_block gauge
pino_snapshot_block 77
`), "pino_snapshot_block"))
}

func TestStats_ReadFailure(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.FailNext("eth_call", 100)
	svc, _ := newQuoteService(t, b, false)

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
}
