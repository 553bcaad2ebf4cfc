package eth

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/nulln0ne/pino-redeem/internal/ethtest"
	"github.com/nulln0ne/pino-redeem/internal/logging"
	"github.com/nulln0ne/pino-redeem/pkg/trade"
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

func newBackend() *ethtest.Backend {
	b := ethtest.New()
	b.SetBlock(77)
	// token0 = WETH
	b.SetPair(basePair, weth, pino, ether(100), ether(1000))
	// token0 = DAI, the reader has to flip it
	b.SetPair(daiPair, dai, weth, ether(2_000_000), ether(1000))
	return b
}

func newReader(t *testing.T, b *ethtest.Backend) *Reader {
	t.Helper()
	return NewReader(logging.Discard(), b.Client(t), weth, router)
}

func TestReserves_Orientation(t *testing.T) {
	t.Parallel()

	r := newReader(t, newBackend())
	ctx := context.Background()
	bn, err := r.BlockNumber(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 77, bn.Uint64())

	base, err := r.Reserves(ctx, basePair, pino, bn)
	require.NoError(t, err)
	require.Equal(t, ether(100).String(), base.ETH.Dec())
	require.Equal(t, ether(1000).String(), base.Token.Dec())

	d, err := r.Reserves(ctx, daiPair, dai, bn)
	require.NoError(t, err)
	require.Equal(t, ether(1000).String(), d.ETH.Dec())
	require.Equal(t, ether(2_000_000).String(), d.Token.Dec())
}

func TestReserves_PairMismatch(t *testing.T) {
	t.Parallel()

	r := newReader(t, newBackend())
	_, err := r.Reserves(context.Background(), basePair, dai, big.NewInt(77))
	require.ErrorIs(t, err, ErrPairMismatch)
}

func TestParseReserves(t *testing.T) {
	t.Parallel()

	r0 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 112), big.NewInt(1))
	r1 := big.NewInt(12345)
	word := ethtest.PackReserves(r0, r1, 1_700_000_000)

	got0, got1 := parseReserves(word)
	require.Equal(t, r0.String(), got0.Dec())
	require.Equal(t, "12345", got1.Dec())
}

func TestSnapshot_WithAccount(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.SetEther(account, ether(3))
	b.SetTokenBalance(pino, account, ether(5))
	b.SetAllowance(pino, account, router, ether(7))
	b.SetTokenBalance(dai, account, ether(11))
	// granted to someone else, must not be read
	b.SetAllowance(dai, account, basePair, ether(13))

	r := newReader(t, b)
	snap, err := r.Snapshot(context.Background(), SnapshotRequest{
		Account:  account,
		Base:     TokenPair{Token: pino, Pair: basePair},
		Selected: &TokenPair{Token: dai, Pair: daiPair},
		DAI:      &TokenPair{Token: dai, Pair: daiPair},
	})
	require.NoError(t, err)

	require.EqualValues(t, 77, snap.Block)
	require.True(t, snap.Base.Ready())
	require.True(t, snap.Selected.Ready())
	require.True(t, snap.DAI.Ready())
	require.Equal(t, ether(3).String(), snap.BalanceETH.Dec())
	require.Equal(t, ether(5).String(), snap.BalanceBase.Dec())
	require.Equal(t, ether(7).String(), snap.AllowanceBase.Dec())
	require.Equal(t, ether(11).String(), snap.BalanceSelected.Dec())
	require.True(t, snap.AllowanceSelected.IsZero())

	reads := b.Reads()
	// block number, 3 pairs x 3 slots, ether balance, 2 balances, 2 allowances
	require.Len(t, reads, 15)
	for _, rd := range reads {
		if rd.Method == "eth_blockNumber" {
			continue
		}
		require.EqualValues(t, snap.Block, rd.Block, "%s read off the snapshot block", rd.Method)
	}
}

func TestSnapshot_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.FailNext("eth_getStorageAt", 2)
	b.FailNext("eth_blockNumber", 1)

	r := newReader(t, b)
	snap, err := r.Snapshot(context.Background(), SnapshotRequest{
		Base: TokenPair{Token: pino, Pair: basePair},
	})
	require.NoError(t, err)
	require.EqualValues(t, 77, snap.Block)
	require.Equal(t, ether(1000).String(), snap.Base.Token.Dec())

	for _, rd := range b.Reads() {
		if rd.Method == "eth_getStorageAt" {
			require.EqualValues(t, 77, rd.Block)
		}
	}
}

func TestSnapshot_GivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.FailNext("eth_getStorageAt", 100)

	r := newReader(t, b)
	_, err := r.Snapshot(context.Background(), SnapshotRequest{
		Base: TokenPair{Token: pino, Pair: basePair},
	})
	require.ErrorContains(t, err, ethtest.ErrInjected.Error())
}

func TestSupply(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.SetTotalSupply(pino, ether(988))

	r := newReader(t, b)
	s, err := r.Supply(context.Background(), TokenPair{Token: pino, Pair: basePair})
	require.NoError(t, err)
	require.EqualValues(t, 77, s.Block)
	require.Equal(t, ether(988).String(), s.TotalSupply.Dec())
	require.Equal(t, ether(1000).String(), s.Pool.Token.Dec())
	require.Equal(t, ether(100).String(), s.Pool.ETH.Dec())

	for _, rd := range b.Reads() {
		if rd.Method != "eth_blockNumber" {
			require.EqualValues(t, 77, rd.Block)
		}
	}
}

func TestSupply_PairMismatch(t *testing.T) {
	t.Parallel()

	r := newReader(t, newBackend())
	_, err := r.Supply(context.Background(), TokenPair{Token: pino, Pair: daiPair})
	require.ErrorIs(t, err, ErrPairMismatch)
}

func TestSnapshot_NoAccount(t *testing.T) {
	t.Parallel()

	r := newReader(t, newBackend())
	snap, err := r.Snapshot(context.Background(), SnapshotRequest{
		Base: TokenPair{Token: pino, Pair: basePair},
	})
	require.NoError(t, err)

	require.True(t, snap.Base.Ready())
	require.False(t, snap.Selected.Ready())
	require.Nil(t, snap.BalanceETH)
	require.Nil(t, snap.BalanceBase)
	require.Nil(t, snap.AllowanceBase)

	res, err := trade.ValidateBuy("1", trade.SideETH, snap.Snapshot)
	require.NoError(t, err)
	require.True(t, res.Submittable())
}

func TestSnapshot_FailsOnBadPair(t *testing.T) {
	t.Parallel()

	r := newReader(t, newBackend())
	_, err := r.Snapshot(context.Background(), SnapshotRequest{
		Base:     TokenPair{Token: pino, Pair: basePair},
		Selected: &TokenPair{Token: dai, Pair: basePair},
	})
	require.ErrorIs(t, err, ErrPairMismatch)
}

func TestUnlockGas(t *testing.T) {
	t.Parallel()

	b := newBackend()
	b.SetApproveGas(46_000)
	b.SetGasPrice(big.NewInt(20_000_000_000))

	r := newReader(t, b)
	est, err := r.UnlockGas(context.Background(), account, pino)
	require.NoError(t, err)
	require.EqualValues(t, 50_600, est.Limit)
	require.Equal(t, uint256.NewInt(30_000_000_000), est.Price)
}
