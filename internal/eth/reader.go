package eth

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
	"github.com/nulln0ne/pino-redeem/pkg/trade"
)

// Reader reads pair reserves, balances and allowances. Every read of one
// snapshot is pinned to the same block.
type Reader struct {
	logger  *slog.Logger
	client  *ethclient.Client
	weth    common.Address
	spender common.Address
}

// NewReader returns a Reader orienting pairs against weth and reading
// allowances granted to spender (the router).
func NewReader(logger *slog.Logger, client *ethclient.Client, weth, spender common.Address) *Reader {
	return &Reader{logger: logger, client: client, weth: weth, spender: spender}
}

// Pair is the raw state of a Uniswap V2 pair.
type Pair struct {
	Token0   common.Address
	Token1   common.Address
	Reserve0 *uint256.Int
	Reserve1 *uint256.Int
}

//	contract UniswapV2Pair is IUniswapV2Pair, UniswapV2ERC20 {
//	    using SafeMath  for uint;
//	    using UQ112x112 for uint224;
//
//	    uint public constant MINIMUM_LIQUIDITY = 10**3;
//	    bytes4 private constant SELECTOR = bytes4(keccak256(bytes('transfer(address,uint256)')));
//
//	    address public factory;
//	    address public token0;
//	    address public token1;
//
//	    uint112 private reserve0;           // uses single storage slot, accessible via getReserves
//	    uint112 private reserve1;           // uses single storage slot, accessible via getReserves
//	    uint32  private blockTimestampLast; // uses single storage slot, accessible via getReserves
const (
	slotToken0   = 6
	slotToken1   = 7
	slotReserves = 8
)

// BlockNumber returns the latest block as the pin for a snapshot.
func (r *Reader) BlockNumber(ctx context.Context) (*big.Int, error) {
	bn, err := retryRead(ctx, r.logger, "blockNumber", func() (uint64, error) {
		return r.client.BlockNumber(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	return new(big.Int).SetUint64(bn), nil
}

// Pair reads token0, token1 and the reserves of pool at blockNum.
func (r *Reader) Pair(ctx context.Context, pool common.Address, blockNum *big.Int) (*Pair, error) {
	token0, token1, err := r.loadTokens(ctx, pool, blockNum)
	if err != nil {
		return nil, err
	}

	// reserves (uint112 | uint112 | uint32) are packed into a single 32‑byte slot (slot 8)
	br, err := r.readSlot(ctx, pool, blockNum, slotReserves)
	if err != nil {
		return nil, err
	}
	reserve0, reserve1 := parseReserves(br)

	return &Pair{Token0: token0, Token1: token1, Reserve0: reserve0, Reserve1: reserve1}, nil
}

// Reserves reads pool and orients its reserves as (WETH side, token side).
func (r *Reader) Reserves(ctx context.Context, pool, token common.Address, blockNum *big.Int) (trade.Reserves, error) {
	p, err := r.Pair(ctx, pool, blockNum)
	if err != nil {
		return trade.Reserves{}, err
	}
	switch {
	case p.Token0 == r.weth && p.Token1 == token:
		return trade.Reserves{ETH: p.Reserve0, Token: p.Reserve1}, nil
	case p.Token1 == r.weth && p.Token0 == token:
		return trade.Reserves{ETH: p.Reserve1, Token: p.Reserve0}, nil
	default:
		return trade.Reserves{}, fmt.Errorf("%w: pool %s", ErrPairMismatch, pool.Hex())
	}
}

func (r *Reader) readSlot(ctx context.Context, pool common.Address, blockNum *big.Int, slot uint64) ([]byte, error) {
	key := common.BigToHash(new(big.Int).SetUint64(slot))
	b, err := retryRead(ctx, r.logger, "storageAt", func() ([]byte, error) {
		return r.client.StorageAt(ctx, pool, key, blockNum)
	})
	if err != nil {
		return nil, fmt.Errorf("storageAt slot %d (pool %s, block %s): %w",
			slot, pool.Hex(), blockNum.String(), err)
	}
	return b, nil
}

// loadTokens reads token0 and token1 from Uniswap V2 pair storage (slots 6 and 7).
func (r *Reader) loadTokens(ctx context.Context, pool common.Address, blockNum *big.Int) (common.Address, common.Address, error) {
	b0, err := r.readSlot(ctx, pool, blockNum, slotToken0)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	b1, err := r.readSlot(ctx, pool, blockNum, slotToken1)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return common.BytesToAddress(b0), common.BytesToAddress(b1), nil
}

var mask112 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 112), uint256.NewInt(1))

// parseReserves unpacks two uint112 reserves from the 32‑byte storage word
// used by Uniswap V2 pairs. The layout is:
//
//	[ 32 bits timestamp | 112 bits reserve1 | 112 bits reserve0 ]
//
// Values are treated as big‑endian within the 256‑bit word.
func parseReserves(b []byte) (reserve0, reserve1 *uint256.Int) {
	v := new(uint256.Int).SetBytes(b)
	reserve0 = new(uint256.Int).And(v, mask112)
	reserve1 = new(uint256.Int).Rsh(v, 112)
	reserve1.And(reserve1, mask112)
	return
}

// callUint calls a uint256-returning view method of an ERC20 at blockNum.
func (r *Reader) callUint(ctx context.Context, token common.Address, blockNum *big.Int, method string, args ...interface{}) (*uint256.Int, error) {
	input, err := ERC20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := retryRead(ctx, r.logger, method, func() ([]byte, error) {
		return r.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: input}, blockNum)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", method, token.Hex(), err)
	}
	values, err := ERC20ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", ErrUnexpectedReturn, method, len(values))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", ErrUnexpectedReturn, method, values[0])
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: %s overflows uint256", ErrUnexpectedReturn, method)
	}
	return u, nil
}

// TotalSupply returns the circulating supply of token at blockNum.
func (r *Reader) TotalSupply(ctx context.Context, token common.Address, blockNum *big.Int) (*uint256.Int, error) {
	return r.callUint(ctx, token, blockNum, "totalSupply")
}

// TokenBalance returns owner's balance of token at blockNum.
func (r *Reader) TokenBalance(ctx context.Context, token, owner common.Address, blockNum *big.Int) (*uint256.Int, error) {
	return r.callUint(ctx, token, blockNum, "balanceOf", owner)
}

// Allowance returns what owner allows the router to spend of token at blockNum.
func (r *Reader) Allowance(ctx context.Context, token, owner common.Address, blockNum *big.Int) (*uint256.Int, error) {
	return r.callUint(ctx, token, blockNum, "allowance", owner, r.spender)
}

// EtherBalance returns account's ether balance at blockNum.
func (r *Reader) EtherBalance(ctx context.Context, account common.Address, blockNum *big.Int) (*uint256.Int, error) {
	b, err := retryRead(ctx, r.logger, "balance", func() (*big.Int, error) {
		return r.client.BalanceAt(ctx, account, blockNum)
	})
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", account.Hex(), err)
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: balance overflows uint256", ErrUnexpectedReturn)
	}
	return u, nil
}

// SnapshotRequest names what to read. A zero Account skips balances and
// allowances; a nil Selected reads no selected pair (trading against ETH).
type SnapshotRequest struct {
	Account  common.Address
	Base     TokenPair
	Selected *TokenPair
	DAI      *TokenPair
}

// TokenPair is a token and its WETH pair.
type TokenPair struct {
	Token common.Address
	Pair  common.Address
}

// Snapshot is the chain state of one block.
type Snapshot struct {
	Block uint64
	trade.Snapshot
	DAI trade.Reserves
}

// Snapshot reads every value of req concurrently at the latest block.
func (r *Reader) Snapshot(ctx context.Context, req SnapshotRequest) (*Snapshot, error) {
	blockNum, err := r.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Block: blockNum.Uint64()}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Base, err = r.Reserves(gctx, req.Base.Pair, req.Base.Token, blockNum)
		return err
	})
	if req.Selected != nil {
		g.Go(func() (err error) {
			snap.Selected, err = r.Reserves(gctx, req.Selected.Pair, req.Selected.Token, blockNum)
			return err
		})
	}
	if req.DAI != nil {
		g.Go(func() (err error) {
			snap.DAI, err = r.Reserves(gctx, req.DAI.Pair, req.DAI.Token, blockNum)
			return err
		})
	}

	if req.Account != (common.Address{}) {
		account := req.Account
		g.Go(func() (err error) {
			snap.BalanceETH, err = r.EtherBalance(gctx, account, blockNum)
			return err
		})
		g.Go(func() (err error) {
			snap.BalanceBase, err = r.TokenBalance(gctx, req.Base.Token, account, blockNum)
			return err
		})
		g.Go(func() (err error) {
			snap.AllowanceBase, err = r.Allowance(gctx, req.Base.Token, account, blockNum)
			return err
		})
		if req.Selected != nil {
			g.Go(func() (err error) {
				snap.BalanceSelected, err = r.TokenBalance(gctx, req.Selected.Token, account, blockNum)
				return err
			})
			g.Go(func() (err error) {
				snap.AllowanceSelected, err = r.Allowance(gctx, req.Selected.Token, account, blockNum)
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Debug("snapshot read", "block", snap.Block, "account", req.Account.Hex())
	return snap, nil
}

// Supply is the base token's supply next to its pool reserve, read at Block.
type Supply struct {
	Block       uint64
	TotalSupply *uint256.Int
	Pool        trade.Reserves
}

// Supply reads the total supply of base.Token and the reserves of base.Pair
// at the latest block.
func (r *Reader) Supply(ctx context.Context, base TokenPair) (*Supply, error) {
	blockNum, err := r.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	s := &Supply{Block: blockNum.Uint64()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.TotalSupply, err = r.TotalSupply(gctx, base.Token, blockNum)
		return err
	})
	g.Go(func() (err error) {
		s.Pool, err = r.Reserves(gctx, base.Pair, base.Token, blockNum)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// UnlockGas estimates approving the router for an unlimited amount of token
// from account and returns the gas budget with margin and price inflation
// applied.
func (r *Reader) UnlockGas(ctx context.Context, account, token common.Address) (trade.GasEstimate, error) {
	input, err := ERC20ABI.Pack("approve", r.spender, fixedpoint.MaxUint256.ToBig())
	if err != nil {
		return trade.GasEstimate{}, fmt.Errorf("pack approve: %w", err)
	}

	var (
		limit uint64
		price *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		limit, err = r.client.EstimateGas(gctx, ethereum.CallMsg{From: account, To: &token, Data: input})
		if err != nil {
			return fmt.Errorf("estimate approve: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		price, err = r.client.SuggestGasPrice(gctx)
		if err != nil {
			return fmt.Errorf("gas price: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return trade.GasEstimate{}, err
	}

	p, overflow := uint256.FromBig(price)
	if overflow {
		return trade.GasEstimate{}, fmt.Errorf("%w: gas price overflows uint256", ErrUnexpectedReturn)
	}
	return trade.NewGasEstimate(limit, p)
}
