// Package ethtest serves a fake Ethereum JSON-RPC backend in-process, enough
// for ethclient to read Uniswap V2 pairs, ERC20 balances and allowances.
package ethtest

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

var (
	selBalanceOf   = crypto.Keccak256([]byte("balanceOf(address)"))[:4]
	selAllowance   = crypto.Keccak256([]byte("allowance(address,address)"))[:4]
	selApprove     = crypto.Keccak256([]byte("approve(address,uint256)"))[:4]
	selTotalSupply = crypto.Keccak256([]byte("totalSupply()"))[:4]

	errUnknownSelector = errors.New("execution reverted: unknown selector")

	// ErrInjected is returned by calls failed with FailNext.
	ErrInjected = errors.New("injected failure")
)

// Read is one state read served by the backend: the RPC method and the
// block it was asked for. Reads at "latest" record gethrpc.LatestBlockNumber.
type Read struct {
	Method string
	Block  gethrpc.BlockNumber
}

type allowanceKey struct {
	owner, spender common.Address
}

// Backend holds the fake chain state. It is safe to mutate between calls.
type Backend struct {
	mu sync.Mutex

	block      uint64
	chainID    *big.Int
	gasPrice   *big.Int
	approveGas uint64

	// storage[address][positionHash] = 32-byte value
	storage    map[common.Address]map[common.Hash][]byte
	ether      map[common.Address]*big.Int
	balances   map[common.Address]map[common.Address]*big.Int
	allowances map[common.Address]map[allowanceKey]*big.Int
	supplies   map[common.Address]*big.Int

	reads    []Read
	failures map[string]int
}

// New returns an empty backend at block 1 on chain 1.
func New() *Backend {
	return &Backend{
		block:      1,
		chainID:    big.NewInt(1),
		gasPrice:   big.NewInt(20_000_000_000),
		approveGas: 46_000,
		storage:    map[common.Address]map[common.Hash][]byte{},
		ether:      map[common.Address]*big.Int{},
		balances:   map[common.Address]map[common.Address]*big.Int{},
		allowances: map[common.Address]map[allowanceKey]*big.Int{},
		supplies:   map[common.Address]*big.Int{},
		failures:   map[string]int{},
	}
}

func (b *Backend) SetBlock(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.block = n
}

func (b *Backend) SetGasPrice(p *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gasPrice = p
}

func (b *Backend) SetApproveGas(g uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.approveGas = g
}

// SetPair lays out a Uniswap V2 pair in storage: token0 in slot 6, token1 in
// slot 7 and the packed reserves in slot 8.
func (b *Backend) SetPair(pool, token0, token1 common.Address, reserve0, reserve1 *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.storage[pool] = map[common.Hash][]byte{
		slot(6): rightAlign(token0.Bytes()),
		slot(7): rightAlign(token1.Bytes()),
		slot(8): PackReserves(reserve0, reserve1, 0),
	}
}

func (b *Backend) SetEther(account common.Address, v *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ether[account] = v
}

func (b *Backend) SetTokenBalance(token, owner common.Address, v *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[token] == nil {
		b.balances[token] = map[common.Address]*big.Int{}
	}
	b.balances[token][owner] = v
}

func (b *Backend) SetAllowance(token, owner, spender common.Address, v *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.allowances[token] == nil {
		b.allowances[token] = map[allowanceKey]*big.Int{}
	}
	b.allowances[token][allowanceKey{owner, spender}] = v
}

func (b *Backend) SetTotalSupply(token common.Address, v *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.supplies[token] = v
}

func (b *Backend) server(t testing.TB) *gethrpc.Server {
	t.Helper()
	srv := gethrpc.NewServer()
	// Register under the standard "eth" namespace so methods map to eth_*
	if err := srv.RegisterName("eth", &service{b: b}); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv
}

// FailNext makes the next n calls of method (e.g. "eth_getStorageAt") fail
// with ErrInjected.
func (b *Backend) FailNext(method string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method] = n
}

// Reads returns every state read served so far, in arrival order.
func (b *Backend) Reads() []Read {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Read(nil), b.reads...)
}

// serve records a call of method at block and reports an injected failure.
// Callers hold b.mu.
func (b *Backend) serve(method string, block *gethrpc.BlockNumberOrHash) error {
	if b.failures[method] > 0 {
		b.failures[method]--
		return ErrInjected
	}
	if block == nil {
		b.reads = append(b.reads, Read{Method: method, Block: gethrpc.LatestBlockNumber})
		return nil
	}
	// reads by hash are not recorded
	if n, ok := block.Number(); ok {
		b.reads = append(b.reads, Read{Method: method, Block: n})
	}
	return nil
}

// Client returns an ethclient connected to the backend in-process.
func (b *Backend) Client(t testing.TB) *ethclient.Client {
	t.Helper()
	c := ethclient.NewClient(gethrpc.DialInProc(b.server(t)))
	t.Cleanup(c.Close)
	return c
}

// URL serves the backend over HTTP and returns its endpoint.
func (b *Backend) URL(t testing.TB) string {
	t.Helper()
	hs := httptest.NewServer(b.server(t))
	t.Cleanup(hs.Close)
	return hs.URL
}

// PackReserves builds the storage word of a pair's reserves:
// [ 32 bits timestamp | 112 bits reserve1 | 112 bits reserve0 ].
func PackReserves(r0, r1 *big.Int, ts uint32) []byte {
	v := new(big.Int).SetUint64(uint64(ts))
	v.Lsh(v, 112)
	v.Or(v, r1)
	v.Lsh(v, 112)
	v.Or(v, r0)
	return U256Bytes(v)
}

// U256Bytes left-pads v to a 32-byte word.
func U256Bytes(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) > 32 {
		panic("value does not fit in 32 bytes")
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func rightAlign(b []byte) []byte {
	// Address is right-aligned in 32 bytes when read from storage
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func slot(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n))
}

// CallArgs mirrors the transaction object ethclient sends with eth_call and
// eth_estimateGas.
type CallArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

func (a CallArgs) payload() []byte {
	if a.Input != nil {
		return *a.Input
	}
	if a.Data != nil {
		return *a.Data
	}
	return nil
}

// service is the RPC receiver; its exported methods map to eth_* calls.
type service struct {
	b *Backend
}

func (s *service) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if err := s.b.serve("eth_blockNumber", nil); err != nil {
		return 0, err
	}
	return hexutil.Uint64(s.b.block), nil
}

func (s *service) ChainId(ctx context.Context) (*hexutil.Big, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return (*hexutil.Big)(s.b.chainID), nil
}

func (s *service) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return (*hexutil.Big)(s.b.gasPrice), nil
}

func (s *service) GetStorageAt(ctx context.Context, addr common.Address, position common.Hash, block gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if err := s.b.serve("eth_getStorageAt", &block); err != nil {
		return nil, err
	}
	if m, ok := s.b.storage[addr]; ok {
		if v, ok2 := m[position]; ok2 {
			return hexutil.Bytes(v), nil
		}
	}
	// default empty 32 bytes
	return hexutil.Bytes(make([]byte, 32)), nil
}

func (s *service) GetBalance(ctx context.Context, addr common.Address, block gethrpc.BlockNumberOrHash) (*hexutil.Big, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if err := s.b.serve("eth_getBalance", &block); err != nil {
		return nil, err
	}
	if v, ok := s.b.ether[addr]; ok {
		return (*hexutil.Big)(v), nil
	}
	return (*hexutil.Big)(new(big.Int)), nil
}

func (s *service) Call(ctx context.Context, args CallArgs, block *gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if block == nil {
		latest := gethrpc.BlockNumberOrHashWithNumber(gethrpc.LatestBlockNumber)
		block = &latest
	}
	if err := s.b.serve("eth_call", block); err != nil {
		return nil, err
	}

	data := args.payload()
	if args.To == nil || len(data) < 4 {
		return nil, errUnknownSelector
	}
	token := *args.To
	word := func(i int) common.Address {
		start := 4 + 32*i
		if len(data) < start+32 {
			return common.Address{}
		}
		return common.BytesToAddress(data[start+12 : start+32])
	}

	var v *big.Int
	switch {
	case bytes.Equal(data[:4], selBalanceOf):
		v = s.b.balances[token][word(0)]
	case bytes.Equal(data[:4], selAllowance):
		v = s.b.allowances[token][allowanceKey{word(0), word(1)}]
	case bytes.Equal(data[:4], selTotalSupply):
		v = s.b.supplies[token]
	default:
		return nil, errUnknownSelector
	}
	if v == nil {
		v = new(big.Int)
	}
	return U256Bytes(v), nil
}

func (s *service) EstimateGas(ctx context.Context, args CallArgs, _ *gethrpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	data := args.payload()
	if len(data) < 4 || !bytes.Equal(data[:4], selApprove) {
		return 0, errUnknownSelector
	}
	return hexutil.Uint64(s.b.approveGas), nil
}
