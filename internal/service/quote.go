package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/internal/config"
	"github.com/nulln0ne/pino-redeem/internal/eth"
	"github.com/nulln0ne/pino-redeem/internal/metrics"
	"github.com/nulln0ne/pino-redeem/pkg/trade"
)

// Quote kinds, used as metric labels.
const (
	KindBuy    = "buy"
	KindSell   = "sell"
	KindRedeem = "redeem"
	KindUnlock = "unlock"
	KindPrice  = "price"
	KindStats  = "stats"
)

// QuoteService quotes PINO trades and redemptions against a fresh chain
// snapshot per request.
type QuoteService struct {
	BaseService
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewQuoteService constructs a QuoteService. m may be nil.
func NewQuoteService(logger *slog.Logger, reader *eth.Reader, contracts config.Contracts, m *metrics.Metrics) *QuoteService {
	return &QuoteService{
		BaseService: BaseService{logger: logger, reader: reader, contracts: contracts},
		metrics:     m,
		now:         time.Now,
	}
}

// QuoteRequest asks for a quote of Amount base tokens traded against Asset
// ("ETH" or a selectable token symbol). Account is optional; without it
// balance and allowance checks are skipped and no router call is built.
type QuoteRequest struct {
	Amount  string
	Asset   string
	Account common.Address
}

// TradeQuote is a validated trade at one block.
type TradeQuote struct {
	Block uint64
	Asset string
	*trade.ValidationResult

	// Call is the router call, set when the request names an account.
	Call *trade.SwapCall

	// Dollar values of the input and output, set when DAI is configured.
	InputUSD  *uint256.Int
	OutputUSD *uint256.Int
}

// Redemption is a validated burn of base tokens.
type Redemption struct {
	Block uint64
	*trade.ValidationResult

	// Redeemable reports whether the account holds at least one token.
	Redeemable bool
	Balance    *uint256.Int
}

// resolveAsset resolves the asset a base token trade is paid or settled in.
func (s *QuoteService) resolveAsset(symbol string) (asset, error) {
	a, err := s.lookupAsset(symbol)
	if err != nil {
		return asset{}, err
	}
	if a.side == trade.SideBase {
		return asset{}, fmt.Errorf("%w: %s", ErrSameToken, a.symbol)
	}
	return a, nil
}

func (s *QuoteService) snapshotRequest(a asset, account common.Address) eth.SnapshotRequest {
	req := eth.SnapshotRequest{
		Account: account,
		Base:    s.basePair(),
	}
	if a.side == trade.SideOther {
		req.Selected = &eth.TokenPair{Token: a.token.Address, Pair: a.token.Pair}
	}
	if s.contracts.DAI != nil {
		req.DAI = &eth.TokenPair{Token: s.contracts.DAI.Address, Pair: s.contracts.DAI.Pair}
	}
	return req
}

func (s *QuoteService) snapshot(ctx context.Context, req eth.SnapshotRequest) (*eth.Snapshot, error) {
	snap, err := s.reader.Snapshot(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	s.metrics.SetSnapshotBlock(snap.Block)
	return snap, nil
}

func outcome(err error, res *trade.ValidationResult) string {
	switch {
	case errors.Is(err, trade.ErrInvalidAmount), errors.Is(err, trade.ErrInvalidTrade),
		errors.Is(err, trade.ErrArithmeticOverflow), errors.Is(err, ErrUnknownToken),
		errors.Is(err, ErrSameToken):
		return metrics.OutcomeRejected
	case err != nil:
		return metrics.OutcomeFailed
	case res != nil && !res.Submittable():
		return metrics.OutcomeAdvisory
	default:
		return metrics.OutcomeOK
	}
}

// Buy quotes buying req.Amount base tokens with req.Asset.
func (s *QuoteService) Buy(ctx context.Context, req QuoteRequest) (q *TradeQuote, err error) {
	start := s.now()
	defer func() { s.metrics.TrackQuote(KindBuy, outcome(err, resultOf(q)), start) }()
	return s.quote(ctx, req, KindBuy)
}

// Sell quotes selling req.Amount base tokens for req.Asset.
func (s *QuoteService) Sell(ctx context.Context, req QuoteRequest) (q *TradeQuote, err error) {
	start := s.now()
	defer func() { s.metrics.TrackQuote(KindSell, outcome(err, resultOf(q)), start) }()
	return s.quote(ctx, req, KindSell)
}

func resultOf(q *TradeQuote) *trade.ValidationResult {
	if q == nil {
		return nil
	}
	return q.ValidationResult
}

func (s *QuoteService) quote(ctx context.Context, req QuoteRequest, kind string) (*TradeQuote, error) {
	a, err := s.resolveAsset(req.Asset)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, s.snapshotRequest(a, req.Account))
	if err != nil {
		return nil, err
	}

	validate, build := trade.ValidateBuy, trade.BuyCall
	if kind == KindSell {
		validate, build = trade.ValidateSell, trade.SellCall
	}

	res, err := validate(req.Amount, a.side, snap.Snapshot)
	if err != nil {
		s.logger.Debug("quote rejected", "kind", kind, "asset", a.symbol, "amount", req.Amount, "block", snap.Block, "err", err)
		return nil, err
	}

	q := &TradeQuote{Block: snap.Block, Asset: a.symbol, ValidationResult: res}

	if req.Account != (common.Address{}) {
		addrs := trade.Addresses{WETH: s.contracts.WETH, Base: s.contracts.Base.Address, Selected: a.token.Address}
		call, err := build(res.Quote, a.side, addrs, req.Account, trade.Deadline(s.now()))
		if err != nil {
			return nil, fmt.Errorf("router call: %w", err)
		}
		q.Call = &call
	}

	s.dollarize(q, a, snap, kind)

	s.logger.Debug("quote computed", "kind", kind, "asset", a.symbol, "block", snap.Block,
		"input", res.Input.Dec(), "output", res.Output.Dec(), "err", res.Err)
	return q, nil
}

// dollarize fills the dollar values of q. A missing rate leaves them nil.
func (s *QuoteService) dollarize(q *TradeQuote, a asset, snap *eth.Snapshot, kind string) {
	if s.contracts.DAI == nil {
		return
	}
	assetRate, ok := trade.USDRate(snap.DAI, a.side, snap.Selected)
	if !ok {
		return
	}
	baseRate, ok := trade.DollarPrice(snap.Base, snap.DAI)
	if !ok {
		return
	}

	inRate, outRate := assetRate, baseRate
	if kind == KindSell {
		inRate, outRate = baseRate, assetRate
	}
	// display only, an overflow just drops the value
	q.InputUSD, _ = trade.Dollarize(q.Input, inRate)
	q.OutputUSD, _ = trade.Dollarize(q.Output, outRate)
}

// Redeem checks burning amount base tokens held by account.
func (s *QuoteService) Redeem(ctx context.Context, amount string, account common.Address) (r *Redemption, err error) {
	start := s.now()
	defer func() {
		var res *trade.ValidationResult
		if r != nil {
			res = r.ValidationResult
		}
		s.metrics.TrackQuote(KindRedeem, outcome(err, res), start)
	}()

	if account == (common.Address{}) {
		return nil, ErrAccountRequired
	}
	snap, err := s.snapshot(ctx, eth.SnapshotRequest{
		Account: account,
		Base:    s.basePair(),
	})
	if err != nil {
		return nil, err
	}

	res, err := trade.ValidateRedeem(amount, snap.Snapshot)
	if err != nil {
		return nil, err
	}
	return &Redemption{
		Block:            snap.Block,
		ValidationResult: res,
		Redeemable:       trade.Redeemable(snap.BalanceBase),
		Balance:          snap.BalanceBase,
	}, nil
}

// UnlockGas estimates the gas of approving the router to spend symbol on
// behalf of account. symbol is the base token or a selectable token.
func (s *QuoteService) UnlockGas(ctx context.Context, account common.Address, symbol string) (est trade.GasEstimate, err error) {
	start := s.now()
	defer func() { s.metrics.TrackQuote(KindUnlock, outcome(err, nil), start) }()

	if account == (common.Address{}) {
		return trade.GasEstimate{}, ErrAccountRequired
	}

	a, err := s.lookupAsset(symbol)
	if err != nil {
		return trade.GasEstimate{}, err
	}
	if a.side == trade.SideETH {
		return trade.GasEstimate{}, ErrNothingToUnlock
	}
	token := a.token.Address

	est, err = s.reader.UnlockGas(ctx, account, token)
	if err != nil {
		return trade.GasEstimate{}, fmt.Errorf("unlock gas: %w", err)
	}
	s.logger.Debug("unlock gas estimated", "token", token.Hex(), "limit", est.Limit, "price", est.Price.Dec())
	return est, nil
}

// DollarPrice returns the dollar spot price of one base token, scaled by
// 10^18, and the block it was read at.
func (s *QuoteService) DollarPrice(ctx context.Context) (price *uint256.Int, block uint64, err error) {
	start := s.now()
	defer func() { s.metrics.TrackQuote(KindPrice, outcome(err, nil), start) }()

	if s.contracts.DAI == nil {
		return nil, 0, ErrPricingUnavailable
	}
	snap, err := s.snapshot(ctx, s.snapshotRequest(asset{side: trade.SideETH}, common.Address{}))
	if err != nil {
		return nil, 0, err
	}
	price, ok := trade.DollarPrice(snap.Base, snap.DAI)
	if !ok {
		return nil, snap.Block, fmt.Errorf("%w: %w", trade.ErrInvalidTrade, trade.ErrReservesUnavailable)
	}
	return price, snap.Block, nil
}

// Stats is the base token's supply and redemption state at one block.
type Stats struct {
	Block       uint64
	TotalSupply *uint256.Int
	// Redeemed counts base units burned for physical redemption.
	Redeemed *uint256.Int
	// PoolReserve is the base token held by its WETH pair.
	PoolReserve *uint256.Int
}

// Stats reads the base token's total supply and pool reserve at one block.
func (s *QuoteService) Stats(ctx context.Context) (st *Stats, err error) {
	start := s.now()
	defer func() { s.metrics.TrackQuote(KindStats, outcome(err, nil), start) }()

	supply, err := s.reader.Supply(ctx, s.basePair())
	if err != nil {
		return nil, fmt.Errorf("supply: %w", err)
	}
	s.metrics.SetSnapshotBlock(supply.Block)

	return &Stats{
		Block:       supply.Block,
		TotalSupply: supply.TotalSupply,
		Redeemed:    trade.Redeemed(supply.TotalSupply),
		PoolReserve: supply.Pool.Token,
	}, nil
}
