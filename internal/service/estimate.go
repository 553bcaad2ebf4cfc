package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/internal/config"
	"github.com/nulln0ne/pino-redeem/internal/eth"
	"github.com/nulln0ne/pino-redeem/pkg/trade"
)

// EstimateService estimates exact-input swaps between ETH, the base token
// and the selectable tokens, reading the configured pairs at one block.
type EstimateService struct {
	BaseService
}

// NewEstimateService constructs an EstimateService using the provided logger,
// chain reader and configured contracts.
func NewEstimateService(logger *slog.Logger, reader *eth.Reader, contracts config.Contracts) *EstimateService {
	return &EstimateService{
		BaseService: BaseService{logger: logger, reader: reader, contracts: contracts},
	}
}

// Estimate is the output of selling AmountIn of Src for Dst at Block.
type Estimate struct {
	Block    uint64
	Src      string
	Dst      string
	AmountIn *uint256.Int
	*trade.Route
}

// Estimate computes the output of selling amount of src for dst at the
// latest block. One side must be ETH or the base token; trades between two
// selectable tokens are not routed.
func (e *EstimateService) Estimate(ctx context.Context, src, dst, amount string) (*Estimate, error) {
	e.logger.Debug("estimating swap", "src", src, "dst", dst, "amount", amount)

	in, err := e.lookupAsset(src)
	if err != nil {
		return nil, err
	}
	out, err := e.lookupAsset(dst)
	if err != nil {
		return nil, err
	}
	if in.symbol == out.symbol {
		return nil, ErrSameToken
	}
	if in.side == trade.SideOther && out.side == trade.SideOther {
		return nil, fmt.Errorf("%w: %w: %s to %s", trade.ErrInvalidTrade, trade.ErrUnsupportedRoute, in.symbol, out.symbol)
	}

	amountIn, err := trade.ParseAmount(amount)
	if err != nil {
		return nil, err
	}

	req := eth.SnapshotRequest{Base: e.basePair()}
	for _, a := range []asset{in, out} {
		if a.side == trade.SideOther {
			req.Selected = &eth.TokenPair{Token: a.token.Address, Pair: a.token.Pair}
		}
	}
	snap, err := e.reader.Snapshot(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	route, err := trade.EstimateOutput(in.side, out.side, amountIn, snap.Base, snap.Selected)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("amount out computed", "block", snap.Block, "out", route.Amount.Dec())
	return &Estimate{Block: snap.Block, Src: in.symbol, Dst: out.symbol, AmountIn: amountIn, Route: route}, nil
}
