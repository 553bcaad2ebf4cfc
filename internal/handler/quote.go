package handler

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gofiber/fiber/v3"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/pino-redeem/internal/service"
	"github.com/nulln0ne/pino-redeem/pkg/fixedpoint"
	"github.com/nulln0ne/pino-redeem/pkg/trade"
)

// displayDecimals is how many fractional digits amounts are shown with.
const displayDecimals = 3

type QuoteHandler struct {
	BaseHandler
	service *service.QuoteService
	router  common.Address
}

func NewQuoteHandler(logger *slog.Logger, svc *service.QuoteService, router common.Address) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
		router:  router,
	}
}

type QuoteRequest struct {
	Amount  string `query:"amount" json:"amount"`
	Asset   string `query:"asset" json:"asset"`
	Account string `query:"account" json:"account"`
}

// Amounts are decimal strings of base units; Display holds the same amounts
// in whole tokens for humans.
type QuoteResponse struct {
	Block         uint64            `json:"block"`
	Asset         string            `json:"asset"`
	Input         string            `json:"input"`
	Output        string            `json:"output"`
	MaximumInput  string            `json:"maximum_input,omitempty"`
	MinimumOutput string            `json:"minimum_output,omitempty"`
	Intermediate  string            `json:"intermediate,omitempty"`
	Hops          int               `json:"hops"`
	InputUSD      string            `json:"input_usd,omitempty"`
	OutputUSD     string            `json:"output_usd,omitempty"`
	Display       map[string]string `json:"display"`
	Error         string            `json:"error,omitempty"`
	Advisories    []string          `json:"advisories,omitempty"`
	Call          *CallResponse     `json:"call,omitempty"`
}

type CallResponse struct {
	To       string `json:"to"`
	Method   string `json:"method"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Deadline uint64 `json:"deadline"`
}

type RedeemResponse struct {
	Block      uint64            `json:"block"`
	Amount     string            `json:"amount"`
	Balance    string            `json:"balance"`
	Redeemable bool              `json:"redeemable"`
	Display    map[string]string `json:"display"`
	Error      string            `json:"error,omitempty"`
	Advisories []string          `json:"advisories,omitempty"`
}

type UnlockResponse struct {
	GasLimit uint64 `json:"gas_limit"`
	GasPrice string `json:"gas_price"`
}

type StatsResponse struct {
	Block       uint64            `json:"block"`
	TotalSupply string            `json:"total_supply"`
	Redeemed    string            `json:"redeemed"`
	PoolReserve string            `json:"pool_reserve"`
	Display     map[string]string `json:"display"`
}

type PriceResponse struct {
	Block   uint64 `json:"block"`
	Price   string `json:"price"`
	Display string `json:"display"`
}

// Buy quotes buying PINO.
func (h *QuoteHandler) Buy() fiber.Handler {
	return h.trade(h.service.Buy)
}

// Sell quotes selling PINO.
func (h *QuoteHandler) Sell() fiber.Handler {
	return h.trade(h.service.Sell)
}

type quoteFunc = func(ctx context.Context, req service.QuoteRequest) (*service.TradeQuote, error)

func (h *QuoteHandler) trade(quote quoteFunc) fiber.Handler {
	return func(c fiber.Ctx) error {
		req, err := h.parseRequest(c, false)
		if err != nil {
			return err
		}

		q, err := quote(c.Context(), *req)
		if err != nil {
			return h.handleServiceError(err, ErrQuoteFailedInternal)
		}

		resp, err := h.quoteResponse(q)
		if err != nil {
			h.logger.Error("encode quote", "err", err)
			return ErrQuoteFailedInternal
		}
		return c.JSON(resp)
	}
}

// Redeem checks burning PINO for a physical redemption.
func (h *QuoteHandler) Redeem() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, err := h.parseRequest(c, true)
		if err != nil {
			return err
		}

		r, err := h.service.Redeem(c.Context(), req.Amount, req.Account)
		if err != nil {
			return h.handleServiceError(err, ErrQuoteFailedInternal)
		}

		resp := RedeemResponse{
			Block:      r.Block,
			Amount:     decimalString(r.Input),
			Balance:    decimalString(r.Balance),
			Redeemable: r.Redeemable,
			Display: map[string]string{
				"amount":  display(r.Input),
				"balance": display(r.Balance),
			},
		}
		resp.Error, resp.Advisories = advisoryStrings(r.ValidationResult)
		return c.JSON(resp)
	}
}

// Unlock estimates the gas of approving the router for a token.
func (h *QuoteHandler) Unlock() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, err := h.parseRequest(c, true)
		if err != nil {
			return err
		}

		est, err := h.service.UnlockGas(c.Context(), req.Account, req.Asset)
		if err != nil {
			return h.handleServiceError(err, ErrQuoteFailedInternal)
		}
		return c.JSON(UnlockResponse{GasLimit: est.Limit, GasPrice: est.Price.Dec()})
	}
}

// Price returns the dollar price of one PINO.
func (h *QuoteHandler) Price() fiber.Handler {
	return func(c fiber.Ctx) error {
		price, block, err := h.service.DollarPrice(c.Context())
		if err != nil {
			return h.handleServiceError(err, ErrQuoteFailedInternal)
		}
		disp, err := fixedpoint.FormatAmount(price, fixedpoint.Decimals, 2, false)
		if err != nil {
			return ErrQuoteFailedInternal
		}
		return c.JSON(PriceResponse{Block: block, Price: price.Dec(), Display: disp})
	}
}

// Stats reports PINO's total supply, how much was redeemed and how much
// sits in the pool.
func (h *QuoteHandler) Stats() fiber.Handler {
	return func(c fiber.Ctx) error {
		st, err := h.service.Stats(c.Context())
		if err != nil {
			return h.handleServiceError(err, ErrQuoteFailedInternal)
		}
		return c.JSON(StatsResponse{
			Block:       st.Block,
			TotalSupply: st.TotalSupply.Dec(),
			Redeemed:    st.Redeemed.Dec(),
			PoolReserve: st.PoolReserve.Dec(),
			Display: map[string]string{
				"total_supply": display(st.TotalSupply),
				"redeemed":     display(st.Redeemed),
				"pool_reserve": display(st.PoolReserve),
			},
		})
	}
}

// parseRequest binds the query into a service request. Amount is only
// checked for presence; the core parses it.
func (h *QuoteHandler) parseRequest(c fiber.Ctx, needAccount bool) (*service.QuoteRequest, error) {
	var req QuoteRequest
	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return nil, ErrInvalidQueryParameters
	}

	out := &service.QuoteRequest{Amount: req.Amount, Asset: req.Asset}
	switch {
	case req.Account == "" && needAccount:
		return nil, NewAddressRequired("account")
	case req.Account == "":
	case !common.IsHexAddress(req.Account):
		return nil, NewInvalidAddress("account")
	default:
		out.Account = common.HexToAddress(req.Account)
	}
	return out, nil
}

func (h *QuoteHandler) quoteResponse(q *service.TradeQuote) (*QuoteResponse, error) {
	resp := &QuoteResponse{
		Block:         q.Block,
		Asset:         q.Asset,
		Input:         decimalString(q.Input),
		Output:        decimalString(q.Output),
		MaximumInput:  decimalString(q.MaximumInput),
		MinimumOutput: decimalString(q.MinimumOutput),
		InputUSD:      decimalString(q.InputUSD),
		OutputUSD:     decimalString(q.OutputUSD),
		Display: map[string]string{
			"input":  display(q.Input),
			"output": display(q.Output),
		},
	}
	if q.Route != nil {
		resp.Hops = q.Route.Hops
		resp.Intermediate = decimalString(q.Route.Intermediate)
	}
	if q.MaximumInput != nil {
		resp.Display["maximum_input"] = display(q.MaximumInput)
	}
	if q.MinimumOutput != nil {
		resp.Display["minimum_output"] = display(q.MinimumOutput)
	}
	resp.Error, resp.Advisories = advisoryStrings(q.ValidationResult)

	if q.Call != nil {
		data, err := q.Call.Calldata()
		if err != nil {
			return nil, err
		}
		resp.Call = &CallResponse{
			To:       h.router.Hex(),
			Method:   q.Call.Method,
			Data:     hexutil.Encode(data),
			Value:    decimalString(q.Call.Value),
			Deadline: q.Call.Deadline,
		}
	}
	return resp, nil
}

func advisoryStrings(res *trade.ValidationResult) (string, []string) {
	if res == nil || res.Err == nil {
		return "", nil
	}
	all := make([]string, 0, len(res.Advisories))
	for _, err := range res.Advisories {
		all = append(all, err.Error())
	}
	return res.Err.Error(), all
}

func decimalString(x *uint256.Int) string {
	if x == nil {
		return ""
	}
	return x.Dec()
}

func display(x *uint256.Int) string {
	s, err := fixedpoint.FormatAmount(x, fixedpoint.Decimals, displayDecimals, true)
	if err != nil {
		return ""
	}
	return s
}
