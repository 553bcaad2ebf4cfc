package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/pino-redeem/internal/service"
)

type EstimateHandler struct {
	BaseHandler
	service *service.EstimateService
}

func NewEstimateHandler(logger *slog.Logger, svc *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

// Src and Dst are asset symbols: ETH, PINO or a selectable token. Amount is
// a decimal number of whole src tokens.
type EstimateRequest struct {
	Src    string `query:"src" json:"src"`
	Dst    string `query:"dst" json:"dst"`
	Amount string `query:"amount" json:"amount"`
}

type EstimateResponse struct {
	Block        uint64            `json:"block"`
	Src          string            `json:"src"`
	Dst          string            `json:"dst"`
	AmountIn     string            `json:"amount_in"`
	AmountOut    string            `json:"amount_out"`
	Intermediate string            `json:"intermediate,omitempty"`
	Hops         int               `json:"hops"`
	Display      map[string]string `json:"display"`
}

// Handle estimates the output of an exact-input swap.
func (h *EstimateHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req EstimateRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}

		est, err := h.service.Estimate(c.Context(), req.Src, req.Dst, req.Amount)
		if err != nil {
			return h.handleServiceError(err, ErrEstimationFailedInternal)
		}

		h.logger.Debug("estimate computed", "src", est.Src, "dst", est.Dst, "in", est.AmountIn.Dec(), "out", est.Amount.Dec())
		return c.JSON(EstimateResponse{
			Block:        est.Block,
			Src:          est.Src,
			Dst:          est.Dst,
			AmountIn:     est.AmountIn.Dec(),
			AmountOut:    est.Amount.Dec(),
			Intermediate: decimalString(est.Intermediate),
			Hops:         est.Hops,
			Display: map[string]string{
				"amount_in":  display(est.AmountIn),
				"amount_out": display(est.Amount),
			},
		})
	}
}
