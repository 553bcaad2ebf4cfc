// Package handler defines HTTP request handlers and related utilities.
package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/nulln0ne/pino-redeem/internal/service"
	"github.com/nulln0ne/pino-redeem/pkg/trade"
)

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}

// handleServiceError maps a service failure to an HTTP error. Anything the
// caller could not have caused is logged and reported as internalErr.
func (h *BaseHandler) handleServiceError(err error, internalErr error) error {
	switch {
	case errors.Is(err, service.ErrSameToken):
		return ErrSameTokenBadRequest
	case errors.Is(err, service.ErrUnknownToken),
		errors.Is(err, service.ErrAccountRequired),
		errors.Is(err, service.ErrNothingToUnlock),
		errors.Is(err, trade.ErrInvalidAmount),
		errors.Is(err, trade.ErrInvalidTrade),
		errors.Is(err, trade.ErrArithmeticOverflow):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPricingUnavailable):
		return ErrPricingUnavailable
	default:
		h.logger.Error("service call failed", "err", err)
		return internalErr
	}
}
