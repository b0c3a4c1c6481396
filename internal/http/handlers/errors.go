package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

const internalMessage = "internal server error"

var errBadBody = errors.New("request body must be a JSON object")

// statusFor maps the service error taxonomy to a status and a client-safe message.
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidWebhookPayload),
		errors.Is(err, errBadBody):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidSignature):
		return fiber.StatusUnauthorized, services.ErrInvalidSignature.Error()
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrOutOfStock):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrPaymentInitiationFailed):
		return fiber.StatusBadGateway, services.ErrPaymentInitiationFailed.Error()
	case errors.As(err, &fe):
		if fe.Code >= fiber.StatusInternalServerError {
			return fe.Code, internalMessage
		}
		return fe.Code, fe.Message
	default:
		return fiber.StatusInternalServerError, internalMessage
	}
}

// respondError writes {"error": msg}. Server-side failures are logged with their cause,
// client errors as security events.
func respondError(c *fiber.Ctx, err error) error {
	code, msg := statusFor(err)
	c.Status(code)
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "request.fail", err, nil)
	} else {
		applog.Security(c, "request.rejected", map[string]any{"reason": err.Error()})
	}
	return c.JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback for errors returned by handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}
