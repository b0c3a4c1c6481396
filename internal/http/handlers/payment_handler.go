package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

const (
	headerWebhookSignature = "x-webhook-signature"
	headerWebhookTimestamp = "x-webhook-timestamp"
)

type PaymentHandler struct {
	Payments *services.PaymentService
	// WebhookSecret enables signature checks on webhook deliveries when set.
	WebhookSecret string
}

type initiatePaymentRequest struct {
	UserID validate.Number `json:"userId"`
	Amount validate.Number `json:"amount"`
}

type webhookRequest struct {
	OrderID     validate.Number `json:"orderId"`
	OrderStatus string          `json:"orderStatus"`
}

func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	var req initiatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errBadBody)
	}
	userID, ok := validate.ID(string(req.UserID))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "userId"})
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "userId must be a positive integer"))
	}
	amount, ok := validate.Amount(req.Amount)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "amount"})
		return respondError(c, services.ErrInvalidAmount)
	}

	res, err := h.Payments.Initiate(c.UserContext(), userID, amount)
	if err != nil {
		if res.OrderID != 0 {
			c.Set("X-Order-Id", strconv.FormatInt(res.OrderID, 10))
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"token": res.Token, "orderId": res.OrderID})
}

func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	if h.WebhookSecret != "" {
		if err := services.VerifyWebhook(h.WebhookSecret, c.Get(headerWebhookTimestamp), c.Body(), c.Get(headerWebhookSignature)); err != nil {
			applog.Security(c, "webhook.signature.fail", nil)
			return respondError(c, err)
		}
	}

	var req webhookRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, services.ErrInvalidWebhookPayload)
	}
	// invalid fields fall through as zero values and are rejected by the service
	orderID, _ := validate.ID(string(req.OrderID))
	status, ok := validate.Status(req.OrderStatus)
	if !ok && len(strings.TrimSpace(req.OrderStatus)) > validate.MaxStatusLen {
		return respondError(c, fmt.Errorf("%w: orderStatus longer than %d characters", services.ErrInvalidWebhookPayload, validate.MaxStatusLen))
	}

	if err := h.Payments.HandleWebhook(c.UserContext(), services.WebhookPayload{OrderID: orderID, OrderStatus: status}); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payment status updated."})
}
