package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Payments *services.PaymentService
	Users    *repos.UserRepo
}

// Get returns the order as JSON.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "order id must be a positive integer"))
	}
	o, err := h.Payments.Order(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(o)
}

// Receipt renders the order as an HTML page.
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return renderNotFound(c, "Order not found")
	}
	o, err := h.Payments.Order(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return renderNotFound(c, "Order not found")
	}
	if err != nil {
		applog.Error(c, "order.receipt.fail", err, map[string]any{"order_id": id})
		return render(c.Status(fiber.StatusInternalServerError), "notfound", fiber.Map{"Message": "Something went wrong. Please try again."})
	}
	return render(c, "order", fiber.Map{"Order": o})
}

// History lists the orders of one user, newest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	userID, ok := validate.ID(c.Params("id"))
	if !ok {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "user id must be a positive integer"))
	}
	u, err := h.Users.ByID(c.UserContext(), userID)
	if err != nil && !errors.Is(err, repos.ErrNotFound) {
		err = fmt.Errorf("%w: %w", services.ErrStorage, err)
	}
	if err != nil {
		return respondError(c, err)
	}
	orders, err := h.Payments.OrdersForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": u, "orders": orders})
}
