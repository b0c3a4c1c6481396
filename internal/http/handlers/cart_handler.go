package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

type addToCartRequest struct {
	UserID    validate.Number `json:"userId"`
	ProductID validate.Number `json:"productId"`
	Quantity  validate.Number `json:"quantity"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, errBadBody)
	}
	userID, ok := validate.ID(string(req.UserID))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "userId"})
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "userId must be a positive integer"))
	}
	productID, ok := validate.ID(string(req.ProductID))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "productId must be a positive integer"))
	}
	qty, ok := validate.Quantity(req.Quantity)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "quantity"})
		return respondError(c, services.ErrInvalidQuantity)
	}

	id, err := h.Cart.Add(c.UserContext(), userID, productID, qty)
	if err != nil {
		return respondError(c, err)
	}
	applog.Audit(c, "cart.add", map[string]any{"user_id": userID, "product_id": productID, "quantity": qty, "line_id": id})
	return c.JSON(fiber.Map{"message": "Item added to cart.", "id": id})
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	userID, ok := validate.ID(c.Params("userId"))
	if !ok {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "userId must be a positive integer"))
	}
	lines, err := h.Cart.View(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(lines)
}
