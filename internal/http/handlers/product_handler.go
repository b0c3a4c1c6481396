package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Products *repos.ProductRepo
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return respondError(c, repos.ErrProductNotFound)
	}
	p, err := h.Products.Get(c.UserContext(), id)
	if err != nil && !errors.Is(err, repos.ErrNotFound) {
		err = fmt.Errorf("%w: %w", services.ErrStorage, err)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}
