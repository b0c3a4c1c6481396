package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

type CartService struct {
	Carts *repos.CartRepo
	// DecrementStock consumes product stock in the same transaction as the insert.
	DecrementStock bool
	Metrics        *metrics.Metrics
}

func NewCartService(carts *repos.CartRepo, decrementStock bool, m *metrics.Metrics) *CartService {
	return &CartService{Carts: carts, DecrementStock: decrementStock, Metrics: m}
}

// Add records a cart line after checking stock and returns the new line id.
// A missing product fails with ErrOutOfStock (and ErrNotFound).
func (s *CartService) Add(ctx context.Context, userID, productID int64, qty int) (int64, error) {
	if qty < 1 {
		return 0, ErrInvalidQuantity
	}
	if userID < 1 || productID < 1 {
		return 0, fmt.Errorf("%w: userId and productId are required", ErrInvalidInput)
	}

	id, err := s.Carts.AddLine(ctx, userID, productID, qty, s.DecrementStock)
	switch {
	case err == nil:
		s.Metrics.CartAdd("ok")
		return id, nil
	case errors.Is(err, repos.ErrProductNotFound):
		s.Metrics.CartAdd("out_of_stock")
		return 0, fmt.Errorf("%w: %w", ErrOutOfStock, err)
	case errors.Is(err, repos.ErrInsufficientStock):
		s.Metrics.CartAdd("out_of_stock")
		return 0, fmt.Errorf("%w: %v", ErrOutOfStock, err)
	case errors.Is(err, repos.ErrNotFound):
		s.Metrics.CartAdd("not_found")
		return 0, err
	default:
		s.Metrics.CartAdd("error")
		applog.Error(nil, "cart.add.fail", err, map[string]any{"user_id": userID, "product_id": productID})
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}
}

// View returns the user's cart lines; an empty cart is an empty slice.
func (s *CartService) View(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	if userID < 1 {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	lines, err := s.Carts.Lines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return lines, nil
}
