package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// AddLine checks stock and inserts a cart line in one transaction. With decrement set the
// product stock is reduced by qty in the same transaction; otherwise stock is only checked.
// Every call inserts a new line, repeated adds of one product are not merged.
func (r *CartRepo) AddLine(ctx context.Context, userID, productID int64, qty int, decrement bool) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := userExists(ctx, tx, userID); err != nil {
		return 0, err
	}

	var stock int
	err = tx.GetContext(ctx, &stock, tx.Rebind(`SELECT stock FROM products WHERE id = ?`), productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, err
	}
	if stock < qty {
		return 0, fmt.Errorf("%w: product %d has %d, need %d", ErrInsufficientStock, productID, stock, qty)
	}

	if decrement {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE products SET stock = stock - ?
			WHERE id = ? AND stock >= ?
		`), qty, productID, qty)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, fmt.Errorf("%w: product %d", ErrInsufficientStock, productID)
		}
	}

	var id int64
	if err := tx.GetContext(ctx, &id, tx.Rebind(`
		INSERT INTO carts(user_id, product_id, quantity) VALUES (?, ?, ?) RETURNING id
	`), userID, productID, qty); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// Lines returns the user's cart lines joined with product name and price, oldest first.
func (r *CartRepo) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows := []domain.CartLine{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
	  SELECT c.id, p.name, p.price, c.quantity
	  FROM carts c JOIN products p ON p.id = c.product_id
	  WHERE c.user_id = ?
	  ORDER BY c.id
	`), userID); err != nil {
		return nil, err
	}
	return rows, nil
}
