package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create inserts a PENDING order for an existing user and returns its id.
func (r *OrderRepo) Create(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := userExists(ctx, tx, userID); err != nil {
		return 0, err
	}
	var id int64
	if err := tx.GetContext(ctx, &id, tx.Rebind(`
	  INSERT INTO orders(user_id, amount, status) VALUES (?, ?, ?) RETURNING id
	`), userID, amount, domain.StatusPending); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, r.db.Rebind(`
		SELECT id, user_id, amount, status FROM orders WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, err
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT id, user_id, amount, status FROM orders
		WHERE user_id = ?
		ORDER BY id DESC
	`), userID)
	return out, err
}

// UpdateStatus overwrites the status unconditionally. ErrOrderNotFound when no row matched.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE orders SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
