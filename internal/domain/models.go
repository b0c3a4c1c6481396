package domain

import "github.com/shopspring/decimal"

// Money is a decimal that travels as a JSON number, e.g. 9.99 rather than "9.99".
// Scanning and decoding are those of decimal.Decimal.
type Money struct{ decimal.Decimal }

func (m Money) MarshalJSON() ([]byte, error) { return []byte(m.Decimal.String()), nil }

type OrderStatus = string

const (
	StatusPending OrderStatus = "PENDING"
	// StatusFailed marks an order whose payment could not be initiated.
	StatusFailed OrderStatus = "FAILED"
)

type User struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

type Product struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Price Money  `db:"price" json:"price"`
	Stock int    `db:"stock" json:"stock"`
}

// CartLine is one add-to-cart call joined with the product it refers to.
type CartLine struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Price    Money  `db:"price" json:"price"`
	Quantity int    `db:"quantity" json:"quantity"`
}

type Order struct {
	ID     int64       `db:"id" json:"id"`
	UserID int64       `db:"user_id" json:"userId"`
	Amount Money       `db:"amount" json:"amount"`
	Status OrderStatus `db:"status" json:"status"`
}
