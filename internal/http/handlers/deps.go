package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	DB             *sqlx.DB
	CartHandler    *CartHandler
	PaymentHandler *PaymentHandler
	OrderHandler   *OrderHandler
	ProductHandler *ProductHandler
}

// NewDeps wires repos and services over one shared store handle.
func NewDeps(db *sqlx.DB, cfg config.Config, gw services.TokenIssuer, pub events.Publisher, m *metrics.Metrics) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	cartSvc := services.NewCartService(cartRepo, cfg.DecrementStock(), m)
	paySvc := services.NewPaymentService(orderRepo, gw, pub, m, cfg.FailOrphanedOrders)

	return &Deps{
		DB:             db,
		CartHandler:    &CartHandler{Cart: cartSvc},
		PaymentHandler: &PaymentHandler{Payments: paySvc, WebhookSecret: cfg.WebhookSecret},
		OrderHandler:   &OrderHandler{Payments: paySvc, Users: userRepo},
		ProductHandler: &ProductHandler{Products: prodRepo},
	}
}
