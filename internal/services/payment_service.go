package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/events"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

// TokenIssuer obtains a payment token for an order from the payment provider.
type TokenIssuer interface {
	CreateToken(ctx context.Context, orderID int64, amount decimal.Decimal) (string, error)
}

type PaymentResult struct {
	OrderID int64
	Token   string
}

type WebhookPayload struct {
	OrderID     int64
	OrderStatus string
}

type PaymentService struct {
	Orders  *repos.OrderRepo
	Gateway TokenIssuer
	Events  events.Publisher
	Metrics *metrics.Metrics
	// FailOrphanedOrders marks the order FAILED when no token could be obtained.
	// Otherwise the order is left PENDING.
	FailOrphanedOrders bool
}

func NewPaymentService(orders *repos.OrderRepo, gw TokenIssuer, pub events.Publisher, m *metrics.Metrics, failOrphaned bool) *PaymentService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &PaymentService{Orders: orders, Gateway: gw, Events: pub, Metrics: m, FailOrphanedOrders: failOrphaned}
}

// Initiate creates a PENDING order and requests a payment token for it. The order id is
// returned even when the gateway call fails.
func (s *PaymentService) Initiate(ctx context.Context, userID int64, amount decimal.Decimal) (PaymentResult, error) {
	if userID < 1 {
		return PaymentResult{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if !validate.AmountInRange(amount) {
		return PaymentResult{}, ErrInvalidAmount
	}

	orderID, err := s.Orders.Create(ctx, userID, amount)
	if errors.Is(err, repos.ErrNotFound) {
		return PaymentResult{}, err
	}
	if err != nil {
		applog.Error(nil, "payment.order.create.fail", err, map[string]any{"user_id": userID})
		return PaymentResult{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	created := events.New(events.OrderCreated, orderID, domain.StatusPending)
	created.UserID, created.Amount = userID, amount.String()
	s.publish(ctx, created)

	start := time.Now()
	token, err := s.Gateway.CreateToken(ctx, orderID, amount)
	if err != nil {
		s.Metrics.ObserveGateway("error", time.Since(start))
		applog.Error(nil, "payment.gateway.fail", err, map[string]any{"order_id": orderID})
		s.compensate(ctx, orderID)
		return PaymentResult{OrderID: orderID}, fmt.Errorf("%w: %w", ErrPaymentInitiationFailed, err)
	}
	s.Metrics.ObserveGateway("ok", time.Since(start))
	applog.Audit(nil, "payment.initiated", map[string]any{"order_id": orderID, "user_id": userID, "amount": amount.String()})
	return PaymentResult{OrderID: orderID, Token: token}, nil
}

func (s *PaymentService) compensate(ctx context.Context, orderID int64) {
	if !s.FailOrphanedOrders {
		return
	}
	// the request context may already be cancelled when the gateway timed out
	ctx = context.WithoutCancel(ctx)
	if err := s.Orders.UpdateStatus(ctx, orderID, domain.StatusFailed); err != nil {
		applog.Error(nil, "payment.compensate.fail", err, map[string]any{"order_id": orderID})
		return
	}
	s.publish(ctx, events.New(events.OrderPaymentFailed, orderID, domain.StatusFailed))
}

// HandleWebhook overwrites the order status with whatever the gateway reported.
// There is no transition guard; the last delivery wins.
func (s *PaymentService) HandleWebhook(ctx context.Context, p WebhookPayload) error {
	status := strings.TrimSpace(p.OrderStatus)
	if p.OrderID < 1 || status == "" {
		s.Metrics.Webhook("invalid")
		return ErrInvalidWebhookPayload
	}

	err := s.Orders.UpdateStatus(ctx, p.OrderID, status)
	switch {
	case errors.Is(err, repos.ErrNotFound):
		s.Metrics.Webhook("not_found")
		return err
	case err != nil:
		s.Metrics.Webhook("error")
		applog.Error(nil, "payment.webhook.update.fail", err, map[string]any{"order_id": p.OrderID})
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.Metrics.Webhook("ok")
	applog.Audit(nil, "payment.webhook.status", map[string]any{"order_id": p.OrderID, "status": status})
	s.publish(ctx, events.New(events.OrderStatusChanged, p.OrderID, status))
	return nil
}

func (s *PaymentService) Order(ctx context.Context, id int64) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil && !errors.Is(err, repos.ErrNotFound) {
		return domain.Order{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return o, err
}

// OrdersForUser lists a user's orders, newest first.
func (s *PaymentService) OrdersForUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return orders, nil
}

func (s *PaymentService) publish(ctx context.Context, e events.Event) {
	if err := s.Events.Publish(ctx, e); err != nil {
		applog.Error(nil, "events.publish.fail", err, map[string]any{"type": e.Type, "order_id": e.OrderID})
	}
}
