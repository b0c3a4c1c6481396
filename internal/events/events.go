// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	applog "storefront/internal/log"
)

const (
	OrderCreated       = "order.created"
	OrderPaymentFailed = "order.payment_failed"
	OrderStatusChanged = "order.status_changed"
)

type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	OrderID int64     `json:"orderId"`
	UserID  int64     `json:"userId,omitempty"`
	Amount  string    `json:"amount,omitempty"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

func New(typ string, orderID int64, status string) Event {
	return Event{ID: uuid.NewString(), Type: typ, OrderID: orderID, Status: status, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards events; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Message encodes e keyed by order id so one order's events stay on one partition.
func Message(e Event) (kafka.Message, error) {
	v, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(strconv.FormatInt(e.OrderID, 10)),
		Value:   v,
		Time:    e.At,
		Headers: []kafka.Header{{Key: "type", Value: []byte(e.Type)}},
	}, nil
}

type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				applog.Error(nil, "events.publish.fail", err, map[string]any{"count": len(msgs)})
			}
		},
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	m, err := Message(e)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, m)
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error { return p.w.Close() }
