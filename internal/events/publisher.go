// Package events publishes order lifecycle events to Kafka so downstream
// consumers (notifications, analytics) can react to order changes.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/example/marketplace/internal/domain"
)

// OrderEvent is the wire format of an order lifecycle event.
type OrderEvent struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	OrderID        int64           `json:"order_id"`
	UserID         int64           `json:"user_id"`
	Status         string          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// Publisher writes order events to a Kafka topic, keyed by order id so all
// events of one order land in the same partition.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Publisher{writer: writer}
}

func (p *Publisher) PublishOrderEvent(ctx context.Context, eventType string, o *domain.Order) error {
	event := OrderEvent{
		ID:             uuid.New().String(),
		Type:           eventType,
		OrderID:        o.ID,
		UserID:         o.UserID,
		Status:         string(o.Status),
		TotalAmount:    o.TotalAmount,
		DiscountAmount: o.DiscountAmount,
		OccurredAt:     time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(o.ID, 10)),
		Value: data,
		Time:  event.OccurredAt,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
