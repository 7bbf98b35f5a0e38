// Package events publishes order lifecycle changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/safar/printshop/internal/models"
	"github.com/segmentio/kafka-go"
)

type OrderStatusEvent struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewOrderStatusEvent(order *models.Order) OrderStatusEvent {
	return OrderStatusEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		UpdatedAt:   order.UpdatedAt,
	}
}

type Publisher interface {
	PublishOrderStatus(ctx context.Context, event OrderStatusEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher writes to topic with leader-only acknowledgement.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// PublishOrderStatus keys messages by order id so that updates for one
// order land on the same partition in order.
func (p *KafkaPublisher) PublishOrderStatus(ctx context.Context, event OrderStatusEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order status event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish order status event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishOrderStatus(context.Context, OrderStatusEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
