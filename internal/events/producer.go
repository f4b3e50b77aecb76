package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type ShareEvent struct {
	Event  string    `json:"event"`
	CartID uuid.UUID `json:"cart_id"`
	At     time.Time `json:"at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w}
}

// Publish writes one lifecycle event. Messages are keyed by event and cart
// id so consumers can deduplicate redeliveries.
func (p *Producer) Publish(ctx context.Context, event string, cartID uuid.UUID, at time.Time) error {
	data, err := json.Marshal(ShareEvent{Event: event, CartID: cartID, At: at})
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event + ":" + cartID.String()),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
