package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const bookingConfirmedQueue = "booking.confirmed"

// Publisher emits domain events to RabbitMQ. Each publish dials a fresh
// connection; failures are logged and returned so callers can ignore them
// without interrupting the request flow.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{
		url: url,
		log: log.With(zap.String("component", "queue_publisher")),
	}
}

// PublishBookingConfirmed publishes a BookingConfirmedEvent to the
// booking.confirmed queue. Messages are persistent so they survive broker
// restarts.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("Failed to dial broker", zap.Error(err))
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("Failed to open channel", zap.Error(err))
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(bookingConfirmedQueue, true, false, false, false, nil); err != nil {
		p.log.Error("Failed to declare queue", zap.Error(err))
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", bookingConfirmedQueue, false, false, pub); err != nil {
		p.log.Error("Failed to publish event",
			zap.Error(err),
			zap.String("booking_id", event.BookingID),
		)
		return fmt.Errorf("publish event: %w", err)
	}

	p.log.Info("Booking confirmed event published",
		zap.String("booking_id", event.BookingID),
		zap.String("order_id", event.OrderID),
	)
	return nil
}
