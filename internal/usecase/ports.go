package usecase

import (
	"context"

	"ticket-booking/internal/data/entity"
	"ticket-booking/internal/queue"
)

// SeatCache invalidates and serves cached seat-availability snapshots.
// Backed by redis in production; a fake in tests.
type SeatCache interface {
	GetSeatMap(ctx context.Context, showID string) (entity.SeatMap, bool)
	SetSeatMap(ctx context.Context, showID string, seatMap entity.SeatMap)
	InvalidateSeatMap(ctx context.Context, showID string)
}

// PaymentProvider creates pending charges with the external payment
// provider. The returned reference correlates later webhook deliveries.
type PaymentProvider interface {
	CreatePendingCharge(ctx context.Context, booking *entity.Booking) (paymentRef string, err error)
}

// EventPublisher emits domain events for downstream consumers. Publish
// failures are logged and ignored; events are best effort.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error
}
