// Package worker holds background loops that run alongside the HTTP server.
package worker

import (
	"context"
	"time"

	"ticket-booking/internal/data/repository"
	"ticket-booking/internal/usecase"

	"go.uber.org/zap"
)

const sweepBatchSize = 100

// Sweeper periodically expires pending bookings whose hold deadline has
// passed and frees their seats. It is a safety net behind the conditional
// updates: correctness never depends on how often it runs.
type Sweeper struct {
	bookings repository.BookingRepository
	service  usecase.BookingService
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(bookings repository.BookingRepository, service usecase.BookingService, intervalSeconds int, log *zap.Logger) *Sweeper {
	if intervalSeconds < 1 {
		intervalSeconds = 60
	}
	return &Sweeper{
		bookings: bookings,
		service:  service,
		interval: time.Duration(intervalSeconds) * time.Second,
		log:      log.With(zap.String("worker", "sweeper")),
	}
}

// Run blocks until the context is cancelled. One sweep fires immediately,
// then one per interval.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("Sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep expires one batch of overdue pending bookings.
func (s *Sweeper) Sweep(ctx context.Context) {
	overdue, err := s.bookings.FindExpiredPending(ctx, time.Now(), sweepBatchSize)
	if err != nil {
		s.log.Error("Failed to list overdue bookings", zap.Error(err))
		return
	}
	if len(overdue) == 0 {
		return
	}

	expired := 0
	for _, booking := range overdue {
		if ctx.Err() != nil {
			return
		}

		won, err := s.service.ExpireBooking(ctx, booking.ID)
		if err != nil {
			s.log.Error("Failed to expire booking",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
			continue
		}
		if won {
			expired++
		}
	}

	s.log.Info("Sweep finished",
		zap.Int("overdue", len(overdue)),
		zap.Int("expired", expired),
	)
}
