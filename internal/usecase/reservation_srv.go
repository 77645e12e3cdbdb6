package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ticket-booking/internal/data/entity"
	"ticket-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReservationService owns all seat-map mutations. Every operation works on
// the whole seat set of one show as a single compare-and-swap, so two
// overlapping claims can never both win.
type ReservationService interface {
	ClaimSeats(ctx context.Context, showID uuid.UUID, seatIDs []string, bookingID uuid.UUID) (entity.SeatMap, error)
	ReleaseSeats(ctx context.Context, showID uuid.UUID, seatIDs []string, bookingID uuid.UUID) error
	FinalizeSeats(ctx context.Context, showID uuid.UUID, seatIDs []string, bookingID uuid.UUID) error
	GetSeatMap(ctx context.Context, showID uuid.UUID) (entity.SeatMap, error)
}

type reservationService struct {
	shows      repository.ShowRepository
	cache      SeatCache
	maxRetries int
	log        *zap.Logger
}

func NewReservationService(shows repository.ShowRepository, cache SeatCache, maxRetries int, log *zap.Logger) ReservationService {
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &reservationService{
		shows:      shows,
		cache:      cache,
		maxRetries: maxRetries,
		log:        log.With(zap.String("service", "reservation")),
	}
}

// ClaimSeats transitions every requested seat from free to held by the
// booking, or fails with no partial mutation. Version conflicts are
// retried a bounded number of times, then surfaced as ErrStorageConflict.
func (s *reservationService) ClaimSeats(ctx context.Context, showID uuid.UUID, seatIDs []string, bookingID uuid.UUID) (entity.SeatMap, error) {
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("no seats requested")
	}

	seatIDs = dedupeSeats(seatIDs)

	show, err := s.shows.FindByID(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("load show %s: %w", showID.String(), err)
	}
	if show == nil {
		return nil, ErrShowNotFound
	}
	if !show.StartsAt.After(time.Now()) {
		return nil, ErrShowStarted
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		seatMap, version, err := s.shows.ReadSeatMap(ctx, showID)
		if err != nil {
			return nil, fmt.Errorf("read seat map: %w", err)
		}
		if seatMap == nil {
			return nil, ErrShowNotFound
		}

		// All-or-nothing check before any write
		var conflicts []string
		for _, seatID := range seatIDs {
			if _, taken := seatMap[seatID]; taken {
				conflicts = append(conflicts, seatID)
			}
		}
		if len(conflicts) > 0 {
			sort.Strings(conflicts)
			s.log.Info("Seat claim rejected",
				zap.String("show_id", showID.String()),
				zap.String("booking_id", bookingID.String()),
				zap.Strings("conflicts", conflicts),
			)
			return nil, &SeatUnavailableError{Seats: conflicts}
		}

		next := seatMap.Clone()
		for _, seatID := range seatIDs {
			next[seatID] = entity.SeatState{Status: entity.SeatStatusHeld, BookingID: bookingID}
		}

		applied, err := s.shows.UpdateSeatMapCAS(ctx, showID, next, version)
		if err != nil {
			return nil, fmt.Errorf("write seat map: %w", err)
		}
		if applied {
			s.cache.InvalidateSeatMap(ctx, showID.String())
			s.log.Info("Seats claimed",
				zap.String("show_id", showID.String()),
				zap.String("booking_id", bookingID.String()),
				zap.Strings("seat_ids", seatIDs),
				zap.Int("attempt", attempt),
			)
			return next, nil
		}

		s.log.Debug("Seat map version moved, retrying claim",
			zap.String("show_id", showID.String()),
			zap.Int("attempt", attempt),
		)
	}

	s.log.Warn("Seat claim retries exhausted",
		zap.String("show_id", showID.String()),
		zap.String("booking_id", bookingID.String()),
	)
	return nil, ErrStorageConflict
}

// ReleaseSeats reverts to free only the seats held by this exact booking.
// Seats in any other state are left untouched, which makes stale or
// duplicate release calls harmless no-ops.
func (s *reservationService) ReleaseSeats(ctx context.Context, showID uuid.UUID, seatIDs []string, bookingID uuid.UUID) error {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		seatMap, version, err := s.shows.ReadSeatMap(ctx, showID)
		if err != nil {
			return fmt.Errorf("read seat map: %w", err)
		}
		if seatMap == nil {
			return ErrShowNotFound
		}

		next := seatMap.Clone()
		released := 0
		for _, seatID := range seatIDs {
			if next.HeldBy(seatID, bookingID) {
				delete(next, seatID)
				released++
			}
		}
		if released == 0 {
			// Nothing held by this booking; already released.
			return nil
		}

		applied, err := s.shows.UpdateSeatMapCAS(ctx, showID, next, version)
		if err != nil {
			return fmt.Errorf("write seat map: %w", err)
		}
		if applied {
			s.cache.InvalidateSeatMap(ctx, showID.String())
			s.log.Info("Seats released",
				zap.String("show_id", showID.String()),
				zap.String("booking_id", bookingID.String()),
				zap.Int("released", released),
			)
			return nil
		}
	}

	return ErrStorageConflict
}

// FinalizeSeats transitions held seats to sold. Every seat must currently
// be held by this booking; a hold that already expired and was released
// (or resold) fails the whole call with ErrInvalidTransition.
func (s *reservationService) FinalizeSeats(ctx context.Context, showID uuid.UUID, seatIDs []string, bookingID uuid.UUID) error {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		seatMap, version, err := s.shows.ReadSeatMap(ctx, showID)
		if err != nil {
			return fmt.Errorf("read seat map: %w", err)
		}
		if seatMap == nil {
			return ErrShowNotFound
		}

		next := seatMap.Clone()
		for _, seatID := range seatIDs {
			if !next.HeldBy(seatID, bookingID) {
				s.log.Warn("Finalize rejected, seat not held by booking",
					zap.String("show_id", showID.String()),
					zap.String("booking_id", bookingID.String()),
					zap.String("seat_id", seatID),
				)
				return ErrInvalidTransition
			}
			next[seatID] = entity.SeatState{Status: entity.SeatStatusSold, BookingID: bookingID}
		}

		applied, err := s.shows.UpdateSeatMapCAS(ctx, showID, next, version)
		if err != nil {
			return fmt.Errorf("write seat map: %w", err)
		}
		if applied {
			s.cache.InvalidateSeatMap(ctx, showID.String())
			s.log.Info("Seats finalized",
				zap.String("show_id", showID.String()),
				zap.String("booking_id", bookingID.String()),
				zap.Strings("seat_ids", seatIDs),
			)
			return nil
		}
	}

	return ErrStorageConflict
}

// GetSeatMap serves the availability query, cache first. Best effort: a
// stale snapshot only means the subsequent claim fails cleanly.
func (s *reservationService) GetSeatMap(ctx context.Context, showID uuid.UUID) (entity.SeatMap, error) {
	if cached, ok := s.cache.GetSeatMap(ctx, showID.String()); ok {
		return cached, nil
	}

	seatMap, _, err := s.shows.ReadSeatMap(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("read seat map: %w", err)
	}
	if seatMap == nil {
		return nil, ErrShowNotFound
	}

	s.cache.SetSeatMap(ctx, showID.String(), seatMap)
	return seatMap, nil
}

func dedupeSeats(seatIDs []string) []string {
	seen := make(map[string]struct{}, len(seatIDs))
	out := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
