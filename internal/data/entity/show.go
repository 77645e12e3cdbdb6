package entity

import (
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatStatusHeld SeatStatus = "held"
	SeatStatusSold SeatStatus = "sold"
)

// SeatState is the per-seat occupancy entry stored in a show's seat map.
// Free seats have no entry at all.
type SeatState struct {
	Status    SeatStatus `json:"status"`
	BookingID uuid.UUID  `json:"booking_id"`
}

// SeatMap maps seat identifiers (e.g. "A1") to their occupancy state.
type SeatMap map[string]SeatState

// Clone returns a deep copy so callers can mutate without aliasing the original.
func (m SeatMap) Clone() SeatMap {
	out := make(SeatMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HeldBy reports whether the seat is held by the given booking.
func (m SeatMap) HeldBy(seatID string, bookingID uuid.UUID) bool {
	state, ok := m[seatID]
	return ok && state.Status == SeatStatusHeld && state.BookingID == bookingID
}

// Show carries the authoritative seat-occupancy state. The version column
// backs the compare-and-swap used by the reservation engine.
type Show struct {
	Base
	MovieID  uuid.UUID `db:"movie_id"`
	StartsAt time.Time `db:"starts_at"`
	Price    float64   `db:"price"`
	SeatMap  SeatMap   `db:"seat_map"`
	Version  int64     `db:"version"`
}
