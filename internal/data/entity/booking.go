package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusExpired   BookingStatus = "expired"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusExpired || s == BookingStatusCancelled
}

// Booking rows are never deleted; terminal bookings stay for audit.
type Booking struct {
	Base
	OrderID      string        `db:"order_id"`
	UserID       uuid.UUID     `db:"user_id"`
	ShowID       uuid.UUID     `db:"show_id"`
	SeatIDs      []string      `db:"seat_ids"`
	Amount       float64       `db:"amount"`
	Status       BookingStatus `db:"status"`
	PaymentRef   string        `db:"payment_ref"`
	HoldDeadline time.Time     `db:"hold_deadline"`
}
