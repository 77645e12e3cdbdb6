// Package queue defines message payloads exchanged over the message broker
// and the publisher that emits them.
package queue

// BookingConfirmedEvent is published when a booking is confirmed by a
// successful payment. It carries enough for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID  string   `json:"booking_id"`
	OrderID    string   `json:"order_id"`
	UserID     string   `json:"user_id"`
	ShowID     string   `json:"show_id"`
	MovieTitle string   `json:"movie_title,omitempty"`
	StartsAt   string   `json:"starts_at"`
	SeatIDs    []string `json:"seats"`
	Amount     float64  `json:"amount"`
	PaymentRef string   `json:"payment_ref"`
}
