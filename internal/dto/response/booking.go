package response

import (
	"time"

	"ticket-booking/internal/data/entity"
)

type BookingResponse struct {
	ID           string               `json:"id"`
	OrderID      string               `json:"order_id"`
	UserID       string               `json:"user_id"`
	ShowID       string               `json:"show_id"`
	MovieTitle   string               `json:"movie_title,omitempty"`
	StartsAt     time.Time            `json:"starts_at,omitempty"`
	SeatIDs      []string             `json:"seat_ids"`
	Amount       float64              `json:"amount"`
	Status       entity.BookingStatus `json:"status"`
	HoldDeadline time.Time            `json:"hold_deadline"`
	PaymentRef   string               `json:"payment_ref,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// SeatAvailabilityResponse exposes the current occupancy of a show.
// Seats absent from the map are free. Booking ownership is not leaked.
type SeatAvailabilityResponse struct {
	ShowID string            `json:"show_id"`
	Seats  map[string]string `json:"seats"`
}

func SeatMapToAvailability(showID string, seatMap entity.SeatMap) *SeatAvailabilityResponse {
	seats := make(map[string]string, len(seatMap))
	for seatID, state := range seatMap {
		seats[seatID] = string(state.Status)
	}
	return &SeatAvailabilityResponse{
		ShowID: showID,
		Seats:  seats,
	}
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:           booking.ID.String(),
		OrderID:      booking.OrderID,
		UserID:       booking.UserID.String(),
		ShowID:       booking.ShowID.String(),
		SeatIDs:      booking.SeatIDs,
		Amount:       booking.Amount,
		Status:       booking.Status,
		HoldDeadline: booking.HoldDeadline,
		PaymentRef:   booking.PaymentRef,
		CreatedAt:    booking.CreatedAt,
	}
}
