package wire

import (
	"ticket-booking/internal/adaptor"
	"ticket-booking/pkg/middleware"
	"ticket-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT, log))

		// POST /api/booking - Claim seats and open a pending booking
		r.Post("/api/booking", bookingHandler.CreateBooking)

		// GET /api/user/bookings - View booking history (user's own bookings)
		r.Get("/api/user/bookings", bookingHandler.GetMyBookings)

		// GET /api/booking/{bookingID} - View one booking
		r.Get("/api/booking/{bookingID}", bookingHandler.GetBooking)

		// PUT /api/booking/{bookingID}/cancel - Cancel while still pending
		r.Put("/api/booking/{bookingID}/cancel", bookingHandler.CancelBooking)
	})
}
