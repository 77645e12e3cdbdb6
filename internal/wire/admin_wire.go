package wire

import (
	"ticket-booking/internal/adaptor"
	"ticket-booking/pkg/middleware"
	"ticket-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin", func(r chi.Router) {
		// Require both authentication AND admin role
		r.Use(middleware.Auth(config.JWT, log))
		r.Use(middleware.Admin(log))

		// POST /api/admin/shows - Upsert a movie and schedule shows
		r.Post("/shows", adminHandler.AddShow)

		// GET /api/admin/shows - All upcoming shows
		r.Get("/shows", adminHandler.GetAllShows)

		// GET /api/admin/bookings - All bookings, paginated
		r.Get("/bookings", adminHandler.GetAllBookings)

		// GET /api/admin/bookings/{bookingID} - Any booking's details
		r.Get("/bookings/{bookingID}", adminHandler.GetBooking)

		// GET /api/admin/dashboard - Aggregate sales numbers
		r.Get("/dashboard", adminHandler.GetDashboard)
	})
}
