package wire

import (
	"ticket-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireShow(r chi.Router, showHandler *adaptor.ShowHandler, bookingHandler *adaptor.BookingHandler) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/shows - Movies with upcoming shows
	r.Get("/api/shows", showHandler.GetShows)

	// GET /api/movies/{movieID}/shows - A movie's shows grouped by date
	r.Get("/api/movies/{movieID}/shows", showHandler.GetMovieShows)

	// GET /api/shows/{showID}/seats - Current seat availability
	r.Get("/api/shows/{showID}/seats", bookingHandler.GetSeatAvailability)
}
