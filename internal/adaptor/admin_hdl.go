package adaptor

import (
	"encoding/json"
	"net/http"

	"ticket-booking/internal/dto/request"
	"ticket-booking/internal/usecase"
	"ticket-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AdminHandler struct {
	shows    usecase.ShowService
	bookings usecase.BookingService
	log      *zap.Logger
}

func NewAdminHandler(shows usecase.ShowService, bookings usecase.BookingService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		shows:    shows,
		bookings: bookings,
		log:      log.With(zap.String("handler", "admin")),
	}
}

// AddShow upserts a movie and schedules shows for it.
func (h *AdminHandler) AddShow(w http.ResponseWriter, r *http.Request) {
	var req request.AddShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		utils.ResponseBadRequest(w, "Validation failed", errs)
		return
	}

	shows, err := h.shows.AddShow(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.ResponseCreated(w, "Shows scheduled", shows)
}

func (h *AdminHandler) GetAllShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.shows.GetAllShows(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Shows retrieved", shows)
}

func (h *AdminHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	page := request.PaginatedRequest{
		Page:    utils.ParseInt(r.URL.Query().Get("page"), 1),
		PerPage: utils.ParseInt(r.URL.Query().Get("per_page"), 10),
	}

	resp, err := h.bookings.GetAllBookings(r.Context(), page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Bookings retrieved", resp)
}

func (h *AdminHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := utils.ParseUUID(chi.URLParam(r, "bookingID"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return
	}

	resp, err := h.bookings.GetAnyBooking(r.Context(), bookingID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Booking retrieved", resp)
}

func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	resp, err := h.bookings.GetDashboard(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Dashboard retrieved", resp)
}
