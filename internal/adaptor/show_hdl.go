package adaptor

import (
	"net/http"

	"ticket-booking/internal/usecase"
	"ticket-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ShowHandler struct {
	service usecase.ShowService
	log     *zap.Logger
}

func NewShowHandler(service usecase.ShowService, log *zap.Logger) *ShowHandler {
	return &ShowHandler{
		service: service,
		log:     log.With(zap.String("handler", "show")),
	}
}

// GetShows lists movies with upcoming shows.
func (h *ShowHandler) GetShows(w http.ResponseWriter, r *http.Request) {
	movies, err := h.service.GetShows(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Shows retrieved", movies)
}

// GetMovieShows returns a movie's upcoming shows grouped by date.
func (h *ShowHandler) GetMovieShows(w http.ResponseWriter, r *http.Request) {
	movieID, err := utils.ParseUUID(chi.URLParam(r, "movieID"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid movie ID", nil)
		return
	}

	resp, err := h.service.GetMovieShows(r.Context(), movieID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Movie shows retrieved", resp)
}
