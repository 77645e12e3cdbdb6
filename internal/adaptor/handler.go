// Package adaptor contains the HTTP handlers. Handlers decode and validate
// requests, call the use cases, and translate errors to HTTP responses.
package adaptor

import (
	"errors"
	"net/http"

	"ticket-booking/internal/usecase"
	"ticket-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Show    *ShowHandler
	Booking *BookingHandler
	Payment *PaymentHandler
	Admin   *AdminHandler
}

func NewHandler(service *usecase.Service, webhookSecret string, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Show:    NewShowHandler(service.Show, log),
		Booking: NewBookingHandler(service.Booking, log),
		Payment: NewPaymentHandler(service.Booking, webhookSecret, log),
		Admin:   NewAdminHandler(service.Show, service.Booking, log),
	}
}

// handleServiceError maps use-case errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	var seatErr *usecase.SeatUnavailableError
	switch {
	case errors.As(err, &seatErr):
		utils.ResponseConflict(w, "Some seats are no longer available", map[string]any{
			"unavailable_seats": seatErr.Seats,
		})
	case errors.Is(err, usecase.ErrStorageConflict):
		utils.ResponseConflict(w, "Too much contention, please retry", nil)
	case errors.Is(err, usecase.ErrShowNotFound):
		utils.ResponseNotFound(w, "Show not found")
	case errors.Is(err, usecase.ErrBookingNotFound):
		utils.ResponseNotFound(w, "Booking not found")
	case errors.Is(err, usecase.ErrShowStarted):
		utils.ResponseBadRequest(w, "Show has already started", nil)
	case errors.Is(err, usecase.ErrBookingNotPending):
		utils.ResponseConflict(w, "Booking is no longer pending", nil)
	case errors.Is(err, usecase.ErrNotBookingOwner):
		utils.ResponseForbidden(w, "Booking belongs to another user")
	case errors.Is(err, usecase.ErrEmailTaken):
		utils.ResponseConflict(w, "Email already registered", nil)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		utils.ResponseUnauthorized(w, "Invalid email or password")
	default:
		utils.ResponseInternalError(w, "Something went wrong")
	}
}
