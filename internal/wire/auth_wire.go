package wire

import (
	"ticket-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler) {
	// POST /api/auth/register - Create a customer account
	r.Post("/api/auth/register", authHandler.Register)

	// POST /api/auth/login - Exchange credentials for an access token
	r.Post("/api/auth/login", authHandler.Login)
}
