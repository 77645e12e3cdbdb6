package wire

import (
	"ticket-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	// POST /api/payment/webhook - Provider deliveries, verified by signature
	// rather than a bearer token.
	r.Post("/api/payment/webhook", paymentHandler.Webhook)
}
