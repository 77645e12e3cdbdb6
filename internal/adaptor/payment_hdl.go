package adaptor

import (
	"encoding/json"
	"io"
	"net/http"

	"ticket-booking/internal/data/entity"
	"ticket-booking/internal/usecase"
	"ticket-booking/pkg/utils"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

const maxWebhookBody = 64 * 1024

type PaymentHandler struct {
	service       usecase.BookingService
	webhookSecret string
	log           *zap.Logger
}

func NewPaymentHandler(service usecase.BookingService, webhookSecret string, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
		log:           log.With(zap.String("handler", "payment")),
	}
}

// Webhook consumes payment provider deliveries. Signature verification
// rejects forgeries; after that every delivery gets a 200 so the provider
// stops retrying, whatever the booking outcome was.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Failed to read request body", nil)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.log.Warn("Webhook signature verification failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid signature", nil)
		return
	}

	var outcome entity.PaymentOutcome
	switch event.Type {
	case "payment_intent.succeeded":
		outcome = entity.PaymentOutcomeSuccess
	case "payment_intent.payment_failed", "payment_intent.canceled":
		outcome = entity.PaymentOutcomeFailure
	default:
		// Not a lifecycle event we act on; acknowledge and move on.
		utils.ResponseSuccess(w, "Event ignored", nil)
		return
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		h.log.Error("Failed to parse payment intent from event",
			zap.Error(err),
			zap.String("event_id", event.ID),
		)
		utils.ResponseBadRequest(w, "Malformed event payload", nil)
		return
	}

	result, err := h.service.HandlePaymentEvent(r.Context(), intent.ID, outcome, float64(intent.Amount)/100)
	if err != nil {
		h.log.Error("Failed to handle payment event",
			zap.Error(err),
			zap.String("payment_ref", intent.ID),
			zap.String("event_id", event.ID),
		)
		utils.ResponseInternalError(w, "Failed to process event")
		return
	}

	h.log.Info("Payment event processed",
		zap.String("payment_ref", intent.ID),
		zap.String("outcome", string(outcome)),
		zap.String("result", string(result)),
	)

	utils.ResponseSuccess(w, "Event processed", map[string]string{"result": string(result)})
}
