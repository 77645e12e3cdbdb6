// Package payment integrates with the external payment provider. Only the
// boundary the booking lifecycle needs is implemented here: registering a
// pending charge per booking.
package payment

import (
	"context"
	"fmt"

	"ticket-booking/internal/data/entity"
	"ticket-booking/pkg/utils"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"go.uber.org/zap"
)

type StripeProvider struct {
	currency string
	log      *zap.Logger
}

func NewStripeProvider(config utils.StripeConfig, log *zap.Logger) (*StripeProvider, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	stripe.Key = config.SecretKey

	currency := config.Currency
	if currency == "" {
		currency = "usd"
	}

	return &StripeProvider{
		currency: currency,
		log:      log.With(zap.String("component", "stripe")),
	}, nil
}

// CreatePendingCharge creates a PaymentIntent for the booking total and
// returns its ID as the payment reference. The booking and order IDs ride
// along as metadata so webhook deliveries can be correlated.
func (p *StripeProvider) CreatePendingCharge(ctx context.Context, booking *entity.Booking) (string, error) {
	// Stripe expects the smallest currency unit
	amountInCents := int64(booking.Amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(p.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"booking_id": booking.ID.String(),
			"order_id":   booking.OrderID,
		},
		Description: stripe.String(fmt.Sprintf("Ticket booking %s", booking.OrderID)),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		p.log.Error("Failed to create payment intent",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return "", fmt.Errorf("create payment intent for booking %s: %w", booking.ID.String(), err)
	}

	p.log.Info("Payment intent created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_ref", pi.ID),
		zap.Int64("amount_cents", amountInCents),
	)

	return pi.ID, nil
}
