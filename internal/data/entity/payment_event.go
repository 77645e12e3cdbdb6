package entity

import (
	"github.com/google/uuid"
)

type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailure PaymentOutcome = "failure"
)

type PaymentEventResult string

const (
	// PaymentEventApplied means the event drove a booking transition.
	PaymentEventApplied PaymentEventResult = "applied"
	// PaymentEventDuplicate means the same ref+outcome was seen before.
	PaymentEventDuplicate PaymentEventResult = "duplicate"
	// PaymentEventUnmatched means no booking carries this payment ref.
	PaymentEventUnmatched PaymentEventResult = "unmatched"
	// PaymentEventReconcile means a success arrived after the booking was
	// already expired or cancelled; flagged for the refund workflow.
	PaymentEventReconcile PaymentEventResult = "reconcile"
)

// PaymentEvent is the audit log of every webhook delivery.
type PaymentEvent struct {
	BaseSimple
	PaymentRef string             `db:"payment_ref"`
	Outcome    PaymentOutcome     `db:"outcome"`
	Amount     float64            `db:"amount"`
	BookingID  *uuid.UUID         `db:"booking_id"`
	Result     PaymentEventResult `db:"result"`
}
