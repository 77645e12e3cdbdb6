package repository

import (
	"context"
	"fmt"

	"ticket-booking/internal/data/entity"
	"ticket-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentEventRepository interface {
	Create(ctx context.Context, event *entity.PaymentEvent) error
	FindApplied(ctx context.Context, paymentRef string, outcome entity.PaymentOutcome) (*entity.PaymentEvent, error)
	FindReconcileCases(ctx context.Context, limit int) ([]*entity.PaymentEvent, error)
}

type paymentEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentEventRepository(db database.PgxIface, log *zap.Logger) PaymentEventRepository {
	return &paymentEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_event")),
	}
}

func (r *paymentEventRepository) Create(ctx context.Context, event *entity.PaymentEvent) error {
	query := `
		INSERT INTO payment_events (id, payment_ref, outcome, amount, booking_id, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.PaymentRef,
		event.Outcome,
		event.Amount,
		event.BookingID,
		event.Result,
		event.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment event",
			zap.Error(err),
			zap.String("payment_ref", event.PaymentRef),
			zap.String("result", string(event.Result)),
		)
		return fmt.Errorf("create payment event %s: %w", event.PaymentRef, err)
	}

	return nil
}

// FindApplied returns the event that already drove a transition for this
// ref+outcome, if any. Used to make webhook redelivery a no-op.
func (r *paymentEventRepository) FindApplied(ctx context.Context, paymentRef string, outcome entity.PaymentOutcome) (*entity.PaymentEvent, error) {
	query := `
		SELECT id, payment_ref, outcome, amount, booking_id, result, created_at
		FROM payment_events
		WHERE payment_ref = $1 AND outcome = $2 AND result = $3
		ORDER BY created_at
		LIMIT 1
	`

	var event entity.PaymentEvent
	err := r.db.QueryRow(ctx, query, paymentRef, outcome, entity.PaymentEventApplied).Scan(
		&event.ID,
		&event.PaymentRef,
		&event.Outcome,
		&event.Amount,
		&event.BookingID,
		&event.Result,
		&event.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find applied payment event",
			zap.Error(err),
			zap.String("payment_ref", paymentRef),
		)
		return nil, fmt.Errorf("find applied payment event %s: %w", paymentRef, err)
	}

	return &event, nil
}

func (r *paymentEventRepository) FindReconcileCases(ctx context.Context, limit int) ([]*entity.PaymentEvent, error) {
	query := `
		SELECT id, payment_ref, outcome, amount, booking_id, result, created_at
		FROM payment_events
		WHERE result = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, entity.PaymentEventReconcile, limit)
	if err != nil {
		r.log.Error("Failed to find reconcile cases", zap.Error(err))
		return nil, fmt.Errorf("find reconcile cases: %w", err)
	}
	defer rows.Close()

	var events []*entity.PaymentEvent
	for rows.Next() {
		var event entity.PaymentEvent
		err := rows.Scan(
			&event.ID,
			&event.PaymentRef,
			&event.Outcome,
			&event.Amount,
			&event.BookingID,
			&event.Result,
			&event.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan payment event row", zap.Error(err))
			return nil, fmt.Errorf("scan payment event row: %w", err)
		}
		events = append(events, &event)
	}

	return events, nil
}
