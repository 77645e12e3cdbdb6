package repository

import (
	"context"
	"fmt"
	"time"

	"ticket-booking/internal/data/entity"
	"ticket-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByPaymentRef(ctx context.Context, paymentRef string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error)
	SetPaymentRef(ctx context.Context, bookingID uuid.UUID, paymentRef string) error

	// Lifecycle transitions; every one is a conditional single-statement
	// UPDATE so racing triggers resolve to exactly one winner.
	ConfirmIfPending(ctx context.Context, bookingID uuid.UUID, now time.Time) (bool, error)
	CancelIfPending(ctx context.Context, bookingID uuid.UUID) (bool, error)
	ExpireIfPending(ctx context.Context, bookingID uuid.UUID, now time.Time) (bool, error)

	// Sweeper and dashboard queries
	FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error)
	CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error)
	SumConfirmedAmount(ctx context.Context) (float64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, order_id, user_id, show_id, seat_ids, amount, status, payment_ref, hold_deadline, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, order_id, user_id, show_id, seat_ids, amount, status, payment_ref, hold_deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.OrderID,
		booking.UserID,
		booking.ShowID,
		booking.SeatIDs,
		booking.Amount,
		booking.Status,
		booking.PaymentRef,
		booking.HoldDeadline,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.OrderID, err)
	}

	return nil
}

func (r *bookingRepository) scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.UserID,
		&booking.ShowID,
		&booking.SeatIDs,
		&booking.Amount,
		&booking.Status,
		&booking.PaymentRef,
		&booking.HoldDeadline,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_ref = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, paymentRef))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by payment ref",
			zap.Error(err),
			zap.String("payment_ref", paymentRef),
		)
		return nil, fmt.Errorf("find booking by payment ref %s: %w", paymentRef, err)
	}

	return booking, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	bookings, err := r.queryBookings(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	bookings, err := r.queryBookings(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all bookings", zap.Error(err))
		return nil, fmt.Errorf("find all bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) SetPaymentRef(ctx context.Context, bookingID uuid.UUID, paymentRef string) error {
	query := `UPDATE bookings SET payment_ref = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, paymentRef)
	if err != nil {
		r.log.Error("Failed to set payment ref",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("set payment ref for booking %s: %w", bookingID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

// ConfirmIfPending wins only while the booking is pending and the hold
// deadline has not passed at commit time.
func (r *bookingRepository) ConfirmIfPending(ctx context.Context, bookingID uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3 AND hold_deadline > $4
	`

	result, err := r.db.Exec(ctx, query, bookingID, entity.BookingStatusConfirmed, entity.BookingStatusPending, now)
	if err != nil {
		r.log.Error("Failed to confirm booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("confirm booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) CancelIfPending(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.db.Exec(ctx, query, bookingID, entity.BookingStatusCancelled, entity.BookingStatusPending)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("cancel booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) ExpireIfPending(ctx context.Context, bookingID uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3 AND hold_deadline <= $4
	`

	result, err := r.db.Exec(ctx, query, bookingID, entity.BookingStatusExpired, entity.BookingStatusPending, now)
	if err != nil {
		r.log.Error("Failed to expire booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("expire booking %s: %w", bookingID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *bookingRepository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND hold_deadline <= $2
		ORDER BY hold_deadline
		LIMIT $3
	`

	bookings, err := r.queryBookings(ctx, query, entity.BookingStatusPending, now, limit)
	if err != nil {
		r.log.Error("Failed to find expired pending bookings", zap.Error(err))
		return nil, fmt.Errorf("find expired pending bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE status = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, status).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by status",
			zap.Error(err),
			zap.String("status", string(status)),
		)
		return 0, fmt.Errorf("count bookings by status %s: %w", string(status), err)
	}

	return count, nil
}

func (r *bookingRepository) SumConfirmedAmount(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM bookings WHERE status = $1`

	var total float64
	err := r.db.QueryRow(ctx, query, entity.BookingStatusConfirmed).Scan(&total)
	if err != nil {
		r.log.Error("Failed to sum confirmed booking amounts", zap.Error(err))
		return 0, fmt.Errorf("sum confirmed booking amounts: %w", err)
	}

	return total, nil
}
