package usecase

import (
	"context"
	"fmt"
	"time"

	"ticket-booking/internal/data/entity"
	"ticket-booking/internal/data/repository"
	"ticket-booking/internal/dto/request"
	"ticket-booking/internal/dto/response"
	"ticket-booking/internal/queue"
	"ticket-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService drives the booking lifecycle: create with a timed hold,
// confirm or cancel through payment events, expire through the sweeper.
type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req request.CreateBookingRequest) (*response.BookingResponse, error)
	GetBookingByID(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, page request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error)
	GetSeatAvailability(ctx context.Context, showID uuid.UUID) (*response.SeatAvailabilityResponse, error)

	// HandlePaymentEvent consumes one verified webhook delivery. Safe to
	// call any number of times with the same ref and outcome.
	HandlePaymentEvent(ctx context.Context, paymentRef string, outcome entity.PaymentOutcome, amount float64) (entity.PaymentEventResult, error)

	// ExpireBooking is invoked by the sweeper once a hold deadline passes.
	ExpireBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)

	// Admin surface
	GetAllBookings(ctx context.Context, page request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetAnyBooking(ctx context.Context, bookingID uuid.UUID) (*response.BookingResponse, error)
	GetDashboard(ctx context.Context) (*response.DashboardResponse, error)
}

type bookingService struct {
	repo        *repository.Repository
	reservation ReservationService
	payment     PaymentProvider
	publisher   EventPublisher
	holdTTL     time.Duration
	log         *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	reservation ReservationService,
	payment PaymentProvider,
	publisher EventPublisher,
	holdMinutes int,
	log *zap.Logger,
) BookingService {
	if holdMinutes < 1 {
		holdMinutes = 15
	}
	return &bookingService{
		repo:        repo,
		reservation: reservation,
		payment:     payment,
		publisher:   publisher,
		holdTTL:     time.Duration(holdMinutes) * time.Minute,
		log:         log.With(zap.String("service", "booking")),
	}
}

// CreateBooking claims the requested seats atomically, persists a pending
// booking with a hold deadline, and registers a pending charge with the
// payment provider. Any failure after the claim releases the seats again.
func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req request.CreateBookingRequest) (*response.BookingResponse, error) {
	showID, err := utils.ParseUUID(req.ShowID)
	if err != nil {
		return nil, ErrShowNotFound
	}

	show, err := s.repo.Show.FindByID(ctx, showID)
	if err != nil {
		return nil, err
	}
	if show == nil {
		return nil, ErrShowNotFound
	}

	bookingID := utils.GenerateUUID()
	seatIDs := dedupeSeats(req.SeatIDs)

	if _, err := s.reservation.ClaimSeats(ctx, showID, seatIDs, bookingID); err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        bookingID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:      utils.GenerateOrderID(),
		UserID:       userID,
		ShowID:       showID,
		SeatIDs:      seatIDs,
		Amount:       show.Price * float64(len(seatIDs)),
		Status:       entity.BookingStatusPending,
		HoldDeadline: now.Add(s.holdTTL),
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		s.rollbackClaim(ctx, showID, seatIDs, bookingID)
		return nil, err
	}

	paymentRef, err := s.payment.CreatePendingCharge(ctx, booking)
	if err != nil {
		s.rollbackClaim(ctx, showID, seatIDs, bookingID)
		if _, cancelErr := s.repo.Booking.CancelIfPending(ctx, bookingID); cancelErr != nil {
			s.log.Error("Failed to cancel booking after charge failure",
				zap.Error(cancelErr),
				zap.String("booking_id", bookingID.String()),
			)
		}
		return nil, fmt.Errorf("register charge: %w", err)
	}

	if err := s.repo.Booking.SetPaymentRef(ctx, bookingID, paymentRef); err != nil {
		return nil, err
	}
	booking.PaymentRef = paymentRef

	s.log.Info("Booking created",
		zap.String("booking_id", bookingID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("user_id", userID.String()),
		zap.Strings("seat_ids", seatIDs),
		zap.Time("hold_deadline", booking.HoldDeadline),
	)

	resp := response.BookingToResponse(booking)
	s.enrichWithShow(ctx, &resp, show)
	return &resp, nil
}

// rollbackClaim frees seats after a post-claim failure. Best effort; an
// orphaned hold is caught later when the booking never confirms.
func (s *bookingService) rollbackClaim(ctx context.Context, showID uuid.UUID, seatIDs []string, bookingID uuid.UUID) {
	if err := s.reservation.ReleaseSeats(ctx, showID, seatIDs, bookingID); err != nil {
		s.log.Error("Failed to release seats during rollback",
			zap.Error(err),
			zap.String("show_id", showID.String()),
			zap.String("booking_id", bookingID.String()),
		)
	}
}

func (s *bookingService) GetBookingByID(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, ErrNotBookingOwner
	}

	resp := response.BookingToResponse(booking)
	if show, err := s.repo.Show.FindByID(ctx, booking.ShowID); err == nil && show != nil {
		s.enrichWithShow(ctx, &resp, show)
	}
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, page request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := s.toResponses(ctx, bookings)
	return response.NewPaginatedResponse(items, page.Page, page.Limit(), total), nil
}

// CancelBooking is user initiated and only valid while pending. The
// conditional update decides the race against a concurrent payment or
// expiry; seats are released only when this call wins.
func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, ErrNotBookingOwner
	}

	won, err := s.repo.Booking.CancelIfPending(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrBookingNotPending
	}

	if err := s.reservation.ReleaseSeats(ctx, booking.ShowID, booking.SeatIDs, bookingID); err != nil {
		s.log.Error("Failed to release seats on cancel",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
	}

	booking.Status = entity.BookingStatusCancelled
	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("user_id", userID.String()),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetSeatAvailability(ctx context.Context, showID uuid.UUID) (*response.SeatAvailabilityResponse, error) {
	seatMap, err := s.reservation.GetSeatMap(ctx, showID)
	if err != nil {
		return nil, err
	}
	return response.SeatMapToAvailability(showID.String(), seatMap), nil
}

// HandlePaymentEvent applies one webhook delivery and records the outcome
// in the audit log. Exactly one delivery per ref+outcome transitions the
// booking; redeliveries and stale events are recorded but change nothing.
func (s *bookingService) HandlePaymentEvent(ctx context.Context, paymentRef string, outcome entity.PaymentOutcome, amount float64) (entity.PaymentEventResult, error) {
	applied, err := s.repo.PaymentEvent.FindApplied(ctx, paymentRef, outcome)
	if err != nil {
		return "", err
	}
	if applied != nil {
		return s.recordEvent(ctx, paymentRef, outcome, amount, applied.BookingID, entity.PaymentEventDuplicate)
	}

	booking, err := s.repo.Booking.FindByPaymentRef(ctx, paymentRef)
	if err != nil {
		return "", err
	}
	if booking == nil {
		s.log.Warn("Payment event matches no booking",
			zap.String("payment_ref", paymentRef),
			zap.String("outcome", string(outcome)),
		)
		return s.recordEvent(ctx, paymentRef, outcome, amount, nil, entity.PaymentEventUnmatched)
	}

	switch outcome {
	case entity.PaymentOutcomeSuccess:
		return s.applySuccess(ctx, booking, paymentRef, amount)
	case entity.PaymentOutcomeFailure:
		return s.applyFailure(ctx, booking, paymentRef, amount)
	default:
		return "", fmt.Errorf("unknown payment outcome %q", outcome)
	}
}

func (s *bookingService) applySuccess(ctx context.Context, booking *entity.Booking, paymentRef string, amount float64) (entity.PaymentEventResult, error) {
	won, err := s.repo.Booking.ConfirmIfPending(ctx, booking.ID, time.Now())
	if err != nil {
		return "", err
	}

	if won {
		if err := s.reservation.FinalizeSeats(ctx, booking.ShowID, booking.SeatIDs, booking.ID); err != nil {
			s.log.Error("Failed to finalize seats for confirmed booking",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
		}

		booking.Status = entity.BookingStatusConfirmed
		s.publishConfirmed(ctx, booking, paymentRef)
		s.log.Info("Booking confirmed by payment",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_ref", paymentRef),
		)
		return s.recordEvent(ctx, paymentRef, entity.PaymentOutcomeSuccess, amount, &booking.ID, entity.PaymentEventApplied)
	}

	// Lost the race; reload to see who won.
	current, err := s.repo.Booking.FindByID(ctx, booking.ID)
	if err != nil {
		return "", err
	}
	if current != nil && current.Status == entity.BookingStatusConfirmed {
		return s.recordEvent(ctx, paymentRef, entity.PaymentOutcomeSuccess, amount, &booking.ID, entity.PaymentEventDuplicate)
	}

	// Payment succeeded after the hold was expired or the booking was
	// cancelled. Seats stay free; the charge needs a refund.
	s.log.Warn("Late payment success needs reconciliation",
		zap.String("booking_id", booking.ID.String()),
		zap.String("payment_ref", paymentRef),
	)
	return s.recordEvent(ctx, paymentRef, entity.PaymentOutcomeSuccess, amount, &booking.ID, entity.PaymentEventReconcile)
}

func (s *bookingService) applyFailure(ctx context.Context, booking *entity.Booking, paymentRef string, amount float64) (entity.PaymentEventResult, error) {
	won, err := s.repo.Booking.CancelIfPending(ctx, booking.ID)
	if err != nil {
		return "", err
	}

	if won {
		if err := s.reservation.ReleaseSeats(ctx, booking.ShowID, booking.SeatIDs, booking.ID); err != nil {
			s.log.Error("Failed to release seats after payment failure",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
		}
		s.log.Info("Booking cancelled by payment failure",
			zap.String("booking_id", booking.ID.String()),
			zap.String("payment_ref", paymentRef),
		)
		return s.recordEvent(ctx, paymentRef, entity.PaymentOutcomeFailure, amount, &booking.ID, entity.PaymentEventApplied)
	}

	// Already terminal; a failure against a settled booking changes nothing.
	return s.recordEvent(ctx, paymentRef, entity.PaymentOutcomeFailure, amount, &booking.ID, entity.PaymentEventDuplicate)
}

func (s *bookingService) recordEvent(ctx context.Context, paymentRef string, outcome entity.PaymentOutcome, amount float64, bookingID *uuid.UUID, result entity.PaymentEventResult) (entity.PaymentEventResult, error) {
	event := &entity.PaymentEvent{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: time.Now(),
		},
		PaymentRef: paymentRef,
		Outcome:    outcome,
		Amount:     amount,
		BookingID:  bookingID,
		Result:     result,
	}
	if err := s.repo.PaymentEvent.Create(ctx, event); err != nil {
		return result, err
	}
	return result, nil
}

func (s *bookingService) publishConfirmed(ctx context.Context, booking *entity.Booking, paymentRef string) {
	event := queue.BookingConfirmedEvent{
		BookingID:  booking.ID.String(),
		OrderID:    booking.OrderID,
		UserID:     booking.UserID.String(),
		ShowID:     booking.ShowID.String(),
		SeatIDs:    booking.SeatIDs,
		Amount:     booking.Amount,
		PaymentRef: paymentRef,
	}

	if show, err := s.repo.Show.FindByID(ctx, booking.ShowID); err == nil && show != nil {
		event.StartsAt = show.StartsAt.Format(time.RFC3339)
		if movie, err := s.repo.Movie.FindByID(ctx, show.MovieID); err == nil && movie != nil {
			event.MovieTitle = movie.Title
		}
	}

	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		s.log.Error("Failed to publish booking confirmed event",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}

// ExpireBooking moves a pending booking past its deadline to expired and
// frees its seats. Returns false when something else settled the booking
// first.
func (s *bookingService) ExpireBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	if booking == nil {
		return false, ErrBookingNotFound
	}

	won, err := s.repo.Booking.ExpireIfPending(ctx, bookingID, time.Now())
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	if err := s.reservation.ReleaseSeats(ctx, booking.ShowID, booking.SeatIDs, bookingID); err != nil {
		s.log.Error("Failed to release seats on expiry",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return true, err
	}

	s.log.Info("Booking expired",
		zap.String("booking_id", bookingID.String()),
		zap.String("order_id", booking.OrderID),
	)
	return true, nil
}

func (s *bookingService) GetAllBookings(ctx context.Context, page request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}

	total := int64(0)
	for _, status := range []entity.BookingStatus{
		entity.BookingStatusPending,
		entity.BookingStatusConfirmed,
		entity.BookingStatusExpired,
		entity.BookingStatusCancelled,
	} {
		count, err := s.repo.Booking.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		total += count
	}

	items := s.toResponses(ctx, bookings)
	return response.NewPaginatedResponse(items, page.Page, page.Limit(), total), nil
}

// GetAnyBooking skips the ownership check; reachable only behind the admin
// guard.
func (s *bookingService) GetAnyBooking(ctx context.Context, bookingID uuid.UUID) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	resp := response.BookingToResponse(booking)
	if show, err := s.repo.Show.FindByID(ctx, booking.ShowID); err == nil && show != nil {
		s.enrichWithShow(ctx, &resp, show)
	}
	return &resp, nil
}

func (s *bookingService) GetDashboard(ctx context.Context) (*response.DashboardResponse, error) {
	confirmed, err := s.repo.Booking.CountByStatus(ctx, entity.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}

	revenue, err := s.repo.Booking.SumConfirmedAmount(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.User.Count(ctx)
	if err != nil {
		return nil, err
	}

	shows, err := s.repo.Show.FindUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]response.ShowResponse, 0, len(shows))
	for _, show := range shows {
		active = append(active, response.ShowToResponse(show))
	}

	return &response.DashboardResponse{
		TotalBookings: confirmed,
		TotalRevenue:  revenue,
		TotalUsers:    users,
		ActiveShows:   active,
	}, nil
}

// toResponses converts bookings and enriches them with movie titles, one
// show/movie lookup per distinct show.
func (s *bookingService) toResponses(ctx context.Context, bookings []*entity.Booking) []response.BookingResponse {
	shows := make(map[uuid.UUID]*entity.Show)
	titles := make(map[uuid.UUID]string)

	items := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		resp := response.BookingToResponse(booking)

		show, ok := shows[booking.ShowID]
		if !ok {
			show, _ = s.repo.Show.FindByID(ctx, booking.ShowID)
			shows[booking.ShowID] = show
		}
		if show != nil {
			resp.StartsAt = show.StartsAt
			title, ok := titles[show.MovieID]
			if !ok {
				if movie, err := s.repo.Movie.FindByID(ctx, show.MovieID); err == nil && movie != nil {
					title = movie.Title
				}
				titles[show.MovieID] = title
			}
			resp.MovieTitle = title
		}

		items = append(items, resp)
	}
	return items
}

func (s *bookingService) enrichWithShow(ctx context.Context, resp *response.BookingResponse, show *entity.Show) {
	resp.StartsAt = show.StartsAt
	if movie, err := s.repo.Movie.FindByID(ctx, show.MovieID); err == nil && movie != nil {
		resp.MovieTitle = movie.Title
	}
}
