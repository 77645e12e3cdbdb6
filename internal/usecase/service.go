package usecase

import (
	"ticket-booking/internal/data/repository"
	"ticket-booking/pkg/utils"

	"go.uber.org/zap"
)

// Service bundles every use case behind one constructor for wiring.
type Service struct {
	Auth        AuthService
	Show        ShowService
	Reservation ReservationService
	Booking     BookingService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	cache SeatCache,
	payment PaymentProvider,
	publisher EventPublisher,
	log *zap.Logger,
) *Service {
	reservation := NewReservationService(repo.Show, cache, config.Booking.ClaimRetries, log)

	return &Service{
		Auth:        NewAuthService(repo.User, config.JWT, log),
		Show:        NewShowService(repo, log),
		Reservation: reservation,
		Booking:     NewBookingService(repo, reservation, payment, publisher, config.Booking.HoldMinutes, log),
	}
}
