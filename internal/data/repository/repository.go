package repository

import (
	"ticket-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Movie        MovieRepository
	Show         ShowRepository
	Booking      BookingRepository
	PaymentEvent PaymentEventRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Movie:        NewMovieRepository(db, log),
		Show:         NewShowRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		PaymentEvent: NewPaymentEventRepository(db, log),
	}
}
