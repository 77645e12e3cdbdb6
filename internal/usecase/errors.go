package usecase

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrShowNotFound      = errors.New("show not found")
	ErrShowStarted       = errors.New("show already started")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrNotBookingOwner   = errors.New("booking belongs to another user")
	ErrInvalidTransition = errors.New("seat state does not match expected transition")
	// ErrStorageConflict is returned when optimistic retries are exhausted;
	// the whole request may be retried by the caller.
	ErrStorageConflict   = errors.New("seat map contention, retry request")
	ErrBookingNotPending = errors.New("booking is no longer pending")
)

// SeatUnavailableError lists the requested seats that were already held or
// sold, so the client can offer alternatives.
type SeatUnavailableError struct {
	Seats []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.Seats, ", "))
}
