package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ticket-booking/internal/data/entity"
	"ticket-booking/internal/data/repository"
	"ticket-booking/internal/dto/request"
	"ticket-booking/internal/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------- fakes ----------

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) FindByPaymentRef(ctx context.Context, paymentRef string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, booking := range f.bookings {
		if booking.PaymentRef == paymentRef {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	bookings, _ := f.FindByUserID(ctx, userID, 0, 0)
	return int64(len(bookings)), nil
}

func (f *fakeBookingRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range f.bookings {
		copied := *booking
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeBookingRepo) SetPaymentRef(ctx context.Context, bookingID uuid.UUID, paymentRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok {
		return errors.New("booking not found")
	}
	booking.PaymentRef = paymentRef
	return nil
}

func (f *fakeBookingRepo) ConfirmIfPending(ctx context.Context, bookingID uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || booking.Status != entity.BookingStatusPending || !booking.HoldDeadline.After(now) {
		return false, nil
	}
	booking.Status = entity.BookingStatusConfirmed
	return true, nil
}

func (f *fakeBookingRepo) CancelIfPending(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || booking.Status != entity.BookingStatusPending {
		return false, nil
	}
	booking.Status = entity.BookingStatusCancelled
	return true, nil
}

func (f *fakeBookingRepo) ExpireIfPending(ctx context.Context, bookingID uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || booking.Status != entity.BookingStatusPending || booking.HoldDeadline.After(now) {
		return false, nil
	}
	booking.Status = entity.BookingStatusExpired
	return true, nil
}

func (f *fakeBookingRepo) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range f.bookings {
		if booking.Status == entity.BookingStatusPending && !booking.HoldDeadline.After(now) {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, booking := range f.bookings {
		if booking.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeBookingRepo) SumConfirmedAmount(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, booking := range f.bookings {
		if booking.Status == entity.BookingStatusConfirmed {
			total += booking.Amount
		}
	}
	return total, nil
}

type fakePaymentEventRepo struct {
	mu     sync.Mutex
	events []*entity.PaymentEvent
}

func (f *fakePaymentEventRepo) Create(ctx context.Context, event *entity.PaymentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *event
	f.events = append(f.events, &copied)
	return nil
}

func (f *fakePaymentEventRepo) FindApplied(ctx context.Context, paymentRef string, outcome entity.PaymentOutcome) (*entity.PaymentEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, event := range f.events {
		if event.PaymentRef == paymentRef && event.Outcome == outcome && event.Result == entity.PaymentEventApplied {
			copied := *event
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentEventRepo) FindReconcileCases(ctx context.Context, limit int) ([]*entity.PaymentEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.PaymentEvent
	for _, event := range f.events {
		if event.Result == entity.PaymentEventReconcile {
			copied := *event
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakePaymentEventRepo) byResult(result entity.PaymentEventResult) []*entity.PaymentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.PaymentEvent
	for _, event := range f.events {
		if event.Result == result {
			out = append(out, event)
		}
	}
	return out
}

type fakeMovieRepo struct {
	mu     sync.Mutex
	movies map[uuid.UUID]*entity.Movie
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{movies: make(map[uuid.UUID]*entity.Movie)}
}

func (f *fakeMovieRepo) Upsert(ctx context.Context, movie *entity.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *movie
	f.movies[movie.ID] = &copied
	return nil
}

func (f *fakeMovieRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	movie, ok := f.movies[id]
	if !ok {
		return nil, nil
	}
	copied := *movie
	return &copied, nil
}

func (f *fakeMovieRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Movie, error) {
	var out []*entity.Movie
	for _, id := range ids {
		if movie, _ := f.FindByID(ctx, id); movie != nil {
			out = append(out, movie)
		}
	}
	return out, nil
}

type fakeUserRepo struct{}

func (fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return nil, nil
}
func (fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}
func (fakeUserRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakePaymentProvider struct {
	mu   sync.Mutex
	n    int
	fail bool
}

func (f *fakePaymentProvider) CreatePendingCharge(ctx context.Context, booking *entity.Booking) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("provider unavailable")
	}
	f.n++
	return fmt.Sprintf("pi_test_%d", f.n), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
}

func (f *fakePublisher) PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

// ---------- fixture ----------

type bookingFixture struct {
	service   BookingService
	shows     *fakeShowRepo
	bookings  *fakeBookingRepo
	events    *fakePaymentEventRepo
	publisher *fakePublisher
	provider  *fakePaymentProvider
	show      *entity.Show
	userID    uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	shows := newFakeShowRepo()
	bookings := newFakeBookingRepo()
	events := &fakePaymentEventRepo{}
	publisher := &fakePublisher{}
	provider := &fakePaymentProvider{}

	repo := &repository.Repository{
		User:         fakeUserRepo{},
		Movie:        newFakeMovieRepo(),
		Show:         shows,
		Booking:      bookings,
		PaymentEvent: events,
	}

	log := zap.NewNop()
	reservation := NewReservationService(shows, noopSeatCache{}, 10, log)
	service := NewBookingService(repo, reservation, provider, publisher, 15, log)

	return &bookingFixture{
		service:   service,
		shows:     shows,
		bookings:  bookings,
		events:    events,
		publisher: publisher,
		provider:  provider,
		show:      newTestShow(shows),
		userID:    uuid.New(),
	}
}

func (fx *bookingFixture) createBooking(t *testing.T, seats ...string) uuid.UUID {
	t.Helper()
	resp, err := fx.service.CreateBooking(context.Background(), fx.userID, request.CreateBookingRequest{
		ShowID:  fx.show.ID.String(),
		SeatIDs: seats,
	})
	require.NoError(t, err)
	bookingID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return bookingID
}

func (fx *bookingFixture) paymentRef(t *testing.T, bookingID uuid.UUID) string {
	t.Helper()
	booking, err := fx.bookings.FindByID(context.Background(), bookingID)
	require.NoError(t, err)
	require.NotNil(t, booking)
	require.NotEmpty(t, booking.PaymentRef)
	return booking.PaymentRef
}

// ---------- tests ----------

func TestCreateBookingHoldsSeatsAndOpensCharge(t *testing.T) {
	fx := newBookingFixture(t)

	resp, err := fx.service.CreateBooking(context.Background(), fx.userID, request.CreateBookingRequest{
		ShowID:  fx.show.ID.String(),
		SeatIDs: []string{"A1", "A2"},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusPending, resp.Status)
	assert.Equal(t, fx.show.Price*2, resp.Amount)
	assert.NotEmpty(t, resp.OrderID)
	assert.NotEmpty(t, resp.PaymentRef)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), resp.HoldDeadline, 5*time.Second)

	bookingID, _ := uuid.Parse(resp.ID)
	seatMap, _, err := fx.shows.ReadSeatMap(context.Background(), fx.show.ID)
	require.NoError(t, err)
	assert.True(t, seatMap.HeldBy("A1", bookingID))
	assert.True(t, seatMap.HeldBy("A2", bookingID))
}

func TestCreateBookingReleasesSeatsWhenChargeFails(t *testing.T) {
	fx := newBookingFixture(t)
	fx.provider.fail = true

	_, err := fx.service.CreateBooking(context.Background(), fx.userID, request.CreateBookingRequest{
		ShowID:  fx.show.ID.String(),
		SeatIDs: []string{"B1"},
	})
	require.Error(t, err)

	seatMap, _, err := fx.shows.ReadSeatMap(context.Background(), fx.show.ID)
	require.NoError(t, err)
	assert.Empty(t, seatMap, "failed booking must not leave seats held")
}

func TestCreateBookingRejectsTakenSeats(t *testing.T) {
	fx := newBookingFixture(t)
	fx.createBooking(t, "C1", "C2")

	_, err := fx.service.CreateBooking(context.Background(), uuid.New(), request.CreateBookingRequest{
		ShowID:  fx.show.ID.String(),
		SeatIDs: []string{"C2", "C3"},
	})

	var seatErr *SeatUnavailableError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, []string{"C2"}, seatErr.Seats)
}

func TestPaymentSuccessConfirmsBooking(t *testing.T) {
	fx := newBookingFixture(t)
	bookingID := fx.createBooking(t, "D1", "D2")
	ref := fx.paymentRef(t, bookingID)

	result, err := fx.service.HandlePaymentEvent(context.Background(), ref, entity.PaymentOutcomeSuccess, 25)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentEventApplied, result)

	booking, _ := fx.bookings.FindByID(context.Background(), bookingID)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)

	seatMap, _, _ := fx.shows.ReadSeatMap(context.Background(), fx.show.ID)
	for _, seat := range []string{"D1", "D2"} {
		assert.Equal(t, entity.SeatStatusSold, seatMap[seat].Status)
	}

	require.Len(t, fx.publisher.events, 1)
	assert.Equal(t, bookingID.String(), fx.publisher.events[0].BookingID)
}

func TestPaymentSuccessRedeliveryIsNoOp(t *testing.T) {
	fx := newBookingFixture(t)
	bookingID := fx.createBooking(t, "E1")
	ref := fx.paymentRef(t, bookingID)

	first, err := fx.service.HandlePaymentEvent(context.Background(), ref, entity.PaymentOutcomeSuccess, 12.5)
	require.NoError(t, err)
	require.Equal(t, entity.PaymentEventApplied, first)

	for i := 0; i < 3; i++ {
		result, err := fx.service.HandlePaymentEvent(context.Background(), ref, entity.PaymentOutcomeSuccess, 12.5)
		require.NoError(t, err)
		assert.Equal(t, entity.PaymentEventDuplicate, result)
	}

	// One transition, one published event, full audit trail.
	booking, _ := fx.bookings.FindByID(context.Background(), bookingID)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
	assert.Len(t, fx.publisher.events, 1)
	assert.Len(t, fx.events.byResult(entity.PaymentEventApplied), 1)
	assert.Len(t, fx.events.byResult(entity.PaymentEventDuplicate), 3)
}

func TestPaymentFailureCancelsAndFreesSeats(t *testing.T) {
	fx := newBookingFixture(t)
	bookingID := fx.createBooking(t, "F1", "F2")
	ref := fx.paymentRef(t, bookingID)

	result, err := fx.service.HandlePaymentEvent(context.Background(), ref, entity.PaymentOutcomeFailure, 25)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentEventApplied, result)

	booking, _ := fx.bookings.FindByID(context.Background(), bookingID)
	assert.Equal(t, entity.BookingStatusCancelled, booking.Status)

	seatMap, _, _ := fx.shows.ReadSeatMap(context.Background(), fx.show.ID)
	assert.Empty(t, seatMap, "seats must be free again after payment failure")
	assert.Empty(t, fx.publisher.events)
}

func TestPaymentEventUnmatchedRef(t *testing.T) {
	fx := newBookingFixture(t)

	result, err := fx.service.HandlePaymentEvent(context.Background(), "pi_unknown", entity.PaymentOutcomeSuccess, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentEventUnmatched, result)
	assert.Len(t, fx.events.byResult(entity.PaymentEventUnmatched), 1)
}

func TestLatePaymentAfterExpiryNeedsReconciliation(t *testing.T) {
	fx := newBookingFixture(t)
	bookingID := fx.createBooking(t, "G1")
	ref := fx.paymentRef(t, bookingID)

	// Push the deadline into the past and let the sweeper-path expire it.
	fx.bookings.mu.Lock()
	fx.bookings.bookings[bookingID].HoldDeadline = time.Now().Add(-time.Minute)
	fx.bookings.mu.Unlock()

	won, err := fx.service.ExpireBooking(context.Background(), bookingID)
	require.NoError(t, err)
	require.True(t, won)

	seatMap, _, _ := fx.shows.ReadSeatMap(context.Background(), fx.show.ID)
	require.Empty(t, seatMap, "expiry must free the seats")

	// The success arrives too late: no re-claim, flagged for refund.
	result, err := fx.service.HandlePaymentEvent(context.Background(), ref, entity.PaymentOutcomeSuccess, 12.5)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentEventReconcile, result)

	booking, _ := fx.bookings.FindByID(context.Background(), bookingID)
	assert.Equal(t, entity.BookingStatusExpired, booking.Status)

	seatMap, _, _ = fx.shows.ReadSeatMap(context.Background(), fx.show.ID)
	assert.Empty(t, seatMap, "late success must never re-claim seats")
	assert.Empty(t, fx.publisher.events)

	cases, err := fx.events.FindReconcileCases(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, ref, cases[0].PaymentRef)
}

// Payment success and expiry fire concurrently against the same booking;
// exactly one may win and the seat map must match the winner. Alternating
// deadlines drive both outcomes through the same racing code path.
func TestPaymentVersusExpiryExactlyOneWinner(t *testing.T) {
	for i := 0; i < 20; i++ {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t, "H1")
		ref := fx.paymentRef(t, bookingID)

		deadline := time.Now().Add(-time.Second)
		if i%2 == 0 {
			deadline = time.Now().Add(time.Hour)
		}
		fx.bookings.mu.Lock()
		fx.bookings.bookings[bookingID].HoldDeadline = deadline
		fx.bookings.mu.Unlock()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = fx.service.HandlePaymentEvent(context.Background(), ref, entity.PaymentOutcomeSuccess, 12.5)
		}()
		go func() {
			defer wg.Done()
			_, _ = fx.service.ExpireBooking(context.Background(), bookingID)
		}()
		wg.Wait()

		booking, _ := fx.bookings.FindByID(context.Background(), bookingID)
		seatMap, _, _ := fx.shows.ReadSeatMap(context.Background(), fx.show.ID)

		switch booking.Status {
		case entity.BookingStatusConfirmed:
			assert.Equal(t, entity.SeatStatusSold, seatMap["H1"].Status)
		case entity.BookingStatusExpired:
			_, taken := seatMap["H1"]
			assert.False(t, taken, "expired booking must leave the seat free")
		default:
			t.Fatalf("booking ended in non-terminal status %s", booking.Status)
		}
	}
}

func TestCancelBookingFreesSeats(t *testing.T) {
	fx := newBookingFixture(t)
	bookingID := fx.createBooking(t, "I1", "I2")

	resp, err := fx.service.CancelBooking(context.Background(), fx.userID, bookingID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, resp.Status)

	seatMap, _, _ := fx.shows.ReadSeatMap(context.Background(), fx.show.ID)
	assert.Empty(t, seatMap)

	// A second cancel finds the booking settled.
	_, err = fx.service.CancelBooking(context.Background(), fx.userID, bookingID)
	assert.ErrorIs(t, err, ErrBookingNotPending)
}

func TestCancelBookingRejectsOtherUsers(t *testing.T) {
	fx := newBookingFixture(t)
	bookingID := fx.createBooking(t, "J1")

	_, err := fx.service.CancelBooking(context.Background(), uuid.New(), bookingID)
	assert.ErrorIs(t, err, ErrNotBookingOwner)

	booking, _ := fx.bookings.FindByID(context.Background(), bookingID)
	assert.Equal(t, entity.BookingStatusPending, booking.Status)
}

func TestCancelledBookingSeatsCanBeRebooked(t *testing.T) {
	fx := newBookingFixture(t)
	bookingID := fx.createBooking(t, "K1")

	_, err := fx.service.CancelBooking(context.Background(), fx.userID, bookingID)
	require.NoError(t, err)

	otherUser := uuid.New()
	resp, err := fx.service.CreateBooking(context.Background(), otherUser, request.CreateBookingRequest{
		ShowID:  fx.show.ID.String(),
		SeatIDs: []string{"K1"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusPending, resp.Status)
}

func TestGetSeatAvailabilityHidesBookingOwners(t *testing.T) {
	fx := newBookingFixture(t)
	fx.createBooking(t, "L1")

	resp, err := fx.service.GetSeatAvailability(context.Background(), fx.show.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"L1": "held"}, resp.Seats)
}
