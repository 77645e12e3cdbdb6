package usecase

import (
	"context"
	"testing"

	"ticket-booking/internal/data/repository"
	"ticket-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newShowFixture() (ShowService, *fakeShowRepo, *fakeMovieRepo) {
	shows := newFakeShowRepo()
	movies := newFakeMovieRepo()
	repo := &repository.Repository{
		User:         fakeUserRepo{},
		Movie:        movies,
		Show:         shows,
		Booking:      newFakeBookingRepo(),
		PaymentEvent: &fakePaymentEventRepo{},
	}
	return NewShowService(repo, zap.NewNop()), shows, movies
}

func TestAddShowSchedulesEverySlot(t *testing.T) {
	svc, shows, movies := newShowFixture()

	movieID := uuid.New()
	created, err := svc.AddShow(context.Background(), request.AddShowRequest{
		Movie: request.MovieInput{
			ID:          movieID.String(),
			Title:       "Arrival",
			ReleaseDate: "2016-11-11",
		},
		ShowTimes: []request.ShowTimesInput{
			{Date: "2030-06-01", Times: []string{"14:00", "19:30"}},
			{Date: "2030-06-02", Times: []string{"20:00"}},
		},
		Price: 11.50,
	})
	require.NoError(t, err)
	assert.Len(t, created, 3)

	movie, err := movies.FindByID(context.Background(), movieID)
	require.NoError(t, err)
	require.NotNil(t, movie)
	assert.Equal(t, "Arrival", movie.Title)

	upcoming, err := shows.FindUpcomingByMovie(context.Background(), movieID)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	for _, show := range upcoming {
		assert.Equal(t, 11.50, show.Price)
		assert.Empty(t, show.SeatMap, "new shows start with every seat free")
		assert.Equal(t, int64(0), show.Version)
	}
}

func TestAddShowRejectsBadTime(t *testing.T) {
	svc, _, _ := newShowFixture()

	_, err := svc.AddShow(context.Background(), request.AddShowRequest{
		Movie:     request.MovieInput{ID: uuid.New().String(), Title: "Arrival"},
		ShowTimes: []request.ShowTimesInput{{Date: "2030-06-01", Times: []string{"25:99"}}},
		Price:     10,
	})
	assert.Error(t, err)
}

func TestGetMovieShowsGroupsByDate(t *testing.T) {
	svc, _, _ := newShowFixture()

	movieID := uuid.New()
	_, err := svc.AddShow(context.Background(), request.AddShowRequest{
		Movie: request.MovieInput{ID: movieID.String(), Title: "Dune"},
		ShowTimes: []request.ShowTimesInput{
			{Date: "2030-07-01", Times: []string{"13:00", "18:00"}},
			{Date: "2030-07-02", Times: []string{"18:00"}},
		},
		Price: 14,
	})
	require.NoError(t, err)

	resp, err := svc.GetMovieShows(context.Background(), movieID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", resp.Movie.Title)
	assert.Len(t, resp.ShowDates["2030-07-01"], 2)
	assert.Len(t, resp.ShowDates["2030-07-02"], 1)
}

func TestGetMovieShowsUnknownMovie(t *testing.T) {
	svc, _, _ := newShowFixture()

	_, err := svc.GetMovieShows(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrShowNotFound)
}

func TestGetShowsListsDistinctMovies(t *testing.T) {
	svc, _, _ := newShowFixture()

	movieID := uuid.New()
	_, err := svc.AddShow(context.Background(), request.AddShowRequest{
		Movie: request.MovieInput{ID: movieID.String(), Title: "Dune"},
		ShowTimes: []request.ShowTimesInput{
			{Date: "2030-07-01", Times: []string{"13:00", "18:00", "21:00"}},
		},
		Price: 14,
	})
	require.NoError(t, err)

	items, err := svc.GetShows(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1, "three shows of one movie list the movie once")
	assert.Equal(t, "Dune", items[0].Title)
}
