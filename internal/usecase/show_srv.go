package usecase

import (
	"context"
	"fmt"
	"time"

	"ticket-booking/internal/data/entity"
	"ticket-booking/internal/data/repository"
	"ticket-booking/internal/dto/request"
	"ticket-booking/internal/dto/response"
	"ticket-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShowService manages the catalog: movies and their scheduled shows.
type ShowService interface {
	AddShow(ctx context.Context, req request.AddShowRequest) ([]response.ShowResponse, error)
	GetShows(ctx context.Context) ([]response.MovieResponse, error)
	GetMovieShows(ctx context.Context, movieID uuid.UUID) (*response.MovieShowsResponse, error)
	GetAllShows(ctx context.Context) ([]response.ShowResponse, error)
}

type showService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewShowService(repo *repository.Repository, log *zap.Logger) ShowService {
	return &showService{
		repo: repo,
		log:  log.With(zap.String("service", "show")),
	}
}

// AddShow upserts the movie and schedules one show per date/time slot.
// New shows start with an empty seat map: every seat is free.
func (s *showService) AddShow(ctx context.Context, req request.AddShowRequest) ([]response.ShowResponse, error) {
	movieID, err := utils.ParseUUID(req.Movie.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid movie ID %q: %w", req.Movie.ID, err)
	}

	now := time.Now()
	movie := &entity.Movie{
		Base: entity.Base{
			ID:        movieID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:        req.Movie.Title,
		Overview:     req.Movie.Overview,
		PosterPath:   req.Movie.PosterPath,
		BackdropPath: req.Movie.BackdropPath,
		Genres:       req.Movie.Genres,
		Tagline:      req.Movie.Tagline,
		RuntimeMins:  req.Movie.RuntimeMins,
		VoteAverage:  req.Movie.VoteAverage,
	}
	if req.Movie.ReleaseDate != "" {
		releaseDate, err := time.Parse("2006-01-02", req.Movie.ReleaseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid release date %q: %w", req.Movie.ReleaseDate, err)
		}
		movie.ReleaseDate = releaseDate
	}

	if err := s.repo.Movie.Upsert(ctx, movie); err != nil {
		return nil, err
	}

	var created []response.ShowResponse
	for _, slot := range req.ShowTimes {
		for _, t := range slot.Times {
			startsAt, err := time.Parse("2006-01-02 15:04", slot.Date+" "+t)
			if err != nil {
				return nil, fmt.Errorf("invalid show time %q %q: %w", slot.Date, t, err)
			}

			show := &entity.Show{
				Base: entity.Base{
					ID:        utils.GenerateUUID(),
					CreatedAt: now,
					UpdatedAt: now,
				},
				MovieID:  movieID,
				StartsAt: startsAt,
				Price:    req.Price,
				SeatMap:  entity.SeatMap{},
				Version:  0,
			}

			if err := s.repo.Show.Create(ctx, show); err != nil {
				return nil, err
			}
			created = append(created, response.ShowToResponse(show))
		}
	}

	s.log.Info("Shows scheduled",
		zap.String("movie_id", movieID.String()),
		zap.String("title", movie.Title),
		zap.Int("count", len(created)),
	)

	return created, nil
}

// GetShows lists the distinct movies that still have upcoming shows.
func (s *showService) GetShows(ctx context.Context) ([]response.MovieResponse, error) {
	shows, err := s.repo.Show.FindUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	var movieIDs []uuid.UUID
	for _, show := range shows {
		if _, ok := seen[show.MovieID]; ok {
			continue
		}
		seen[show.MovieID] = struct{}{}
		movieIDs = append(movieIDs, show.MovieID)
	}

	if len(movieIDs) == 0 {
		return []response.MovieResponse{}, nil
	}

	movies, err := s.repo.Movie.FindByIDs(ctx, movieIDs)
	if err != nil {
		return nil, err
	}

	items := make([]response.MovieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, response.MovieToResponse(movie))
	}
	return items, nil
}

// GetMovieShows returns the movie with its upcoming shows grouped by date.
func (s *showService) GetMovieShows(ctx context.Context, movieID uuid.UUID) (*response.MovieShowsResponse, error) {
	movie, err := s.repo.Movie.FindByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrShowNotFound
	}

	shows, err := s.repo.Show.FindUpcomingByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	showDates := make(map[string][]response.ShowTimeResponse)
	for _, show := range shows {
		date := show.StartsAt.Format("2006-01-02")
		showDates[date] = append(showDates[date], response.ShowTimeResponse{
			ShowID:   show.ID.String(),
			StartsAt: show.StartsAt,
			Price:    show.Price,
		})
	}

	return &response.MovieShowsResponse{
		Movie:     response.MovieToResponse(movie),
		ShowDates: showDates,
	}, nil
}

func (s *showService) GetAllShows(ctx context.Context) ([]response.ShowResponse, error) {
	shows, err := s.repo.Show.FindUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]response.ShowResponse, 0, len(shows))
	for _, show := range shows {
		items = append(items, response.ShowToResponse(show))
	}
	return items, nil
}
