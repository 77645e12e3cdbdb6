package repository

import (
	"context"
	"fmt"

	"ticket-booking/internal/data/entity"
	"ticket-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MovieRepository interface {
	Upsert(ctx context.Context, movie *entity.Movie) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Movie, error)
}

type movieRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMovieRepository(db database.PgxIface, log *zap.Logger) MovieRepository {
	return &movieRepository{
		db:  db,
		log: log.With(zap.String("repository", "movie")),
	}
}

func (r *movieRepository) Upsert(ctx context.Context, movie *entity.Movie) error {
	query := `
		INSERT INTO movies (id, title, overview, poster_path, backdrop_path, genres, tagline,
		                    release_date, runtime_mins, vote_average, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, overview = EXCLUDED.overview,
		    poster_path = EXCLUDED.poster_path, backdrop_path = EXCLUDED.backdrop_path,
		    genres = EXCLUDED.genres, tagline = EXCLUDED.tagline,
		    release_date = EXCLUDED.release_date, runtime_mins = EXCLUDED.runtime_mins,
		    vote_average = EXCLUDED.vote_average, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Overview,
		movie.PosterPath,
		movie.BackdropPath,
		movie.Genres,
		movie.Tagline,
		movie.ReleaseDate,
		movie.RuntimeMins,
		movie.VoteAverage,
		movie.CreatedAt,
		movie.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to upsert movie",
			zap.Error(err),
			zap.String("movie_id", movie.ID.String()),
			zap.String("title", movie.Title),
		)
		return fmt.Errorf("upsert movie %s: %w", movie.ID.String(), err)
	}

	return nil
}

func (r *movieRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Movie, error) {
	query := `
		SELECT id, title, overview, poster_path, backdrop_path, genres, tagline,
		       release_date, runtime_mins, vote_average, created_at, updated_at
		FROM movies
		WHERE id = $1
	`

	var movie entity.Movie
	err := r.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Overview,
		&movie.PosterPath,
		&movie.BackdropPath,
		&movie.Genres,
		&movie.Tagline,
		&movie.ReleaseDate,
		&movie.RuntimeMins,
		&movie.VoteAverage,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find movie by ID",
			zap.Error(err),
			zap.String("movie_id", id.String()),
		)
		return nil, fmt.Errorf("find movie by ID %s: %w", id.String(), err)
	}

	return &movie, nil
}

func (r *movieRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Movie, error) {
	query := `
		SELECT id, title, overview, poster_path, backdrop_path, genres, tagline,
		       release_date, runtime_mins, vote_average, created_at, updated_at
		FROM movies
		WHERE id = ANY($1)
		ORDER BY title
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find movies by IDs", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("find movies by IDs: %w", err)
	}
	defer rows.Close()

	var movies []*entity.Movie
	for rows.Next() {
		var movie entity.Movie
		err := rows.Scan(
			&movie.ID,
			&movie.Title,
			&movie.Overview,
			&movie.PosterPath,
			&movie.BackdropPath,
			&movie.Genres,
			&movie.Tagline,
			&movie.ReleaseDate,
			&movie.RuntimeMins,
			&movie.VoteAverage,
			&movie.CreatedAt,
			&movie.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan movie row", zap.Error(err))
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		movies = append(movies, &movie)
	}

	return movies, nil
}
