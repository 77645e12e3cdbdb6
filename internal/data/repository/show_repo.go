package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"ticket-booking/internal/data/entity"
	"ticket-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ShowRepository interface {
	Create(ctx context.Context, show *entity.Show) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error)
	FindUpcoming(ctx context.Context) ([]*entity.Show, error)
	FindUpcomingByMovie(ctx context.Context, movieID uuid.UUID) ([]*entity.Show, error)

	// Seat map access for the reservation engine
	ReadSeatMap(ctx context.Context, showID uuid.UUID) (entity.SeatMap, int64, error)
	UpdateSeatMapCAS(ctx context.Context, showID uuid.UUID, seatMap entity.SeatMap, expectedVersion int64) (bool, error)
}

type showRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowRepository(db database.PgxIface, log *zap.Logger) ShowRepository {
	return &showRepository{
		db:  db,
		log: log.With(zap.String("repository", "show")),
	}
}

func (r *showRepository) Create(ctx context.Context, show *entity.Show) error {
	seatMapJSON, err := json.Marshal(show.SeatMap)
	if err != nil {
		return fmt.Errorf("marshal seat map: %w", err)
	}

	query := `
		INSERT INTO shows (id, movie_id, starts_at, price, seat_map, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Exec(ctx, query,
		show.ID,
		show.MovieID,
		show.StartsAt,
		show.Price,
		seatMapJSON,
		show.Version,
		show.CreatedAt,
		show.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create show",
			zap.Error(err),
			zap.String("show_id", show.ID.String()),
			zap.String("movie_id", show.MovieID.String()),
		)
		return fmt.Errorf("create show %s: %w", show.ID.String(), err)
	}

	return nil
}

func (r *showRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Show, error) {
	query := `
		SELECT id, movie_id, starts_at, price, seat_map, version, created_at, updated_at
		FROM shows
		WHERE id = $1
	`

	var show entity.Show
	var seatMapJSON []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieID,
		&show.StartsAt,
		&show.Price,
		&seatMapJSON,
		&show.Version,
		&show.CreatedAt,
		&show.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find show by ID",
			zap.Error(err),
			zap.String("show_id", id.String()),
		)
		return nil, fmt.Errorf("find show by ID %s: %w", id.String(), err)
	}

	if err := json.Unmarshal(seatMapJSON, &show.SeatMap); err != nil {
		return nil, fmt.Errorf("unmarshal seat map for show %s: %w", id.String(), err)
	}

	return &show, nil
}

func (r *showRepository) FindUpcoming(ctx context.Context) ([]*entity.Show, error) {
	query := `
		SELECT id, movie_id, starts_at, price, seat_map, version, created_at, updated_at
		FROM shows
		WHERE starts_at >= NOW()
		ORDER BY starts_at
	`

	return r.queryShows(ctx, query)
}

func (r *showRepository) FindUpcomingByMovie(ctx context.Context, movieID uuid.UUID) ([]*entity.Show, error) {
	query := `
		SELECT id, movie_id, starts_at, price, seat_map, version, created_at, updated_at
		FROM shows
		WHERE movie_id = $1 AND starts_at >= NOW()
		ORDER BY starts_at
	`

	return r.queryShows(ctx, query, movieID)
}

func (r *showRepository) queryShows(ctx context.Context, query string, args ...any) ([]*entity.Show, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query shows", zap.Error(err))
		return nil, fmt.Errorf("query shows: %w", err)
	}
	defer rows.Close()

	var shows []*entity.Show
	for rows.Next() {
		var show entity.Show
		var seatMapJSON []byte
		err := rows.Scan(
			&show.ID,
			&show.MovieID,
			&show.StartsAt,
			&show.Price,
			&seatMapJSON,
			&show.Version,
			&show.CreatedAt,
			&show.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan show row", zap.Error(err))
			return nil, fmt.Errorf("scan show row: %w", err)
		}
		if err := json.Unmarshal(seatMapJSON, &show.SeatMap); err != nil {
			return nil, fmt.Errorf("unmarshal seat map for show %s: %w", show.ID.String(), err)
		}
		shows = append(shows, &show)
	}

	return shows, nil
}

func (r *showRepository) ReadSeatMap(ctx context.Context, showID uuid.UUID) (entity.SeatMap, int64, error) {
	query := `SELECT seat_map, version FROM shows WHERE id = $1`

	var seatMapJSON []byte
	var version int64
	err := r.db.QueryRow(ctx, query, showID).Scan(&seatMapJSON, &version)

	if err == pgx.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		r.log.Error("Failed to read seat map",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return nil, 0, fmt.Errorf("read seat map for show %s: %w", showID.String(), err)
	}

	var seatMap entity.SeatMap
	if err := json.Unmarshal(seatMapJSON, &seatMap); err != nil {
		return nil, 0, fmt.Errorf("unmarshal seat map for show %s: %w", showID.String(), err)
	}
	if seatMap == nil {
		seatMap = entity.SeatMap{}
	}

	return seatMap, version, nil
}

// UpdateSeatMapCAS writes the whole seat map iff the version has not moved
// since it was read. Returns false when another writer got there first.
func (r *showRepository) UpdateSeatMapCAS(ctx context.Context, showID uuid.UUID, seatMap entity.SeatMap, expectedVersion int64) (bool, error) {
	seatMapJSON, err := json.Marshal(seatMap)
	if err != nil {
		return false, fmt.Errorf("marshal seat map: %w", err)
	}

	query := `
		UPDATE shows
		SET seat_map = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3
	`

	result, err := r.db.Exec(ctx, query, showID, seatMapJSON, expectedVersion)
	if err != nil {
		r.log.Error("Failed to update seat map",
			zap.Error(err),
			zap.String("show_id", showID.String()),
			zap.Int64("expected_version", expectedVersion),
		)
		return false, fmt.Errorf("update seat map for show %s: %w", showID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}
