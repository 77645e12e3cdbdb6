package response

import (
	"time"

	"ticket-booking/internal/data/entity"
)

type MovieResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Tagline      string   `json:"tagline,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	RuntimeMins  int      `json:"runtime_mins,omitempty"`
	VoteAverage  float64  `json:"vote_average,omitempty"`
}

type ShowTimeResponse struct {
	ShowID   string    `json:"show_id"`
	StartsAt time.Time `json:"starts_at"`
	Price    float64   `json:"price"`
}

// MovieShowsResponse groups a movie's upcoming shows by date, the shape
// the seat-selection UI consumes.
type MovieShowsResponse struct {
	Movie     MovieResponse                 `json:"movie"`
	ShowDates map[string][]ShowTimeResponse `json:"show_dates"`
}

type ShowResponse struct {
	ID       string    `json:"id"`
	MovieID  string    `json:"movie_id"`
	StartsAt time.Time `json:"starts_at"`
	Price    float64   `json:"price"`
}

type DashboardResponse struct {
	TotalBookings int64          `json:"total_bookings"`
	TotalRevenue  float64        `json:"total_revenue"`
	TotalUsers    int64          `json:"total_users"`
	ActiveShows   []ShowResponse `json:"active_shows"`
}

// Helper converters
func MovieToResponse(movie *entity.Movie) MovieResponse {
	resp := MovieResponse{
		ID:           movie.ID.String(),
		Title:        movie.Title,
		Overview:     movie.Overview,
		PosterPath:   movie.PosterPath,
		BackdropPath: movie.BackdropPath,
		Genres:       movie.Genres,
		Tagline:      movie.Tagline,
		RuntimeMins:  movie.RuntimeMins,
		VoteAverage:  movie.VoteAverage,
	}
	if !movie.ReleaseDate.IsZero() {
		resp.ReleaseDate = movie.ReleaseDate.Format("2006-01-02")
	}
	return resp
}

func ShowToResponse(show *entity.Show) ShowResponse {
	return ShowResponse{
		ID:       show.ID.String(),
		MovieID:  show.MovieID.String(),
		StartsAt: show.StartsAt,
		Price:    show.Price,
	}
}
