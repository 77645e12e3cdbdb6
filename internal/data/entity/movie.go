package entity

import "time"

type Movie struct {
	Base
	Title        string    `db:"title"`
	Overview     string    `db:"overview"`
	PosterPath   string    `db:"poster_path"`
	BackdropPath string    `db:"backdrop_path"`
	Genres       []string  `db:"genres"`
	Tagline      string    `db:"tagline"`
	ReleaseDate  time.Time `db:"release_date"`
	RuntimeMins  int       `db:"runtime_mins"`
	VoteAverage  float64   `db:"vote_average"`
}
