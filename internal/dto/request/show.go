package request

// MovieInput carries the movie payload supplied by the admin when
// scheduling shows. Catalog ingestion from the metadata provider happens
// upstream; by the time it reaches this API the payload is complete.
type MovieInput struct {
	ID           string   `json:"id" validate:"required,uuid4"`
	Title        string   `json:"title" validate:"required,max=200"`
	Overview     string   `json:"overview"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	Genres       []string `json:"genres"`
	Tagline      string   `json:"tagline"`
	ReleaseDate  string   `json:"release_date"`
	RuntimeMins  int      `json:"runtime_mins"`
	VoteAverage  float64  `json:"vote_average"`
}

type ShowTimesInput struct {
	Date  string   `json:"date" validate:"required"`
	Times []string `json:"times" validate:"required,min=1"`
}

type AddShowRequest struct {
	Movie     MovieInput       `json:"movie" validate:"required"`
	ShowTimes []ShowTimesInput `json:"show_times" validate:"required,min=1,dive"`
	Price     float64          `json:"price" validate:"required,gt=0"`
}
