package model

import "time"

const (
	PosterSize   = "w500"
	BackdropSize = "w1280"
)

// MovieView is a movie as returned to clients, with image urls and the
// requesting user's marks.
type MovieView struct {
	Movie
	PosterUrl   string           `json:"posterUrl"`
	BackdropUrl string           `json:"backdropUrl"`
	IsFavorite  bool             `json:"isFavorite"`
	UserRating  *UserRatingBrief `json:"userRating"`
}

type FavoriteView struct {
	Id        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Movie     MovieView `json:"movie"`
}

type RatingView struct {
	Id        int64     `json:"id"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Movie     MovieView `json:"movie"`
}

type WatchlistView struct {
	Id        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Movie     MovieView `json:"movie"`
}
