package model

type MovieMarkReq struct {
	TmdbId int64 `json:"tmdbId" validate:"required,gt=0"`
}

type RateMovieReq struct {
	TmdbId int64  `json:"tmdbId" validate:"required,gt=0"`
	Rating int    `json:"rating" validate:"min=1,max=10"`
	Review string `json:"review" validate:"max=5000"`
}

type SearchMoviesReq struct {
	Query string `validate:"required"`
	Page  int    `validate:"min=1,max=500"`
}

type ListingReq struct {
	TimeWindow string `validate:"omitempty,oneof=day week"`
	Page       int    `validate:"min=1,max=500"`
}
