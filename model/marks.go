package model

import "time"

type FavoriteMovie struct {
	Id        int64     `gorm:"column:id;autoIncrement;primaryKey;" json:"id"`
	UserId    int64     `gorm:"column:userId;not null;uniqueIndex:FavoriteMovie_userId_movieId_key;" json:"userId"`
	MovieId   int64     `gorm:"column:movieId;not null;uniqueIndex:FavoriteMovie_userId_movieId_key;index:FavoriteMovie_movieId_idx;" json:"movieId"`
	TmdbId    int64     `gorm:"column:tmdbId;not null;index:FavoriteMovie_tmdbId_idx;" json:"tmdbId"`
	CreatedAt time.Time `gorm:"column:createdAt;not null;" json:"createdAt"`

	Movie Movie `gorm:"foreignKey:MovieId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"movie"`
}

func (FavoriteMovie) TableName() string {
	return "FavoriteMovie"
}

//------------------------------------------
//------------------------------------------

const (
	MinRating = 1
	MaxRating = 10
)

type UserRating struct {
	Id        int64     `gorm:"column:id;autoIncrement;primaryKey;" json:"id"`
	UserId    int64     `gorm:"column:userId;not null;uniqueIndex:UserRating_userId_movieId_key;" json:"userId"`
	MovieId   int64     `gorm:"column:movieId;not null;uniqueIndex:UserRating_userId_movieId_key;" json:"movieId"`
	Rating    int       `gorm:"column:rating;not null;check:UserRating_rating_range,rating >= 1 AND rating <= 10;" json:"rating"`
	Review    string    `gorm:"column:review;type:text;not null;default:'';" json:"review"`
	CreatedAt time.Time `gorm:"column:createdAt;not null;" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt;not null;" json:"updatedAt"`

	Movie Movie `gorm:"foreignKey:MovieId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"movie"`
}

func (UserRating) TableName() string {
	return "UserRating"
}

//------------------------------------------
//------------------------------------------

type Watchlist struct {
	Id        int64     `gorm:"column:id;autoIncrement;primaryKey;" json:"id"`
	UserId    int64     `gorm:"column:userId;not null;uniqueIndex:Watchlist_userId_movieId_key;" json:"userId"`
	MovieId   int64     `gorm:"column:movieId;not null;uniqueIndex:Watchlist_userId_movieId_key;" json:"movieId"`
	TmdbId    int64     `gorm:"column:tmdbId;not null;index:Watchlist_tmdbId_idx;" json:"tmdbId"`
	CreatedAt time.Time `gorm:"column:createdAt;not null;" json:"createdAt"`

	Movie Movie `gorm:"foreignKey:MovieId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"movie"`
}

func (Watchlist) TableName() string {
	return "Watchlist"
}

//------------------------------------------
//------------------------------------------

// UserMovieState decorates a movie view for the requesting user.
type UserMovieState struct {
	IsFavorite bool             `json:"isFavorite"`
	UserRating *UserRatingBrief `json:"userRating"`
}

type UserRatingBrief struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}
