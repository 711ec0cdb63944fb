package model

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type Movie struct {
	Id               int64      `gorm:"column:id;autoIncrement;primaryKey;" json:"id"`
	TmdbId           int64      `gorm:"column:tmdbId;not null;uniqueIndex:Movie_tmdbId_key;" json:"tmdbId"`
	Title            string     `gorm:"column:title;type:varchar(255);not null;" json:"title"`
	OriginalTitle    string     `gorm:"column:originalTitle;type:varchar(255);not null;default:'';" json:"originalTitle"`
	Overview         string     `gorm:"column:overview;type:text;not null;default:'';" json:"overview"`
	PosterPath       string     `gorm:"column:posterPath;type:varchar(255);not null;default:'';" json:"posterPath"`
	BackdropPath     string     `gorm:"column:backdropPath;type:varchar(255);not null;default:'';" json:"backdropPath"`
	ReleaseDate      *time.Time `gorm:"column:releaseDate;index:Movie_releaseDate_idx;" json:"releaseDate"`
	Runtime          *int       `gorm:"column:runtime;" json:"runtime"`
	VoteAverage      float64    `gorm:"column:voteAverage;not null;default:0;index:Movie_voteAverage_idx;" json:"voteAverage"`
	VoteCount        int        `gorm:"column:voteCount;not null;default:0;" json:"voteCount"`
	Popularity       float64    `gorm:"column:popularity;not null;default:0;index:Movie_popularity_idx;" json:"popularity"`
	Genres           GenreList  `gorm:"column:genres;not null;" json:"genres"`
	OriginalLanguage string     `gorm:"column:originalLanguage;type:varchar(10);not null;default:'';" json:"originalLanguage"`
	Adult            bool       `gorm:"column:adult;not null;default:false;" json:"adult"`
	CreatedAt        time.Time  `gorm:"column:createdAt;not null;" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"column:updatedAt;not null;" json:"updatedAt"`
}

func (Movie) TableName() string {
	return "Movie"
}

// HasAnyGenre reports whether the movie carries at least one of genreIds.
func (m *Movie) HasAnyGenre(genreIds []int64) bool {
	for _, g := range m.Genres {
		for _, id := range genreIds {
			if g.Id == id {
				return true
			}
		}
	}
	return false
}

//------------------------------------------
//------------------------------------------

type Genre struct {
	Id   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// GenreList is stored as a json document column.
type GenreList []Genre

func (g GenreList) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (g *GenreList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*g = GenreList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported genres column type")
	}
	if len(data) == 0 {
		*g = GenreList{}
		return nil
	}
	return json.Unmarshal(data, g)
}

func (GenreList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

//------------------------------------------
//------------------------------------------

// MoviePage is a bounded list plus the pagination metadata of whatever source produced it.
type MoviePage struct {
	Results      []Movie `json:"results"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"totalPages"`
	TotalResults int     `json:"count"`
}
