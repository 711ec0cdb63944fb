package model

import (
	"bytes"

	"github.com/goccy/go-json"
)

// CatalogMovie is one movie item as returned by the external catalog.
// Listing endpoints fill GenreIds, detail endpoints fill Genres.
type CatalogMovie struct {
	Id               int64      `json:"id"`
	Title            string     `json:"title"`
	OriginalTitle    string     `json:"original_title"`
	Overview         string     `json:"overview"`
	PosterPath       *string    `json:"poster_path"`
	BackdropPath     *string    `json:"backdrop_path"`
	ReleaseDate      string     `json:"release_date"`
	Runtime          *int       `json:"runtime"`
	VoteAverage      float64    `json:"vote_average"`
	VoteCount        int        `json:"vote_count"`
	Popularity       float64    `json:"popularity"`
	GenreIds         GenreField `json:"genre_ids"`
	Genres           GenreField `json:"genres"`
	OriginalLanguage string     `json:"original_language"`
	Adult            bool       `json:"adult"`
}

type CatalogListResponse struct {
	Page         int            `json:"page"`
	Results      []CatalogMovie `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// CatalogMovieDetails is the combined detail payload (credits, videos, similar and
// recommendations appended to the same response).
type CatalogMovieDetails struct {
	CatalogMovie
	Credits         json.RawMessage     `json:"credits,omitempty"`
	Videos          json.RawMessage     `json:"videos,omitempty"`
	Similar         CatalogListResponse `json:"similar"`
	Recommendations CatalogListResponse `json:"recommendations"`
}

type CatalogGenresResponse struct {
	Genres []Genre `json:"genres"`
}

//------------------------------------------
//------------------------------------------

type GenreShape int

const (
	GenreShapeEmpty GenreShape = iota
	GenreShapeIds
	GenreShapeObjects
	GenreShapeInvalid
)

// GenreField classifies the incoming genre payload once at decode time.
// Unexpected shapes never fail the surrounding record; they decode as GenreShapeInvalid.
type GenreField struct {
	Shape   GenreShape
	Ids     []int64
	Objects []Genre
}

func (g *GenreField) UnmarshalJSON(data []byte) error {
	*g = GenreField{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		g.Shape = GenreShapeInvalid
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	first := bytes.TrimSpace(items[0])
	switch {
	case len(first) > 0 && first[0] == '{':
		var objects []Genre
		if err := json.Unmarshal(data, &objects); err != nil {
			g.Shape = GenreShapeInvalid
			return nil
		}
		g.Shape = GenreShapeObjects
		g.Objects = objects
	default:
		var ids []int64
		if err := json.Unmarshal(data, &ids); err != nil {
			g.Shape = GenreShapeInvalid
			return nil
		}
		g.Shape = GenreShapeIds
		g.Ids = ids
	}
	return nil
}

func (g GenreField) MarshalJSON() ([]byte, error) {
	switch g.Shape {
	case GenreShapeIds:
		return json.Marshal(g.Ids)
	case GenreShapeObjects:
		return json.Marshal(g.Objects)
	default:
		return []byte("[]"), nil
	}
}

// Normalize returns the genre list in the local record shape.
func (g GenreField) Normalize() GenreList {
	switch g.Shape {
	case GenreShapeIds:
		out := make(GenreList, 0, len(g.Ids))
		for _, id := range g.Ids {
			if id != 0 {
				out = append(out, Genre{Id: id})
			}
		}
		return out
	case GenreShapeObjects:
		out := make(GenreList, 0, len(g.Objects))
		for _, o := range g.Objects {
			if o.Id != 0 {
				out = append(out, Genre{Id: o.Id, Name: o.Name})
			}
		}
		return out
	default:
		return GenreList{}
	}
}
