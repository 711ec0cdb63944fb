package repository

import (
	"context"

	"movie_recommendation/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IMovieRepository interface {
	GetMovieById(ctx context.Context, id int64) (*model.Movie, error)
	GetMovieByTmdbId(ctx context.Context, tmdbId int64) (*model.Movie, error)
	GetMoviesByIds(ctx context.Context, ids []int64) ([]model.Movie, error)
	UpsertMovie(ctx context.Context, movie *model.Movie) (*model.Movie, error)
	QueryMovies(ctx context.Context, filter MovieFilter, order MovieOrder, limit int) ([]model.Movie, error)
	ScanMovies(ctx context.Context, filter MovieFilter, order MovieOrder, batchSize int, fn func(batch []model.Movie) bool) error
}

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

//------------------------------------------
//------------------------------------------

type MovieOrder int

const (
	// OrderByPopularity sorts by popularity desc, voteAverage desc.
	OrderByPopularity MovieOrder = iota
	// OrderByVoteAverage sorts by voteAverage desc, popularity desc.
	OrderByVoteAverage
)

func (o MovieOrder) clause() string {
	if o == OrderByVoteAverage {
		return "\"voteAverage\" DESC, popularity DESC, id ASC"
	}
	return "popularity DESC, \"voteAverage\" DESC, id ASC"
}

type MovieFilter struct {
	ExcludeIds []int64
}

func (f MovieFilter) apply(q *gorm.DB) *gorm.DB {
	if len(f.ExcludeIds) > 0 {
		q = q.Where("id NOT IN ?", f.ExcludeIds)
	}
	return q
}

// columns overwritten when an existing tmdbId is reconciled again
var movieUpsertColumns = []string{
	"title", "originalTitle", "overview", "posterPath", "backdropPath", "releaseDate",
	"voteAverage", "voteCount", "popularity", "genres", "originalLanguage", "adult", "updatedAt",
}

//------------------------------------------
//------------------------------------------

func (r *MovieRepository) GetMovieById(ctx context.Context, id int64) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&movie).
		Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *MovieRepository) GetMovieByTmdbId(ctx context.Context, tmdbId int64) (*model.Movie, error) {
	var movie model.Movie
	err := r.db.WithContext(ctx).
		Where("\"tmdbId\" = ?", tmdbId).
		First(&movie).
		Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetMoviesByIds keeps the order of ids; missing ids are skipped.
func (r *MovieRepository) GetMoviesByIds(ctx context.Context, ids []int64) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}
	var movies []model.Movie
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&movies).
		Error
	if err != nil {
		return nil, err
	}

	byId := make(map[int64]model.Movie, len(movies))
	for _, m := range movies {
		byId[m.Id] = m
	}
	result := make([]model.Movie, 0, len(movies))
	for _, id := range ids {
		if m, ok := byId[id]; ok {
			result = append(result, m)
		}
	}
	return result, nil
}

// UpsertMovie inserts the movie or updates the row holding the same tmdbId in place.
// A nil Runtime leaves the stored runtime untouched.
func (r *MovieRepository) UpsertMovie(ctx context.Context, movie *model.Movie) (*model.Movie, error) {
	columns := movieUpsertColumns
	if movie.Runtime != nil {
		columns = append(append([]string{}, movieUpsertColumns...), "runtime")
	}
	row := *movie
	row.Id = 0
	if row.Genres == nil {
		row.Genres = model.GenreList{}
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tmdbId"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(&row).
		Error
	if err != nil {
		return nil, err
	}

	return r.GetMovieByTmdbId(ctx, movie.TmdbId)
}

func (r *MovieRepository) QueryMovies(ctx context.Context, filter MovieFilter, order MovieOrder, limit int) ([]model.Movie, error) {
	movies := []model.Movie{}
	if limit <= 0 {
		return movies, nil
	}
	err := filter.apply(r.db.WithContext(ctx).Model(&model.Movie{})).
		Order(order.clause()).
		Limit(limit).
		Find(&movies).
		Error
	return movies, err
}

// ScanMovies pages through the filtered movies in order until fn returns false
// or the table is exhausted.
func (r *MovieRepository) ScanMovies(ctx context.Context, filter MovieFilter, order MovieOrder, batchSize int, fn func(batch []model.Movie) bool) error {
	if batchSize <= 0 {
		batchSize = 100
	}
	for offset := 0; ; offset += batchSize {
		var batch []model.Movie
		err := filter.apply(r.db.WithContext(ctx).Model(&model.Movie{})).
			Order(order.clause()).
			Offset(offset).
			Limit(batchSize).
			Find(&batch).
			Error
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if !fn(batch) {
			return nil
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}
