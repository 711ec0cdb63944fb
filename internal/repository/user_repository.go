package repository

import (
	"context"
	"errors"
	"time"

	"movie_recommendation/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IUserRepository interface {
	GetFavorite(ctx context.Context, userId int64, movieId int64) (*model.FavoriteMovie, error)
	AddFavorite(ctx context.Context, favorite *model.FavoriteMovie) error
	RemoveFavorite(ctx context.Context, userId int64, favoriteId int64) (bool, error)
	GetUserFavorites(ctx context.Context, userId int64, skip int, limit int) ([]model.FavoriteMovie, int64, error)
	GetAllUserFavorites(ctx context.Context, userId int64) ([]model.FavoriteMovie, error)
	GetUserFavoriteMovieIds(ctx context.Context, userId int64) ([]int64, error)
	UpsertRating(ctx context.Context, rating *model.UserRating) (*model.UserRating, error)
	GetUserRatings(ctx context.Context, userId int64, skip int, limit int) ([]model.UserRating, int64, error)
	GetUserRatingsAtLeast(ctx context.Context, userId int64, minRating int) ([]model.UserRating, error)
	GetWatchlistItem(ctx context.Context, userId int64, movieId int64) (*model.Watchlist, error)
	AddToWatchlist(ctx context.Context, item *model.Watchlist) error
	RemoveFromWatchlist(ctx context.Context, userId int64, itemId int64) (bool, error)
	GetUserWatchlist(ctx context.Context, userId int64, skip int, limit int) ([]model.Watchlist, int64, error)
	GetUserMovieStates(ctx context.Context, userId int64, movieIds []int64) (map[int64]model.UserMovieState, error)
	GetSimilarFavoriteUsers(ctx context.Context, userId int64, movieIds []int64, limit int) ([]SharedFavorites, error)
	GetMostFavoritedMovieIds(ctx context.Context, userIds []int64, excludeMovieIds []int64, limit int) ([]FavoriteScore, error)
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

//------------------------------------------
//------------------------------------------

type SharedFavorites struct {
	UserId int64 `gorm:"column:userId"`
	Shared int64 `gorm:"column:shared"`
}

type FavoriteScore struct {
	MovieId int64 `gorm:"column:movieId"`
	Score   int64 `gorm:"column:score"`
}

//------------------------------------------
//------------------------------------------

func (r *UserRepository) GetFavorite(ctx context.Context, userId int64, movieId int64) (*model.FavoriteMovie, error) {
	var result model.FavoriteMovie
	err := r.db.WithContext(ctx).
		Where("\"userId\" = ? AND \"movieId\" = ?", userId, movieId).
		First(&result).
		Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *UserRepository) AddFavorite(ctx context.Context, favorite *model.FavoriteMovie) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(favorite).
		Error
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, userId int64, favoriteId int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND \"userId\" = ?", favoriteId, userId).
		Delete(&model.FavoriteMovie{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) GetUserFavorites(ctx context.Context, userId int64, skip int, limit int) ([]model.FavoriteMovie, int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.FavoriteMovie{}).Where("\"userId\" = ?", userId)
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	result := []model.FavoriteMovie{}
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("\"userId\" = ?", userId).
		Order("\"createdAt\" DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&result).
		Error
	return result, count, err
}

func (r *UserRepository) GetAllUserFavorites(ctx context.Context, userId int64) ([]model.FavoriteMovie, error) {
	result := []model.FavoriteMovie{}
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("\"userId\" = ?", userId).
		Order("\"createdAt\" DESC, id DESC").
		Find(&result).
		Error
	return result, err
}

func (r *UserRepository) GetUserFavoriteMovieIds(ctx context.Context, userId int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.WithContext(ctx).
		Model(&model.FavoriteMovie{}).
		Where("\"userId\" = ?", userId).
		Pluck("movieId", &ids).
		Error
	return ids, err
}

//------------------------------------------
//------------------------------------------

// UpsertRating keeps one rating per user and movie, a second submission overwrites the first.
func (r *UserRepository) UpsertRating(ctx context.Context, rating *model.UserRating) (*model.UserRating, error) {
	now := time.Now().UTC()
	row := *rating
	row.Id = 0
	row.CreatedAt = now
	row.UpdatedAt = now
	row.Movie = model.Movie{}

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "userId"}, {Name: "movieId"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "updatedAt"}),
		}).
		Create(&row).
		Error
	if err != nil {
		return nil, err
	}

	var result model.UserRating
	err = r.db.WithContext(ctx).
		Preload("Movie").
		Where("\"userId\" = ? AND \"movieId\" = ?", rating.UserId, rating.MovieId).
		First(&result).
		Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *UserRepository) GetUserRatings(ctx context.Context, userId int64, skip int, limit int) ([]model.UserRating, int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.UserRating{}).Where("\"userId\" = ?", userId)
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	result := []model.UserRating{}
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("\"userId\" = ?", userId).
		Order("\"createdAt\" DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&result).
		Error
	return result, count, err
}

func (r *UserRepository) GetUserRatingsAtLeast(ctx context.Context, userId int64, minRating int) ([]model.UserRating, error) {
	result := []model.UserRating{}
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("\"userId\" = ? AND rating >= ?", userId, minRating).
		Order("\"createdAt\" DESC, id DESC").
		Find(&result).
		Error
	return result, err
}

//------------------------------------------
//------------------------------------------

func (r *UserRepository) GetWatchlistItem(ctx context.Context, userId int64, movieId int64) (*model.Watchlist, error) {
	var result model.Watchlist
	err := r.db.WithContext(ctx).
		Where("\"userId\" = ? AND \"movieId\" = ?", userId, movieId).
		First(&result).
		Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *UserRepository) AddToWatchlist(ctx context.Context, item *model.Watchlist) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(item).
		Error
}

func (r *UserRepository) RemoveFromWatchlist(ctx context.Context, userId int64, itemId int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND \"userId\" = ?", itemId, userId).
		Delete(&model.Watchlist{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) GetUserWatchlist(ctx context.Context, userId int64, skip int, limit int) ([]model.Watchlist, int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Watchlist{}).Where("\"userId\" = ?", userId)
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	result := []model.Watchlist{}
	err := r.db.WithContext(ctx).
		Preload("Movie").
		Where("\"userId\" = ?", userId).
		Order("\"createdAt\" DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&result).
		Error
	return result, count, err
}

//------------------------------------------
//------------------------------------------

func (r *UserRepository) GetUserMovieStates(ctx context.Context, userId int64, movieIds []int64) (map[int64]model.UserMovieState, error) {
	states := make(map[int64]model.UserMovieState, len(movieIds))
	if len(movieIds) == 0 {
		return states, nil
	}

	var favoriteIds []int64
	err := r.db.WithContext(ctx).
		Model(&model.FavoriteMovie{}).
		Where("\"userId\" = ? AND \"movieId\" IN ?", userId, movieIds).
		Pluck("movieId", &favoriteIds).
		Error
	if err != nil {
		return nil, err
	}
	for _, id := range favoriteIds {
		states[id] = model.UserMovieState{IsFavorite: true}
	}

	var ratings []model.UserRating
	err = r.db.WithContext(ctx).
		Where("\"userId\" = ? AND \"movieId\" IN ?", userId, movieIds).
		Find(&ratings).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	for _, rating := range ratings {
		s := states[rating.MovieId]
		s.UserRating = &model.UserRatingBrief{Rating: rating.Rating, Review: rating.Review}
		states[rating.MovieId] = s
	}
	return states, nil
}

//------------------------------------------
//------------------------------------------

// GetSimilarFavoriteUsers ranks other users by how many of movieIds they favorited.
func (r *UserRepository) GetSimilarFavoriteUsers(ctx context.Context, userId int64, movieIds []int64, limit int) ([]SharedFavorites, error) {
	result := []SharedFavorites{}
	if len(movieIds) == 0 || limit <= 0 {
		return result, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.FavoriteMovie{}).
		Select("\"userId\", COUNT(*) AS shared").
		Where("\"movieId\" IN ? AND \"userId\" <> ?", movieIds, userId).
		Group("userId").
		Order("shared DESC, \"userId\" ASC").
		Limit(limit).
		Scan(&result).
		Error
	return result, err
}

// GetMostFavoritedMovieIds ranks movies favorited by userIds, skipping excludeMovieIds.
func (r *UserRepository) GetMostFavoritedMovieIds(ctx context.Context, userIds []int64, excludeMovieIds []int64, limit int) ([]FavoriteScore, error) {
	result := []FavoriteScore{}
	if len(userIds) == 0 || limit <= 0 {
		return result, nil
	}
	q := r.db.WithContext(ctx).
		Model(&model.FavoriteMovie{}).
		Select("\"movieId\", COUNT(*) AS score").
		Where("\"userId\" IN ?", userIds)
	if len(excludeMovieIds) > 0 {
		q = q.Where("\"movieId\" NOT IN ?", excludeMovieIds)
	}
	err := q.
		Group("movieId").
		Order("score DESC, \"movieId\" ASC").
		Limit(limit).
		Scan(&result).
		Error
	return result, err
}
