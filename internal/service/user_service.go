package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"movie_recommendation/db"
	"movie_recommendation/internal/repository"
	"movie_recommendation/model"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type IUserService interface {
	AddFavorite(ctx context.Context, userId int64, req model.MovieMarkReq) (*model.FavoriteMovie, error)
	RemoveFavorite(ctx context.Context, userId int64, favoriteId int64) error
	ListFavorites(ctx context.Context, userId int64, page int, pageSize int) ([]model.FavoriteMovie, int64, error)
	RateMovie(ctx context.Context, userId int64, req model.RateMovieReq) (*model.UserRating, error)
	ListRatings(ctx context.Context, userId int64, page int, pageSize int) ([]model.UserRating, int64, error)
	AddToWatchlist(ctx context.Context, userId int64, req model.MovieMarkReq) (*model.Watchlist, error)
	RemoveFromWatchlist(ctx context.Context, userId int64, itemId int64) error
	ListWatchlist(ctx context.Context, userId int64, page int, pageSize int) ([]model.Watchlist, int64, error)
	GetUserMovieStates(ctx context.Context, userId int64, movieIds []int64) (map[int64]model.UserMovieState, error)
}

type UserService struct {
	userRepo   repository.IUserRepository
	reconciler IReconcileService
	timeout    time.Duration
	logger     zerolog.Logger
}

func NewUserService(userRepo repository.IUserRepository, reconciler IReconcileService, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		reconciler: reconciler,
		timeout:    time.Duration(15) * time.Second,
		logger:     logger.With().Str("component", "marks").Logger(),
	}
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// pagination turns a 1-based page into skip/limit.
func pagination(page int, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

//------------------------------------------
//------------------------------------------

func (s *UserService) AddFavorite(ctx context.Context, userId int64, req model.MovieMarkReq) (*model.FavoriteMovie, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	movie, err := s.reconciler.GetOrFetch(ctx, req.TmdbId)
	if err != nil {
		return nil, err
	}
	if _, err = s.userRepo.GetFavorite(ctx, userId, movie.Id); err == nil {
		return nil, newValidationError("tmdbId", "movie already in favorites")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	favorite := &model.FavoriteMovie{
		UserId:    userId,
		MovieId:   movie.Id,
		TmdbId:    movie.TmdbId,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.userRepo.AddFavorite(ctx, favorite); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, newValidationError("tmdbId", "movie already in favorites")
		}
		return nil, err
	}
	favorite.Movie = *movie
	s.logger.Info().Int64("userId", userId).Int64("movieId", movie.Id).Msg("favorite added")
	return favorite, nil
}

func (s *UserService) RemoveFavorite(ctx context.Context, userId int64, favoriteId int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	removed, err := s.userRepo.RemoveFavorite(ctx, userId, favoriteId)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMarkNotFound
	}
	return nil
}

func (s *UserService) ListFavorites(ctx context.Context, userId int64, page int, pageSize int) ([]model.FavoriteMovie, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	skip, limit := pagination(page, pageSize)
	return s.userRepo.GetUserFavorites(ctx, userId, skip, limit)
}

//------------------------------------------
//------------------------------------------

// RateMovie keeps one rating per user and movie; rating again overwrites.
func (s *UserService) RateMovie(ctx context.Context, userId int64, req model.RateMovieReq) (*model.UserRating, error) {
	req.Review = strings.TrimSpace(req.Review)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	movie, err := s.reconciler.GetOrFetch(ctx, req.TmdbId)
	if err != nil {
		return nil, err
	}
	return s.userRepo.UpsertRating(ctx, &model.UserRating{
		UserId:  userId,
		MovieId: movie.Id,
		Rating:  req.Rating,
		Review:  req.Review,
	})
}

func (s *UserService) ListRatings(ctx context.Context, userId int64, page int, pageSize int) ([]model.UserRating, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	skip, limit := pagination(page, pageSize)
	return s.userRepo.GetUserRatings(ctx, userId, skip, limit)
}

//------------------------------------------
//------------------------------------------

func (s *UserService) AddToWatchlist(ctx context.Context, userId int64, req model.MovieMarkReq) (*model.Watchlist, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	movie, err := s.reconciler.GetOrFetch(ctx, req.TmdbId)
	if err != nil {
		return nil, err
	}
	if _, err = s.userRepo.GetWatchlistItem(ctx, userId, movie.Id); err == nil {
		return nil, newValidationError("tmdbId", "movie already in watchlist")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.Watchlist{
		UserId:    userId,
		MovieId:   movie.Id,
		TmdbId:    movie.TmdbId,
		CreatedAt: time.Now().UTC(),
	}
	if err = s.userRepo.AddToWatchlist(ctx, item); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, newValidationError("tmdbId", "movie already in watchlist")
		}
		return nil, err
	}
	item.Movie = *movie
	return item, nil
}

func (s *UserService) RemoveFromWatchlist(ctx context.Context, userId int64, itemId int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	removed, err := s.userRepo.RemoveFromWatchlist(ctx, userId, itemId)
	if err != nil {
		return err
	}
	if !removed {
		return ErrMarkNotFound
	}
	return nil
}

func (s *UserService) ListWatchlist(ctx context.Context, userId int64, page int, pageSize int) ([]model.Watchlist, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	skip, limit := pagination(page, pageSize)
	return s.userRepo.GetUserWatchlist(ctx, userId, skip, limit)
}

//------------------------------------------
//------------------------------------------

func (s *UserService) GetUserMovieStates(ctx context.Context, userId int64, movieIds []int64) (map[int64]model.UserMovieState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.userRepo.GetUserMovieStates(ctx, userId, movieIds)
}
