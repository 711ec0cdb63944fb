package service

import (
	"context"

	"movie_recommendation/configs"
	"movie_recommendation/internal/repository"
	"movie_recommendation/model"

	"github.com/rs/zerolog"
)

type ICollaborativeService interface {
	CollaborativeRecommend(ctx context.Context, userId int64, limit int) ([]model.Movie, error)
}

type CollaborativeService struct {
	movieRepo repository.IMovieRepository
	userRepo  repository.IUserRepository
	settings  func() configs.DbConfigData
	logger    zerolog.Logger
}

func NewCollaborativeService(
	movieRepo repository.IMovieRepository,
	userRepo repository.IUserRepository,
	settings func() configs.DbConfigData,
	logger zerolog.Logger,
) *CollaborativeService {
	if settings == nil {
		settings = configs.GetDbConfigs
	}
	return &CollaborativeService{
		movieRepo: movieRepo,
		userRepo:  userRepo,
		settings:  settings,
		logger:    logger.With().Str("component", "collaborative").Logger(),
	}
}

// CollaborativeRecommend ranks the favorites of the users sharing the most
// favorites with userId. Local store only, recomputed on every call.
func (s *CollaborativeService) CollaborativeRecommend(ctx context.Context, userId int64, limit int) ([]model.Movie, error) {
	if limit <= 0 {
		return []model.Movie{}, nil
	}
	favoriteIds, err := s.userRepo.GetUserFavoriteMovieIds(ctx, userId)
	if err != nil {
		return nil, err
	}
	if len(favoriteIds) == 0 {
		return []model.Movie{}, nil
	}

	similarUsers, err := s.userRepo.GetSimilarFavoriteUsers(ctx, userId, favoriteIds, s.settings().SimilarUsersLimit)
	if err != nil {
		return nil, err
	}
	if len(similarUsers) == 0 {
		return []model.Movie{}, nil
	}
	userIds := make([]int64, len(similarUsers))
	for i, u := range similarUsers {
		userIds[i] = u.UserId
	}

	scores, err := s.userRepo.GetMostFavoritedMovieIds(ctx, userIds, favoriteIds, limit)
	if err != nil {
		return nil, err
	}
	movieIds := make([]int64, len(scores))
	for i, sc := range scores {
		movieIds[i] = sc.MovieId
	}

	s.logger.Debug().Int64("userId", userId).Int("similarUsers", len(userIds)).Int("candidates", len(movieIds)).Msg("collaborative recommendations")
	return s.movieRepo.GetMoviesByIds(ctx, movieIds)
}
