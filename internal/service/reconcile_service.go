package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"movie_recommendation/internal/repository"
	"movie_recommendation/model"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type IReconcileService interface {
	ReconcileOne(ctx context.Context, payload *model.CatalogMovie) (*model.Movie, error)
	ReconcileBatch(ctx context.Context, payloads []model.CatalogMovie) ([]model.Movie, error)
	GetOrFetch(ctx context.Context, tmdbId int64) (*model.Movie, error)
}

type ReconcileService struct {
	movieRepo repository.IMovieRepository
	catalog   ICatalogService
	logger    zerolog.Logger
}

func NewReconcileService(movieRepo repository.IMovieRepository, catalog ICatalogService, logger zerolog.Logger) *ReconcileService {
	return &ReconcileService{
		movieRepo: movieRepo,
		catalog:   catalog,
		logger:    logger.With().Str("component", "reconciler").Logger(),
	}
}

const catalogDateLayout = "2006-01-02"

//------------------------------------------
//------------------------------------------

// ReconcileOne upserts the payload by tmdb id. Malformed fields are left unset.
func (s *ReconcileService) ReconcileOne(ctx context.Context, payload *model.CatalogMovie) (*model.Movie, error) {
	if payload == nil || payload.Id <= 0 {
		return nil, newValidationError("id", "catalog movie without an id")
	}
	movie, err := s.movieRepo.UpsertMovie(ctx, s.toMovie(payload))
	if err != nil {
		return nil, fmt.Errorf("upsert movie %d: %w", payload.Id, err)
	}
	s.logger.Debug().Int64("tmdbId", movie.TmdbId).Int64("id", movie.Id).Msg("movie reconciled")
	return movie, nil
}

// ReconcileBatch keeps the input order. Payloads without an id are skipped.
func (s *ReconcileService) ReconcileBatch(ctx context.Context, payloads []model.CatalogMovie) ([]model.Movie, error) {
	result := make([]model.Movie, 0, len(payloads))
	for i := range payloads {
		if payloads[i].Id <= 0 {
			s.logger.Warn().Int("index", i).Msg("skipping catalog movie without an id")
			continue
		}
		movie, err := s.ReconcileOne(ctx, &payloads[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *movie)
	}
	return result, nil
}

func (s *ReconcileService) GetOrFetch(ctx context.Context, tmdbId int64) (*model.Movie, error) {
	movie, err := s.movieRepo.GetMovieByTmdbId(ctx, tmdbId)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	details, err := s.catalog.GetMovieDetails(ctx, tmdbId)
	if err != nil {
		return nil, err
	}
	return s.ReconcileOne(ctx, &details.CatalogMovie)
}

//------------------------------------------
//------------------------------------------

func (s *ReconcileService) toMovie(payload *model.CatalogMovie) *model.Movie {
	movie := &model.Movie{
		TmdbId:           payload.Id,
		Title:            payload.Title,
		OriginalTitle:    payload.OriginalTitle,
		Overview:         payload.Overview,
		PosterPath:       derefString(payload.PosterPath),
		BackdropPath:     derefString(payload.BackdropPath),
		Runtime:          payload.Runtime,
		VoteAverage:      payload.VoteAverage,
		VoteCount:        payload.VoteCount,
		Popularity:       payload.Popularity,
		Genres:           normalizeGenres(payload),
		OriginalLanguage: payload.OriginalLanguage,
		Adult:            payload.Adult,
	}
	if movie.Title == "" {
		movie.Title = movie.OriginalTitle
	}

	if date := strings.TrimSpace(payload.ReleaseDate); date != "" {
		if t, err := time.Parse(catalogDateLayout, date); err == nil {
			movie.ReleaseDate = &t
		} else {
			s.logger.Debug().Int64("tmdbId", payload.Id).Str("releaseDate", date).Msg("ignoring unparsable release date")
		}
	}
	return movie
}

// normalizeGenres prefers the detail shape and falls back to the listing ids.
func normalizeGenres(payload *model.CatalogMovie) model.GenreList {
	switch payload.Genres.Shape {
	case model.GenreShapeObjects, model.GenreShapeIds:
		return payload.Genres.Normalize()
	}
	return payload.GenreIds.Normalize()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
