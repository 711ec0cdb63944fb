package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"movie_recommendation/internal/repository"
	"movie_recommendation/model"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type IMovieService interface {
	GetTrendingMovies(ctx context.Context, timeWindow string, page int) (*model.MoviePage, error)
	GetPopularMovies(ctx context.Context, page int) (*model.MoviePage, error)
	GetTopRatedMovies(ctx context.Context, page int) (*model.MoviePage, error)
	SearchMovies(ctx context.Context, query string, page int) (*model.MoviePage, error)
	GetMovieDetails(ctx context.Context, movieId int64) (*model.Movie, error)
	GetGenres(ctx context.Context) ([]model.Genre, error)
	ImageUrl(path string, size string) string
}

type MovieService struct {
	movieRepo  repository.IMovieRepository
	catalog    ICatalogService
	reconciler IReconcileService
	cache      ICacheService
	timeout    time.Duration
	logger     zerolog.Logger
}

func NewMovieService(movieRepo repository.IMovieRepository, catalog ICatalogService, reconciler IReconcileService, cache ICacheService, logger zerolog.Logger) *MovieService {
	return &MovieService{
		movieRepo:  movieRepo,
		catalog:    catalog,
		reconciler: reconciler,
		cache:      cache,
		timeout:    time.Duration(30) * time.Second,
		logger:     logger.With().Str("component", "movies").Logger(),
	}
}

const DefaultTimeWindow = "week"

//------------------------------------------
//------------------------------------------

func (m *MovieService) GetTrendingMovies(ctx context.Context, timeWindow string, page int) (*model.MoviePage, error) {
	if timeWindow == "" {
		timeWindow = DefaultTimeWindow
	}
	if err := validateStruct(model.ListingReq{TimeWindow: timeWindow, Page: page}); err != nil {
		return nil, err
	}
	return m.listPage(ctx, trendingCacheKey(timeWindow, page), m.cache.TTL().Trending, func(ctx context.Context) (*model.CatalogListResponse, error) {
		return m.catalog.GetTrending(ctx, timeWindow, page)
	})
}

func (m *MovieService) GetPopularMovies(ctx context.Context, page int) (*model.MoviePage, error) {
	if err := validateStruct(model.ListingReq{Page: page}); err != nil {
		return nil, err
	}
	return m.listPage(ctx, popularCacheKey(page), m.cache.TTL().Trending, func(ctx context.Context) (*model.CatalogListResponse, error) {
		return m.catalog.GetPopular(ctx, page)
	})
}

func (m *MovieService) GetTopRatedMovies(ctx context.Context, page int) (*model.MoviePage, error) {
	if err := validateStruct(model.ListingReq{Page: page}); err != nil {
		return nil, err
	}
	return m.listPage(ctx, topRatedCacheKey(page), m.cache.TTL().Trending, func(ctx context.Context) (*model.CatalogListResponse, error) {
		return m.catalog.GetTopRated(ctx, page)
	})
}

// SearchMovies rejects an empty query before touching the cache or the catalog.
func (m *MovieService) SearchMovies(ctx context.Context, query string, page int) (*model.MoviePage, error) {
	query = strings.TrimSpace(query)
	if err := validateStruct(model.SearchMoviesReq{Query: query, Page: page}); err != nil {
		return nil, err
	}
	return m.listPage(ctx, searchCacheKey(query, page), m.cache.TTL().Search, func(ctx context.Context) (*model.CatalogListResponse, error) {
		return m.catalog.SearchMovies(ctx, query, page)
	})
}

func (m *MovieService) GetMovieDetails(ctx context.Context, movieId int64) (*model.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	movie, err := m.movieRepo.GetMovieById(ctx, movieId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return movie, nil
}

func (m *MovieService) GetGenres(ctx context.Context) ([]model.Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	result, err := m.catalog.GetGenres(ctx)
	if err != nil {
		return nil, err
	}
	return result.Genres, nil
}

func (m *MovieService) ImageUrl(path string, size string) string {
	return m.catalog.ImageUrl(path, size)
}

//------------------------------------------
//------------------------------------------

// listPage reconciles one upstream listing into local movies and keeps the
// upstream pagination metadata unchanged.
func (m *MovieService) listPage(
	ctx context.Context,
	catalogKey string,
	ttl time.Duration,
	fetch func(ctx context.Context) (*model.CatalogListResponse, error),
) (*model.MoviePage, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	key := moviePageCacheKey(catalogKey)
	var cached model.MoviePage
	if m.cache.GetJson(ctx, key, &cached) {
		return &cached, nil
	}

	listing, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	movies, err := m.reconciler.ReconcileBatch(ctx, listing.Results)
	if err != nil {
		return nil, err
	}
	result := &model.MoviePage{
		Results:      movies,
		Page:         listing.Page,
		TotalPages:   listing.TotalPages,
		TotalResults: listing.TotalResults,
	}
	m.cache.SetJson(ctx, key, result, ttl)
	return result, nil
}
