package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movie_recommendation/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

type ICatalogService interface {
	GetTrending(ctx context.Context, window string, page int) (*model.CatalogListResponse, error)
	GetPopular(ctx context.Context, page int) (*model.CatalogListResponse, error)
	GetTopRated(ctx context.Context, page int) (*model.CatalogListResponse, error)
	GetMovieDetails(ctx context.Context, tmdbId int64) (*model.CatalogMovieDetails, error)
	SearchMovies(ctx context.Context, query string, page int) (*model.CatalogListResponse, error)
	DiscoverMovies(ctx context.Context, filters DiscoverFilters) (*model.CatalogListResponse, error)
	GetGenres(ctx context.Context) (*model.CatalogGenresResponse, error)
	ImageUrl(path string, size string) string
}

type CatalogConfig struct {
	ApiKey            string
	BaseUrl           string
	ImageBaseUrl      string
	RequestTimeout    time.Duration
	MaxAttempts       int
	InitialBackoff    time.Duration
	RequestsPerSecond float64
	// BreakerFailures consecutive failed calls open the breaker for BreakerTimeout.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		BaseUrl:         "https://api.themoviedb.org/3",
		ImageBaseUrl:    "https://image.tmdb.org/t/p",
		RequestTimeout:  10 * time.Second,
		MaxAttempts:     3,
		InitialBackoff:  500 * time.Millisecond,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

type CatalogService struct {
	config     CatalogConfig
	httpClient *http.Client
	cache      ICacheService
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     zerolog.Logger
}

// NewCatalogService builds the single upstream client shared by every request.
func NewCatalogService(config CatalogConfig, cache ICacheService, logger zerolog.Logger) *CatalogService {
	def := DefaultCatalogConfig()
	if config.BaseUrl == "" {
		config.BaseUrl = def.BaseUrl
	}
	if config.ImageBaseUrl == "" {
		config.ImageBaseUrl = def.ImageBaseUrl
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = def.RequestTimeout
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = def.InitialBackoff
	}
	if config.BreakerFailures == 0 {
		config.BreakerFailures = def.BreakerFailures
	}
	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = def.BreakerTimeout
	}
	config.BaseUrl = strings.TrimRight(config.BaseUrl, "/")

	limit := rate.Inf
	burst := 1
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
		burst = max(1, int(config.RequestsPerSecond))
	}

	s := &CatalogService{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		cache:      cache,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			var statusErr *upstreamStatusError
			return err == nil || (errors.As(err, &statusErr) && !statusErr.retryable())
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			s.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("catalog breaker state changed")
		},
	})
	return s
}

//------------------------------------------
//------------------------------------------

type DiscoverFilters struct {
	GenreIds     []int64
	SortBy       string
	MinVoteCount int
	Page         int
}

func (f DiscoverFilters) values() url.Values {
	params := url.Values{}
	if len(f.GenreIds) > 0 {
		params.Set("with_genres", int64SliceToString(f.GenreIds, ","))
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "vote_average.desc"
	}
	params.Set("sort_by", sortBy)
	if f.MinVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(f.MinVoteCount))
	}
	params.Set("page", strconv.Itoa(max(1, f.Page)))
	return params
}

type upstreamStatusError struct {
	Endpoint string
	Code     int
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("catalog %s responded with status %d", e.Endpoint, e.Code)
}

func (e *upstreamStatusError) retryable() bool {
	return e.Code >= http.StatusInternalServerError
}

func isUpstreamNotFound(err error) bool {
	var statusErr *upstreamStatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}

//------------------------------------------
//------------------------------------------

func (s *CatalogService) GetTrending(ctx context.Context, window string, page int) (*model.CatalogListResponse, error) {
	params := url.Values{"page": {strconv.Itoa(page)}}
	var result model.CatalogListResponse
	err := s.getCached(ctx, trendingCacheKey(window, page), s.cache.TTL().Trending, "trending/movie/"+window, params, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *CatalogService) GetPopular(ctx context.Context, page int) (*model.CatalogListResponse, error) {
	params := url.Values{"page": {strconv.Itoa(page)}}
	var result model.CatalogListResponse
	err := s.getCached(ctx, popularCacheKey(page), s.cache.TTL().Trending, "movie/popular", params, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *CatalogService) GetTopRated(ctx context.Context, page int) (*model.CatalogListResponse, error) {
	params := url.Values{"page": {strconv.Itoa(page)}}
	var result model.CatalogListResponse
	err := s.getCached(ctx, topRatedCacheKey(page), s.cache.TTL().Trending, "movie/top_rated", params, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMovieDetails fetches the movie with credits, videos, similar and recommendations
// in one request. An upstream 404 is reported as ErrMovieNotFound.
func (s *CatalogService) GetMovieDetails(ctx context.Context, tmdbId int64) (*model.CatalogMovieDetails, error) {
	params := url.Values{"append_to_response": {"credits,videos,similar,recommendations"}}
	var result model.CatalogMovieDetails
	endpoint := "movie/" + strconv.FormatInt(tmdbId, 10)
	err := s.getCached(ctx, movieDetailsCacheKey(tmdbId), s.cache.TTL().MovieDetails, endpoint, params, &result)
	if err != nil {
		if isUpstreamNotFound(err) {
			return nil, fmt.Errorf("%w: tmdb id %d", ErrMovieNotFound, tmdbId)
		}
		return nil, err
	}
	return &result, nil
}

func (s *CatalogService) SearchMovies(ctx context.Context, query string, page int) (*model.CatalogListResponse, error) {
	params := url.Values{
		"query":         {query},
		"page":          {strconv.Itoa(page)},
		"include_adult": {"false"},
	}
	var result model.CatalogListResponse
	err := s.getCached(ctx, searchCacheKey(query, page), s.cache.TTL().Search, "search/movie", params, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DiscoverMovies is never cached.
func (s *CatalogService) DiscoverMovies(ctx context.Context, filters DiscoverFilters) (*model.CatalogListResponse, error) {
	body, err := s.fetch(ctx, "discover/movie", filters.values())
	if err != nil {
		return nil, err
	}
	var result model.CatalogListResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode discover/movie: %w", ErrCatalogUnavailable, err)
	}
	return &result, nil
}

func (s *CatalogService) GetGenres(ctx context.Context) (*model.CatalogGenresResponse, error) {
	var result model.CatalogGenresResponse
	err := s.getCached(ctx, genresCacheKey, s.cache.TTL().Genres, "genre/movie/list", url.Values{}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ImageUrl joins the image base, the size token and the path with single slashes.
func (s *CatalogService) ImageUrl(path string, size string) string {
	return composeImageUrl(s.config.ImageBaseUrl, path, size)
}

func composeImageUrl(base string, path string, size string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + "/" + strings.Trim(size, "/") + path
}

//------------------------------------------
//------------------------------------------

// getCached serves key from cache, otherwise fetches the endpoint and caches the raw body.
func (s *CatalogService) getCached(ctx context.Context, key string, ttl time.Duration, endpoint string, params url.Values, dest interface{}) error {
	if raw, ok := s.cache.GetRaw(ctx, key); ok {
		if err := json.Unmarshal(raw, dest); err == nil {
			return nil
		}
		s.logger.Warn().Str("key", key).Msg("cached catalog payload is undecodable, refetching")
	}

	body, err := s.fetch(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrCatalogUnavailable, endpoint, err)
	}
	s.cache.SetRaw(ctx, key, body, ttl)
	return nil
}

// fetch performs one logical upstream call. Every failure is wrapped in ErrCatalogUnavailable.
func (s *CatalogService) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if s.config.ApiKey == "" {
		s.logger.Error().Str("endpoint", endpoint).Msg("catalog api key is not configured")
		return nil, fmt.Errorf("%w: api key is not configured", ErrCatalogUnavailable)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", s.config.ApiKey)
	target := s.config.BaseUrl + "/" + endpoint + "?" + q.Encode()

	body, err := s.breaker.Execute(func() ([]byte, error) {
		return s.doWithRetry(ctx, endpoint, target)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("catalog call failed")
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return body, nil
}

func (s *CatalogService) doWithRetry(ctx context.Context, endpoint string, target string) ([]byte, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = s.config.InitialBackoff
	expBackoff.Multiplier = 2
	expBackoff.RandomizationFactor = 0.1
	expBackoff.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(s.config.MaxAttempts-1)), ctx)

	attempt := 0
	return backoff.RetryWithData(func() ([]byte, error) {
		attempt++
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		body, err := s.doRequest(ctx, endpoint, target)
		if err == nil {
			return body, nil
		}
		var statusErr *upstreamStatusError
		if errors.As(err, &statusErr) && !statusErr.retryable() {
			return nil, backoff.Permanent(err)
		}
		s.logger.Debug().Err(err).Str("endpoint", endpoint).Int("attempt", attempt).Msg("retrying catalog call")
		return nil, err
	}, policy)
}

func (s *CatalogService) doRequest(ctx context.Context, endpoint string, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, stripApiKey(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &upstreamStatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// stripApiKey keeps the credential out of logged transport errors.
func stripApiKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
			q := u.Query()
			q.Del("api_key")
			u.RawQuery = q.Encode()
			urlErr.URL = u.String()
		}
	}
	return err
}
