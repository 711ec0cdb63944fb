package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movie_recommendation/configs"
	errorHandler "movie_recommendation/pkg/error"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ICacheStore is the ttl key-value backend, redis in production and badger in memory otherwise.
type ICacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type ICacheService interface {
	GetRaw(ctx context.Context, key string) ([]byte, bool)
	SetRaw(ctx context.Context, key string, value []byte, ttl time.Duration)
	GetJson(ctx context.Context, key string, dest interface{}) bool
	SetJson(ctx context.Context, key string, value interface{}, ttl time.Duration)
	TTL() configs.CacheTTLConfigs
}

type CacheService struct {
	store  ICacheStore
	ttl    configs.CacheTTLConfigs
	logger zerolog.Logger
}

func NewCacheService(store ICacheStore, ttl configs.CacheTTLConfigs, logger zerolog.Logger) *CacheService {
	return &CacheService{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

const (
	trendingCachePrefix        = "trending_movies:"
	popularCachePrefix         = "popular_movies:"
	topRatedCachePrefix        = "top_rated_movies:"
	searchCachePrefix          = "search_movies:"
	movieDetailsCachePrefix    = "movie_details:"
	similarMoviesCachePrefix   = "similar_movies:"
	recommendationsCachePrefix = "recommendations_user:"
	moviePageCachePrefix       = "movie_page:"
	genresCacheKey             = "movie_genres"
)

//------------------------------------------
//------------------------------------------

func trendingCacheKey(window string, page int) string {
	return trendingCachePrefix + window + ":" + strconv.Itoa(page)
}

func popularCacheKey(page int) string {
	return popularCachePrefix + strconv.Itoa(page)
}

func topRatedCacheKey(page int) string {
	return topRatedCachePrefix + strconv.Itoa(page)
}

// searchCacheKey escapes the query so no query can collide with another page.
func searchCacheKey(query string, page int) string {
	return searchCachePrefix + url.QueryEscape(query) + ":" + strconv.Itoa(page)
}

func movieDetailsCacheKey(tmdbId int64) string {
	return movieDetailsCachePrefix + strconv.FormatInt(tmdbId, 10)
}

func similarMoviesCacheKey(tmdbId int64) string {
	return similarMoviesCachePrefix + strconv.FormatInt(tmdbId, 10)
}

func recommendationsCacheKey(userId int64) string {
	return recommendationsCachePrefix + strconv.FormatInt(userId, 10)
}

// moviePageCacheKey namespaces assembled pages apart from the raw catalog payloads.
func moviePageCacheKey(catalogKey string) string {
	return moviePageCachePrefix + catalogKey
}

//------------------------------------------
//------------------------------------------

func (c *CacheService) TTL() configs.CacheTTLConfigs {
	return c.ttl
}

// GetRaw treats a backend failure as a miss; the caller falls through to the source.
func (c *CacheService) GetRaw(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		errorMessage := fmt.Sprintf("Cache Error on reading %s: %v", key, err)
		errorHandler.SaveError(errorMessage, err)
		return nil, false
	}
	if !ok {
		c.logger.Debug().Str("key", key).Msg("cache miss")
		return nil, false
	}
	c.logger.Debug().Str("key", key).Msg("cache hit")
	return value, true
}

func (c *CacheService) SetRaw(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		errorMessage := fmt.Sprintf("Cache Error on saving %s: %v", key, err)
		errorHandler.SaveError(errorMessage, err)
	}
}

// GetJson decodes the cached value into dest; an undecodable entry counts as a miss.
func (c *CacheService) GetJson(ctx context.Context, key string, dest interface{}) bool {
	value, ok := c.GetRaw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(value, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		return false
	}
	return true
}

func (c *CacheService) SetJson(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		errorMessage := fmt.Sprintf("Cache Error on encoding %s: %v", key, err)
		errorHandler.SaveError(errorMessage, err)
		return
	}
	c.SetRaw(ctx, key, data, ttl)
}

//------------------------------------------
//------------------------------------------

func int64SliceToString(nums []int64, delimiter string) string {
	strNums := make([]string, len(nums))
	for i, num := range nums {
		strNums[i] = strconv.FormatInt(num, 10)
	}
	return strings.Join(strNums, delimiter)
}
