package service

import (
	"context"
	"testing"
	"time"

	"movie_recommendation/configs"
	"movie_recommendation/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, assert.AnError
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return assert.AnError
}

func TestCacheKeysAreDeterministic(t *testing.T) {
	assert.Equal(t, "trending_movies:week:2", trendingCacheKey("week", 2))
	assert.Equal(t, "search_movies:star+wars:1", searchCacheKey("star wars", 1))
	assert.NotEqual(t, searchCacheKey("a:1", 2), searchCacheKey("a", 1))
	assert.Equal(t, "movie_details:550", movieDetailsCacheKey(550))
	assert.Equal(t, "recommendations_user:7", recommendationsCacheKey(7))
	assert.Equal(t, "movie_page:popular_movies:1", moviePageCacheKey(popularCacheKey(1)))
}

func TestCacheJsonRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	var missing []int
	assert.False(t, env.cache.GetJson(ctx, "nope", &missing))

	env.cache.SetJson(ctx, "ids", []int{3, 1, 2}, time.Minute)
	var ids []int
	require.True(t, env.cache.GetJson(ctx, "ids", &ids))
	assert.Equal(t, []int{3, 1, 2}, ids)

	env.cache.SetRaw(ctx, "broken", []byte("{"), time.Minute)
	var v map[string]int
	assert.False(t, env.cache.GetJson(ctx, "broken", &v))
}

func TestCacheBackendFailureIsAMiss(t *testing.T) {
	c := NewCacheService(failingStore{}, configs.DefaultCacheTTL(), logger.Nop())
	ctx := context.Background()

	c.SetJson(ctx, "k", 1, time.Minute)
	_, ok := c.GetRaw(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, configs.DefaultCacheTTL(), c.TTL())
}
