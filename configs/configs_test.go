package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadEnvDefaults(t *testing.T) {
	t.Setenv("TMDB_BASE_URL", "")
	t.Setenv("CACHE_TTL_SEARCH", "")
	t.Setenv("TMDB_REQUESTS_PER_SECOND", "")

	c := readEnv()
	assert.Equal(t, defaultTmdbBaseUrl, c.TmdbBaseUrl)
	assert.Equal(t, defaultTmdbImageBaseUrl, c.TmdbImageBaseUrl)
	assert.Equal(t, float64(defaultTmdbRps), c.TmdbRequestsPerSecond)
	assert.Equal(t, DefaultCacheTTL(), c.CacheTTL)
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "secret")
	t.Setenv("CACHE_TTL_SEARCH", "5m")
	t.Setenv("CACHE_TTL_GENRES", "not-a-duration")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example --- https://b.example")

	c := readEnv()
	assert.Equal(t, "secret", c.TmdbApiKey)
	assert.Equal(t, 5*time.Minute, c.CacheTTL.Search)
	assert.Equal(t, DefaultCacheTTL().Genres, c.CacheTTL.Genres)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CorsAllowedOrigins)
}

func TestDbConfigsWithDefaults(t *testing.T) {
	setDbConfigs(DbConfigData{DisableCatalogFallback: true, HighRatingThreshold: 42})
	t.Cleanup(func() { setDbConfigs(DefaultDbConfigs()) })

	got := GetDbConfigs()
	assert.True(t, got.DisableCatalogFallback)
	assert.Equal(t, 7, got.HighRatingThreshold)
	assert.Equal(t, 100, got.DiscoverMinVoteCount)
	assert.Equal(t, 10, got.SimilarUsersLimit)
}
