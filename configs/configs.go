package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ConfigStruct struct {
	Port                  string
	AccessTokenSecret     string
	RedisUrl              string
	RedisPassword         string
	MongodbDatabaseUrl    string
	MongodbDatabaseName   string
	DbUrl                 string
	CorsAllowedOrigins    []string
	SentryDns             string
	SentryRelease         string
	PrintErrors           bool
	LogLevel              string
	TmdbApiKey            string
	TmdbBaseUrl           string
	TmdbImageBaseUrl      string
	TmdbRequestsPerSecond float64
	CacheTTL              CacheTTLConfigs
}

// CacheTTLConfigs holds the lifetime of each cache namespace.
type CacheTTLConfigs struct {
	Trending        time.Duration
	Search          time.Duration
	MovieDetails    time.Duration
	Genres          time.Duration
	Recommendations time.Duration
}

const (
	defaultTmdbBaseUrl      = "https://api.themoviedb.org/3"
	defaultTmdbImageBaseUrl = "https://image.tmdb.org/t/p"
	defaultTmdbRps          = 40
)

func DefaultCacheTTL() CacheTTLConfigs {
	return CacheTTLConfigs{
		Trending:        time.Hour,
		Search:          30 * time.Minute,
		MovieDetails:    6 * time.Hour,
		Genres:          7 * 24 * time.Hour,
		Recommendations: time.Hour,
	}
}

var configs = ConfigStruct{}

func GetConfigs() ConfigStruct {
	return configs
}

func LoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
	configs = readEnv()
}

func readEnv() ConfigStruct {
	c := ConfigStruct{}
	c.Port = getEnv("PORT", "3000")
	c.DbUrl = os.Getenv("POSTGRES_DATABASE_URL")
	c.AccessTokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	c.RedisUrl = os.Getenv("REDIS_URL")
	c.RedisPassword = os.Getenv("REDIS_PASSWORD")
	c.MongodbDatabaseUrl = os.Getenv("MONGODB_DATABASE_URL")
	c.MongodbDatabaseName = os.Getenv("MONGODB_DATABASE_NAME")
	c.CorsAllowedOrigins = strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), "---")
	for i := range c.CorsAllowedOrigins {
		c.CorsAllowedOrigins[i] = strings.TrimSpace(c.CorsAllowedOrigins[i])
	}
	c.SentryDns = os.Getenv("SENTRY_DNS")
	c.SentryRelease = os.Getenv("SENTRY_RELEASE")
	c.PrintErrors = os.Getenv("PRINT_ERRORS") == "true"
	c.LogLevel = getEnv("LOG_LEVEL", "info")

	c.TmdbApiKey = os.Getenv("TMDB_API_KEY")
	c.TmdbBaseUrl = getEnv("TMDB_BASE_URL", defaultTmdbBaseUrl)
	c.TmdbImageBaseUrl = getEnv("TMDB_IMAGE_BASE_URL", defaultTmdbImageBaseUrl)
	c.TmdbRequestsPerSecond = defaultTmdbRps
	if rps, err := strconv.ParseFloat(os.Getenv("TMDB_REQUESTS_PER_SECOND"), 64); err == nil && rps > 0 {
		c.TmdbRequestsPerSecond = rps
	}

	ttl := DefaultCacheTTL()
	ttl.Trending = getDuration("CACHE_TTL_TRENDING", ttl.Trending)
	ttl.Search = getDuration("CACHE_TTL_SEARCH", ttl.Search)
	ttl.MovieDetails = getDuration("CACHE_TTL_DETAILS", ttl.MovieDetails)
	ttl.Genres = getDuration("CACHE_TTL_GENRES", ttl.Genres)
	ttl.Recommendations = getDuration("CACHE_TTL_RECOMMENDATIONS", ttl.Recommendations)
	c.CacheTTL = ttl
	return c
}

func getEnv(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid duration for %s: %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
