package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"movie_recommendation/configs"
	"movie_recommendation/db"
	"movie_recommendation/db/memory"
	"movie_recommendation/internal/repository"
	"movie_recommendation/model"
	"movie_recommendation/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db         *gorm.DB
	movieRepo  *repository.MovieRepository
	userRepo   *repository.UserRepository
	cache      *CacheService
	catalog    *CatalogService
	reconciler *ReconcileService
	server     *httptest.Server
	calls      *atomic.Int64
	settings   configs.DbConfigData
}

// newTestEnv wires the real components against sqlite, an in-memory cache and a fake catalog.
func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, handler, func(c *CatalogConfig) {})
}

func newTestEnvWithConfig(t *testing.T, handler http.Handler, configure func(c *CatalogConfig)) *testEnv {
	t.Helper()
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	env := &testEnv{calls: &atomic.Int64{}, settings: configs.DefaultDbConfigs()}

	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.calls.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(env.server.Close)

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	env.db = gdb

	store, err := memory.NewStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	log := logger.Nop()
	config := CatalogConfig{
		ApiKey:         "test-key",
		BaseUrl:        env.server.URL,
		ImageBaseUrl:   "https://image.tmdb.org/t/p",
		InitialBackoff: time.Millisecond,
		MaxAttempts:    3,
	}
	configure(&config)

	env.movieRepo = repository.NewMovieRepository(gdb)
	env.userRepo = repository.NewUserRepository(gdb)
	env.cache = NewCacheService(store, configs.DefaultCacheTTL(), log)
	env.catalog = NewCatalogService(config, env.cache, log)
	env.reconciler = NewReconcileService(env.movieRepo, env.catalog, log)
	return env
}

func (e *testEnv) getSettings() configs.DbConfigData {
	return e.settings
}

func (e *testEnv) recommendationService() *RecommendationService {
	return NewRecommendationService(e.movieRepo, e.userRepo, e.catalog, e.reconciler, e.cache, e.getSettings, logger.Nop())
}

func (e *testEnv) seedMovie(t *testing.T, tmdbId int64, voteAverage float64, popularity float64, genreIds ...int64) *model.Movie {
	t.Helper()
	genres := model.GenreList{}
	for _, id := range genreIds {
		genres = append(genres, model.Genre{Id: id})
	}
	m, err := e.movieRepo.UpsertMovie(context.Background(), &model.Movie{
		TmdbId:      tmdbId,
		Title:       "movie",
		VoteAverage: voteAverage,
		Popularity:  popularity,
		Genres:      genres,
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) favorite(t *testing.T, userId int64, m *model.Movie) {
	t.Helper()
	require.NoError(t, e.userRepo.AddFavorite(context.Background(), &model.FavoriteMovie{
		UserId: userId, MovieId: m.Id, TmdbId: m.TmdbId, CreatedAt: time.Now(),
	}))
}

func (e *testEnv) rate(t *testing.T, userId int64, m *model.Movie, rating int) {
	t.Helper()
	_, err := e.userRepo.UpsertRating(context.Background(), &model.UserRating{UserId: userId, MovieId: m.Id, Rating: rating})
	require.NoError(t, err)
}

//------------------------------------------
//------------------------------------------

type catalogItem struct {
	Id          int64   `json:"id"`
	Title       string  `json:"title"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	GenreIds    []int64 `json:"genre_ids"`
	ReleaseDate string  `json:"release_date,omitempty"`
}

type catalogPage struct {
	Page         int           `json:"page"`
	Results      []catalogItem `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

func writeJson(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func listingHandler(page catalogPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, page)
	}
}

func statusHandler(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

func tmdbIds(movies []model.Movie) []int64 {
	ids := make([]int64, len(movies))
	for i, m := range movies {
		ids[i] = m.TmdbId
	}
	return ids
}
