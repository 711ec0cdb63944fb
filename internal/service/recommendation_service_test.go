package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"movie_recommendation/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreWeights(t *testing.T) {
	a := model.Movie{TmdbId: 1, Genres: model.GenreList{{Id: 28}}}
	b := model.Movie{TmdbId: 2, Genres: model.GenreList{{Id: 28}, {Id: 12}}}

	w := ComputeGenreWeights(
		[]model.FavoriteMovie{{Movie: a}},
		[]model.UserRating{{Rating: 9, Movie: b}},
	)
	assert.Equal(t, 3, w.Weight(28))
	assert.Equal(t, 1, w.Weight(12))
	assert.Equal(t, []int64{28, 12}, TopGenres(w, 3))
}

func TestGenreWeightsCountFavoriteAndRatingTwice(t *testing.T) {
	m := model.Movie{TmdbId: 1, Genres: model.GenreList{{Id: 18}}}
	w := ComputeGenreWeights([]model.FavoriteMovie{{Movie: m}}, []model.UserRating{{Rating: 8, Movie: m}})
	assert.Equal(t, 3, w.Weight(18))
}

func TestTopGenresTiesKeepFirstSeenOrder(t *testing.T) {
	w := ComputeGenreWeights([]model.FavoriteMovie{
		{Movie: model.Movie{Genres: model.GenreList{{Id: 35}, {Id: 18}}}},
		{Movie: model.Movie{Genres: model.GenreList{{Id: 99}, {Id: 27}}}},
	}, nil)

	assert.Equal(t, []int64{35, 18, 99}, TopGenres(w, 3))
	assert.Equal(t, 4, w.Len())
}

func TestRecommendationsPopularityFallbackWithoutSignals(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.seedMovie(t, 1, 9, 10)
	env.seedMovie(t, 2, 5, 80)
	env.seedMovie(t, 3, 7, 80)
	env.seedMovie(t, 4, 6, 40)
	low := env.seedMovie(t, 5, 8, 1, 28)
	env.rate(t, 1, low, 6)

	movies, err := env.recommendationService().GetPersonalizedRecommendations(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 4}, tmdbIds(movies))
	assert.Equal(t, int64(0), env.calls.Load())
}

func TestRecommendationsGenreMatchExcludesFavorites(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	fav := env.seedMovie(t, 100, 9.9, 99, 28)
	env.seedMovie(t, 1, 6, 10, 28)
	env.seedMovie(t, 2, 8, 10, 28, 35)
	env.seedMovie(t, 3, 9, 90, 35)
	env.seedMovie(t, 4, 7, 10, 12, 28)
	env.seedMovie(t, 5, 5, 10, 28)
	env.favorite(t, 1, fav)

	movies, err := env.recommendationService().GetPersonalizedRecommendations(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 1, 5}, tmdbIds(movies))
	assert.Equal(t, int64(0), env.calls.Load())
}

func TestRecommendationsDiscoverWhenFewLocalMatches(t *testing.T) {
	var discoverCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		discoverCalls.Add(1)
		assert.Equal(t, "28", r.URL.Query().Get("with_genres"))
		writeJson(w, catalogPage{Page: 1, Results: []catalogItem{
			{Id: 201, Title: "d1", VoteAverage: 8.5, GenreIds: []int64{28}},
			{Id: 2, Title: "local dup", VoteAverage: 8, GenreIds: []int64{28}},
			{Id: 202, Title: "d2", VoteAverage: 8.1, GenreIds: []int64{28}},
		}})
	})
	mux.HandleFunc("/movie/popular", listingHandler(catalogPage{Page: 1}))
	env := newTestEnv(t, mux)
	ctx := context.Background()

	fav := env.seedMovie(t, 100, 9, 1, 28)
	env.seedMovie(t, 2, 8, 5, 28)
	env.seedMovie(t, 3, 7, 50, 35)
	env.favorite(t, 1, fav)

	movies, err := env.recommendationService().GetPersonalizedRecommendations(ctx, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(1), discoverCalls.Load())
	assert.LessOrEqual(t, len(movies), 6)
	require.GreaterOrEqual(t, len(movies), 3)
	assert.Equal(t, []int64{2, 201, 202}, tmdbIds(movies)[:3])
	assertUniqueTmdbIds(t, movies)
}

func TestRecommendationsPadWithPopularity(t *testing.T) {
	env := newTestEnv(t, listingHandler(catalogPage{Page: 1}))
	ctx := context.Background()
	env.settings.DisableCatalogFallback = true

	fav := env.seedMovie(t, 100, 9, 1, 28)
	env.seedMovie(t, 1, 8, 5, 28)
	env.seedMovie(t, 2, 7, 50, 35)
	env.seedMovie(t, 3, 6, 40, 18)
	env.favorite(t, 1, fav)

	movies, err := env.recommendationService().GetPersonalizedRecommendations(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, tmdbIds(movies))
	assert.Equal(t, int64(0), env.calls.Load())
}

func TestRecommendationsPadSkipsMatchedMovies(t *testing.T) {
	env := newTestEnv(t, listingHandler(catalogPage{Page: 1, Results: []catalogItem{{Id: 900, Title: "upstream"}}}))
	ctx := context.Background()

	fav := env.seedMovie(t, 100, 9, 1, 28)
	env.seedMovie(t, 1, 8, 90, 28)
	env.seedMovie(t, 2, 7, 80, 28)
	env.seedMovie(t, 3, 6, 10, 35)
	env.favorite(t, 1, fav)

	movies, err := env.recommendationService().GetPersonalizedRecommendations(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 100}, tmdbIds(movies))
	assert.Equal(t, int64(0), env.calls.Load(), "local inventory fills the padding")
}

func TestRecommendationsNeverExceedLimitAndDedup(t *testing.T) {
	env := newTestEnv(t, listingHandler(catalogPage{Page: 1, Results: []catalogItem{
		{Id: 1, Title: "dup of local", Popularity: 3},
		{Id: 50, Title: "a", Popularity: 2},
		{Id: 50, Title: "a again", Popularity: 2},
		{Id: 51, Title: "b", Popularity: 1},
		{Id: 52, Title: "c", Popularity: 1},
	}}))
	ctx := context.Background()
	env.seedMovie(t, 1, 5, 100)

	movies, err := env.recommendationService().GetPersonalizedRecommendations(ctx, 9, 3)
	require.NoError(t, err)
	assert.Len(t, movies, 3)
	assertUniqueTmdbIds(t, movies)
	assert.Equal(t, int64(1), movies[0].TmdbId)
}

func TestRecommendationsAreCachedPerUser(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.settings.DisableCatalogFallback = true
	env.seedMovie(t, 1, 5, 10)
	svc := env.recommendationService()

	first, err := svc.GetPersonalizedRecommendations(ctx, 1, 5)
	require.NoError(t, err)
	env.seedMovie(t, 2, 5, 99)

	second, err := svc.GetPersonalizedRecommendations(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, tmdbIds(first), tmdbIds(second))

	other, err := svc.GetPersonalizedRecommendations(ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, tmdbIds(other))

	truncated, err := svc.GetPersonalizedRecommendations(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, tmdbIds(truncated))
}

func TestRecommendationsUnavailableWithEmptyStore(t *testing.T) {
	env := newTestEnv(t, statusHandler(http.StatusInternalServerError))

	movies, err := env.recommendationService().GetPersonalizedRecommendations(context.Background(), 1, 10)
	assert.Nil(t, movies)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	_, ok := env.cache.GetRaw(context.Background(), recommendationsCacheKey(1))
	assert.False(t, ok)
}

func TestRecommendationsDegradeToLocalMovies(t *testing.T) {
	env := newTestEnv(t, statusHandler(http.StatusInternalServerError))
	ctx := context.Background()
	env.seedMovie(t, 1, 5, 10)

	movies, err := env.recommendationService().GetPersonalizedRecommendations(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, tmdbIds(movies))

	_, ok := env.cache.GetRaw(ctx, recommendationsCacheKey(1))
	assert.False(t, ok, "degraded lists are not cached")
}

func TestSimilarMovies(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 10, "title": "base", "similar": {"page": 1, "results": [
			{"id": 11, "title": "s1", "genre_ids": [18]},
			{"id": 12, "title": "s2"},
			{"id": 13, "title": "s3"}
		]}}`))
	}))
	ctx := context.Background()
	base := env.seedMovie(t, 10, 5, 5)
	svc := env.recommendationService()

	unknown, err := svc.GetSimilarMovies(ctx, 9999, 5)
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, int64(0), env.calls.Load())

	similar, err := svc.GetSimilarMovies(ctx, base.Id, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, tmdbIds(similar))

	again, err := svc.GetSimilarMovies(ctx, base.Id, 2)
	require.NoError(t, err)
	assert.Equal(t, tmdbIds(similar), tmdbIds(again))
	assert.Equal(t, int64(1), env.calls.Load())
}

func TestSimilarMoviesNonPositiveLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	base := env.seedMovie(t, 10, 5, 5)
	svc := env.recommendationService()

	for _, limit := range []int{0, -1} {
		similar, err := svc.GetSimilarMovies(ctx, base.Id, limit)
		require.NoError(t, err)
		assert.Empty(t, similar)
	}
	assert.Equal(t, int64(0), env.calls.Load())
	assert.Empty(t, truncateMovies([]model.Movie{{TmdbId: 1}}, -1))
}

func TestMergeMoviesDedupByTmdbId(t *testing.T) {
	a := []model.Movie{{Id: 1, TmdbId: 10}, {Id: 2, TmdbId: 20}}
	b := []model.Movie{{Id: 3, TmdbId: 20}, {Id: 4, TmdbId: 30}}

	assert.Equal(t, []int64{10, 20, 30}, tmdbIds(MergeMovies(a, b)))
}

func assertUniqueTmdbIds(t *testing.T, movies []model.Movie) {
	t.Helper()
	seen := map[int64]bool{}
	for _, m := range movies {
		assert.False(t, seen[m.TmdbId], "duplicate tmdb id %d", m.TmdbId)
		seen[m.TmdbId] = true
	}
}
