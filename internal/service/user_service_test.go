package service

import (
	"context"
	"net/http"
	"testing"

	"movie_recommendation/model"
	"movie_recommendation/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(env *testEnv) *UserService {
	return NewUserService(env.userRepo, env.reconciler, logger.Nop())
}

func TestRateMovieRejectsOutOfRange(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := newUserService(env)
	env.seedMovie(t, 1, 5, 5)

	for _, rating := range []int{0, 11, -3} {
		_, err := svc.RateMovie(context.Background(), 1, model.RateMovieReq{TmdbId: 1, Rating: rating})
		assert.ErrorIs(t, err, ErrValidation, "rating %d", rating)
	}
	assert.Equal(t, int64(0), env.calls.Load())
}

func TestRateMovieOverwritesPreviousRating(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := newUserService(env)
	ctx := context.Background()
	env.seedMovie(t, 1, 5, 5)

	_, err := svc.RateMovie(ctx, 1, model.RateMovieReq{TmdbId: 1, Rating: 3, Review: "no"})
	require.NoError(t, err)
	rating, err := svc.RateMovie(ctx, 1, model.RateMovieReq{TmdbId: 1, Rating: 10, Review: "  yes  "})
	require.NoError(t, err)
	assert.Equal(t, 10, rating.Rating)
	assert.Equal(t, "yes", rating.Review)

	ratings, count, err := svc.ListRatings(ctx, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, ratings, 1)
	assert.Equal(t, 10, ratings[0].Rating)
}

func TestAddFavoriteRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := newUserService(env)
	ctx := context.Background()
	env.seedMovie(t, 1, 5, 5)

	fav, err := svc.AddFavorite(ctx, 1, model.MovieMarkReq{TmdbId: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), fav.Movie.TmdbId)

	_, err = svc.AddFavorite(ctx, 1, model.MovieMarkReq{TmdbId: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddFavorite(ctx, 2, model.MovieMarkReq{TmdbId: 1})
	assert.NoError(t, err)
}

func TestAddFavoriteValidatesBeforeUpstream(t *testing.T) {
	env := newTestEnv(t, statusHandler(http.StatusNotFound))
	svc := newUserService(env)
	ctx := context.Background()

	_, err := svc.AddFavorite(ctx, 1, model.MovieMarkReq{TmdbId: 0})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, int64(0), env.calls.Load())

	_, err = svc.AddFavorite(ctx, 1, model.MovieMarkReq{TmdbId: 12345})
	assert.ErrorIs(t, err, ErrMovieNotFound)
	assert.Equal(t, int64(1), env.calls.Load())
}

func TestRemoveMarksOnlyForOwner(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := newUserService(env)
	ctx := context.Background()
	env.seedMovie(t, 1, 5, 5)

	fav, err := svc.AddFavorite(ctx, 1, model.MovieMarkReq{TmdbId: 1})
	require.NoError(t, err)
	item, err := svc.AddToWatchlist(ctx, 1, model.MovieMarkReq{TmdbId: 1})
	require.NoError(t, err)

	_, err = svc.AddToWatchlist(ctx, 1, model.MovieMarkReq{TmdbId: 1})
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, svc.RemoveFavorite(ctx, 2, fav.Id), ErrMarkNotFound)
	assert.ErrorIs(t, svc.RemoveFromWatchlist(ctx, 2, item.Id), ErrMarkNotFound)
	assert.NoError(t, svc.RemoveFavorite(ctx, 1, fav.Id))
	assert.NoError(t, svc.RemoveFromWatchlist(ctx, 1, item.Id))
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, 1, fav.Id), ErrMarkNotFound)

	favorites, count, err := svc.ListFavorites(ctx, 1, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, favorites)
}

func TestListWatchlistPagination(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := newUserService(env)
	ctx := context.Background()
	for i := int64(1); i <= 5; i++ {
		env.seedMovie(t, i, 5, 5)
		_, err := svc.AddToWatchlist(ctx, 1, model.MovieMarkReq{TmdbId: i})
		require.NoError(t, err)
	}

	page, count, err := svc.ListWatchlist(ctx, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.Len(t, page, 2)

	last, _, err := svc.ListWatchlist(ctx, 1, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, pageSize int
		skip, limit    int
	}{
		{page: 1, pageSize: 0, skip: 0, limit: DefaultPageSize},
		{page: 0, pageSize: 10, skip: 0, limit: 10},
		{page: 3, pageSize: 10, skip: 20, limit: 10},
		{page: 2, pageSize: 1000, skip: MaxPageSize, limit: MaxPageSize},
	}
	for _, tt := range tests {
		skip, limit := pagination(tt.page, tt.pageSize)
		assert.Equal(t, tt.skip, skip)
		assert.Equal(t, tt.limit, limit)
	}
}
