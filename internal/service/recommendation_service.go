package service

import (
	"context"
	"errors"
	"sort"

	"movie_recommendation/configs"
	"movie_recommendation/internal/repository"
	"movie_recommendation/model"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type IRecommendationService interface {
	GetPersonalizedRecommendations(ctx context.Context, userId int64, limit int) ([]model.Movie, error)
	GetSimilarMovies(ctx context.Context, movieId int64, limit int) ([]model.Movie, error)
}

type RecommendationService struct {
	movieRepo  repository.IMovieRepository
	userRepo   repository.IUserRepository
	catalog    ICatalogService
	reconciler IReconcileService
	cache      ICacheService
	settings   func() configs.DbConfigData
	logger     zerolog.Logger
}

func NewRecommendationService(
	movieRepo repository.IMovieRepository,
	userRepo repository.IUserRepository,
	catalog ICatalogService,
	reconciler IReconcileService,
	cache ICacheService,
	settings func() configs.DbConfigData,
	logger zerolog.Logger,
) *RecommendationService {
	if settings == nil {
		settings = configs.GetDbConfigs
	}
	return &RecommendationService{
		movieRepo:  movieRepo,
		userRepo:   userRepo,
		catalog:    catalog,
		reconciler: reconciler,
		cache:      cache,
		settings:   settings,
		logger:     logger.With().Str("component", "recommendation").Logger(),
	}
}

const (
	favoriteGenreWeight   = 2
	highRatingGenreWeight = 1
	topGenresCount        = 3
	scanBatchSize         = 100
)

//------------------------------------------
//------------------------------------------

type recommendationRequest struct {
	userId   int64
	limit    int
	settings configs.DbConfigData
	// degraded is set when an upstream call failed and only local movies were used.
	degraded bool
}

// recommendationStrategy returns done=false to hand the request to the next strategy.
type recommendationStrategy struct {
	name string
	run  func(ctx context.Context, req *recommendationRequest) (movies []model.Movie, done bool, err error)
}

// strategies is the fallback order of a personalized request.
func (s *RecommendationService) strategies() []recommendationStrategy {
	return []recommendationStrategy{
		{name: "cache", run: s.fromCache},
		{name: "genre_match", run: s.fromGenreMatch},
		{name: "popularity", run: s.fromPopularity},
	}
}

func (s *RecommendationService) GetPersonalizedRecommendations(ctx context.Context, userId int64, limit int) ([]model.Movie, error) {
	if limit <= 0 {
		return []model.Movie{}, nil
	}
	req := &recommendationRequest{userId: userId, limit: limit, settings: s.settings()}

	for _, strategy := range s.strategies() {
		movies, done, err := strategy.run(ctx, req)
		if err != nil {
			return nil, err
		}
		if !done {
			continue
		}
		movies = truncateMovies(movies, limit)
		if strategy.name != "cache" && !req.degraded {
			s.cache.SetJson(ctx, recommendationsCacheKey(userId), movies, s.cache.TTL().Recommendations)
		}
		s.logger.Debug().Int64("userId", userId).Str("strategy", strategy.name).Int("count", len(movies)).Msg("recommendations built")
		return movies, nil
	}
	return []model.Movie{}, nil
}

//------------------------------------------
//------------------------------------------

// fromCache ignores empty cached lists so an empty result is rebuilt next time.
func (s *RecommendationService) fromCache(ctx context.Context, req *recommendationRequest) ([]model.Movie, bool, error) {
	var movies []model.Movie
	if s.cache.GetJson(ctx, recommendationsCacheKey(req.userId), &movies) && len(movies) > 0 {
		return movies, true, nil
	}
	return nil, false, nil
}

func (s *RecommendationService) fromGenreMatch(ctx context.Context, req *recommendationRequest) ([]model.Movie, bool, error) {
	favorites, err := s.userRepo.GetAllUserFavorites(ctx, req.userId)
	if err != nil {
		return nil, false, err
	}
	ratings, err := s.userRepo.GetUserRatingsAtLeast(ctx, req.userId, req.settings.HighRatingThreshold)
	if err != nil {
		return nil, false, err
	}
	if len(favorites) == 0 && len(ratings) == 0 {
		return nil, false, nil
	}

	topGenres := TopGenres(ComputeGenreWeights(favorites, ratings), topGenresCount)
	if len(topGenres) == 0 {
		return nil, false, nil
	}

	excludeIds := make([]int64, len(favorites))
	for i := range favorites {
		excludeIds[i] = favorites[i].MovieId
	}

	matches := newMovieCollector(req.limit)
	err = s.movieRepo.ScanMovies(ctx, repository.MovieFilter{ExcludeIds: excludeIds}, repository.OrderByVoteAverage, scanBatchSize,
		func(batch []model.Movie) bool {
			for i := range batch {
				if batch[i].HasAnyGenre(topGenres) {
					matches.add(batch[i])
				}
				if matches.full() {
					return false
				}
			}
			return true
		})
	if err != nil {
		return nil, false, err
	}
	localCount := matches.len()

	var upstreamErr error
	if localCount < req.limit/2 && !req.settings.DisableCatalogFallback {
		discovered, err := s.discoverByGenres(ctx, topGenres, req.settings.DiscoverMinVoteCount)
		if err != nil {
			if !errors.Is(err, ErrCatalogUnavailable) {
				return nil, false, err
			}
			upstreamErr = err
			s.logger.Warn().Err(err).Int64("userId", req.userId).Msg("discover unavailable, keeping local genre matches")
		}
		for i := range discovered {
			if !containsId(excludeIds, discovered[i].Id) {
				matches.add(discovered[i])
			}
		}
	}

	if !matches.full() {
		popular, err := s.popularityFallback(ctx, req, matches.ids())
		if err != nil {
			if !errors.Is(err, ErrCatalogUnavailable) || (matches.len() == 0 && len(popular) == 0) {
				return nil, false, err
			}
			upstreamErr = err
		}
		for i := range popular {
			matches.add(popular[i])
		}
	}
	req.degraded = upstreamErr != nil

	s.logger.Debug().
		Int64("userId", req.userId).
		Ints64("topGenres", topGenres).
		Int("local", localCount).
		Int("total", matches.len()).
		Msg("genre matched recommendations")
	return matches.movies, true, nil
}

func (s *RecommendationService) fromPopularity(ctx context.Context, req *recommendationRequest) ([]model.Movie, bool, error) {
	movies, err := s.popularityFallback(ctx, req, nil)
	if err != nil {
		if !errors.Is(err, ErrCatalogUnavailable) || len(movies) == 0 {
			return nil, false, err
		}
		req.degraded = true
	}
	return movies, true, nil
}

//------------------------------------------
//------------------------------------------

// popularityFallback returns local movies by popularity, topped up with one page
// of the catalog popular listing when the local store holds fewer than limit.
// Rows in excludeIds are skipped and already hold their share of limit.
// On upstream failure the local part is returned together with the error.
func (s *RecommendationService) popularityFallback(ctx context.Context, req *recommendationRequest, excludeIds []int64) ([]model.Movie, error) {
	need := req.limit - len(excludeIds)
	if need <= 0 {
		return []model.Movie{}, nil
	}
	local, err := s.movieRepo.QueryMovies(ctx, repository.MovieFilter{ExcludeIds: excludeIds}, repository.OrderByPopularity, need)
	if err != nil {
		return nil, err
	}
	collected := newMovieCollector(need)
	for i := range local {
		collected.add(local[i])
	}
	if collected.full() || req.settings.DisableCatalogFallback {
		return collected.movies, nil
	}

	page, err := s.catalog.GetPopular(ctx, 1)
	if err != nil {
		s.logger.Warn().Err(err).Msg("popular listing unavailable, returning local movies only")
		return collected.movies, err
	}
	upstream, err := s.reconciler.ReconcileBatch(ctx, page.Results)
	if err != nil {
		return nil, err
	}
	for i := range upstream {
		if !containsId(excludeIds, upstream[i].Id) {
			collected.add(upstream[i])
		}
	}
	return collected.movies, nil
}

func (s *RecommendationService) discoverByGenres(ctx context.Context, genreIds []int64, minVoteCount int) ([]model.Movie, error) {
	page, err := s.catalog.DiscoverMovies(ctx, DiscoverFilters{
		GenreIds:     genreIds,
		SortBy:       "vote_average.desc",
		MinVoteCount: minVoteCount,
		Page:         1,
	})
	if err != nil {
		return nil, err
	}
	return s.reconciler.ReconcileBatch(ctx, page.Results)
}

//------------------------------------------
//------------------------------------------

// GetSimilarMovies returns the catalog's similar movies for a local movie id.
// An unknown local id yields an empty list.
func (s *RecommendationService) GetSimilarMovies(ctx context.Context, movieId int64, limit int) ([]model.Movie, error) {
	if limit <= 0 {
		return []model.Movie{}, nil
	}
	movie, err := s.movieRepo.GetMovieById(ctx, movieId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info().Int64("movieId", movieId).Msg("similar movies requested for unknown movie")
			return []model.Movie{}, nil
		}
		return nil, err
	}

	key := similarMoviesCacheKey(movie.TmdbId)
	var cached []model.Movie
	if s.cache.GetJson(ctx, key, &cached) {
		return truncateMovies(cached, limit), nil
	}

	details, err := s.catalog.GetMovieDetails(ctx, movie.TmdbId)
	if err != nil {
		return nil, err
	}
	results := details.Similar.Results
	if len(results) > limit {
		results = results[:limit]
	}
	similar, err := s.reconciler.ReconcileBatch(ctx, results)
	if err != nil {
		return nil, err
	}
	s.cache.SetJson(ctx, key, similar, s.cache.TTL().MovieDetails)
	return similar, nil
}

//------------------------------------------
//------------------------------------------

// ComputeGenreWeights adds 2 per genre of each favorite and 1 per genre of each
// high rating. A movie that is both favorited and rated counts twice.
func ComputeGenreWeights(favorites []model.FavoriteMovie, ratings []model.UserRating) GenreWeights {
	w := GenreWeights{weights: map[int64]int{}}
	for i := range favorites {
		for _, g := range favorites[i].Movie.Genres {
			w.add(g.Id, favoriteGenreWeight)
		}
	}
	for i := range ratings {
		for _, g := range ratings[i].Movie.Genres {
			w.add(g.Id, highRatingGenreWeight)
		}
	}
	return w
}

// GenreWeights remembers first-seen order to break ties.
type GenreWeights struct {
	weights map[int64]int
	order   []int64
}

func (w *GenreWeights) add(genreId int64, weight int) {
	if genreId == 0 {
		return
	}
	if _, ok := w.weights[genreId]; !ok {
		w.order = append(w.order, genreId)
	}
	w.weights[genreId] += weight
}

func (w GenreWeights) Weight(genreId int64) int {
	return w.weights[genreId]
}

func (w GenreWeights) Len() int {
	return len(w.order)
}

// TopGenres ranks by weight desc, ties keep first-seen order.
func TopGenres(w GenreWeights, n int) []int64 {
	ranked := append([]int64{}, w.order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return w.weights[ranked[i]] > w.weights[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

//------------------------------------------
//------------------------------------------

// movieCollector keeps at most limit movies, unique by tmdb id, in insertion order.
type movieCollector struct {
	limit  int
	seen   map[int64]struct{}
	movies []model.Movie
}

func newMovieCollector(limit int) *movieCollector {
	return &movieCollector{limit: limit, seen: map[int64]struct{}{}, movies: []model.Movie{}}
}

func (c *movieCollector) add(m model.Movie) {
	if c.full() {
		return
	}
	if _, ok := c.seen[m.TmdbId]; ok {
		return
	}
	c.seen[m.TmdbId] = struct{}{}
	c.movies = append(c.movies, m)
}

func (c *movieCollector) full() bool {
	return len(c.movies) >= c.limit
}

func (c *movieCollector) len() int {
	return len(c.movies)
}

// ids returns the local record ids collected so far.
func (c *movieCollector) ids() []int64 {
	ids := make([]int64, len(c.movies))
	for i := range c.movies {
		ids[i] = c.movies[i].Id
	}
	return ids
}

// MergeMovies unions the lists in order, dropping repeated tmdb ids.
func MergeMovies(lists ...[]model.Movie) []model.Movie {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	c := newMovieCollector(total)
	for _, l := range lists {
		for i := range l {
			c.add(l[i])
		}
	}
	return c.movies
}

func truncateMovies(movies []model.Movie, limit int) []model.Movie {
	if limit <= 0 {
		return []model.Movie{}
	}
	if len(movies) > limit {
		return movies[:limit]
	}
	return movies
}

func containsId(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
