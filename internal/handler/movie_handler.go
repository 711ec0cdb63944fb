package handler

import (
	"movie_recommendation/api/middleware"
	"movie_recommendation/internal/service"
	"movie_recommendation/model"
	"movie_recommendation/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type IMovieHandler interface {
	GetTrending(c *fiber.Ctx) error
	GetPopular(c *fiber.Ctx) error
	GetTopRated(c *fiber.Ctx) error
	SearchMovies(c *fiber.Ctx) error
	GetGenres(c *fiber.Ctx) error
	GetMovie(c *fiber.Ctx) error
	GetSimilarMovies(c *fiber.Ctx) error
	GetRecommendations(c *fiber.Ctx) error
}

type MovieHandler struct {
	movieService          service.IMovieService
	recommendationService service.IRecommendationService
	collaborativeService  service.ICollaborativeService
	viewer                movieViewer
}

func NewMovieHandler(
	movieService service.IMovieService,
	recommendationService service.IRecommendationService,
	collaborativeService service.ICollaborativeService,
	userService service.IUserService,
) *MovieHandler {
	return &MovieHandler{
		movieService:          movieService,
		recommendationService: recommendationService,
		collaborativeService:  collaborativeService,
		viewer:                movieViewer{movieService: movieService, userService: userService},
	}
}

const (
	engineRecommendationsLimit        = 40
	collaborativeRecommendationsLimit = 20
	defaultSimilarLimit               = 10
	maxSimilarLimit                   = 50
)

//------------------------------------------
//------------------------------------------

func (m *MovieHandler) GetTrending(c *fiber.Ctx) error {
	timeWindow := c.Query("timeWindow", service.DefaultTimeWindow)
	if timeWindow != "day" && timeWindow != "week" {
		return response.ResponseError(c, response.InvalidTimeSpan, fiber.StatusBadRequest)
	}
	page := c.QueryInt("page", 1)

	res, err := m.movieService.GetTrendingMovies(c.UserContext(), timeWindow, page)
	if err != nil {
		return responseServiceError(c, err, response.MoviesNotFound)
	}
	return m.responsePage(c, res)
}

func (m *MovieHandler) GetPopular(c *fiber.Ctx) error {
	res, err := m.movieService.GetPopularMovies(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return responseServiceError(c, err, response.MoviesNotFound)
	}
	return m.responsePage(c, res)
}

func (m *MovieHandler) GetTopRated(c *fiber.Ctx) error {
	res, err := m.movieService.GetTopRatedMovies(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return responseServiceError(c, err, response.MoviesNotFound)
	}
	return m.responsePage(c, res)
}

func (m *MovieHandler) SearchMovies(c *fiber.Ctx) error {
	query := c.Query("query", "")
	if query == "" {
		return response.ResponseError(c, response.QueryRequired, fiber.StatusBadRequest)
	}

	res, err := m.movieService.SearchMovies(c.UserContext(), query, c.QueryInt("page", 1))
	if err != nil {
		return responseServiceError(c, err, response.MoviesNotFound)
	}
	return m.responsePage(c, res)
}

func (m *MovieHandler) GetGenres(c *fiber.Ctx) error {
	genres, err := m.movieService.GetGenres(c.UserContext())
	if err != nil {
		return responseServiceError(c, err, response.GenresNotFound)
	}
	return response.ResponseOKWithData(c, genres)
}

func (m *MovieHandler) GetMovie(c *fiber.Ctx) error {
	movieId, err := c.ParamsInt("id", 0)
	if err != nil || movieId <= 0 {
		return response.ResponseError(c, response.InvalidMovieId, fiber.StatusBadRequest)
	}

	movie, err := m.movieService.GetMovieDetails(c.UserContext(), int64(movieId))
	if err != nil {
		return responseServiceError(c, err, response.MovieNotFound)
	}
	return response.ResponseOKWithData(c, m.viewer.view(c, *movie))
}

func (m *MovieHandler) GetSimilarMovies(c *fiber.Ctx) error {
	movieId, err := c.ParamsInt("id", 0)
	if err != nil || movieId <= 0 {
		return response.ResponseError(c, response.InvalidMovieId, fiber.StatusBadRequest)
	}
	limit := min(max(c.QueryInt("limit", defaultSimilarLimit), 1), maxSimilarLimit)

	movies, err := m.recommendationService.GetSimilarMovies(c.UserContext(), int64(movieId), limit)
	if err != nil {
		return responseServiceError(c, err, response.MovieNotFound)
	}
	views := m.viewer.views(c, movies)
	return response.ResponseOKWithPage(c, len(views), 1, 1, views)
}

// GetRecommendations merges the genre engine output with the collaborative
// signal, engine results first.
func (m *MovieHandler) GetRecommendations(c *fiber.Ctx) error {
	userId, ok := middleware.GetUserId(c)
	if !ok {
		return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
	}
	ctx := c.UserContext()

	personalized, err := m.recommendationService.GetPersonalizedRecommendations(ctx, userId, engineRecommendationsLimit)
	if err != nil {
		return responseServiceError(c, err, response.MoviesNotFound)
	}
	collaborative, err := m.collaborativeService.CollaborativeRecommend(ctx, userId, collaborativeRecommendationsLimit)
	if err != nil {
		return responseServiceError(c, err, response.MoviesNotFound)
	}

	merged := service.MergeMovies(personalized, collaborative)
	page, pageSize := pageParams(c)
	views := m.viewer.views(c, pageOf(merged, page, pageSize))
	return response.ResponseOKWithPage(c, len(merged), page, totalPages(int64(len(merged)), pageSize), views)
}

//------------------------------------------
//------------------------------------------

func (m *MovieHandler) responsePage(c *fiber.Ctx, page *model.MoviePage) error {
	views := m.viewer.views(c, page.Results)
	return response.ResponseOKWithPage(c, page.TotalResults, page.Page, page.TotalPages, views)
}
