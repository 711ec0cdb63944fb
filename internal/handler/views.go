package handler

import (
	"fmt"

	"movie_recommendation/api/middleware"
	"movie_recommendation/internal/service"
	"movie_recommendation/model"
	errorHandler "movie_recommendation/pkg/error"

	"github.com/gofiber/fiber/v2"
)

// movieViewer turns movies into client views and decorates them for the authenticated user.
type movieViewer struct {
	movieService service.IMovieService
	userService  service.IUserService
}

func (v movieViewer) views(c *fiber.Ctx, movies []model.Movie) []model.MovieView {
	result := make([]model.MovieView, len(movies))
	for i := range movies {
		result[i] = model.MovieView{
			Movie:       movies[i],
			PosterUrl:   v.movieService.ImageUrl(movies[i].PosterPath, model.PosterSize),
			BackdropUrl: v.movieService.ImageUrl(movies[i].BackdropPath, model.BackdropSize),
		}
	}

	userId, ok := middleware.GetUserId(c)
	if !ok || len(movies) == 0 {
		return result
	}
	ids := make([]int64, len(movies))
	for i := range movies {
		ids[i] = movies[i].Id
	}
	states, err := v.userService.GetUserMovieStates(c.UserContext(), userId, ids)
	if err != nil {
		errorMessage := fmt.Sprintf("Error on loading movie states of user %d: %v", userId, err)
		errorHandler.SaveError(errorMessage, err)
		return result
	}
	for i := range result {
		state := states[result[i].Id]
		result[i].IsFavorite = state.IsFavorite
		result[i].UserRating = state.UserRating
	}
	return result
}

func (v movieViewer) view(c *fiber.Ctx, movie model.Movie) model.MovieView {
	return v.views(c, []model.Movie{movie})[0]
}
