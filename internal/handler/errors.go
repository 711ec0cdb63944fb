package handler

import (
	"errors"
	"fmt"

	"movie_recommendation/db"
	"movie_recommendation/internal/service"
	"movie_recommendation/model"
	errorHandler "movie_recommendation/pkg/error"
	"movie_recommendation/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// responseServiceError maps a service outcome to its status code.
func responseServiceError(c *fiber.Ctx, err error, notFoundMessage string) error {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return response.ResponseError(c, validationErr.Error(), fiber.StatusBadRequest)
	case errors.Is(err, service.ErrCatalogUnavailable):
		return response.ResponseError(c, response.CatalogUnavailable, fiber.StatusServiceUnavailable)
	case errors.Is(err, service.ErrMovieNotFound), errors.Is(err, service.ErrMarkNotFound):
		return response.ResponseError(c, notFoundMessage, fiber.StatusNotFound)
	case db.IsConnectionNotAcceptingError(err):
		return response.ResponseError(c, response.DatabaseStarting, fiber.StatusServiceUnavailable)
	default:
		errorMessage := fmt.Sprintf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		errorHandler.SaveError(errorMessage, err)
		return response.ResponseError(c, response.ServerError, fiber.StatusInternalServerError)
	}
}

func totalPages(count int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}

// pageOf slices an in-memory list, a page past the end is empty.
func pageOf(movies []model.Movie, page int, pageSize int) []model.Movie {
	start := (page - 1) * pageSize
	if page < 1 || pageSize <= 0 || start >= len(movies) {
		return []model.Movie{}
	}
	return movies[start:min(start+pageSize, len(movies))]
}
