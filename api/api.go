package api

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"movie_recommendation/api/middleware"
	"movie_recommendation/internal/handler"
	"movie_recommendation/pkg/response"

	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	AccessTokenSecret  string
	CorsAllowedOrigins []string
	RequestTimeout     time.Duration
	Logger             zerolog.Logger
}

var router *fiber.App

func InitRouter(config RouterConfig, movieHandler *handler.MovieHandler, userHandler *handler.UserHandler) *fiber.App {
	var defaultErrorHandler = func(c *fiber.Ctx, err error) error {
		// Status code defaults to 500
		code := fiber.StatusInternalServerError

		// Retrieve the custom status code if it's a *fiber.Error
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		if !strings.Contains(err.Error(), "/favicon.ico") && code >= 500 {
			config.Logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}

		if code == fiber.StatusNotFound {
			return response.ResponseError(c, "Not Found", code)
		}
		return response.ResponseError(c, "Internal Error", code)
	}

	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}

	router = fiber.New(fiber.Config{
		UnescapePath: true,
		BodyLimit:    1024 * 1024,
		ErrorHandler: defaultErrorHandler,
	})

	router.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return uuid.NewString()
		},
	}))
	router.Use(helmet.New())
	router.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return middleware.LocalhostRegex.MatchString(origin) ||
				slices.Index(config.CorsAllowedOrigins, origin) != -1
		},
		AllowCredentials: true,
	}))
	router.Use(timeoutMiddleware(config.RequestTimeout))
	router.Use(recover.New())
	router.Use(requestLogger(config.Logger))
	router.Use(compress.New())

	router.Use(fibersentry.New(fibersentry.Config{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	authMiddleware := middleware.AuthMiddleware(config.AccessTokenSecret)
	optionalAuth := middleware.OptionalAuthMiddleware(config.AccessTokenSecret)

	movieRoutes := router.Group("v1/movies")
	{
		movieRoutes.Get("/trending", optionalAuth, movieHandler.GetTrending)
		movieRoutes.Get("/popular", optionalAuth, movieHandler.GetPopular)
		movieRoutes.Get("/top_rated", optionalAuth, movieHandler.GetTopRated)
		movieRoutes.Get("/search", optionalAuth, movieHandler.SearchMovies)
		movieRoutes.Get("/genres", movieHandler.GetGenres)
		movieRoutes.Get("/recommendations", authMiddleware, movieHandler.GetRecommendations)
		movieRoutes.Get("/:id/similar", optionalAuth, movieHandler.GetSimilarMovies)
		movieRoutes.Get("/:id", optionalAuth, movieHandler.GetMovie)
	}

	userRoutes := router.Group("v1/user", authMiddleware)
	{
		userRoutes.Get("/favorites", userHandler.GetFavorites)
		userRoutes.Post("/favorites", userHandler.AddFavorite)
		userRoutes.Delete("/favorites/:id", userHandler.RemoveFavorite)
		userRoutes.Get("/ratings", userHandler.GetRatings)
		userRoutes.Post("/ratings", userHandler.RateMovie)
		userRoutes.Get("/watchlist", userHandler.GetWatchlist)
		userRoutes.Post("/watchlist", userHandler.AddToWatchlist)
		userRoutes.Delete("/watchlist/:id", userHandler.RemoveFromWatchlist)
	}

	router.Get("/metrics", monitor.New(monitor.Config{Title: "Movie Recommendation Metrics"}))
	router.Get("/", HealthCheck)
	return router
}

func Start(addr string) error {
	return router.Listen(addr)
}

func Shutdown(ctx context.Context) error {
	if router == nil {
		return nil
	}
	return router.ShutdownWithContext(ctx)
}

// timeoutMiddleware bounds the context handed to services.
func timeoutMiddleware(timeout time.Duration) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		c.SetUserContext(ctx)
		err := c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return response.ResponseError(c, "Request timeout", fiber.StatusGatewayTimeout)
		}
		return err
	}
}

func requestLogger(logger zerolog.Logger) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		event := logger.Debug()
		if status >= fiber.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("requestId", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("request")
		return err
	}
}

func HealthCheck(c *fiber.Ctx) error {
	res := map[string]interface{}{
		"data": "Server is up and running",
	}

	if err := c.JSON(res); err != nil {
		return err
	}

	return nil
}
