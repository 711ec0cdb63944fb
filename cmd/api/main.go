package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movie_recommendation/api"
	"movie_recommendation/configs"
	"movie_recommendation/db"
	"movie_recommendation/db/memory"
	"movie_recommendation/db/mongodb"
	"movie_recommendation/db/redis"
	"movie_recommendation/internal/handler"
	"movie_recommendation/internal/repository"
	"movie_recommendation/internal/service"
	errorHandler "movie_recommendation/pkg/error"
	"movie_recommendation/pkg/logger"

	"github.com/getsentry/sentry-go"
)

func main() {
	configs.LoadEnvVariables()
	conf := configs.GetConfigs()

	appLogger := logger.New(conf.LogLevel, os.Getenv("APP_ENV") == "development", os.Stderr)
	errorHandler.Init(appLogger, conf.PrintErrors)

	err := sentry.Init(sentry.ClientOptions{
		Dsn:     conf.SentryDns,
		Release: conf.SentryRelease,
		// Set TracesSampleRate to 1.0 to capture 100%
		// of transactions for performance monitoring.
		TracesSampleRate: 1,
		EnableTracing:    true,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	// Flush buffered events before the program terminates.
	defer sentry.Flush(2 * time.Second)

	database, err := db.NewDatabase(conf.DbUrl)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("could not initialize database connection")
	}
	if err = db.Migrate(database.GetDB()); err != nil {
		appLogger.Fatal().Err(err).Msg("could not migrate database")
	}

	var cacheStore service.ICacheStore
	if conf.RedisUrl != "" {
		redisStore := redis.NewStore(conf.RedisUrl, conf.RedisPassword)
		if err = redisStore.Ping(context.Background()); err != nil {
			errorHandler.SaveError("redis is not reachable, cache reads will miss until it recovers", err)
		}
		defer redisStore.Close()
		cacheStore = redisStore
	} else {
		memoryStore, err := memory.NewStore()
		if err != nil {
			appLogger.Fatal().Err(err).Msg("could not open in-memory cache")
		}
		defer memoryStore.Close()
		cacheStore = memoryStore
		appLogger.Info().Msg("REDIS_URL is empty, using in-memory cache")
	}

	done := make(chan bool)
	if conf.MongodbDatabaseUrl != "" {
		mongoDB, err := mongodb.NewDatabase(conf.MongodbDatabaseUrl, conf.MongodbDatabaseName)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("could not initialize mongodb database connection")
		}
		defer mongoDB.Close()
		go configs.LoadDbConfigs(mongoDB.GetDB(), done)
	}

	cacheSvc := service.NewCacheService(cacheStore, conf.CacheTTL, appLogger)
	catalogSvc := service.NewCatalogService(service.CatalogConfig{
		ApiKey:            conf.TmdbApiKey,
		BaseUrl:           conf.TmdbBaseUrl,
		ImageBaseUrl:      conf.TmdbImageBaseUrl,
		RequestsPerSecond: conf.TmdbRequestsPerSecond,
	}, cacheSvc, appLogger)
	if conf.TmdbApiKey == "" {
		appLogger.Warn().Msg("TMDB_API_KEY is empty, catalog calls will be unavailable")
	}

	movieRep := repository.NewMovieRepository(database.GetDB())
	userRep := repository.NewUserRepository(database.GetDB())

	reconcileSvc := service.NewReconcileService(movieRep, catalogSvc, appLogger)
	movieSvc := service.NewMovieService(movieRep, catalogSvc, reconcileSvc, cacheSvc, appLogger)
	recommendationSvc := service.NewRecommendationService(movieRep, userRep, catalogSvc, reconcileSvc, cacheSvc, configs.GetDbConfigs, appLogger)
	collaborativeSvc := service.NewCollaborativeService(movieRep, userRep, configs.GetDbConfigs, appLogger)
	userSvc := service.NewUserService(userRep, reconcileSvc, appLogger)

	movieHandler := handler.NewMovieHandler(movieSvc, recommendationSvc, collaborativeSvc, userSvc)
	userHandler := handler.NewUserHandler(userSvc, movieSvc)

	api.InitRouter(api.RouterConfig{
		AccessTokenSecret:  conf.AccessTokenSecret,
		CorsAllowedOrigins: conf.CorsAllowedOrigins,
		Logger:             appLogger,
	}, movieHandler, userHandler)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		close(done)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.Shutdown(ctx); err != nil {
			appLogger.Error().Err(err).Msg("shutdown")
		}
	}()

	appLogger.Info().Str("port", conf.Port).Msg("starting server")
	if err = api.Start("0.0.0.0:" + conf.Port); err != nil {
		appLogger.Error().Err(err).Msg("server stopped")
	}
}
