package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lpdswing/mineru-web/config"
	"github.com/lpdswing/mineru-web/internal/analysis"
	"github.com/lpdswing/mineru-web/internal/dispatch"
	"github.com/lpdswing/mineru-web/internal/handlers"
	"github.com/lpdswing/mineru-web/internal/middleware"
	"github.com/lpdswing/mineru-web/internal/repositories"
	"github.com/lpdswing/mineru-web/internal/services"
	"github.com/lpdswing/mineru-web/pkg/memorydb"
	"github.com/lpdswing/mineru-web/pkg/objectstore"
	"github.com/lpdswing/mineru-web/pkg/postgres"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "api").Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := postgres.NewDB(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	if err := repositories.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure database schema")
	}

	redisClient, err := memorydb.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to redis")
	}
	defer redisClient.Close()

	store, err := objectstore.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create object storage client")
	}
	if err := store.EnsureBucket(ctx, cfg.Minio.UploadsBucket); err != nil {
		log.Fatal().Err(err).Msg("ensure uploads bucket")
	}

	repos := repositories.NewRepositories(db)
	dispatcher := dispatch.NewDispatcher(
		analysis.NewHTTPPipelineClient(cfg.Parser.EngineURL),
		analysis.NewHTTPVLMClient(cfg.Parser.EngineURL),
		cfg.Parser.ModelPath,
	)

	parserService := services.NewParserService(repos.File, repos.ParsedContent, repos.Settings,
		store, redisClient, dispatcher, cfg)
	svcs := &services.Services{
		File:     services.NewFileService(repos.File, repos.ParsedContent, store, parserService, cfg),
		Parser:   parserService,
		Settings: services.NewSettingsService(repos.Settings),
		Stats:    services.NewStatsService(repos.File),
	}

	router := setupRouter(handlers.NewHandlers(svcs))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("host", cfg.Server.Host).Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func setupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.ErrorMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "mineru-web",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.IdentityMiddleware())
	{
		v1.POST("/upload", h.File.Upload)

		files := v1.Group("/files")
		{
			files.GET("", h.File.List)
			files.GET("/:id", h.File.Get)
			files.DELETE("/:id", h.File.Delete)
			files.GET("/:id/download_url", h.File.DownloadURL)

			files.POST("/:id/parse", h.Parse.Parse)
			files.GET("/:id/parse/status", h.Parse.Status)
			files.GET("/:id/parsed_content", h.Parse.ParsedContent)
			files.GET("/:id/export", h.Parse.Export)
		}

		settings := v1.Group("/settings")
		{
			settings.GET("", h.Settings.Get)
			settings.POST("", h.Settings.Update)
		}

		v1.GET("/stats", h.Stats.Get)
	}

	return router
}
