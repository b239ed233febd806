package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lpdswing/mineru-web/config"
	"github.com/lpdswing/mineru-web/internal/analysis"
	"github.com/lpdswing/mineru-web/internal/dispatch"
	"github.com/lpdswing/mineru-web/internal/repositories"
	"github.com/lpdswing/mineru-web/internal/services"
	"github.com/lpdswing/mineru-web/internal/worker"
	"github.com/lpdswing/mineru-web/pkg/memorydb"
	"github.com/lpdswing/mineru-web/pkg/objectstore"
	"github.com/lpdswing/mineru-web/pkg/postgres"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "worker").Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	repos := repositories.NewRepositories(db)
	dispatcher := dispatch.NewDispatcher(
		analysis.NewHTTPPipelineClient(cfg.Parser.EngineURL),
		analysis.NewHTTPVLMClient(cfg.Parser.EngineURL),
		cfg.Parser.ModelPath,
	)
	parser := services.NewParserService(repos.File, repos.ParsedContent, repos.Settings,
		store, redisClient, dispatcher, cfg)

	if err := redisClient.EnsureGroup(ctx, cfg.Parser.Stream, cfg.Parser.ConsumerGroup); err != nil {
		log.Fatal().Err(err).Msg("create consumer group")
	}

	hostname, _ := os.Hostname()
	name := fmt.Sprintf("%s-%d", hostname, os.Getpid())
	worker.NewConsumer(redisClient, parser, cfg.Parser.Stream, cfg.Parser.ConsumerGroup, name).Run(ctx)
}
