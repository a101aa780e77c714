package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"policymatcher/internal/auth"
	"policymatcher/internal/cache"
	"policymatcher/internal/config"
	"policymatcher/internal/database"
	"policymatcher/internal/integrity"
	"policymatcher/internal/log"
	"policymatcher/internal/queue"
	"policymatcher/internal/repository"
	"policymatcher/internal/service"
	"policymatcher/internal/storage"
	"policymatcher/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	policy, err := auth.ParsePolicy(cfg.Security.ProgramWriteGuard)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid write policy")
	}

	programs := repository.NewProgramRepository(dbPool)
	notifications := repository.NewNotificationRepository(dbPool)

	notify := service.NewNotifyService(notifications, programs, auth.NewGate(policy), logger)
	sweeper := integrity.NewSweeper(programs, reportArchiver(ctx, cfg.Storage, logger), logger)

	processor := tasks.NewProcessor(notify, sweeper, logger)
	consumer := queue.NewConsumer(client, cfg.Queue, logger, processor)

	logger.Info().Str("stream", cfg.Queue.Stream).Str("group", cfg.Queue.Group).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
	}
	logger.Info().Msg("worker exited cleanly")
}

// reportArchiver returns nil when object storage is not configured; sweeps
// then run without archiving their report.
func reportArchiver(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) integrity.ReportArchiver {
	store, err := storage.OpenReports(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("object storage unavailable, integrity reports will not be archived")
		return nil
	}
	if store == nil {
		logger.Info().Msg("object storage disabled, integrity reports will not be archived")
		return nil
	}
	return store
}
