package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"policymatcher/internal/auth"
	"policymatcher/internal/cache"
	"policymatcher/internal/config"
	"policymatcher/internal/database"
	"policymatcher/internal/errs"
	"policymatcher/internal/handlers"
	"policymatcher/internal/jobs"
	"policymatcher/internal/log"
	"policymatcher/internal/middleware"
	"policymatcher/internal/nickname"
	"policymatcher/internal/queue"
	"policymatcher/internal/repository"
	"policymatcher/internal/server"
	"policymatcher/internal/service"
	"policymatcher/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Postgres.PostgresDSN()); err != nil {
			logger.Fatal().Err(err).Msg("auto migration failed")
		}
	}

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	policy, err := auth.ParsePolicy(cfg.Security.ProgramWriteGuard)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid write policy")
	}
	gate := auth.NewGate(policy)
	logger.Info().Str("write_policy", string(gate.WritePolicy())).Msg("program write guard")

	programs := repository.NewProgramRepository(dbPool)
	users := repository.NewUserRepository(dbPool)
	notifications := repository.NewNotificationRepository(dbPool)
	sessionStore := repository.NewSessionStore(redisClient, cfg.Security.SessionTTL)

	sessions := middleware.NewSessionManager(sessionStore, cfg.Security, logger)

	accounts := service.NewAuthService(users, nickname.NewFromClock(), cfg.Security.AdminEmail, logger)
	if cfg.Security.AdminEmail != "" {
		if _, err := accounts.BootstrapAdmin(ctx); err != nil && !errors.Is(err, errs.ErrNotFound) {
			logger.Warn().Err(err).Msg("admin bootstrap failed")
		}
	}

	handlerSet := handlers.NewHandlerSet(handlers.Dependencies{
		Log:         logger,
		Environment: cfg.Environment,
		Gate:        gate,
		Sessions:    sessions,
		Programs:    service.NewProgramService(programs, gate, cfg.App.PageSize, logger),
		Accounts:    accounts,
		Notify:      service.NewNotifyService(notifications, programs, gate, logger),
		Dashboard:   service.NewDashboardService(programs, users, notifications),
		Presenter:   web.NewPresenter(cfg.App.BaseOrigin),
		DB:          dbPool,
		Cache:       redisClient,
	})

	httpServer, err := server.NewHTTPServer(cfg, logger, sessions, handlerSet)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build http server")
	}

	scheduler := jobs.NewScheduler(queue.NewProducer(redisClient, cfg.Queue.Stream), cfg.Jobs, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop(shutdownCtx)

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
