// @title                       Taskflow Task Service API
// @version                     1.0
// @description                 Users and tasks with observers, exposed on two equivalent surfaces.
// @BasePath                    /
// @securityDefinitions.basic   BasicAuth
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/task-service/internal/api"
	"github.com/taskflow/task-service/internal/core/ports"
	"github.com/taskflow/task-service/internal/core/service"
	"github.com/taskflow/task-service/internal/infrastructure/db/memory"
	"github.com/taskflow/task-service/internal/infrastructure/db/mongo"
	"github.com/taskflow/task-service/internal/infrastructure/db/redis"
	"github.com/taskflow/task-service/internal/infrastructure/http/handlers"
	"github.com/taskflow/task-service/internal/infrastructure/queue"
	"github.com/taskflow/task-service/internal/pkg/config"
	"github.com/taskflow/task-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log := logger.With("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "development-only-secret"
	}

	checks := map[string]handlers.Check{}

	var (
		users ports.UserRepository
		tasks ports.TaskRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		users = memory.NewUserRepository()
		tasks = memory.NewTaskRepository()
	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("mongo disconnect failed")
			}
		}()

		userRepo := mongo.NewUserRepository(db)
		taskRepo := mongo.NewTaskRepository(db)
		if err := mongo.EnsureIndexes(ctx, userRepo, taskRepo); err != nil {
			return err
		}
		users, tasks = userRepo, taskRepo
		checks["mongo"] = mongo.Pinger(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	}

	// The serializer outlives ctx so requests drained by e.Shutdown can still
	// mutate tasks.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	serializer := queue.NewSerializer(cfg.MutationWorkers, logger.With("serializer"))
	serializer.Start(workerCtx)
	taskOpts := []service.TaskOption{service.WithExecutor(serializer)}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()

		taskOpts = append(taskOpts, service.WithIdempotencyStore(redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)))
		checks["redis"] = redis.Pinger(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotent creates enabled")
	}

	e := api.NewRouter(api.Dependencies{
		Users:            service.NewUserService(users, logger.With("users")),
		Tasks:            service.NewTaskService(tasks, users, logger.With("tasks"), taskOpts...),
		Auth:             service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL),
		Checks:           checks,
		AnonymousObserve: cfg.AnonymousObserve,
		Logger:           logger.With("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := e.Shutdown(shutdownCtx)
	stopWorkers()
	return err
}
