package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/okian/akreditasi/internal/adapters/http/api"
	"github.com/okian/akreditasi/internal/adapters/repository"
	service "github.com/okian/akreditasi/internal/app"
	"github.com/okian/akreditasi/internal/config"
	"github.com/okian/akreditasi/internal/domain/grading"
	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "engine stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the store, service and HTTP server and blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	svc, err := newService(store, cfg, log)
	if err != nil {
		_ = store.Close()
		return err
	}
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return errors.Wrap(err, "start service")
	}

	// Warm the ranking so the first GET /rankings is not empty.
	if n, err := svc.Recompute(ctx, nil); err != nil {
		log.Warn(ctx, "initial recompute not fully queued", logger.Int("queued", n), logger.Error(err))
	} else {
		log.Info(ctx, "initial recompute queued", logger.Int("programs", n))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...")
	case err := <-serveErr:
		runErr = errors.Wrap(err, "http server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	log.Info(ctx, "server stopped")
	return runErr
}

func newService(store repository.Store, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	scale, err := grading.ParseScale(cfg.DefaultScale)
	if err != nil {
		return nil, err
	}
	return service.New(store,
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithJobTimeout(cfg.JobTimeout),
		service.WithCompletenessFactor(cfg.CompletenessFactor),
		service.WithDefaultScale(scale),
	), nil
}

func newHandler(ctx context.Context, svc *service.Service, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(svc, svc, api.WithMaxLimit(cfg.MaxRankingLimit)).Register(ctx, mux)
	return mux
}

// openStore selects the persistence backend named by cfg.Store.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		var data model.SnapshotData
		if cfg.SeedFile != "" {
			var err error
			if data, err = loadSeed(cfg.SeedFile); err != nil {
				return nil, err
			}
			log.Info(ctx, "memory store seeded",
				logger.String("seed_file", cfg.SeedFile),
				logger.Int("programs", len(data.Programs)),
				logger.Int("assignments", len(data.Assignments)),
				logger.Int("evaluations", len(data.Evaluations)),
			)
		}
		return repository.NewMemoryStore(data), nil

	case config.StorePostgres:
		store, err := repository.OpenPostgres(cfg.DatabaseDSN, repository.WithPool(repository.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		}))
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := store.AutoMigrate(ctx); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		if cfg.BackfillCategories {
			n, err := store.BackfillCategories(ctx)
			if err != nil {
				_ = store.Close()
				return nil, err
			}
			log.Info(ctx, "criteria categories backfilled", logger.Int("updated", n))
		}
		return store, nil
	}
	return nil, errors.Wrapf(config.ErrInvalidConfig, "unknown store %q", cfg.Store)
}

// loadSeed reads a JSON-encoded model.SnapshotData.
func loadSeed(path string) (model.SnapshotData, error) {
	var data model.SnapshotData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, errors.Wrap(err, "read seed file")
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, errors.Wrapf(err, "decode seed file %s", path)
	}
	return data, nil
}
