package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc/pool"

	server "github.com/kazz187/taskboard/internal"
	"github.com/kazz187/taskboard/internal/admin"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/event"
	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/clog"
	"github.com/kazz187/taskboard/pkg/panicerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	logger := slog.New(clog.NewAttributesHandler(handler))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Setup repository
	repo, initializers, closeRepo, err := newRepository(ctx, env)
	if err != nil {
		slog.Error("failed to set up task storage", "type", env.StorageEnv.Type, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	if env.SeedDemo {
		seeded, err := taskrepo.SeedIfEmpty(ctx, repo, task.DemoTasks())
		if err != nil {
			slog.Error("failed to seed demo tasks", "error", err)
			os.Exit(1)
		}
		if seeded {
			slog.Info("seeded demo tasks")
		}
	}

	// Setup event bus
	bus := eventbus.New(logger)
	defer bus.Close()

	opts := []task.ServiceOption{task.WithPublisher(bus)}
	if env.UniqueTitles {
		opts = append(opts, task.WithUniqueTitles())
	}
	taskService := task.NewService(repo, opts...)

	srv := server.NewServer(
		env,
		task.NewServer(taskService),
		event.NewServer(bus),
		admin.NewServer(initializers...),
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(panicerr.SafeContext(func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}))
	p.Go(panicerr.SafeContext(func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")

		// Give active connections time to finish after stream contexts are cancelled.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}))
	if err := p.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newRepository(ctx context.Context, env *config.Env) (task.Repository, []task.Initializer, func(), error) {
	noop := func() {}
	switch env.StorageEnv.Type {
	case "memory":
		return taskrepo.NewMemoryRepository(), nil, noop, nil
	case "local":
		store, err := storage.NewLocalStorage(env.StorageEnv.BaseDir)
		if err != nil {
			return nil, nil, noop, err
		}
		return taskrepo.NewYAMLRepository(store), nil, noop, nil
	case "s3":
		store, err := storage.NewS3Storage(ctx, env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			return nil, nil, noop, err
		}
		return taskrepo.NewYAMLRepository(store), nil, noop, nil
	case "sqlite":
		var opts []taskrepo.SQLiteOption
		if env.UniqueTitles {
			opts = append(opts, taskrepo.WithSQLiteUniqueTitles())
		}
		repo, err := taskrepo.OpenSQLiteRepository(env.StorageEnv.SQLitePath, opts...)
		if err != nil {
			return nil, nil, noop, err
		}
		closeRepo := func() {
			if err := repo.Close(); err != nil {
				slog.Warn("failed to close sqlite database", "error", err)
			}
		}
		if err := repo.Initialize(ctx); err != nil {
			closeRepo()
			return nil, nil, noop, err
		}
		return repo, []task.Initializer{repo}, closeRepo, nil
	}
	return nil, nil, noop, errors.New("unsupported storage type")
}
