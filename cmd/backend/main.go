package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"prescripto-backend/internal/admin"
	"prescripto-backend/internal/config"
	"prescripto-backend/internal/db"
	"prescripto-backend/internal/doctor"
	"prescripto-backend/internal/doctors"
	"prescripto-backend/internal/logging"
	"prescripto-backend/internal/server"
	"prescripto-backend/internal/storage"
	"prescripto-backend/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.New(config.LogConfig{})
		logger.Error("invalid configuration", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)

	// SIGINT (Ctrl+C) or SIGTERM (container stop) aborts startup or begins a
	// graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("backend stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run connects the backends, serves until ctx is done and then shuts down.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	conn, media, err := connectBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	logger.Info("running migrations")
	if err := db.RunMigrations(conn); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	logger.Info("migrations complete")

	store := doctors.NewStore(conn)

	srv := server.New(server.Config{
		Addr:      cfg.Addr(),
		CORS:      cfg.CORS,
		BodyLimit: cfg.BodyLimitBytes,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
		Admin: admin.NewRouter(admin.Deps{
			Doctors: store,
			Images:  media,
			Logger:  logger.Named("admin"),
		}),
		Doctor: doctor.NewRouter(doctor.Deps{
			Doctors: store,
			Logger:  logger.Named("doctor"),
		}),
		User: user.NewRouter(user.Deps{
			Doctors: store,
			Logger:  logger.Named("user"),
		}),
		Checks: []server.Check{
			{Name: "database", Probe: conn.PingContext},
			{Name: "storage", Probe: media.Ping, Slow: 2 * time.Second},
		},
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting", zap.Int("port", cfg.Port))
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("shutdown complete")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	}
}

// connectBackends connects the database and media storage concurrently and
// returns once both are reachable. Each is retried with backoff until
// StartupTimeout elapses.
func connectBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, *storage.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()

	var (
		conn  *sql.DB
		media *storage.Client
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return waitFor(gctx, logger, "database", newStartupBackOff(), func(ctx context.Context) error {
			c, err := db.Open(ctx, cfg.Database.URL, db.Options{MaxOpenConns: cfg.Database.MaxOpenConns})
			if err != nil {
				return err
			}
			conn = c
			return nil
		})
	})
	g.Go(func() error {
		return waitFor(gctx, logger, "storage", newStartupBackOff(), func(ctx context.Context) error {
			c, err := storage.New(ctx, cfg.Storage)
			if err != nil {
				return err
			}
			media = c
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil, nil, err
	}

	logger.Info("database connected")
	logger.Info("storage connected", zap.String("bucket", media.Bucket()))
	return conn, media, nil
}

func newStartupBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0 // bounded by the context
	return b
}

// waitFor retries connect until it succeeds, returns a permanent error, or
// ctx is done. The error names the dependency and carries the last failure.
func waitFor(ctx context.Context, logger *zap.Logger, name string, b backoff.BackOff, connect func(context.Context) error) error {
	var last error
	op := func() error {
		err := connect(ctx)
		if err != nil {
			last = err
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("dependency not ready", zap.String("dependency", name), zap.Duration("retry_in", next), zap.Error(err))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		if last != nil && last.Error() != err.Error() {
			return fmt.Errorf("connect %s: %w (last error: %v)", name, err, last)
		}
		return fmt.Errorf("connect %s: %w", name, err)
	}
	return nil
}
