package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/clubhouse/internal/adapters/backend"
	"github.com/okian/clubhouse/internal/adapters/http/api"
	"github.com/okian/clubhouse/internal/adapters/http/swagger"
	"github.com/okian/clubhouse/internal/adapters/mq/amqp"
	app "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/config"
	"github.com/okian/clubhouse/internal/domain/slideshow"
	"github.com/okian/clubhouse/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Error(ctx, "backend close failed", logger.Error(err))
		}
	}()

	opts := serviceOptions(cfg, log)
	if cfg.Notify.AMQPURL != "" {
		pub, err := amqp.Dial(cfg.Notify.AMQPURL, cfg.Notify.Exchange)
		if err != nil {
			return fmt.Errorf("failed to connect notifications broker: %w", err)
		}
		defer func() { _ = pub.Close() }()
		b.AddCheck("amqp", pub.HealthCheck)
		opts = append(opts, app.WithPublisher(pub))
	}

	svc := app.New(b.Repository, opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, b.Checks()),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	svc.Stop(shutdownCtx)

	log.Info(ctx, "server stopped")
	return nil
}

func serviceOptions(cfg *config.Config, log logger.Logger) []app.Option {
	return []app.Option{
		app.WithLogger(log),
		app.WithRefreshInterval(cfg.Feed.RefreshInterval),
		app.WithQueueSize(cfg.Notify.QueueSize),
		app.WithWorkerCount(cfg.Notify.Workers),
		app.WithSlideshow(
			slideshow.WithTickInterval(cfg.Feed.TickInterval),
			slideshow.WithResumeDelay(cfg.Feed.ResumeDelay),
		),
	}
}

func newMux(ctx context.Context, svc *app.Service, checks map[string]func() error) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	deps := api.FromService(svc)
	deps.Checks = make(map[string]api.HealthCheck, len(checks))
	for name, check := range checks {
		deps.Checks[name] = check
	}
	api.NewServer(deps).Register(ctx, mux)
	return mux
}
