package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkwellhq/inkwell/internal/config"
	"github.com/inkwellhq/inkwell/internal/health"
	"github.com/inkwellhq/inkwell/internal/observability"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Readiness     *health.ProbeRunner

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	stop func()
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime, gdb *gorm.DB, redisClient redis.UniversalClient, readiness *health.ProbeRunner, stop func()) *App {
	return &App{
		Config:                       cfg,
		Logger:                       logger,
		Server:                       server,
		Observability:                runtime,
		DB:                           gdb,
		Redis:                        redisClient,
		Readiness:                    readiness,
		ShutdownTimeout:              cfg.ShutdownTimeout,
		ShutdownHTTPDrainTimeout:     cfg.ShutdownHTTPDrainTimeout,
		ShutdownObservabilityTimeout: cfg.ShutdownObservabilityTimeout,
		stop:                         stop,
	}
}

func (a *App) StopBackgroundTasks() {
	if a.stop != nil {
		a.stop()
	}
}

// Run serves until the context is cancelled, then drains in-flight requests
// and flushes observability within the configured budgets.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", "addr", a.Server.Addr, "env", a.Config.Env)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")
		a.StopBackgroundTasks()

		drainCtx, cancel := context.WithTimeout(context.Background(), a.ShutdownHTTPDrainTimeout)
		defer cancel()
		if err := a.Server.Shutdown(drainCtx); err != nil {
			a.Logger.Error("http drain failed", "error", err)
		}

		obsCtx, obsCancel := context.WithTimeout(context.Background(), a.ShutdownObservabilityTimeout)
		defer obsCancel()
		if err := a.Observability.Shutdown(obsCtx); err != nil {
			a.Logger.Error("observability shutdown failed", "error", err)
		}
		return nil
	})

	return g.Wait()
}
