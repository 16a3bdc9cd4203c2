package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"VolPulse/internal/dataset"
	"VolPulse/internal/domain/repository"
	"VolPulse/internal/handler/ws"
	pkgch "VolPulse/pkg/clickhouse"
	"VolPulse/pkg/config"
	xhttp "VolPulse/pkg/http"
	applogger "VolPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg     *config.Config
	log     *applogger.Logger
	loader  repository.Loader
	watcher *dataset.Watcher
	hub     *ws.Hub
	handler xhttp.Handler

	httpServer *xhttp.Server
	chClient   *pkgch.Client
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	loader repository.Loader,
	watcher *dataset.Watcher,
	hub *ws.Hub,
	handler xhttp.Handler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		loader:  loader,
		watcher: watcher,
		hub:     hub,
		handler: handler,
		chClient: chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prime the dataset cache. A failed load is not fatal: the dashboard
	// keeps serving and every render pass reports load_error until the
	// source is fixed.
	if table, err := a.loader.Load(ctx); err != nil {
		a.log.Error("initial dataset load failed", applogger.Error(err))
	} else {
		a.log.Info("dataset ready",
			applogger.String("source", table.Meta.Source),
			applogger.Int("rows", table.Meta.Rows),
			applogger.Int("dropped", table.Meta.DroppedRows),
		)
	}

	if a.watcher != nil {
		go a.watcher.Run(ctx)
		a.log.Info("dataset watcher started",
			applogger.Duration("interval_ms", a.cfg.Dataset.WatchInterval))
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.hub != nil {
		a.hub.Close()
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
