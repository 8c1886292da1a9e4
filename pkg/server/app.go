package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"EngineMirror/pkg/config"
	xhttp "EngineMirror/pkg/http"
	applogger "EngineMirror/pkg/logger"
	"EngineMirror/pkg/trace"
)

// Scheduler is the part of the poller the app drives.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop()
}

// Closer releases a resource at shutdown.
type Closer interface {
	Close() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	scheduler  Scheduler
	httpServer *xhttp.Server
	closers    []Closer
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	scheduler Scheduler,
	httpServer *xhttp.Server,
	closers ...Closer,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		scheduler:  scheduler,
		httpServer: httpServer,
		closers:    closers,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts polling and serving and blocks until ctx is done or
// the HTTP server fails.
func (a *App) RunContext(ctx context.Context) error {
	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			return fmt.Errorf("http server start: %w", err)
		}
	}

	if err := a.scheduler.Start(context.Background()); err != nil {
		a.shutdown()
		return fmt.Errorf("scheduler start: %w", err)
	}
	a.logger.Info("mirror started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("backend", a.cfg.Backend.BaseURL),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-a.serverErrors():
		runErr = err
	}

	a.shutdown()
	return runErr
}

func (a *App) serverErrors() <-chan error {
	if a.httpServer == nil {
		return nil
	}
	return a.httpServer.Errors()
}

// shutdown stops the HTTP server first so no request observes a
// half-stopped scheduler, then the scheduler, then everything else.
func (a *App) shutdown() {
	a.logger.Info("shutting down...")

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
		if err := a.httpServer.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
		cancel()
	}

	a.scheduler.Stop()

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close error", applogger.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := trace.Shutdown(ctx); err != nil {
		a.logger.Warn("trace shutdown error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	a.logger.RemoveCollector()
}
