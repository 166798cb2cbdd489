package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"CryptoCast/internal/usecase"
	"CryptoCast/pkg/config"
	xhttp "CryptoCast/pkg/http"
	applogger "CryptoCast/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	controller *usecase.RequestController
	archive    io.Closer
	closers    []namedCloser
}

type namedCloser struct {
	name string
	c    io.Closer
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	controller *usecase.RequestController,
	archive io.Closer,
) *App {
	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		controller: controller,
		archive:    archive,
	}
}

// AddCloser registers an infrastructure client released after the archive,
// in registration order.
func (a *App) AddCloser(name string, c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, namedCloser{name: name, c: c})
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext serves until ctx ends or the HTTP listener fails, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("app started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("addr", a.httpServer.Addr()),
		applogger.String("prediction_host", a.cfg.Prediction.Host),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-a.httpServer.Errors():
		runErr = fmt.Errorf("http server: %w", err)
	}

	if err := a.shutdown(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// shutdown gracefully stops all services. Order matters: no new requests,
// then in-flight fetches and archive writes drain, then sinks close.
func (a *App) shutdown() error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	if err := a.controller.Close(shutdownCtx); err != nil {
		a.logger.Warn("request controller close error", applogger.Error(err))
		errs = append(errs, err)
	}

	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("outcome archive close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.logger.Warn(nc.name+" close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
