package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FeatureMill/pkg/config"
	xhttp "FeatureMill/pkg/http"
	applogger "FeatureMill/pkg/logger"
)

// Runner is a background component with a start/stop lifecycle. The
// job queue and the snapshot scheduler both satisfy it.
type Runner interface {
	Start() error
	Stop(ctx context.Context) error
}

// Closer is an infrastructure client that must be closed on shutdown.
type Closer interface {
	Close() error
}

// App encapsulates the application lifecycle.
type App struct {
	cfg     *config.Config
	log     *applogger.Logger
	server  *xhttp.Server
	runners []Runner
	closers []Closer
}

// New creates the App. Runners are started in order and stopped in
// reverse; closers are closed last.
func New(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler) *App {
	srv := xhttp.NewServer(log, handler,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	return &App{cfg: cfg, log: log, server: srv}
}

// AddRunner registers a background component.
func (a *App) AddRunner(r Runner) {
	if r != nil {
		a.runners = append(a.runners, r)
	}
}

// AddCloser registers an infrastructure client for shutdown.
func (a *App) AddCloser(c Closer) {
	if c != nil {
		a.closers = append(a.closers, c)
	}
}

// Run starts everything and blocks until an interrupt arrives.
func (a *App) Run() error {
	for _, r := range a.runners {
		if err := r.Start(); err != nil {
			return err
		}
	}

	if err := a.server.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("app started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	for i := len(a.runners) - 1; i >= 0; i-- {
		if err := a.runners[i].Stop(ctx); err != nil {
			a.log.Warn("runner stop error", applogger.Error(err))
		}
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
