// Package app wires the notebook services together and runs them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nfrund/notebook/internal/config"
	"github.com/nfrund/notebook/internal/offline"
	"github.com/nfrund/notebook/internal/pubsub"
	"github.com/nfrund/notebook/internal/realtime"
	"github.com/nfrund/notebook/internal/server"
	"github.com/samber/do/v2"
)

const (
	connectTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second

	// busBufferSize is the per subscriber queue of the in process bus.
	busBufferSize = 256
)

// closer is a cleanup step registered by a provider once its service is
// built. Steps run in reverse order on shutdown.
type closer struct {
	name string
	fn   func(ctx context.Context) error
}

// App owns the dependency container and the lifetime of everything in it.
type App struct {
	cfg      config.Provider
	injector *do.RootScope
	closers  []closer
}

// New builds the container. Services are constructed lazily, so nothing
// connects to the database until Run asks for the server.
func New(cfg config.Provider) *App {
	a := &App{cfg: cfg, injector: do.New()}
	a.provide()
	return a
}

// Injector exposes the container, mainly for tests.
func (a *App) Injector() do.Injector { return a.injector }

func (a *App) onShutdown(name string, fn func(ctx context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Run starts the background work and serves HTTP until ctx is done, then
// shuts everything down.
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	srv, err := do.Invoke[*server.Server](a.injector)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	bus := do.MustInvoke[*pubsub.Bus](a.injector)
	hub := do.MustInvoke[*realtime.Hub](a.injector)
	if err := hub.Start(ctx, bus); err != nil {
		return fmt.Errorf("failed to start sync hub: %w", err)
	}
	a.onShutdown("sync hub", func(context.Context) error {
		hub.Close()
		return nil
	})

	// Sync is an optional extra; the notebook works without live updates.
	watcher := do.MustInvoke[*realtime.Watcher](a.injector)
	if err := watcher.Start(ctx); err != nil {
		slog.Warn("live updates disabled", "event", "guide_watch_failed", "error", err)
	} else {
		a.onShutdown("guide watcher", func(context.Context) error { return watcher.Stop() })
	}

	worker := do.MustInvoke[*offline.Worker](a.injector)
	if removed, err := worker.Activate(ctx); err != nil {
		slog.Warn("failed to clear old offline caches", "event", "offline_activate_failed", "error", err)
	} else if len(removed) > 0 {
		slog.Info("old offline caches removed", "event", "offline_activated", "caches", removed)
	}
	if _, err := worker.Install(ctx, srv.E); err != nil {
		slog.Warn("failed to precache assets", "event", "offline_install_failed", "error", err)
	}
	if a.cfg.GetOfflineWatch() {
		go func() {
			if err := worker.Watch(ctx, a.cfg.GetStaticDir(), "/static"); err != nil {
				slog.Warn("asset watcher stopped", "event", "offline_watch_failed", "error", err)
			}
		}()
	}

	return srv.Start(ctx)
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	a.injector.Shutdown()

	if err := errors.Join(errs...); err != nil {
		slog.Error("shutdown finished with errors", "event", "shutdown_failed", "error", err)
		return
	}
	slog.Info("all services stopped", "event", "shutdown_complete")
}

// offlineCacheDir is where the asset cache lives between restarts.
func offlineCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "notebook", "offline")
}
