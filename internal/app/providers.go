package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/notebook/internal/cache"
	"github.com/nfrund/notebook/internal/config"
	"github.com/nfrund/notebook/internal/database"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/email"
	"github.com/nfrund/notebook/internal/guides"
	"github.com/nfrund/notebook/internal/offline"
	"github.com/nfrund/notebook/internal/pubsub"
	"github.com/nfrund/notebook/internal/realtime"
	"github.com/nfrund/notebook/internal/rendering"
	"github.com/nfrund/notebook/internal/retry"
	"github.com/nfrund/notebook/internal/server"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
)

const (
	// rootDB signs in as the configured database user and owns the schema.
	rootDB = "db.root"
	// accessDB is used only for record access sign up and sign in.
	accessDB = "db.access"
)

func (a *App) provide() {
	i := a.injector

	do.ProvideValue[config.Provider](i, a.cfg)

	do.ProvideNamed(i, rootDB, func(i do.Injector) (*database.Connection, error) {
		conn := database.NewConnection(a.cfg)
		if err := a.connect(conn, "database"); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := database.ApplySchema(ctx, conn); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		conn.StartMonitoring()
		return conn, nil
	})

	do.ProvideNamed(i, accessDB, func(i do.Injector) (*database.Connection, error) {
		conn := database.NewAccessConnection(a.cfg)
		if err := a.connect(conn, "access connection"); err != nil {
			return nil, err
		}
		return conn, nil
	})

	do.Provide(i, func(i do.Injector) (domain.UserRepository, error) {
		root, err := do.InvokeNamed[*database.Connection](i, rootDB)
		if err != nil {
			return nil, err
		}
		access, err := do.InvokeNamed[*database.Connection](i, accessDB)
		if err != nil {
			return nil, err
		}
		client, err := database.NewClient[domain.User](root)
		if err != nil {
			return nil, fmt.Errorf("failed to create user client: %w", err)
		}
		return database.NewUserStore(client, access), nil
	})

	do.Provide(i, func(i do.Injector) (cache.Cache, error) {
		url := a.cfg.GetRedisURL()
		if url == "" {
			slog.Info("REDIS_URL not set, caching guides in memory", "event", "cache_memory")
			return cache.NewMemory(), nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		c, err := cache.NewRedis(ctx, url)
		if err != nil {
			return nil, err
		}
		a.onShutdown("redis", func(context.Context) error { return c.Close() })
		return c, nil
	})

	do.Provide(i, func(i do.Injector) (*cache.GuideRepository, error) {
		root, err := do.InvokeNamed[*database.Connection](i, rootDB)
		if err != nil {
			return nil, err
		}
		store, err := database.NewGuideStore(root)
		if err != nil {
			return nil, fmt.Errorf("failed to create guide store: %w", err)
		}
		c, err := do.Invoke[cache.Cache](i)
		if err != nil {
			return nil, err
		}
		return cache.NewGuideRepository(store, c, a.cfg.GetCacheTTL()), nil
	})

	do.Provide(i, func(i do.Injector) (*guides.Service, error) {
		repo, err := do.Invoke[*cache.GuideRepository](i)
		if err != nil {
			return nil, err
		}
		policy := retry.Policy{MaxRetries: a.cfg.GetRetryMax(), BaseDelay: a.cfg.GetRetryBaseDelay()}
		return guides.NewService(repo, policy), nil
	})

	do.Provide(i, func(i do.Injector) (*pubsub.Bus, error) {
		bus := pubsub.NewBus(busBufferSize)
		a.onShutdown("event bus", func(context.Context) error { return bus.Close() })
		return bus, nil
	})

	do.Provide(i, func(i do.Injector) (database.LiveQueryService, error) {
		root, err := do.InvokeNamed[*database.Connection](i, rootDB)
		if err != nil {
			return nil, err
		}
		live := database.NewSurrealLiveQueryService(root)
		a.onShutdown("live queries", func(context.Context) error {
			live.Close()
			return nil
		})
		return live, nil
	})

	do.Provide(i, func(i do.Injector) (*realtime.Hub, error) {
		return realtime.NewHub(), nil
	})

	do.Provide(i, func(i do.Injector) (*realtime.Watcher, error) {
		live, err := do.Invoke[database.LiveQueryService](i)
		if err != nil {
			return nil, err
		}
		repo, err := do.Invoke[*cache.GuideRepository](i)
		if err != nil {
			return nil, err
		}
		return realtime.NewWatcher(live, do.MustInvoke[*pubsub.Bus](i), repo), nil
	})

	do.Provide(i, func(i do.Injector) (*offline.Worker, error) {
		cfg := offline.DefaultConfig()
		if name := a.cfg.GetOfflineCacheName(); name != "" {
			cfg.CacheName = name
		}
		fs := afero.NewBasePathFs(afero.NewOsFs(), offlineCacheDir())
		return offline.NewWorker(offline.NewStore(fs, "/"), cfg), nil
	})

	do.Provide(i, func(i do.Injector) (domain.EmailSender, error) {
		return email.NewEmailService(a.cfg)
	})

	do.Provide(i, func(i do.Injector) (rendering.Renderer, error) {
		return rendering.NewUniversalRenderer(), nil
	})

	do.Provide(i, func(i do.Injector) (*server.Server, error) {
		users, err := do.Invoke[domain.UserRepository](i)
		if err != nil {
			return nil, err
		}
		svc, err := do.Invoke[*guides.Service](i)
		if err != nil {
			return nil, err
		}
		emailer, err := do.Invoke[domain.EmailSender](i)
		if err != nil {
			return nil, err
		}
		s, err := server.New(server.Dependencies{
			Config:    a.cfg,
			Emailer:   emailer,
			UserStore: users,
			Guides:    svc,
			Renderer:  do.MustInvoke[rendering.Renderer](i),
			Hub:       do.MustInvoke[*realtime.Hub](i),
			Offline:   do.MustInvoke[*offline.Worker](i),
		})
		if err != nil {
			return nil, err
		}
		s.RegisterRoutes()
		return s, nil
	})
}

// connect opens conn and registers it for shutdown.
func (a *App) connect(conn *database.Connection, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect %s: %w", name, err)
	}
	a.onShutdown(name, conn.Close)
	return nil
}
