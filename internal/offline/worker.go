package offline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// DefaultCacheName is the asset cache version. Changing it makes Activate
// drop every older cache.
const DefaultCacheName = "personal-notebook-v2.3"

// DefaultOfflinePage is served when the origin fails and nothing is cached.
const DefaultOfflinePage = "/offline.html"

// installHeader marks the requests Install makes so Serve passes them
// straight to the origin.
const installHeader = "X-Offline-Install"

// Config describes what the worker caches.
type Config struct {
	CacheName   string
	Precache    []string
	OfflinePage string
	// Scope lists the path prefixes Serve handles. Everything else goes to
	// the origin untouched, so per-user pages are never cached.
	Scope []string
}

// DefaultConfig returns the cache layout of the notebook app.
func DefaultConfig() Config {
	return Config{
		CacheName: DefaultCacheName,
		Precache: []string{
			"/offline.html",
			"/manifest.json",
			"/static/css/app.css",
			"/static/js/app.js",
			"/static/icons/icon-192.png",
			"/static/icons/icon-512.png",
		},
		OfflinePage: DefaultOfflinePage,
		Scope:       []string{"/static/", "/offline.html", "/manifest.json"},
	}
}

// Worker is the server side twin of the service worker: it precaches
// assets, cleans up old caches and answers asset requests cache first.
type Worker struct {
	cfg   Config
	store *Store
	now   func() time.Time
}

// NewWorker creates a worker over store. Empty config fields fall back to
// DefaultConfig.
func NewWorker(store *Store, cfg Config) *Worker {
	def := DefaultConfig()
	if cfg.CacheName == "" {
		cfg.CacheName = def.CacheName
	}
	if cfg.OfflinePage == "" {
		cfg.OfflinePage = def.OfflinePage
	}
	if cfg.Scope == nil {
		cfg.Scope = def.Scope
	}
	return &Worker{cfg: cfg, store: store, now: time.Now}
}

// Config returns the effective configuration.
func (w *Worker) Config() Config { return w.cfg }

func (w *Worker) cache() (*Cache, error) {
	return w.store.Open(w.cfg.CacheName)
}

// Install fetches every precache path from origin and stores the successful
// responses. A path that fails is logged and skipped; the number of stored
// entries is returned.
func (w *Worker) Install(ctx context.Context, origin http.Handler) (int, error) {
	c, err := w.cache()
	if err != nil {
		return 0, err
	}
	stored := 0
	for _, p := range w.cfg.Precache {
		if !strings.HasPrefix(p, "/") {
			slog.WarnContext(ctx, "skipping precache entry outside this origin", "event", "offline_precache_skipped", "url", p)
			continue
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p, nil)
		if err != nil {
			return stored, err
		}
		req.Header.Set(installHeader, "1")
		rec := newRecorder()
		origin.ServeHTTP(rec, req)
		if rec.status != http.StatusOK {
			slog.WarnContext(ctx, "failed to precache asset", "event", "offline_precache_failed", "url", p, "status", rec.status)
			continue
		}
		if err := c.Put(w.entry(p, rec.status, rec.header.Get(echo.HeaderContentType), rec.body.Bytes())); err != nil {
			return stored, err
		}
		stored++
	}
	slog.InfoContext(ctx, "offline cache installed", "event", "offline_installed", "cache", w.cfg.CacheName, "entries", stored)
	return stored, nil
}

// Activate deletes every cache except the current one and returns the names
// it removed.
func (w *Worker) Activate(ctx context.Context) ([]string, error) {
	names, err := w.store.Names()
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, name := range names {
		if name == w.cfg.CacheName {
			continue
		}
		if err := w.store.Delete(name); err != nil {
			return removed, fmt.Errorf("failed to delete cache %s: %w", name, err)
		}
		slog.InfoContext(ctx, "deleted old offline cache", "event", "offline_cache_deleted", "cache", name)
		removed = append(removed, name)
	}
	return removed, nil
}

// Evict drops the cached copy of path from the current cache.
func (w *Worker) Evict(path string) error {
	c, err := w.cache()
	if err != nil {
		return err
	}
	return c.Remove(path)
}

func (w *Worker) inScope(p string) bool {
	for _, prefix := range w.cfg.Scope {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func (w *Worker) entry(key string, status int, contentType string, body []byte) Entry {
	return Entry{Key: key, Status: status, ContentType: contentType, StoredAt: w.now().UTC(), Body: body}
}

// Serve is the cache first middleware. A cached GET in scope is answered
// from the cache; otherwise the origin runs and a 200 answer is stored. When
// the origin fails the offline page is served instead.
func (w *Worker) Serve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		key := req.URL.Path
		if req.Method != http.MethodGet || req.Header.Get(installHeader) != "" || !w.inScope(key) {
			return next(c)
		}
		logger := slog.Default().With("path", key)

		cache, err := w.cache()
		if err != nil {
			logger.Error("offline cache unavailable", "event", "offline_cache_error", "error", err)
			return next(c)
		}
		if e, err := cache.Match(key); err == nil {
			c.Response().Header().Set("X-Offline-Cache", "hit")
			return c.Blob(e.Status, e.ContentType, e.Body)
		} else if !errors.Is(err, ErrMiss) {
			logger.Warn("offline cache read failed", "event", "offline_cache_error", "error", err)
		}

		tee := &teeWriter{ResponseWriter: c.Response().Writer}
		c.Response().Writer = tee
		err = next(c)
		c.Response().Writer = tee.ResponseWriter

		if err != nil {
			var he *echo.HTTPError
			if (errors.As(err, &he) && he.Code < http.StatusInternalServerError) || c.Response().Committed {
				return err
			}
			logger.Warn("origin failed, serving offline page", "event", "offline_fallback", "error", err)
			return w.serveOfflinePage(c, cache)
		}
		if c.Response().Committed && c.Response().Status == http.StatusOK {
			e := w.entry(key, http.StatusOK, c.Response().Header().Get(echo.HeaderContentType), tee.body.Bytes())
			if err := cache.Put(e); err != nil {
				logger.Warn("failed to store asset", "event", "offline_cache_error", "error", err)
			}
		}
		return nil
	}
}

func (w *Worker) serveOfflinePage(c echo.Context, cache *Cache) error {
	e, err := cache.Match(w.cfg.OfflinePage)
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "You are offline.")
	}
	return c.Blob(e.Status, e.ContentType, e.Body)
}

// teeWriter copies everything written to the response.
type teeWriter struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (t *teeWriter) Write(b []byte) (int, error) {
	t.body.Write(b)
	return t.ResponseWriter.Write(b)
}

// recorder collects a response produced by the origin during Install.
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header         { return r.header }
func (r *recorder) Write(b []byte) (int, error) { return r.body.Write(b) }
func (r *recorder) WriteHeader(status int)      { r.status = status }
