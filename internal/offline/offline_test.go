package offline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOrigin struct {
	e     *echo.Echo
	calls map[string]int
}

func newTestOrigin(w *Worker) *testOrigin {
	o := &testOrigin{e: echo.New(), calls: map[string]int{}}
	o.e.Use(w.Serve)
	serve := func(body, contentType string) echo.HandlerFunc {
		return func(c echo.Context) error {
			o.calls[c.Request().URL.Path]++
			return c.Blob(http.StatusOK, contentType, []byte(body))
		}
	}
	o.e.GET("/offline.html", serve("<h1>offline</h1>", echo.MIMETextHTMLCharsetUTF8))
	o.e.GET("/static/css/app.css", serve("body{}", "text/css"))
	o.e.GET("/static/js/app.js", serve("console.log(1)", "text/javascript"))
	o.e.GET("/static/broken.css", func(c echo.Context) error {
		o.calls[c.Request().URL.Path]++
		return errors.New("disk on fire")
	})
	o.e.GET("/app/guides", serve("private", echo.MIMETextHTMLCharsetUTF8))
	return o
}

func (o *testOrigin) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	o.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func newTestWorker(fs afero.Fs) *Worker {
	cfg := DefaultConfig()
	cfg.Precache = []string{"/offline.html", "/static/css/app.css", "/static/missing.css", "https://fonts.example.com/inter.css"}
	return NewWorker(NewStore(fs, "/cache"), cfg)
}

func TestInstall(t *testing.T) {
	w := newTestWorker(afero.NewMemMapFs())
	o := newTestOrigin(w)

	n, err := w.Install(context.Background(), o.e)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	c, err := w.cache()
	require.NoError(t, err)
	e, err := c.Match("/static/css/app.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(e.Body))
	assert.Equal(t, "text/css", e.ContentType)

	_, err = c.Match("/static/missing.css")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestServe_CacheFirst(t *testing.T) {
	w := newTestWorker(afero.NewMemMapFs())
	o := newTestOrigin(w)
	_, err := w.Install(context.Background(), o.e)
	require.NoError(t, err)
	installed := o.calls["/static/css/app.css"]

	rec := o.get("/static/css/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, "hit", rec.Header().Get("X-Offline-Cache"))
	assert.Equal(t, installed, o.calls["/static/css/app.css"])
}

func TestServe_MissThenStore(t *testing.T) {
	w := newTestWorker(afero.NewMemMapFs())
	o := newTestOrigin(w)

	first := o.get("/static/js/app.js")
	assert.Equal(t, "console.log(1)", first.Body.String())
	assert.Empty(t, first.Header().Get("X-Offline-Cache"))

	second := o.get("/static/js/app.js")
	assert.Equal(t, "console.log(1)", second.Body.String())
	assert.Equal(t, "hit", second.Header().Get("X-Offline-Cache"))
	assert.Equal(t, 1, o.calls["/static/js/app.js"])
}

func TestServe_OfflineFallback(t *testing.T) {
	w := newTestWorker(afero.NewMemMapFs())
	o := newTestOrigin(w)

	rec := o.get("/static/broken.css")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := w.Install(context.Background(), o.e)
	require.NoError(t, err)
	rec = o.get("/static/broken.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "offline")
}

func TestServe_PassThrough(t *testing.T) {
	w := newTestWorker(afero.NewMemMapFs())
	o := newTestOrigin(w)

	assert.Equal(t, http.StatusNotFound, o.get("/static/nope.css").Code)

	o.get("/app/guides")
	o.get("/app/guides")
	assert.Equal(t, 2, o.calls["/app/guides"], "pages outside the scope are never cached")
}

func TestActivate(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/cache")
	old, err := store.Open("personal-notebook-v2.2")
	require.NoError(t, err)
	require.NoError(t, old.Put(Entry{Key: "/x", Status: 200, Body: []byte("x")}))

	w := NewWorker(store, Config{})
	_, err = w.cache()
	require.NoError(t, err)

	removed, err := w.Activate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"personal-notebook-v2.2"}, removed)

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultCacheName}, names)
}

func TestStore_RejectsBadNames(t *testing.T) {
	store := NewStore(afero.NewMemMapFs(), "/cache")
	for _, name := range []string{"", "..", "a/b"} {
		_, err := store.Open(name)
		assert.Error(t, err, name)
	}
}

func TestServiceWorkerScript(t *testing.T) {
	w := NewWorker(NewStore(afero.NewMemMapFs(), "/cache"), Config{Precache: []string{"/offline.html"}})
	script, err := w.ServiceWorkerScript()
	require.NoError(t, err)
	s := string(script)
	assert.Contains(t, s, `const CACHE_NAME = "personal-notebook-v2.3";`)
	assert.Contains(t, s, `const PRECACHE = ["/offline.html"];`)
	assert.Contains(t, s, `const OFFLINE_PAGE = "/offline.html";`)

	e := echo.New()
	e.GET("/service-worker.js", w.ScriptHandler())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/service-worker.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Service-Worker-Allowed"))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "javascript")
}

func TestAssetKeys(t *testing.T) {
	dir := filepath.Join("web", "static")
	keys, err := assetKeys(dir, "/static", filepath.Join(dir, "css", "app.css"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/static/css/app.css"}, keys)

	keys, err = assetKeys(dir, "/static", filepath.Join(dir, "offline.html"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/static/offline.html", "/offline.html"}, keys)
}

func TestWatch_EvictsChangedFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file watcher test in short mode")
	}
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	file := filepath.Join(dir, "css", "app.css")
	require.NoError(t, os.WriteFile(file, []byte("a{}"), 0o644))

	w := NewWorker(NewStore(afero.NewMemMapFs(), "/cache"), Config{})
	c, err := w.cache()
	require.NoError(t, err)
	require.NoError(t, c.Put(Entry{Key: "/static/css/app.css", Status: 200, Body: []byte("a{}")}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, dir, "/static") }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(file, []byte("b{}"), 0o644)
		_, err := c.Match("/static/css/app.css")
		return errors.Is(err, ErrMiss)
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
