package offline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"

	"github.com/labstack/echo/v4"
)

var workerTemplate = template.Must(template.New("service-worker.js").Parse(`const CACHE_NAME = {{.CacheName}};
const PRECACHE = {{.Precache}};
const OFFLINE_PAGE = {{.OfflinePage}};
const SCOPE = {{.Scope}};

self.addEventListener('install', (event) => {
  event.waitUntil(
    caches.open(CACHE_NAME)
      .then((cache) => cache.addAll(PRECACHE))
      .catch((err) => console.log('Cache installation failed:', err))
  );
  self.skipWaiting();
});

self.addEventListener('activate', (event) => {
  event.waitUntil(
    caches.keys().then((names) => Promise.all(
      names.filter((name) => name !== CACHE_NAME).map((name) => caches.delete(name))
    ))
  );
  self.clients.claim();
});

self.addEventListener('message', (event) => {
  if (event.data && event.data.action === 'skipWaiting') {
    self.skipWaiting();
  }
});

const inScope = (url) => url.origin === self.location.origin &&
  SCOPE.some((prefix) => url.pathname.startsWith(prefix));

self.addEventListener('fetch', (event) => {
  const url = new URL(event.request.url);
  if (event.request.method !== 'GET') {
    return;
  }
  if (event.request.mode === 'navigate' && !inScope(url)) {
    event.respondWith(fetch(event.request).catch(() => caches.match(OFFLINE_PAGE)));
    return;
  }
  if (!inScope(url)) {
    return;
  }
  event.respondWith(
    caches.match(event.request).then((hit) => hit || fetch(event.request.clone()).then((response) => {
      if (!response || response.status !== 200 || response.type !== 'basic') {
        return response;
      }
      const copy = response.clone();
      caches.open(CACHE_NAME).then((cache) => cache.put(event.request, copy));
      return response;
    }).catch(() => caches.match(OFFLINE_PAGE)))
  );
});
`))

type scriptData struct {
	CacheName   string
	Precache    string
	OfflinePage string
	Scope       string
}

func jsLiteral(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ServiceWorkerScript renders the browser service worker for this worker's
// cache name, precache list and scope.
func (w *Worker) ServiceWorkerScript() ([]byte, error) {
	var data scriptData
	var err error
	for _, f := range []struct {
		dst *string
		v   any
	}{
		{&data.CacheName, w.cfg.CacheName},
		{&data.Precache, append([]string{}, w.cfg.Precache...)},
		{&data.OfflinePage, w.cfg.OfflinePage},
		{&data.Scope, append([]string{}, w.cfg.Scope...)},
	} {
		if *f.dst, err = jsLiteral(f.v); err != nil {
			return nil, fmt.Errorf("failed to encode service worker settings: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := workerTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render service worker: %w", err)
	}
	return buf.Bytes(), nil
}

// ScriptHandler serves the rendered service worker at the site root so its
// scope covers the whole app.
func (w *Worker) ScriptHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		script, err := w.ServiceWorkerScript()
		if err != nil {
			return err
		}
		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, "no-cache")
		h.Set("Service-Worker-Allowed", "/")
		return c.Blob(http.StatusOK, "application/javascript; charset=utf-8", script)
	}
}
