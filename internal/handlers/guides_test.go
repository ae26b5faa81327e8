package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/guides"
	"github.com/nfrund/notebook/internal/handlers"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/rendering"
	"github.com/nfrund/notebook/internal/retry"
	"github.com/nfrund/notebook/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// testUserHeader names the user a test request acts as.
const testUserHeader = "X-Test-User"

// asUser puts a verified user named by testUserHeader on the context.
func asUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if name := c.Request().Header.Get(testUserHeader); name != "" {
			id := surrealmodels.NewRecordID("user", name)
			c.Set(middleware.UserContextKey, &domain.User{ID: &id, Email: name + "@example.com", EmailVerified: true})
		}
		return next(c)
	}
}

// jsonErrors reports handler errors the way the API error handler does.
func jsonErrors(err error, c echo.Context) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, he.Message)
		return
	}
	d := view.DialogFor(err)
	_ = c.JSON(d.Status, handlers.ErrorResponse{Code: d.Code, Message: d.Message})
}

func setupGuidesTest(t *testing.T) (*echo.Echo, *guides.Service) {
	t.Helper()
	svc := guides.NewService(guides.NewMemoryRepository(), retry.Policy{MaxRetries: 1, BaseDelay: time.Millisecond})

	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = jsonErrors
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(testSessionSecret))))
	e.Use(asUser)

	pages := handlers.NewGuidePages(svc, rendering.NewUniversalRenderer())
	app := e.Group("/app/guides")
	app.GET("", pages.List)
	app.POST("", pages.Create)
	app.GET("/:gid", pages.Show)
	app.POST("/:gid/edit", pages.ToggleEditMode)
	app.POST("/:gid/delete", pages.Delete)
	app.POST("/:gid/tabs/swipe", pages.SwipeTabs)
	app.POST("/:gid/tabs/:ci", pages.SelectTab)
	app.POST("/:gid/categories", pages.AddCategory)
	app.POST("/:gid/categories/:ci/skills/:si/items", pages.AddItem)
	app.POST("/:gid/categories/:ci/skills/:si/items/:ii/toggle", pages.ToggleItem)
	app.POST("/:gid/categories/:ci/skills/:si/items/:ii/swipe", pages.SwipeItem)
	app.POST("/:gid/entries", pages.AddEntry)

	api := handlers.NewGuidesAPI(svc)
	v1 := e.Group("/api/v1/guides")
	v1.GET("", api.List)
	v1.POST("", api.Create)
	v1.GET("/:gid", api.Get)
	v1.DELETE("/:gid", api.Delete)
	v1.POST("/:gid/duplicate", api.Duplicate)
	v1.GET("/:gid/progress", api.Progress)
	v1.POST("/:gid/categories/:ci/skills/:si/items", api.AddItem)
	v1.POST("/:gid/categories/:ci/skills/:si/items/:ii/toggle", api.ToggleItem)
	v1.POST("/:gid/categories/:ci/skills/:si/items/:ii/gesture", api.ItemGesture)
	v1.GET("/:gid/entries", api.Entries)
	v1.POST("/:gid/entries", api.AddEntry)

	data := handlers.NewDataAPI(svc)
	e.GET("/api/v1/data/*", data.Get)
	e.PUT("/api/v1/data/*", data.Put)
	e.DELETE("/api/v1/data/*", data.Delete)

	share := handlers.NewShareHandler(svc, "https://notebook.example.com")
	app.GET("/:gid/export.xlsx", share.ExportXLSX)
	app.GET("/:gid/qr.png", share.QRCode)
	return e, svc
}

type testRequest struct {
	method, path, user string
	body               io.Reader
	contentType        string
	htmx               bool
	cookies            []*http.Cookie
}

func serve(e *echo.Echo, r testRequest) *httptest.ResponseRecorder {
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set(echo.HeaderContentType, r.contentType)
	}
	if r.user != "" {
		req.Header.Set(testUserHeader, r.user)
	}
	if r.htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, user, body string) testRequest {
	return testRequest{method: method, path: path, user: user, body: strings.NewReader(body), contentType: echo.MIMEApplicationJSON}
}

func formRequest(path, user string, form url.Values, htmx bool) testRequest {
	return testRequest{method: http.MethodPost, path: path, user: user, body: strings.NewReader(form.Encode()), contentType: echo.MIMEApplicationForm, htmx: htmx}
}

func createGuide(t *testing.T, svc *guides.Service, kind domain.GuideKind) *domain.Guide {
	t.Helper()
	g, err := svc.Create(t.Context(), "user:alice", guides.CreateInput{Title: "Trip", Kind: kind})
	require.NoError(t, err)
	return g
}

func TestGuidePages_List(t *testing.T) {
	e, svc := setupGuidesTest(t)
	createGuide(t, svc, domain.KindChecklist)

	rec := serve(e, testRequest{method: http.MethodGet, path: "/app/guides", user: "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="guides"`)
	assert.Contains(t, rec.Body.String(), "Trip")
}

func TestGuidePages_CreateRedirectsToGuide(t *testing.T) {
	e, svc := setupGuidesTest(t)

	rec := serve(e, formRequest("/app/guides", "alice", url.Values{"title": {"Camping"}}, false))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	list, err := svc.List(t.Context(), "user:alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Camping", list[0].Title)
	assert.Equal(t, "/app/guides/"+list[0].ID, rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, formRequest("/app/guides", "alice", url.Values{"title": {"Hiking"}}, true))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("HX-Redirect"), "/app/guides/g"))
}

func TestGuidePages_Show(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)

	t.Run("full page", func(t *testing.T) {
		rec := serve(e, testRequest{method: http.MethodGet, path: "/app/guides/" + g.ID, user: "alice"})
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<head")
		assert.Contains(t, body, "Trip - Notebook")
		assert.Contains(t, body, `id="board"`)
	})

	t.Run("htmx gets the board only", func(t *testing.T) {
		rec := serve(e, testRequest{method: http.MethodGet, path: "/app/guides/" + g.ID, user: "alice", htmx: true})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "<head")
		assert.Contains(t, rec.Body.String(), `id="board"`)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		rec := serve(e, testRequest{method: http.MethodGet, path: "/app/guides/" + g.ID, user: "bob"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGuidePages_ToggleItem(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)
	path := "/app/guides/" + g.ID + "/categories/0/skills/0/items/1/toggle"

	rec := serve(e, formRequest(path, "alice", nil, true))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="item checked"`)
	assert.Contains(t, rec.Body.String(), "1/3")

	rec = serve(e, formRequest(path, "alice", nil, false))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/app/guides/"+g.ID, rec.Header().Get(echo.HeaderLocation))

	stored, err := svc.Get(t.Context(), "user:alice", g.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsChecked(0, 0, 1), "second toggle unchecks the item")
}

func TestGuidePages_SwipeItem(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)
	base := "/app/guides/" + g.ID + "/categories/0/skills/0/items/"

	rec := serve(e, formRequest(base+"0/swipe", "alice", url.Values{"dx": {"140"}, "dy": {"4"}, "duration_ms": {"180"}}, true))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, formRequest(base+"2/swipe", "alice", url.Values{"dx": {"-140"}, "dy": {"0"}, "duration_ms": {"180"}}, true))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := svc.Get(t.Context(), "user:alice", g.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsChecked(0, 0, 0))
	assert.Len(t, stored.Categories[0].Skills[0].Items, 2)
}

func TestGuidePages_Tabs(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)

	rec := serve(e, formRequest("/app/guides/"+g.ID+"/categories", "alice", url.Values{"name": {"Packing"}}, true))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Packing")
	assert.Contains(t, rec.Body.String(), `data-tab="1"`, "a new tab is selected")

	rec = serve(e, formRequest("/app/guides/"+g.ID+"/tabs/swipe", "alice",
		url.Values{"dx": {"130"}, "dy": {"0"}, "duration_ms": {"200"}, "tab": {"1"}}, true))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-tab="0"`)

	rec = serve(e, formRequest("/app/guides/"+g.ID+"/tabs/x", "alice", nil, true))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuidePages_EditModeIsRemembered(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)

	rec := serve(e, formRequest("/app/guides/"+g.ID+"/edit", "alice", nil, false))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serve(e, testRequest{
		method: http.MethodGet, path: "/app/guides/" + g.ID, user: "alice", htmx: true,
		cookies: rec.Result().Cookies(),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `contenteditable="true"`)
}

func TestGuidePages_JournalEntry(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindJournal)

	form := url.Values{"title": {"Day one"}, "tags": {"trip, rain"}, "mood": {"good"}, "content": {"**Wet** <b>socks</b>"}}
	rec := serve(e, formRequest("/app/guides/"+g.ID+"/entries", "alice", form, true))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>Wet</strong>")
	assert.NotContains(t, body, "<b>socks</b>")
	assert.Contains(t, body, "?tag=trip")
}

func TestGuidePages_DeleteRedirectsToList(t *testing.T) {
	e, svc := setupGuidesTest(t)
	g := createGuide(t, svc, domain.KindChecklist)

	rec := serve(e, formRequest("/app/guides/"+g.ID+"/delete", "alice", nil, false))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/app/guides", rec.Header().Get(echo.HeaderLocation))

	_, err := svc.Get(t.Context(), "user:alice", g.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
