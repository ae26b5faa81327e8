package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/handlers"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/rendering"
	"github.com/stretchr/testify/assert"
)

func TestHomeGet(t *testing.T) {
	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(testSessionSecret))))
	e.GET("/", handlers.NewHomeHandler(rendering.NewUniversalRenderer()).HomeGet)

	t.Run("visitors see the landing page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Get started")
	})

	t.Run("signed in users go to their guides", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "token"})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/app/guides", rec.Header().Get(echo.HeaderLocation))
	})
}
