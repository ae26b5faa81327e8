package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/rendering"
	"github.com/nfrund/notebook/internal/view"
	"github.com/nfrund/notebook/web/src/templates/layouts"
	"github.com/nfrund/notebook/web/src/templates/pages"
)

// HomeHandler handles requests for the home page.
type HomeHandler struct {
	renderer rendering.Renderer
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(renderer rendering.Renderer) *HomeHandler {
	return &HomeHandler{renderer: renderer}
}

// HomeGet shows the landing page to visitors. Signed in users go back to the
// guide they last opened, or to their guide list.
func (h *HomeHandler) HomeGet(c echo.Context) error {
	// The token is checked by the /app middleware, the cookie is enough here.
	if cookie, err := c.Cookie(middleware.AuthCookieName); err == nil && cookie.Value != "" {
		if last := view.LoadAppState(c).LastGuide; last != "" {
			return c.Redirect(http.StatusSeeOther, pages.GuideURL(last))
		}
		return c.Redirect(http.StatusSeeOther, "/app/guides")
	}

	page := layouts.Page{Title: "Home", Flashes: view.GetFlashData(c)}
	return h.renderer.RenderPage(c, http.StatusOK, layouts.Base(page, pages.Home()))
}
