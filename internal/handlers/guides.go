package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/color"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/guides"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/rendering"
	"github.com/nfrund/notebook/internal/view"
	"github.com/nfrund/notebook/web/src/templates/layouts"
	"github.com/nfrund/notebook/web/src/templates/pages"
	cmp "maragu.dev/gomponents"
)

// GuidePages serves the htmx driven guide pages. Mutations answer htmx
// requests with the re-rendered board and plain form posts with a redirect
// back to the guide.
type GuidePages struct {
	svc      *guides.Service
	renderer rendering.Renderer
}

// NewGuidePages creates a GuidePages handler.
func NewGuidePages(svc *guides.Service, renderer rendering.Renderer) *GuidePages {
	return &GuidePages{svc: svc, renderer: renderer}
}

// uid is the owner key of the signed in user; empty when nobody is signed
// in, which the service rejects.
func uid(c echo.Context) string {
	return middleware.UserFrom(c).Key()
}

func redirect(c echo.Context, to string) error {
	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", to)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, to)
}

func (h *GuidePages) pageData(c echo.Context, g *domain.Guide) pages.GuideData {
	state := view.LoadAppState(c)
	d := pages.GuideData{
		Guide:    g,
		Progress: guides.ProgressOf(g),
		Tab:      state.Tab(g.ID),
		EditMode: state.EditMode,
	}
	if g.Kind == domain.KindJournal {
		d.Filter = domain.EntryFilter{Tag: c.QueryParam("tag"), Mood: domain.Mood(c.QueryParam("mood"))}
		d.Entries = g.FilterEntries(d.Filter)
	}
	return d
}

func fragment(d pages.GuideData) cmp.Node {
	if d.Guide.Kind == domain.KindJournal {
		return pages.Journal(d)
	}
	return pages.Board(d)
}

// board answers a mutation of g.
func (h *GuidePages) board(c echo.Context, g *domain.Guide) error {
	if !middleware.IsHTMX(c) {
		return c.Redirect(http.StatusSeeOther, pages.GuideURL(g.ID))
	}
	return h.renderer.RenderPage(c, http.StatusOK, fragment(h.pageData(c, g)))
}

// List renders the user's guides (GET /app/guides).
func (h *GuidePages) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), uid(c))
	if err != nil {
		return err
	}
	page := layouts.Page{Title: "My guides", Flashes: view.GetFlashData(c), SignedIn: true}
	return h.renderer.RenderPage(c, http.StatusOK, layouts.Base(page, pages.GuideList(list)))
}

// Create starts a new guide (POST /app/guides).
func (h *GuidePages) Create(c echo.Context) error {
	var in guides.CreateInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	g, err := h.svc.Create(c.Request().Context(), uid(c), in)
	if err != nil {
		return err
	}
	return redirect(c, pages.GuideURL(g.ID))
}

// Show renders a guide (GET /app/guides/:gid). A ?tab= query selects the
// category tab; htmx requests get only the board.
func (h *GuidePages) Show(c echo.Context) error {
	g, err := h.svc.Get(c.Request().Context(), uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	_, err = view.UpdateAppState(c, func(s *view.AppState) {
		s.LastGuide = g.ID
		if raw := c.QueryParam("tab"); raw != "" {
			s.Tabs[g.ID] = view.TabParam(raw, s.Tab(g.ID))
		}
	})
	if err != nil {
		middleware.FromContext(c.Request().Context()).Warn("failed to save app state", "event", "app_state_failed", "error", err)
	}

	d := h.pageData(c, g)
	if middleware.IsHTMX(c) {
		return h.renderer.RenderPage(c, http.StatusOK, fragment(d))
	}
	page := layouts.Page{Title: g.Title, Flashes: view.GetFlashData(c), SignedIn: true, ThemeColor: g.ThemeColor}
	if p, err := color.NewPalette(g.ThemeColor); err == nil {
		page.ThemeStyle = p.CSSVars()
	}
	return h.renderer.RenderPage(c, http.StatusOK, layouts.Base(page, pages.GuidePage(d)))
}

// ToggleEditMode flips edit mode for every guide.
func (h *GuidePages) ToggleEditMode(c echo.Context) error {
	if _, err := view.UpdateAppState(c, func(s *view.AppState) { s.EditMode = !s.EditMode }); err != nil {
		return err
	}
	return redirect(c, pages.GuideURL(c.Param("gid")))
}

// UpdateMeta saves the guide header form.
func (h *GuidePages) UpdateMeta(c echo.Context) error {
	p := guides.MetaPatch{
		Title:      formString(c, "title"),
		Subtitle:   formString(c, "subtitle"),
		Icon:       formString(c, "icon"),
		ThemeColor: formString(c, "theme_color"),
	}
	if l := formString(c, "layout"); l != nil {
		layout := domain.Layout(*l)
		p.Layout = &layout
	}
	g, err := h.svc.UpdateMeta(c.Request().Context(), uid(c), c.Param("gid"), p)
	if err != nil {
		return err
	}
	return redirect(c, pages.GuideURL(g.ID))
}

// Delete removes the guide and returns to the list.
func (h *GuidePages) Delete(c echo.Context) error {
	gid := c.Param("gid")
	if err := h.svc.Delete(c.Request().Context(), uid(c), gid); err != nil {
		return err
	}
	_, _ = view.UpdateAppState(c, func(s *view.AppState) {
		delete(s.Tabs, gid)
		if s.LastGuide == gid {
			s.LastGuide = ""
		}
	})
	view.SetFlashSuccess(c, "Guide deleted.")
	return redirect(c, "/app/guides")
}

// Duplicate copies the guide and opens the copy.
func (h *GuidePages) Duplicate(c echo.Context) error {
	g, err := h.svc.Duplicate(c.Request().Context(), uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	view.SetFlashSuccess(c, "Guide duplicated.")
	return redirect(c, pages.GuideURL(g.ID))
}

// ResetChecks unchecks every item.
func (h *GuidePages) ResetChecks(c echo.Context) error {
	g, err := h.svc.ResetChecks(c.Request().Context(), uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	return h.board(c, g)
}

func (h *GuidePages) selectTab(c echo.Context, g *domain.Guide, tab int) error {
	if _, err := view.UpdateAppState(c, func(s *view.AppState) { s.Tabs[g.ID] = tab }); err != nil {
		return err
	}
	return h.board(c, g)
}

// SelectTab shows category tab :ci.
func (h *GuidePages) SelectTab(c echo.Context) error {
	ci, err := index(c, "ci")
	if err != nil {
		return err
	}
	g, err := h.svc.Get(c.Request().Context(), uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	return h.selectTab(c, g, ci)
}

// SwipeTabs moves to the neighbouring tab after a swipe over the tab strip.
func (h *GuidePages) SwipeTabs(c echo.Context) error {
	var req SwipeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	g, err := h.svc.Get(c.Request().Context(), uid(c), c.Param("gid"))
	if err != nil {
		return err
	}
	return h.selectTab(c, g, h.svc.TabAfterSwipe(g, req.Tab, req.Swipe()))
}
