package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/handlers"
	"github.com/nfrund/notebook/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	homeHandler := handlers.NewHomeHandler(s.Renderer)
	authHandler := handlers.NewAuthHandler(s.UserStore, s.Emailer, s.Renderer, s.Cfg.GetAppBaseURL())
	guidePages := handlers.NewGuidePages(s.Guides, s.Renderer)
	guidesAPI := handlers.NewGuidesAPI(s.Guides)
	dataAPI := handlers.NewDataAPI(s.Guides)
	share := handlers.NewShareHandler(s.Guides, s.Cfg.GetAppBaseURL())
	rateLimiter := middleware.RateLimiter(middleware.DefaultAuthRequestsPerMinute)
	auth := middleware.Auth(s.UserStore)

	s.E.GET("/", homeHandler.HomeGet)
	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Offline assets. Only these paths go through the cache.
	s.E.GET("/service-worker.js", s.Offline.ScriptHandler())
	s.E.GET("/static/*", echo.StaticDirectoryHandler(s.assets, false), s.Offline.Serve)
	s.E.FileFS("/offline.html", "offline.html", s.assets, s.Offline.Serve)
	s.E.FileFS("/manifest.json", "manifest.json", s.assets, s.Offline.Serve)

	a := s.E.Group("/auth")
	a.GET("/register", authHandler.RegisterGet)
	a.POST("/register", authHandler.RegisterPost, rateLimiter)
	a.GET("/login", authHandler.LoginGet)
	a.POST("/login", authHandler.LoginPost, rateLimiter)
	a.POST("/logout", authHandler.Logout)
	a.GET("/verify", authHandler.Verify)
	a.GET("/unverified", authHandler.Unverified, auth)
	a.POST("/resend", authHandler.ResendVerification, auth, rateLimiter)

	app := s.E.Group("/app", auth, middleware.RequireVerified())
	app.GET("/sync", s.Hub.Handler())
	registerGuidePages(app.Group("/guides"), guidePages, share)

	api := s.E.Group("/api/v1", auth, middleware.RequireVerified())
	registerGuidesAPI(api.Group("/guides"), guidesAPI)
	api.GET("/data/*", dataAPI.Get)
	api.PUT("/data/*", dataAPI.Put)
	api.DELETE("/data/*", dataAPI.Delete)
}

func registerGuidePages(g *echo.Group, h *handlers.GuidePages, share *handlers.ShareHandler) {
	g.GET("", h.List)
	g.POST("", h.Create)

	g.GET("/:gid", h.Show)
	g.POST("/:gid/meta", h.UpdateMeta)
	g.POST("/:gid/edit", h.ToggleEditMode)
	g.POST("/:gid/reset", h.ResetChecks)
	g.POST("/:gid/duplicate", h.Duplicate)
	g.POST("/:gid/delete", h.Delete)
	g.GET("/:gid/export.xlsx", share.ExportXLSX)
	g.GET("/:gid/qr.png", share.QRCode)

	g.POST("/:gid/tabs/swipe", h.SwipeTabs)
	g.POST("/:gid/tabs/:ci", h.SelectTab)

	g.POST("/:gid/categories", h.AddCategory)
	g.POST("/:gid/categories/:ci", h.UpdateCategory)
	g.POST("/:gid/categories/:ci/move", h.MoveCategory)
	g.POST("/:gid/categories/:ci/delete", h.DeleteCategory)

	g.POST("/:gid/skills/move", h.MoveSkill)
	g.POST("/:gid/categories/:ci/skills", h.AddSkill)
	g.POST("/:gid/categories/:ci/skills/:si", h.UpdateSkill)
	g.POST("/:gid/categories/:ci/skills/:si/collapse", h.CollapseSkill)
	g.POST("/:gid/categories/:ci/skills/:si/delete", h.DeleteSkill)

	g.POST("/:gid/categories/:ci/skills/:si/items", h.AddItem)
	g.POST("/:gid/categories/:ci/skills/:si/items/move", h.MoveItem)
	g.POST("/:gid/categories/:ci/skills/:si/items/:ii", h.UpdateItem)
	g.POST("/:gid/categories/:ci/skills/:si/items/:ii/toggle", h.ToggleItem)
	g.POST("/:gid/categories/:ci/skills/:si/items/:ii/swipe", h.SwipeItem)
	g.POST("/:gid/categories/:ci/skills/:si/items/:ii/delete", h.DeleteItem)

	g.POST("/:gid/entries", h.AddEntry)
	g.POST("/:gid/entries/:eid", h.UpdateEntry)
	g.POST("/:gid/entries/:eid/delete", h.DeleteEntry)
}

func registerGuidesAPI(g *echo.Group, a *handlers.GuidesAPI) {
	g.GET("", a.List)
	g.POST("", a.Create)

	g.GET("/:gid", a.Get)
	g.PATCH("/:gid", a.UpdateMeta)
	g.DELETE("/:gid", a.Delete)
	g.POST("/:gid/duplicate", a.Duplicate)
	g.GET("/:gid/progress", a.Progress)
	g.POST("/:gid/reset", a.ResetChecks)

	g.POST("/:gid/categories", a.AddCategory)
	g.PATCH("/:gid/categories/:ci", a.UpdateCategory)
	g.DELETE("/:gid/categories/:ci", a.DeleteCategory)
	g.POST("/:gid/categories/:ci/move", a.MoveCategory)

	g.POST("/:gid/skills/move", a.MoveSkill)
	g.POST("/:gid/categories/:ci/skills", a.AddSkill)
	g.PATCH("/:gid/categories/:ci/skills/:si", a.UpdateSkill)
	g.DELETE("/:gid/categories/:ci/skills/:si", a.DeleteSkill)

	g.POST("/:gid/categories/:ci/skills/:si/items", a.AddItem)
	g.POST("/:gid/categories/:ci/skills/:si/items/move", a.MoveItem)
	g.PUT("/:gid/categories/:ci/skills/:si/items/:ii", a.UpdateItem)
	g.DELETE("/:gid/categories/:ci/skills/:si/items/:ii", a.DeleteItem)
	g.POST("/:gid/categories/:ci/skills/:si/items/:ii/toggle", a.ToggleItem)
	g.POST("/:gid/categories/:ci/skills/:si/items/:ii/gesture", a.ItemGesture)

	g.GET("/:gid/entries", a.Entries)
	g.POST("/:gid/entries", a.AddEntry)
	g.PUT("/:gid/entries/:eid", a.UpdateEntry)
	g.DELETE("/:gid/entries/:eid", a.DeleteEntry)
}
