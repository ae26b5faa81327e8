package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/notebook/internal/config"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/guides"
	"github.com/nfrund/notebook/internal/handlers"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/offline"
	"github.com/nfrund/notebook/internal/realtime"
	"github.com/nfrund/notebook/internal/rendering"
	"github.com/nfrund/notebook/web"
)

// sessionMaxAge keeps flash, form and app state sessions for a week.
const sessionMaxAge = 86400 * 7

// Dependencies holds everything the HTTP server needs. Echo is optional.
type Dependencies struct {
	Config    config.Provider
	Emailer   domain.EmailSender
	UserStore domain.UserRepository
	Guides    *guides.Service
	Renderer  rendering.Renderer
	Hub       *realtime.Hub
	Offline   *offline.Worker
	Echo      *echo.Echo
}

func (d Dependencies) validate() error {
	var errs []error
	if d.Config == nil {
		errs = append(errs, errors.New("config is required"))
	}
	if d.Emailer == nil {
		errs = append(errs, errors.New("emailer is required"))
	}
	if d.UserStore == nil {
		errs = append(errs, errors.New("user store is required"))
	}
	if d.Guides == nil {
		errs = append(errs, errors.New("guides service is required"))
	}
	if d.Renderer == nil {
		errs = append(errs, errors.New("renderer is required"))
	}
	if d.Hub == nil {
		errs = append(errs, errors.New("sync hub is required"))
	}
	if d.Offline == nil {
		errs = append(errs, errors.New("offline worker is required"))
	}
	return errors.Join(errs...)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E         *echo.Echo
	Cfg       config.Provider
	Emailer   domain.EmailSender
	UserStore domain.UserRepository
	Guides    *guides.Service
	Renderer  rendering.Renderer
	Hub       *realtime.Hub
	Offline   *offline.Worker

	assets fs.FS
}

// New creates a Server with its middleware stack and error handler. Routes
// are added by RegisterRoutes.
func New(deps Dependencies) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	e := deps.Echo
	if e == nil {
		e = echo.New()
	}
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	if r, ok := deps.Renderer.(echo.Renderer); ok {
		e.Renderer = r
	}
	setupErrorHandling(e)

	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())

	store := sessions.NewCookieStore([]byte(deps.Config.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	return &Server{
		E:         e,
		Cfg:       deps.Config,
		Emailer:   deps.Emailer,
		UserStore: deps.UserStore,
		Guides:    deps.Guides,
		Renderer:  deps.Renderer,
		Hub:       deps.Hub,
		Offline:   deps.Offline,
		assets:    assetsFor(deps.Config),
	}, nil
}

// assetsFor serves the embedded assets, or the files on disk while they are
// being watched so that edits show up without a rebuild.
func assetsFor(cfg config.Provider) fs.FS {
	if cfg.GetOfflineWatch() && cfg.GetStaticDir() != "" {
		if info, err := os.Stat(cfg.GetStaticDir()); err == nil && info.IsDir() {
			return os.DirFS(cfg.GetStaticDir())
		}
	}
	return web.Static()
}
