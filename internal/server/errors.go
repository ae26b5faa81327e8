package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/handlers"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/rendering"
	"github.com/nfrund/notebook/internal/view"
	"github.com/nfrund/notebook/web/src/templates/layouts"
	"github.com/nfrund/notebook/web/src/templates/pages"
)

// setupErrorHandling installs the central error handler. Handlers return
// domain errors; this turns them into a JSON body, an htmx error dialog or a
// flash message, depending on who asked.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		d := dialogFor(c, err)
		if err := respond(c, d); err != nil {
			middleware.FromContext(c.Request().Context()).Error("failed to send error response",
				"event", "error_response_failed", "error", err)
		}
	}
}

func dialogFor(c echo.Context, err error) view.Dialog {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return httpDialog(he)
	}
	if view.Known(err) {
		middleware.FromContext(c.Request().Context()).Debug("request failed",
			"event", "request_failed", "error", err)
		return view.DialogFor(err)
	}
	middleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
		"error", err.Error(),
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"stack_trace", string(debug.Stack()),
	)
	return view.DialogFor(err)
}

// httpDialog describes errors raised by echo itself, such as unknown routes
// and malformed bodies.
func httpDialog(he *echo.HTTPError) view.Dialog {
	d := view.Dialog{Title: http.StatusText(he.Code), Message: fmt.Sprint(he.Message), Status: he.Code}
	switch {
	case he.Code == http.StatusNotFound:
		d.Code = view.CodeNotFound
	case he.Code == http.StatusUnauthorized || he.Code == http.StatusForbidden:
		d.Code = view.CodePermissionDenied
	case he.Code == http.StatusServiceUnavailable || he.Code == http.StatusTooManyRequests:
		d.Code = view.CodeUnavailable
	case he.Code < http.StatusInternalServerError:
		d.Code = view.CodeInvalid
	default:
		d.Code = view.CodeUnknown
	}
	return d
}

func respond(c echo.Context, d view.Dialog) error {
	req := c.Request()
	switch {
	case req.Method == http.MethodHead:
		return c.NoContent(d.Status)
	case middleware.WantsJSON(c):
		return c.JSON(d.Status, handlers.ErrorResponse{Code: d.Code, Message: d.Message})
	case middleware.IsHTMX(c):
		h := c.Response().Header()
		h.Set("HX-Retarget", "#dialog")
		h.Set("HX-Reswap", "innerHTML")
		return renderer(c).RenderPage(c, d.Status, pages.ErrorDialog(d))
	case req.Method != http.MethodGet && d.Status < http.StatusInternalServerError:
		// a plain form post: go back to the form with the message
		view.SetFlashError(c, d.Message)
		back := req.Referer()
		if back == "" {
			back = "/app/guides"
		}
		return c.Redirect(http.StatusSeeOther, back)
	default:
		page := layouts.Page{Title: d.Title, Flashes: view.GetFlashData(c), SignedIn: middleware.UserFrom(c) != nil}
		return renderer(c).RenderPage(c, d.Status, layouts.Base(page, pages.ErrorDialog(d)))
	}
}

// renderer returns the echo renderer when it can render whole pages.
func renderer(c echo.Context) rendering.Renderer {
	if r, ok := c.Echo().Renderer.(rendering.Renderer); ok {
		return r
	}
	return rendering.NewUniversalRenderer()
}
