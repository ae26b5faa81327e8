package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/domain"
)

const (
	// UserContextKey is where the authenticated *domain.User is stored.
	UserContextKey = "user"
	// AuthCookieName holds the record access token issued at sign in.
	AuthCookieName = "auth_token"

	loginPath      = "/auth/login"
	unverifiedPath = "/auth/unverified"
)

// UserFrom returns the user Auth stored on the context, or nil.
func UserFrom(c echo.Context) *domain.User {
	user, _ := c.Get(UserContextKey).(*domain.User)
	return user
}

// ClearAuthCookie expires the token cookie.
func ClearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// WantsJSON reports whether the caller should get a JSON error instead of a
// redirect.
func WantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.URL.Path, "/api/") ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

func deny(c echo.Context, status int, code, message, redirect string) error {
	if WantsJSON(c) {
		return c.JSON(status, map[string]string{"code": code, "message": message})
	}
	if IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", redirect)
		return c.NoContent(status)
	}
	return c.Redirect(http.StatusSeeOther, redirect)
}

// Auth rejects requests without a valid token cookie. Pages are redirected
// to the login form, API calls get 401.
func Auth(users domain.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AuthCookieName)
			if err != nil || cookie.Value == "" {
				return deny(c, http.StatusUnauthorized, "permission-denied", "Please sign in.", loginPath)
			}

			user, err := users.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil || user == nil {
				if err != nil && !errors.Is(err, domain.ErrInvalidToken) {
					FromContext(c.Request().Context()).Warn("token check failed", "event", "auth_check_failed", "error", err)
				}
				ClearAuthCookie(c)
				return deny(c, http.StatusUnauthorized, "permission-denied", "Your session has expired. Please sign in again.", loginPath)
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// RequireVerified lets only users with a verified email address through. It
// must run after Auth.
func RequireVerified() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFrom(c)
			if user == nil {
				return deny(c, http.StatusUnauthorized, "permission-denied", "Please sign in.", loginPath)
			}
			if !user.EmailVerified {
				return deny(c, http.StatusForbidden, "permission-denied", domain.ErrEmailNotVerified.Error(), unverifiedPath)
			}
			return next(c)
		}
	}
}
