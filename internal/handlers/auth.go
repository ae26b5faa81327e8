package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/email"
	"github.com/nfrund/notebook/internal/middleware"
	"github.com/nfrund/notebook/internal/rendering"
	"github.com/nfrund/notebook/internal/view"
	"github.com/nfrund/notebook/web/src/templates/layouts"
	"github.com/nfrund/notebook/web/src/templates/pages"
)

const authTokenTTL = 24 * time.Hour

// AuthHandler handles registration, sign in and email verification.
type AuthHandler struct {
	userStore domain.UserRepository
	emailer   domain.EmailSender
	renderer  rendering.Renderer
	baseURL   string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userStore domain.UserRepository, emailer domain.EmailSender, renderer rendering.Renderer, baseURL string) *AuthHandler {
	return &AuthHandler{
		userStore: userStore,
		emailer:   emailer,
		renderer:  renderer,
		baseURL:   baseURL,
	}
}

// RegisterGet renders the registration form (GET /auth/register).
func (h *AuthHandler) RegisterGet(c echo.Context) error {
	data := pages.AuthData{Email: view.TakeFormValue(c, "email")}
	page := layouts.Page{Title: "Register", Flashes: view.GetFlashData(c)}
	return h.renderer.RenderPage(c, http.StatusOK, layouts.Base(page, pages.Register(data)))
}

// RegisterPost creates the account, signs the user in and sends the
// verification email.
func (h *AuthHandler) RegisterPost(c echo.Context) error {
	var req RegisterRequest
	if err := bindValid(c, &req); err != nil {
		view.SetFormValue(c, "email", c.FormValue("email"))
		view.SetFlashError(c, "Enter a valid email and a password of at least 8 characters, typed the same twice.")
		return c.Redirect(http.StatusSeeOther, "/auth/register")
	}

	ctx := c.Request().Context()
	user := &domain.User{Email: req.Email}
	token, err := h.userStore.SignUp(ctx, user, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			view.SetFlashError(c, "A user with this email already exists.")
		} else {
			slog.ErrorContext(ctx, "Error creating user", "event", "user_sign_up_failed", "error", err)
			view.SetFlashError(c, "Could not create your account.")
		}
		view.SetFormValue(c, "email", req.Email)
		return c.Redirect(http.StatusSeeOther, "/auth/register")
	}

	setAuthCookie(c, token)
	h.sendVerification(c, req.Email)
	view.SetFlashSuccess(c, "Account created. Check your inbox to verify your email.")
	return c.Redirect(http.StatusSeeOther, "/auth/unverified")
}

// LoginGet renders the sign in form (GET /auth/login).
func (h *AuthHandler) LoginGet(c echo.Context) error {
	data := pages.AuthData{Email: view.TakeFormValue(c, "email")}
	page := layouts.Page{Title: "Sign in", Flashes: view.GetFlashData(c)}
	return h.renderer.RenderPage(c, http.StatusOK, layouts.Base(page, pages.Login(data)))
}

// LoginPost checks the credentials and sets the token cookie.
func (h *AuthHandler) LoginPost(c echo.Context) error {
	var req LoginRequest
	bindErr := bindValid(c, &req)

	var token string
	err := bindErr
	if err == nil {
		token, err = h.userStore.SignIn(c.Request().Context(), &domain.User{Email: req.Email}, req.Password)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			return err
		}
		slog.WarnContext(c.Request().Context(), "Failed login attempt", "event", "user_sign_in_failed", "email", req.Email, "error", err)
		view.SetFlashError(c, "Invalid email or password.")
		view.SetFormValue(c, "email", c.FormValue("email"))
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}

	setAuthCookie(c, token)
	view.SetFlashSuccess(c, "Signed in.")
	return c.Redirect(http.StatusSeeOther, "/app/guides")
}

// Logout expires the token cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearAuthCookie(c)
	view.SetFlashSuccess(c, "You have been signed out.")
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

// Unverified tells a signed in user to confirm their email. Verified users
// are sent on to their guides.
func (h *AuthHandler) Unverified(c echo.Context) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}
	if user.EmailVerified {
		return c.Redirect(http.StatusSeeOther, "/app/guides")
	}
	page := layouts.Page{Title: "Verify your email", Flashes: view.GetFlashData(c), SignedIn: true}
	return h.renderer.RenderPage(c, http.StatusOK, layouts.Base(page, pages.Unverified(user.Email)))
}

// ResendVerification issues a new verification token and mails it.
func (h *AuthHandler) ResendVerification(c echo.Context) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}
	if !user.EmailVerified {
		h.sendVerification(c, user.Email)
		view.SetFlashSuccess(c, "A new verification link is on its way.")
	}
	return c.Redirect(http.StatusSeeOther, "/auth/unverified")
}

// Verify consumes a verification token (GET /auth/verify?token=...).
func (h *AuthHandler) Verify(c echo.Context) error {
	user, err := h.userStore.VerifyEmail(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			return err
		}
		view.SetFlashError(c, "That verification link is invalid or has expired.")
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}
	slog.InfoContext(c.Request().Context(), "email verified", "event", "email_verified", "user_id", user.Key())
	view.SetFlashSuccess(c, "Your email is verified. Welcome!")
	return c.Redirect(http.StatusSeeOther, "/app/guides")
}

// sendVerification failures are logged only; the user can ask for a new
// link from the unverified page.
func (h *AuthHandler) sendVerification(c echo.Context, address string) {
	ctx := c.Request().Context()
	token, err := h.userStore.GenerateVerifyToken(ctx, address)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create verification token", "event", "verify_token_failed", "error", err)
		return
	}
	subject, body, err := email.VerificationEmail(h.baseURL, token)
	if err == nil {
		err = h.emailer.Send(address, subject, body)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to send verification email", "event", "verify_email_failed", "error", err)
	}
}

// setAuthCookie stores the session token. HttpOnly keeps it away from
// scripts; Secure is set when the request came in over TLS.
func setAuthCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().UTC().Add(authTokenTTL),
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
