package view

import (
	"errors"
	"net/http"

	"github.com/nfrund/notebook/internal/domain"
)

// Dialog is the user-facing description of a failed operation. Messages are
// generic; the underlying error is only logged.
type Dialog struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Dialog codes.
const (
	CodePermissionDenied = "permission-denied"
	CodeUnavailable      = "unavailable"
	CodeOffline          = "offline"
	CodeNotFound         = "not-found"
	CodeInvalid          = "invalid"
	CodeUnknown          = "unknown"
)

var dialogs = []struct {
	target error
	dialog Dialog
}{
	{domain.ErrPermissionDenied, Dialog{CodePermissionDenied, "Access denied", "You do not have permission to do that. Try signing in again.", http.StatusForbidden}},
	{domain.ErrEmailNotVerified, Dialog{CodePermissionDenied, "Email not verified", "Please verify your email address before continuing.", http.StatusForbidden}},
	{domain.ErrInvalidCredentials, Dialog{CodePermissionDenied, "Sign in failed", "Invalid email or password.", http.StatusUnauthorized}},
	{domain.ErrInvalidToken, Dialog{CodePermissionDenied, "Link expired", "That link is invalid or has expired.", http.StatusUnauthorized}},
	{domain.ErrUnavailable, Dialog{CodeUnavailable, "Service unavailable", "The notebook could not reach its storage. Your change was not saved; please try again shortly.", http.StatusServiceUnavailable}},
	{domain.ErrOffline, Dialog{CodeOffline, "You are offline", "Check your connection and try again.", http.StatusServiceUnavailable}},
	{domain.ErrNotFound, Dialog{CodeNotFound, "Not found", "That guide or item no longer exists.", http.StatusNotFound}},
	{domain.ErrUserAlreadyExists, Dialog{CodeInvalid, "Account exists", "A user with this email already exists.", http.StatusConflict}},
	{domain.ErrInvalidInput, Dialog{CodeInvalid, "Invalid input", "Some of the values you entered are not valid.", http.StatusBadRequest}},
}

// DialogFor maps an error to the dialog shown for it.
func DialogFor(err error) Dialog {
	for _, d := range dialogs {
		if errors.Is(err, d.target) {
			return d.dialog
		}
	}
	return Dialog{
		Code:    CodeUnknown,
		Title:   "Something went wrong",
		Message: "An unexpected error occurred. Please try again.",
		Status:  http.StatusInternalServerError,
	}
}

// Known reports whether err maps to anything other than the unknown dialog.
func Known(err error) bool {
	return DialogFor(err).Code != CodeUnknown
}
