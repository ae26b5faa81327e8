// Package view holds the request-scoped state pages are drawn from: flash
// messages, the per-user app state kept in the session, and the dialogs
// errors are shown with.
package view

import (
	"log/slog"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	flashSessionName = "flash-session"
	flashKeySuccess  = "success"
	flashKeyError    = "error"
	flashKeyForm     = "form_"
)

// FlashData is the set of one-shot messages shown on the next page.
type FlashData struct {
	Success []string
	Error   []string
}

// Empty reports whether there is nothing to show.
func (f FlashData) Empty() bool {
	return len(f.Success) == 0 && len(f.Error) == 0
}

func setFlash(c echo.Context, key, message string) {
	sess, err := session.Get(flashSessionName, c)
	if err != nil {
		slog.Warn("flash session unavailable", "event", "flash_session_failed", "error", err)
		return
	}
	sess.AddFlash(message, key)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		slog.Warn("failed to save flash session", "event", "flash_session_failed", "error", err)
	}
}

// SetFlashSuccess queues a success message.
func SetFlashSuccess(c echo.Context, message string) {
	setFlash(c, flashKeySuccess, message)
}

// SetFlashError queues an error message.
func SetFlashError(c echo.Context, message string) {
	setFlash(c, flashKeyError, message)
}

// SetFormValue keeps a submitted form value for the next render of the form,
// so a failed login does not make the user retype their email.
func SetFormValue(c echo.Context, field, value string) {
	setFlash(c, flashKeyForm+field, value)
}

// TakeFormValue returns and clears a value stored by SetFormValue.
func TakeFormValue(c echo.Context, field string) string {
	sess, err := session.Get(flashSessionName, c)
	if err != nil {
		return ""
	}
	flashes := sess.Flashes(flashKeyForm + field)
	if len(flashes) == 0 {
		return ""
	}
	_ = sess.Save(c.Request(), c.Response())
	value, _ := flashes[0].(string)
	return value
}

func toStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetFlashData retrieves and clears the queued messages.
func GetFlashData(c echo.Context) FlashData {
	sess, err := session.Get(flashSessionName, c)
	if err != nil {
		return FlashData{}
	}

	success := sess.Flashes(flashKeySuccess)
	failure := sess.Flashes(flashKeyError)
	if len(success) == 0 && len(failure) == 0 {
		return FlashData{}
	}
	_ = sess.Save(c.Request(), c.Response())
	return FlashData{Success: toStrings(success), Error: toStrings(failure)}
}
