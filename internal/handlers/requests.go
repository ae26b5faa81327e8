package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/gesture"
)

// CustomValidator wraps go-playground/validator to implement echo.Validator.
// Failures wrap domain.ErrInvalidInput so the error handler reports them as
// invalid input.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// bindValid binds the request into req and validates it.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return c.Validate(req)
}

// RegisterRequest is the sign up form.
type RegisterRequest struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginRequest is the sign in form.
type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// SwipeRequest is a touch movement measured by the browser.
type SwipeRequest struct {
	DX         float64 `json:"dx" form:"dx"`
	DY         float64 `json:"dy" form:"dy"`
	DurationMS int64   `json:"duration_ms" form:"duration_ms" validate:"gte=0"`
	Tab        int     `json:"tab" form:"tab" validate:"gte=0"`
}

// Swipe converts the request to a gesture.
func (r SwipeRequest) Swipe() gesture.Swipe {
	return gesture.Swipe{DX: r.DX, DY: r.DY, Duration: time.Duration(r.DurationMS) * time.Millisecond}
}

// MoveRequest moves an element within one list.
type MoveRequest struct {
	From int `json:"from" form:"from" validate:"gte=0"`
	To   int `json:"to" form:"to" validate:"gte=0"`
}

// SkillMoveRequest moves a card, possibly into another category.
type SkillMoveRequest struct {
	FromCategory int `json:"from_category" form:"from_category" validate:"gte=0"`
	FromIndex    int `json:"from_index" form:"from_index" validate:"gte=0"`
	ToCategory   int `json:"to_category" form:"to_category" validate:"gte=0"`
	ToIndex      int `json:"to_index" form:"to_index" validate:"gte=0"`
}

// ItemRequest carries the text of a checklist item. The text may be the
// HTML of a contenteditable element.
type ItemRequest struct {
	Text string `json:"text" form:"text" validate:"required"`
}

// index reads a non-negative integer path parameter.
func index(c echo.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, name)
	}
	return n, nil
}

// indexes reads several path parameters in order.
func indexes(c echo.Context, names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		n, err := index(c, name)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// formString returns a form field, or nil when the form does not carry it.
func formString(c echo.Context, name string) *string {
	values, err := c.FormParams()
	if err != nil {
		return nil
	}
	v, ok := values[name]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[len(v)-1]
	return &s
}

// formBool reads a checkbox that is paired with a hidden "false" input; the
// last value wins.
func formBool(c echo.Context, name string) *bool {
	s := formString(c, name)
	if s == nil {
		return nil
	}
	b := *s == "true" || *s == "on" || *s == "1"
	return &b
}

// formLines splits a textarea into trimmed non-empty lines.
func formLines(c echo.Context, name string) []string {
	var out []string
	for _, line := range strings.Split(c.FormValue(name), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
