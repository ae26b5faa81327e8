package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// DefaultAuthRequestsPerMinute limits the sign in and registration forms.
const DefaultAuthRequestsPerMinute = 10

// RateLimiter allows perMinute requests per client IP, with bursts of the
// same size.
func RateLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = DefaultAuthRequestsPerMinute
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			if WantsJSON(c) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"code":    "unavailable",
					"message": "Too many requests. Please try again later.",
				})
			}
			return c.String(http.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	})
}
