package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/astacala/gateway/internal/surface"
)

const surfaceKey = "surface"

// LegacyPrefix is the path prefix of the legacy web API.
const LegacyPrefix = "/api/gibran"

// WithSurface tags every request of a route group with its surface so error
// responses use the right envelope.
func WithSurface(s surface.Surface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(surfaceKey, s)
			return next(c)
		}
	}
}

// SurfaceOf returns the surface of the current request. Requests that never
// reached a group (unknown routes) are classified by path.
func SurfaceOf(c echo.Context) surface.Surface {
	if s, ok := c.Get(surfaceKey).(surface.Surface); ok {
		return s
	}
	if strings.HasPrefix(c.Request().URL.Path, LegacyPrefix) {
		return surface.Legacy
	}
	return surface.Mobile
}

// Fail writes the surface's error envelope.
func Fail(c echo.Context, status int, key surface.MessageKey) error {
	return c.JSON(status, surface.Fail(SurfaceOf(c), key, nil))
}

// FailValidation writes a 422 listing the canonical fields that failed.
func FailValidation(c echo.Context, verr *surface.ValidationError) error {
	return c.JSON(http.StatusUnprocessableEntity, surface.Fail(SurfaceOf(c), surface.MsgValidation, verr))
}
