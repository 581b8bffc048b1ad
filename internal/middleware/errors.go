package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/surface"
)

// ErrorHandler renders errors that escape handlers (unknown routes, wrong
// methods, panics recovered by echo) in the caller's envelope.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	log = log.Named("errors")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
		}

		key := surface.MsgInternal
		switch status {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			key = surface.MsgNotFound
		case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
			key = surface.MsgMalformed
		case http.StatusUnauthorized:
			key = surface.MsgUnauthenticated
		case http.StatusForbidden:
			key = surface.MsgForbidden
		case http.StatusTooManyRequests:
			key = surface.MsgRateLimited
		case http.StatusServiceUnavailable:
			key = surface.MsgUnavailable
		}
		if status >= http.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = Fail(c, status, key)
		}
		if err != nil {
			log.Warn("write error response failed", zap.Error(err))
		}
	}
}
