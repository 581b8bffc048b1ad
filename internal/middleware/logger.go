package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger writes one access log line per request: error level for 5xx
// and handler errors, warn for 4xx.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	log = log.Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.String("surface", SurfaceOf(c).String()),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
			}
			if id := res.Header().Get(echo.HeaderXRequestID); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if p, ok := Principal(c); ok {
				fields = append(fields, zap.Uint64("user_id", p.UserID))
			}

			switch n := res.Status; {
			case err != nil:
				log.Error("handler error", append(fields, zap.Error(err))...)
			case n >= http.StatusInternalServerError:
				log.Error("server error", fields...)
			case n >= http.StatusBadRequest:
				log.Warn("client error", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
