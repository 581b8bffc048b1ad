package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/metrics"
	"github.com/astacala/gateway/internal/surface"
)

// Authenticator resolves a presented bearer token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, presented string) (auth.Principal, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header. The
// scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// TokenAuth requires a valid bearer token and stores the resulting principal
// in the request context. Missing, unknown, expired and revoked tokens all
// get the same 401; the reason is only logged. A store failure is a 503.
func TokenAuth(authn Authenticator, log *zap.Logger) echo.MiddlewareFunc {
	log = log.Named("tokenauth")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c.Request())
			if !ok {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return Fail(c, http.StatusUnauthorized, surface.MsgUnauthenticated)
			}
			ctx := c.Request().Context()
			p, err := authn.Authenticate(ctx, raw)
			if err != nil {
				reason := auth.Reason(err)
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				if errors.Is(err, auth.ErrServiceUnavailable) {
					log.Error("token validation unavailable", zap.Error(err))
					return Fail(c, http.StatusServiceUnavailable, surface.MsgUnavailable)
				}
				log.Info("token rejected", zap.String("reason", reason), zap.String("path", c.Path()))
				return Fail(c, http.StatusUnauthorized, surface.MsgUnauthenticated)
			}
			c.SetRequest(c.Request().WithContext(auth.WithPrincipal(ctx, p)))
			return next(c)
		}
	}
}
