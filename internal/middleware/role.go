package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/metrics"
	"github.com/astacala/gateway/internal/surface"
)

// Authorize enforces the policy rule registered for endpoint. It runs after
// TokenAuth. An endpoint with no rule is denied, as is a caller whose role
// is not listed or whose token lacks the rule's ability.
func Authorize(endpoint string, policy *auth.Policy, authz *auth.Authorizer, log *zap.Logger) echo.MiddlewareFunc {
	log = log.Named("authorize")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return Fail(c, http.StatusUnauthorized, surface.MsgUnauthenticated)
			}
			rule, ok := policy.FindRolePolicy(endpoint)
			if !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues(endpoint, "no_policy").Inc()
				log.Error("protected endpoint has no policy", zap.String("endpoint", endpoint))
				return Fail(c, http.StatusForbidden, surface.MsgForbidden)
			}
			if authz.AuthorizeRole(p.Role, rule.Roles) == auth.Deny {
				metrics.AuthorizationDenialsTotal.WithLabelValues(endpoint, "role").Inc()
				log.Info("role denied", zap.String("endpoint", endpoint),
					zap.Uint64("user_id", p.UserID), zap.String("role", p.RawRole))
				return Fail(c, http.StatusForbidden, surface.MsgForbidden)
			}
			if !p.Can(rule.Ability) {
				metrics.AuthorizationDenialsTotal.WithLabelValues(endpoint, "ability").Inc()
				log.Info("ability denied", zap.String("endpoint", endpoint),
					zap.Uint64("user_id", p.UserID), zap.String("ability", rule.Ability))
				return Fail(c, http.StatusForbidden, surface.MsgForbidden)
			}
			return next(c)
		}
	}
}
