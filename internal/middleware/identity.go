package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/astacala/gateway/internal/auth"
)

// Principal returns the authenticated caller stored by TokenAuth.
func Principal(c echo.Context) (auth.Principal, bool) {
	return auth.PrincipalFrom(c.Request().Context())
}

// currentUserID identifies the caller for rate-limit keys, "anon" when the
// request is unauthenticated.
func currentUserID(c echo.Context) string {
	if p, ok := Principal(c); ok {
		return strconv.FormatUint(p.UserID, 10)
	}
	return "anon"
}
