package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// The legacy web dashboard API. Token management and channel tickets are
// mobile only.
var legacyEndpoints = []Endpoint{
	{ID: "gibran.auth.login", Method: http.MethodPost, Path: "/auth/login", RateLimited: true,
		bind: func(h *handlers) echo.HandlerFunc { return h.auth.Login }},
	{ID: "gibran.auth.logout", Method: http.MethodPost, Path: "/auth/logout", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.auth.Logout }},
	{ID: "gibran.profil.show", Method: http.MethodGet, Path: "/profil", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.profile.Show }},
	{ID: "gibran.profil.update", Method: http.MethodPut, Path: "/profil", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.profile.Update }},
	{ID: "gibran.pelaporans.submit", Method: http.MethodPost, Path: "/pelaporans", Roles: anyRole, Ability: AbilityReportsWrite,
		bind: func(h *handlers) echo.HandlerFunc { return h.report.Submit }},
	{ID: "gibran.pelaporans.verify", Method: http.MethodPost, Path: "/pelaporans/:id/verifikasi", Roles: adminTier,
		bind: func(h *handlers) echo.HandlerFunc { return h.report.Verify }},
	{ID: "gibran.admin.pengguna", Method: http.MethodGet, Path: "/admin/pengguna", Roles: adminTier,
		bind: func(h *handlers) echo.HandlerFunc { return h.admin.ListUsers }},
}
