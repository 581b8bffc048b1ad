package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MobilePrefix is the versioned mobile API root.
const MobilePrefix = "/api/v1"

var mobileEndpoints = []Endpoint{
	{ID: "v1.auth.login", Method: http.MethodPost, Path: "/auth/login", RateLimited: true,
		bind: func(h *handlers) echo.HandlerFunc { return h.auth.Login }},
	{ID: "v1.auth.logout", Method: http.MethodPost, Path: "/auth/logout", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.auth.Logout }},
	{ID: "v1.auth.me", Method: http.MethodGet, Path: "/auth/me", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.auth.Me }},
	{ID: "v1.auth.tokens.create", Method: http.MethodPost, Path: "/auth/tokens", Roles: anyRole, RateLimited: true,
		bind: func(h *handlers) echo.HandlerFunc { return h.auth.CreateToken }},
	{ID: "v1.auth.tokens.list", Method: http.MethodGet, Path: "/auth/tokens", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.auth.ListTokens }},
	{ID: "v1.auth.tokens.delete", Method: http.MethodDelete, Path: "/auth/tokens/:id", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.auth.DeleteToken }},
	{ID: "v1.profile.show", Method: http.MethodGet, Path: "/users/profile", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.profile.Show }},
	{ID: "v1.profile.update", Method: http.MethodPut, Path: "/users/profile", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.profile.Update }},
	{ID: "v1.reports.submit", Method: http.MethodPost, Path: "/reports", Roles: anyRole, Ability: AbilityReportsWrite,
		bind: func(h *handlers) echo.HandlerFunc { return h.report.Submit }},
	{ID: "v1.reports.verify", Method: http.MethodPost, Path: "/reports/:id/verify", Roles: adminTier,
		bind: func(h *handlers) echo.HandlerFunc { return h.report.Verify }},
	{ID: "v1.admin.users.list", Method: http.MethodGet, Path: "/admin/users", Roles: adminTier,
		bind: func(h *handlers) echo.HandlerFunc { return h.admin.ListUsers }},
	{ID: "v1.admin.users.status", Method: http.MethodPatch, Path: "/admin/users/:id/status", Roles: superAdmin,
		bind: func(h *handlers) echo.HandlerFunc { return h.admin.SetStatus }},
	{ID: "v1.admin.users.role", Method: http.MethodPatch, Path: "/admin/users/:id/role", Roles: superAdmin,
		bind: func(h *handlers) echo.HandlerFunc { return h.admin.SetRole }},
	{ID: "v1.broadcasting.auth", Method: http.MethodPost, Path: "/broadcasting/auth", Roles: anyRole,
		bind: func(h *handlers) echo.HandlerFunc { return h.broadcast.Authorize }},
}
