package router

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/handler"
	"github.com/astacala/gateway/internal/surface"
)

// handlers groups the per-area handlers an endpoint can bind to.
type handlers struct {
	auth      *handler.AuthHandler
	profile   *handler.ProfileHandler
	report    *handler.ReportHandler
	admin     *handler.AdminHandler
	broadcast *handler.BroadcastHandler
}

// Endpoint is one route of the static table. Roles nil means the endpoint
// is public; otherwise it is protected and its rule goes into the policy.
type Endpoint struct {
	ID          string
	Method      string
	Path        string
	Roles       []string
	Ability     string
	RateLimited bool
	bind        func(h *handlers) echo.HandlerFunc
}

// Protected reports whether the endpoint requires a token.
func (e Endpoint) Protected() bool { return e.Roles != nil }

// Role sets used by the tables.
var (
	anyRole    = []string{"VOLUNTEER", "ADMIN", "SUPER_ADMIN"}
	adminTier  = []string{"ADMIN", "SUPER_ADMIN"}
	superAdmin = []string{"SUPER_ADMIN"}
)

// AbilityReportsWrite gates report submission.
const AbilityReportsWrite = "reports:write"

// Endpoints returns the route table of s.
func Endpoints(s surface.Surface) []Endpoint {
	switch s {
	case surface.Legacy:
		return legacyEndpoints
	default:
		return mobileEndpoints
	}
}

// BuildPolicy turns the protected endpoints of every surface into the role
// policy. An undefined role or a duplicated endpoint id fails here, at
// startup.
func BuildPolicy() (*auth.Policy, error) {
	specs := map[string]auth.RuleSpec{}
	seen := map[string]bool{}
	for _, s := range surface.Surfaces {
		for _, ep := range Endpoints(s) {
			if seen[ep.ID] {
				return nil, fmt.Errorf("duplicate endpoint id %q", ep.ID)
			}
			seen[ep.ID] = true
			if !ep.Protected() {
				continue
			}
			specs[ep.ID] = auth.RuleSpec{Roles: ep.Roles, Ability: ep.Ability}
		}
	}
	return auth.NewPolicy(specs)
}
