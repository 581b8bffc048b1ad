package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/middleware"
	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/surface"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// AdminHandler serves user administration.
type AdminHandler struct {
	Base
	Users  UserStore
	Tokens *auth.TokenService
}

// NewAdminHandler returns an AdminHandler; t revokes tokens on deactivation.
func NewAdminHandler(base Base, u UserStore, t *auth.TokenService) *AdminHandler {
	return &AdminHandler{Base: base, Users: u, Tokens: t}
}

// ListUsers pages through users with ?limit= and ?offset=.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit := queryInt(c, "limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := h.storeCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx, limit, offset)
	if err != nil {
		return h.fail(c, storeErr("list users", err))
	}
	views := make([]model.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	out, err := surface.EncodeList(h.Adapter, middleware.SurfaceOf(c), surface.ResUser, views)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusOK, surface.MsgOK, out)
}

// SetStatus activates or deactivates a user. Deactivation revokes every
// token the user holds. Admins cannot change their own status.
func (h *AdminHandler) SetStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req model.StatusChange
	if err := h.decode(c, surface.ResStatus, &req); err != nil {
		return h.fail(c, err)
	}
	if id == p.UserID {
		return h.fail(c, errForbidden)
	}

	ctx, cancel := h.storeCtx(c)
	defer cancel()
	if err := h.Users.SetActive(ctx, id, *req.IsActive); err != nil {
		return h.fail(c, storeErr("set active", err))
	}
	name := events.UserActivated
	if !*req.IsActive {
		name = events.UserDeactivated
		if err := h.Tokens.RevokeAll(c.Request().Context(), id); err != nil {
			return h.fail(c, err)
		}
	}
	h.Log.Info("user status changed", zap.Uint64("user_id", id), zap.Uint64("actor_id", p.UserID), zap.Bool("is_active", *req.IsActive))
	h.publish(c, name, events.UserPayload{UserID: id, ActorID: p.UserID})
	return h.renderUser(c, id)
}

// SetRole assigns a canonical role. Any accepted spelling is stored in its
// canonical form.
func (h *AdminHandler) SetRole(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req model.RoleChange
	if err := h.decode(c, surface.ResRole, &req); err != nil {
		return h.fail(c, err)
	}
	role, ok := auth.CanonicalRole(req.Role)
	if !ok {
		return h.fail(c, &surface.ValidationError{Resource: surface.ResRole,
			Fields: []surface.FieldError{{Field: "role", Rule: "oneof"}}})
	}
	if id == p.UserID {
		return h.fail(c, errForbidden)
	}

	ctx, cancel := h.storeCtx(c)
	defer cancel()
	if err := h.Users.SetRole(ctx, id, role.String()); err != nil {
		return h.fail(c, storeErr("set role", err))
	}
	h.Log.Info("user role changed", zap.Uint64("user_id", id), zap.Uint64("actor_id", p.UserID), zap.String("role", role.String()))
	h.publish(c, events.UserRoleChanged, events.UserPayload{UserID: id, ActorID: p.UserID, Role: role.String()})
	return h.renderUser(c, id)
}

func (h *AdminHandler) renderUser(c echo.Context, id uint64) error {
	ctx, cancel := h.storeCtx(c)
	defer cancel()
	u, err := h.Users.FindUserByID(ctx, id)
	if err != nil {
		return h.fail(c, storeErr("find user", err))
	}
	view, err := h.encode(c, surface.ResUser, userView(u))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusOK, surface.MsgUserUpdated, view)
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
