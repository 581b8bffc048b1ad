package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/metrics"
	"github.com/astacala/gateway/internal/middleware"
	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/surface"
)

// CredentialVerifier checks a login identifier and password.
type CredentialVerifier interface {
	Verify(ctx context.Context, identifier, password string) (model.User, error)
}

// AuthHandler serves login, logout and token management on both surfaces.
type AuthHandler struct {
	Base
	Verifier CredentialVerifier
	Tokens   *auth.TokenService
	Users    UserStore
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(base Base, v CredentialVerifier, t *auth.TokenService, u UserStore) *AuthHandler {
	return &AuthHandler{Base: base, Verifier: v, Tokens: t, Users: u}
}

// Login verifies credentials and issues a default token. Unknown email,
// wrong password and inactive account produce the same 401 body.
func (h *AuthHandler) Login(c echo.Context) error {
	s := middleware.SurfaceOf(c)
	var creds model.Credentials
	if err := h.decode(c, surface.ResLogin, &creds); err != nil {
		metrics.LoginsTotal.WithLabelValues(s.String(), "invalid_request").Inc()
		return h.fail(c, err)
	}

	ctx := c.Request().Context()
	u, err := h.Verifier.Verify(ctx, creds.Identifier, creds.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(s.String(), auth.Reason(err)).Inc()
		return h.fail(c, err)
	}
	tok, err := h.Tokens.Issue(ctx, u.ID, auth.DefaultTokenLabel, nil)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(s.String(), auth.Reason(err)).Inc()
		return h.fail(c, err)
	}
	metrics.LoginsTotal.WithLabelValues(s.String(), "ok").Inc()
	metrics.TokensIssuedTotal.Inc()
	h.publish(c, events.UserLoggedIn, events.UserPayload{UserID: u.ID, Surface: s.String()})

	body, err := h.Adapter.Login(s, userView(u), tok)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, body)
}

// Logout revokes the token that authenticated this request.
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	err = h.Tokens.RevokeByID(c.Request().Context(), p.UserID, p.TokenID)
	if err != nil && !errors.Is(err, auth.ErrTokenNotFound) {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusOK, surface.MsgLogoutOK, nil)
}

// Me returns the caller's user record.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := h.storeCtx(c)
	defer cancel()
	u, err := h.Users.FindUserByID(ctx, p.UserID)
	if err != nil {
		return h.fail(c, storeErr("find user", err))
	}
	view, err := h.encode(c, surface.ResUser, userView(u))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusOK, surface.MsgOK, map[string]any{
		"user":      view,
		"abilities": p.Abilities,
	})
}

// CreateToken issues an additional token for the caller. The requested
// abilities must be covered by the presenting token's abilities; no
// abilities means "the same as mine".
func (h *AuthHandler) CreateToken(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req model.TokenRequest
	if err := h.decode(c, surface.ResToken, &req); err != nil {
		return h.fail(c, err)
	}
	if len(req.Abilities) == 0 {
		req.Abilities = p.Abilities
	}
	if !p.Abilities.Covers(req.Abilities) {
		h.Log.Info("token abilities exceed caller", zap.Uint64("user_id", p.UserID), zap.Strings("requested", req.Abilities))
		return h.fail(c, auth.ErrInsufficientRole)
	}
	tok, err := h.Tokens.Issue(c.Request().Context(), p.UserID, req.Label, req.Abilities)
	if err != nil {
		return h.fail(c, err)
	}
	metrics.TokensIssuedTotal.Inc()
	return h.ok(c, http.StatusCreated, surface.MsgTokenCreated, tok)
}

// ListTokens lists the caller's tokens without secrets.
func (h *AuthHandler) ListTokens(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	views, err := h.Tokens.List(c.Request().Context(), p.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusOK, surface.MsgOK, views)
}

// DeleteToken revokes one of the caller's tokens by id. Another user's id is
// a 404.
func (h *AuthHandler) DeleteToken(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Tokens.RevokeByID(c.Request().Context(), p.UserID, id); err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusOK, surface.MsgTokenRevoked, nil)
}
