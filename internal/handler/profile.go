package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/middleware"
	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/surface"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	Base
	Users UserStore
}

// NewProfileHandler returns a ProfileHandler.
func NewProfileHandler(base Base, u UserStore) *ProfileHandler {
	return &ProfileHandler{Base: base, Users: u}
}

// Show returns the caller's profile.
func (h *ProfileHandler) Show(c echo.Context) error {
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
	return h.ok(c, http.StatusOK, surface.MsgOK, view)
}

// Update applies the provided profile fields; omitted fields are kept.
func (h *ProfileHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var upd model.ProfileUpdate
	if err := h.decode(c, surface.ResProfile, &upd); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := h.storeCtx(c)
	defer cancel()
	u, err := h.Users.FindUserByID(ctx, p.UserID)
	if err != nil {
		return h.fail(c, storeErr("find user", err))
	}
	upd.Apply(&u)
	if err := h.Users.UpdateProfile(ctx, u); err != nil {
		return h.fail(c, storeErr("update profile", err))
	}
	h.publish(c, events.UserProfileUpdated, events.UserPayload{
		UserID: u.ID, ActorID: p.UserID, Surface: middleware.SurfaceOf(c).String(),
	})

	view, err := h.encode(c, surface.ResUser, userView(u))
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusOK, surface.MsgProfileUpdated, view)
}
