package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/surface"
)

// BroadcastHandler signs subscription tickets for the real-time server.
type BroadcastHandler struct {
	Base
	Tickets *auth.ChannelTickets
}

// NewBroadcastHandler returns a BroadcastHandler issuing tickets from t.
func NewBroadcastHandler(base Base, t *auth.ChannelTickets) *BroadcastHandler {
	return &BroadcastHandler{Base: base, Tickets: t}
}

type channelTicket struct {
	Auth        string    `json:"auth"`
	ChannelName string    `json:"channel_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Authorize returns a ticket for the requested channel, or 403 when the
// caller may not join it.
func (h *BroadcastHandler) Authorize(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req model.ChannelRequest
	if err := h.decode(c, surface.ResChannel, &req); err != nil {
		return h.fail(c, err)
	}
	ticket, exp, err := h.Tickets.Issue(p, req.ChannelName)
	if err != nil {
		return h.fail(c, err)
	}
	return h.ok(c, http.StatusOK, surface.MsgOK, channelTicket{Auth: ticket, ChannelName: req.ChannelName, ExpiresAt: exp})
}
