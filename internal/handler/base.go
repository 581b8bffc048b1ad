package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/auth"
	"github.com/astacala/gateway/internal/events"
	"github.com/astacala/gateway/internal/middleware"
	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/surface"
)

// UserStore is the slice of the user repository the handlers need.
type UserStore interface {
	FindUserByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	UpdateProfile(ctx context.Context, u model.User) error
	SetActive(ctx context.Context, id uint64, active bool) error
	SetRole(ctx context.Context, id uint64, role string) error
}

// Base carries what every handler shares: the surface adapter, the event
// publisher and a logger.
type Base struct {
	Adapter      *surface.Adapter
	Events       events.Publisher
	Log          *zap.Logger
	StoreTimeout time.Duration
}

// errForbidden marks an operation the caller may not perform on this target.
var errForbidden = errors.New("forbidden")

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", auth.ErrServiceUnavailable, op, err)
}

// storeErr keeps sql.ErrNoRows visible and turns everything else into a
// service-unavailable error.
func storeErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return unavailable(op, err)
}

func (b *Base) storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	d := b.StoreTimeout
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), d)
}

// decode translates the request body of resource into out.
func (b *Base) decode(c echo.Context, resource string, out any) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fmt.Errorf("%w: %v", surface.ErrMalformed, err)
	}
	return b.Adapter.Decode(middleware.SurfaceOf(c), resource, body, out)
}

// ok writes a 2xx envelope.
func (b *Base) ok(c echo.Context, status int, key surface.MessageKey, data any) error {
	return c.JSON(status, surface.OK(middleware.SurfaceOf(c), key, data))
}

// encode renders v as resource in the caller's vocabulary.
func (b *Base) encode(c echo.Context, resource string, v any) (map[string]any, error) {
	return b.Adapter.Encode(middleware.SurfaceOf(c), resource, v)
}

// fail maps err onto a status and envelope. Credential failures of any kind
// share one body, as do token failures.
func (b *Base) fail(c echo.Context, err error) error {
	var verr *surface.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.FailValidation(c, verr)
	case errors.Is(err, surface.ErrMalformed):
		return middleware.Fail(c, http.StatusBadRequest, surface.MsgMalformed)
	case errors.Is(err, auth.ErrServiceUnavailable):
		b.Log.Error("backing store unavailable", zap.String("path", c.Path()), zap.Error(err))
		return middleware.Fail(c, http.StatusServiceUnavailable, surface.MsgUnavailable)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrAccountInactive):
		return middleware.Fail(c, http.StatusUnauthorized, surface.MsgInvalidCredentials)
	case errors.Is(err, auth.ErrTokenInvalid):
		return middleware.Fail(c, http.StatusUnauthorized, surface.MsgUnauthenticated)
	case errors.Is(err, auth.ErrInsufficientRole), errors.Is(err, errForbidden):
		return middleware.Fail(c, http.StatusForbidden, surface.MsgForbidden)
	case errors.Is(err, auth.ErrTokenNotFound), errors.Is(err, sql.ErrNoRows), errors.Is(err, surface.ErrUnsupported):
		return middleware.Fail(c, http.StatusNotFound, surface.MsgNotFound)
	}
	b.Log.Error("unexpected handler error", zap.String("path", c.Path()), zap.Error(err))
	return middleware.Fail(c, http.StatusInternalServerError, surface.MsgInternal)
}

// publish hands an event to the broker. Failures never reach the client.
func (b *Base) publish(c echo.Context, name string, payload any) {
	if b.Events == nil {
		return
	}
	if err := b.Events.Publish(c.Request().Context(), name, payload); err != nil {
		b.Log.Warn("event dropped", zap.String("event", name), zap.Error(err))
	}
}

// principal returns the caller; TokenAuth guarantees one on protected routes.
func principal(c echo.Context) (auth.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok {
		return auth.Principal{}, auth.ErrTokenInvalid
	}
	return p, nil
}

func idParam(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, sql.ErrNoRows
	}
	return id, nil
}

// userView strips the hash and reports the canonical role when the stored
// value is recognized.
func userView(u model.User) model.UserView {
	role := u.Role
	if r, ok := auth.CanonicalRole(u.Role); ok {
		role = r.String()
	}
	return model.UserView{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         role,
		Phone:        u.Phone,
		Organization: u.Organization,
		BirthPlace:   u.BirthPlace,
		MemberNumber: u.MemberNumber,
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
	}
}
