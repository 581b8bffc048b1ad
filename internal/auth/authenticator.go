package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Authenticator turns a presented bearer token into a Principal: it
// validates the token and reloads the owning user so deactivation and role
// changes apply immediately.
type Authenticator struct {
	tokens  *TokenService
	users   UserStore
	timeout time.Duration
	log     *zap.Logger
}

// NewAuthenticator combines token validation with a reload of the owner.
func NewAuthenticator(tokens *TokenService, users UserStore, storeTimeout time.Duration, log *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, timeout: storeTimeout, log: log.Named("authenticator")}
}

// Authenticate returns the principal for presented, or an error that is
// ErrTokenInvalid (any variant) or ErrServiceUnavailable.
func (a *Authenticator) Authenticate(ctx context.Context, presented string) (Principal, error) {
	g, err := a.tokens.Validate(ctx, presented)
	if err != nil {
		return Principal{}, err
	}

	sctx, cancel := context.WithTimeout(ctx, a.timeoutOrDefault())
	defer cancel()
	u, err := a.users.FindUserByID(sctx, g.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			a.log.Warn("token owner missing", zap.Uint64("token_id", g.TokenID), zap.Uint64("user_id", g.UserID))
			return Principal{}, ErrTokenInvalid
		}
		return Principal{}, unavailable("find user by id", err)
	}
	if !u.IsActive {
		a.log.Info("token owner inactive", zap.Uint64("token_id", g.TokenID), zap.Uint64("user_id", u.ID))
		return Principal{}, ErrTokenInvalid
	}

	role, ok := CanonicalRole(u.Role)
	if !ok {
		a.log.Warn("data integrity: unrecognized role on user", zap.Uint64("user_id", u.ID), zap.String("role", u.Role))
	}
	return Principal{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      role,
		RawRole:   u.Role,
		TokenID:   g.TokenID,
		Abilities: g.Abilities,
	}, nil
}

func (a *Authenticator) timeoutOrDefault() time.Duration {
	if a.timeout <= 0 {
		return 5 * time.Second
	}
	return a.timeout
}
