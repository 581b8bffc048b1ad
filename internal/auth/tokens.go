package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/utils"
)

// Default label and abilities for tokens minted at login.
const (
	DefaultTokenLabel = "auth_token"
	TokenType         = "Bearer"
)

// DefaultAbilities grants everything the caller's role allows.
var DefaultAbilities = model.Abilities{"*"}

// Grant is what a valid token proves.
type Grant struct {
	TokenID   uint64
	UserID    uint64
	Abilities model.Abilities
	ExpiresAt *time.Time
}

// TokenService issues, validates and revokes opaque bearer tokens. It keeps
// no state of its own: every validation goes to the store, so a revocation
// takes effect on the very next request.
type TokenService struct {
	store   TokenStore
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// TokenOptions configures a TokenService.
type TokenOptions struct {
	TTL          time.Duration // zero issues non-expiring tokens
	StoreTimeout time.Duration
}

// NewTokenService returns a TokenService persisting to store.
func NewTokenService(store TokenStore, opts TokenOptions, log *zap.Logger) *TokenService {
	return &TokenService{
		store:   store,
		ttl:     opts.TTL,
		timeout: opts.StoreTimeout,
		now:     time.Now,
		log:     log.Named("tokens"),
	}
}

// Issue mints a token for userID. The plaintext is returned once in
// IssuedToken.AccessToken and never stored.
func (s *TokenService) Issue(ctx context.Context, userID uint64, label string, abilities model.Abilities) (model.IssuedToken, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultTokenLabel
	}
	if len(abilities) == 0 {
		abilities = DefaultAbilities
	}
	raw, err := utils.NewOpaqueToken()
	if err != nil {
		return model.IssuedToken{}, err
	}
	now := s.now().UTC()
	row := model.AccessToken{
		UserID:    userID,
		Name:      label,
		TokenHash: utils.HashToken(raw),
		Abilities: abilities,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		row.ExpiresAt = &exp
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	id, err := s.store.InsertToken(sctx, row)
	if err != nil {
		return model.IssuedToken{}, unavailable("insert token", err)
	}
	s.log.Debug("token issued", zap.Uint64("token_id", id), zap.Uint64("user_id", userID), zap.String("label", label))
	return model.IssuedToken{
		ID:          id,
		AccessToken: raw,
		TokenType:   TokenType,
		Abilities:   abilities,
		ExpiresAt:   row.ExpiresAt,
	}, nil
}

// Validate hashes the presented token and looks it up. Unknown tokens yield
// ErrTokenInvalid, revoked ones ErrTokenRevoked, and tokens past expiry
// ErrTokenExpired. It never writes.
func (s *TokenService) Validate(ctx context.Context, presented string) (Grant, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return Grant{}, ErrTokenInvalid
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	t, err := s.store.FindTokenByHash(sctx, utils.HashToken(presented))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Grant{}, ErrTokenInvalid
		}
		return Grant{}, unavailable("find token", err)
	}
	if t.RevokedAt != nil {
		return Grant{}, ErrTokenRevoked
	}
	if t.ExpiresAt != nil && !s.now().UTC().Before(t.ExpiresAt.UTC()) {
		return Grant{}, ErrTokenExpired
	}
	return Grant{TokenID: t.ID, UserID: t.UserID, Abilities: t.Abilities, ExpiresAt: t.ExpiresAt}, nil
}

// Revoke marks the presented token revoked. Revoking twice, or revoking an
// unknown token, is a no-op.
func (s *TokenService) Revoke(ctx context.Context, presented string) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.RevokeToken(sctx, utils.HashToken(strings.TrimSpace(presented)), s.now().UTC()); err != nil {
		return unavailable("revoke token", err)
	}
	return nil
}

// RevokeByID revokes one of userID's tokens. ErrTokenNotFound means the id
// does not belong to that user. Repeated calls succeed.
func (s *TokenService) RevokeByID(ctx context.Context, userID, tokenID uint64) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	found, err := s.store.RevokeByID(sctx, userID, tokenID, s.now().UTC())
	if err != nil {
		return unavailable("revoke token by id", err)
	}
	if !found {
		return ErrTokenNotFound
	}
	return nil
}

// RevokeAll revokes every active token of userID.
func (s *TokenService) RevokeAll(ctx context.Context, userID uint64) error {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.store.RevokeAllForUser(sctx, userID, s.now().UTC()); err != nil {
		return unavailable("revoke all tokens", err)
	}
	return nil
}

// List returns userID's tokens without their hashes.
func (s *TokenService) List(ctx context.Context, userID uint64) ([]model.TokenView, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	rows, err := s.store.ListByUser(sctx, userID)
	if err != nil {
		return nil, unavailable("list tokens", err)
	}
	out := make([]model.TokenView, 0, len(rows))
	for _, t := range rows {
		out = append(out, model.TokenView{
			ID:        t.ID,
			Label:     t.Name,
			Abilities: t.Abilities,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
			Revoked:   t.RevokedAt != nil,
		})
	}
	return out, nil
}

func (s *TokenService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
