package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/utils"
)

// Verifier checks login credentials against stored bcrypt hashes.
type Verifier struct {
	users        UserStore
	legacyDomain string
	timeout      time.Duration
	cost         int
	now          func() time.Time
	log          *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

// VerifierOptions configures a Verifier.
type VerifierOptions struct {
	LegacyDomain string        // domain appended to bare usernames
	StoreTimeout time.Duration // bound on each store call
	BcryptCost   int           // cost of the decoy hash compared for unknown emails
}

// NewVerifier returns a Verifier reading accounts from users.
func NewVerifier(users UserStore, opts VerifierOptions, log *zap.Logger) *Verifier {
	return &Verifier{
		users:        users,
		legacyDomain: opts.LegacyDomain,
		timeout:      opts.StoreTimeout,
		cost:         opts.BcryptCost,
		now:          time.Now,
		log:          log.Named("verifier"),
	}
}

// Verify resolves identifier to an email, loads the user and checks the
// password. It returns ErrInvalidCredentials for an unknown email or a wrong
// password, ErrAccountInactive for a deactivated account with the right
// password, and ErrServiceUnavailable when the store fails. On success the
// last-login timestamp is updated best-effort.
func (v *Verifier) Verify(ctx context.Context, identifier, password string) (model.User, error) {
	email := LoginEmail(identifier, v.legacyDomain)
	if email == "" || password == "" {
		return model.User{}, ErrInvalidCredentials
	}

	sctx, cancel := v.storeCtx(ctx)
	u, err := v.users.FindUserByEmail(sctx, email)
	cancel()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// spend the same bcrypt work as a real comparison
			utils.VerifyPassword(v.decoyHash(), password)
			v.log.Info("login rejected", zap.String("reason", "unknown_email"))
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, unavailable("find user by email", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		v.log.Info("login rejected", zap.String("reason", "wrong_password"), zap.Uint64("user_id", u.ID))
		return model.User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		v.log.Info("login rejected", zap.String("reason", "inactive"), zap.Uint64("user_id", u.ID))
		return model.User{}, ErrAccountInactive
	}

	now := v.now().UTC()
	sctx, cancel = v.storeCtx(ctx)
	defer cancel()
	if err := v.users.TouchLastLogin(sctx, u.ID, now); err != nil {
		v.log.Warn("update last login failed", zap.Uint64("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}
	return u, nil
}

func (v *Verifier) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, v.timeout)
}

func (v *Verifier) decoyHash() string {
	v.dummyOnce.Do(func() {
		h, err := utils.HashPassword("decoy-password-for-timing", v.cost)
		if err != nil {
			v.log.Warn("decoy hash generation failed", zap.Error(err))
		}
		v.dummyHash = h
	})
	return v.dummyHash
}
