package auth

import (
	"context"
	"time"

	"github.com/astacala/gateway/internal/model"
)

// UserStore is the slice of the user repository the gateway reads. Absent
// rows are reported as sql.ErrNoRows.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
	FindUserByID(ctx context.Context, id uint64) (model.User, error)
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// TokenStore persists access tokens by hash. Each method is a single atomic
// statement.
type TokenStore interface {
	InsertToken(ctx context.Context, t model.AccessToken) (uint64, error)
	FindTokenByHash(ctx context.Context, tokenHash string) (model.AccessToken, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.AccessToken, error)
	RevokeToken(ctx context.Context, tokenHash string, at time.Time) error
	RevokeByID(ctx context.Context, userID, tokenID uint64, at time.Time) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint64, at time.Time) error
}
