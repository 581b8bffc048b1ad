package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/astacala/gateway/internal/model"
)

const tokenColumns = "id,user_id,name,token_hash,abilities,created_at,expires_at,revoked_at"

// TokenRepo persists access tokens by hash. Every mutation is a single
// statement, so a concurrent reader sees either no row or a complete one.
type TokenRepo struct{ DB *sqlx.DB }

// NewTokenRepo returns a TokenRepo over db.
func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{DB: db} }

// InsertToken stores a token row and returns its ID.
func (r *TokenRepo) InsertToken(ctx context.Context, t model.AccessToken) (uint64, error) {
	var exp any
	if t.ExpiresAt != nil {
		exp = t.ExpiresAt.UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO access_tokens (user_id,name,token_hash,abilities,created_at,expires_at) VALUES (?,?,?,?,?,?)",
		t.UserID, t.Name, t.TokenHash, t.Abilities, t.CreatedAt.UTC(), exp)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindTokenByHash returns the row for tokenHash regardless of its state;
// expiry and revocation are judged by the caller.
func (r *TokenRepo) FindTokenByHash(ctx context.Context, tokenHash string) (model.AccessToken, error) {
	var t model.AccessToken
	err := r.DB.GetContext(ctx, &t,
		"SELECT "+tokenColumns+" FROM access_tokens WHERE token_hash=? LIMIT 1", tokenHash)
	return t, err
}

// ListByUser returns every token of userID, newest first.
func (r *TokenRepo) ListByUser(ctx context.Context, userID uint64) ([]model.AccessToken, error) {
	tokens := []model.AccessToken{}
	err := r.DB.SelectContext(ctx, &tokens,
		"SELECT "+tokenColumns+" FROM access_tokens WHERE user_id=? ORDER BY id DESC", userID)
	return tokens, err
}

// RevokeToken marks a token as revoked. Revoking an already revoked or
// unknown hash is a no-op.
func (r *TokenRepo) RevokeToken(ctx context.Context, tokenHash string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE access_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL",
		at.UTC(), tokenHash)
	return err
}

// RevokeByID revokes one token owned by userID and reports whether such a
// token exists.
func (r *TokenRepo) RevokeByID(ctx context.Context, userID, tokenID uint64, at time.Time) (bool, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM access_tokens WHERE id=? AND user_id=?", tokenID, userID); err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE access_tokens SET revoked_at=? WHERE id=? AND user_id=? AND revoked_at IS NULL",
		at.UTC(), tokenID, userID)
	return err == nil, err
}

// RevokeAllForUser revokes all of a user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE access_tokens SET revoked_at=? WHERE user_id=? AND revoked_at IS NULL",
		at.UTC(), userID)
	return err
}
