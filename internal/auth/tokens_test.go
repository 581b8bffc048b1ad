package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/utils"
)

func TestIssueThenValidateReturnsGrant(t *testing.T) {
	store := newMemTokens()
	s := NewTokenService(store, TokenOptions{}, zap.NewNop())
	ctx := context.Background()

	issued, err := s.Issue(ctx, 42, "forum token", model.Abilities{"forum:read", "forum:write"})
	require.NoError(t, err)
	assert.Equal(t, TokenType, issued.TokenType)
	assert.Nil(t, issued.ExpiresAt)

	g, err := s.Validate(ctx, issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), g.UserID)
	assert.Equal(t, issued.ID, g.TokenID)
	assert.Equal(t, model.Abilities{"forum:read", "forum:write"}, g.Abilities)
}

func TestIssueStoresOnlyTheHash(t *testing.T) {
	store := newMemTokens()
	s := NewTokenService(store, TokenOptions{}, zap.NewNop())

	issued, err := s.Issue(context.Background(), 1, "", nil)
	require.NoError(t, err)

	for h, row := range store.rows {
		assert.NotEqual(t, issued.AccessToken, h)
		assert.Equal(t, utils.HashToken(issued.AccessToken), row.TokenHash)
		assert.Equal(t, DefaultTokenLabel, row.Name)
		assert.Equal(t, DefaultAbilities, row.Abilities)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	s := NewTokenService(newMemTokens(), TokenOptions{}, zap.NewNop())

	_, err := s.Validate(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = s.Validate(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRevokeIsIdempotent(t *testing.T) {
	s := NewTokenService(newMemTokens(), TokenOptions{}, zap.NewNop())
	ctx := context.Background()
	issued, err := s.Issue(ctx, 7, "api testing", nil)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, issued.AccessToken))
	_, err = s.Validate(ctx, issued.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	require.NoError(t, s.Revoke(ctx, issued.AccessToken))
	_, err = s.Validate(ctx, issued.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	require.NoError(t, s.Revoke(ctx, "never-issued"))
}

func TestRevokedBeatsExpiry(t *testing.T) {
	s := NewTokenService(newMemTokens(), TokenOptions{TTL: time.Hour}, zap.NewNop())
	ctx := context.Background()
	issued, err := s.Issue(ctx, 7, "", nil)
	require.NoError(t, err)
	require.NotNil(t, issued.ExpiresAt)

	require.NoError(t, s.Revoke(ctx, issued.AccessToken))
	_, err = s.Validate(ctx, issued.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestExpiredTokenStaysExpired(t *testing.T) {
	s := NewTokenService(newMemTokens(), TokenOptions{TTL: time.Minute}, zap.NewNop())
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	ctx := context.Background()

	issued, err := s.Issue(ctx, 9, "", nil)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(59 * time.Second) }
	_, err = s.Validate(ctx, issued.AccessToken)
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(time.Minute) }
	_, err = s.Validate(ctx, issued.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRevokeByIDOwnership(t *testing.T) {
	s := NewTokenService(newMemTokens(), TokenOptions{}, zap.NewNop())
	ctx := context.Background()
	mine, err := s.Issue(ctx, 1, "", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.RevokeByID(ctx, 2, mine.ID), ErrTokenNotFound)
	require.NoError(t, s.RevokeByID(ctx, 1, mine.ID))
	require.NoError(t, s.RevokeByID(ctx, 1, mine.ID))

	views, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Revoked)
}

func TestRevokeAllLeavesOtherUsers(t *testing.T) {
	s := NewTokenService(newMemTokens(), TokenOptions{}, zap.NewNop())
	ctx := context.Background()
	a1, _ := s.Issue(ctx, 1, "", nil)
	a2, _ := s.Issue(ctx, 1, "", nil)
	b, _ := s.Issue(ctx, 2, "", nil)

	require.NoError(t, s.RevokeAll(ctx, 1))
	for _, tok := range []model.IssuedToken{a1, a2} {
		_, err := s.Validate(ctx, tok.AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
	_, err := s.Validate(ctx, b.AccessToken)
	assert.NoError(t, err)
}

func TestConcurrentValidationOfSameToken(t *testing.T) {
	s := NewTokenService(newMemTokens(), TokenOptions{}, zap.NewNop())
	ctx := context.Background()
	issued, err := s.Issue(ctx, 5, "", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := s.Validate(ctx, issued.AccessToken)
			if err == nil && g.UserID != 5 {
				err = errors.New("wrong user")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestStoreFailuresAreServiceUnavailable(t *testing.T) {
	store := newMemTokens()
	s := NewTokenService(store, TokenOptions{}, zap.NewNop())
	ctx := context.Background()
	issued, err := s.Issue(ctx, 1, "", nil)
	require.NoError(t, err)

	store.failErr = context.DeadlineExceeded
	_, err = s.Validate(ctx, issued.AccessToken)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.NotErrorIs(t, err, ErrTokenInvalid)

	_, err = s.Issue(ctx, 1, "", nil)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.ErrorIs(t, s.Revoke(ctx, issued.AccessToken), ErrServiceUnavailable)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "expired", Reason(ErrTokenExpired))
	assert.Equal(t, "revoked", Reason(ErrTokenRevoked))
	assert.Equal(t, "unknown_token", Reason(ErrTokenInvalid))
	assert.Equal(t, "unavailable", Reason(unavailable("op", errors.New("boom"))))
	assert.Equal(t, "ok", Reason(nil))
}

func TestRevocationTimesAreUTC(t *testing.T) {
	store := newMemTokens()
	s := NewTokenService(store, TokenOptions{}, zap.NewNop())
	wib := time.FixedZone("WIB", 7*3600)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, wib) }
	ctx := context.Background()

	byValue, err := s.Issue(ctx, 1, "", nil)
	require.NoError(t, err)
	byID, err := s.Issue(ctx, 1, "", nil)
	require.NoError(t, err)
	_, err = s.Issue(ctx, 2, "", nil)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, byValue.AccessToken))
	require.NoError(t, s.RevokeByID(ctx, 1, byID.ID))
	require.NoError(t, s.RevokeAll(ctx, 2))

	for _, row := range store.rows {
		require.NotNil(t, row.RevokedAt)
		assert.Equal(t, time.UTC, row.RevokedAt.Location())
		assert.Equal(t, 2, row.RevokedAt.Hour())
	}
}
