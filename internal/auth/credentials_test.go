package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/astacala/gateway/internal/model"
	"github.com/astacala/gateway/internal/utils"
)

func seededUsers(t *testing.T) *memUsers {
	t.Helper()
	hash, err := utils.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	return newMemUsers(
		model.User{ID: 1, Email: "admin@test.com", PasswordHash: hash, Role: "ADMIN", IsActive: true},
		model.User{ID: 2, Email: "gone@test.com", PasswordHash: hash, Role: "volunteer", IsActive: false},
		model.User{ID: 3, Email: "budi@admin.astacala.local", PasswordHash: hash, Role: "admin", IsActive: true},
	)
}

func newTestVerifier(users UserStore) *Verifier {
	return NewVerifier(users, VerifierOptions{LegacyDomain: "admin.astacala.local", BcryptCost: bcrypt.MinCost}, zap.NewNop())
}

func TestVerifyAcceptsActiveUser(t *testing.T) {
	users := seededUsers(t)
	v := newTestVerifier(users)

	u, err := v.Verify(context.Background(), "Admin@Test.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.NotNil(t, u.LastLoginAt)
	assert.Contains(t, users.touched, uint64(1))
}

func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	v := newTestVerifier(seededUsers(t))
	ctx := context.Background()

	_, wrongPassword := v.Verify(ctx, "admin@test.com", "nope")
	_, unknownEmail := v.Verify(ctx, "nobody@test.com", "password123")
	_, empty := v.Verify(ctx, "", "")

	for _, err := range []error{wrongPassword, unknownEmail, empty} {
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
	}
}

func TestVerifyInactiveAccount(t *testing.T) {
	v := newTestVerifier(seededUsers(t))

	_, err := v.Verify(context.Background(), "gone@test.com", "password123")
	assert.ErrorIs(t, err, ErrAccountInactive)

	_, err = v.Verify(context.Background(), "gone@test.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyLegacyUsername(t *testing.T) {
	v := newTestVerifier(seededUsers(t))

	u, err := v.Verify(context.Background(), "budi", "password123")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), u.ID)
}

func TestVerifyStoreFailureIsServiceUnavailable(t *testing.T) {
	users := seededUsers(t)
	users.failErr = errors.New("connection refused")
	v := newTestVerifier(users)

	_, err := v.Verify(context.Background(), "admin@test.com", "password123")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginEmail(t *testing.T) {
	cases := []struct{ in, domain, want string }{
		{"admin@test.com", "x.local", "admin@test.com"},
		{" ADMIN@Test.com", "x.local", "admin@test.com"},
		{"budi", "admin.astacala.local", "budi@admin.astacala.local"},
		{"Budi", "@Web.Local", "budi@web.local"},
		{"budi", "", "budi"},
		{"", "x.local", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LoginEmail(c.in, c.domain), c.in)
	}
}
