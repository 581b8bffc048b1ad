package auth

import (
	"context"

	"github.com/astacala/gateway/internal/model"
)

// Principal is the authenticated caller of one request. It travels in the
// request context and is never kept anywhere else.
type Principal struct {
	UserID    uint64
	Email     string
	Name      string
	Role      Role   // empty when RawRole is unrecognized
	RawRole   string // as stored
	TokenID   uint64
	Abilities model.Abilities
}

// Can reports whether the presenting token grants ability.
func (p Principal) Can(ability string) bool {
	return ability == "" || p.Abilities.Allows(ability)
}

type principalKey struct{}

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
