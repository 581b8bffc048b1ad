package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCanonicalRole(t *testing.T) {
	cases := map[string]Role{
		"admin":         RoleAdmin,
		"ADMIN":         RoleAdmin,
		" Admin ":       RoleAdmin,
		"administrator": RoleAdmin,
		"super_admin":   RoleSuperAdmin,
		"SUPER_ADMIN":   RoleSuperAdmin,
		"super-admin":   RoleSuperAdmin,
		"Super Admin":   RoleSuperAdmin,
		"superadmin":    RoleSuperAdmin,
		"volunteer":     RoleVolunteer,
		"VOLUNTEER":     RoleVolunteer,
		"relawan":       RoleVolunteer,
	}
	for raw, want := range cases {
		got, ok := CanonicalRole(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "root", "adm1n", "super__admin", "guest"} {
		_, ok := CanonicalRole(raw)
		assert.False(t, ok, raw)
	}
}

func TestAuthorizeMixedCaseFixtures(t *testing.T) {
	a := NewAuthorizer(zap.NewNop())
	required := AdminRoles

	for _, raw := range []string{"admin", "ADMIN", "SUPER_ADMIN", "super_admin"} {
		assert.Equal(t, Allow, a.Authorize(raw, required), raw)
	}
	for _, raw := range []string{"volunteer", "VOLUNTEER", "", "owner"} {
		assert.Equal(t, Deny, a.Authorize(raw, required), raw)
	}
}

func TestAuthorizeIsMembershipOfCanonicalForms(t *testing.T) {
	a := NewAuthorizer(zap.NewNop())
	raws := []string{"admin", "ADMIN", "SUPER_ADMIN", "super-admin", "volunteer", "Relawan", "unknown"}
	policies := [][]Role{
		{RoleVolunteer},
		{RoleAdmin},
		{RoleSuperAdmin},
		AdminRoles,
		AllRoles,
	}
	for _, raw := range raws {
		for _, p := range policies {
			canon, ok := CanonicalRole(raw)
			want := Deny
			if ok {
				for _, r := range p {
					if r == canon {
						want = Allow
					}
				}
			}
			assert.Equal(t, want, a.Authorize(raw, p), "%s vs %v", raw, p)
		}
	}
}

func TestAuthorizeEmptyPolicyDenies(t *testing.T) {
	a := NewAuthorizer(zap.NewNop())
	assert.Equal(t, Deny, a.Authorize("SUPER_ADMIN", nil))
}
