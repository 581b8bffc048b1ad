package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyCanonicalizesRoles(t *testing.T) {
	p, err := NewPolicy(map[string]RuleSpec{
		"reports.verify": {Roles: []string{"admin", "SUPER_ADMIN", "Admin"}},
		"reports.create": {Roles: []string{"volunteer"}, Ability: "reports:write"},
	})
	require.NoError(t, err)

	rule, ok := p.FindRolePolicy("reports.verify")
	require.True(t, ok)
	assert.Equal(t, []Role{RoleAdmin, RoleSuperAdmin}, rule.Roles)
	assert.True(t, rule.Allows(RoleSuperAdmin))
	assert.False(t, rule.Allows(RoleVolunteer))

	rule, ok = p.FindRolePolicy("reports.create")
	require.True(t, ok)
	assert.Equal(t, "reports:write", rule.Ability)

	_, ok = p.FindRolePolicy("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"reports.create", "reports.verify"}, p.Endpoints())
}

func TestNewPolicyRejectsUndefinedRoles(t *testing.T) {
	_, err := NewPolicy(map[string]RuleSpec{
		"a": {Roles: []string{"ADMIN", "owner"}},
		"b": {Roles: nil},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `policy a: undefined role "owner"`)
	assert.Contains(t, err.Error(), "policy b: no roles")
}

func TestMustPolicyPanicsOnBadRole(t *testing.T) {
	assert.Panics(t, func() {
		MustPolicy(map[string]RuleSpec{"x": {Roles: []string{"root"}}})
	})
}

func TestNilPolicyHasNoRules(t *testing.T) {
	var p *Policy
	_, ok := p.FindRolePolicy("anything")
	assert.False(t, ok)
}
