package auth

import "strings"

// Role is a canonical access tier.
type Role string

const (
	RoleVolunteer  Role = "VOLUNTEER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// AllRoles lists every canonical role, lowest tier first.
var AllRoles = []Role{RoleVolunteer, RoleAdmin, RoleSuperAdmin}

// AdminRoles is the admin tier.
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

// roleAliases keys are lower-cased with '-' and ' ' folded to '_'.
var roleAliases = map[string]Role{
	"volunteer":     RoleVolunteer,
	"relawan":       RoleVolunteer,
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"super_admin":   RoleSuperAdmin,
	"superadmin":    RoleSuperAdmin,
}

var roleKeyReplacer = strings.NewReplacer("-", "_", " ", "_")

// CanonicalRole maps a stored or configured role value onto the enum,
// ignoring case and the spellings seen in historical data. ok is false for
// anything unrecognized.
func CanonicalRole(raw string) (Role, bool) {
	key := roleKeyReplacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
	r, ok := roleAliases[key]
	return r, ok
}

// IsAdminTier reports whether r is ADMIN or SUPER_ADMIN.
func (r Role) IsAdminTier() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) String() string { return string(r) }
