package auth

import "go.uber.org/zap"

// Decision is the outcome of an authorization check.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

// Authorizer enforces role requirements. It fails closed.
type Authorizer struct {
	log *zap.Logger
}

// NewAuthorizer returns an Authorizer that logs through log.
func NewAuthorizer(log *zap.Logger) *Authorizer {
	return &Authorizer{log: log.Named("authorizer")}
}

// Authorize allows iff the canonical form of userRole is in required. An
// empty required set denies; an unrecognized role denies and is logged as a
// data-integrity warning.
func (a *Authorizer) Authorize(userRole string, required []Role) Decision {
	role, ok := CanonicalRole(userRole)
	if !ok {
		a.log.Warn("unrecognized role value; denying", zap.String("role", userRole))
		return Deny
	}
	return a.AuthorizeRole(role, required)
}

// AuthorizeRole is Authorize for a role that is already canonical, such as
// Principal.Role. The empty role denies without logging; whoever produced
// it has already reported the stored value.
func (a *Authorizer) AuthorizeRole(role Role, required []Role) Decision {
	if role == "" || len(required) == 0 {
		return Deny
	}
	for _, r := range required {
		if r == role {
			return Allow
		}
	}
	return Deny
}
