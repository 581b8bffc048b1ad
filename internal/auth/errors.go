// Package auth is the request-scoped authentication and role-authorization
// core shared by the mobile and legacy web surfaces: credential
// verification, opaque bearer tokens, role canonicalization and the static
// endpoint policy.
package auth

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers match with errors.Is. ErrTokenExpired and
// ErrTokenRevoked wrap ErrTokenInvalid; the finer kinds exist for logs and
// metrics only and must never reach a client.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = fmt.Errorf("%w: expired", ErrTokenInvalid)
	ErrTokenRevoked       = fmt.Errorf("%w: revoked", ErrTokenInvalid)
	ErrTokenNotFound      = errors.New("token not found")
	ErrInsufficientRole   = errors.New("insufficient role")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// unavailable wraps a backing-store failure so that it surfaces as
// ErrServiceUnavailable while keeping the cause for logs.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrServiceUnavailable, op, err)
}

// Reason returns a short label for err suitable for log fields and metric
// labels.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrServiceUnavailable):
		return "unavailable"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrTokenInvalid):
		return "unknown_token"
	case errors.Is(err, ErrAccountInactive):
		return "inactive"
	case errors.Is(err, ErrInvalidCredentials):
		return "bad_credentials"
	case errors.Is(err, ErrInsufficientRole):
		return "forbidden"
	default:
		return "error"
	}
}
