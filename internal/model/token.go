package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Abilities is the set of scopes attached to an access token, persisted as a
// JSON array in a TEXT column.
type Abilities []string

// Value implements driver.Valuer.
func (a Abilities) Value() (driver.Value, error) {
	if a == nil {
		a = Abilities{}
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *Abilities) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Abilities{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("abilities: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("abilities: %w", err)
	}
	*a = out
	return nil
}

// Allows reports whether the set grants ability. "*" grants everything.
func (a Abilities) Allows(ability string) bool {
	for _, x := range a {
		if x == "*" || x == ability {
			return true
		}
	}
	return false
}

// Covers reports whether every entry of other is granted by a. Only a
// wildcard set covers a request for "*".
func (a Abilities) Covers(other Abilities) bool {
	for _, x := range other {
		if !a.Allows(x) {
			return false
		}
	}
	return true
}

// AccessToken mirrors a row of the `access_tokens` table. The plaintext
// token is never stored; TokenHash is the SHA-256 hex digest of it.
type AccessToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	Name      string     `db:"name"` // human readable label, e.g. "forum token"
	TokenHash string     `db:"token_hash"`
	Abilities Abilities  `db:"abilities"`
	CreatedAt time.Time  `db:"created_at"`
	ExpiresAt *time.Time `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

// TokenView is the listing representation of a token; it never includes the
// hash.
type TokenView struct {
	ID        uint64     `json:"id"`
	Label     string     `json:"label"`
	Abilities Abilities  `json:"abilities"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	Revoked   bool       `json:"revoked"`
}

// TokenRequest is the canonical body of an explicit "create token" call.
type TokenRequest struct {
	Label     string    `json:"label" validate:"omitempty,max=191"`
	Abilities Abilities `json:"abilities" validate:"omitempty,dive,required,max=64"`
}

// IssuedToken is returned exactly once after issuance.
type IssuedToken struct {
	ID          uint64     `json:"id"`
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	Abilities   Abilities  `json:"abilities"`
	ExpiresAt   *time.Time `json:"expires_at"`
}
