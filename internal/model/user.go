package model

import "time"

// User mirrors a row of the `users` table. Role holds the value exactly as
// stored; historical rows use inconsistent casing ("admin", "SUPER_ADMIN",
// "relawan"), so callers canonicalize it through auth.CanonicalRole before
// comparing.
type User struct {
	ID           uint64     `db:"id"`
	Email        string     `db:"email"` // stored lower-cased
	Name         string     `db:"name"`
	PasswordHash string     `db:"password_hash"` // bcrypt
	Role         string     `db:"role"`
	IsActive     bool       `db:"is_active"`
	Phone        string     `db:"phone"`
	Organization string     `db:"organization"`
	BirthPlace   string     `db:"birth_place"`
	MemberNumber string     `db:"member_number"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// UserView is the canonical, password-free representation handed to the
// surface adapter for rendering.
type UserView struct {
	ID           uint64     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Phone        string     `json:"phone"`
	Organization string     `json:"organization"`
	BirthPlace   string     `json:"birth_place"`
	MemberNumber string     `json:"member_number"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// ProfileUpdate carries the canonical profile fields a user may change on
// their own account. Nil means "leave unchanged".
type ProfileUpdate struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=191"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	Organization *string `json:"organization" validate:"omitempty,max=191"`
	BirthPlace   *string `json:"birth_place" validate:"omitempty,max=191"`
	MemberNumber *string `json:"member_number" validate:"omitempty,max=64"`
}

// Apply copies the non-nil fields of p onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Organization != nil {
		u.Organization = *p.Organization
	}
	if p.BirthPlace != nil {
		u.BirthPlace = *p.BirthPlace
	}
	if p.MemberNumber != nil {
		u.MemberNumber = *p.MemberNumber
	}
}

// Credentials is the canonical login request shared by both surfaces.
type Credentials struct {
	Identifier string `json:"identifier" validate:"required,max=191"`
	Password   string `json:"password" validate:"required,max=72"`
}

// StatusChange toggles a user's active flag.
type StatusChange struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// RoleChange assigns a new role; the value is canonicalized by the handler.
type RoleChange struct {
	Role string `json:"role" validate:"required"`
}
