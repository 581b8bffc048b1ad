package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/astacala/gateway/internal/model"
)

const userColumns = "id,email,name,password_hash,role,is_active,phone,organization,birth_place,member_number,last_login_at,created_at,updated_at"

type UserRepo struct{ DB *sqlx.DB }

// NewUserRepo returns a UserRepo over db.
func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u (with an already hashed password) and returns its ID.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email,name,password_hash,role,is_active,phone,organization,birth_place,member_number,created_at,updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		normalizeEmail(u.Email), u.Name, u.PasswordHash, u.Role, u.IsActive,
		u.Phone, u.Organization, u.BirthPlace, u.MemberNumber, now, now)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindUserByEmail fetches a user by normalized email.
func (r *UserRepo) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
	return u, err
}

// FindUserByID fetches a user by id.
func (r *UserRepo) FindUserByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.GetContext(ctx, &u,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return u, err
}

// List returns users ordered by id, at most limit rows after offset.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	users := []model.User{}
	err := r.DB.SelectContext(ctx, &users,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	return users, err
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=? WHERE id=?", at.UTC(), id)
	return err
}

// UpdateProfile writes the self-service profile columns of u.
func (r *UserRepo) UpdateProfile(ctx context.Context, u model.User) error {
	return r.updateOne(ctx,
		"UPDATE users SET name=?,phone=?,organization=?,birth_place=?,member_number=?,updated_at=? WHERE id=?",
		u.Name, u.Phone, u.Organization, u.BirthPlace, u.MemberNumber, time.Now().UTC(), u.ID)
}

// SetActive flips the active flag. Users are never hard-deleted.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	return r.updateOne(ctx,
		"UPDATE users SET is_active=?,updated_at=? WHERE id=?", active, time.Now().UTC(), id)
}

// SetRole stores role verbatim; callers pass a canonical value.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string) error {
	return r.updateOne(ctx,
		"UPDATE users SET role=?,updated_at=? WHERE id=?", role, time.Now().UTC(), id)
}

// SetPassword replaces the stored bcrypt hash.
func (r *UserRepo) SetPassword(ctx context.Context, id uint64, hash string) error {
	return r.updateOne(ctx,
		"UPDATE users SET password_hash=?,updated_at=? WHERE id=?", hash, time.Now().UTC(), id)
}

// updateOne runs an UPDATE keyed by id. A missing row is reported as
// sql.ErrNoRows; matching-but-unchanged rows are not an error, so the id is
// re-checked instead of trusting RowsAffected (MySQL reports 0 for no-op
// updates).
func (r *UserRepo) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	var id uint64
	return r.DB.GetContext(ctx, &id, "SELECT id FROM users WHERE id=?", args[len(args)-1])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
