package auth

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/astacala/gateway/internal/model"
)

type memUsers struct {
	mu      sync.Mutex
	byID    map[uint64]model.User
	failErr error
	touched map[uint64]time.Time
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{byID: map[uint64]model.User{}, touched: map[uint64]time.Time{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) FindUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return model.User{}, m.failErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (m *memUsers) FindUserByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return model.User{}, m.failErr
	}
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) TouchLastLogin(_ context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[id] = at
	return nil
}

type memTokens struct {
	mu      sync.Mutex
	nextID  uint64
	rows    map[string]model.AccessToken
	failErr error
}

func newMemTokens() *memTokens {
	return &memTokens{rows: map[string]model.AccessToken{}}
}

func (m *memTokens) InsertToken(_ context.Context, t model.AccessToken) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return 0, m.failErr
	}
	m.nextID++
	t.ID = m.nextID
	m.rows[t.TokenHash] = t
	return t.ID, nil
}

func (m *memTokens) FindTokenByHash(_ context.Context, h string) (model.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return model.AccessToken{}, m.failErr
	}
	t, ok := m.rows[h]
	if !ok {
		return model.AccessToken{}, sql.ErrNoRows
	}
	return t, nil
}

func (m *memTokens) ListByUser(_ context.Context, userID uint64) ([]model.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AccessToken
	for _, t := range m.rows {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTokens) RevokeToken(_ context.Context, h string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if t, ok := m.rows[h]; ok && t.RevokedAt == nil {
		t.RevokedAt = &at
		m.rows[h] = t
	}
	return nil
}

func (m *memTokens) RevokeByID(_ context.Context, userID, tokenID uint64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, t := range m.rows {
		if t.ID == tokenID && t.UserID == userID {
			if t.RevokedAt == nil {
				t.RevokedAt = &at
				m.rows[h] = t
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h, t := range m.rows {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &at
			m.rows[h] = t
		}
	}
	return nil
}
