package surface

import (
	"time"

	"github.com/astacala/gateway/internal/model"
)

// MobileBody is the mobile envelope.
type MobileBody struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// MobileTokens is the token block nested under data.tokens on mobile login.
type MobileTokens struct {
	AccessToken string     `json:"accessToken"`
	TokenType   string     `json:"tokenType"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

// LegacyBody is the flat legacy envelope. Token fields sit at the top level.
type LegacyBody struct {
	Status      string              `json:"status"`
	Message     string              `json:"message"`
	AccessToken string              `json:"access_token,omitempty"`
	TokenType   string              `json:"token_type,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
	User        any                 `json:"user,omitempty"`
	Data        any                 `json:"data,omitempty"`
	Errors      map[string][]string `json:"errors,omitempty"`
}

const (
	legacyOK    = "success"
	legacyError = "error"
)

// OK wraps data in the surface's success envelope.
func OK(s Surface, key MessageKey, data any) any {
	msg := Message(s, key)
	if s == Legacy {
		return LegacyBody{Status: legacyOK, Message: msg, Data: data}
	}
	return MobileBody{Success: true, Message: msg, Data: data}
}

// Fail builds the surface's error envelope. verr may be nil.
func Fail(s Surface, key MessageKey, verr *ValidationError) any {
	msg := Message(s, key)
	var fields map[string][]string
	if verr != nil {
		fields = verr.ByField()
	}
	if s == Legacy {
		return LegacyBody{Status: legacyError, Message: msg, Errors: fields}
	}
	return MobileBody{Success: false, Message: msg, Errors: fields}
}

// Login renders a successful login: nested data.user/data.tokens on mobile,
// flat access_token plus user on legacy.
func (a *Adapter) Login(s Surface, user model.UserView, tok model.IssuedToken) (any, error) {
	u, err := a.Encode(s, ResUser, user)
	if err != nil {
		return nil, err
	}
	msg := Message(s, MsgLoginOK)
	if s == Legacy {
		return LegacyBody{
			Status:      legacyOK,
			Message:     msg,
			AccessToken: tok.AccessToken,
			TokenType:   tok.TokenType,
			ExpiresAt:   tok.ExpiresAt,
			User:        u,
		}, nil
	}
	return MobileBody{
		Success: true,
		Message: msg,
		Data: map[string]any{
			"user": u,
			"tokens": MobileTokens{
				AccessToken: tok.AccessToken,
				TokenType:   tok.TokenType,
				ExpiresAt:   tok.ExpiresAt,
			},
		},
	}, nil
}
