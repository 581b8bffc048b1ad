// Package events carries domain events from the gateway to the message
// broker. Publishing is fire-and-forget: a failed publish is logged and
// counted, never surfaced to the client.
package events

import (
	"encoding/json"
	"time"

	"github.com/segmentio/ksuid"
)

// Event names.
const (
	ReportSubmitted    = "report.submitted"
	ReportVerified     = "report.verified"
	UserLoggedIn       = "user.logged_in"
	UserDeactivated    = "user.deactivated"
	UserActivated      = "user.activated"
	UserRoleChanged    = "user.role_changed"
	UserProfileUpdated = "user.profile_updated"
)

// Envelope is the JSON body of every message on the events queue.
type Envelope struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewID returns a sortable, globally unique id.
func NewID() string {
	return ksuid.New().String()
}

// NewEnvelope marshals payload and stamps the envelope with a fresh id.
func NewEnvelope(name string, payload any, at time.Time) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{ID: NewID(), Name: name, OccurredAt: at.UTC(), Payload: body}, nil
}

// ReportSubmittedPayload accompanies report.submitted. Report holds the
// canonical report fields.
type ReportSubmittedPayload struct {
	ReportID   string `json:"report_id"`
	ReporterID uint64 `json:"reporter_id"`
	Surface    string `json:"surface"`
	Report     any    `json:"report"`
}

// ReportVerifiedPayload accompanies report.verified.
type ReportVerifiedPayload struct {
	ReportID   string `json:"report_id"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
	VerifierID uint64 `json:"verifier_id"`
}

// UserPayload accompanies the user.* events.
type UserPayload struct {
	UserID  uint64 `json:"user_id"`
	ActorID uint64 `json:"actor_id,omitempty"`
	Role    string `json:"role,omitempty"`
	Surface string `json:"surface,omitempty"`
}
