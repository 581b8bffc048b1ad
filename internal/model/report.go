package model

// ReportDraft is the canonical disaster report submitted by a field team.
// Persisting reports is the job of downstream consumers of the
// report.submitted event; the gateway only normalizes and forwards it.
type ReportDraft struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title" validate:"required,max=255"`
	DisasterType   string   `json:"disaster_type" validate:"required,max=64"`
	Description    string   `json:"description" validate:"required"`
	LocationName   string   `json:"location_name" validate:"required,max=255"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Severity       string   `json:"severity,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	IncidentAt     string   `json:"incident_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	PersonnelCount *int     `json:"personnel_count,omitempty" validate:"omitempty,min=0"`
	ContactPhone   string   `json:"contact_phone,omitempty" validate:"omitempty,max=32"`
	TeamName       string   `json:"team_name,omitempty" validate:"omitempty,max=191"`
}

// Report verification outcomes.
const (
	ReportVerified = "VERIFIED"
	ReportRejected = "REJECTED"
)

// ReportVerification is an admin decision on a submitted report.
type ReportVerification struct {
	Status string `json:"status" validate:"required,oneof=VERIFIED REJECTED"`
	Notes  string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ChannelRequest asks for a real-time channel subscription ticket.
type ChannelRequest struct {
	ChannelName string `json:"channel_name" validate:"required,max=191"`
}
