package surface

// Resource names.
const (
	ResLogin        = "login"
	ResUser         = "user"
	ResProfile      = "profile"
	ResReport       = "report"
	ResVerification = "verification"
	ResToken        = "token"
	ResChannel      = "channel"
	ResStatus       = "status"
	ResRole         = "role"
)

// Resource is the canonical shape of one kind of payload.
type Resource struct {
	Name     string
	Fields   []string
	Required []string
}

func (r Resource) has(field string) bool {
	for _, f := range r.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Resources are the canonical payloads. Field names match the json tags of
// the corresponding internal/model types.
var Resources = []Resource{
	{
		Name:     ResLogin,
		Fields:   []string{"identifier", "password"},
		Required: []string{"identifier", "password"},
	},
	{
		Name: ResUser,
		Fields: []string{"id", "email", "name", "role", "phone", "organization",
			"birth_place", "member_number", "is_active", "last_login_at"},
	},
	{
		Name:   ResProfile,
		Fields: []string{"name", "phone", "organization", "birth_place", "member_number"},
	},
	{
		Name: ResReport,
		Fields: []string{"id", "title", "disaster_type", "description", "location_name",
			"latitude", "longitude", "severity", "incident_at", "personnel_count",
			"contact_phone", "team_name"},
		Required: []string{"title", "disaster_type", "description", "location_name"},
	},
	{
		Name:     ResVerification,
		Fields:   []string{"status", "notes"},
		Required: []string{"status"},
	},
	{
		Name:   ResToken,
		Fields: []string{"label", "abilities"},
	},
	{
		Name:     ResChannel,
		Fields:   []string{"channel_name"},
		Required: []string{"channel_name"},
	},
	{
		Name:     ResStatus,
		Fields:   []string{"is_active"},
		Required: []string{"is_active"},
	},
	{
		Name:     ResRole,
		Fields:   []string{"role"},
		Required: []string{"role"},
	},
}
