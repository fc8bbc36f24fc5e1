package model

// DefaultTicketValue is the assumed deal size when none is configured.
const DefaultTicketValue = 1500

// ServiceContext describes what the user sells. It steers prompts into
// "hunter mode" and drives the revenue estimate on the dashboard.
type ServiceContext struct {
	ServiceName    string           `json:"service_name"`
	Description    string           `json:"description"`
	TargetAudience string           `json:"target_audience,omitempty"`
	TicketValue    float64          `json:"ticket_value"`
	Insights       *ServiceInsights `json:"insights,omitempty"`
}

// Configured reports whether a service has been described.
func (s *ServiceContext) Configured() bool {
	return s != nil && s.ServiceName != ""
}

// Ticket returns the ticket value, falling back to DefaultTicketValue.
func (s *ServiceContext) Ticket() float64 {
	if s == nil || s.TicketValue <= 0 {
		return DefaultTicketValue
	}
	return s.TicketValue
}

// ServiceInsights is strategy advice generated for a service.
type ServiceInsights struct {
	RecommendedNiche string  `json:"recommendedNiche"`
	SuggestedTicket  float64 `json:"suggestedTicket"`
	Reasoning        string  `json:"reasoning"`
	Potential        string  `json:"potential"`
}

// SequenceStep is one touch in a follow-up cadence.
type SequenceStep struct {
	Day         int    `json:"day"`
	Trigger     string `json:"trigger"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
}

// RoleplayProfile is the persona the simulated prospect plays.
type RoleplayProfile string

const (
	ProfileSkeptic    RoleplayProfile = "skeptic"
	ProfileCheapskate RoleplayProfile = "cheapskate"
	ProfileHurried    RoleplayProfile = "hurried"
)

// Valid reports whether p is a known persona.
func (p RoleplayProfile) Valid() bool {
	switch p {
	case ProfileSkeptic, ProfileCheapskate, ProfileHurried:
		return true
	}
	return false
}

// ParseRoleplayProfile accepts a persona name or its short alias
// ("cheap", "hasty"). Unknown names are returned as-is and fail Valid.
func ParseRoleplayProfile(s string) RoleplayProfile {
	switch s {
	case "cheap":
		return ProfileCheapskate
	case "hasty":
		return ProfileHurried
	default:
		return RoleplayProfile(s)
	}
}

// Sender values for RoleplayMessage.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// RoleplayMessage is one turn of an objection-handling roleplay.
type RoleplayMessage struct {
	Sender   string `json:"sender"`
	Text     string `json:"text"`
	Feedback string `json:"feedback,omitempty"`
	Score    int    `json:"score,omitempty"`
}

// DashboardStats summarises the saved pipeline.
type DashboardStats struct {
	SavedLeads       int                `json:"saved_leads"`
	ValidPhones      int                `json:"valid_phones"`
	ByStatus         map[LeadStatus]int `json:"by_status"`
	ByScore          map[Score]int      `json:"by_score"`
	TicketValue      float64            `json:"ticket_value"`
	PotentialRevenue float64            `json:"potential_revenue"`
}
