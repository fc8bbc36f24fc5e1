package model

import "time"

// WebsiteRule constrains leads by website presence.
type WebsiteRule string

const (
	WebsiteAny         WebsiteRule = "any"
	WebsiteMustHave    WebsiteRule = "must_have"
	WebsiteMustNotHave WebsiteRule = "must_not_have"
)

// Filters are optional structural constraints applied to every candidate lead.
type Filters struct {
	WebsiteRule       WebsiteRule `json:"website_rule,omitempty"`
	InstagramRequired bool        `json:"instagram_required,omitempty"`
	MobileOnly        bool        `json:"mobile_only,omitempty"`
}

// BusinessSize is a hint for the size of businesses to look for.
type BusinessSize string

const (
	SizeSmall  BusinessSize = "small"
	SizeMedium BusinessSize = "medium"
	SizeLarge  BusinessSize = "large"
)

// SearchRequest describes one lead search.
type SearchRequest struct {
	Niche             string          `json:"niche"`
	Location          string          `json:"location"`
	Size              BusinessSize    `json:"size,omitempty"`
	TargetCount       int             `json:"target_count"`
	ExistingNames     []string        `json:"existing_names,omitempty"`
	Filters           Filters         `json:"filters"`
	CustomInstruction string          `json:"custom_instruction,omitempty"`
	Service           *ServiceContext `json:"service,omitempty"`
}

// Rejection reasons counted in SearchResult.Rejected.
const (
	RejectInvalidPhone = "invalid_phone"
	RejectDuplicate    = "duplicate"
	RejectFilter       = "filter"
)

// SearchResult is the outcome of a lead search.
type SearchResult struct {
	Leads         []Lead            `json:"leads"`
	Sources       []GroundingSource `json:"sources"`
	Attempts      int               `json:"attempts"`
	ProviderCalls int               `json:"provider_calls"`
	Rejected      map[string]int    `json:"rejected,omitempty"`
	Message       string            `json:"message,omitempty"`
}

// Empty reports whether the search produced no leads.
func (r *SearchResult) Empty() bool {
	return r == nil || len(r.Leads) == 0
}

// SearchHistoryItem records a past search.
type SearchHistoryItem struct {
	ID        string       `json:"id"`
	Niche     string       `json:"niche"`
	Location  string       `json:"location"`
	Size      BusinessSize `json:"size,omitempty"`
	Count     int          `json:"count"`
	Found     int          `json:"found"`
	Timestamp time.Time    `json:"timestamp"`
}
