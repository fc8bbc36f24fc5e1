package model

import (
	"strings"
	"time"
)

// Placeholders used when the provider omits a field.
const (
	UnknownName        = "Desconhecido"
	PhoneNotFound      = "Não encontrado"
	DefaultDescription = "Sem descrição disponível."
	DefaultMatchReason = "Oportunidade de modernização digital."
)

// QualityTier is a coarse business-value classification of a lead.
type QualityTier string

const (
	TierOpportunity QualityTier = "opportunity"
	TierHighTicket  QualityTier = "high-ticket"
	TierUrgent      QualityTier = "urgent"
)

// ParseQualityTier maps provider spellings onto a known tier. Unknown or
// empty values fall back to TierOpportunity.
func ParseQualityTier(s string) QualityTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high-ticket", "high_ticket", "highticket", "high ticket":
		return TierHighTicket
	case "urgent":
		return TierUrgent
	default:
		return TierOpportunity
	}
}

// Score is the temperature of a lead, derived from its web presence.
type Score string

const (
	ScoreHot  Score = "hot"
	ScoreWarm Score = "warm"
	ScoreCold Score = "cold"
)

// LeadStatus is the pipeline stage of a saved lead.
type LeadStatus string

const (
	StatusNew         LeadStatus = "new"
	StatusContacted   LeadStatus = "contacted"
	StatusNegotiation LeadStatus = "negotiation"
	StatusClosed      LeadStatus = "closed"
)

// LeadStatuses lists pipeline stages in board order.
var LeadStatuses = []LeadStatus{StatusNew, StatusContacted, StatusNegotiation, StatusClosed}

// Valid reports whether s is a known pipeline stage.
func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Lead is a prospective business contact.
type Lead struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Phone           string      `json:"phone"`
	NormalizedPhone string      `json:"normalized_phone,omitempty"`
	Instagram       string      `json:"instagram,omitempty"`
	Website         string      `json:"website,omitempty"`
	Description     string      `json:"description"`
	PainPoints      []string    `json:"pain_points"`
	MatchReason     string      `json:"match_reason"`
	QualityTier     QualityTier `json:"quality_tier"`
	Score           Score       `json:"score"`
	Status          LeadStatus  `json:"status"`
	Audit           string      `json:"audit,omitempty"`
	ConfidenceScore float64     `json:"confidence_score"`
	Rating          float64     `json:"rating,omitempty"`
	ReviewCount     int         `json:"review_count,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// HasWebsite reports whether the lead has a website.
func (l Lead) HasWebsite() bool { return l.Website != "" }

// HasInstagram reports whether the lead has an Instagram handle.
func (l Lead) HasInstagram() bool { return l.Instagram != "" }

// GroundingSource is a citation surfaced by the provider.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}
