package leadgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/prospect-cli/internal/model"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestDeriveScore(t *testing.T) {
	tests := []struct {
		name      string
		website   string
		instagram string
		want      model.Score
	}{
		{"no website", "", "", model.ScoreHot},
		{"no website with instagram", "", "@padaria", model.ScoreHot},
		{"website and instagram", "https://padaria.com.br", "@padaria", model.ScoreWarm},
		{"website only", "https://padaria.com.br", "", model.ScoreCold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveScore(tt.website, tt.instagram))
			// Same input, same answer.
			assert.Equal(t, tt.want, DeriveScore(tt.website, tt.instagram))
		})
	}
}

func TestSanitize_FullRecord(t *testing.T) {
	lead := Sanitize(map[string]any{
		"name":        "Padaria Pão Quente",
		"phone":       "(11) 98765-4321",
		"instagram":   "https://instagram.com/paoquente",
		"website":     "Not Found",
		"description": "Padaria de bairro.",
		"painPoints":  []any{"No Website", 42, "Low Google Rating"},
		"matchReason": "Muito movimento, zero presença digital.",
		"qualityTier": "URGENT",
		"score":       "cold",
	}, fixedNow)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "Padaria Pão Quente", lead.Name)
	assert.Equal(t, "(11) 98765-4321", lead.Phone)
	assert.Equal(t, "11987654321", lead.NormalizedPhone)
	assert.Equal(t, "https://instagram.com/paoquente", lead.Instagram)
	assert.Empty(t, lead.Website)
	assert.Equal(t, []string{"No Website", "Low Google Rating"}, lead.PainPoints)
	assert.Equal(t, model.TierUrgent, lead.QualityTier)
	assert.Equal(t, model.ScoreHot, lead.Score, "provider score is ignored")
	assert.Equal(t, model.StatusNew, lead.Status)
	assert.Equal(t, 1.0, lead.ConfidenceScore)
	assert.Equal(t, fixedNow, lead.CreatedAt)
}

func TestSanitize_Defaults(t *testing.T) {
	lead := Sanitize(map[string]any{
		"name":       123,
		"painPoints": "No Website",
		"website":    "sem site",
		"instagram":  "NÃO ENCONTRADO",
	}, fixedNow)

	assert.Equal(t, model.UnknownName, lead.Name)
	assert.Equal(t, model.PhoneNotFound, lead.Phone)
	assert.Empty(t, lead.NormalizedPhone)
	assert.Equal(t, model.DefaultDescription, lead.Description)
	assert.Equal(t, model.DefaultMatchReason, lead.MatchReason)
	assert.NotNil(t, lead.PainPoints)
	assert.Empty(t, lead.PainPoints)
	assert.Empty(t, lead.Website)
	assert.Empty(t, lead.Instagram)
	assert.Equal(t, model.TierOpportunity, lead.QualityTier)
	assert.Equal(t, model.ScoreHot, lead.Score)
}

func TestSanitize_EmptyRecord(t *testing.T) {
	assert.NotPanics(t, func() {
		lead := Sanitize(nil, fixedNow)
		assert.Equal(t, model.UnknownName, lead.Name)
	})
}

func TestSanitize_SnakeCaseKeys(t *testing.T) {
	lead := Sanitize(map[string]any{
		"name":         "Studio X",
		"phone":        "11 3333-4444",
		"website":      "https://studiox.com",
		"pain_points":  []any{"Slow Site"},
		"match_reason": "Site lento.",
		"quality_tier": "high_ticket",
	}, fixedNow)

	assert.Equal(t, []string{"Slow Site"}, lead.PainPoints)
	assert.Equal(t, "Site lento.", lead.MatchReason)
	assert.Equal(t, model.TierHighTicket, lead.QualityTier)
	assert.Equal(t, model.ScoreCold, lead.Score)
}

func TestSanitize_UniqueIDs(t *testing.T) {
	a := Sanitize(map[string]any{"name": "A"}, fixedNow)
	b := Sanitize(map[string]any{"name": "A"}, fixedNow)
	assert.NotEqual(t, a.ID, b.ID)
}
