package leadgen

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/phone"
)

// absentMarkers are provider values meaning "no website / no instagram".
// Compared lower-case after trimming.
var absentMarkers = []string{
	"",
	"-",
	"not found",
	"não encontrado",
	"nao encontrado",
	"no site",
	"sem site",
	"none",
	"n/a",
	"null",
}

// DeriveScore classifies a lead by web presence: no website is hot, a
// website plus instagram is warm, a website alone is cold.
func DeriveScore(website, instagram string) model.Score {
	switch {
	case website == "":
		return model.ScoreHot
	case instagram != "":
		return model.ScoreWarm
	default:
		return model.ScoreCold
	}
}

// Sanitize maps one loosely typed provider record onto a Lead. It never
// fails: missing or malformed fields get placeholders or defaults. The
// provider's own score, if any, is ignored.
func Sanitize(raw map[string]any, now time.Time) model.Lead {
	lead := model.Lead{
		ID:              uuid.NewString(),
		Name:            stringField(raw, "name"),
		Phone:           stringField(raw, "phone", "telefone", "whatsapp"),
		Instagram:       presence(stringField(raw, "instagram")),
		Website:         presence(stringField(raw, "website", "site")),
		Description:     stringField(raw, "description", "descricao"),
		PainPoints:      stringList(raw, "painPoints", "pain_points"),
		MatchReason:     stringField(raw, "matchReason", "match_reason"),
		QualityTier:     model.ParseQualityTier(stringField(raw, "qualityTier", "quality_tier")),
		Status:          model.StatusNew,
		ConfidenceScore: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if lead.Name == "" {
		lead.Name = model.UnknownName
	}
	if lead.Phone == "" {
		lead.Phone = model.PhoneNotFound
	}
	if lead.Description == "" {
		lead.Description = model.DefaultDescription
	}
	if lead.MatchReason == "" {
		lead.MatchReason = model.DefaultMatchReason
	}
	if digits, ok := phone.Normalize(lead.Phone); ok {
		lead.NormalizedPhone = digits
	}
	lead.Score = DeriveScore(lead.Website, lead.Instagram)
	return lead
}

// stringField returns the first key holding a string, trimmed. Non-string
// values count as absent.
func stringField(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringList(raw map[string]any, keys ...string) []string {
	out := []string{}
	for _, k := range keys {
		items, ok := raw[k].([]any)
		if !ok {
			continue
		}
		for _, it := range items {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return out
}

// presence maps absent markers to "".
func presence(s string) string {
	if slices.Contains(absentMarkers, strings.ToLower(s)) {
		return ""
	}
	return s
}
