package crm

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/notion"
)

// NotionSink keeps one page per lead in a Notion database, keyed on the
// lead ID.
type NotionSink struct {
	db notion.LeadDB
}

// NewNotionSink returns a sink writing to db.
func NewNotionSink(db notion.LeadDB) *NotionSink {
	return &NotionSink{db: db}
}

func (s *NotionSink) Name() string { return "notion" }

func (s *NotionSink) Push(ctx context.Context, l model.Lead) (string, error) {
	return notion.UpsertLead(ctx, s.db, notionPage(l))
}

func notionPage(l model.Lead) notion.LeadPage {
	p := notion.LeadPage{
		LeadID:      l.ID,
		Name:        l.Name,
		Instagram:   l.Instagram,
		Website:     l.Website,
		Description: l.Description,
		Status:      string(l.Status),
		Score:       string(l.Score),
		Tier:        string(l.QualityTier),
		PainPoints:  l.PainPoints,
		Rating:      l.Rating,
	}
	if l.Phone != model.PhoneNotFound {
		p.Phone = l.Phone
	}
	return p
}
