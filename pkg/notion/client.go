// Package notion keeps one page per lead in a Notion database.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrNoLeadDB is returned when no lead database ID is configured.
var ErrNoLeadDB = eris.New("notion: lead database is required")

// LeadDB reads and writes lead pages in one Notion database. Pages are keyed
// on the PropLeadID property.
type LeadDB interface {
	// FindLead returns the page ID for leadID, or "" when there is none.
	FindLead(ctx context.Context, leadID string) (string, error)
	CreateLead(ctx context.Context, p LeadPage) (string, error)
	UpdateLead(ctx context.Context, pageID string, p LeadPage) error
}

// Option configures a LeadDB.
type Option func(*leadDB)

// WithRateLimit overrides the default rate of 3 requests per second. A
// non-positive rate disables throttling.
func WithRateLimit(rps float64) Option {
	return func(d *leadDB) {
		if rps > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			d.limiter = nil
		}
	}
}

// WithServices replaces the notionapi database and page services.
func WithServices(databases notionapi.DatabaseService, pages notionapi.PageService) Option {
	return func(d *leadDB) {
		d.databases = databases
		d.pages = pages
	}
}

type leadDB struct {
	id        notionapi.DatabaseID
	databases notionapi.DatabaseService
	pages     notionapi.PageService
	limiter   *rate.Limiter
}

// NewLeadDB opens the lead database dbID with an integration token.
func NewLeadDB(token, dbID string, opts ...Option) (LeadDB, error) {
	if dbID == "" {
		return nil, ErrNoLeadDB
	}
	api := notionapi.NewClient(notionapi.Token(token))
	d := &leadDB{
		id:        notionapi.DatabaseID(dbID),
		databases: api.Database,
		pages:     api.Page,
		limiter:   rate.NewLimiter(3, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *leadDB) wait(ctx context.Context) error {
	if d.limiter == nil {
		return nil
	}
	return eris.Wrap(d.limiter.Wait(ctx), "notion: rate limit")
}

func (d *leadDB) FindLead(ctx context.Context, leadID string) (string, error) {
	if err := d.wait(ctx); err != nil {
		return "", err
	}
	resp, err := d.databases.Query(ctx, d.id, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: PropLeadID,
			RichText: &notionapi.TextFilterCondition{Equals: leadID},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", eris.Wrapf(err, "notion: find lead %s", leadID)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

func (d *leadDB) CreateLead(ctx context.Context, p LeadPage) (string, error) {
	if err := d.wait(ctx); err != nil {
		return "", err
	}
	page, err := d.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: d.id,
		},
		Properties: p.Properties(),
	})
	if err != nil {
		return "", eris.Wrapf(err, "notion: create lead %s", p.LeadID)
	}
	return string(page.ID), nil
}

func (d *leadDB) UpdateLead(ctx context.Context, pageID string, p LeadPage) error {
	if err := d.wait(ctx); err != nil {
		return err
	}
	_, err := d.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: p.Properties()})
	return eris.Wrapf(err, "notion: update lead %s", p.LeadID)
}
