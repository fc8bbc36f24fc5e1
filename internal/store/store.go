// Package store persists saved leads, search history and the service
// context.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/leadgen"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/phone"
)

// DefaultSQLitePath is used when no database URL is configured.
const DefaultSQLitePath = "prospect.db"

var (
	// ErrNotFound is returned when a lead does not exist.
	ErrNotFound = eris.New("store: not found")
	// ErrInvalidStatus is returned for an unknown pipeline stage.
	ErrInvalidStatus = eris.New("store: invalid lead status")
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status model.LeadStatus `json:"status,omitempty"`
	Score  model.Score      `json:"score,omitempty"`
	Query  string           `json:"query,omitempty"` // case-insensitive name substring
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

func (f LeadFilter) limit() int {
	if f.Limit <= 0 {
		return 500
	}
	return f.Limit
}

// Store defines the persistence interface.
type Store interface {
	// Leads
	SaveLead(ctx context.Context, lead model.Lead) error
	SaveLeads(ctx context.Context, leads []model.Lead) (int, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error
	UpdateLeadAudit(ctx context.Context, id, audit string) error
	UpdateLeadEnrichment(ctx context.Context, id string, rating float64, reviews int, painPoints []string) error
	DeleteLead(ctx context.Context, id string) error
	LeadNames(ctx context.Context) ([]string, error)

	// Search history
	AddSearchHistory(ctx context.Context, item model.SearchHistoryItem) error
	ListSearchHistory(ctx context.Context, limit int) ([]model.SearchHistoryItem, error)

	// Service context; nil when never set
	GetServiceContext(ctx context.Context) (*model.ServiceContext, error)
	SetServiceContext(ctx context.Context, svc model.ServiceContext) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the configured backend and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		st, err = NewSQLite(dsn)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// prepareLead fills the fields every persisted lead must carry. Score and
// NormalizedPhone are always derived from the lead's own fields.
func prepareLead(l model.Lead, now time.Time) model.Lead {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = model.StatusNew
	}
	l.Score = leadgen.DeriveScore(l.Website, l.Instagram)
	if l.QualityTier == "" {
		l.QualityTier = model.TierOpportunity
	}
	if l.PainPoints == nil {
		l.PainPoints = []string{}
	}
	l.NormalizedPhone, _ = phone.Normalize(l.Phone)
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return l
}

func nameKey(name string) string { return leadgen.NameKey(name) }
