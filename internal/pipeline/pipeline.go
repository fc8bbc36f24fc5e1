// Package pipeline ties the lead search loop to persistence, the
// submission guard, enrichment and CRM sync.
package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/crm"
	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/guard"
	"github.com/sells-group/prospect-cli/internal/leadgen"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

// DefaultGuardTTL bounds how long a search claim is held when none is
// configured.
const DefaultGuardTTL = 3 * time.Minute

// Pipeline runs searches for one user-facing surface (CLI or API).
type Pipeline struct {
	store    store.Store
	searcher *leadgen.Searcher
	guard    guard.Guard
	guardTTL time.Duration
	now      func() time.Time
}

// New creates a Pipeline. A nil guard falls back to an in-process one.
func New(st store.Store, searcher *leadgen.Searcher, g guard.Guard, guardTTL time.Duration) *Pipeline {
	if g == nil {
		g = guard.NewMemory()
	}
	if guardTTL <= 0 {
		guardTTL = DefaultGuardTTL
	}
	return &Pipeline{store: st, searcher: searcher, guard: g, guardTTL: guardTTL, now: time.Now}
}

// Search runs one guarded search for user. Saved lead names are excluded,
// the stored service context is applied when the request carries none, and
// the search is recorded in history. Returns guard.ErrBusy when the same
// search is already running.
func (p *Pipeline) Search(ctx context.Context, user string, req model.SearchRequest) (*model.SearchResult, error) {
	release, err := p.guard.Acquire(ctx, guard.SearchKey(user, req.Niche, req.Location), p.guardTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	saved, err := p.store.LeadNames(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load saved names")
	}
	req.ExistingNames = append(slices.Clone(req.ExistingNames), saved...)

	if req.Service == nil {
		svc, err := p.store.GetServiceContext(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: load service context")
		}
		req.Service = svc
	}

	res, err := p.searcher.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	item := model.SearchHistoryItem{
		Niche:     req.Niche,
		Location:  req.Location,
		Size:      req.Size,
		Count:     req.TargetCount,
		Found:     len(res.Leads),
		Timestamp: p.now().UTC(),
	}
	if err := p.store.AddSearchHistory(ctx, item); err != nil {
		zap.L().Warn("pipeline: failed to record search history", zap.Error(err))
	}
	return res, nil
}

// Save persists leads returned by a search.
func (p *Pipeline) Save(ctx context.Context, leads []model.Lead) (int, error) {
	n, err := p.store.SaveLeads(ctx, leads)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: save leads")
	}
	return n, nil
}

// EnrichSaved looks up saved leads on Google Places and stores the rating,
// review count and pain points of every match. It returns the number of
// leads updated.
func (p *Pipeline) EnrichSaved(ctx context.Context, e *enrich.PlacesEnricher, filter store.LeadFilter, location string) (int, error) {
	leads, err := p.store.ListLeads(ctx, filter)
	if err != nil {
		return 0, eris.Wrap(err, "pipeline: list leads")
	}

	results, err := e.EnrichAll(ctx, leads, location)
	updated := 0
	for _, r := range results {
		if r.Err != nil || !r.Matched {
			continue
		}
		if uerr := p.store.UpdateLeadEnrichment(ctx, r.Lead.ID, r.Lead.Rating, r.Lead.ReviewCount, r.Lead.PainPoints); uerr != nil {
			return updated, eris.Wrapf(uerr, "pipeline: update lead %s", r.Lead.ID)
		}
		updated++
	}
	return updated, err
}

// Push sends saved leads matching filter to a CRM sink.
func (p *Pipeline) Push(ctx context.Context, sink crm.Sink, filter store.LeadFilter) ([]crm.PushResult, error) {
	leads, err := p.store.ListLeads(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: list leads")
	}
	return crm.PushAll(ctx, sink, leads)
}
