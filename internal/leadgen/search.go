// Package leadgen runs the lead search loop: repeated web-grounded provider
// calls whose replies are sanitized, phone-validated, deduplicated and
// filtered until enough leads are collected or the attempt budget runs out.
package leadgen

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/metrics"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/phone"
)

// Defaults for the accumulation loop.
const (
	DefaultMaxAttempts = 4
	DefaultOverRequest = 1.5
)

// NothingFoundMessage is set on results with no leads.
const NothingFoundMessage = "Nenhum lead com telefone válido encontrado. Tente outro nicho ou localização."

// ErrInvalidRequest is returned before any provider call when the request
// cannot be searched.
var ErrInvalidRequest = eris.New("leadgen: invalid search request")

// FatalError aborts a search because retrying cannot succeed, such as a
// rejected provider credential.
type FatalError struct {
	Provider string
	Err      error
}

func (e *FatalError) Error() string {
	return "leadgen: search aborted (" + e.Provider + "): " + e.Err.Error()
}

func (e *FatalError) Unwrap() error { return e.Err }

// Searcher runs lead searches against one provider. A Searcher holds no
// per-search state and is safe for concurrent use.
type Searcher struct {
	provider    llm.Provider
	rotation    *Rotation
	maxAttempts int
	overRequest float64
	fanOut      int
	now         func() time.Time
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithRotation sets the query phrasing rotation.
func WithRotation(r *Rotation) Option {
	return func(s *Searcher) {
		if r != nil {
			s.rotation = r
		}
	}
}

// WithMaxAttempts sets the attempt budget. It is a hard ceiling.
func WithMaxAttempts(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithOverRequest sets how many extra leads to ask for relative to the
// number still needed. Values below 1 are ignored.
func WithOverRequest(ratio float64) Option {
	return func(s *Searcher) {
		if ratio >= 1 {
			s.overRequest = ratio
		}
	}
}

// WithFanOut issues n differently phrased calls per attempt concurrently.
func WithFanOut(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.fanOut = n
		}
	}
}

// WithClock overrides the time source used for lead timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) {
		if now != nil {
			s.now = now
		}
	}
}

// OptionsFromConfig maps the search configuration section onto options.
// A templates file, when configured, replaces the default rotation.
func OptionsFromConfig(cfg config.SearchConfig) ([]Option, error) {
	opts := []Option{
		WithMaxAttempts(cfg.MaxAttempts),
		WithOverRequest(cfg.OverRequest),
		WithFanOut(cfg.FanOut),
	}
	if cfg.TemplatesFile != "" {
		templates, err := LoadTemplates(cfg.TemplatesFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithRotation(NewRotation(templates)))
	}
	return opts, nil
}

// NewSearcher creates a Searcher that calls p.
func NewSearcher(p llm.Provider, opts ...Option) *Searcher {
	s := &Searcher{
		provider:    p,
		rotation:    NewRotation(nil),
		maxAttempts: DefaultMaxAttempts,
		overRequest: DefaultOverRequest,
		fanOut:      1,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search collects up to req.TargetCount leads. A short or empty result is
// not an error. Provider failures skip the attempt, except a rejected
// credential which returns *FatalError, and context cancellation.
func (s *Searcher) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("provider", s.provider.Name()),
		zap.String("niche", req.Niche),
		zap.String("location", req.Location),
		zap.Int("target", req.TargetCount),
	)

	seen := NewSeenSet(req.ExistingNames)
	rejected := map[string]int{}
	var (
		collected []model.Lead
		sources   [][]model.GroundingSource
		attempts  int
		calls     int
	)

	for len(collected) < req.TargetCount && attempts < s.maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "leadgen: search canceled")
		}

		attempt := attempts
		attempts++
		ask := requestSize(req.TargetCount-len(collected), s.overRequest)

		replies, err := s.fetch(ctx, req, attempt, ask, seen.Names())
		calls += len(replies)
		if err != nil {
			return nil, err
		}

		before := len(collected)
		for _, r := range replies {
			if r.err != nil {
				log.Warn("leadgen: provider call failed, skipping",
					zap.Int("attempt", attempts),
					zap.String("phrase", r.phrase),
					zap.Error(r.err),
				)
				continue
			}
			sources = append(sources, r.resp.Sources)

			for _, raw := range Extract(r.resp.Text) {
				lead := Sanitize(raw, s.now())
				if reason := s.reject(lead, req.Filters, seen); reason != "" {
					rejected[reason]++
					metrics.LeadsRejected.WithLabelValues(reason).Inc()
					continue
				}
				seen.Add(lead.Name)
				collected = append(collected, lead)
			}
		}

		log.Info("leadgen: attempt complete",
			zap.Int("attempt", attempts),
			zap.Int("requested", ask),
			zap.Int("accepted", len(collected)-before),
			zap.Int("collected", len(collected)),
		)
	}

	res := Assemble(collected, sources, req.TargetCount)
	res.Attempts = attempts
	res.ProviderCalls = calls
	res.Rejected = rejected
	if res.Empty() {
		res.Message = NothingFoundMessage
	}

	metrics.SearchAttempts.Observe(float64(attempts))
	metrics.LeadsAccepted.Add(float64(len(res.Leads)))
	log.Info("leadgen: search complete",
		zap.Int("leads", len(res.Leads)),
		zap.Int("attempts", attempts),
		zap.Int("provider_calls", calls),
		zap.Int("sources", len(res.Sources)),
	)
	return res, nil
}

type callResult struct {
	phrase string
	resp   *llm.Response
	err    error
}

// fetch issues the attempt's calls, concurrently when fanning out. Replies
// keep phrasing order. A rejected credential cancels sibling calls and is
// returned as *FatalError.
func (s *Searcher) fetch(ctx context.Context, req model.SearchRequest, attempt, ask int, exclude []string) ([]callResult, error) {
	replies := make([]callResult, s.fanOut)
	g, gctx := errgroup.WithContext(ctx)
	for i := range replies {
		phrase := s.rotation.Phrase(attempt*s.fanOut+i, req.Niche, req.Location)
		replies[i].phrase = phrase
		g.Go(func() error {
			resp, err := s.provider.Generate(gctx, llm.Request{
				System:    systemPrompt,
				Prompt:    BuildPrompt(req, phrase, ask, exclude),
				WebSearch: true,
				Operation: "search",
			})
			if err != nil && llm.IsUnauthorized(err) {
				return &FatalError{Provider: s.provider.Name(), Err: err}
			}
			replies[i].resp, replies[i].err = resp, err
			if err == nil && resp == nil {
				replies[i].err = eris.New("leadgen: empty provider response")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return replies, err
	}
	if err := ctx.Err(); err != nil {
		return replies, eris.Wrap(err, "leadgen: search canceled")
	}
	return replies, nil
}

// reject returns the rejection reason for lead, or "" to accept it.
func (s *Searcher) reject(lead model.Lead, f model.Filters, seen *SeenSet) string {
	switch {
	case lead.NormalizedPhone == "":
		return model.RejectInvalidPhone
	case seen.Has(lead.Name):
		return model.RejectDuplicate
	case !MatchesFilters(lead, f):
		return model.RejectFilter
	default:
		return ""
	}
}

// MatchesFilters reports whether lead satisfies every active filter.
func MatchesFilters(lead model.Lead, f model.Filters) bool {
	switch f.WebsiteRule {
	case model.WebsiteMustHave:
		if !lead.HasWebsite() {
			return false
		}
	case model.WebsiteMustNotHave:
		if lead.HasWebsite() {
			return false
		}
	}
	if f.InstagramRequired && !lead.HasInstagram() {
		return false
	}
	if f.MobileOnly && !phone.IsMobile(lead.NormalizedPhone) {
		return false
	}
	return true
}

func requestSize(remaining int, ratio float64) int {
	n := int(math.Ceil(float64(remaining) * ratio))
	if n < 1 {
		n = 1
	}
	return n
}

func validate(req model.SearchRequest) error {
	switch {
	case strings.TrimSpace(req.Niche) == "":
		return eris.Wrap(ErrInvalidRequest, "niche is required")
	case strings.TrimSpace(req.Location) == "":
		return eris.Wrap(ErrInvalidRequest, "location is required")
	case req.TargetCount <= 0:
		return eris.Wrap(ErrInvalidRequest, "target count must be positive")
	}
	switch req.Filters.WebsiteRule {
	case "", model.WebsiteAny, model.WebsiteMustHave, model.WebsiteMustNotHave:
	default:
		return eris.Wrapf(ErrInvalidRequest, "unknown website rule %q", req.Filters.WebsiteRule)
	}
	return nil
}
