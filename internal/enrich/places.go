// Package enrich adds Google Places reputation data to saved leads.
package enrich

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/leadgen"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/google"
)

// Pain points added from Places data.
const (
	PainLowRating  = "Low Google Rating"
	PainFewReviews = "Few Reviews"
)

// Thresholds below which a pain point is added.
const (
	LowRatingBelow  = 4.0
	FewReviewsBelow = 10
)

// ErrUnauthorized is returned when Places rejects the API key.
var ErrUnauthorized = eris.New("enrich: places credential rejected")

// PlacesEnricher looks leads up on Google Places.
type PlacesEnricher struct {
	client   google.Client
	limiter  *rate.Limiter
	language string
}

// NewPlacesEnricher creates an enricher allowing at most rps lookups per
// second. rps <= 0 disables the limit.
func NewPlacesEnricher(client google.Client, rps float64) *PlacesEnricher {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &PlacesEnricher{
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		language: "pt-BR",
	}
}

// Enrich looks lead up near location. It returns the updated lead and
// whether a matching place was found. A place matches only when its name
// folds to the same key as the lead's.
func (e *PlacesEnricher) Enrich(ctx context.Context, lead model.Lead, location string) (model.Lead, bool, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return lead, false, eris.Wrap(err, "enrich: rate limit wait")
	}

	query := strings.TrimSpace(lead.Name + " " + location)
	resp, err := e.client.TextSearch(ctx, google.TextSearchRequest{
		TextQuery:      query,
		LanguageCode:   e.language,
		MaxResultCount: 5,
	})
	if err != nil {
		var apiErr *google.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return lead, false, eris.Wrap(ErrUnauthorized, apiErr.Error())
		}
		return lead, false, eris.Wrapf(err, "enrich: places search %q", query)
	}

	key := leadgen.NameKey(lead.Name)
	for _, p := range resp.Places {
		if leadgen.NameKey(p.DisplayName.Text) != key {
			continue
		}
		return apply(lead, p), true, nil
	}
	return lead, false, nil
}

// Result is the outcome of enriching one lead.
type Result struct {
	Lead    model.Lead
	Matched bool
	Err     error
}

// EnrichAll enriches leads in order. Per-lead failures are recorded in the
// result; a rejected credential or cancelled context stops the run.
func (e *PlacesEnricher) EnrichAll(ctx context.Context, leads []model.Lead, location string) ([]Result, error) {
	out := make([]Result, 0, len(leads))
	for _, l := range leads {
		updated, ok, err := e.Enrich(ctx, l, location)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) || ctx.Err() != nil {
				return out, err
			}
			zap.L().Warn("enrich: lead failed", zap.String("lead", l.Name), zap.Error(err))
		}
		out = append(out, Result{Lead: updated, Matched: ok, Err: err})
	}
	return out, nil
}

func apply(lead model.Lead, p google.Place) model.Lead {
	lead.Rating = p.Rating
	lead.ReviewCount = p.UserRatingCount
	pains := slices.Clone(lead.PainPoints)
	if p.Rating > 0 && p.Rating < LowRatingBelow && !slices.Contains(pains, PainLowRating) {
		pains = append(pains, PainLowRating)
	}
	if p.UserRatingCount < FewReviewsBelow && !slices.Contains(pains, PainFewReviews) {
		pains = append(pains, PainFewReviews)
	}
	if pains == nil {
		pains = []string{}
	}
	lead.PainPoints = pains
	return lead
}
