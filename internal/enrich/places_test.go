package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/google"
	"github.com/sells-group/prospect-cli/pkg/google/mocks"
)

func places(ps ...google.Place) *google.TextSearchResponse {
	return &google.TextSearchResponse{Places: ps}
}

func place(name string, rating float64, reviews int) google.Place {
	return google.Place{DisplayName: google.DisplayName{Text: name}, Rating: rating, UserRatingCount: reviews}
}

func TestEnrich(t *testing.T) {
	tests := []struct {
		name      string
		lead      model.Lead
		resp      *google.TextSearchResponse
		wantMatch bool
		wantPains []string
		wantRate  float64
	}{
		{
			name:      "low rating and few reviews",
			lead:      model.Lead{Name: "Padaria Central", PainPoints: []string{"No Website"}},
			resp:      places(place("PADARIA CENTRAL", 3.7, 4)),
			wantMatch: true,
			wantPains: []string{"No Website", PainLowRating, PainFewReviews},
			wantRate:  3.7,
		},
		{
			name:      "good reputation adds nothing",
			lead:      model.Lead{Name: "Clínica Sorriso"},
			resp:      places(place("Outra Clínica", 2, 1), place("Clinica Sorriso", 4.8, 230)),
			wantMatch: true,
			wantPains: []string{},
			wantRate:  4.8,
		},
		{
			name:      "existing pain point not duplicated",
			lead:      model.Lead{Name: "Bar", PainPoints: []string{PainFewReviews}},
			resp:      places(place("Bar", 4.5, 3)),
			wantMatch: true,
			wantPains: []string{PainFewReviews},
			wantRate:  4.5,
		},
		{
			name:      "no matching name",
			lead:      model.Lead{Name: "Açougue Bom", PainPoints: []string{"x"}},
			resp:      places(place("Açougue Ótimo", 3, 2)),
			wantPains: []string{"x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mocks.NewMockClient(t)
			c.On("TextSearch", mock.Anything, mock.MatchedBy(func(r google.TextSearchRequest) bool {
				return r.TextQuery == tt.lead.Name+" Recife" && r.LanguageCode == "pt-BR"
			})).Return(tt.resp, nil)

			got, ok, err := NewPlacesEnricher(c, 0).Enrich(context.Background(), tt.lead, "Recife")
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, ok)
			assert.Equal(t, tt.wantPains, got.PainPoints)
			assert.InDelta(t, tt.wantRate, got.Rating, 0.001)
		})
	}
}

func TestEnrich_Unauthorized(t *testing.T) {
	c := mocks.NewMockClient(t)
	c.On("TextSearch", mock.Anything, mock.Anything).Return(nil, &google.APIError{StatusCode: 403, Body: "denied"})

	_, _, err := NewPlacesEnricher(c, 0).Enrich(context.Background(), model.Lead{Name: "A"}, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestEnrichAll(t *testing.T) {
	c := mocks.NewMockClient(t)
	c.On("TextSearch", mock.Anything, mock.MatchedBy(func(r google.TextSearchRequest) bool { return r.TextQuery == "A SP" })).
		Return(places(place("A", 3.5, 50)), nil)
	c.On("TextSearch", mock.Anything, mock.MatchedBy(func(r google.TextSearchRequest) bool { return r.TextQuery == "B SP" })).
		Return(nil, errors.New("timeout"))
	c.On("TextSearch", mock.Anything, mock.MatchedBy(func(r google.TextSearchRequest) bool { return r.TextQuery == "C SP" })).
		Return(places(), nil)

	results, err := NewPlacesEnricher(c, 100).EnrichAll(context.Background(),
		[]model.Lead{{Name: "A"}, {Name: "B"}, {Name: "C"}}, "SP")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Matched)
	assert.Equal(t, []string{PainLowRating}, results[0].Lead.PainPoints)
	assert.Error(t, results[1].Err)
	assert.False(t, results[2].Matched)
	assert.NoError(t, results[2].Err)
}

func TestEnrichAll_StopsOnUnauthorized(t *testing.T) {
	c := mocks.NewMockClient(t)
	c.On("TextSearch", mock.Anything, mock.Anything).Return(nil, &google.APIError{StatusCode: 401}).Once()

	results, err := NewPlacesEnricher(c, 0).EnrichAll(context.Background(), []model.Lead{{Name: "A"}, {Name: "B"}}, "SP")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, results)
}

func TestEnrich_CanceledContext(t *testing.T) {
	c := mocks.NewMockClient(t)
	e := NewPlacesEnricher(c, 0.001)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Enrich(ctx, model.Lead{Name: "A"}, "")
	require.Error(t, err)
	c.AssertNotCalled(t, "TextSearch", mock.Anything, mock.Anything)
}
