package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/crm"
	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/guard"
	"github.com/sells-group/prospect-cli/internal/leadgen"
	"github.com/sells-group/prospect-cli/internal/llm"
	"github.com/sells-group/prospect-cli/internal/llm/mocks"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/google"
	googlemocks "github.com/sells-group/prospect-cli/pkg/google/mocks"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	return s
}

func providerReply(t *testing.T, records ...map[string]any) *llm.Response {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	return &llm.Response{Text: "```json\n" + string(data) + "\n```"}
}

func searchReq() model.SearchRequest {
	return model.SearchRequest{Niche: "Padarias", Location: "Recife", TargetCount: 2}
}

func TestPipeline_Search(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.SaveLead(ctx, model.Lead{ID: "old", Name: "Padaria Antiga", Phone: "(81) 99999-1234"}))
	require.NoError(t, st.SetServiceContext(ctx, model.ServiceContext{ServiceName: "Sites", Description: "Landing pages"}))

	p := mocks.NewMockProvider(t)
	p.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return assert.Contains(t, req.Prompt, "Padaria Antiga") && assert.Contains(t, req.Prompt, "Sites")
	})).Return(providerReply(t,
		map[string]any{"name": "Padaria Antiga", "phone": "(81) 99999-1234"},
		map[string]any{"name": "Padaria Nova", "phone": "(81) 98888-1234"},
		map[string]any{"name": "Pão Quente", "phone": "(81) 97777-1234"},
	), nil).Once()

	pl := New(st, leadgen.NewSearcher(p), nil, 0)
	res, err := pl.Search(ctx, "ana", searchReq())
	require.NoError(t, err)
	require.Len(t, res.Leads, 2)
	assert.Equal(t, "Padaria Nova", res.Leads[0].Name)
	assert.Equal(t, 1, res.Rejected[model.RejectDuplicate])

	history, err := st.ListSearchHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Padarias", history[0].Niche)
	assert.Equal(t, 2, history[0].Found)
}

func TestPipeline_SearchBusy(t *testing.T) {
	ctx := context.Background()
	g := guard.NewMemory()
	release, err := g.Acquire(ctx, guard.SearchKey("ana", "Padarias", "Recife"), time.Minute)
	require.NoError(t, err)
	defer release()

	pl := New(newTestStore(t), leadgen.NewSearcher(mocks.NewMockProvider(t)), g, time.Minute)
	_, err = pl.Search(ctx, "ana", searchReq())
	assert.ErrorIs(t, err, guard.ErrBusy)

	// A different user is not blocked by the claim.
	p := mocks.NewMockProvider(t)
	p.On("Generate", mock.Anything, mock.Anything).Return(providerReply(t), nil)
	pl = New(newTestStore(t), leadgen.NewSearcher(p, leadgen.WithMaxAttempts(1)), g, time.Minute)
	res, err := pl.Search(ctx, "bia", searchReq())
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, leadgen.NothingFoundMessage, res.Message)
}

func TestPipeline_SearchReleasesGuard(t *testing.T) {
	ctx := context.Background()
	p := mocks.NewMockProvider(t)
	p.On("Generate", mock.Anything, mock.Anything).Return(nil, llm.Unauthorized("mock", 401, errors.New("bad key")))

	g := guard.NewMemory()
	pl := New(newTestStore(t), leadgen.NewSearcher(p), g, time.Minute)
	_, err := pl.Search(ctx, "ana", searchReq())
	var fatal *leadgen.FatalError
	require.ErrorAs(t, err, &fatal)

	release, err := g.Acquire(ctx, guard.SearchKey("ana", "Padarias", "Recife"), time.Minute)
	require.NoError(t, err)
	release()
}

func TestPipeline_EnrichSaved(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	_, err := st.SaveLeads(ctx, []model.Lead{
		{ID: "a", Name: "Padaria Central", Phone: "(81) 99999-1234"},
		{ID: "b", Name: "Sem Cadastro", Phone: "(81) 98888-1234"},
	})
	require.NoError(t, err)

	client := googlemocks.NewMockClient(t)
	client.On("TextSearch", mock.Anything, mock.MatchedBy(func(r google.TextSearchRequest) bool {
		return r.TextQuery == "Padaria Central Recife"
	})).Return(&google.TextSearchResponse{Places: []google.Place{
		{DisplayName: google.DisplayName{Text: "Padaria Central"}, Rating: 3.5, UserRatingCount: 4},
	}}, nil)
	client.On("TextSearch", mock.Anything, mock.Anything).Return(&google.TextSearchResponse{}, nil)

	pl := New(st, nil, nil, 0)
	n, err := pl.EnrichSaved(ctx, enrich.NewPlacesEnricher(client, 0), store.LeadFilter{}, "Recife")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.GetLead(ctx, "a")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, got.Rating, 0.001)
	assert.Contains(t, got.PainPoints, enrich.PainLowRating)
	assert.Contains(t, got.PainPoints, enrich.PainFewReviews)
}

type recordingSink struct{ ids []string }

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Push(_ context.Context, l model.Lead) (string, error) {
	s.ids = append(s.ids, l.ID)
	return "x-" + l.ID, nil
}

var _ crm.Sink = (*recordingSink)(nil)

func TestPipeline_Push(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	closed := model.Lead{ID: "a", Name: "A", Phone: "(81) 99999-1234", Status: model.StatusClosed}
	_, err := st.SaveLeads(ctx, []model.Lead{closed, {ID: "b", Name: "B", Phone: "(81) 98888-1234"}})
	require.NoError(t, err)

	sink := &recordingSink{}
	results, err := New(st, nil, nil, 0).Push(ctx, sink, store.LeadFilter{Status: model.StatusClosed})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "x-a", results[0].ExternalID)
	assert.Equal(t, []string{"a"}, sink.ids)
}
