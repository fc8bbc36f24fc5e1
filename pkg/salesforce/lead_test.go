package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLead_Fields(t *testing.T) {
	f := Lead{LastName: "Padaria", Company: "Padaria", Phone: "11987654321", LeadSource: LeadSource}.Fields()
	assert.Equal(t, "Padaria", f["Company"])
	assert.Equal(t, LeadSource, f["LeadSource"])
	_, ok := f["Status"]
	assert.False(t, ok, "empty status omitted")

	f = Lead{Status: "Working - Contacted", Rating: "Hot"}.Fields()
	assert.Equal(t, "Working - Contacted", f["Status"])
	assert.Equal(t, "Hot", f["Rating"])
}

func TestFindLead(t *testing.T) {
	mc := &mockClient{
		queryFn: func(_ context.Context, soql string, out any) error {
			assert.Contains(t, soql, `Company = 'Bar do Zé\'s'`)
			assert.Contains(t, soql, "Phone = '11987654321'")
			*out.(*[]Lead) = []Lead{{ID: "00Q1", Company: "Bar do Zé's"}}
			return nil
		},
	}
	l, err := FindLead(context.Background(), mc, "Bar do Zé's", "11987654321")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "00Q1", l.ID)
}

func TestFindLead_None(t *testing.T) {
	l, err := FindLead(context.Background(), &mockClient{}, "A", "1")
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestUpsertLead_Creates(t *testing.T) {
	var inserted map[string]any
	mc := &mockClient{
		insertOneFn: func(_ context.Context, obj string, rec map[string]any) (string, error) {
			assert.Equal(t, "Lead", obj)
			inserted = rec
			return "00Qnew", nil
		},
		updateOneFn: func(context.Context, string, string, map[string]any) error {
			t.Fatal("unexpected update")
			return nil
		},
	}

	id, err := UpsertLead(context.Background(), mc, Lead{Company: "Padaria Central", Phone: "11987654321"})
	require.NoError(t, err)
	assert.Equal(t, "00Qnew", id)
	assert.Equal(t, "Padaria Central", inserted["LastName"])
	assert.Equal(t, LeadSource, inserted["LeadSource"])
}

func TestUpsertLead_Updates(t *testing.T) {
	mc := &mockClient{
		queryFn: func(_ context.Context, _ string, out any) error {
			*out.(*[]Lead) = []Lead{{ID: "00Qold"}}
			return nil
		},
		updateOneFn: func(_ context.Context, obj, id string, fields map[string]any) error {
			assert.Equal(t, "Lead", obj)
			assert.Equal(t, "00Qold", id)
			assert.Equal(t, "Nova descrição", fields["Description"])
			return nil
		},
		insertOneFn: func(context.Context, string, map[string]any) (string, error) {
			t.Fatal("unexpected insert")
			return "", nil
		},
	}

	id, err := UpsertLead(context.Background(), mc, Lead{Company: "A", Description: "Nova descrição"})
	require.NoError(t, err)
	assert.Equal(t, "00Qold", id)
}

func TestUpsertLead_Errors(t *testing.T) {
	_, err := UpsertLead(context.Background(), &mockClient{}, Lead{})
	assert.ErrorContains(t, err, "Company is required")

	mc := &mockClient{queryFn: func(context.Context, string, any) error { return errors.New("boom") }}
	_, err = UpsertLead(context.Background(), mc, Lead{Company: "A"})
	assert.ErrorContains(t, err, "sf: find lead A")
}

func TestBulkInsertLeads(t *testing.T) {
	var batches []int
	mc := &mockClient{
		insertCollectionFn: func(_ context.Context, obj string, recs []map[string]any) ([]CollectionResult, error) {
			assert.Equal(t, "Lead", obj)
			batches = append(batches, len(recs))
			out := make([]CollectionResult, len(recs))
			for i := range recs {
				assert.NotEmpty(t, recs[i]["LastName"])
				out[i] = CollectionResult{Success: true}
			}
			return out, nil
		},
	}

	leads := make([]Lead, 450)
	for i := range leads {
		leads[i] = Lead{Company: "C"}
	}
	results, err := BulkInsertLeads(context.Background(), mc, leads)
	require.NoError(t, err)
	assert.Len(t, results, 450)
	assert.Equal(t, []int{200, 200, 50}, batches)
}

func TestBulkInsertLeads_Empty(t *testing.T) {
	results, err := BulkInsertLeads(context.Background(), &mockClient{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBulkInsertLeads_BatchError(t *testing.T) {
	calls := 0
	mc := &mockClient{
		insertCollectionFn: func(_ context.Context, _ string, recs []map[string]any) ([]CollectionResult, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("limit exceeded")
			}
			return make([]CollectionResult, len(recs)), nil
		},
	}
	results, err := BulkInsertLeads(context.Background(), mc, make([]Lead, 250))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 200-250")
	assert.Len(t, results, 200)
}

func TestEscapeSoql(t *testing.T) {
	assert.Equal(t, `O\'Brien`, escapeSoql("O'Brien"))
	assert.Equal(t, `a\\b`, escapeSoql(`a\b`))
}
