package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// LeadSource is written to every lead created by this tool.
const LeadSource = "Prospect CLI"

// Lead is the subset of the Salesforce Lead object that is synced.
type Lead struct {
	ID          string `json:"Id,omitempty" salesforce:"Id"`
	LastName    string `json:"LastName" salesforce:"LastName"`
	Company     string `json:"Company" salesforce:"Company"`
	Phone       string `json:"Phone" salesforce:"Phone"`
	Website     string `json:"Website" salesforce:"Website"`
	Description string `json:"Description" salesforce:"Description"`
	Status      string `json:"Status,omitempty" salesforce:"Status"`
	Rating      string `json:"Rating,omitempty" salesforce:"Rating"`
	LeadSource  string `json:"LeadSource" salesforce:"LeadSource"`
}

// Fields returns the writable fields of l.
func (l Lead) Fields() map[string]any {
	f := map[string]any{
		"LastName":    l.LastName,
		"Company":     l.Company,
		"Phone":       l.Phone,
		"Website":     l.Website,
		"Description": l.Description,
		"LeadSource":  l.LeadSource,
	}
	if l.Status != "" {
		f["Status"] = l.Status
	}
	if l.Rating != "" {
		f["Rating"] = l.Rating
	}
	return f
}

// FindLead returns the lead with the given company and phone, or nil.
func FindLead(ctx context.Context, c Client, company, phone string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT Id, LastName, Company, Phone, Website, Description, Status, Rating, LeadSource FROM Lead WHERE Company = '%s' AND Phone = '%s' LIMIT 1",
		escapeSoql(company), escapeSoql(phone),
	)
	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrapf(err, "sf: find lead %s", company)
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// UpsertLead updates the matching lead or creates one, returning its ID.
func UpsertLead(ctx context.Context, c Client, l Lead) (string, error) {
	if l.Company == "" {
		return "", eris.New("sf: lead Company is required")
	}
	if l.LastName == "" {
		l.LastName = l.Company
	}
	if l.LeadSource == "" {
		l.LeadSource = LeadSource
	}

	existing, err := FindLead(ctx, c, l.Company, l.Phone)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := c.UpdateOne(ctx, "Lead", existing.ID, l.Fields()); err != nil {
			return "", eris.Wrapf(err, "sf: update lead %s", existing.ID)
		}
		return existing.ID, nil
	}

	id, err := c.InsertOne(ctx, "Lead", l.Fields())
	if err != nil {
		return "", eris.Wrap(err, "sf: create lead")
	}
	return id, nil
}

// BulkInsertLeads inserts leads in batches of 200.
func BulkInsertLeads(ctx context.Context, c Client, leads []Lead) ([]CollectionResult, error) {
	var all []CollectionResult
	for start := 0; start < len(leads); start += maxBatchSize {
		end := min(start+maxBatchSize, len(leads))

		records := make([]map[string]any, 0, end-start)
		for _, l := range leads[start:end] {
			if l.LastName == "" {
				l.LastName = l.Company
			}
			if l.LeadSource == "" {
				l.LeadSource = LeadSource
			}
			records = append(records, l.Fields())
		}

		results, err := c.InsertCollection(ctx, "Lead", records)
		if err != nil {
			return all, eris.Wrapf(err, "sf: bulk insert leads batch %d-%d", start, end)
		}
		all = append(all, results...)
	}
	return all, nil
}

// escapeSoql escapes backslashes and single quotes in SOQL string literals.
func escapeSoql(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}
