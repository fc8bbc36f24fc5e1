package crm

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/salesforce"
)

// SalesforceSink writes leads to the Salesforce Lead object, matched on
// company name and phone.
type SalesforceSink struct {
	client salesforce.Client
}

// NewSalesforceSink returns a sink backed by client.
func NewSalesforceSink(client salesforce.Client) *SalesforceSink {
	return &SalesforceSink{client: client}
}

func (s *SalesforceSink) Name() string { return "salesforce" }

func (s *SalesforceSink) Push(ctx context.Context, l model.Lead) (string, error) {
	return salesforce.UpsertLead(ctx, s.client, salesforceLead(l))
}

// Salesforce default Lead picklist values.
var (
	sfStatus = map[model.LeadStatus]string{
		model.StatusNew:         "Open - Not Contacted",
		model.StatusContacted:   "Working - Contacted",
		model.StatusNegotiation: "Working - Contacted",
		model.StatusClosed:      "Closed - Converted",
	}
	sfRating = map[model.Score]string{
		model.ScoreHot:  "Hot",
		model.ScoreWarm: "Warm",
		model.ScoreCold: "Cold",
	}
)

func salesforceLead(l model.Lead) salesforce.Lead {
	phone := l.NormalizedPhone
	if phone == "" && l.Phone != model.PhoneNotFound {
		phone = l.Phone
	}
	return salesforce.Lead{
		LastName:    l.Name,
		Company:     l.Name,
		Phone:       phone,
		Website:     l.Website,
		Description: l.Description,
		Status:      sfStatus[l.Status],
		Rating:      sfRating[l.Score],
	}
}
