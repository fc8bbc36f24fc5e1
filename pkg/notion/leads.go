package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
)

// Property names expected in the lead database.
const (
	PropName        = "Name"
	PropLeadID      = "Lead ID"
	PropPhone       = "Phone"
	PropInstagram   = "Instagram"
	PropWebsite     = "Website"
	PropDescription = "Description"
	PropStatus      = "Status"
	PropScore       = "Score"
	PropTier        = "Tier"
	PropPainPoints  = "Pain Points"
	PropRating      = "Google Rating"
)

// LeadPage is the data written for one lead.
type LeadPage struct {
	LeadID      string
	Name        string
	Phone       string
	Instagram   string
	Website     string
	Description string
	Status      string
	Score       string
	Tier        string
	PainPoints  []string
	Rating      float64
}

// Properties builds the page properties for p. Empty optional fields are
// omitted so an update does not clear values edited in Notion.
func (p LeadPage) Properties() notionapi.Properties {
	props := notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(p.Name),
		},
		PropLeadID: notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(p.LeadID),
		},
	}
	if p.Phone != "" {
		props[PropPhone] = notionapi.PhoneNumberProperty{Type: notionapi.PropertyTypePhoneNumber, PhoneNumber: p.Phone}
	}
	if p.Instagram != "" {
		props[PropInstagram] = notionapi.RichTextProperty{Type: notionapi.PropertyTypeRichText, RichText: richText(p.Instagram)}
	}
	if p.Website != "" {
		props[PropWebsite] = notionapi.URLProperty{Type: notionapi.PropertyTypeURL, URL: p.Website}
	}
	if p.Description != "" {
		props[PropDescription] = notionapi.RichTextProperty{Type: notionapi.PropertyTypeRichText, RichText: richText(truncate(p.Description, 2000))}
	}
	for name, v := range map[string]string{PropStatus: p.Status, PropScore: p.Score, PropTier: p.Tier} {
		if v != "" {
			props[name] = notionapi.SelectProperty{Type: notionapi.PropertyTypeSelect, Select: notionapi.Option{Name: v}}
		}
	}
	if len(p.PainPoints) > 0 {
		opts := make([]notionapi.Option, 0, len(p.PainPoints))
		for _, pp := range p.PainPoints {
			// Select option names cannot contain commas.
			opts = append(opts, notionapi.Option{Name: strings.ReplaceAll(pp, ",", " ")})
		}
		props[PropPainPoints] = notionapi.MultiSelectProperty{Type: notionapi.PropertyTypeMultiSelect, MultiSelect: opts}
	}
	if p.Rating > 0 {
		props[PropRating] = notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: p.Rating}
	}
	return props
}

// UpsertLead writes p to the page holding its lead ID, creating the page
// when there is none, and returns the page ID.
func UpsertLead(ctx context.Context, db LeadDB, p LeadPage) (string, error) {
	pageID, err := db.FindLead(ctx, p.LeadID)
	if err != nil {
		return "", err
	}
	if pageID == "" {
		return db.CreateLead(ctx, p)
	}
	if err := db.UpdateLead(ctx, pageID, p); err != nil {
		return "", err
	}
	return pageID, nil
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}}}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
