package leadgen

import "github.com/sells-group/prospect-cli/internal/model"

// Assemble pairs the accumulated leads, truncated to target, with every
// call's sources in call order. Sources are not deduplicated.
func Assemble(leads []model.Lead, sources [][]model.GroundingSource, target int) *model.SearchResult {
	if target >= 0 && len(leads) > target {
		leads = leads[:target]
	}
	res := &model.SearchResult{
		Leads:   append([]model.Lead{}, leads...),
		Sources: []model.GroundingSource{},
	}
	for _, s := range sources {
		res.Sources = append(res.Sources, s...)
	}
	return res
}
