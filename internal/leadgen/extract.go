package leadgen

import (
	"encoding/json"

	"github.com/sells-group/prospect-cli/internal/llm"
)

// Extract pulls lead records out of a free-text provider reply. It accepts a
// fenced block, bare JSON, or JSON surrounded by prose, including prose with
// bracketed citations such as "[1]". A single object is treated as a
// one-element list and a {"leads": [...]} envelope is unwrapped. Anything
// else yields nil.
func Extract(text string) []map[string]any {
	var records []map[string]any
	llm.DecodeReply(text, func(raw json.RawMessage) bool {
		var ok bool
		records, ok = decodeRecords(raw)
		return ok
	})
	return records
}

// decodeRecords accepts an array holding at least one object, an empty
// array, a leads envelope, or a single object.
func decodeRecords(raw json.RawMessage) ([]map[string]any, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		return records(t)
	case map[string]any:
		if inner, ok := t["leads"].([]any); ok {
			return records(inner)
		}
		return []map[string]any{t}, true
	default:
		return nil, false
	}
}

// records keeps the object elements of items. A non-empty array without any
// object is not a lead list.
func records(items []any) ([]map[string]any, bool) {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	if len(items) > 0 && len(out) == 0 {
		return nil, false
	}
	return out, true
}
