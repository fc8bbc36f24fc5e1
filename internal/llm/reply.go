package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	fencedAnyRe  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// DecodeReply walks the JSON values embedded in a model reply and stops at
// the first one accept takes. Candidates are tried in order: the ```json
// fence, any fence, the whole reply, then the balanced value starting at
// each '[' or '{'. It reports whether any candidate was accepted.
func DecodeReply(text string, accept func(raw json.RawMessage) bool) bool {
	for _, re := range []*regexp.Regexp{fencedJSONRe, fencedAnyRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if raw, ok := firstValue(m[1]); ok && accept(raw) {
				return true
			}
		}
	}

	if t := strings.TrimSpace(text); json.Valid([]byte(t)) && accept(json.RawMessage(t)) {
		return true
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		if raw, ok := firstValue(text[i:]); ok && accept(raw) {
			return true
		}
	}
	return false
}

// firstValue decodes the first complete JSON value in s, ignoring anything
// after it.
func firstValue(s string) (json.RawMessage, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&raw); err != nil {
		return nil, false
	}
	return raw, true
}
