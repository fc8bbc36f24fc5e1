package leadgen

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NameKey folds a business name into its deduplication key: accents
// stripped, lower-cased, whitespace collapsed. "Padaria São João " and
// "padaria sao  joao" share a key.
func NameKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// SeenSet tracks lead names already returned or excluded during one search.
// It is not safe for concurrent use.
type SeenSet struct {
	keys  map[string]struct{}
	names []string
}

// NewSeenSet seeds the set with names the caller already has.
func NewSeenSet(existing []string) *SeenSet {
	s := &SeenSet{keys: make(map[string]struct{}, len(existing))}
	for _, n := range existing {
		s.Add(n)
	}
	return s
}

// Has reports whether name folds to a key already in the set.
func (s *SeenSet) Has(name string) bool {
	_, ok := s.keys[NameKey(name)]
	return ok
}

// Add records name. It returns false if the key was already present or
// the name folds to nothing.
func (s *SeenSet) Add(name string) bool {
	key := NameKey(name)
	if key == "" {
		return false
	}
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	s.names = append(s.names, strings.TrimSpace(name))
	return true
}

// Len returns the number of distinct keys.
func (s *SeenSet) Len() int { return len(s.keys) }

// Names returns the display names in insertion order.
func (s *SeenSet) Names() []string {
	return append([]string(nil), s.names...)
}
