package repositories

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Query is a case-insensitive substring filter with optional typo tolerance.
type Query struct {
	text          string
	fuzzyDistance int
}

// NewQuery builds a query. fuzzyDistance is the largest Levenshtein distance
// at which a word still matches; 0 turns fuzzy matching off.
func NewQuery(text string, fuzzyDistance int) Query {
	if fuzzyDistance < 0 {
		fuzzyDistance = 0
	}
	return Query{
		text:          strings.ToLower(strings.TrimSpace(text)),
		fuzzyDistance: fuzzyDistance,
	}
}

// Empty reports whether the query matches everything.
func (q Query) Empty() bool {
	return q.text == ""
}

// Match reports whether any field contains the query text, or (fuzzy) holds
// a word close enough to it.
func (q Query) Match(fields ...string) bool {
	if q.Empty() {
		return true
	}
	for _, f := range fields {
		lf := strings.ToLower(f)
		if strings.Contains(lf, q.text) {
			return true
		}
		if q.fuzzyMatch(lf) {
			return true
		}
	}
	return false
}

func (q Query) fuzzyMatch(field string) bool {
	// Short queries would match almost anything at distance 1.
	if q.fuzzyDistance == 0 || len([]rune(q.text)) <= q.fuzzyDistance+2 {
		return false
	}
	words := strings.FieldsFunc(field, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if levenshtein.ComputeDistance(w, q.text) <= q.fuzzyDistance {
			return true
		}
	}
	return false
}
