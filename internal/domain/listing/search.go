package listing

import (
	"regexp"
	"strings"
)

// Stopwords are dropped from search phrases before matching.
var Stopwords = map[string]struct{}{
	"и": {}, "а": {}, "ну": {}, "да": {}, "не": {}, "если": {}, "что": {},
	"как": {}, "когда": {}, "или": {}, "но": {}, "на": {}, "под": {},
	"по": {}, "с": {}, "со": {}, "из": {}, "от": {}, "до": {}, "за": {},
	"для": {}, "во": {},
}

var termSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Tokenize lowercases a search phrase and strips stopwords and
// punctuation. All remaining terms must match for a listing to qualify.
func Tokenize(query string) []string {
	var terms []string
	for _, raw := range termSplit.Split(strings.ToLower(query), -1) {
		if raw == "" {
			continue
		}
		if _, skip := Stopwords[raw]; skip {
			continue
		}
		terms = append(terms, raw)
	}
	return terms
}

// SearchParams scopes a catalog query. Search is city-wide on purpose:
// the stored microdistrict is collected at registration but never
// narrows results.
type SearchParams struct {
	City      string
	Category  string
	Condition string
	Terms     []string
	Offset    int
	Limit     int
}

// Normalized applies paging defaults.
func (p SearchParams) Normalized() SearchParams {
	out := p
	out.City = strings.TrimSpace(p.City)
	if out.Limit <= 0 {
		out.Limit = 10
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

// MatchesTerms reports whether every term occurs in the title or
// description, case-insensitively. An empty term list matches.
func (l *Listing) MatchesTerms(terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(l.Title + " " + l.Description)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}
