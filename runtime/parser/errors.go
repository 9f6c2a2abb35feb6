package parser

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/opal-lang/pysyntax/runtime/lexer"
)

// maxSuggestDistance bounds how far a misspelling may be from a keyword.
const maxSuggestDistance = 2

// suggestKeyword returns the hard keyword a misspelled identifier most
// likely meant, or "".
func suggestKeyword(word string) string {
	if len(word) < 3 {
		return ""
	}
	candidates := lexer.Keywords()

	// Use fuzzy ranking first: it catches dropped letters ("retrn").
	ranks := fuzzy.RankFindFold(word, candidates)
	sort.Sort(ranks)
	if len(ranks) > 0 && ranks[0].Distance <= maxSuggestDistance {
		return ranks[0].Target
	}

	// Transpositions ("retrun") are not subsequences; fall back to edit
	// distance.
	if len(word) < 4 {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	lower := strings.ToLower(word)
	for _, kw := range candidates {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(kw)); d < bestDist {
			best, bestDist = kw, d
		}
	}
	return best
}
