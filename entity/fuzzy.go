package entity

import (
	"strings"

	"github.com/agext/levenshtein"
)

// FuzzyResolveThreshold is the minimum similarity (0-1) for a fuzzy
// catalog match to be trusted, per §4.7's "handles misspellings and
// synonyms" resolver.
const FuzzyResolveThreshold = 0.6

// FuzzyResolve finds the catalog service whose name or synonym is
// closest to text by normalized Levenshtein similarity, grounded on
// codeready-toolchain-tarsy's use of agext/levenshtein for approximate
// string matching.
func FuzzyResolve(catalog *Catalog, text string) (Service, float64, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Service{}, 0, false
	}

	var best Service
	bestScore := 0.0

	for _, s := range catalog.Services {
		candidates := append([]string{s.Name}, s.Synonyms...)
		for _, c := range candidates {
			score := levenshtein.Match(text, strings.ToLower(c), nil)
			if score > bestScore {
				bestScore = score
				best = s
			}
		}
	}

	if bestScore < FuzzyResolveThreshold {
		return Service{}, bestScore, false
	}
	return best, bestScore, true
}
