/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: similarity.go
Description: Normalized sequence similarity used for fuzzy alias matching and value-set
matching. Scores are in [0,1], case-insensitive, backed by a Levenshtein metric.
*/

package similarity

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// DefaultThreshold is the score a candidate must reach to count as a match
const DefaultThreshold = 0.85

var levenshtein = newMetric()

func newMetric() *metrics.Levenshtein {
	m := metrics.NewLevenshtein()
	m.CaseSensitive = false
	return m
}

// Score returns the normalized similarity between a and b
func Score(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" && b == "" {
		return 1
	}
	if strings.EqualFold(a, b) {
		return 1
	}
	return strutil.Similarity(a, b, levenshtein)
}

// ValueSetScore compares two value samples by joining each into a single lower-cased,
// space-separated sequence and scoring the two sequences
func ValueSetScore(sample, known []string) float64 {
	if len(sample) == 0 || len(known) == 0 {
		return 0
	}
	return Score(joinValues(sample), joinValues(known))
}

func joinValues(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Match is the best-scoring candidate of a search
type Match struct {
	Index int     // Position of the candidate in the searched slice
	Score float64 // Similarity of the candidate
}

// Best returns the highest-scoring candidate for s. Ties keep the earliest candidate.
// Index is -1 when candidates is empty.
func Best(s string, candidates []string) Match {
	best := Match{Index: -1}
	for i, c := range candidates {
		if score := Score(s, c); score > best.Score || best.Index < 0 {
			best = Match{Index: i, Score: score}
		}
	}
	return best
}
