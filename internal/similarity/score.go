// Package similarity computes textual similarity between job references for
// duplicate detection. Scoring is deterministic and pure: no I/O, no state.
package similarity

import (
	"strings"
	"unicode"

	"github.com/jonathan/job-tracker/internal/types"
)

// Weights for the non-URL portion of the score.
const (
	companyWeight = 0.5
	titleWeight   = 0.5
)

// Score returns the similarity between two job references in [0,1].
// Matching URLs short-circuit to 1.0. Otherwise the normalized company name
// and job title each contribute half of the score via token overlap.
// Empty or missing fields contribute 0 for that field.
func Score(a, b types.JobReference) float64 {
	if a.URL != "" && b.URL != "" && NormalizeURL(a.URL) == NormalizeURL(b.URL) {
		return 1.0
	}
	company := fieldScore(a.CompanyName, b.CompanyName)
	title := fieldScore(a.JobTitle, b.JobTitle)
	return company*companyWeight + title*titleWeight
}

// NormalizeURL canonicalizes a URL for equality comparison: lowercase,
// trimmed, without a trailing slash.
func NormalizeURL(url string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(url)), "/")
}

// fieldScore compares one pair of text fields. Identical normalized strings
// score 1.0; otherwise the Jaccard overlap of their token sets.
func fieldScore(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}
	return jaccard(strings.Fields(na), strings.Fields(nb))
}

// Normalize lowercases text, strips punctuation, and collapses whitespace.
func Normalize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// jaccard computes |intersection| / |union| over token sets.
func jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, tok := range a {
		setA[tok] = true
	}
	setB := make(map[string]bool, len(b))
	for _, tok := range b {
		setB[tok] = true
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
