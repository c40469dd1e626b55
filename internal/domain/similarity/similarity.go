// Package similarity provides the string similarity scores used by
// transaction matching.
//
// The scores are deliberately simple: case-insensitive token overlap,
// with a substring shortcut for category labels. No stemming, no edit
// distance, no locale awareness.
package similarity

import "strings"

// Category scores how similar two category labels are, in [0, 1].
//
// Comparison is case-insensitive on trimmed input. An exact match scores
// 1.0 and a substring relationship in either direction scores 0.8;
// anything else falls back to token overlap. Empty input scores 0.
func Category(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}
	return tokenOverlap(a, b)
}

// Description scores two free-text descriptions by token overlap alone,
// in [0, 1]. Empty input scores 0.
func Description(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	return tokenOverlap(a, b)
}

// tokenOverlap returns the number of shared whitespace-delimited tokens
// divided by the larger token count.
func tokenOverlap(a, b string) float64 {
	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	inB := make(map[string]bool, len(bTokens))
	for _, tok := range bTokens {
		inB[tok] = true
	}

	shared := 0
	for _, tok := range aTokens {
		if inB[tok] {
			shared++
		}
	}

	larger := len(aTokens)
	if len(bTokens) > larger {
		larger = len(bTokens)
	}

	return float64(shared) / float64(larger)
}
