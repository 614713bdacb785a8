// Package fuzzy widens a candidate pool with approximate matches when the
// regular prefix/substring/subsequence tiers come up short.
package fuzzy

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Defaults used by the ranker.
const (
	DefaultCutoff    = 0.6
	DefaultMaxResult = 30
	MinPrefixLen     = 3
	TriggerBelow     = 30
	BaselineScore    = 520
)

type scored struct {
	word  string
	ratio float64
}

// Similarity returns a ratio in [0, 1] where 1 means identical strings.
// It is derived from the edit distance relative to the longer input.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// CloseMatches returns up to n words from pool whose similarity to word is at
// least cutoff, best first. Equal ratios are ordered by word descending so
// results are stable for a given pool.
func CloseMatches(word string, pool []string, n int, cutoff float64) []string {
	if n <= 0 || word == "" {
		return nil
	}

	var matches []scored
	for _, candidate := range pool {
		if candidate == "" {
			continue
		}
		// cheap upper bound: length difference alone can rule a word out
		la, lc := utf8.RuneCountInString(word), utf8.RuneCountInString(candidate)
		if 1-float64(abs(la-lc))/float64(max(la, lc)) < cutoff {
			continue
		}
		if r := Similarity(word, candidate); r >= cutoff {
			matches = append(matches, scored{word: candidate, ratio: r})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].ratio != matches[j].ratio {
			return matches[i].ratio > matches[j].ratio
		}
		return matches[i].word > matches[j].word
	})

	if len(matches) == 0 {
		return nil
	}
	if len(matches) > n {
		matches = matches[:n]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.word
	}
	return out
}

// Fallback maps a lowercased pool back to the original spelling of each name
// and returns close matches for prefix that are not in exclude. Returned
// names are added to exclude. When two names lowercase to the same key the
// later one wins.
func Fallback(prefix string, names []string, exclude map[string]bool) []string {
	normalized := make(map[string]string, len(names))
	keys := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, seen := normalized[key]; !seen {
			keys = append(keys, key)
		}
		normalized[key] = name
	}

	var out []string
	for _, key := range CloseMatches(strings.ToLower(prefix), keys, DefaultMaxResult, DefaultCutoff) {
		name := normalized[key]
		if name == "" || exclude[name] {
			continue
		}
		out = append(out, name)
		exclude[name] = true
	}
	return out
}

// ShouldTrigger reports whether the fallback should run for a prefix given
// how many items the regular tiers already produced.
func ShouldTrigger(enabled bool, prefix string, found int) bool {
	return enabled && utf8.RuneCountInString(prefix) >= MinPrefixLen && found < TriggerBelow
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
