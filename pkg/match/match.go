// Package match scores a typed prefix against a single candidate name.
//
// Scoring is tiered. An exact (case-insensitive) prefix always wins, a
// contiguous substring comes next, and a subsequence match is scored by how
// tight it is and how many of its characters land on word boundaries.
// Everything here is pure and deterministic for a given (prefix, candidate).
package match

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scoring constants. These are heuristics tuned by feel, not invariants.
const (
	EmptyPrefixScore = 450
	PrefixScore      = 1000
	SubstringScore   = 850

	subsequenceBase     = 700
	startPenalty        = 2
	gapPenalty          = 6
	boundaryBonus       = 40
	caseBonus           = 30
	uppercaseBonus      = 60
	startBoundaryBonus  = 60
	abbreviationScore   = 930
	abbreviationGap     = 2
	abbreviationMaxLen  = 6
	substringMinLen     = 2
	subsequenceMaxScore = PrefixScore - 1
)

// Result is a successful match of a prefix against a candidate.
// Indices are rune offsets into the candidate.
type Result struct {
	Indices []int
	Score   int
}

// Match reports whether prefix matches candidate and how well. Surrounding
// whitespace on either side is ignored for scoring; indices still point
// into candidate as given.
func Match(prefix, candidate string) (Result, bool) {
	pattern := []rune(strings.TrimSpace(prefix))
	trimmed := strings.TrimLeftFunc(candidate, unicode.IsSpace)
	lead := utf8.RuneCountInString(candidate) - utf8.RuneCountInString(trimmed)
	text := []rune(strings.TrimRightFunc(trimmed, unicode.IsSpace))

	res, ok := matchRunes(pattern, text)
	if ok && lead > 0 {
		for i := range res.Indices {
			res.Indices[i] += lead
		}
	}
	return res, ok
}

func matchRunes(pattern, text []rune) (Result, bool) {
	if len(text) == 0 {
		return Result{}, false
	}
	if len(pattern) == 0 {
		// completion right after a dot, keep everything with a stable rank
		return Result{Score: EmptyPrefixScore}, true
	}

	lowerPattern := lowerRunes(pattern)
	lowerText := lowerRunes(text)

	if hasPrefix(lowerText, lowerPattern) {
		n := min(len(pattern), len(text))
		return Result{Indices: span(0, n), Score: PrefixScore}, true
	}

	// single characters only complete by prefix, anything else is noise
	if len(pattern) < substringMinLen {
		return Result{}, false
	}

	if start := indexRunes(lowerText, lowerPattern); start >= 0 {
		end := min(len(text), start+len(pattern))
		return Result{Indices: span(start, end), Score: SubstringScore - startPenalty*start}, true
	}

	return subsequence(pattern, text, lowerPattern, lowerText)
}

// subsequence matches every pattern rune in order, greedily.
func subsequence(pattern, text, lowerPattern, lowerText []rune) (Result, bool) {
	out := make([]int, 0, len(pattern))
	pos := 0
	for _, r := range lowerPattern {
		idx := indexRuneFrom(lowerText, r, pos)
		if idx < 0 {
			return Result{}, false
		}
		out = append(out, idx)
		pos = idx + 1
	}

	first := out[0]
	gaps := (out[len(out)-1] - first + 1) - len(pattern)
	score := subsequenceBase - (startPenalty*first + gapPenalty*gaps)

	boundaries := Boundaries(string(text))
	boundaryHits := 0
	caseHits := 0
	for i, idx := range out {
		if boundaries[idx] {
			boundaryHits++
		}
		if unicode.IsUpper(pattern[i]) && unicode.IsUpper(text[idx]) {
			caseHits++
		}
	}

	score += boundaryBonus*boundaryHits + caseBonus*caseHits
	if hasUpper(pattern) {
		score += uppercaseBonus
	}
	if boundaries[first] {
		score += startBoundaryBonus
	}

	// every character on a word start: treat as an abbreviation (cN -> createNode)
	if boundaryHits == len(pattern) && len(pattern) <= abbreviationMaxLen {
		score = max(score, abbreviationScore-(startPenalty*first+abbreviationGap*gaps))
	}

	score = min(max(1, score), subsequenceMaxScore)
	return Result{Indices: out, Score: score}, true
}

// Boundaries marks the rune offsets of text that start a new word part:
// index 0, anything after a separator, camelCase and PathCase transitions,
// and letter/digit transitions.
func Boundaries(text string) []bool {
	runes := []rune(text)
	marks := make([]bool, len(runes))
	if len(runes) == 0 {
		return marks
	}
	marks[0] = true
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		switch {
		case IsSeparator(prev):
			marks[i] = true
		case unicode.IsUpper(cur) && (unicode.IsLower(prev) || (next != 0 && unicode.IsLower(next))):
			// QWidget: W starts a word because the next rune is lowercase
			marks[i] = true
		case unicode.IsDigit(prev) && unicode.IsLetter(cur):
			marks[i] = true
		case unicode.IsLetter(prev) && unicode.IsDigit(cur):
			marks[i] = true
		}
	}
	return marks
}

// IsSeparator checks if a rune separates word parts inside a name.
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/' || r == '\\' || r == ':'
}

// Indices recomputes highlight offsets of pattern inside a display string,
// e.g. after the popup elided the text. Returns nil when nothing matches.
func Indices(pattern, text string) []int {
	p := []rune(strings.TrimSpace(pattern))
	t := []rune(text)
	if len(p) == 0 || len(t) == 0 {
		return nil
	}
	lp, lt := lowerRunes(p), lowerRunes(t)

	if hasPrefix(lt, lp) {
		return span(0, min(len(p), len(t)))
	}
	if len(lp) >= substringMinLen {
		if start := indexRunes(lt, lp); start >= 0 {
			return span(start, min(len(t), start+len(p)))
		}
	}

	out := make([]int, 0, len(lp))
	pos := 0
	for _, r := range lp {
		idx := indexRuneFrom(lt, r, pos)
		if idx < 0 {
			return nil
		}
		out = append(out, idx)
		pos = idx + 1
	}
	return out
}

func lowerRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func hasPrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

func indexRunes(s, sub []rune) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if hasPrefix(s[i:], sub) {
			return i
		}
	}
	return -1
}

func indexRuneFrom(s []rune, r rune, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == r {
			return i
		}
	}
	return -1
}

func hasUpper(rs []rune) bool {
	for _, r := range rs {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func span(start, end int) []int {
	if end <= start {
		return nil
	}
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}
