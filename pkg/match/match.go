/*
Package match implements the four matching strategies the search engine
ranks with: exact, partial (substring), fuzzy (normalized Levenshtein)
and phonetic (Soundex).

Each matcher scores a single field value against a single query term.
All comparisons run on the folded form of both sides (lowercased,
diacritics stripped); spans in the returned Outcome address rune offsets
of the original field value so the presentation layer can highlight it
untouched. Matchers are pure and total: any string input, including
empty, whitespace-only or pathological queries, yields a well-defined
Outcome and never a panic.
*/
package match

import (
	"strings"

	"github.com/avoss/donorserve/internal/utils"
)

// DefaultFuzzyThreshold is the minimum acceptable similarity for the
// fuzzy matcher. Tunable through config; the boundary is covered by
// tests on both sides.
const DefaultFuzzyThreshold = 0.35

// Span marks a matched region of the original field value, as a
// half-open rune offset interval.
type Span struct {
	Start int
	End   int
}

// Outcome is the result of scoring one field value against one query.
// Score is meaningful for the fuzzy matcher only; the binary matchers
// report 1.0 on a match so result ranking has a uniform scale.
type Outcome struct {
	Matched bool
	Score   float64
	Spans   []Span
}

// Exact reports a match when the folded field equals the folded query.
// The span covers the entire field value.
func Exact(field, query string) Outcome {
	q := utils.Fold(query)
	if q == "" {
		return Outcome{}
	}
	if utils.Fold(field) != q {
		return Outcome{}
	}
	n := len([]rune(field))
	return Outcome{Matched: true, Score: 1.0, Spans: []Span{{Start: 0, End: n}}}
}

// Partial reports a match when the folded field contains the folded
// query. Every occurrence is annotated; overlapping or adjacent
// occurrences merge into one span.
func Partial(field, query string) Outcome {
	q := []rune(utils.Fold(query))
	if len(q) == 0 {
		return Outcome{}
	}
	folded, idx := utils.FoldMap(field)
	f := []rune(folded)

	var spans []Span
	for i := 0; i+len(q) <= len(f); {
		if !runesEqual(f[i:i+len(q)], q) {
			i++
			continue
		}
		spans = append(spans, mapSpan(idx, i, i+len(q)))
		i += len(q)
	}
	if len(spans) == 0 {
		return Outcome{}
	}
	return Outcome{Matched: true, Score: 1.0, Spans: mergeSpans(spans)}
}

// Fuzzy scores the query against the whole field and, for single-word
// queries, against each whitespace token of it, keeping the best
// similarity. Token scoring is what lets "nations" find "United
// Nations"; a multi-word query is only compared whole, since matching
// it against individual tokens would reward unrelated length overlap.
// Similarity is edit distance normalized by the longer string,
// floor-clamped at zero. The highlight is best-effort: the longest
// common contiguous run of query and field when it spans at least two
// runes.
func Fuzzy(field, query string, threshold float64) Outcome {
	q := utils.Fold(query)
	if q == "" {
		return Outcome{}
	}
	folded, idx := utils.FoldMap(field)

	score := Similarity(q, strings.TrimSpace(folded))
	if len(strings.Fields(q)) == 1 {
		for _, token := range strings.Fields(folded) {
			if s := Similarity(q, token); s > score {
				score = s
			}
		}
	}
	if score < threshold {
		return Outcome{Score: score}
	}

	out := Outcome{Matched: true, Score: score}
	if start, length := longestCommonRun(q, folded); length >= 2 {
		out.Spans = []Span{mapSpan(idx, start, start+length)}
	}
	return out
}

// Phonetic reports a match when the query's Soundex code equals the
// code of any whitespace token of the field. Phonetic matches are not
// textually contiguous, so no spans are produced.
func Phonetic(field, query string) Outcome {
	q := Soundex(utils.Fold(query))
	if q == "" {
		return Outcome{}
	}
	for _, token := range utils.FoldTokens(field) {
		if Soundex(token) == q {
			return Outcome{Matched: true, Score: 1.0}
		}
	}
	return Outcome{}
}

// Similarity computes the normalized Levenshtein similarity of two
// strings in [0,1]: identical strings score 1, fully dissimilar 0.
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	if longer == 0 {
		return 1.0
	}
	score := 1.0 - float64(levenshtein(ra, rb))/float64(longer)
	if score < 0 {
		return 0
	}
	return score
}

// levenshtein computes edit distance with the two-row iteration.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// longestCommonRun finds the longest common contiguous substring of q
// and s, returning its start offset in s and its rune length.
func longestCommonRun(q, s string) (start, length int) {
	rq, rs := []rune(q), []rune(s)
	if len(rq) == 0 || len(rs) == 0 {
		return 0, 0
	}
	prev := make([]int, len(rs)+1)
	curr := make([]int, len(rs)+1)
	for i := 1; i <= len(rq); i++ {
		for j := 1; j <= len(rs); j++ {
			if rq[i-1] == rs[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > length {
					length = curr[j]
					start = j - curr[j]
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}
	return start, length
}

// mapSpan translates a folded-space rune interval back onto the
// original string through the fold index.
func mapSpan(idx []int, start, end int) Span {
	if len(idx) == 0 || start >= len(idx) || end <= start {
		return Span{}
	}
	if end > len(idx) {
		end = len(idx)
	}
	return Span{Start: idx[start], End: idx[end-1] + 1}
}

// mergeSpans collapses overlapping and adjacent spans. Input must be
// sorted by start, which the occurrence scan guarantees.
func mergeSpans(spans []Span) []Span {
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
