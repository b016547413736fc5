package search

import (
	"strings"

	"github.com/avoss/donorserve/pkg/match"
)

// DefaultMarker is the delimiter Highlight wraps matched spans in when
// the caller has no styling of its own.
const DefaultMarker = "**"

// Highlight renders s with every matched span wrapped in the marker
// delimiter. Spans address rune offsets; out-of-range spans are
// clamped. With no spans the original string comes back unchanged —
// the core hands out span ranges, this wrapper exists for plain-text
// presentation surfaces.
func Highlight(s string, spans []match.Span, marker string) string {
	if len(spans) == 0 {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		start, end := sp.Start, sp.End
		if start < pos {
			start = pos
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start >= end {
			continue
		}
		b.WriteString(string(runes[pos:start]))
		b.WriteString(marker)
		b.WriteString(string(runes[start:end]))
		b.WriteString(marker)
		pos = end
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}
