package search

import (
	"testing"

	"github.com/avoss/donorserve/pkg/match"
)

func TestHighlight(t *testing.T) {
	testCases := []struct {
		input    string
		spans    []match.Span
		expected string
		desc     string
	}{
		{"World Health", []match.Span{{Start: 6, End: 12}}, "World **Health**", "Single span"},
		{"banana", []match.Span{{Start: 1, End: 5}}, "b**anan**a", "Merged interior span"},
		{"United Nations", []match.Span{{Start: 0, End: 6}, {Start: 7, End: 14}}, "**United** **Nations**", "Two spans"},
		{"plain", nil, "plain", "No spans passthrough"},
		{"short", []match.Span{{Start: 2, End: 99}}, "sh**ort**", "End clamped to length"},
		{"Médecins", []match.Span{{Start: 0, End: 8}}, "**Médecins**", "Rune offsets, not bytes"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := Highlight(tc.input, tc.spans, DefaultMarker); got != tc.expected {
				t.Errorf("Highlight(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestHighlightCustomMarker(t *testing.T) {
	got := Highlight("abc", []match.Span{{Start: 0, End: 2}}, "~")
	if got != "~ab~c" {
		t.Errorf("Expected ~ab~c, got %q", got)
	}
}
