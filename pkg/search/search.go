/*
Package search evaluates queries against the donor catalog.

The evaluator applies one of four matching strategies over a field
scope, pre-filters by contributor classification, and returns a
deterministic ranked result set with highlight spans and timing stats.
It is pure: no I/O, no catalog mutation, total over all string inputs.
*/
package search

import (
	"time"

	"github.com/avoss/donorserve/internal/utils"
	"github.com/avoss/donorserve/pkg/catalog"
	"github.com/avoss/donorserve/pkg/match"
)

// Mode selects the matching strategy.
type Mode int

const (
	ModeExact Mode = iota
	ModePartial
	ModeFuzzy
	ModePhonetic
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModePartial:
		return "partial"
	case ModeFuzzy:
		return "fuzzy"
	case ModePhonetic:
		return "phonetic"
	}
	return "partial"
}

// ParseMode maps a mode name to its Mode. Unknown names normalize to
// partial matching rather than failing; bad input is never an error on
// the search path.
func ParseMode(s string) Mode {
	switch utils.Fold(s) {
	case "exact":
		return ModeExact
	case "fuzzy":
		return ModeFuzzy
	case "phonetic":
		return ModePhonetic
	}
	return ModePartial
}

// Field selects which record attributes are compared.
type Field int

const (
	FieldAll Field = iota
	FieldName
	FieldCode
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldCode:
		return "code"
	}
	return "all"
}

// ParseField maps a field name to its Field; unknown names normalize
// to the full scope.
func ParseField(s string) Field {
	switch utils.Fold(s) {
	case "name":
		return FieldName
	case "code":
		return FieldCode
	}
	return FieldAll
}

// FilterSet restricts the record set before any scoring happens.
// The government flags are mutually exclusive; Types, when non-empty,
// limits results to those contributor type codes.
type FilterSet struct {
	GovernmentOnly    bool
	NonGovernmentOnly bool
	Types             []string
}

// Normalized enforces mutual exclusion of the government flags.
// When both are set the government restriction wins; the session
// setters keep this from happening in the first place.
func (f FilterSet) Normalized() FilterSet {
	if f.GovernmentOnly && f.NonGovernmentOnly {
		f.NonGovernmentOnly = false
	}
	return f
}

// Allow reports whether rec passes the filter. Filtering is a pure
// intersection and never depends on the search mode.
func (f FilterSet) Allow(rec catalog.Record) bool {
	if f.GovernmentOnly && !rec.Type.Government {
		return false
	}
	if f.NonGovernmentOnly && rec.Type.Government {
		return false
	}
	if len(f.Types) > 0 {
		code := utils.Fold(rec.TypeCode)
		found := false
		for _, t := range f.Types {
			if utils.Fold(t) == code {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Result is one scored catalog match. Span slices are empty when the
// corresponding field produced no sub-span annotation (phonetic
// matches, browse-all results).
type Result struct {
	Record    catalog.Record
	Score     float64
	NameSpans []match.Span
	CodeSpans []match.Span
}

// Stats describes one completed evaluation.
type Stats struct {
	TotalResults int
	Duration     time.Duration
	Mode         Mode
	Query        string
}
