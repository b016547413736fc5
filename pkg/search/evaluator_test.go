package search

import (
	"strings"
	"testing"

	"github.com/avoss/donorserve/pkg/catalog"
)

// testStore builds the small fixture catalog every evaluator test runs
// against. Types resolve through the builtin table.
func testStore(t *testing.T) *catalog.Store {
	t.Helper()
	records := []catalog.Record{
		{Name: "United Nations", Code: "UN01", TypeCode: "MUL"},
		{Name: "World Health Organization", Code: "WH02", TypeCode: "MUL"},
		{Name: "World Food Programme", Code: "WF03", TypeCode: "MUL"},
		{Name: "Gates Foundation", Code: "GF04", TypeCode: "FND"},
		{Name: "Oxfam International", Code: "OX05", TypeCode: "NGO"},
		{Name: "Government of Norway", Code: "NO06", TypeCode: "GOV"},
		{Name: "Government of Japan", Code: "JP07", TypeCode: "GOV"},
		{Name: "Médecins Sans Frontières", Code: "MS08", TypeCode: "NGO"},
		{Name: "Smith Family Trust", Code: "SF09", TypeCode: "FND"},
	}
	return catalog.NewStore(records, catalog.NewTypeSet())
}

func codesOf(results []Result) []string {
	codes := make([]string, len(results))
	for i, r := range results {
		codes[i] = r.Record.Code
	}
	return codes
}

func equalCodes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEvaluateFuzzyTypo(t *testing.T) {
	store := catalog.NewStore([]catalog.Record{
		{Name: "United Nations", Code: "UN01", TypeCode: "MUL"},
		{Name: "World Health Organization", Code: "WH02", TypeCode: "MUL"},
	}, catalog.NewTypeSet())
	e := NewEvaluator(store, 0)
	results, stats := e.Evaluate("unted nations", ModeFuzzy, FieldAll, FilterSet{})

	if len(results) != 1 || results[0].Record.Code != "UN01" {
		t.Fatalf("Expected only UN01, got %v", codesOf(results))
	}
	if results[0].Score < 0.9 {
		t.Errorf("Expected score above 0.9, got %v", results[0].Score)
	}
	if stats.TotalResults != 1 || stats.Mode != ModeFuzzy {
		t.Errorf("Stats mismatch: %+v", stats)
	}
}

// Fuzzy ranking puts the best similarity first across a wider catalog.
func TestEvaluateFuzzyRanking(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	results, _ := e.Evaluate("unted nations", ModeFuzzy, FieldAll, FilterSet{})

	if len(results) == 0 || results[0].Record.Code != "UN01" {
		t.Fatalf("Expected UN01 ranked first, got %v", codesOf(results))
	}
	for _, r := range results[1:] {
		if r.Score > results[0].Score {
			t.Errorf("Result %s outscores the top hit: %v > %v", r.Record.Code, r.Score, results[0].Score)
		}
		if r.Record.Code == "WH02" {
			t.Error("WH02 should stay below the similarity floor")
		}
	}
}

func TestEvaluatePartialCodeLiteral(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	results, _ := e.Evaluate("WHO", ModePartial, FieldCode, FilterSet{})
	if len(results) != 0 {
		t.Errorf("WHO is not a substring of any code, got %v", codesOf(results))
	}
}

// Empty query with a filter is the browse case: the whole filtered set,
// unscored, in lexical order.
func TestEvaluateBrowseGovernment(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	results, stats := e.Evaluate("", ModePartial, FieldAll, FilterSet{GovernmentOnly: true})

	want := []string{"JP07", "NO06", "UN01", "WF03", "WH02"}
	if !equalCodes(codesOf(results), want) {
		t.Fatalf("Expected %v, got %v", want, codesOf(results))
	}
	for _, r := range results {
		if r.Score != 0 {
			t.Errorf("Browse results carry no score, got %v for %s", r.Score, r.Record.Code)
		}
		if !r.Record.Type.Government {
			t.Errorf("Non-government record %s passed the filter", r.Record.Code)
		}
	}
	if stats.TotalResults != 5 {
		t.Errorf("Expected 5 results in stats, got %d", stats.TotalResults)
	}
}

// Repeated evaluation of the same query must return the same ordering.
func TestEvaluateDeterminism(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	first, _ := e.Evaluate("world", ModePartial, FieldAll, FilterSet{})
	for i := 0; i < 5; i++ {
		again, _ := e.Evaluate("world", ModePartial, FieldAll, FilterSet{})
		if !equalCodes(codesOf(first), codesOf(again)) {
			t.Fatalf("Run %d ordered differently: %v vs %v", i, codesOf(first), codesOf(again))
		}
	}
}

func TestEvaluateNoDuplicates(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	// "un" hits both names and codes; each record must appear once.
	results, _ := e.Evaluate("un", ModePartial, FieldAll, FilterSet{})
	seen := map[string]bool{}
	for _, r := range results {
		if seen[r.Record.Code] {
			t.Errorf("Record %s appears more than once", r.Record.Code)
		}
		seen[r.Record.Code] = true
	}
}

// A longer partial query can only narrow the result set.
func TestEvaluatePartialMonotonicity(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	broad, _ := e.Evaluate("world", ModePartial, FieldName, FilterSet{})
	narrow, _ := e.Evaluate("world health", ModePartial, FieldName, FilterSet{})

	broadSet := map[string]bool{}
	for _, c := range codesOf(broad) {
		broadSet[c] = true
	}
	for _, c := range codesOf(narrow) {
		if !broadSet[c] {
			t.Errorf("Narrow result %s missing from broad set %v", c, codesOf(broad))
		}
	}
	if len(narrow) >= len(broad) {
		t.Errorf("Expected narrowing: %d vs %d results", len(narrow), len(broad))
	}
}

func TestEvaluateTypeFilter(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	results, _ := e.Evaluate("", ModePartial, FieldAll, FilterSet{Types: []string{"fnd"}})

	want := []string{"GF04", "SF09"}
	if !equalCodes(codesOf(results), want) {
		t.Errorf("Expected %v, got %v", want, codesOf(results))
	}
}

func TestFilterSetNormalized(t *testing.T) {
	f := FilterSet{GovernmentOnly: true, NonGovernmentOnly: true}.Normalized()
	if !f.GovernmentOnly || f.NonGovernmentOnly {
		t.Errorf("Government restriction should win, got %+v", f)
	}
}

// Records missing a name or code never reach the matchers.
func TestEvaluateSkipsIncompleteRecords(t *testing.T) {
	records := []catalog.Record{
		{Name: "United Nations", Code: "UN01", TypeCode: "MUL"},
		{Name: "", Code: "XX01", TypeCode: "MUL"},
		{Name: "Nameless Code", Code: "", TypeCode: "MUL"},
	}
	store := catalog.NewStore(records, catalog.NewTypeSet())
	e := NewEvaluator(store, 0)

	results, _ := e.Evaluate("", ModePartial, FieldAll, FilterSet{})
	if len(results) != 1 || results[0].Record.Code != "UN01" {
		t.Errorf("Expected only UN01 to survive, got %v", codesOf(results))
	}
}

// The full field scope keeps span sets for both name and code when
// both match.
func TestEvaluateFieldAllSpans(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	results, _ := e.Evaluate("un", ModePartial, FieldAll, FilterSet{})

	var un *Result
	for i := range results {
		if results[i].Record.Code == "UN01" {
			un = &results[i]
			break
		}
	}
	if un == nil {
		t.Fatal("UN01 not found")
	}
	if len(un.NameSpans) == 0 {
		t.Error("Expected name spans for 'un' in United Nations")
	}
	if len(un.CodeSpans) == 0 {
		t.Error("Expected code spans for 'un' in UN01")
	}
}

func TestEvaluatePathologicalQuery(t *testing.T) {
	e := NewEvaluator(testStore(t), 0)
	queries := []string{
		strings.Repeat("z", 5000),
		"\x00\x01",
		"   ",
		"日本",
	}
	for _, q := range queries {
		for _, mode := range []Mode{ModeExact, ModePartial, ModeFuzzy, ModePhonetic} {
			e.Evaluate(q, mode, FieldAll, FilterSet{})
		}
	}
}

func TestParseModeAndField(t *testing.T) {
	if ParseMode("FUZZY") != ModeFuzzy {
		t.Error("Mode parsing should be case-insensitive")
	}
	if ParseMode("nonsense") != ModePartial {
		t.Error("Unknown modes normalize to partial")
	}
	if ParseField("Code") != FieldCode {
		t.Error("Field parsing should be case-insensitive")
	}
	if ParseField("") != FieldAll {
		t.Error("Unknown fields normalize to the full scope")
	}
}
