package search

import (
	"sort"
	"time"

	"github.com/avoss/donorserve/internal/utils"
	"github.com/avoss/donorserve/pkg/catalog"
	"github.com/avoss/donorserve/pkg/match"
	"github.com/charmbracelet/log"
)

// Evaluator runs queries against a borrowed record store. It holds no
// state between calls and is safe for concurrent use.
type Evaluator struct {
	store     *catalog.Store
	threshold float64
}

// NewEvaluator creates an evaluator over store. A non-positive
// threshold falls back to the default fuzzy similarity floor.
func NewEvaluator(store *catalog.Store, threshold float64) *Evaluator {
	if threshold <= 0 || threshold > 1 {
		threshold = match.DefaultFuzzyThreshold
	}
	return &Evaluator{store: store, threshold: threshold}
}

// Threshold returns the fuzzy similarity floor in effect.
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}

// Evaluate scores every filtered record against the query and returns
// the ranked result set with timing stats. An empty (or whitespace)
// query returns the full filtered set unscored — the browse-all case —
// with the stats measuring only the filter pass.
func (e *Evaluator) Evaluate(query string, mode Mode, field Field, filters FilterSet) ([]Result, Stats) {
	start := time.Now()
	filters = filters.Normalized()

	var results []Result
	folded := utils.Fold(query)

	for _, rec := range e.store.All() {
		// Records missing a name or code are a data-quality issue
		// reported at load time; they do not participate in matching.
		if rec.Name == "" || rec.Code == "" {
			continue
		}
		if !filters.Allow(rec) {
			continue
		}
		if folded == "" {
			results = append(results, Result{Record: rec})
			continue
		}
		if res, ok := e.scoreRecord(rec, query, mode, field); ok {
			results = append(results, res)
		}
	}

	sortResults(results)

	stats := Stats{
		TotalResults: len(results),
		Duration:     time.Since(start),
		Mode:         mode,
		Query:        query,
	}
	log.Debugf("Evaluated %q (%s/%s): %d results in %v", query, mode, field, stats.TotalResults, stats.Duration)
	return results, stats
}

// scoreRecord evaluates the selected field scope for one record.
// The full scope scores name and code independently, keeps both span
// sets, and ranks the record by the better of the two (name preferred
// on a tie).
func (e *Evaluator) scoreRecord(rec catalog.Record, query string, mode Mode, field Field) (Result, bool) {
	var nameOut, codeOut match.Outcome
	if field == FieldAll || field == FieldName {
		nameOut = e.matchField(rec.Name, query, mode)
	}
	if field == FieldAll || field == FieldCode {
		codeOut = e.matchField(rec.Code, query, mode)
	}
	if !nameOut.Matched && !codeOut.Matched {
		return Result{}, false
	}

	res := Result{Record: rec, Score: nameOut.Score}
	if codeOut.Score > nameOut.Score {
		res.Score = codeOut.Score
	}
	if nameOut.Matched {
		res.NameSpans = nameOut.Spans
	}
	if codeOut.Matched {
		res.CodeSpans = codeOut.Spans
	}
	return res, true
}

func (e *Evaluator) matchField(value, query string, mode Mode) match.Outcome {
	switch mode {
	case ModeExact:
		return match.Exact(value, query)
	case ModeFuzzy:
		return match.Fuzzy(value, query, e.threshold)
	case ModePhonetic:
		return match.Phonetic(value, query)
	}
	return match.Partial(value, query)
}

// sortResults orders by descending score, then ascending folded name,
// then code. The trailing code tiebreak keeps the ordering total for
// records sharing a display name.
func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		ni, nj := utils.Fold(results[i].Record.Name), utils.Fold(results[j].Record.Name)
		if ni != nj {
			return ni < nj
		}
		return utils.Fold(results[i].Record.Code) < utils.Fold(results[j].Record.Code)
	})
}
