/*
Package suggest derives autosuggestions for the search box: prefix
completions from a radix trie over the catalog's names and codes, padded
with fuzzy corrections when the prefix pass comes up short.

The suggester is built once per store and is read-only afterwards, so it
can run concurrently with the main evaluation without coordination.
*/
package suggest

import (
	"sort"

	"github.com/avoss/donorserve/internal/utils"
	"github.com/avoss/donorserve/pkg/catalog"
	"github.com/avoss/donorserve/pkg/match"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// DefaultCorrectionFloor is the minimum similarity for correction
// suggestions. Deliberately stricter than the search threshold: a
// correction offered in the UI should be a near-certain hit.
const DefaultCorrectionFloor = 0.55

// DefaultLimit caps the suggestion list when the caller passes none.
const DefaultLimit = 5

// Kind tells prefix completions from typo corrections apart.
type Kind string

const (
	KindPrefix     Kind = "prefix"
	KindCorrection Kind = "correction"
)

// Suggestion is one candidate completion or correction.
type Suggestion struct {
	Text string
	Kind Kind
}

type entry struct {
	display string
	folded  string
}

// Suggester generates suggestions from a fixed catalog snapshot.
type Suggester struct {
	trie    *patricia.Trie
	entries []entry
	floor   float64
}

// NewSuggester indexes the store's names and codes. A non-positive
// floor falls back to the default correction floor.
func NewSuggester(store *catalog.Store, floor float64) *Suggester {
	if floor <= 0 || floor > 1 {
		floor = DefaultCorrectionFloor
	}
	s := &Suggester{
		trie:  patricia.NewTrie(),
		floor: floor,
	}
	for _, rec := range store.All() {
		s.index(rec.Name)
		s.index(rec.Code)
	}
	log.Debugf("Suggester indexed %d distinct terms", len(s.entries))
	return s
}

func (s *Suggester) index(text string) {
	folded := utils.Fold(text)
	if folded == "" {
		return
	}
	// First spelling wins for terms that collide after folding.
	if s.trie.Get(patricia.Prefix(folded)) != nil {
		return
	}
	s.trie.Insert(patricia.Prefix(folded), text)
	s.entries = append(s.entries, entry{display: text, folded: folded})
}

// Suggest returns up to limit distinct candidates for the query:
// prefix completions first, shortest-first, then fuzzy corrections
// above the floor filling the remaining slots. An empty query yields
// nothing.
func (s *Suggester) Suggest(query string, limit int) []Suggestion {
	folded := utils.Fold(query)
	if folded == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	seen := map[string]bool{folded: true}
	prefixes := s.prefixPass(folded, seen)
	if len(prefixes) > limit {
		prefixes = prefixes[:limit]
	}

	suggestions := make([]Suggestion, 0, limit)
	for _, e := range prefixes {
		suggestions = append(suggestions, Suggestion{Text: e.display, Kind: KindPrefix})
	}
	if len(suggestions) < limit {
		for _, e := range s.correctionPass(folded, seen, limit-len(suggestions)) {
			suggestions = append(suggestions, Suggestion{Text: e.display, Kind: KindCorrection})
		}
	}
	return suggestions
}

// prefixPass collects trie entries starting with the folded query,
// ranked shortest-length-first so the tightest completions surface.
func (s *Suggester) prefixPass(folded string, seen map[string]bool) []entry {
	var hits []entry
	err := s.trie.VisitSubtree(patricia.Prefix(folded), func(p patricia.Prefix, item patricia.Item) error {
		key := string(p)
		if seen[key] {
			return nil
		}
		seen[key] = true
		hits = append(hits, entry{display: item.(string), folded: key})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}
	sort.Slice(hits, func(i, j int) bool {
		if len(hits[i].folded) != len(hits[j].folded) {
			return len(hits[i].folded) < len(hits[j].folded)
		}
		return hits[i].folded < hits[j].folded
	})
	return hits
}

// correctionPass scans every indexed term for near-misses above the
// floor. Repetitive keyboard noise is skipped outright: it would rank
// half the catalog as a plausible correction.
func (s *Suggester) correctionPass(folded string, seen map[string]bool, limit int) []entry {
	if utils.IsRepetitive(folded) {
		return nil
	}

	type scored struct {
		entry
		score float64
	}
	var candidates []scored
	for _, e := range s.entries {
		if seen[e.folded] {
			continue
		}
		if score := match.Similarity(folded, e.folded); score >= s.floor {
			candidates = append(candidates, scored{entry: e, score: score})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].folded < candidates[j].folded
	})

	var hits []entry
	for _, c := range candidates {
		if len(hits) == limit {
			break
		}
		seen[c.folded] = true
		hits = append(hits, c.entry)
	}
	return hits
}
