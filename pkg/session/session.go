/*
Package session owns the interactive search state: the current query
and options, debounced re-evaluation under rapid typing, and a publish
contract that only ever surfaces the most recently submitted input.

Supersession is by submission order, not completion order. Every input
change bumps a generation counter; an evaluation carries the generation
it was submitted under and is dropped unpublished when a newer input
arrived while it ran. Cancellation is cooperative — in-flight work is
not aborted, its result is simply discarded.
*/
package session

import (
	"sync"
	"time"

	"github.com/avoss/donorserve/pkg/search"
	"github.com/avoss/donorserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// DefaultDebounce is the quiet interval after the last keystroke before
// an evaluation fires.
const DefaultDebounce = 300 * time.Millisecond

// Update is one published snapshot of results for the latest settled
// input. Stats is nil for the "no query yet" state (after Clear), as
// opposed to a settled search with zero results.
type Update struct {
	Query       string
	Results     []search.Result
	Stats       *search.Stats
	Suggestions []suggest.Suggestion
}

// Options tunes a controller.
type Options struct {
	Debounce        time.Duration
	SuggestionLimit int
}

// Controller is the single writer of the session's query/options tuple.
// Its methods are safe to call from any goroutine; published updates
// arrive on a capacity-1 latest-wins channel.
type Controller struct {
	evaluator *search.Evaluator
	suggester *suggest.Suggester
	debounce  time.Duration
	sugLimit  int

	mu      sync.Mutex
	query   string
	mode    search.Mode
	field   search.Field
	filters search.FilterSet
	gen     uint64
	timer   *time.Timer
	closed  bool

	updates chan Update
}

// New creates a controller over the given evaluator and suggester.
func New(evaluator *search.Evaluator, suggester *suggest.Suggester, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = suggest.DefaultLimit
	}
	return &Controller{
		evaluator: evaluator,
		suggester: suggester,
		debounce:  opts.Debounce,
		sugLimit:  opts.SuggestionLimit,
		updates:   make(chan Update, 1),
	}
}

// Updates returns the stream of published snapshots. The buffer holds
// only the newest unread update; slow readers never see stale state.
func (c *Controller) Updates() <-chan Update {
	return c.updates
}

// Query returns the current query text, which always reflects the
// latest keystroke even while a debounce window is open.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetQuery stores the text immediately and (re)starts the debounce
// timer. Only the last call within the window triggers an evaluation.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.query = text
	gen := c.bump()
	c.timer = time.AfterFunc(c.debounce, func() {
		c.evaluate(gen)
	})
}

// SetMode switches the matching strategy and re-evaluates immediately.
// Discrete option changes are deliberate user choices, not keystrokes,
// so they skip the debounce.
func (c *Controller) SetMode(mode search.Mode) {
	c.setOption(func() { c.mode = mode })
}

// SetField switches the field scope and re-evaluates immediately.
func (c *Controller) SetField(field search.Field) {
	c.setOption(func() { c.field = field })
}

// SetFilters replaces the filter set and re-evaluates immediately.
// Mutual exclusion of the government flags is enforced here.
func (c *Controller) SetFilters(filters search.FilterSet) {
	c.setOption(func() { c.filters = filters.Normalized() })
}

// SetGovernmentOnly toggles the government restriction, clearing the
// opposite flag when enabled.
func (c *Controller) SetGovernmentOnly(on bool) {
	c.setOption(func() {
		c.filters.GovernmentOnly = on
		if on {
			c.filters.NonGovernmentOnly = false
		}
	})
}

// SetNonGovernmentOnly toggles the non-government restriction, clearing
// the opposite flag when enabled.
func (c *Controller) SetNonGovernmentOnly(on bool) {
	c.setOption(func() {
		c.filters.NonGovernmentOnly = on
		if on {
			c.filters.GovernmentOnly = false
		}
	})
}

func (c *Controller) setOption(apply func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	apply()
	gen := c.bump()
	c.mu.Unlock()
	c.evaluate(gen)
}

// Clear resets the query, drops any pending or in-flight work, and
// synchronously republishes the filter-only record set with nil stats —
// the explicit "no query yet" signal.
func (c *Controller) Clear() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query = ""
	gen := c.bump()
	filters := c.filters
	mode, field := c.mode, c.field
	c.mu.Unlock()

	results, _ := c.evaluator.Evaluate("", mode, field, filters)
	c.publish(gen, Update{Results: results})
}

// Close stops the timer and closes the update stream. Any still-running
// evaluation is dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.bump()
	close(c.updates)
}

// bump invalidates all outstanding work and cancels the pending timer.
// Caller must hold the lock.
func (c *Controller) bump() uint64 {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	return c.gen
}

// evaluate runs the query evaluation and the suggestion generation
// concurrently, then publishes if gen is still current.
func (c *Controller) evaluate(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	query, mode, field, filters := c.query, c.mode, c.field, c.filters
	c.mu.Unlock()

	var (
		results     []search.Result
		stats       search.Stats
		suggestions []suggest.Suggestion
		wg          sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results, stats = c.evaluator.Evaluate(query, mode, field, filters)
	}()
	go func() {
		defer wg.Done()
		suggestions = c.suggester.Suggest(query, c.sugLimit)
	}()
	wg.Wait()

	c.publish(gen, Update{
		Query:       query,
		Results:     results,
		Stats:       &stats,
		Suggestions: suggestions,
	})
}

// publish delivers an update unless it was superseded. Publishing
// replaces an unread update rather than queueing behind it.
func (c *Controller) publish(gen uint64, u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if gen != c.gen {
		log.Debugf("Dropping stale results for %q (gen %d < %d)", u.Query, gen, c.gen)
		return
	}
	select {
	case c.updates <- u:
	default:
		select {
		case <-c.updates:
		default:
		}
		c.updates <- u
	}
}
