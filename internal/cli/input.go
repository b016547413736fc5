// Package cli handles cmd line input for DBG and testing of the search
// engine: it drives a live session from stdin lines and renders the
// published results with highlights and timing.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/avoss/donorserve/internal/utils"
	"github.com/avoss/donorserve/pkg/match"
	"github.com/avoss/donorserve/pkg/search"
	"github.com/avoss/donorserve/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// InputHandler processes user input from stdin, running each line as a
// query through the session controller and printing whatever the
// controller publishes. Colon-prefixed lines switch options.
type InputHandler struct {
	controller *session.Controller
	maxResults int
	waitFor    time.Duration
}

// NewInputHandler handles initialization of the InputHandler.
// waitFor bounds how long a single input waits for its published
// update; it has to outlast the session's debounce interval.
func NewInputHandler(controller *session.Controller, maxResults int, waitFor time.Duration) *InputHandler {
	if maxResults < 1 {
		maxResults = 20
	}
	return &InputHandler{
		controller: controller,
		maxResults: maxResults,
		waitFor:    waitFor,
	}
}

// Start begins the interface loop. It continuously prompts for input,
// reads a line from stdin and either runs it as a query or applies it
// as an option command. The loop terminates on stdin EOF.
func (h *InputHandler) Start() error {
	log.Print("DonorServe CLI")
	log.Print("type a query and press Enter (:help for options, Ctrl+C to exit):")
	reader := bufio.NewReader(os.Stdin)

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handleQuery(line)
	}
}

func (h *InputHandler) handleCommand(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		log.Print(":mode exact|partial|fuzzy|phonetic  :field all|name|code")
		log.Print(":gov  :nongov  :allfilters  :clear")
	case ":mode":
		if len(fields) < 2 {
			log.Error("Usage: :mode exact|partial|fuzzy|phonetic")
			return
		}
		h.controller.SetMode(search.ParseMode(fields[1]))
		h.awaitAndPrint()
	case ":field":
		if len(fields) < 2 {
			log.Error("Usage: :field all|name|code")
			return
		}
		h.controller.SetField(search.ParseField(fields[1]))
		h.awaitAndPrint()
	case ":gov":
		h.controller.SetGovernmentOnly(true)
		h.awaitAndPrint()
	case ":nongov":
		h.controller.SetNonGovernmentOnly(true)
		h.awaitAndPrint()
	case ":allfilters":
		h.controller.SetFilters(search.FilterSet{})
		h.awaitAndPrint()
	case ":clear":
		h.controller.Clear()
		h.awaitAndPrint()
	default:
		log.Errorf("Unknown command: %s", fields[0])
	}
}

func (h *InputHandler) handleQuery(query string) {
	h.controller.SetQuery(query)
	h.awaitAndPrint()
}

// awaitAndPrint blocks for the next published update. Rapid edits
// collapse into one publish, so there is at most one to wait for.
func (h *InputHandler) awaitAndPrint() {
	select {
	case update, ok := <-h.controller.Updates():
		if !ok {
			return
		}
		h.printUpdate(update)
	case <-time.After(h.waitFor):
		log.Warn("No results published in time")
	}
}

func (h *InputHandler) printUpdate(u session.Update) {
	if u.Stats == nil {
		log.Printf("Browsing %s records", utils.FormatWithCommas(len(u.Results)))
	} else {
		log.Printf("%s results for %q [%s] in %v",
			utils.FormatWithCommas(u.Stats.TotalResults), u.Stats.Query, u.Stats.Mode, u.Stats.Duration)
	}

	shown := u.Results
	if len(shown) > h.maxResults {
		shown = shown[:h.maxResults]
	}
	for i, res := range shown {
		name := renderSpans(res.Record.Name, res.NameSpans)
		code := renderSpans(res.Record.Code, res.CodeSpans)
		line := fmt.Sprintf("%2d. %-46s %-8s %s", i+1, name, code, dimStyle.Render(res.Record.Type.Name))
		if res.Score > 0 && res.Score < 1 {
			line += dimStyle.Render(fmt.Sprintf("  (%.2f)", res.Score))
		}
		log.Print(line)
	}
	if len(u.Results) > len(shown) {
		log.Printf("... and %d more", len(u.Results)-len(shown))
	}

	if len(u.Suggestions) > 0 {
		texts := make([]string, len(u.Suggestions))
		for i, s := range u.Suggestions {
			texts[i] = s.Text
		}
		log.Print(dimStyle.Render("suggestions: " + strings.Join(texts, ", ")))
	}
}

// renderSpans styles the matched regions of s for terminal output.
func renderSpans(s string, spans []match.Span) string {
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
		b.WriteString(matchStyle.Render(string(runes[start:end])))
		pos = end
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}
