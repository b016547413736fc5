package server

import (
	"fmt"
	"io"
	"os"

	"github.com/avoss/donorserve/internal/utils"
	"github.com/avoss/donorserve/pkg/config"
	"github.com/avoss/donorserve/pkg/search"
	"github.com/avoss/donorserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for catalog search.
type Server struct {
	evaluator *search.Evaluator
	suggester *suggest.Suggester
	cfg       *config.Config
	dec       *msgpack.Decoder
	enc       *msgpack.Encoder
	requests  int
}

// NewServer creates a search server using stdin/stdout for IPC.
func NewServer(evaluator *search.Evaluator, suggester *suggest.Suggester, cfg *config.Config) *Server {
	return NewServerIO(evaluator, suggester, cfg, os.Stdin, os.Stdout)
}

// NewServerIO creates a server over explicit streams. Used by tests and
// by the example client.
func NewServerIO(evaluator *search.Evaluator, suggester *suggest.Suggester, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		evaluator: evaluator,
		suggester: suggester,
		cfg:       cfg,
		dec:       msgpack.NewDecoder(r),
		enc:       msgpack.NewEncoder(w),
	}
}

// Start begins listening for IPC requests. It returns nil on EOF and
// the underlying error when the stream breaks.
func (s *Server) Start() error {
	log.Debug("Starting server")
	s.send(StatusResponse{Status: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	s.requests++
	switch req.Op {
	case "search":
		s.handleSearch(req)
	case "suggest":
		s.handleSuggest(req)
	case "ping":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown op: %s", req.Op), 400)
	}
}

// handleSearch runs one synchronous evaluation. An empty query is the
// browse-all case and is allowed through; only oversized input is
// rejected.
func (s *Server) handleSearch(req Request) {
	if len(req.Query) > s.cfg.Server.MaxQuery {
		s.sendError(req.ID, fmt.Sprintf("Query exceeds maximum length of %d", s.cfg.Server.MaxQuery), 400)
		log.Debugf("Query too long in request %s", req.ID)
		return
	}

	mode := search.ParseMode(req.Mode)
	field := search.ParseField(req.Field)
	filters := search.FilterSet{
		GovernmentOnly:    req.Gov,
		NonGovernmentOnly: req.NonGov,
		Types:             req.Types,
	}

	results, stats := s.evaluator.Evaluate(req.Query, mode, field, filters)

	limit := req.Limit
	if limit < 1 {
		limit = s.cfg.Server.DefaultLimit
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	s.send(SearchResponse{
		ID:          req.ID,
		Results:     s.renderResults(results, mode),
		Suggestions: s.renderSuggestions(req.Query),
		Count:       stats.TotalResults,
		TimeTaken:   stats.Duration.Microseconds(),
		Mode:        stats.Mode.String(),
		Query:       stats.Query,
	})
}

func (s *Server) handleSuggest(req Request) {
	suggestions := s.renderSuggestions(req.Query)
	s.send(SuggestResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
	})
}

// renderResults flattens scored results into wire entries. Binary
// match modes carry no meaningful score, so it is omitted for them.
func (s *Server) renderResults(results []search.Result, mode search.Mode) []ResponseResult {
	marker := s.cfg.Search.HighlightMarker
	ranks := utils.CreateRankList(len(results))

	out := make([]ResponseResult, len(results))
	for i, res := range results {
		entry := ResponseResult{
			Name:     res.Record.Name,
			Code:     res.Record.Code,
			TypeCode: res.Record.TypeCode,
			TypeName: res.Record.Type.Name,
			Rank:     ranks[i],
		}
		if mode == search.ModeFuzzy {
			entry.Score = res.Score
		}
		if len(res.NameSpans) > 0 {
			entry.HighlightedName = search.Highlight(res.Record.Name, res.NameSpans, marker)
		}
		if len(res.CodeSpans) > 0 {
			entry.HighlightedCode = search.Highlight(res.Record.Code, res.CodeSpans, marker)
		}
		out[i] = entry
	}
	return out
}

func (s *Server) renderSuggestions(query string) []ResponseSuggestion {
	suggestions := s.suggester.Suggest(query, s.cfg.Search.SuggestionLimit)
	if len(suggestions) == 0 {
		return nil
	}
	out := make([]ResponseSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = ResponseSuggestion{Text: sg.Text, Kind: string(sg.Kind)}
	}
	return out
}

func (s *Server) send(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
