/*
Package server implements msgpack IPC for donor catalog search.

The server provides a minimal request/response interface over
stdin/stdout for editor and UI frontends. Messages are binary msgpack
with compact field tags; each carries an ID the response echoes back,
so clients can multiplex and discard answers to superseded requests.

A search request selects a matching strategy, a field scope and a
filter set:

	{"id": "req_001", "op": "search", "q": "unicef", "m": "fuzzy", "f": "all", "l": 20}

The server answers with ranked results, highlight markup and timing:

	{"id": "req_001", "r": [{"n": "UNICEF", "cd": "UN03", ...}], "c": 1, "t": 182}

An empty query is valid and returns the filtered catalog — the
browse-all behavior. Unknown modes and fields normalize to defaults
rather than erroring; only oversized queries and unknown ops are
rejected, as typed error responses.

Requests are processed synchronously. Debouncing and stale-result
suppression live in the session package, client-side of this protocol.
*/
package server

// Request is the envelope for every client message. Op selects the
// operation: "search", "suggest" or "ping".
type Request struct {
	ID     string   `msgpack:"id"`
	Op     string   `msgpack:"op"`
	Query  string   `msgpack:"q,omitempty"`
	Mode   string   `msgpack:"m,omitempty"`
	Field  string   `msgpack:"f,omitempty"`
	Gov    bool     `msgpack:"gov,omitempty"`
	NonGov bool     `msgpack:"ngov,omitempty"`
	Types  []string `msgpack:"ct,omitempty"`
	Limit  int      `msgpack:"l,omitempty"`
}

// ResponseResult is one ranked catalog match.
type ResponseResult struct {
	Name     string  `msgpack:"n"`
	Code     string  `msgpack:"cd"`
	TypeCode string  `msgpack:"tc,omitempty"`
	TypeName string  `msgpack:"tn,omitempty"`
	Score    float64 `msgpack:"sc,omitempty"`
	Rank     uint16  `msgpack:"r"`
	// Highlighted copies of the fields, matched spans wrapped in the
	// configured marker. Equal to the plain field when nothing matched
	// a sub-span.
	HighlightedName string `msgpack:"hn,omitempty"`
	HighlightedCode string `msgpack:"hc,omitempty"`
}

// ResponseSuggestion is one autosuggestion candidate.
type ResponseSuggestion struct {
	Text string `msgpack:"s"`
	Kind string `msgpack:"k"`
}

// SearchResponse answers a search request. TimeTaken is microseconds.
type SearchResponse struct {
	ID          string               `msgpack:"id"`
	Results     []ResponseResult     `msgpack:"r"`
	Suggestions []ResponseSuggestion `msgpack:"sg,omitempty"`
	Count       int                  `msgpack:"c"`
	TimeTaken   int64                `msgpack:"t"`
	Mode        string               `msgpack:"m"`
	Query       string               `msgpack:"q"`
}

// SuggestResponse answers a suggest-only request.
type SuggestResponse struct {
	ID          string               `msgpack:"id"`
	Suggestions []ResponseSuggestion `msgpack:"sg"`
	Count       int                  `msgpack:"c"`
}

// StatusResponse reports server liveness.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for failed requests.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
