/*
Package server answers completion and search requests over a msgpack
stream, usually the stdin/stdout pipe of an editor plugin.

# IPC

Every message is a single msgpack map. Requests carry an id, echoed back
in the response, and an op naming what to do:

	{"id": "1", "op": "complete", "p": "ame", "l": 5}
	{"id": "2", "op": "search", "q": "brown fox", "l": 3, "x": 1}
	{"id": "3", "op": "add", "words": ["amend"]}
	{"id": "4", "op": "reindex"}
	{"id": "5", "op": "stats"}
	{"id": "6", "op": "health"}

A request with a prefix and no op is a completion request, so the short
form {"id": "1", "p": "ame"} works too.

Completions come back in insertion order with 1-based ranks:

	{"id": "1", "s": [{"w": "amenity", "r": 1}, {"w": "america", "r": 2}], "c": 2, "t": 145}

Search results are ranked by how many distinct query words a document
contains, then by position. With a context window x each result carries
up to x neighbouring documents on either side.

Failures are answered with {"id": ..., "e": message, "c": code}. Codes
follow HTTP: 400 for a bad request, 500 for anything else.

# Locking

Reads (complete, search, stats) share a read lock; add and reindex take
the write lock. Handle may be called from several goroutines.
*/
package server

import "github.com/bastiangx/revindex/pkg/document"

// Op names understood by the server.
const (
	OpComplete = "complete"
	OpSearch   = "search"
	OpAdd      = "add"
	OpReindex  = "reindex"
	OpStats    = "stats"
	OpHealth   = "health"
)

// Request is the envelope for every op. Only the fields the op needs
// are read.
type Request struct {
	ID      string              `msgpack:"id"`
	Op      string              `msgpack:"op,omitempty"`
	Prefix  string              `msgpack:"p,omitempty"`
	Query   string              `msgpack:"q,omitempty"`
	Limit   int                 `msgpack:"l,omitempty"`
	Context int                 `msgpack:"x,omitempty"`
	Words   []string            `msgpack:"words,omitempty"`
	Docs    []document.Document `msgpack:"docs,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word string `msgpack:"w"`
	Rank uint16 `msgpack:"r"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	TimeTaken   int64                  `msgpack:"t"`
}

// SearchResult is one ranked document plus its neighbours.
type SearchResult struct {
	Document document.Document   `msgpack:"d"`
	Position int                 `msgpack:"pos"`
	Matches  int                 `msgpack:"m"`
	Before   []document.Document `msgpack:"before,omitempty"`
	After    []document.Document `msgpack:"after,omitempty"`
}

// SearchResponse - search response
type SearchResponse struct {
	ID        string         `msgpack:"id"`
	Results   []SearchResult `msgpack:"r"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
}

// MutationResponse answers add and reindex.
type MutationResponse struct {
	ID        string `msgpack:"id"`
	Status    string `msgpack:"status"`
	Words     int    `msgpack:"words"`
	Documents int    `msgpack:"documents"`
	Reindexed bool   `msgpack:"reindexed,omitempty"`
}

// StatsResponse - totals of both indexes
type StatsResponse struct {
	ID    string         `msgpack:"id"`
	Stats map[string]int `msgpack:"stats"`
}

// StatusResponse answers health and the ready signal.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
