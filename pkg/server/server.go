package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/revindex/internal/logger"
	"github.com/bastiangx/revindex/internal/utils"
	"github.com/bastiangx/revindex/pkg/completion"
	"github.com/bastiangx/revindex/pkg/config"
	"github.com/bastiangx/revindex/pkg/document"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrUnknownOp is returned for an op the server does not know.
	ErrUnknownOp = errors.New("unknown op")
	// ErrBadRequest marks requests that fail validation.
	ErrBadRequest = errors.New("bad request")
)

// Server handles the IPC for word completion and document search.
type Server struct {
	mu     sync.RWMutex
	words  *completion.WordIndex
	docs   *document.Index[document.Document]
	config *config.Config

	// appended since the last rebuild
	pendingWords int
	pendingDocs  int

	decoder *msgpack.Decoder
	encoder *msgpack.Encoder
	writer  *bufio.Writer
	logger  *log.Logger
}

// NewServer creates a server reading requests from r and writing
// responses to w. Nil indexes are replaced by empty ones.
func NewServer(words *completion.WordIndex, docs *document.Index[document.Document], cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if words == nil {
		words = completion.NewWordIndex(nil)
	}
	if docs == nil {
		docs = document.New[document.Document](nil)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	words.EnableCache(cfg.Server.CacheSize)

	bw := bufio.NewWriter(w)
	return &Server{
		words:   words,
		docs:    docs,
		config:  cfg,
		decoder: msgpack.NewDecoder(bufio.NewReader(r)),
		encoder: msgpack.NewEncoder(bw),
		writer:  bw,
		logger:  logger.New("server"),
	}
}

// Start signals readiness and then serves requests until the input is
// closed. A clean EOF is not an error.
func (s *Server) Start() error {
	s.logger.Debug("Starting server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Input closed, stopping server")
				return nil
			}
			return fmt.Errorf("reading request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Errorf("Unmarshaling request: %v", err)
			if err := s.send(ErrorResponse{Error: "invalid msgpack request", Code: 400}); err != nil {
				return err
			}
			continue
		}

		resp, err := s.Handle(req)
		if err != nil {
			resp = errorResponse(req.ID, err)
		}
		if err := s.send(resp); err != nil {
			return err
		}
	}
}

// Handle runs a single request and returns the response to send.
func (s *Server) Handle(req Request) (any, error) {
	op := req.Op
	if op == "" && req.Prefix != "" {
		op = OpComplete
	}

	switch op {
	case OpComplete:
		return s.handleComplete(req)
	case OpSearch:
		return s.handleSearch(req)
	case OpAdd:
		return s.handleAdd(req)
	case OpReindex:
		return s.handleReindex(req)
	case OpStats:
		return s.handleStats(req), nil
	case OpHealth:
		return StatusResponse{ID: req.ID, Status: "ok"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}
}

func (s *Server) handleComplete(req Request) (CompletionResponse, error) {
	prefix := req.Prefix
	if prefix == "" {
		return CompletionResponse{}, fmt.Errorf("%w: missing prefix", ErrBadRequest)
	}
	if utf8.RuneCountInString(prefix) > s.config.Server.MaxPrefix {
		return CompletionResponse{}, fmt.Errorf("%w: prefix exceeds maximum length of %d", ErrBadRequest, s.config.Server.MaxPrefix)
	}
	limit := s.limit(req.Limit)

	start := time.Now()
	s.mu.RLock()
	suggestions := s.words.Complete(prefix, limit)
	s.mu.RUnlock()
	elapsed := time.Since(start)

	ranks := utils.CreateRankList(len(suggestions))
	out := make([]CompletionSuggestion, len(suggestions))
	for i, sg := range suggestions {
		out[i] = CompletionSuggestion{Word: sg.Word, Rank: ranks[i]}
	}
	s.logger.Debugf("Completed '%s' in %v: %d suggestions", prefix, elapsed, len(out))

	return CompletionResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		TimeTaken:   elapsed.Microseconds(),
	}, nil
}

func (s *Server) handleSearch(req Request) (SearchResponse, error) {
	if req.Query == "" {
		return SearchResponse{}, fmt.Errorf("%w: missing query", ErrBadRequest)
	}
	if utf8.RuneCountInString(req.Query) > s.config.Server.MaxQuery {
		return SearchResponse{}, fmt.Errorf("%w: query exceeds maximum length of %d", ErrBadRequest, s.config.Server.MaxQuery)
	}
	limit := s.limit(req.Limit)
	window := min(max(req.Context, 0), s.config.Server.MaxContext)

	start := time.Now()
	s.mu.RLock()
	hits := s.docs.Hits(req.Query, limit)
	results := make([]SearchResult, len(hits))
	for i, h := range hits {
		nav := s.docs.Navigator(h.Position)
		neighbours, at := nav.Window(window, window)
		results[i] = SearchResult{
			Document: nav.Current(),
			Position: h.Position,
			Matches:  h.Count,
			Before:   neighbours[:at],
			After:    neighbours[at+1:],
		}
	}
	s.mu.RUnlock()
	elapsed := time.Since(start)

	return SearchResponse{
		ID:        req.ID,
		Results:   results,
		Count:     len(results),
		TimeTaken: elapsed.Microseconds(),
	}, nil
}

func (s *Server) handleAdd(req Request) (MutationResponse, error) {
	if len(req.Words) == 0 && len(req.Docs) == 0 {
		return MutationResponse{}, fmt.Errorf("%w: nothing to add", ErrBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range req.Words {
		if w == "" {
			continue
		}
		s.words.AddWord(w)
		s.pendingWords++
	}
	for _, d := range req.Docs {
		s.docs.AddDocument(d)
		s.pendingDocs++
	}

	reindexed := false
	if after := s.config.Index.ReindexAfter; after > 0 && s.pendingWords+s.pendingDocs >= after {
		s.logger.Debugf("Pending items reached %d, rebuilding", after)
		s.reindexLocked(nil, nil)
		reindexed = true
	}
	return s.mutationResponse(req.ID, reindexed), nil
}

func (s *Server) handleReindex(req Request) (MutationResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reindexLocked(req.Words, req.Docs)
	return s.mutationResponse(req.ID, true), nil
}

// reindexLocked expects s.mu to be held for writing.
func (s *Server) reindexLocked(words []string, docs []document.Document) {
	start := time.Now()
	s.words.MergeDedupReindex(words)
	s.docs.MergeDedupReindex(docs)
	s.pendingWords, s.pendingDocs = 0, 0
	s.logger.Debugf("Reindexed in %v: words=[%d] documents=[%d]", time.Since(start), s.words.Stats()["totalWords"], s.docs.Len())
}

// mutationResponse expects s.mu to be held.
func (s *Server) mutationResponse(id string, reindexed bool) MutationResponse {
	return MutationResponse{
		ID:        id,
		Status:    "ok",
		Words:     s.words.Stats()["totalWords"],
		Documents: s.docs.Len(),
		Reindexed: reindexed,
	}
}

func (s *Server) handleStats(req Request) StatsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.words.Stats()
	for k, v := range s.docs.Stats() {
		stats[k] = v
	}
	stats["pendingWords"] = s.pendingWords
	stats["pendingDocuments"] = s.pendingDocs
	return StatsResponse{ID: req.ID, Stats: stats}
}

// limit applies the configured default and cap.
func (s *Server) limit(requested int) int {
	if requested < 1 {
		return s.config.Server.DefaultLimit
	}
	return min(requested, s.config.Server.MaxLimit)
}

func (s *Server) send(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Marshaling response: %v", err)
		return fmt.Errorf("writing response: %w", err)
	}
	return s.writer.Flush()
}

func errorResponse(id string, err error) ErrorResponse {
	code := 500
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrUnknownOp) {
		code = 400
	}
	return ErrorResponse{ID: id, Error: err.Error(), Code: code}
}
