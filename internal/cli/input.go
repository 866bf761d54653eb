// Package cli handles cmd line input for trying completions and searches
// interactively.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bastiangx/revindex/internal/logger"
	"github.com/bastiangx/revindex/internal/utils"
	"github.com/bastiangx/revindex/pkg/completion"
	"github.com/bastiangx/revindex/pkg/document"
	"github.com/charmbracelet/log"
)

const (
	searchMarker = '?'
	appendMarker = '+'
	previewWidth = 60
)

// InputHandler reads lines and answers each one. A plain line is
// completed as a prefix, "?words" searches the documents and "+word"
// appends a word to the vocabulary.
type InputHandler struct {
	completer       completion.Completer
	docs            *document.Index[document.Document]
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	contextSize     int
	noFilter        bool
	out             *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters.
// docs may be nil, in which case searches report that no documents are loaded.
func NewInputHandler(completer completion.Completer, docs *document.Index[document.Document], minLength, maxLength, limit, context int, noFilter bool) *InputHandler {
	return &InputHandler{
		completer:       completer,
		docs:            docs,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		contextSize:     context,
		noFilter:        noFilter,
		out:             logger.NewTo(os.Stdout, ""),
	}
}

// SetOutput redirects everything the handler prints.
func (h *InputHandler) SetOutput(w io.Writer) {
	h.out.SetOutput(w)
}

// Start runs the prompt loop over r until it is exhausted.
func (h *InputHandler) Start(r io.Reader) error {
	stats := h.completer.Stats()
	h.out.Print("revindex CLI")
	h.out.Printf("%s words loaded", utils.FormatWithCommas(stats["totalWords"]))
	if h.docs != nil {
		h.out.Printf("%s documents loaded", utils.FormatWithCommas(h.docs.Len()))
	}
	h.out.Print("type a prefix, ?words to search, +word to add (Ctrl+C to exit):")

	scanner := bufio.NewScanner(r)
	for {
		h.out.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

func (h *InputHandler) handleInput(line string) {
	switch line[0] {
	case searchMarker:
		h.handleSearch(strings.TrimSpace(line[1:]))
	case appendMarker:
		h.handleAppend(strings.TrimSpace(line[1:]))
	default:
		h.handleComplete(line)
	}
}

// handleComplete validates the prefix's length and content, then asks
// the completer for suggestions.
func (h *InputHandler) handleComplete(prefix string) {
	if len(prefix) < h.minPrefixLength {
		h.out.Errorf("Prefix too short: %s", prefix)
		return
	}
	if len(prefix) > h.maxPrefixLength {
		h.out.Errorf("Prefix too long: %s", prefix)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter && !utils.IsValidInput(prefix) {
		h.out.Warnf("No suggestions found for prefix: '%s' (filtered out)", prefix)
		return
	}

	start := time.Now()
	suggestions := h.completer.Complete(prefix, h.suggestLimit)
	log.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(suggestions) == 0 {
		h.out.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	h.out.Printf("Found %d suggestions for prefix '%s':", len(suggestions), prefix)
	for _, s := range suggestions {
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Word)
		if s.WasFolded {
			clWord += " (folded)"
		}
		h.out.Printf("%2d. %s", s.Rank, clWord)
	}
}

func (h *InputHandler) handleSearch(query string) {
	if h.docs == nil || h.docs.Len() == 0 {
		h.out.Warn("No documents loaded")
		return
	}
	if !h.noFilter && !utils.IsValidQuery(query) {
		h.out.Warnf("No documents found for query: '%s' (filtered out)", query)
		return
	}

	start := time.Now()
	hits := h.docs.Hits(query, h.suggestLimit)
	log.Debugf("Took [ %v ] for query '%s'", time.Since(start), query)

	if len(hits) == 0 {
		h.out.Warnf("No documents found for query: '%s'", query)
		return
	}

	h.out.Printf("Found %d documents for '%s':", len(hits), query)
	for i, hit := range hits {
		nav := h.docs.Navigator(hit.Position)
		window, at := nav.Window(h.contextSize, h.contextSize)
		h.out.Printf("%2d. [%d terms] #%d", i+1, hit.Count, hit.Position)
		for j, doc := range window {
			marker := "   "
			if j == at {
				marker = " > "
			}
			h.out.Printf("   %s%-12s %s", marker, doc.Name, utils.Truncate(doc.Content, previewWidth))
		}
	}
}

func (h *InputHandler) handleAppend(word string) {
	if word == "" || strings.ContainsFunc(word, func(r rune) bool { return r == ' ' || r == '\t' }) {
		h.out.Errorf("Cannot add '%s': expected a single word", word)
		return
	}
	h.completer.AddWord(word)
	h.out.Printf("Added '%s' (%s words)", word, utils.FormatWithCommas(h.completer.Stats()["totalWords"]))
}
