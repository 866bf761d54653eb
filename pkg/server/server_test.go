package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/revindex/pkg/completion"
	"github.com/bastiangx/revindex/pkg/config"
	"github.com/bastiangx/revindex/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestServer(cfg *config.Config) *Server {
	words := completion.NewWordIndex([]string{"apple", "apply", "ape", "banana"})
	docs := document.New([]document.Document{
		{Name: "a", Content: "the quick brown fox"},
		{Name: "b", Content: "the lazy dog"},
		{Name: "c", Content: "quick brown dogs"},
		{Name: "d", Content: "brown fox brown fox"},
	})
	return NewServer(words, docs, cfg, nil, &bytes.Buffer{})
}

// roundTrip feeds requests through Start and returns a decoder over the
// output, positioned after the ready signal.
func roundTrip(t *testing.T, cfg *config.Config, requests ...any) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}

	words := completion.NewWordIndex([]string{"apple", "apply", "ape"})
	docs := document.New([]document.Document{
		{Name: "a", Content: "red apple"},
		{Name: "b", Content: "green apple pie"},
	})
	srv := NewServer(words, docs, cfg, &in, &out)
	require.NoError(t, srv.Start())

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	return dec
}

func TestHandleComplete(t *testing.T) {
	srv := newTestServer(nil)

	resp, err := srv.Handle(Request{ID: "1", Op: OpComplete, Prefix: "ap", Limit: 2})

	require.NoError(t, err)
	cr := resp.(CompletionResponse)
	assert.Equal(t, "1", cr.ID)
	assert.Equal(t, 2, cr.Count)
	assert.Equal(t, []CompletionSuggestion{{Word: "apple", Rank: 1}, {Word: "apply", Rank: 2}}, cr.Suggestions)
}

func TestHandleCompleteShortForm(t *testing.T) {
	srv := newTestServer(nil)

	resp, err := srv.Handle(Request{ID: "1", Prefix: "ban"})

	require.NoError(t, err)
	assert.Equal(t, []CompletionSuggestion{{Word: "banana", Rank: 1}}, resp.(CompletionResponse).Suggestions)
}

func TestHandleCompleteValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxPrefix = 3
	srv := newTestServer(cfg)

	_, err := srv.Handle(Request{ID: "1", Op: OpComplete})
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = srv.Handle(Request{ID: "1", Op: OpComplete, Prefix: "appl"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestHandleCompleteCapsLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxLimit = 1
	srv := newTestServer(cfg)

	resp, err := srv.Handle(Request{ID: "1", Prefix: "ap", Limit: 50})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.(CompletionResponse).Count)
}

func TestHandleSearch(t *testing.T) {
	srv := newTestServer(nil)

	resp, err := srv.Handle(Request{ID: "s", Op: OpSearch, Query: "brown fox", Limit: 3})

	require.NoError(t, err)
	sr := resp.(SearchResponse)
	require.Equal(t, 3, sr.Count)
	assert.Equal(t, 0, sr.Results[0].Position)
	assert.Equal(t, 2, sr.Results[0].Matches)
	assert.Equal(t, 3, sr.Results[1].Position)
	assert.Equal(t, 2, sr.Results[1].Matches)
	assert.Equal(t, 2, sr.Results[2].Position)
	assert.Equal(t, 1, sr.Results[2].Matches)
	assert.Empty(t, sr.Results[0].Before)
	assert.Empty(t, sr.Results[0].After)
}

func TestHandleSearchContext(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxContext = 1
	srv := newTestServer(cfg)

	resp, err := srv.Handle(Request{ID: "s", Op: OpSearch, Query: "lazy", Context: 3})

	require.NoError(t, err)
	res := resp.(SearchResponse).Results
	require.Len(t, res, 1)
	assert.Equal(t, "b", res[0].Document.Name)
	assert.Equal(t, []document.Document{{Name: "a", Content: "the quick brown fox"}}, res[0].Before)
	assert.Equal(t, []document.Document{{Name: "c", Content: "quick brown dogs"}}, res[0].After)
}

func TestHandleSearchMissingQuery(t *testing.T) {
	srv := newTestServer(nil)

	_, err := srv.Handle(Request{ID: "s", Op: OpSearch})

	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestHandleAddAndReindex(t *testing.T) {
	srv := newTestServer(nil)

	resp, err := srv.Handle(Request{ID: "a", Op: OpAdd, Words: []string{"apricot", "apple"}})
	require.NoError(t, err)
	mr := resp.(MutationResponse)
	assert.Equal(t, 6, mr.Words)
	assert.False(t, mr.Reindexed)

	got, err := srv.Handle(Request{ID: "c", Prefix: "apr"})
	require.NoError(t, err)
	assert.Equal(t, "apricot", got.(CompletionResponse).Suggestions[0].Word)

	resp, err = srv.Handle(Request{ID: "r", Op: OpReindex})
	require.NoError(t, err)
	mr = resp.(MutationResponse)
	assert.True(t, mr.Reindexed)
	assert.Equal(t, 5, mr.Words)
	assert.Equal(t, 4, mr.Documents)

	got, err = srv.Handle(Request{ID: "c", Prefix: "ap"})
	require.NoError(t, err)
	words := make([]string, 0)
	for _, s := range got.(CompletionResponse).Suggestions {
		words = append(words, s.Word)
	}
	assert.Equal(t, []string{"ape", "apple", "apply", "apricot"}, words)
}

func TestHandleAddDocuments(t *testing.T) {
	srv := newTestServer(nil)

	_, err := srv.Handle(Request{ID: "a", Op: OpAdd, Docs: []document.Document{{Name: "e", Content: "lazy cat"}}})
	require.NoError(t, err)

	resp, err := srv.Handle(Request{ID: "s", Op: OpSearch, Query: "lazy"})
	require.NoError(t, err)
	res := resp.(SearchResponse).Results
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Document.Name)
	assert.Equal(t, "e", res[1].Document.Name)
}

func TestHandleAddTriggersReindex(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Index.ReindexAfter = 2
	srv := newTestServer(cfg)

	resp, err := srv.Handle(Request{ID: "a", Op: OpAdd, Words: []string{"apple"}})
	require.NoError(t, err)
	assert.False(t, resp.(MutationResponse).Reindexed)

	resp, err = srv.Handle(Request{ID: "b", Op: OpAdd, Words: []string{"banana"}})
	require.NoError(t, err)
	mr := resp.(MutationResponse)
	assert.True(t, mr.Reindexed)
	assert.Equal(t, 4, mr.Words)

	stats := srv.handleStats(Request{ID: "st"}).Stats
	assert.Equal(t, 0, stats["pendingWords"])
}

func TestHandleAddNothing(t *testing.T) {
	srv := newTestServer(nil)

	_, err := srv.Handle(Request{ID: "a", Op: OpAdd})

	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestHandleStats(t *testing.T) {
	srv := newTestServer(nil)

	resp, err := srv.Handle(Request{ID: "st", Op: OpStats})

	require.NoError(t, err)
	stats := resp.(StatsResponse).Stats
	assert.Equal(t, 4, stats["totalWords"])
	assert.Equal(t, 4, stats["totalDocuments"])
	assert.Contains(t, stats, "totalKeys")
	assert.Contains(t, stats, "totalTerms")
}

func TestHandleUnknownOp(t *testing.T) {
	srv := newTestServer(nil)

	_, err := srv.Handle(Request{ID: "x", Op: "explode"})

	assert.ErrorIs(t, err, ErrUnknownOp)
	assert.Equal(t, 400, errorResponse("x", err).Code)
}

func TestStartStream(t *testing.T) {
	dec := roundTrip(t, nil,
		Request{ID: "1", Op: OpHealth},
		Request{ID: "2", Prefix: "app"},
		Request{ID: "3", Op: OpSearch, Query: "apple pie"},
		Request{ID: "4", Op: "nope"},
	)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, StatusResponse{ID: "1", Status: "ok"}, health)

	var comp CompletionResponse
	require.NoError(t, dec.Decode(&comp))
	assert.Equal(t, "2", comp.ID)
	assert.Equal(t, 2, comp.Count)

	var search SearchResponse
	require.NoError(t, dec.Decode(&search))
	require.Equal(t, 2, search.Count)
	assert.Equal(t, "b", search.Results[0].Document.Name)
	assert.Equal(t, 2, search.Results[0].Matches)

	var failed ErrorResponse
	require.NoError(t, dec.Decode(&failed))
	assert.Equal(t, "4", failed.ID)
	assert.Equal(t, 400, failed.Code)
}

func TestStartRejectsNonMap(t *testing.T) {
	dec := roundTrip(t, nil, 42, Request{ID: "after", Op: OpHealth})

	var failed ErrorResponse
	require.NoError(t, dec.Decode(&failed))
	assert.Equal(t, 400, failed.Code)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, "after", health.ID)
}
