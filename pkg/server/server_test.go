package server

import (
	"bytes"
	"testing"

	"github.com/bastiangx/scriptserve/pkg/catalog"
	"github.com/bastiangx/scriptserve/pkg/config"
	"github.com/bastiangx/scriptserve/pkg/debounce"
	"github.com/bastiangx/scriptserve/pkg/engine"
	"github.com/bastiangx/scriptserve/pkg/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func testProvider() symbols.Provider {
	return symbols.NewStatic(symbols.Table{Namespaces: []symbols.Namespace{
		{Path: "nuke", Members: []symbols.Member{
			{Name: "createNode", Kind: symbols.KindFunction, Signature: "(node)"},
			{Name: "root", Kind: symbols.KindFunction},
			{Name: "nodes", Kind: symbols.KindModule},
		}},
		{Path: "nuke.nodes", Constructible: true, Members: []symbols.Member{
			{Name: "Blur", Kind: symbols.KindNode},
		}},
	}})
}

func newTestServer(t *testing.T, in []byte) (*Server, *bytes.Buffer, *debounce.ManualClock, *config.Store) {
	t.Helper()
	out := &bytes.Buffer{}
	clock := debounce.NewManualClock()
	store := config.NewStore(nil, "")
	p := testProvider()
	s := NewServerWithIO(store, engine.Options{
		Provider: p,
		Catalog:  catalog.New(p, catalog.Options{}),
		Clock:    clock,
	}, bytes.NewReader(in), out)
	return s, out, clock, store
}

func encodeRequests(t *testing.T, reqs ...Request) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	return buf.Bytes()
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestSessionOverStream(t *testing.T) {
	text := "import nuke\nnuke.cre"
	in := encodeRequests(t,
		Request{ID: "e1", Op: "edit", Text: text, Mode: "immediate"},
		Request{ID: "c1", Op: "complete"},
		Request{ID: "i1", Op: "info", Item: "createNode"},
		Request{ID: "a1", Op: "accept", Item: "createNode"},
		Request{ID: "s1", Op: "stats"},
	)
	s, out, _, _ := newTestServer(t, in)
	require.NoError(t, s.Start())

	dec := msgpack.NewDecoder(out)

	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)

	var shown Event
	require.NoError(t, dec.Decode(&shown))
	assert.Equal(t, "show", shown.Event)
	assert.Equal(t, "cre", shown.Anchor)
	require.NotEmpty(t, shown.Suggestions)
	assert.Equal(t, "createNode", shown.Suggestions[0].Word)
	assert.Equal(t, "function", shown.Suggestions[0].Kind)
	assert.Equal(t, "host", shown.Suggestions[0].Source)
	assert.Equal(t, []int{0, 1, 2}, shown.Suggestions[0].Matches)

	var edited StatusResponse
	require.NoError(t, dec.Decode(&edited))
	assert.Equal(t, "e1", edited.ID)

	var completed CompletionResponse
	require.NoError(t, dec.Decode(&completed))
	assert.Equal(t, "c1", completed.ID)
	assert.Equal(t, "cre", completed.Anchor)
	assert.Equal(t, len(completed.Suggestions), completed.Count)
	assert.Equal(t, "createNode", completed.Suggestions[0].Word)

	var info InfoResponse
	require.NoError(t, dec.Decode(&info))
	assert.Equal(t, "nuke.createNode(node)", info.Info)

	var accepted AcceptResponse
	require.NoError(t, dec.Decode(&accepted))
	assert.Equal(t, "import nuke\nnuke.createNode", accepted.Text)
	assert.Equal(t, 27, accepted.Cursor)

	var stats StatsResponse
	require.NoError(t, dec.Decode(&stats))
	assert.Equal(t, int64(5), stats.Requests)
	assert.Equal(t, []string{"createNode"}, stats.Recent)
	assert.Equal(t, 1, stats.Session["accepts"])
}

func TestDebouncedEditPushesEvent(t *testing.T) {
	s, out, clock, _ := newTestServer(t, nil)

	s.handleRequest(Request{ID: "e1", Op: "edit", Text: "nuke.cre"})
	s.handleRequest(Request{ID: "e2", Op: "edit", Text: "nuke.cre", Cursor: intPtr(6)})
	clock.Advance(debounce.DefaultInterval)

	dec := msgpack.NewDecoder(out)
	for _, id := range []string{"e1", "e2"} {
		var ack StatusResponse
		require.NoError(t, dec.Decode(&ack))
		assert.Equal(t, id, ack.ID)
	}

	var ev Event
	require.NoError(t, dec.Decode(&ev))
	assert.Equal(t, "show", ev.Event)
	assert.Equal(t, "cr", ev.Anchor)
	assert.Equal(t, int64(1), s.Engine().Computations())
}

func TestRequestErrors(t *testing.T) {
	testCases := []struct {
		description string
		req         Request
		code        int
	}{
		{"unknown op", Request{ID: "x", Op: "launch"}, codeBadRequest},
		{"accept without item", Request{ID: "x", Op: "accept"}, codeBadRequest},
		{"accept with nothing shown", Request{ID: "x", Op: "accept", Item: "root"}, codeConflict},
		{"info for unknown item", Request{ID: "x", Op: "info", Item: "root"}, codeNotFound},
		{"config without body", Request{ID: "x", Op: "config"}, codeBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			s, out, _, _ := newTestServer(t, nil)
			s.handleRequest(tc.req)

			var resp ErrorResponse
			require.NoError(t, msgpack.NewDecoder(out).Decode(&resp))
			assert.Equal(t, "x", resp.ID)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestConfigOp(t *testing.T) {
	s, out, _, store := newTestServer(t, nil)

	s.handleRequest(Request{ID: "f1", Op: "config", Config: &ConfigRequest{
		Fuzzy:      boolPtr(false),
		DebounceMs: intPtr(15),
	}})
	assert.False(t, store.Flags().Fuzzy)
	assert.Equal(t, 15, store.Get().Completion.DebounceMs)

	s.handleRequest(Request{ID: "f2", Op: "config", Config: &ConfigRequest{Popup: boolPtr(false)}})
	assert.False(t, store.Flags().Popup)

	dec := msgpack.NewDecoder(out)
	var first StatusResponse
	require.NoError(t, dec.Decode(&first))
	assert.Equal(t, "f1", first.ID)

	var hidden Event
	require.NoError(t, dec.Decode(&hidden))
	assert.Equal(t, "hide", hidden.Event)

	var second StatusResponse
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "f2", second.ID)
}

func TestMaxItemsLimitsWireList(t *testing.T) {
	s, out, _, store := newTestServer(t, nil)
	store.Update(func(c *config.Config) { c.Server.MaxItems = 1 })

	s.handleRequest(Request{ID: "e", Op: "edit", Text: "nuke."})
	s.handleRequest(Request{ID: "c", Op: "complete"})

	dec := msgpack.NewDecoder(out)
	var ack StatusResponse
	require.NoError(t, dec.Decode(&ack))
	var resp CompletionResponse
	require.NoError(t, dec.Decode(&resp))
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "createNode", resp.Suggestions[0].Word)
	assert.Len(t, s.Engine().Items(), 3)
}

func TestStartRejectsGarbage(t *testing.T) {
	s, out, _, _ := newTestServer(t, []byte{0xc1})
	assert.Error(t, s.Start())

	dec := msgpack.NewDecoder(out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, codeBadRequest, resp.Code)
}
