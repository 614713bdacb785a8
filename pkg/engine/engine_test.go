package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/bastiangx/scriptserve/pkg/buffer"
	"github.com/bastiangx/scriptserve/pkg/catalog"
	"github.com/bastiangx/scriptserve/pkg/config"
	"github.com/bastiangx/scriptserve/pkg/debounce"
	"github.com/bastiangx/scriptserve/pkg/suggest"
	"github.com/bastiangx/scriptserve/pkg/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	shows  [][]suggest.Item
	anchor string
	hides  int
}

func (r *recorder) Show(items []suggest.Item, anchor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows = append(r.shows, items)
	r.anchor = anchor
}

func (r *recorder) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hides++
}

func (r *recorder) last() []suggest.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shows) == 0 {
		return nil
	}
	return r.shows[len(r.shows)-1]
}

func (r *recorder) showCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shows)
}

func provider() symbols.Provider {
	return symbols.NewStatic(symbols.Table{Namespaces: []symbols.Namespace{
		{Path: "nuke", Members: []symbols.Member{
			{Name: "createNode", Kind: symbols.KindFunction, Signature: "(node)"},
			{Name: "root", Kind: symbols.KindFunction},
			{Name: "nodes", Kind: symbols.KindModule},
		}},
		{Path: "nuke.nodes", Constructible: true, Members: []symbols.Member{
			{Name: "Blur", Kind: symbols.KindNode},
			{Name: "Grade", Kind: symbols.KindNode},
		}},
	}})
}

type harness struct {
	buf   *buffer.Buffer
	rec   *recorder
	store *config.Store
	clock *debounce.ManualClock
	eng   *Engine
}

func newHarness(t *testing.T, text string) *harness {
	t.Helper()
	h := &harness{
		buf:   buffer.New(text),
		rec:   &recorder{},
		store: config.NewStore(nil, ""),
		clock: debounce.NewManualClock(),
	}
	p := provider()
	h.eng = New(h.buf, h.rec, Options{
		Provider: p,
		Catalog:  catalog.New(p, catalog.Options{}),
		Flags:    h.store,
		Clock:    h.clock,
	})
	return h
}

func itemTexts(items []suggest.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text)
	}
	return out
}

func TestImmediateShowsRankedItems(t *testing.T) {
	h := newHarness(t, "import nuke\nnuke.cre")

	h.eng.RequestCompletions(Immediate)

	items := h.rec.last()
	require.NotEmpty(t, items)
	assert.Equal(t, "createNode", items[0].Text)
	assert.Equal(t, "cre", h.rec.anchor)
	assert.True(t, h.eng.Visible())
	assert.Equal(t, "nuke.createNode(node)", h.eng.OnCandidateHighlighted(items[0]))
}

func TestCommentHides(t *testing.T) {
	h := newHarness(t, "import nuke\nx = 1  # nuke.cre")

	h.eng.RequestCompletions(Immediate)

	assert.Equal(t, 0, h.rec.showCount())
	assert.Equal(t, 1, h.rec.hides)
	assert.False(t, h.eng.Visible())
}

func TestAcceptReplacesActivePrefix(t *testing.T) {
	h := newHarness(t, "import nuke\nn = nuke.cre")
	h.eng.RequestCompletions(Immediate)
	require.NotEmpty(t, h.rec.last())

	h.eng.Accept("createNode")

	assert.Equal(t, "import nuke\nn = nuke.createNode", h.buf.Text())
	assert.Equal(t, []string{"createNode"}, h.eng.Session().Recent())
	assert.Equal(t, 1, h.eng.Session().Usage("createNode"))
	assert.False(t, h.eng.Visible())
	prefix, _, active := h.eng.Session().Active()
	assert.False(t, active)
	assert.Empty(t, prefix)
}

func TestAcceptedNameGainsRecencyBoost(t *testing.T) {
	h := newHarness(t, "import nuke\nnuke.r")
	h.eng.RequestCompletions(Immediate)
	before := h.rec.last()
	var baseline int
	for _, it := range before {
		if it.Text == "root" {
			baseline = it.Score
		}
	}
	require.NotZero(t, baseline)

	h.eng.Accept("root")
	h.buf.SetText("import nuke\nnuke.r", len([]rune("import nuke\nnuke.r")))
	h.eng.RequestCompletions(Immediate)

	for _, it := range h.rec.last() {
		if it.Text == "root" {
			assert.Equal(t, baseline+suggest.RecencyBoost, it.Score)
		}
	}
}

func TestDebouncedBurstComputesOnce(t *testing.T) {
	h := newHarness(t, "")
	for _, r := range "nuke.cre" {
		h.buf.Insert(string(r))
		h.eng.RequestCompletions(Debounced)
		h.clock.Advance(10 * time.Millisecond)
	}
	assert.Equal(t, 0, h.rec.showCount())

	h.clock.Advance(debounce.DefaultInterval)

	assert.Equal(t, int64(1), h.eng.Computations())
	require.Equal(t, 1, h.rec.showCount())
	assert.Equal(t, "cre", h.rec.anchor)
}

func TestHideCancelsPending(t *testing.T) {
	h := newHarness(t, "nuke.cre")
	h.eng.RequestCompletions(Debounced)
	h.eng.Hide()
	h.clock.Advance(time.Second)

	assert.Equal(t, int64(0), h.eng.Computations())
	assert.Equal(t, 0, h.rec.showCount())
}

func TestFlagsOffHide(t *testing.T) {
	h := newHarness(t, "nuke.cre")
	h.store.Update(func(c *config.Config) { c.Completion.Popup = false })

	h.eng.RequestCompletions(Debounced)
	h.clock.Advance(time.Second)
	h.eng.RequestCompletions(Immediate)

	assert.Equal(t, 0, h.rec.showCount())
	assert.Equal(t, 2, h.rec.hides)
}

func TestSelectionHides(t *testing.T) {
	h := newHarness(t, "nuke.cre")
	h.buf.Select(0, 8)
	h.eng.RequestCompletions(Immediate)
	assert.Equal(t, 0, h.rec.showCount())
}

func TestBlankDocumentHides(t *testing.T) {
	h := newHarness(t, "   ")
	h.eng.RequestCompletions(Immediate)
	assert.Equal(t, 0, h.rec.showCount())
}

func TestStringContexts(t *testing.T) {
	h := newHarness(t, `print("nuke.cre`)
	h.eng.RequestCompletions(Immediate)
	assert.Equal(t, 0, h.rec.showCount())

	h.buf.SetText(`nuke.createNode("Bl`, 19)
	h.eng.RequestCompletions(Immediate)
	items := h.rec.last()
	require.Len(t, items, 1)
	assert.Equal(t, "Blur", items[0].Text)
	assert.Equal(t, symbols.KindNode, items[0].Kind)

	h.eng.Accept("Blur")
	assert.Equal(t, `nuke.createNode("Blur`, h.buf.Text())
}

func TestCatalogFlagGatesEntities(t *testing.T) {
	h := newHarness(t, "nuke.nodes.")
	h.store.Update(func(c *config.Config) { c.Completion.Catalog = false })
	h.eng.RequestCompletions(Immediate)
	assert.Equal(t, 0, h.rec.showCount())

	h.store.Update(func(c *config.Config) { c.Completion.Catalog = true })
	h.eng.RequestCompletions(Immediate)
	assert.Equal(t, []string{"Blur", "Grade"}, itemTexts(h.rec.last()))
	assert.NoError(t, h.eng.RefreshCatalog())
}

func TestMiddleOfTokenHides(t *testing.T) {
	h := newHarness(t, "createNode")
	h.buf.SetCursor(3)
	h.eng.RequestCompletions(Immediate)
	assert.Equal(t, 0, h.rec.showCount())
	assert.Nil(t, h.eng.Items())
}

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

// heldClock never fires on its own; the test runs the latest callback.
type heldClock struct {
	mu sync.Mutex
	fn func()
}

func (c *heldClock) AfterFunc(_ time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = f
	return heldTimer{}
}

func (c *heldClock) latest() func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fn
}

func TestFiredComputationYieldsToHideAndAccept(t *testing.T) {
	testCases := []struct {
		description string
		interrupt   func(e *Engine)
		wantText    string
	}{
		{"hide", func(e *Engine) { e.hideLocked() }, "import nuke\nnuke.cre"},
		{"accept", func(e *Engine) { e.acceptLocked("createNode") }, "import nuke\nnuke.createNode"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			buf := buffer.New("import nuke\nnuke.cre")
			rec := &recorder{}
			clock := &heldClock{}
			p := provider()
			e := New(buf, rec, Options{Provider: p, Catalog: catalog.New(p, catalog.Options{}), Clock: clock})

			e.RequestCompletions(Immediate)
			require.Equal(t, 1, rec.showCount())
			e.RequestCompletions(Debounced)
			fn := clock.latest()
			require.NotNil(t, fn)

			// the timer fires while a caller holds the engine
			e.mu.Lock()
			done := make(chan struct{})
			go func() {
				fn()
				close(done)
			}()
			require.Eventually(t, func() bool {
				return e.scheduler.State() == debounce.Computing
			}, time.Second, time.Millisecond)
			tc.interrupt(e)
			e.mu.Unlock()
			<-done

			assert.Equal(t, 1, rec.showCount())
			assert.False(t, e.Visible())
			assert.Nil(t, e.Items())
			assert.Equal(t, tc.wantText, buf.Text())
			assert.Equal(t, debounce.Idle, e.scheduler.State())
		})
	}
}
