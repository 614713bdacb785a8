/*
Package engine is the public entry point of the completion system.

An Engine sits between a text widget and a popup. Edits call
RequestCompletions, which either computes right away or arms the debounce
scheduler; a computation classifies the cursor position, builds ranked items
and hands them to the Presenter, or hides it. Accept inserts a chosen item and
records it in the session so it ranks higher next time.

All engine state is guarded by one mutex, so a debounced computation firing
on a timer goroutine never interleaves with a caller's Accept or Hide.
Presenter methods are called with that mutex held and must not call back
into the engine.
*/
package engine

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/scriptserve/pkg/classify"
	"github.com/bastiangx/scriptserve/pkg/config"
	"github.com/bastiangx/scriptserve/pkg/debounce"
	"github.com/bastiangx/scriptserve/pkg/session"
	"github.com/bastiangx/scriptserve/pkg/suggest"
	"github.com/bastiangx/scriptserve/pkg/symbols"
	"github.com/charmbracelet/log"
)

// TextSource is the read side of the editor.
type TextSource interface {
	CurrentLine() string
	// CursorOffset is a rune offset into CurrentLine.
	CursorOffset() int
	FullText() string
	HasSelection() bool
	CursorInCommentOrString() (inComment, inString bool)
}

// Editor can also replace text before the cursor.
type Editor interface {
	TextSource
	ReplaceBeforeCursor(n int, text string)
}

// Presenter shows or hides the completion list.
type Presenter interface {
	Show(items []suggest.Item, anchor string)
	Hide()
}

// FlagSource supplies the feature flags, read fresh on every computation.
type FlagSource interface {
	Flags() config.Flags
}

// Catalog is the entity catalog the engine can refresh on request.
type Catalog interface {
	suggest.Catalog
	Refresh() error
}

// Mode selects how RequestCompletions schedules work.
type Mode int

const (
	Debounced Mode = iota
	Immediate
)

// Options wire an engine to its environment. Provider, Catalog, Clock and
// Flags may be nil.
type Options struct {
	Provider  symbols.Provider
	Catalog   Catalog
	Flags     FlagSource
	Clock     debounce.Clock
	Interval  time.Duration
	MaxRecent int
	Suggest   suggest.Options
	Rules     classify.Rules
}

type staticFlags config.Flags

func (f staticFlags) Flags() config.Flags { return config.Flags(f) }

// Engine is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	editor    Editor
	presenter Presenter
	flags     FlagSource
	catalog   Catalog

	classifier *classify.Classifier
	completer  *suggest.Completer
	session    *session.State
	scheduler  *debounce.Scheduler

	items   []suggest.Item
	visible bool
}

// New builds an engine for one editor.
func New(editor Editor, presenter Presenter, opts Options) *Engine {
	if opts.Flags == nil {
		opts.Flags = staticFlags(config.DefaultConfig().Flags())
	}
	if opts.Suggest.HostRoot == "" && len(opts.Suggest.Keywords) == 0 {
		opts.Suggest = suggest.DefaultOptions()
	}

	e := &Engine{
		editor:    editor,
		presenter: presenter,
		flags:     opts.Flags,
		session:   session.New(opts.MaxRecent),
	}
	if opts.Catalog != nil {
		e.catalog = opts.Catalog
	}
	if opts.Rules != nil {
		e.classifier = classify.NewWithRules(opts.Provider, opts.Rules, classify.DefaultMarker, "nuke.createNode")
	} else {
		e.classifier = classify.New(opts.Provider)
	}

	var cat suggest.Catalog
	if e.catalog != nil {
		cat = e.catalog
	}
	e.completer = suggest.NewCompleter(opts.Provider, cat, e.session, opts.Suggest)
	e.scheduler = debounce.NewWithGeneration(opts.Interval, opts.Clock, e.fire)
	return e
}

// RequestCompletions is called on every edit. Debounced requests coalesce;
// Immediate ones compute now and drop anything pending.
func (e *Engine) RequestCompletions(mode Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	flags := e.flags.Flags()
	if !flags.Completion || !flags.Popup {
		e.hideLocked()
		return
	}
	if mode == Immediate {
		e.scheduler.Cancel()
		e.computeLocked()
		return
	}
	e.scheduler.Arm()
}

// fire runs on the timer goroutine. A Hide, Accept or newer request that
// took the lock first has moved the generation on, and the run is dropped.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.scheduler.Current(gen) {
		log.Debugf("Dropped superseded computation %d", gen)
		return
	}
	e.computeLocked()
}

func (e *Engine) computeLocked() {
	flags := e.flags.Flags()
	if !flags.Completion || !flags.Popup {
		e.hideLocked()
		return
	}
	if e.editor.HasSelection() {
		e.hideLocked()
		return
	}

	prefix, ctx := e.classifier.Classify(e.editor.CurrentLine(), e.editor.CursorOffset())
	document := e.editor.FullText()
	if prefix == "" && !ctx.HasContext() || strings.TrimSpace(document) == "" {
		e.hideLocked()
		return
	}

	inComment, inString := e.editor.CursorInCommentOrString()
	if inComment {
		e.hideLocked()
		return
	}
	if inString && ctx.Kind != classify.StringLiteralArgument {
		e.hideLocked()
		return
	}

	e.session.Begin(prefix, ctx)

	items := e.completer.Complete(suggest.Request{
		Prefix:   prefix,
		Context:  ctx,
		Document: document,
		Catalog:  flags.Catalog,
		Fuzzy:    flags.Fuzzy,
	})
	if len(items) == 0 {
		e.hideLocked()
		return
	}

	e.items = items
	e.visible = true
	e.presenter.Show(items, prefix)
}

// Accept replaces the active prefix before the cursor with text, records
// the acceptance and hides the list.
func (e *Engine) Accept(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.acceptLocked(text)
}

func (e *Engine) acceptLocked(text string) {
	if text == "" {
		return
	}
	prefix, _, _ := e.session.Active()
	e.editor.ReplaceBeforeCursor(utf8.RuneCountInString(prefix), text)
	e.session.Accepted(text)
	log.Debugf("Accepted %q over %q", text, prefix)
	e.hideLocked()
}

// OnCandidateHighlighted returns the info line for item.
func (e *Engine) OnCandidateHighlighted(item suggest.Item) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if item.Info != "" {
		return item.Info
	}
	_, ctx, _ := e.session.Active()
	return e.completer.Info(item, ctx)
}

// RefreshCatalog rebuilds the entity catalog and the toolkit index.
func (e *Engine) RefreshCatalog() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completer.Toolkit().Invalidate()
	if e.catalog == nil {
		return nil
	}
	return e.catalog.Refresh()
}

// Hide clears the active state and cancels any pending computation.
func (e *Engine) Hide() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hideLocked()
}

func (e *Engine) hideLocked() {
	e.scheduler.Cancel()
	e.session.Clear()
	e.items = nil
	e.visible = false
	e.presenter.Hide()
}

// SetDebounce changes the quiet period for later requests.
func (e *Engine) SetDebounce(d time.Duration) {
	e.scheduler.SetInterval(d)
}

// Items returns the list last shown, or nil when hidden.
func (e *Engine) Items() []suggest.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.visible {
		return nil
	}
	out := make([]suggest.Item, len(e.items))
	copy(out, e.items)
	return out
}

// Visible reports whether the list is showing.
func (e *Engine) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

// Session exposes recency and usage for inspection.
func (e *Engine) Session() *session.State {
	return e.session
}

// Computations counts debounced computations that actually ran.
func (e *Engine) Computations() int64 {
	return e.scheduler.Computed()
}
