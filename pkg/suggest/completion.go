package suggest

import (
	"github.com/bastiangx/scriptserve/pkg/symbols"
	"github.com/charmbracelet/log"
)

// Options name the namespaces bare completion draws from.
type Options struct {
	HostRoot  string
	Builtins  string
	Types     string
	Toolkit   []string
	Keywords  []string
	Modifiers []string
}

// DefaultOptions matches the compositing host and its scripting language.
func DefaultOptions() Options {
	return Options{
		HostRoot:  "nuke",
		Builtins:  "builtins",
		Types:     "types",
		Toolkit:   []string{"QtCore", "QtGui", "QtWidgets"},
		Keywords:  PythonKeywords(),
		Modifiers: []string{"@staticmethod", "@classmethod", "@property", "async def", "await"},
	}
}

// Completer wires the collector and the ranker together.
type Completer struct {
	provider    symbols.Provider
	catalog     Catalog
	toolkit     *symbols.Index
	history     History
	opts        Options
	keywords    map[string]bool
	modifiers   map[string]bool
	identifiers *identifierCache
}

var _ ICompleter = (*Completer)(nil)

// NewCompleter builds a completer. catalog and history may be nil.
func NewCompleter(p symbols.Provider, catalog Catalog, history History, opts Options) *Completer {
	guarded := symbols.NewGuard(p)
	c := &Completer{
		provider:    guarded,
		catalog:     catalog,
		toolkit:     symbols.NewIndex(guarded, symbols.SourceToolkit, opts.Toolkit...),
		history:     history,
		opts:        opts,
		keywords:    make(map[string]bool, len(opts.Keywords)),
		modifiers:   make(map[string]bool, len(opts.Modifiers)),
		identifiers: &identifierCache{},
	}
	for _, k := range opts.Keywords {
		c.keywords[k] = true
	}
	for _, m := range opts.Modifiers {
		c.modifiers[m] = true
	}
	return c
}

// Complete collects, scores and ranks candidates for req.
func (c *Completer) Complete(req Request) []Item {
	coll := c.Collect(req)
	if len(coll.Candidates) == 0 {
		return nil
	}
	items := c.Rank(req, coll)
	log.Debugf("Complete(%q, %s): %d candidates, %d items", req.Prefix, req.Context.Kind, len(coll.Candidates), len(items))
	return items
}

// Toolkit exposes the owned toolkit index, mainly so it can be invalidated.
func (c *Completer) Toolkit() *symbols.Index {
	return c.toolkit
}

func (c *Completer) hostRoot() (symbols.Handle, bool) {
	if c.opts.HostRoot == "" {
		return symbols.Handle{}, false
	}
	return c.provider.Resolve(c.opts.HostRoot)
}

func (c *Completer) builtinsRoot() (symbols.Handle, bool) {
	if c.opts.Builtins == "" {
		return symbols.Handle{}, false
	}
	return c.provider.Resolve(c.opts.Builtins)
}
