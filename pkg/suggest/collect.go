package suggest

import (
	"strings"

	"github.com/bastiangx/scriptserve/pkg/classify"
	"github.com/bastiangx/scriptserve/pkg/symbols"
)

// Base priorities per candidate origin.
const (
	PriorityHost           = 20
	PriorityEntity         = 18
	PriorityEntityFallback = 16
	PriorityAttribute      = 15
	PriorityToolkit        = 12
	PriorityBuiltin        = 10
	PriorityKeyword        = 5
	PriorityLocal          = 3
	PriorityModifier       = 2
	PriorityTypes          = 1
)

// Collection is the raw candidate list for a request. An empty FixedSource
// means every name is classified individually.
type Collection struct {
	Candidates  []string
	Priority    map[string]int
	FixedSource symbols.Source
}

type collector struct {
	names    []string
	seen     map[string]bool
	priority map[string]int
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool), priority: make(map[string]int)}
}

// add appends name once; the first priority given wins. Blank or
// whitespace-padded names are not identifiers and are dropped.
func (b *collector) add(name string, priority int) {
	if name == "" || strings.TrimSpace(name) != name {
		return
	}
	if _, ok := b.priority[name]; !ok {
		b.priority[name] = priority
	}
	if !b.seen[name] {
		b.seen[name] = true
		b.names = append(b.names, name)
	}
}

func (b *collector) collection(fixed symbols.Source) Collection {
	return Collection{Candidates: b.names, Priority: b.priority, FixedSource: fixed}
}

// Collect gathers candidates for req.Context.
func (c *Completer) Collect(req Request) Collection {
	ctx := req.Context
	switch ctx.Kind {
	case classify.StringLiteralArgument:
		if !req.Catalog {
			return Collection{}
		}
		return c.catalogNames(PriorityEntity)
	case classify.ConstructorAttribute:
		if !req.Catalog {
			return Collection{}
		}
		return c.constructors(ctx)
	case classify.AttributeAccess:
		return c.attributes(ctx)
	case classify.Bare:
		return c.bare(req.Document)
	}
	return Collection{}
}

func (c *Completer) catalogNames(priority int) Collection {
	b := newCollector()
	if c.catalog != nil {
		for _, name := range c.catalog.Names() {
			b.add(name, priority)
		}
	}
	return b.collection(symbols.SourceNode)
}

func (c *Completer) constructors(ctx classify.Context) Collection {
	private := strings.HasPrefix(strings.TrimSpace(ctx.Prefix), "_")
	b := newCollector()
	for _, m := range c.provider.Members(ctx.Handle) {
		if m.Name == "" || !private && strings.HasPrefix(m.Name, "_") {
			continue
		}
		if m.Kind.Callable() {
			b.add(m.Name, PriorityEntity)
		}
	}
	if len(b.names) > 0 {
		return b.collection(symbols.SourceNode)
	}
	// some environments expose no constructors, fall back to the catalog
	return c.catalogNames(PriorityEntityFallback)
}

func (c *Completer) attributes(ctx classify.Context) Collection {
	private := strings.HasPrefix(strings.TrimSpace(ctx.Prefix), "_")
	b := newCollector()
	for _, m := range c.provider.Members(ctx.Handle) {
		if !private && strings.HasPrefix(m.Name, "_") {
			continue
		}
		b.add(m.Name, PriorityAttribute)
	}
	source := ctx.Source
	if source == "" {
		source = symbols.SourceLocal
	}
	return b.collection(source)
}

func (c *Completer) bare(document string) Collection {
	b := newCollector()

	if h, ok := c.hostRoot(); ok {
		for _, m := range c.provider.Members(h) {
			if m.Name == "" || strings.HasPrefix(m.Name, "_") {
				continue
			}
			b.add(m.Name, PriorityHost)
			// host members always take the host priority
			b.priority[m.Name] = PriorityHost
		}
	}

	for _, name := range c.toolkit.Names() {
		b.add(name, PriorityToolkit)
	}

	if h, ok := c.builtinsRoot(); ok {
		for _, m := range c.provider.Members(h) {
			b.add(m.Name, PriorityBuiltin)
		}
	}

	for _, k := range c.opts.Keywords {
		b.add(k, PriorityKeyword)
	}

	if c.opts.Types != "" {
		if h, ok := c.provider.Resolve(c.opts.Types); ok {
			for _, m := range c.provider.Members(h) {
				b.add(m.Name, PriorityTypes)
			}
		}
	}

	for _, m := range c.opts.Modifiers {
		b.add(m, PriorityModifier)
	}

	for _, name := range c.identifiers.get(document) {
		b.add(name, PriorityLocal)
	}

	return b.collection("")
}
