package suggest

import (
	"github.com/bastiangx/scriptserve/pkg/classify"
	"github.com/bastiangx/scriptserve/pkg/symbols"
)

// Info renders the one-line description shown for a highlighted item.
func (c *Completer) Info(item Item, ctx classify.Context) string {
	text := item.Text
	base := ""
	if ctx.Kind == classify.AttributeAccess && ctx.Base != "" {
		base = ctx.Base + "." + text
	}

	switch item.Source {
	case symbols.SourceNode:
		if c.catalog != nil {
			if cat, ok := c.catalog.Category(text); ok && cat != "" {
				return "Node • " + cat
			}
		}
		return "Node"

	case symbols.SourceBuiltin:
		fallback := "builtins." + text
		if h, ok := c.builtinsRoot(); ok {
			if m, ok := c.provider.Lookup(h, text); ok {
				return symbols.Summary(m, fallback)
			}
		}
		return fallback

	case symbols.SourceLanguage:
		if item.Kind == symbols.KindKeyword {
			return "keyword: " + text
		}

	case symbols.SourceHost:
		fallback := base
		if fallback == "" {
			fallback = c.opts.HostRoot + "." + text
		}
		if m, ok := c.hostMember(text, ctx); ok {
			return symbols.Summary(m, fallback)
		}
		return fallback

	case symbols.SourceToolkit:
		if ctx.Kind == classify.AttributeAccess {
			if m, ok := c.provider.Lookup(ctx.Handle, text); ok {
				if base != "" {
					return symbols.Summary(m, base)
				}
				return symbols.Summary(m, text)
			}
			if base != "" {
				return base
			}
		}
		if m, ok := c.toolkit.Lookup(text); ok {
			return symbols.Summary(m, text)
		}
		return text

	case symbols.SourceLocal:
		if base != "" {
			return base
		}
		return "local"
	}

	if base != "" {
		return base
	}
	return string(item.Source)
}

func (c *Completer) hostMember(name string, ctx classify.Context) (symbols.Member, bool) {
	if ctx.Kind == classify.AttributeAccess {
		return c.provider.Lookup(ctx.Handle, name)
	}
	h, ok := c.hostRoot()
	if !ok {
		return symbols.Member{}, false
	}
	return c.provider.Lookup(h, name)
}
