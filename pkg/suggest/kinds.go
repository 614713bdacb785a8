package suggest

import (
	"strings"

	"github.com/bastiangx/scriptserve/pkg/classify"
	"github.com/bastiangx/scriptserve/pkg/symbols"
)

var pythonKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
}

// PythonKeywords returns the reserved words of the scripting language.
func PythonKeywords() []string {
	out := make([]string, len(pythonKeywords))
	copy(out, pythonKeywords)
	return out
}

// Classify decides the kind and source shown for name.
func (c *Completer) Classify(name string, fixed symbols.Source, ctx classify.Context) (symbols.Kind, symbols.Source) {
	if fixed != "" {
		return c.classifyFixed(name, fixed, ctx)
	}

	if c.keywords[name] {
		return symbols.KindKeyword, symbols.SourceLanguage
	}
	if h, ok := c.builtinsRoot(); ok {
		if m, ok := c.provider.Lookup(h, name); ok {
			if m.Kind.Callable() {
				return symbols.KindFunction, symbols.SourceBuiltin
			}
			return symbols.KindObject, symbols.SourceBuiltin
		}
	}
	if h, ok := c.hostRoot(); ok {
		if m, ok := c.provider.Lookup(h, name); ok {
			return memberKind(m), symbols.SourceHost
		}
	}
	if m, ok := c.toolkit.Lookup(name); ok {
		return memberKind(m), symbols.SourceToolkit
	}
	if strings.HasPrefix(name, "@") {
		return symbols.KindDecorator, symbols.SourceLanguage
	}
	if c.modifiers[name] {
		return symbols.KindKeyword, symbols.SourceLanguage
	}
	return symbols.KindName, symbols.SourceLocal
}

func (c *Completer) classifyFixed(name string, fixed symbols.Source, ctx classify.Context) (symbols.Kind, symbols.Source) {
	if fixed == symbols.SourceNode {
		return symbols.KindNode, symbols.SourceNode
	}
	if ctx.Handle.Path == "" {
		return symbols.KindName, fixed
	}
	m, ok := c.provider.Lookup(ctx.Handle, name)
	if !ok {
		return symbols.KindName, fixed
	}
	return memberKind(m), fixed
}

// memberKind narrows a provider kind to what attribute members display as.
func memberKind(m symbols.Member) symbols.Kind {
	switch m.Kind {
	case symbols.KindClass, symbols.KindFunction, symbols.KindModule:
		return m.Kind
	case symbols.KindNode:
		return symbols.KindFunction
	}
	return symbols.KindObject
}
