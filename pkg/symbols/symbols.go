/*
Package symbols is the boundary between the completion engine and whatever
environment owns the live symbol table.

The engine never reflects on host objects itself. A Provider resolves dotted
paths to opaque handles and lists their members as structured triples
(name, kind, summary), with the kind decided once by the provider:

	h, ok := provider.Resolve("nuke.nodes")
	for _, m := range provider.Members(h) {
		fmt.Println(m.Name, m.Kind, m.Signature)
	}

Static is a Provider backed by a TOML symbol table, used by the server and
the CLI when no live host is attached. Guard wraps any Provider so a failing
lookup degrades to "no such member" instead of reaching the editor.
*/
package symbols

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind classifies a symbol for display and ranking.
type Kind int

const (
	KindName Kind = iota
	KindFunction
	KindClass
	KindModule
	KindObject
	KindKeyword
	KindDecorator
	KindNode
)

var kindNames = map[Kind]string{
	KindName:      "name",
	KindFunction:  "function",
	KindClass:     "class",
	KindModule:    "module",
	KindObject:    "object",
	KindKeyword:   "keyword",
	KindDecorator: "decorator",
	KindNode:      "node",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "name"
}

// Callable reports whether values of this kind can be called.
func (k Kind) Callable() bool {
	return k == KindFunction || k == KindClass || k == KindNode
}

// MarshalText lets kinds round-trip through TOML and msgpack as strings.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return errors.Newf("unknown symbol kind %q", s)
}

// Source is the provenance of a candidate.
type Source string

const (
	SourceHost     Source = "host"
	SourceToolkit  Source = "toolkit"
	SourceBuiltin  Source = "builtin"
	SourceLanguage Source = "language"
	SourceLocal    Source = "local"
	SourceNode     Source = "node"
)

// Boost is the ranking bonus a source earns on top of the match score.
func (s Source) Boost() int {
	switch s {
	case SourceHost:
		return 6
	case SourceToolkit:
		return 2
	}
	return 0
}

// Handle is an opaque reference to a resolved namespace.
// Constructible namespaces expose constructors for catalog entities.
type Handle struct {
	Path          string
	Constructible bool
}

// Member is one attribute of a resolved namespace.
type Member struct {
	Name      string `toml:"name"`
	Kind      Kind   `toml:"kind"`
	Signature string `toml:"signature,omitempty"`
	Doc       string `toml:"doc,omitempty"`
}

// Provider is implemented per target environment.
type Provider interface {
	// Resolve maps a dotted path to a handle.
	Resolve(path string) (Handle, bool)
	// Members lists every member of h, private ones included.
	Members(h Handle) []Member
	// Lookup returns a single member of h.
	Lookup(h Handle, name string) (Member, bool)
}

// Summary renders the info line for a member: the signature appended to
// fallback for callables, else the first line of its docs, else fallback.
func Summary(m Member, fallback string) string {
	if m.Kind.Callable() && m.Signature != "" {
		return fallback + m.Signature
	}
	if doc := strings.TrimSpace(m.Doc); doc != "" {
		first, _, _ := strings.Cut(doc, "\n")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return fallback
}
