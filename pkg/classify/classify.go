// Package classify decides what kind of completion the cursor position asks
// for by looking at the current line only.
package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bastiangx/scriptserve/pkg/symbols"
	"github.com/charmbracelet/log"
)

// Kind is the tag of a completion context.
type Kind int

const (
	None Kind = iota
	Bare
	AttributeAccess
	ConstructorAttribute
	StringLiteralArgument
)

func (k Kind) String() string {
	switch k {
	case Bare:
		return "bare"
	case AttributeAccess:
		return "attribute"
	case ConstructorAttribute:
		return "constructor"
	case StringLiteralArgument:
		return "string-argument"
	}
	return "none"
}

// Context is the classified completion request.
type Context struct {
	Kind   Kind
	Base   string
	Handle symbols.Handle
	Source symbols.Source
	Call   string
	Prefix string
}

// HasContext reports whether the request carries more than a bare word.
func (c Context) HasContext() bool {
	return c.Kind != None && c.Kind != Bare
}

// Snapshot is the line under the cursor. Cursor is a rune offset.
type Snapshot struct {
	Line   string
	Cursor int
}

// Rule recognizes "<root>.<partial>" immediately before the cursor.
// Pattern must be anchored at the end and capture the partial as its last
// group. Path and Base are regexp templates expanded against the match.
type Rule struct {
	Pattern *regexp.Regexp
	Path    string
	Base    string
	Source  symbols.Source
}

// Rules are tried in order; the first whose path resolves wins.
type Rules []Rule

// DefaultRules covers the compositing host and its GUI toolkit.
func DefaultRules() Rules {
	return Rules{
		{
			Pattern: regexp.MustCompile(`\bnuke\.nodes\.(\w*)$`),
			Path:    "nuke.nodes",
			Base:    "nuke.nodes",
			Source:  symbols.SourceNode,
		},
		{
			Pattern: regexp.MustCompile(`\bnodes\.(\w*)$`),
			Path:    "nuke.nodes",
			Base:    "nodes",
			Source:  symbols.SourceNode,
		},
		{
			Pattern: regexp.MustCompile(`\bPySide2\.(QtCore|QtGui|QtWidgets)\.(\w*)$`),
			Path:    "$1",
			Base:    "$1",
			Source:  symbols.SourceToolkit,
		},
		{
			Pattern: regexp.MustCompile(`\b(QtCore|QtGui|QtWidgets)\.(\w*)$`),
			Path:    "$1",
			Base:    "$1",
			Source:  symbols.SourceToolkit,
		},
		{
			Pattern: regexp.MustCompile(`\b(nuke|nukescripts)\.(\w*)$`),
			Path:    "$1",
			Base:    "$1",
			Source:  symbols.SourceHost,
		},
	}
}

// DefaultMarker is the call whose first string argument completes entity names.
var DefaultMarker = regexp.MustCompile(`\bnuke\.createNode\s*\(`)

const defaultMarkerCall = "nuke.createNode"

// Classifier maps a line and cursor to a (prefix, Context) pair.
type Classifier struct {
	provider   symbols.Provider
	rules      Rules
	marker     *regexp.Regexp
	markerCall string
}

// New returns a classifier with the default rules and marker call.
func New(p symbols.Provider) *Classifier {
	return NewWithRules(p, DefaultRules(), DefaultMarker, defaultMarkerCall)
}

// NewWithRules returns a classifier for another host environment.
// A nil marker disables string-argument completion.
func NewWithRules(p symbols.Provider, rules Rules, marker *regexp.Regexp, markerCall string) *Classifier {
	return &Classifier{
		provider:   symbols.NewGuard(p),
		rules:      rules,
		marker:     marker,
		markerCall: markerCall,
	}
}

// ClassifySnapshot is Classify for a Snapshot.
func (c *Classifier) ClassifySnapshot(s Snapshot) (string, Context) {
	return c.Classify(s.Line, s.Cursor)
}

// Classify never fails; anything unrecognized is ("", None).
func (c *Classifier) Classify(line string, cursor int) (string, Context) {
	runes := []rune(line)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	before := string(runes[:cursor])

	inComment, inString := ScanLine(line, cursor)
	if inComment {
		return "", Context{Kind: None}
	}

	if prefix, ok := c.stringArgument(line, len(before)); ok {
		return prefix, Context{
			Kind:   StringLiteralArgument,
			Source: symbols.SourceNode,
			Call:   c.markerCall,
			Prefix: prefix,
		}
	}
	if inString {
		return "", Context{Kind: None}
	}

	if prefix, ctx, ok := c.attribute(before); ok {
		return prefix, ctx
	}

	return bareWord(runes, cursor)
}

// stringArgument checks whether the cursor (a byte offset into line) sits in
// the unterminated first string argument of the last marker call before it.
func (c *Classifier) stringArgument(line string, cursor int) (string, bool) {
	if c.marker == nil || cursor <= 0 {
		return "", false
	}

	active := -1
	for _, loc := range c.marker.FindAllStringIndex(line, -1) {
		if loc[1] <= cursor {
			active = loc[1]
		}
	}
	if active < 0 {
		return "", false
	}

	i := active
	for i < cursor && isSpace(line[i]) {
		i++
	}
	if i >= cursor {
		return "", false
	}
	quote := line[i]
	if quote != '\'' && quote != '"' {
		return "", false
	}

	escaped := false
	for j := i + 1; j < cursor; j++ {
		ch := line[j]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == quote:
			return "", false
		}
	}

	raw := line[i+1 : cursor]
	start := len(raw)
	for start > 0 && isAlnum(raw[start-1]) {
		start--
	}
	return raw[start:], true
}

func (c *Classifier) attribute(before string) (string, Context, bool) {
	for _, rule := range c.rules {
		if rule.Pattern == nil {
			continue
		}
		m := rule.Pattern.FindStringSubmatchIndex(before)
		if m == nil {
			continue
		}
		path := string(rule.Pattern.ExpandString(nil, rule.Path, before, m))
		base := string(rule.Pattern.ExpandString(nil, rule.Base, before, m))
		if base == "" {
			base = path
		}

		h, ok := c.provider.Resolve(path)
		if !ok {
			log.Debugf("Classify: %s did not resolve, trying next rule", path)
			continue
		}

		last := len(m)/2 - 1
		prefix := ""
		if m[2*last] >= 0 {
			prefix = before[m[2*last]:m[2*last+1]]
		}

		kind := AttributeAccess
		if h.Constructible {
			kind = ConstructorAttribute
		}
		return prefix, Context{
			Kind:   kind,
			Base:   base,
			Handle: h,
			Source: rule.Source,
			Prefix: prefix,
		}, true
	}
	return "", Context{}, false
}

// bareWord takes the identifier run left of the cursor. An '@' directly in
// front of it belongs to the word so decorators complete as one token.
func bareWord(runes []rune, cursor int) (string, Context) {
	if cursor < len(runes) && isIdent(runes[cursor]) {
		return "", Context{Kind: None}
	}
	start := cursor
	for start > 0 && isIdent(runes[start-1]) {
		start--
	}
	if start > 0 && runes[start-1] == '@' {
		start--
	}
	word := strings.TrimSpace(string(runes[start:cursor]))
	if word == "" {
		return "", Context{Kind: None}
	}
	return word, Context{Kind: Bare, Prefix: word}
}

func isIdent(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 0x7f && unicode.IsLetter(r)
}

func isAlnum(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
