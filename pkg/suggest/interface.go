// Package suggest collects completion candidates for a classified request,
// scores them against the typed prefix and returns a ranked list.
package suggest

import (
	"github.com/bastiangx/scriptserve/pkg/classify"
	"github.com/bastiangx/scriptserve/pkg/symbols"
)

// Item is one ranked completion. MatchIndices are rune offsets into Text,
// strictly increasing.
type Item struct {
	Text         string         `json:"text"`
	Kind         symbols.Kind   `json:"kind"`
	Source       symbols.Source `json:"source"`
	Score        int            `json:"score"`
	MatchPrefix  string         `json:"match_prefix,omitempty"`
	MatchIndices []int          `json:"match_indices,omitempty"`
	Info         string         `json:"info,omitempty"`
}

// Request is everything a single computation needs.
type Request struct {
	Prefix   string
	Context  classify.Context
	Document string
	// Catalog enables constructible-entity completion.
	Catalog bool
	// Fuzzy enables the close-match fallback.
	Fuzzy bool
}

// Catalog is the entity list the collector draws node names from.
type Catalog interface {
	Names() []string
	Category(name string) (string, bool)
}

// History is the ranking view of the session.
type History interface {
	IsRecent(name string) bool
	Usage(name string) int
}

// ICompleter turns a request into ranked items.
type ICompleter interface {
	Complete(req Request) []Item
	Info(item Item, ctx classify.Context) string
}
