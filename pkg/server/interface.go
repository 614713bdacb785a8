/*
Package server implements msgpack IPC for script completion.

A host editor spawns the server and streams msgpack maps over stdin. Each
request carries an id and an op; the server answers every request with one
response carrying the same id. Popup changes caused by debounced work are
pushed as events with no id.

# IPC

Edits are reported with the full document and an absolute rune cursor:

	{"id": "e1", "op": "edit", "text": "import nuke\nnuke.cre", "cur": 20}

The reply is an acknowledgement. Once the typing pause elapses the server
pushes the ranked list, or a hide:

	{"ev": "show", "a": "cre", "s": [{"w": "createNode", "k": "function", "src": "host", "sc": 1021, "m": [0, 1, 2]}]}
	{"ev": "hide"}

A complete op skips the pause and answers with the list directly:

	{"id": "c1", "op": "complete"}

Accepting replaces the active prefix in the server's copy of the document and
returns the new text and cursor:

	{"id": "a1", "op": "accept", "item": "createNode"}

Other ops are info, hide, refresh_catalog, config and stats.
*/
package server

// Request is the envelope for every op. Fields unused by an op are left
// empty.
type Request struct {
	ID     string `msgpack:"id"`
	Op     string `msgpack:"op"`
	Text   string `msgpack:"text,omitempty"`
	Cursor *int   `msgpack:"cur,omitempty"`
	// Anchor selects [anchor, cur) when set and different from cur.
	Anchor *int   `msgpack:"anc,omitempty"`
	Mode   string `msgpack:"mode,omitempty"`
	Item   string `msgpack:"item,omitempty"`

	Config *ConfigRequest `msgpack:"config,omitempty"`
}

// ConfigRequest toggles feature flags at runtime. Nil fields are unchanged.
type ConfigRequest struct {
	Completion *bool `msgpack:"completion_enabled,omitempty"`
	Popup      *bool `msgpack:"popup_enabled,omitempty"`
	Fuzzy      *bool `msgpack:"fuzzy_enabled,omitempty"`
	Catalog    *bool `msgpack:"constructible_catalog_enabled,omitempty"`
	DebounceMs *int  `msgpack:"debounce_ms,omitempty"`
	Save       bool  `msgpack:"save,omitempty"`
}

// Suggestion is one item on the wire.
type Suggestion struct {
	Word    string `msgpack:"w"`
	Kind    string `msgpack:"k"`
	Source  string `msgpack:"src"`
	Score   int    `msgpack:"sc"`
	Matches []int  `msgpack:"m,omitempty"`
	Info    string `msgpack:"i,omitempty"`
}

// CompletionResponse answers a complete op.
type CompletionResponse struct {
	ID          string       `msgpack:"id"`
	Anchor      string       `msgpack:"a"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// Event is pushed when the popup changes outside a request.
type Event struct {
	Event       string       `msgpack:"ev"`
	Anchor      string       `msgpack:"a,omitempty"`
	Suggestions []Suggestion `msgpack:"s,omitempty"`
}

// AcceptResponse carries the document after an accept.
type AcceptResponse struct {
	ID     string `msgpack:"id"`
	Text   string `msgpack:"text"`
	Cursor int    `msgpack:"cur"`
}

// InfoResponse carries the info line for a highlighted item.
type InfoResponse struct {
	ID   string `msgpack:"id"`
	Info string `msgpack:"info"`
}

// StatusResponse acknowledges ops with no payload.
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// StatsResponse reports session and engine counters.
type StatsResponse struct {
	ID           string         `msgpack:"id"`
	Requests     int64          `msgpack:"requests"`
	Computations int64          `msgpack:"computations"`
	Session      map[string]int `msgpack:"session"`
	Recent       []string       `msgpack:"recent"`
}

// ErrorResponse holds basic error information for failed requests.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
