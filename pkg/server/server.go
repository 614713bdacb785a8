package server

import (
	"bufio"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bastiangx/scriptserve/pkg/buffer"
	"github.com/bastiangx/scriptserve/pkg/config"
	"github.com/bastiangx/scriptserve/pkg/engine"
	"github.com/bastiangx/scriptserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	codeBadRequest = 400
	codeNotFound   = 404
	codeConflict   = 409
	codeInternal   = 500
)

// Server handles msgpack IPC for one editor document.
type Server struct {
	buf       *buffer.Buffer
	engine    *engine.Engine
	store     *config.Store
	presenter *eventPresenter

	dec      *msgpack.Decoder
	writeMu  sync.Mutex
	enc      *msgpack.Encoder
	out      *bufio.Writer
	requests atomic.Int64
}

// eventPresenter pushes popup changes to the client. Muted while a request
// handler drives the engine itself, since the reply already carries the
// result.
type eventPresenter struct {
	s    *Server
	mute atomic.Bool
}

func (p *eventPresenter) Show(items []suggest.Item, anchor string) {
	if p.mute.Load() {
		return
	}
	p.s.send(Event{Event: "show", Anchor: anchor, Suggestions: p.s.toSuggestions(items)})
}

func (p *eventPresenter) Hide() {
	if p.mute.Load() {
		return
	}
	p.s.send(Event{Event: "hide"})
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(store *config.Store, opts engine.Options) *Server {
	return NewServerWithIO(store, opts, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses and events to w. opts.Flags is replaced by store.
func NewServerWithIO(store *config.Store, opts engine.Options, r io.Reader, w io.Writer) *Server {
	if store == nil {
		store = config.NewStore(nil, "")
	}
	s := &Server{
		buf:   buffer.New(""),
		store: store,
		dec:   msgpack.NewDecoder(bufio.NewReader(r)),
		out:   bufio.NewWriter(w),
	}
	s.enc = msgpack.NewEncoder(s.out)
	s.presenter = &eventPresenter{s: s}

	cfg := store.Get()
	opts.Flags = store
	if opts.Interval == 0 {
		opts.Interval = cfg.Debounce()
	}
	if opts.MaxRecent == 0 {
		opts.MaxRecent = cfg.Completion.MaxRecent
	}
	s.engine = engine.New(s.buf, s.presenter, opts)

	store.OnChange(func(c *config.Config) {
		s.engine.SetDebounce(c.Debounce())
		if !c.Completion.Enabled || !c.Completion.Popup {
			s.engine.Hide()
		}
	})
	return s
}

// Engine exposes the engine driving this server.
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// Start processes requests until the input stream ends.
func (s *Server) Start() error {
	log.Debug("Starting Server.")
	s.send(StatusResponse{Status: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.engine.Hide()
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "invalid msgpack request", codeBadRequest)
			return errors.Wrap(err, "decoding request")
		}
		s.handleRequest(req)
	}
}

func (s *Server) handleRequest(req Request) {
	s.requests.Add(1)
	log.Debugf("Request %s op=%s", req.ID, req.Op)

	switch req.Op {
	case "edit":
		s.handleEdit(req)
	case "complete":
		s.handleComplete(req)
	case "accept":
		s.handleAccept(req)
	case "info":
		s.handleInfo(req)
	case "hide":
		s.engine.Hide()
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	case "refresh_catalog":
		if err := s.engine.RefreshCatalog(); err != nil {
			log.Warnf("Refreshing catalog: %v", err)
			s.sendError(req.ID, err.Error(), codeInternal)
			return
		}
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	case "config":
		s.handleConfig(req)
	case "stats":
		sess := s.engine.Session()
		s.send(StatsResponse{
			ID:           req.ID,
			Requests:     s.requests.Load(),
			Computations: s.engine.Computations(),
			Session:      sess.Stats(),
			Recent:       sess.Recent(),
		})
	case "health":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, "unknown op: "+req.Op, codeBadRequest)
	}
}

func (s *Server) handleEdit(req Request) {
	pos := len([]rune(req.Text))
	if req.Cursor != nil {
		pos = *req.Cursor
	}
	s.buf.SetText(req.Text, pos)
	if req.Anchor != nil && *req.Anchor != pos {
		s.buf.Select(*req.Anchor, pos)
	}

	mode := engine.Debounced
	if req.Mode == "immediate" {
		mode = engine.Immediate
	}
	s.engine.RequestCompletions(mode)
	s.send(StatusResponse{ID: req.ID, Status: "ok"})
}

func (s *Server) handleComplete(req Request) {
	start := time.Now()
	s.quietly(func() { s.engine.RequestCompletions(engine.Immediate) })
	items := s.engine.Items()
	elapsed := time.Since(start)

	anchor := ""
	if prefix, _, ok := s.engine.Session().Active(); ok {
		anchor = prefix
	}
	suggestions := s.toSuggestions(items)
	s.send(CompletionResponse{
		ID:          req.ID,
		Anchor:      anchor,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleAccept(req Request) {
	if req.Item == "" {
		s.sendError(req.ID, "missing 'item' parameter", codeBadRequest)
		return
	}
	if !s.engine.Visible() {
		s.sendError(req.ID, "no active completion", codeConflict)
		return
	}
	s.quietly(func() { s.engine.Accept(req.Item) })
	s.send(AcceptResponse{ID: req.ID, Text: s.buf.Text(), Cursor: s.buf.Cursor()})
}

func (s *Server) handleInfo(req Request) {
	for _, it := range s.engine.Items() {
		if it.Text == req.Item {
			s.send(InfoResponse{ID: req.ID, Info: s.engine.OnCandidateHighlighted(it)})
			return
		}
	}
	s.sendError(req.ID, "item not in the current list: "+req.Item, codeNotFound)
}

func (s *Server) handleConfig(req Request) {
	c := req.Config
	if c == nil {
		s.sendError(req.ID, "missing 'config' parameter", codeBadRequest)
		return
	}
	s.store.Update(func(cfg *config.Config) {
		if c.Completion != nil {
			cfg.Completion.Enabled = *c.Completion
		}
		if c.Popup != nil {
			cfg.Completion.Popup = *c.Popup
		}
		if c.Fuzzy != nil {
			cfg.Completion.Fuzzy = *c.Fuzzy
		}
		if c.Catalog != nil {
			cfg.Completion.Catalog = *c.Catalog
		}
		if c.DebounceMs != nil && *c.DebounceMs >= 0 {
			cfg.Completion.DebounceMs = *c.DebounceMs
		}
	})
	if c.Save {
		if err := s.store.Save(); err != nil {
			log.Errorf("Saving config: %v", err)
			s.sendError(req.ID, err.Error(), codeInternal)
			return
		}
	}
	s.send(StatusResponse{ID: req.ID, Status: "ok"})
}

func (s *Server) quietly(fn func()) {
	s.presenter.mute.Store(true)
	defer s.presenter.mute.Store(false)
	fn()
}

func (s *Server) toSuggestions(items []suggest.Item) []Suggestion {
	limit := s.store.Get().Server.MaxItems
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]Suggestion, len(items))
	for i, it := range items {
		out[i] = Suggestion{
			Word:    it.Text,
			Kind:    it.Kind.String(),
			Source:  string(it.Source),
			Score:   it.Score,
			Matches: it.MatchIndices,
			Info:    it.Info,
		}
	}
	return out
}

// send marshals a response onto the output stream.
func (s *Server) send(v any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.enc.Encode(v); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.out.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
