// Package cli is an interactive line editor for trying completions in a
// terminal. Each input line replaces the line being edited; a '|' marks the
// cursor, otherwise it sits at the end.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/scriptserve/internal/logger"
	"github.com/bastiangx/scriptserve/pkg/buffer"
	"github.com/bastiangx/scriptserve/pkg/engine"
	charmlog "github.com/charmbracelet/log"
)

const cursorMark = "|"

// InputHandler drives an engine from line input.
type InputHandler struct {
	buf    *buffer.Buffer
	engine *engine.Engine
	view   *listView
	log    *charmlog.Logger
	in     io.Reader

	// committed lines above the one being edited
	lines   []string
	current string
}

// NewInputHandler wires an engine to a list view writing to out. Requests
// always compute immediately.
func NewInputHandler(opts engine.Options, in io.Reader, out io.Writer) *InputHandler {
	h := &InputHandler{
		buf:  buffer.New(""),
		view: newListView(out),
		log:  logger.NewTo(out, ""),
		in:   in,
	}
	h.engine = engine.New(h.buf, h.view, opts)
	return h
}

// Start runs the loop until the input ends or :q is entered.
func (h *InputHandler) Start() error {
	h.log.Print("ScriptServe CLI [BETA]")
	h.log.Print("type a line of script and press Enter, :help lists commands (Ctrl+C to exit)")

	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !h.handleInput(line) {
			return nil
		}
	}
	return scanner.Err()
}

// handleInput returns false when the user asked to quit.
func (h *InputHandler) handleInput(line string) bool {
	if strings.HasPrefix(line, ":") {
		return h.command(strings.Fields(line))
	}

	cursor := -1
	if i := strings.Index(line, cursorMark); i >= 0 {
		cursor = len([]rune(line[:i]))
		line = line[:i] + line[i+len(cursorMark):]
	}
	h.current = line
	h.sync(cursor)

	start := time.Now()
	h.engine.RequestCompletions(engine.Immediate)
	h.log.Debugf("Took [ %v ] for line %q", time.Since(start), line)
	if !h.engine.Visible() {
		h.log.Warnf("No completions for: '%s'", line)
	}
	return true
}

func (h *InputHandler) command(args []string) bool {
	switch args[0] {
	case ":q", ":quit":
		return false
	case ":help":
		h.log.Print("commands: :nl  :a N  :i N  :doc  :clear  :stats  :refresh  :q")
	case ":nl":
		h.lines = append(h.lines, h.current)
		h.current = ""
		h.sync(-1)
		h.engine.Hide()
	case ":a":
		item, ok := h.pick(args)
		if !ok {
			return true
		}
		h.engine.Accept(item)
		h.current = h.buf.CurrentLine()
		h.log.Printf("> %s", h.current)
	case ":i":
		item, ok := h.pick(args)
		if !ok {
			return true
		}
		for _, it := range h.engine.Items() {
			if it.Text == item {
				h.log.Print(h.engine.OnCandidateHighlighted(it))
			}
		}
	case ":doc":
		h.log.Print(h.buf.Text())
	case ":clear":
		h.lines, h.current = nil, ""
		h.sync(-1)
		h.engine.Hide()
	case ":stats":
		sess := h.engine.Session()
		h.log.Print("session", "stats", sess.Stats(), "recent", sess.Recent())
	case ":refresh":
		if err := h.engine.RefreshCatalog(); err != nil {
			h.log.Errorf("Refreshing catalog: %v", err)
		} else {
			h.log.Print("catalog refreshed")
		}
	default:
		h.log.Errorf("Unknown command: %s", args[0])
	}
	return true
}

// pick resolves ":a N" against the list on screen.
func (h *InputHandler) pick(args []string) (string, bool) {
	items := h.engine.Items()
	if len(items) == 0 {
		h.log.Warn("No completions showing")
		return "", false
	}
	n := 1
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 1 || v > len(items) {
			h.log.Errorf("Pick a number between 1 and %d", len(items))
			return "", false
		}
		n = v
	}
	return items[n-1].Text, true
}

// sync rebuilds the buffer from the committed lines and the current line.
// cursor is a rune offset into the current line, or -1 for its end.
func (h *InputHandler) sync(cursor int) {
	prefix := strings.Join(h.lines, "\n")
	if len(h.lines) > 0 {
		prefix += "\n"
	}
	if cursor < 0 {
		cursor = len([]rune(h.current))
	}
	h.buf.SetText(prefix+h.current, len([]rune(prefix))+cursor)
}

// Engine exposes the engine for inspection.
func (h *InputHandler) Engine() *engine.Engine {
	return h.engine
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
