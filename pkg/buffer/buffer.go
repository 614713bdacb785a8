// Package buffer is an in-memory text document with a cursor and an
// optional selection. It is what the server and the CLI edit when no real
// editor widget is attached.
package buffer

import (
	"strings"
	"sync"
)

// Buffer is safe for concurrent use.
type Buffer struct {
	mu     sync.RWMutex
	text   []rune
	cursor int
	anchor int
}

// New returns a buffer holding text with the cursor at the end.
func New(text string) *Buffer {
	b := &Buffer{text: []rune(text)}
	b.cursor = len(b.text)
	b.anchor = b.cursor
	return b
}

// SetText replaces the document and places the cursor at pos.
func (b *Buffer) SetText(text string, pos int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = []rune(text)
	b.cursor = b.clamp(pos)
	b.anchor = b.cursor
}

// SetCursor moves the cursor to an absolute rune offset and clears the
// selection.
func (b *Buffer) SetCursor(pos int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = b.clamp(pos)
	b.anchor = b.cursor
}

// Select selects [anchor, pos) and leaves the cursor at pos.
func (b *Buffer) Select(anchor, pos int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.anchor = b.clamp(anchor)
	b.cursor = b.clamp(pos)
}

// Insert types text at the cursor, replacing the selection.
func (b *Buffer) Insert(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end := b.anchor, b.cursor
	if start > end {
		start, end = end, start
	}
	b.splice(start, end, []rune(text))
}

// Backspace deletes the selection or the rune before the cursor.
func (b *Buffer) Backspace() {
	b.mu.Lock()
	defer b.mu.Unlock()
	start, end := b.anchor, b.cursor
	if start > end {
		start, end = end, start
	}
	if start == end {
		if start == 0 {
			return
		}
		start--
	}
	b.splice(start, end, nil)
}

// ReplaceBeforeCursor removes up to n runes before the cursor and inserts
// text in their place.
func (b *Buffer) ReplaceBeforeCursor(n int, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 0 {
		n = 0
	}
	start := b.cursor - n
	if start < 0 {
		start = 0
	}
	b.splice(start, b.cursor, []rune(text))
}

// Text returns the whole document.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.text)
}

// FullText is Text.
func (b *Buffer) FullText() string {
	return b.Text()
}

// Cursor returns the absolute rune offset of the cursor.
func (b *Buffer) Cursor() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor
}

// HasSelection reports whether a non-empty range is selected.
func (b *Buffer) HasSelection() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.anchor != b.cursor
}

// CurrentLine returns the line holding the cursor, without its newline.
func (b *Buffer) CurrentLine() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, end := b.lineBounds()
	return string(b.text[start:end])
}

// CursorOffset is the rune offset of the cursor within its line.
func (b *Buffer) CursorOffset() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, _ := b.lineBounds()
	return b.cursor - start
}

// CursorInCommentOrString scans the document up to the cursor and reports
// whether the cursor is in a comment or in a string literal. Triple quoted
// strings spanning lines count as strings.
func (b *Buffer) CursorInCommentOrString() (inComment, inString bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Scan(b.text[:b.cursor])
}

// Lines returns the document split into lines.
func (b *Buffer) Lines() []string {
	return strings.Split(b.Text(), "\n")
}

func (b *Buffer) splice(start, end int, insert []rune) {
	out := make([]rune, 0, len(b.text)-(end-start)+len(insert))
	out = append(out, b.text[:start]...)
	out = append(out, insert...)
	out = append(out, b.text[end:]...)
	b.text = out
	b.cursor = start + len(insert)
	b.anchor = b.cursor
}

func (b *Buffer) lineBounds() (int, int) {
	start := b.cursor
	for start > 0 && b.text[start-1] != '\n' {
		start--
	}
	end := b.cursor
	for end < len(b.text) && b.text[end] != '\n' {
		end++
	}
	return start, end
}

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.text) {
		return len(b.text)
	}
	return pos
}
