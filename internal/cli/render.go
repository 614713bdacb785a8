package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/bastiangx/scriptserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
)

var (
	wordStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	matchStyle = wordStyle.Bold(true).Underline(true)
	metaStyle  = lipgloss.NewStyle().Faint(true)
	infoStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
)

// maxShown caps how many rows a terminal list prints.
const maxShown = 15

// listView prints the completion list. It is the CLI's presenter.
type listView struct {
	mu  sync.Mutex
	out io.Writer
}

func newListView(out io.Writer) *listView {
	return &listView{out: out}
}

func (v *listView) Show(items []suggest.Item, anchor string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.out, "%s for '%s':\n", plural(len(items), "completion"), anchor)
	for i, it := range items {
		if i == maxShown {
			fmt.Fprintln(v.out, metaStyle.Render(fmt.Sprintf("    ... %d more", len(items)-maxShown)))
			break
		}
		meta := metaStyle.Render(fmt.Sprintf("%-9s %-8s %5d", it.Kind, it.Source, it.Score))
		line := fmt.Sprintf("%2d. %-32s %s", i+1, highlight(it.Text, it.MatchIndices), meta)
		if it.Info != "" {
			line += "  " + infoStyle.Render(it.Info)
		}
		fmt.Fprintln(v.out, line)
	}
}

func (v *listView) Hide() {}

// highlight renders the matched runes of text in matchStyle.
func highlight(text string, indices []int) string {
	if len(indices) == 0 {
		return wordStyle.Render(text)
	}
	matched := make(map[int]bool, len(indices))
	for _, i := range indices {
		matched[i] = true
	}

	var b strings.Builder
	var run []rune
	runMatched := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runMatched {
			b.WriteString(matchStyle.Render(string(run)))
		} else {
			b.WriteString(wordStyle.Render(string(run)))
		}
		run = run[:0]
	}
	for i, r := range []rune(text) {
		if matched[i] != runMatched {
			flush()
			runMatched = matched[i]
		}
		run = append(run, r)
	}
	flush()
	return b.String()
}
