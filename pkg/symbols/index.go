package symbols

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Index is a flat, build-once view of the public members of several
// namespaces (the GUI toolkit modules). The first namespace that defines a
// name owns it. The index is rebuilt only after Invalidate.
type Index struct {
	provider Provider
	paths    []string
	source   Source

	mu    sync.RWMutex
	built bool
	trie  *patricia.Trie
	names []string
}

// NewIndex creates an index over the given namespace paths. Nothing is
// resolved until the index is first used.
func NewIndex(p Provider, source Source, paths ...string) *Index {
	return &Index{
		provider: NewGuard(p),
		paths:    paths,
		source:   source,
	}
}

// Source is the provenance every indexed name carries.
func (ix *Index) Source() Source {
	return ix.source
}

// Names returns every indexed name in insertion order.
func (ix *Index) Names() []string {
	ix.ensure()
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, len(ix.names))
	copy(out, ix.names)
	return out
}

// Lookup returns the member indexed under name.
func (ix *Index) Lookup(name string) (Member, bool) {
	if name == "" {
		return Member{}, false
	}
	ix.ensure()
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	item := ix.trie.Get(patricia.Prefix(name))
	if item == nil {
		return Member{}, false
	}
	m, ok := item.(Member)
	return m, ok
}

// Len reports the number of indexed names.
func (ix *Index) Len() int {
	ix.ensure()
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.names)
}

// Invalidate drops the index; the next read rebuilds it.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.built = false
	ix.trie = nil
	ix.names = nil
}

func (ix *Index) ensure() {
	ix.mu.RLock()
	built := ix.built
	ix.mu.RUnlock()
	if built {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.built {
		return
	}

	trie := patricia.NewTrie()
	var names []string
	for _, path := range ix.paths {
		h, ok := ix.provider.Resolve(path)
		if !ok {
			log.Debugf("Index: namespace %s not available", path)
			continue
		}
		for _, m := range ix.provider.Members(h) {
			if m.Name == "" || strings.HasPrefix(m.Name, "_") {
				continue
			}
			// Insert refuses existing keys, so the first namespace wins
			if trie.Insert(patricia.Prefix(m.Name), m) {
				names = append(names, m.Name)
			}
		}
	}

	ix.trie = trie
	ix.names = names
	ix.built = true
	log.Debugf("Index built with %d names from %d namespaces", len(names), len(ix.paths))
}
