// Package session holds the per-editor completion state: what is being
// completed right now and which names were accepted recently.
package session

import (
	"sync"

	"github.com/bastiangx/scriptserve/pkg/classify"
	"github.com/charmbracelet/log"
)

// DefaultMaxRecent bounds the recency list.
const DefaultMaxRecent = 20

// State is safe for concurrent use.
type State struct {
	mu sync.RWMutex

	prefix  string
	context classify.Context
	active  bool

	recent    []string
	maxRecent int
	usage     map[string]int
	accepts   int64
}

func New(maxRecent int) *State {
	if maxRecent <= 0 {
		maxRecent = DefaultMaxRecent
	}
	return &State{
		recent:    make([]string, 0, maxRecent),
		maxRecent: maxRecent,
		usage:     make(map[string]int),
	}
}

// Begin records the prefix and context of the popup being shown.
func (s *State) Begin(prefix string, ctx classify.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefix = prefix
	s.context = ctx
	s.active = true
}

// Clear forgets the active prefix and context. Recency survives.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefix = ""
	s.context = classify.Context{}
	s.active = false
}

// Active returns the prefix and context set by the last Begin.
func (s *State) Active() (string, classify.Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefix, s.context, s.active
}

// Accepted moves name to the front of the recency list, evicting the oldest
// entry past the bound, and bumps its usage counter.
func (s *State) Accepted(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.recent {
		if r == name {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}
	s.recent = append(s.recent, "")
	copy(s.recent[1:], s.recent)
	s.recent[0] = name
	if len(s.recent) > s.maxRecent {
		evicted := s.recent[s.maxRecent]
		s.recent = s.recent[:s.maxRecent]
		log.Debugf("Recency evicted %s", evicted)
	}

	s.usage[name]++
	s.accepts++
}

// IsRecent reports whether name is in the recency list.
func (s *State) IsRecent(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.recent {
		if r == name {
			return true
		}
	}
	return false
}

// Usage is the number of times name was accepted this session.
func (s *State) Usage(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage[name]
}

// Recent returns the recency list, newest first.
func (s *State) Recent() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}

// Stats mirrors the counters the server reports.
func (s *State) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"recent":    len(s.recent),
		"maxRecent": s.maxRecent,
		"names":     len(s.usage),
		"accepts":   int(s.accepts),
	}
}
