package config

import (
	"sync"
	"sync/atomic"
)

// Store publishes immutable config snapshots. Readers never block writers;
// writers are serialized so Update never loses a concurrent change.
type Store struct {
	current atomic.Pointer[Config]
	path    string

	// writeMu orders publishes and their notifications.
	writeMu sync.Mutex

	mu        sync.Mutex
	listeners []func(*Config)
}

// NewStore starts with cfg, or defaults when cfg is nil. path is where
// Save writes; it may be empty.
func NewStore(cfg *Config, path string) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Store{path: path}
	s.current.Store(cfg.clone())
	return s
}

// Get returns the current snapshot. Callers must not modify it.
func (s *Store) Get() *Config {
	return s.current.Load()
}

// Flags returns the current feature flags.
func (s *Store) Flags() Flags {
	return s.Get().Flags()
}

// Path is the file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Set replaces the snapshot and notifies listeners. Listeners run with the
// write lock held and must not call Set or Update.
func (s *Store) Set(cfg *Config) {
	if cfg == nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.publishLocked(cfg.clone())
}

// Update applies fn to a copy of the current snapshot and publishes it.
// The read and the publish happen under one lock.
func (s *Store) Update(fn func(*Config)) *Config {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	next := s.Get().clone()
	fn(next)
	s.publishLocked(next)
	return next
}

func (s *Store) publishLocked(snapshot *Config) {
	s.current.Store(snapshot)

	s.mu.Lock()
	listeners := make([]func(*Config), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, l := range listeners {
		l(snapshot)
	}
}

// Save writes the current snapshot to the store's path.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	return SaveConfig(s.Get(), s.path)
}

// OnChange registers a listener called after every Set.
func (s *Store) OnChange(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (c *Config) clone() *Config {
	out := *c
	out.Catalog.PluginDirs = append([]string(nil), c.Catalog.PluginDirs...)
	return &out
}
