package symbols

import (
	"github.com/bastiangx/scriptserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// Namespace is one resolvable path of a static symbol table.
type Namespace struct {
	Path          string   `toml:"path"`
	Constructible bool     `toml:"constructible,omitempty"`
	Members       []Member `toml:"member"`
}

// Table is the on-disk layout of a static symbol table:
//
//	[[namespace]]
//	path = "nuke"
//
//	  [[namespace.member]]
//	  name = "createNode"
//	  kind = "function"
//	  signature = "(node, args='', inpanel=True)"
type Table struct {
	Namespaces []Namespace `toml:"namespace"`
}

type namespace struct {
	handle  Handle
	members []Member
	byName  map[string]Member
}

// Static serves symbols from a fixed table.
type Static struct {
	namespaces map[string]*namespace
}

// NewStatic builds a provider from a table. Later namespaces with the same
// path extend earlier ones; duplicate member names keep the first entry.
func NewStatic(table Table) *Static {
	s := &Static{namespaces: make(map[string]*namespace, len(table.Namespaces))}
	for _, ns := range table.Namespaces {
		entry, ok := s.namespaces[ns.Path]
		if !ok {
			entry = &namespace{
				handle: Handle{Path: ns.Path, Constructible: ns.Constructible},
				byName: make(map[string]Member, len(ns.Members)),
			}
			s.namespaces[ns.Path] = entry
		}
		entry.handle.Constructible = entry.handle.Constructible || ns.Constructible
		for _, m := range ns.Members {
			if m.Name == "" {
				continue
			}
			if _, dup := entry.byName[m.Name]; dup {
				continue
			}
			entry.byName[m.Name] = m
			entry.members = append(entry.members, m)
		}
	}
	return s
}

// LoadStatic reads a TOML symbol table from disk.
func LoadStatic(path string) (*Static, error) {
	var table Table
	if err := utils.LoadTOMLFile(path, &table); err != nil {
		return nil, errors.Wrapf(err, "loading symbol table %s", path)
	}
	s := NewStatic(table)
	log.Debugf("Loaded %d namespaces from %s", len(s.namespaces), path)
	return s, nil
}

func (s *Static) Resolve(path string) (Handle, bool) {
	ns, ok := s.namespaces[path]
	if !ok {
		return Handle{}, false
	}
	return ns.handle, true
}

func (s *Static) Members(h Handle) []Member {
	ns, ok := s.namespaces[h.Path]
	if !ok {
		return nil
	}
	out := make([]Member, len(ns.members))
	copy(out, ns.members)
	return out
}

func (s *Static) Lookup(h Handle, name string) (Member, bool) {
	ns, ok := s.namespaces[h.Path]
	if !ok {
		return Member{}, false
	}
	m, ok := ns.byName[name]
	return m, ok
}
