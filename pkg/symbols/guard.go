package symbols

import (
	"github.com/charmbracelet/log"
)

// Guard wraps a Provider and converts panics from the environment into
// empty results. A nil inner provider resolves nothing.
type Guard struct {
	inner Provider
}

// NewGuard returns p wrapped in a Guard. Wrapping a Guard again is a no-op.
func NewGuard(p Provider) *Guard {
	if g, ok := p.(*Guard); ok {
		return g
	}
	return &Guard{inner: p}
}

func (g *Guard) Resolve(path string) (h Handle, ok bool) {
	if g.inner == nil {
		return Handle{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("Resolve(%s) failed: %v", path, r)
			h, ok = Handle{}, false
		}
	}()
	return g.inner.Resolve(path)
}

func (g *Guard) Members(h Handle) (members []Member) {
	if g.inner == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("Members(%s) failed: %v", h.Path, r)
			members = nil
		}
	}()
	return g.inner.Members(h)
}

func (g *Guard) Lookup(h Handle, name string) (m Member, ok bool) {
	if g.inner == nil {
		return Member{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Debugf("Lookup(%s.%s) failed: %v", h.Path, name, r)
			m, ok = Member{}, false
		}
	}()
	return g.inner.Lookup(h, name)
}
