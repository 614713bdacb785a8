// Package debounce coalesces bursts of edit events into a single
// computation that runs once the editor has been quiet for an interval.
package debounce

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInterval is the quiet period after the last edit.
const DefaultInterval = 60 * time.Millisecond

// State of the scheduler.
type State int

const (
	Idle State = iota
	Pending
	Computing
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Computing:
		return "computing"
	}
	return "idle"
}

// Scheduler keeps at most one pending computation. Re-arming replaces it,
// and a generation counter makes sure a timer that was superseded after it
// already fired does nothing.
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	fire     func(gen uint64)

	timer      Timer
	generation uint64
	state      State
	computed   int64
}

// New creates a scheduler that calls fire after interval of quiet.
// A nil clock means SystemClock.
func New(interval time.Duration, clock Clock, fire func()) *Scheduler {
	var f func(uint64)
	if fire != nil {
		f = func(uint64) { fire() }
	}
	return NewWithGeneration(interval, clock, f)
}

// NewWithGeneration is New for callers that serialize fire with their own
// lock. fire receives the generation it was armed with; the caller should
// check Current(gen) once it holds that lock, since Cancel may have run
// while fire was waiting for it.
func NewWithGeneration(interval time.Duration, clock Clock, fire func(gen uint64)) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock, interval: interval, fire: fire}
}

// Arm cancels any pending computation and schedules a new one.
func (s *Scheduler) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	if s.state != Computing {
		s.state = Pending
	}
	s.timer = s.clock.AfterFunc(s.interval, func() { s.run(gen) })
}

// Cancel drops the pending computation, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	if s.state == Pending {
		s.state = Idle
	}
}

// Current reports whether gen is still the latest Arm with no Cancel since.
func (s *Scheduler) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

// SetInterval changes the quiet period used by later Arm calls.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultInterval
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Computed counts the computations that actually ran.
func (s *Scheduler) Computed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computed
}

func (s *Scheduler) run(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		log.Debugf("Debounce: dropped stale fire %d", gen)
		return
	}
	s.timer = nil
	s.state = Computing
	s.computed++
	s.mu.Unlock()

	// fire runs unlocked so it may call Arm or Cancel
	if s.fire != nil {
		s.fire(gen)
	}

	s.mu.Lock()
	if s.timer != nil {
		s.state = Pending
	} else {
		s.state = Idle
	}
	s.mu.Unlock()
}
