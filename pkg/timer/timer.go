// Package timer provides a cancellable deferred-callback abstraction with a
// system clock and a manually advanced clock for tests.
package timer

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback. Stop reports whether the call
// prevented the callback from running.
type Stopper interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// System returns a Clock backed by time.AfterFunc.
func System() Clock { return systemClock{} }

// Slot holds at most one pending callback. Scheduling a new callback cancels
// the previous one, so the last scheduled callback wins.
type Slot struct {
	clock Clock

	mu      sync.Mutex
	gen     uint64
	pending Stopper
}

// NewSlot creates a Slot on clock. A nil clock uses System().
func NewSlot(clock Clock) *Slot {
	if clock == nil {
		clock = System()
	}
	return &Slot{clock: clock}
}

// Schedule runs f after d, cancelling any callback pending on the slot.
func (s *Slot) Schedule(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.pending = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			// superseded after the underlying timer already fired
			s.mu.Unlock()
			return
		}
		s.pending = nil
		s.mu.Unlock()
		f()
	})
}

// Cancel drops the pending callback, if any.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

// Pending reports whether a callback is waiting to run.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Slot) stopLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
