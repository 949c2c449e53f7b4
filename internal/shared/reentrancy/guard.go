package reentrancy

import (
	"errors"
	"sync"
)

// ErrReentrantCall is returned when an entry point is invoked again while a
// previous invocation on the same guard is still in flight.
var ErrReentrantCall = errors.New("reentrant call rejected")

// Guard refuses overlapping invocation of money-moving entry points. It
// covers both hazards: a value transfer handing control to code that calls
// back into the same service before state settles, and a second goroutine
// entering a read-modify-write sequence while the first is mid-flight.
// Overlap is refused, never queued; the caller retries.
type Guard struct {
	mu sync.Mutex
}

// Enter marks the guard in flight. Callers must pair it with Exit.
func (g *Guard) Enter() error {
	if !g.mu.TryLock() {
		return ErrReentrantCall
	}
	return nil
}

// Exit clears the in-flight marker.
func (g *Guard) Exit() {
	g.mu.Unlock()
}
