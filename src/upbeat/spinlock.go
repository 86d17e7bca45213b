package upbeat

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is for the few places two harts can race to write the same
// structure (a target's fence queue).  It never sleeps; there is nothing to
// sleep on in machine mode.
type SpinLock struct {
	held atomic.Uint32
}

func (s *SpinLock) Lock() {
	for !s.held.CompareAndSwap(0, 1) {
		Relax()
	}
}

// TryLock takes the lock if it is free and reports whether it did.
func (s *SpinLock) TryLock() bool {
	return s.held.CompareAndSwap(0, 1)
}

func (s *SpinLock) Unlock() {
	if s.held.Swap(0) == 0 {
		panic("unlock of unlocked spinlock")
	}
}

// Relax is called in every spin loop.  On hardware it is just a loop
// iteration; hosted it yields so a simulated hart cannot starve the one it
// is waiting for.
var Relax = runtime.Gosched
