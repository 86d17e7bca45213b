package hart

import (
	"sync/atomic"

	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/upbeat"
)

// NextStage is where a hart goes when it leaves the firmware.
type NextStage struct {
	StartAddr uint64
	Opaque    uint64
	Mode      riscv.Mode
}

// Occupancy of an HSM cell's NextStage slot.
type Occupancy uint32

const (
	Empty Occupancy = iota
	CommandPending
	Consumed
)

func (o Occupancy) String() string {
	switch o {
	case Empty:
		return "empty"
	case CommandPending:
		return "command-pending"
	case Consumed:
		return "consumed"
	}
	return "invalid"
}

const (
	stateStarted = uint64(abi.Started)
	stateStopped = uint64(abi.Stopped)
	// stateWriting is held by a commander while it fills in next.  Readers
	// see START_PENDING.
	stateWriting = ^uint64(0)
)

// HSMCell is the rendezvous between a hart and whoever commands it.  The
// status word is the only synchronization: a commander claims the cell by
// swapping it to stateWriting, fills in next and publishes with a pending
// state; the owner consumes next only after it sees that state.
type HSMCell struct {
	status    atomic.Uint64
	occupancy atomic.Uint32
	next      NextStage
}

func (c *HSMCell) init() {
	c.status.Store(stateStopped)
	c.occupancy.Store(uint32(Empty))
	c.next = NextStage{}
}

// Status never blocks.
func (c *HSMCell) Status() abi.HartState {
	s := c.status.Load()
	if s == stateWriting {
		return abi.StartPending
	}
	return abi.HartState(s)
}

// Occupancy reports what the NextStage slot holds.
func (c *HSMCell) Occupancy() Occupancy {
	return Occupancy(c.occupancy.Load())
}

// AllowIPI is true when the owner will act on a software interrupt.
func (c *HSMCell) AllowIPI() bool {
	s := c.status.Load()
	return s == stateStarted || s == uint64(abi.Suspended)
}

func (c *HSMCell) publish(from abi.HartState, to abi.HartState, next NextStage) bool {
	if !c.status.CompareAndSwap(uint64(from), stateWriting) {
		return false
	}
	c.next = next
	c.occupancy.Store(uint32(CommandPending))
	c.status.Store(uint64(to))
	return true
}

// Start is called by a commander.  It succeeds only on a STOPPED hart and
// leaves it START_PENDING with next stored.
func (c *HSMCell) Start(next NextStage) bool {
	return c.publish(abi.Stopped, abi.StartPending, next)
}

// Resume moves a SUSPENDED hart to RESUME_PENDING with next stored.  The
// owner uses it for its own non-retentive wake up.
func (c *HSMCell) Resume(next NextStage) bool {
	return c.publish(abi.Suspended, abi.ResumePending, next)
}

// Take is called by the owner at trap or boot entry.  If a command is
// pending it is consumed, the hart becomes STARTED and the NextStage is
// returned.  Otherwise ok is false and state says what the hart should be
// doing.  A commander halfway through writing is waited for.
func (c *HSMCell) Take() (next NextStage, state abi.HartState, ok bool) {
	for {
		s := c.status.Load()
		switch s {
		case stateWriting:
			upbeat.Relax()
			continue
		case uint64(abi.StartPending), uint64(abi.ResumePending):
			if !c.status.CompareAndSwap(s, stateStarted) {
				continue
			}
			next = c.next
			c.next = NextStage{}
			c.occupancy.Store(uint32(Consumed))
			return next, abi.Started, true
		}
		return NextStage{}, abi.HartState(s), false
	}
}

// The rest are owner-only transitions.

func (c *HSMCell) BeginStop() {
	c.status.Store(uint64(abi.StopPending))
}

func (c *HSMCell) Stop() {
	c.status.Store(stateStopped)
}

func (c *HSMCell) BeginSuspend() {
	c.status.Store(uint64(abi.SuspendPending))
}

func (c *HSMCell) Suspend() {
	c.status.Store(uint64(abi.Suspended))
}

// Wake is the retentive resume: SUSPENDED, through RESUME_PENDING, back to
// STARTED.  It reports false if the hart was not SUSPENDED.
func (c *HSMCell) Wake() bool {
	if !c.status.CompareAndSwap(uint64(abi.Suspended), uint64(abi.ResumePending)) {
		return false
	}
	c.status.Store(stateStarted)
	return true
}
