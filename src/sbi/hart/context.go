// Package hart holds the per-hart state shared between harts: the saved
// trap frame, the HSM and RFENCE rendezvous cells, the pending IPI reasons
// and the probed features.  Everything lives in one fixed Arena indexed by
// hart id; nothing here allocates after boot.
package hart

import (
	"sync/atomic"

	"accord/src/sbi/cfg"
	"accord/src/upbeat"
)

// General register numbers used by the firmware.
const (
	RegZero = 0
	RegRA   = 1
	RegSP   = 2
	RegGP   = 3
	RegTP   = 4
	RegA0   = 10
	RegA1   = 11
	RegA2   = 12
	RegA3   = 13
	RegA4   = 14
	RegA5   = 15
	RegA6   = 16
	RegA7   = 17
)

// Frame is the interrupted context.  Only the owning hart touches it.
type Frame struct {
	PC uint64
	X  [32]uint64
}

// Reg reads x[n]; x0 is always zero.
func (f *Frame) Reg(n int) uint64 {
	if n == RegZero {
		return 0
	}
	return f.X[n]
}

// SetReg writes x[n]; writes to x0 are dropped.
func (f *Frame) SetReg(n int, v uint64) {
	if n != RegZero {
		f.X[n] = v
	}
}

// Args returns a0 through a5.
func (f *Frame) Args() [6]uint64 {
	var a [6]uint64
	copy(a[:], f.X[RegA0:RegA5+1])
	return a
}

// IPI reasons, OR-ed into Context.ipi.
const (
	IPISupervisor uint32 = 1 << 0
	IPIFence      uint32 = 1 << 1
)

// Context is everything the firmware keeps for one hart.
type Context struct {
	Frame    Frame
	HSM      HSMCell
	RFence   RFenceCell
	Features Features
	PMU      PMUState

	ipi atomic.Uint32
	id  int
}

func (c *Context) ID() int {
	return c.id
}

// PostIPI records reason and returns the reasons that were already pending.
// A zero result means the caller must raise the device interrupt.
func (c *Context) PostIPI(reason uint32) uint32 {
	for {
		old := c.ipi.Load()
		if c.ipi.CompareAndSwap(old, old|reason) {
			return old
		}
	}
}

// TakeIPI returns and clears every pending reason.
func (c *Context) TakeIPI() uint32 {
	return c.ipi.Swap(0)
}

// PendingIPI is for diagnostics only.
func (c *Context) PendingIPI() uint32 {
	return c.ipi.Load()
}

// Reset drops the per-boot state the hart owns: its initiator counters,
// PMU counters and frame.  Pending IPI reasons and queued fences belong to
// whoever posted them and survive; the owner serves them as usual.
func (c *Context) Reset() {
	c.RFence.ResetCounters()
	c.PMU.Reset()
	c.Frame = Frame{}
}

// Arena is the statically sized array of hart contexts.
type Arena struct {
	harts   [cfg.MaxHarts]Context
	enabled upbeat.BitSet
	boot    int
}

// NewArena returns an arena with every hart STOPPED and disabled.
func NewArena() *Arena {
	a := &Arena{}
	a.Init()
	return a
}

// Init resets an arena in place.
func (a *Arena) Init() {
	for i := range a.harts {
		c := &a.harts[i]
		c.id = i
		c.HSM.init()
		c.ipi.Store(0)
		c.RFence.Reset()
		c.PMU.Reset()
	}
	a.enabled.ClearAll()
	a.boot = -1
}

// Get returns nil for ids outside the arena.
func (a *Arena) Get(id uint64) *Context {
	if id >= cfg.MaxHarts {
		return nil
	}
	return &a.harts[id]
}

// Enable marks a hart as present.  Only enabled harts can be addressed by
// calls.
func (a *Arena) Enable(id int) {
	if id >= 0 && id < cfg.MaxHarts {
		a.enabled.Set(upbeat.BitIndex(id))
	}
}

func (a *Arena) Enabled(id uint64) bool {
	return id < cfg.MaxHarts && a.enabled.On(upbeat.BitIndex(id))
}

// EnabledCount is the number of present harts.
func (a *Arena) EnabledCount() int {
	return a.enabled.Count()
}

// Each visits every enabled hart in id order.
func (a *Arena) Each(fn func(*Context)) {
	for i := range a.harts {
		if a.enabled.On(upbeat.BitIndex(i)) {
			fn(&a.harts[i])
		}
	}
}

// SetBoot marks id as the boot hart, STARTED from the outset.
func (a *Arena) SetBoot(id int) {
	a.boot = id
	a.harts[id].HSM.status.Store(uint64(stateStarted))
}

// Boot is the boot hart, or -1 before SetBoot.
func (a *Arena) Boot() int {
	return a.boot
}
