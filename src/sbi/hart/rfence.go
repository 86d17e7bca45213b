package hart

import (
	"sync/atomic"

	"accord/src/upbeat"
)

// FenceKind is the instruction sequence a remote fence asks for.
type FenceKind uint8

const (
	FenceI FenceKind = iota
	SFenceVMA
	SFenceVMAASID
	HFenceGVMAVMID
	HFenceGVMA
	HFenceVVMAASID
	HFenceVVMA
)

var fenceNames = [...]string{
	"fence.i", "sfence.vma", "sfence.vma.asid",
	"hfence.gvma.vmid", "hfence.gvma", "hfence.vvma.asid", "hfence.vvma",
}

func (k FenceKind) String() string {
	if int(k) < len(fenceNames) {
		return fenceNames[k]
	}
	return "invalid"
}

// WholeRange as a size covers every address.
const WholeRange = ^uint64(0)

// Request is one queued remote fence.  From is the initiating hart, the one
// whose counter is bumped when the fence is done.
type Request struct {
	Kind  FenceKind
	Start uint64
	Size  uint64
	ASID  uint64
	VMID  uint64
	From  int
}

// FullFlush is true when the range should be replaced by a flush of
// everything: an empty range at zero, the whole range, or anything larger
// than limit bytes.
func (r Request) FullFlush(limit uint64) bool {
	return (r.Start == 0 && r.Size == 0) || r.Size == WholeRange || r.Size > limit
}

// RFenceCell is a hart's queue of fences to perform, plus the counters it
// uses when it is itself the initiator.  Any hart may push; only the owner
// pops.
type RFenceCell struct {
	lock      upbeat.SpinLock
	queue     RequestFIFO
	expected  atomic.Uint64
	completed atomic.Uint64
}

// Push queues r.  It fails with FIFOFull rather than waiting; the caller
// should drain its own queue and retry.
func (c *RFenceCell) Push(r Request) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.queue.Push(r)
}

// Pop is owner only.
func (c *RFenceCell) Pop() (Request, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	r, err := c.queue.Pop()
	return r, err == nil
}

func (c *RFenceCell) Empty() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.queue.Empty()
}

// Expect records one more acknowledgement the owner must wait for.
func (c *RFenceCell) Expect() {
	c.expected.Add(1)
}

// Ack is called by a target, on the initiator's cell, after its fence
// instructions have retired.
func (c *RFenceCell) Ack() {
	c.completed.Add(1)
}

// Synced is true once every expected acknowledgement has arrived.
func (c *RFenceCell) Synced() bool {
	return c.completed.Load() == c.expected.Load()
}

// Outstanding is the number of acknowledgements still missing.
func (c *RFenceCell) Outstanding() uint64 {
	return c.expected.Load() - c.completed.Load()
}

// Completed counts every acknowledgement ever received.
func (c *RFenceCell) Completed() uint64 {
	return c.completed.Load()
}

// Reset drops queued requests and zeroes the counters.  Only safe while no
// other hart can reach the cell.
func (c *RFenceCell) Reset() {
	c.lock.Lock()
	c.queue.Reset()
	c.lock.Unlock()
	c.ResetCounters()
}

// ResetCounters zeroes the initiator side.  The queue is left alone since
// peers may still be pushing to it.
func (c *RFenceCell) ResetCounters() {
	c.expected.Store(0)
	c.completed.Store(0)
}
