package sbi

import (
	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/cfg"
	"accord/src/sbi/hart"
)

// RFence runs fence instructions on other harts and waits until they have
// all retired.
type RFence struct {
	fw *Firmware
}

var fenceKinds = [...]hart.FenceKind{
	abi.RFenceFenceI:         hart.FenceI,
	abi.RFenceSFenceVMA:      hart.SFenceVMA,
	abi.RFenceSFenceVMAASID:  hart.SFenceVMAASID,
	abi.RFenceHFenceGVMAVMID: hart.HFenceGVMAVMID,
	abi.RFenceHFenceGVMA:     hart.HFenceGVMA,
	abi.RFenceHFenceVVMAASID: hart.HFenceVVMAASID,
	abi.RFenceHFenceVVMA:     hart.HFenceVVMA,
}

// sentEvent is the PMU firmware event counted by the initiator; the
// target counts the one after it.
var sentEvent = [...]uint64{
	hart.FenceI:         abi.PMUFWFenceISent,
	hart.SFenceVMA:      abi.PMUFWSFenceVMASent,
	hart.SFenceVMAASID:  abi.PMUFWSFenceVMAASIDSent,
	hart.HFenceGVMAVMID: abi.PMUFWHFenceGVMAVMIDSent,
	hart.HFenceGVMA:     abi.PMUFWHFenceGVMASent,
	hart.HFenceVVMAASID: abi.PMUFWHFenceVVMAASIDSent,
	hart.HFenceVVMA:     abi.PMUFWHFenceVVMASent,
}

func (r *RFence) Handle(c *Call) abi.Ret {
	if c.FID >= uint64(len(fenceKinds)) {
		return abi.Fail(abi.NotSupported)
	}
	a := c.Args
	mask := abi.HartMask{Mask: a[0], Base: a[1]}
	req := hart.Request{Kind: fenceKinds[c.FID], From: c.Hart.ID()}
	if req.Kind != hart.FenceI {
		req.Start, req.Size = a[2], a[3]
	}
	switch req.Kind {
	case hart.SFenceVMAASID, hart.HFenceVVMAASID:
		req.ASID = a[4]
	case hart.HFenceGVMAVMID:
		req.VMID = a[4]
	}
	return r.Fence(c, mask, req)
}

// Fence queues req on every hart in mask and returns once each of them has
// performed it.  The caller's own hart, if named, fences directly.
func (r *RFence) Fence(c *Call, mask abi.HartMask, req hart.Request) abi.Ret {
	switch req.Kind {
	case hart.HFenceGVMAVMID, hart.HFenceGVMA, hart.HFenceVVMAASID, hart.HFenceVVMA:
		if !c.Hart.Features.Has(hart.ExtHypervisor) {
			return abi.Fail(abi.NotSupported)
		}
	}
	if req.Kind != hart.FenceI && !validRange(req.Start, req.Size) {
		return abi.Fail(abi.InvalidAddress)
	}
	if mask.Empty() {
		return abi.Ok(0)
	}

	self := c.Hart
	req.From = self.ID()
	local := false
	err := r.fw.targets(mask, func(target *hart.Context) {
		self.PMU.Count(sentEvent[req.Kind])
		if target == self {
			local = true
			return
		}
		self.RFence.Expect()
		for target.RFence.Push(req) == hart.FIFOFull {
			// The target may itself be waiting on us.
			r.serve(c.Core, self)
			c.Core.Relax()
		}
		r.fw.ipi.post(target, hart.IPIFence)
	})
	if err != abi.Success {
		return abi.Fail(err)
	}
	if local {
		r.execute(c.Core, req)
	}
	for !self.RFence.Synced() {
		r.serve(c.Core, self)
		c.Core.Relax()
	}
	return abi.Ok(0)
}

// validRange wants a page aligned start and a range that does not wrap.
// The whole-range size is accepted from any aligned start.
func validRange(start, size uint64) bool {
	if start%cfg.PageSize != 0 {
		return false
	}
	return size == hart.WholeRange || start+size >= start
}

// serve drains ctx's fence queue, acknowledging each request to its
// initiator.
func (r *RFence) serve(core riscv.Core, ctx *hart.Context) {
	for {
		req, ok := ctx.RFence.Pop()
		if !ok {
			return
		}
		r.execute(core, req)
		ctx.PMU.Count(sentEvent[req.Kind] + 1)
		if from := r.fw.harts.Get(uint64(req.From)); from != nil {
			from.RFence.Ack()
		}
	}
}

func (r *RFence) execute(core riscv.Core, req hart.Request) {
	full := req.FullFlush(cfg.TLBFlushLimit)
	switch req.Kind {
	case hart.FenceI:
		core.FenceI()
	case hart.SFenceVMA:
		pages(core.SFenceVMA, full, riscv.FenceAll, req.Start, req.Size, 0, 0)
	case hart.SFenceVMAASID:
		pages(core.SFenceVMA, full, riscv.FenceID, req.Start, req.Size, 0, req.ASID)
	case hart.HFenceGVMAVMID:
		pages(core.HFenceGVMA, full, riscv.FenceID, req.Start, req.Size, 2, req.VMID)
	case hart.HFenceGVMA:
		pages(core.HFenceGVMA, full, riscv.FenceAll, req.Start, req.Size, 2, 0)
	case hart.HFenceVVMAASID:
		pages(core.HFenceVVMA, full, riscv.FenceID, req.Start, req.Size, 0, req.ASID)
	case hart.HFenceVVMA:
		pages(core.HFenceVVMA, full, riscv.FenceAll, req.Start, req.Size, 0, 0)
	}
}

// pages issues fence once over everything when full is set and once per
// page otherwise.  hfence.gvma takes guest physical addresses shifted
// right by two.
func pages(fence func(riscv.FenceScope, uint64, uint64), full bool, scope riscv.FenceScope,
	start, size uint64, shift uint, id uint64) {
	if full {
		fence(scope, 0, id)
		return
	}
	for addr := start; addr < start+size; addr += cfg.PageSize {
		fence(scope|riscv.FenceAddr, addr>>shift, id)
	}
}
