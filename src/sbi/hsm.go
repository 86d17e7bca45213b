package sbi

import (
	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// HSM is the hart state management extension.
type HSM struct {
	fw *Firmware
}

func (h *HSM) Handle(c *Call) abi.Ret {
	a := c.Args
	switch c.FID {
	case abi.HSMStart:
		return h.Start(a[0], a[1], a[2])
	case abi.HSMStop:
		return h.Stop(c)
	case abi.HSMGetStatus:
		return h.Status(a[0])
	case abi.HSMSuspend:
		return h.Suspend(c, uint64(uint32(a[0])), a[1], a[2])
	}
	return abi.Fail(abi.NotSupported)
}

// Start asks a STOPPED hart to begin at startAddr in supervisor mode.
func (h *HSM) Start(hartID, startAddr, opaque uint64) abi.Ret {
	return h.StartInMode(hartID, startAddr, opaque, riscv.ModeSupervisor)
}

// StartInMode is Start with the privilege mode of the next stage given.
// The target only sees the command on its next trap; by the time this
// returns it is START_PENDING or already STARTED.
func (h *HSM) StartInMode(hartID, startAddr, opaque uint64, mode riscv.Mode) abi.Ret {
	target := h.fw.harts.Get(hartID)
	if target == nil || !h.fw.harts.Enabled(hartID) {
		return abi.Fail(abi.InvalidParam)
	}
	if mode != riscv.ModeSupervisor && mode != riscv.ModeUser {
		return abi.Fail(abi.InvalidParam)
	}
	if !h.fw.platform.ValidAddress(startAddr) {
		return abi.Fail(abi.InvalidAddress)
	}
	next := hart.NextStage{StartAddr: startAddr, Opaque: opaque, Mode: mode}
	if !target.HSM.Start(next) {
		return abi.Fail(abi.AlreadyStarted)
	}
	h.fw.devices.IPI.SetMSIP(target.ID())
	return abi.Ok(0)
}

// Stop only returns on failure.  On success the hart is parked and the
// call resumes in whatever the next start command names.
func (h *HSM) Stop(c *Call) abi.Ret {
	if c.Hart.HSM.Status() != abi.Started {
		return abi.Fail(abi.Failed)
	}
	c.Hart.HSM.BeginStop()
	// Supervisor IPIs were for the stage that is going away.  An initiator
	// may have queued fences before it saw us leave STARTED.
	h.fw.devices.IPI.ClearMSIP(c.Hart.ID())
	c.Hart.TakeIPI()
	h.fw.rfence.serve(c.Core, c.Hart)
	c.Core.ClearCSR(riscv.CSRMip, riscv.MipSSIP|riscv.MipSTIP)
	h.fw.devices.IPI.SetMTimeCmp(c.Hart.ID(), ^uint64(0))
	c.Hart.HSM.Stop()
	h.fw.log.Debugf("hart %d stopped", c.Hart.ID())
	c.park()
	return abi.Ok(0)
}

// Status never blocks.
func (h *HSM) Status(hartID uint64) abi.Ret {
	target := h.fw.harts.Get(hartID)
	if target == nil || !h.fw.harts.Enabled(hartID) {
		return abi.Fail(abi.InvalidParam)
	}
	return abi.Ok(uint64(target.HSM.Status()))
}

// Suspend waits for an interrupt.  A retentive suspend returns to the
// caller; a non-retentive one restarts the hart at resumeAddr with its
// counters reset.
func (h *HSM) Suspend(c *Call, kind, resumeAddr, opaque uint64) abi.Ret {
	if !abi.SuspendTypeKnown(kind) {
		return abi.Fail(abi.InvalidParam)
	}
	if kind == abi.SuspendNonRetentive && !h.fw.platform.ValidAddress(resumeAddr) {
		return abi.Fail(abi.InvalidAddress)
	}
	ctx := c.Hart
	ctx.HSM.BeginSuspend()
	h.fw.serveSoft(c.Core, ctx)
	c.Core.SetCSR(riscv.CSRMie, riscv.MipMSIP)
	ctx.HSM.Suspend()
	c.Core.WaitForInterrupt()
	if c.Core.ReadCSR(riscv.CSRMip)&riscv.MipMSIP != 0 {
		h.fw.serveSoft(c.Core, ctx)
	}

	if kind == abi.SuspendRetentive {
		ctx.HSM.Wake()
		return abi.Ok(0)
	}
	next := hart.NextStage{StartAddr: resumeAddr, Opaque: opaque, Mode: riscv.ModeSupervisor}
	if !ctx.HSM.Resume(next) {
		return abi.Fail(abi.Failed)
	}
	if !h.restart(c) {
		h.fw.fatal(c.Core, "resume command lost")
		return abi.Fail(abi.Failed)
	}
	return abi.Ok(0)
}

// restart finishes a non-retentive wake up from RESUME_PENDING.
func (h *HSM) restart(c *Call) bool {
	ctx := c.Hart
	ctx.Reset()
	next, _, ok := ctx.HSM.Take()
	if !ok {
		return false
	}
	// Fences pushed by initiators that saw us SUSPENDED are still queued.
	h.fw.serveSoft(c.Core, ctx)
	c.enter(next)
	return true
}
