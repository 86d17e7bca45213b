package sbi

import (
	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// HandleTrap is the machine mode trap handler, entered with the
// interrupted registers saved in the hart's Frame.  When it returns the
// stub resumes the Frame, which may by now be a different context
// altogether.
func (f *Firmware) HandleTrap(core riscv.Core) {
	ctx := f.context(core)
	mcause := core.ReadCSR(riscv.CSRMcause)
	irq, code := riscv.IsInterrupt(mcause)
	if irq {
		switch code {
		case riscv.IntMachineSoft:
			f.machineSoft(core, ctx)
		case riscv.IntMachineTimer:
			f.machineTimer(core, ctx)
		default:
			f.fatal(core, "unexpected interrupt %d", code)
		}
		return
	}
	switch code {
	case riscv.ExcEcallFromS:
		f.supervisorCall(core, ctx)
	case riscv.ExcIllegalInsn:
		f.illegalInstruction(core, ctx, core.ReadCSR(riscv.CSRMtval))
	case riscv.ExcLoadMisaligned, riscv.ExcStoreMisaligned:
		f.misaligned(core, ctx, code, core.ReadCSR(riscv.CSRMtval))
	default:
		f.fatal(core, "unhandled exception %d", code)
	}
}

// machineSoft handles the doorbell.  A pending start or resume command
// wins; otherwise the posted reasons are served.
func (f *Firmware) machineSoft(core riscv.Core, ctx *hart.Context) {
	if next, _, ok := ctx.HSM.Take(); ok {
		f.serveSoft(core, ctx)
		f.enter(core, ctx, next)
		return
	}
	f.serveSoft(core, ctx)
}

// serveSoft acknowledges the doorbell and acts on every reason posted
// since the last one.  The doorbell is cleared before the reasons are
// taken, so a reason is never pending with the doorbell quiet.  Fences are done before the supervisor sees its
// interrupt.
func (f *Firmware) serveSoft(core riscv.Core, ctx *hart.Context) {
	f.devices.IPI.ClearMSIP(ctx.ID())
	reasons := ctx.TakeIPI()
	if reasons&hart.IPIFence != 0 {
		f.rfence.serve(core, ctx)
	}
	if reasons&hart.IPISupervisor != 0 {
		core.SetCSR(riscv.CSRMip, riscv.MipSSIP)
		ctx.PMU.Count(abi.PMUFWIPIReceived)
	}
}

// machineTimer forwards the timer to the supervisor.  The comparator is
// parked until the next set_timer.
func (f *Firmware) machineTimer(core riscv.Core, ctx *hart.Context) {
	f.devices.IPI.SetMTimeCmp(ctx.ID(), ^uint64(0))
	core.SetCSR(riscv.CSRMip, riscv.MipSTIP)
}

func (f *Firmware) supervisorCall(core riscv.Core, ctx *hart.Context) {
	c := Call{
		Hart: ctx,
		Core: core,
		EID:  ctx.Frame.Reg(hart.RegA7),
		FID:  ctx.Frame.Reg(hart.RegA6),
		Args: ctx.Frame.Args(),
	}
	ret := f.registry.Route(&c)
	switch c.after {
	case afterReturn:
		a0, a1 := ret.Registers()
		ctx.Frame.SetReg(hart.RegA0, a0)
		ctx.Frame.SetReg(hart.RegA1, a1)
		ctx.Frame.PC += 4
	case afterEnter:
		f.enter(core, ctx, c.next)
	case afterPark:
		f.park(core, ctx)
	case afterHalt:
		f.halt(core)
	}
}

// delegate replays the trap into supervisor mode as if medeleg had sent it
// there directly.
func (f *Firmware) delegate(core riscv.Core, ctx *hart.Context, cause, tval uint64) {
	core.WriteCSR(riscv.CSRSepc, ctx.Frame.PC)
	core.WriteCSR(riscv.CSRScause, cause)
	core.WriteCSR(riscv.CSRStval, tval)

	mstatus := core.ReadCSR(riscv.CSRMstatus)
	prev := riscv.MPP(mstatus)
	mstatus &^= riscv.MstatusSPIE | riscv.MstatusSPP
	if mstatus&riscv.MstatusSIE != 0 {
		mstatus |= riscv.MstatusSPIE
	}
	mstatus &^= riscv.MstatusSIE
	if prev == riscv.ModeSupervisor {
		mstatus |= riscv.MstatusSPP
	}
	core.WriteCSR(riscv.CSRMstatus, riscv.WithMPP(mstatus, riscv.ModeSupervisor))
	ctx.Frame.PC = core.ReadCSR(riscv.CSRStvec) &^ 3
}
