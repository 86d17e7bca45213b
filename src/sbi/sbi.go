// Package sbi is the machine mode side of the supervisor binary interface:
// the trap dispatcher, the extension registry and the hart state, IPI and
// remote fence coordinators that sit behind it.
//
// A Firmware is shared by every hart.  Each hart enters it through Boot once
// and through HandleTrap on every trap, passing the riscv.Core it is running
// on.  The trap entry stub is expected to have saved the interrupted
// registers into that hart's Frame and to restore them, with mepc taken from
// Frame.PC, when HandleTrap returns.
package sbi

import (
	"errors"
	"fmt"
	"io"

	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/cfg"
	"accord/src/sbi/hart"
	"accord/src/trust"
)

// IPIDevice is the per-hart software interrupt and timer block, a CLINT or
// an ACLINT.
type IPIDevice interface {
	SetMSIP(hart int)
	ClearMSIP(hart int)
	MTime() uint64
	SetMTimeCmp(hart int, v uint64)
}

// ConsoleDevice reads without waiting; a Read of zero bytes means nothing
// is pending.
type ConsoleDevice interface {
	io.Reader
	io.Writer
}

// ResetDevice ends the machine.  On hardware none of these return.
type ResetDevice interface {
	Pass()
	Fail(code uint16)
	Reset(warm bool)
}

// Memory is physical memory as the firmware sees it.  It is used for the
// console buffers and to emulate misaligned accesses.
type Memory interface {
	io.ReaderAt
	io.WriterAt
}

// Platform describes the board.
type Platform interface {
	// Harts lists the enabled hart ids.
	Harts() []int
	BootHart() int
	// NextStage is where the boot hart goes once the firmware is up.
	NextStage() hart.NextStage
	// ValidAddress is the check applied to hart_start and resume addresses.
	ValidAddress(addr uint64) bool
	// Extensions lists the optional ISA features hart has.
	Extensions(hart int) []hart.Extension
	PrivilegedVersion(hart int) hart.PrivilegedVersion
}

// Devices are the collaborators the firmware drives.  Only IPI is required;
// an extension whose device is missing is left out of the registry.
type Devices struct {
	IPI     IPIDevice
	Console ConsoleDevice
	Reset   ResetDevice
	Memory  Memory
}

// fatalExitCode is handed to ResetDevice.Fail when the firmware gives up.
const fatalExitCode = 0xfa

// Firmware is the state shared by every hart.
type Firmware struct {
	harts    *hart.Arena
	registry Registry
	platform Platform
	devices  Devices
	log      trust.Logger

	hsm     *HSM
	ipi     *IPI
	rfence  *RFence
	pmu     *PMU
	console *Console
}

var ErrNoIPIDevice = errors.New("sbi: no ipi device")

// New builds the firmware for p.  The registry is filled from what d
// provides.
func New(p Platform, d Devices, log trust.Logger) (*Firmware, error) {
	if d.IPI == nil {
		return nil, ErrNoIPIDevice
	}
	if log == nil {
		log = trust.Default()
	}
	f := &Firmware{
		harts:    hart.NewArena(),
		platform: p,
		devices:  d,
		log:      log,
	}
	boot := p.BootHart()
	bootEnabled := false
	for _, id := range p.Harts() {
		if id < 0 || id >= cfg.MaxHarts {
			return nil, fmt.Errorf("sbi: hart %d outside the %d configured", id, cfg.MaxHarts)
		}
		f.harts.Enable(id)
		if id == boot {
			bootEnabled = true
		}
	}
	if !bootEnabled {
		return nil, fmt.Errorf("sbi: boot hart %d is not enabled", boot)
	}
	f.harts.SetBoot(boot)
	for _, id := range p.Harts() {
		ctx := f.harts.Get(uint64(id))
		for _, e := range p.Extensions(id) {
			ctx.Features.Set(e, true)
		}
		ctx.Features.SetPrivilegedVersion(p.PrivilegedVersion(id))
		ctx.Features.SetMHPMMask(0b111)
	}

	f.hsm = &HSM{fw: f}
	f.ipi = &IPI{fw: f}
	f.rfence = &RFence{fw: f}
	f.pmu = &PMU{fw: f}
	f.registry.Bind(abi.EIDBase, &Base{fw: f})
	f.registry.Bind(abi.EIDTime, &Timer{fw: f})
	f.registry.Bind(abi.EIDIPI, f.ipi)
	f.registry.Bind(abi.EIDRFence, f.rfence)
	f.registry.Bind(abi.EIDHSM, f.hsm)
	f.registry.Bind(abi.EIDPMU, f.pmu)
	if d.Console != nil {
		f.console = &Console{fw: f}
		f.registry.Bind(abi.EIDConsole, f.console)
		f.registry.Bind(abi.EIDLegacyPutchar, legacyPutchar{f.console})
		f.registry.Bind(abi.EIDLegacyGetchar, legacyGetchar{f.console})
	}
	if d.Reset != nil {
		f.registry.Bind(abi.EIDReset, &Reset{fw: f})
		f.registry.Bind(abi.EIDSuspend, &Suspend{fw: f})
	}
	return f, nil
}

func (f *Firmware) Harts() *hart.Arena   { return f.harts }
func (f *Firmware) Registry() *Registry  { return &f.registry }
func (f *Firmware) HSM() *HSM            { return f.hsm }
func (f *Firmware) IPI() *IPI            { return f.ipi }
func (f *Firmware) RFence() *RFence      { return f.rfence }
func (f *Firmware) Logger() trust.Logger { return f.log }

// context returns the calling hart's context.  A hart outside the arena
// cannot have got here through Boot.
func (f *Firmware) context(core riscv.Core) *hart.Context {
	ctx := f.harts.Get(uint64(core.HartID()))
	if ctx == nil || !f.harts.Enabled(uint64(core.HartID())) {
		f.log.Errorf("hart %d is not enabled", core.HartID())
		f.halt(core)
	}
	return ctx
}

// Boot is the first thing each hart runs after its stack is set up.  It
// sets the machine mode state, then either hands the boot hart to the
// next stage or parks every other hart until it is started.  On return the
// hart's Frame holds the context to enter.
func (f *Firmware) Boot(core riscv.Core) {
	ctx := f.context(core)
	id := ctx.ID()
	f.setupHart(core, ctx)
	if id != f.harts.Boot() {
		f.log.Debugf("hart %d parked", id)
		f.park(core, ctx)
		return
	}
	next := f.platform.NextStage()
	f.log.Infof("boot hart %d, %d harts enabled, next stage %#x in %s mode",
		id, f.harts.EnabledCount(), next.StartAddr, next.Mode)
	f.enter(core, ctx, next)
}

func (f *Firmware) setupHart(core riscv.Core, ctx *hart.Context) {
	if core.ReadCSR(riscv.CSRMisa)&(1<<('H'-'A')) != 0 {
		ctx.Features.Set(hart.ExtHypervisor, true)
	}
	ctx.PMU.SetHardwareCounters(popCount(ctx.Features.MHPMMask()))

	core.WriteCSR(riscv.CSRMideleg, riscv.MipSSIP|riscv.MipSTIP|riscv.MipSEIP)
	core.WriteCSR(riscv.CSRMedeleg, delegatedExceptions)
	core.WriteCSR(riscv.CSRMcounteren, ^uint64(0))
	if ctx.Features.PrivilegedVersion() >= hart.Priv1_12 {
		envcfg := riscv.MenvcfgCBIEInvalidate | riscv.MenvcfgCBCFE | riscv.MenvcfgCBZE
		if ctx.Features.Has(hart.ExtSstc) {
			envcfg |= riscv.MenvcfgSTCE
		}
		core.SetCSR(riscv.CSRMenvcfg, envcfg)
	}
	f.devices.IPI.SetMTimeCmp(ctx.ID(), ^uint64(0))
	core.WriteCSR(riscv.CSRMie, riscv.MipMSIP|riscv.MipMTIP)
}

// Exceptions handed straight to the supervisor.  Illegal instructions and
// misaligned accesses come here first for emulation.
const delegatedExceptions = 1<<riscv.ExcInsnMisaligned |
	1<<riscv.ExcBreakpoint |
	1<<riscv.ExcEcallFromU |
	1<<riscv.ExcInsnPageFault |
	1<<riscv.ExcLoadPageFault |
	1<<riscv.ExcStorePageFault

func popCount(m uint32) int {
	n := 0
	for ; m != 0; m &= m - 1 {
		n++
	}
	return n
}

// enter sets up the frame so that returning from the trap lands at next
// with a0 = hart id and a1 = opaque, supervisor interrupts off and
// translation off.
func (f *Firmware) enter(core riscv.Core, ctx *hart.Context, next hart.NextStage) {
	core.ClearCSR(riscv.CSRSstatus, riscv.MstatusSIE)
	core.WriteCSR(riscv.CSRSatp, 0)
	mstatus := core.ReadCSR(riscv.CSRMstatus) | riscv.MstatusMPIE
	core.WriteCSR(riscv.CSRMstatus, riscv.WithMPP(mstatus, next.Mode))
	core.SetCSR(riscv.CSRMie, riscv.MipMSIP|riscv.MipMTIP)
	ctx.Frame = hart.Frame{PC: next.StartAddr}
	ctx.Frame.SetReg(hart.RegA0, uint64(ctx.ID()))
	ctx.Frame.SetReg(hart.RegA1, next.Opaque)
}

// park waits for a start command.  Fences queued by an initiator that saw
// the hart still running are served while waiting.  It returns with the
// frame set up for the new stage.
func (f *Firmware) park(core riscv.Core, ctx *hart.Context) {
	core.SetCSR(riscv.CSRMie, riscv.MipMSIP)
	for {
		if next, _, ok := ctx.HSM.Take(); ok {
			// Anything posted while the hart was on its way down is
			// served here; a reason left behind would keep the doorbell
			// from ever ringing again.
			f.serveSoft(core, ctx)
			f.log.Debugf("hart %d starting at %#x", ctx.ID(), next.StartAddr)
			f.enter(core, ctx, next)
			return
		}
		core.WaitForInterrupt()
		if core.ReadCSR(riscv.CSRMip)&riscv.MipMSIP != 0 {
			f.devices.IPI.ClearMSIP(ctx.ID())
			if ctx.TakeIPI()&hart.IPIFence != 0 {
				f.rfence.serve(core, ctx)
			}
		}
	}
}

// fatal is for traps and states the firmware cannot recover from.
func (f *Firmware) fatal(core riscv.Core, format string, params ...interface{}) {
	f.log.Errorf("hart %d: "+format, append([]interface{}{core.HartID()}, params...)...)
	f.log.Errorf("hart %d: mcause=%#x mepc=%#x mtval=%#x mstatus=%#x", core.HartID(),
		core.ReadCSR(riscv.CSRMcause), core.ReadCSR(riscv.CSRMepc),
		core.ReadCSR(riscv.CSRMtval), core.ReadCSR(riscv.CSRMstatus))
	if f.devices.Reset != nil {
		f.devices.Reset.Fail(fatalExitCode)
	}
	f.halt(core)
}

func (f *Firmware) halt(core riscv.Core) {
	core.ClearCSR(riscv.CSRMie, ^uint64(0))
	core.Halt()
}
