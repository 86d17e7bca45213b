package sbi

import (
	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// PMU exposes the fixed hardware counters and the firmware event
// counters kept in each hart's context.
type PMU struct {
	fw *Firmware
}

const (
	eventCycles       = 1
	eventInstructions = 2
	eventTypeGeneral  = 0
)

func (p *PMU) Handle(c *Call) abi.Ret {
	a := c.Args
	st := &c.Hart.PMU
	switch c.FID {
	case abi.PMUNumCounters:
		return abi.Ok(uint64(st.Total()))
	case abi.PMUCounterGetInfo:
		return p.info(st, a[0])
	case abi.PMUCounterConfigMatching:
		return p.configMatching(c, a[0], a[1], a[2], a[3])
	case abi.PMUCounterStart:
		return p.start(c, a[0], a[1], a[2], a[3])
	case abi.PMUCounterStop:
		return p.stop(c, a[0], a[1], a[2])
	case abi.PMUCounterFWRead:
		if v, ok := st.FirmwareValue(a[0]); ok {
			return abi.Ok(v)
		}
		return abi.Fail(abi.InvalidParam)
	case abi.PMUCounterFWReadHi:
		if st.IsFirmware(a[0]) {
			return abi.Ok(0)
		}
		return abi.Fail(abi.InvalidParam)
	}
	return abi.Fail(abi.NotSupported)
}

// info packs csr | width-1 << 12 for a hardware counter and sets the top
// bit for a firmware one.
func (p *PMU) info(st *hart.PMUState, idx uint64) abi.Ret {
	switch {
	case idx < uint64(st.HardwareCounters()):
		return abi.Ok(uint64(riscv.CSRCycle) + idx | 63<<12)
	case st.IsFirmware(idx):
		return abi.Ok(1 << 63)
	}
	return abi.Fail(abi.InvalidParam)
}

// each calls fn with every counter named by base and mask and reports
// false if one of them does not exist.
func each(st *hart.PMUState, base, mask uint64, fn func(idx uint64)) bool {
	total := uint64(st.Total())
	if base >= total || mask == 0 {
		return false
	}
	for bit := uint64(0); bit < 64; bit++ {
		if mask&(1<<bit) != 0 && base+bit >= total {
			return false
		}
	}
	for bit := uint64(0); bit < 64; bit++ {
		if mask&(1<<bit) != 0 {
			fn(base + bit)
		}
	}
	return true
}

func (p *PMU) configMatching(c *Call, base, mask, flags, event uint64) abi.Ret {
	st := &c.Hart.PMU
	if flags&^(abi.PMUCfgSkipMatch|abi.PMUCfgClearValue|abi.PMUCfgAutoStart) != 0 {
		return abi.Fail(abi.InvalidParam)
	}
	switch hart.EventType(event) {
	case eventTypeGeneral, abi.PMUEventTypeFirmware:
	default:
		return abi.Fail(abi.InvalidParam)
	}
	found := hart.NoEvent
	if !each(st, base, mask, func(idx uint64) {
		if found != hart.NoEvent {
			return
		}
		if flags&abi.PMUCfgSkipMatch != 0 || p.matches(st, idx, event) {
			found = idx
		}
	}) {
		return abi.Fail(abi.InvalidParam)
	}
	if found == hart.NoEvent {
		return abi.Fail(abi.NotSupported)
	}
	if st.IsFirmware(found) {
		st.SetEvent(found, event)
		if flags&abi.PMUCfgClearValue != 0 {
			st.SetFirmwareValue(found, 0)
		}
		if flags&abi.PMUCfgAutoStart != 0 {
			st.SetFirmwareRunning(found, true)
		}
		return abi.Ok(found)
	}
	if flags&abi.PMUCfgClearValue != 0 {
		p.writeHardware(c.Core, found, 0)
	}
	if flags&abi.PMUCfgAutoStart != 0 {
		p.inhibit(c, found, false)
	}
	return abi.Ok(found)
}

// matches reports whether counter idx can count event.
func (p *PMU) matches(st *hart.PMUState, idx, event uint64) bool {
	if hart.EventType(event) == abi.PMUEventTypeFirmware {
		return st.IsFirmware(idx) && hart.EventCode(event) < abi.PMUFWEventCount &&
			!st.FirmwareRunning(idx) && st.Event(idx) == hart.NoEvent
	}
	if hart.EventType(event) != eventTypeGeneral || st.IsFirmware(idx) {
		return false
	}
	switch hart.EventCode(event) {
	case eventCycles:
		return idx == 0
	case eventInstructions:
		return idx == 2
	}
	return false
}

func (p *PMU) start(c *Call, base, mask, flags, initial uint64) abi.Ret {
	st := &c.Hart.PMU
	if flags&^abi.PMUStartSetInitValue != 0 {
		return abi.Fail(abi.NoSharedMemory)
	}
	ret := abi.Ok(0)
	if !each(st, base, mask, func(idx uint64) {
		if st.IsFirmware(idx) {
			if st.FirmwareRunning(idx) {
				ret = abi.Fail(abi.AlreadyStarted)
				return
			}
			if flags&abi.PMUStartSetInitValue != 0 {
				st.SetFirmwareValue(idx, initial)
			}
			st.SetFirmwareRunning(idx, true)
			return
		}
		if flags&abi.PMUStartSetInitValue != 0 {
			p.writeHardware(c.Core, idx, initial)
		}
		if !p.inhibit(c, idx, false) {
			ret = abi.Fail(abi.AlreadyStarted)
		}
	}) {
		return abi.Fail(abi.InvalidParam)
	}
	return ret
}

func (p *PMU) stop(c *Call, base, mask, flags uint64) abi.Ret {
	st := &c.Hart.PMU
	if flags&^abi.PMUStopReset != 0 {
		return abi.Fail(abi.NoSharedMemory)
	}
	ret := abi.Ok(0)
	if !each(st, base, mask, func(idx uint64) {
		if st.IsFirmware(idx) {
			if !st.FirmwareRunning(idx) {
				ret = abi.Fail(abi.AlreadyStopped)
				return
			}
			st.SetFirmwareRunning(idx, false)
			if flags&abi.PMUStopReset != 0 {
				st.SetEvent(idx, hart.NoEvent)
			}
			return
		}
		if !p.inhibit(c, idx, true) {
			ret = abi.Fail(abi.AlreadyStopped)
		}
	}) {
		return abi.Fail(abi.InvalidParam)
	}
	return ret
}

// inhibit sets or clears idx's bit in mcountinhibit and reports whether it
// changed.  Harts older than 1.11 have no mcountinhibit; their counters
// always run.
func (p *PMU) inhibit(c *Call, idx uint64, stop bool) bool {
	if idx == 1 || c.Hart.Features.PrivilegedVersion() < hart.Priv1_11 {
		return !stop
	}
	bit := uint64(1) << idx
	stopped := c.Core.ReadCSR(riscv.CSRMcountinhibit)&bit != 0
	if stopped == stop {
		return false
	}
	if stop {
		c.Core.SetCSR(riscv.CSRMcountinhibit, bit)
	} else {
		c.Core.ClearCSR(riscv.CSRMcountinhibit, bit)
	}
	return true
}

// writeHardware sets mcycle or minstret.  time is read only.
func (p *PMU) writeHardware(core riscv.Core, idx, v uint64) {
	switch idx {
	case 0:
		core.WriteCSR(riscv.CSRMcycle, v)
	case 2:
		core.WriteCSR(riscv.CSRMinstret, v)
	}
}
