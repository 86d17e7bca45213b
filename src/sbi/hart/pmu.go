package hart

import (
	"accord/src/sbi/abi"
	"accord/src/sbi/cfg"
)

// NoEvent marks a counter with nothing configured.
const NoEvent = ^uint64(0)

const maxHardwareCounters = 32

// PMUState is the owner-only bookkeeping behind the PMU calls.  Counters
// are numbered hardware first, then firmware.
type PMUState struct {
	active    [maxHardwareCounters + cfg.PMUFirmwareCounters]uint64
	fw        [cfg.PMUFirmwareCounters]uint64
	fwRunning uint64
	hwCount   int
}

// EventType and EventCode split an event_idx.
func EventType(idx uint64) uint64 { return (idx >> 16) & 0xf }
func EventCode(idx uint64) uint64 { return idx & 0xffff }

// FirmwareEvent builds the event_idx of a firmware event code.
func FirmwareEvent(code uint64) uint64 {
	return abi.PMUEventTypeFirmware<<16 | code
}

// Reset stops and unconfigures every counter.  The number of hardware
// counters is kept.
func (p *PMUState) Reset() {
	hw := p.hwCount
	if hw == 0 {
		hw = cfg.PMUHardwareCounters
	}
	p.SetHardwareCounters(hw)
}

// SetHardwareCounters sizes the hardware part and resets everything.  The
// first three counters are mcycle, time and minstret with their fixed
// events.
func (p *PMUState) SetHardwareCounters(n int) {
	if n < 0 {
		n = 0
	}
	if n > maxHardwareCounters {
		n = maxHardwareCounters
	}
	p.hwCount = n
	for i := range p.active {
		p.active[i] = NoEvent
	}
	fixed := [...]uint64{1, 0, 2}
	for i := 0; i < n && i < len(fixed); i++ {
		p.active[i] = fixed[i]
	}
	p.fw = [cfg.PMUFirmwareCounters]uint64{}
	p.fwRunning = 0
}

func (p *PMUState) HardwareCounters() int {
	return p.hwCount
}

func (p *PMUState) Total() int {
	return p.hwCount + cfg.PMUFirmwareCounters
}

// IsFirmware reports whether idx names a firmware counter.
func (p *PMUState) IsFirmware(idx uint64) bool {
	return idx >= uint64(p.hwCount) && idx < uint64(p.Total())
}

func (p *PMUState) Event(idx uint64) uint64 {
	if idx >= uint64(p.Total()) {
		return NoEvent
	}
	return p.active[idx]
}

func (p *PMUState) SetEvent(idx uint64, event uint64) {
	if idx < uint64(p.Total()) {
		p.active[idx] = event
	}
}

func (p *PMUState) fwIndex(idx uint64) (int, bool) {
	if !p.IsFirmware(idx) {
		return 0, false
	}
	return int(idx) - p.hwCount, true
}

func (p *PMUState) FirmwareValue(idx uint64) (uint64, bool) {
	i, ok := p.fwIndex(idx)
	if !ok {
		return 0, false
	}
	return p.fw[i], true
}

func (p *PMUState) SetFirmwareValue(idx uint64, v uint64) {
	if i, ok := p.fwIndex(idx); ok {
		p.fw[i] = v
	}
}

func (p *PMUState) FirmwareRunning(idx uint64) bool {
	i, ok := p.fwIndex(idx)
	return ok && p.fwRunning&(1<<i) != 0
}

func (p *PMUState) SetFirmwareRunning(idx uint64, on bool) {
	i, ok := p.fwIndex(idx)
	if !ok {
		return
	}
	if on {
		p.fwRunning |= 1 << i
	} else {
		p.fwRunning &^= 1 << i
	}
}

// Count bumps every running firmware counter configured for code.
func (p *PMUState) Count(code uint64) {
	if p.fwRunning == 0 {
		return
	}
	want := FirmwareEvent(code)
	for i := 0; i < cfg.PMUFirmwareCounters; i++ {
		if p.fwRunning&(1<<i) != 0 && p.active[p.hwCount+i] == want {
			p.fw[i]++
		}
	}
}
