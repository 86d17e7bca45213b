package hart

import (
	"testing"

	"accord/src/sbi/abi"
	"accord/src/sbi/cfg"
)

func TestPMULayout(t *testing.T) {
	var p PMUState
	p.Reset()
	if p.HardwareCounters() != cfg.PMUHardwareCounters {
		t.Errorf("hardware counters = %d", p.HardwareCounters())
	}
	if p.Total() != cfg.PMUHardwareCounters+cfg.PMUFirmwareCounters {
		t.Errorf("total = %d", p.Total())
	}
	if p.Event(0) != 1 || p.Event(1) != 0 || p.Event(2) != 2 {
		t.Errorf("fixed counters not mapped")
	}
	if p.IsFirmware(2) || !p.IsFirmware(3) || p.IsFirmware(uint64(p.Total())) {
		t.Errorf("firmware range wrong")
	}
}

func TestPMUCount(t *testing.T) {
	var p PMUState
	p.Reset()
	idx := uint64(p.HardwareCounters())
	p.SetEvent(idx, FirmwareEvent(abi.PMUFWIPISent))
	p.Count(abi.PMUFWIPISent) // not running yet
	p.SetFirmwareRunning(idx, true)
	p.Count(abi.PMUFWIPISent)
	p.Count(abi.PMUFWIPISent)
	p.Count(abi.PMUFWSetTimer)
	if v, ok := p.FirmwareValue(idx); !ok || v != 2 {
		t.Errorf("counter = %d %v, want 2", v, ok)
	}
	p.SetFirmwareRunning(idx, false)
	p.Count(abi.PMUFWIPISent)
	if v, _ := p.FirmwareValue(idx); v != 2 {
		t.Errorf("stopped counter moved to %d", v)
	}
	if _, ok := p.FirmwareValue(0); ok {
		t.Errorf("hardware counter read as firmware")
	}
	p.Reset()
	if p.FirmwareRunning(idx) || p.Event(idx) != NoEvent {
		t.Errorf("Reset kept configuration")
	}
}

func TestEventSplit(t *testing.T) {
	ev := FirmwareEvent(abi.PMUFWFenceIReceived)
	if EventType(ev) != abi.PMUEventTypeFirmware || EventCode(ev) != abi.PMUFWFenceIReceived {
		t.Errorf("event %#x split wrong", ev)
	}
}
