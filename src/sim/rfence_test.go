package sim

import (
	"strings"
	"testing"
	"time"

	"accord/src/sbi/abi"
)

// startAll brings up harts 1..n-1 at secondary and waits for them.
func startAll(s *Supervisor, n int) {
	for h := 1; h < n; h++ {
		start(s, h, secondary, 0)
	}
	for h := 1; h < n; h++ {
		waitStatus(s, h, abi.Started)
	}
}

func TestEmptyMaskFence(t *testing.T) {
	var ret abi.Ret
	var before int
	var m *Machine
	m = newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			startAll(s, DefaultHarts)
			before = len(m.Events())
			ret = s.Ecall(abi.EIDRFence, abi.RFenceSFenceVMA, 0, 0, 0, 0x1000)
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if ret.Error != abi.Success {
		t.Errorf("empty mask fence: %v", ret.Error)
	}
	for _, e := range m.Events()[before:] {
		if e.Kind == EventMSIP || e.Kind == EventFence {
			t.Errorf("signalling after an empty mask fence: %v", e)
		}
	}
}

// Hart 3 is disabled, so neither call may reach hart 1.
func TestMaskWithDisabledHart(t *testing.T) {
	var ipi, fence abi.Error
	var before int
	var m *Machine
	m = newMachine(t, Config{Disabled: []int{3}, Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			startAll(s, 3)
			before = len(m.Events())
			ipi = s.Ecall(abi.EIDIPI, abi.IPISend, 0b1010, 0).Error
			fence = s.Ecall(abi.EIDRFence, abi.RFenceFenceI, 0b1010, 0).Error
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if ipi != abi.InvalidParam || fence != abi.InvalidParam {
		t.Errorf("ipi %v, fence %v", ipi, fence)
	}
	for _, e := range m.Events()[before:] {
		if e.Hart == 1 && (e.Kind == EventMSIP || e.Kind == EventFence || e.Kind == EventSupervisorIPI) {
			t.Errorf("hart 1 signalled by a rejected mask: %v", e)
		}
	}
}

func TestFenceWaitsForEveryTarget(t *testing.T) {
	gate := make(chan struct{})
	waiting := make(chan struct{})
	issued := make(chan struct{})
	done := make(chan abi.Ret, 1)
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			startAll(s, 3)
			<-waiting
			close(issued)
			done <- s.Ecall(abi.EIDRFence, abi.RFenceSFenceVMA, 0b110, 0, 0x1000, 0x2000)
			shutdown(s)
		},
		secondary: func(s *Supervisor) {
			if s.HartID() == 2 {
				close(waiting)
				<-gate
			}
		},
	}})
	m.Start()
	<-issued
	initiator := m.Firmware().Harts().Get(0)
	deadline := time.Now().Add(runFor)
	for initiator.RFence.Completed() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	select {
	case r := <-done:
		t.Fatalf("fence returned %v with hart 2 still busy", r.Error)
	default:
	}
	if initiator.RFence.Completed() != 1 || initiator.RFence.Outstanding() != 1 {
		t.Errorf("completed %d outstanding %d while hart 2 is busy",
			initiator.RFence.Completed(), initiator.RFence.Outstanding())
	}
	close(gate)
	finish(t, m)
	if r := <-done; r.Error != abi.Success {
		t.Errorf("fence: %v", r.Error)
	}
	if !initiator.RFence.Synced() || initiator.RFence.Completed() != 2 {
		t.Errorf("counters after the fence: completed %d", initiator.RFence.Completed())
	}
	events := m.Events()
	for _, h := range []int{1, 2} {
		var addrs []uint64
		for _, e := range events {
			if e.Hart == h && e.Kind == EventFence {
				addrs = append(addrs, e.Value)
			}
		}
		if len(addrs) != 2 || addrs[0] != 0x1000 || addrs[1] != 0x2000 {
			t.Errorf("hart %d fenced %#x", h, addrs)
		}
	}
	if countEvents(events, 3, EventFence) != 0 || countEvents(events, 0, EventFence) != 0 {
		t.Errorf("harts outside the mask fenced")
	}
}

func TestFenceOrder(t *testing.T) {
	issued := make(chan struct{})
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			startAll(s, 2)
			close(issued)
			s.Ecall(abi.EIDRFence, abi.RFenceFenceI, 0b10, 0)
			shutdown(s)
		},
		secondary: func(s *Supervisor) {
			<-issued
			time.Sleep(5 * time.Millisecond)
		},
	}})
	m.Start()
	finish(t, m)

	events := m.Events()
	find := func(from, h int, k EventKind, match func(Event) bool) int {
		for i := from; i < len(events); i++ {
			e := events[i]
			if e.Hart == h && e.Kind == k && (match == nil || match(e)) {
				return i
			}
		}
		t.Fatalf("no %s event on hart %d after %d", k, h, from)
		return -1
	}
	startIdx := 0
	for i, e := range events {
		if e.Hart == 1 && e.Kind == EventStage {
			startIdx = i
		}
	}
	send := find(startIdx, 1, EventMSIP, nil)
	trap := find(send, 1, EventTrap, func(e Event) bool { return e.Value&(1<<63) != 0 })
	fence := find(trap, 1, EventFence, func(e Event) bool { return strings.HasPrefix(e.Detail, "fence.i") })
	ret := find(fence, 0, EventReturn, func(e Event) bool { return e.Value == abi.EIDRFence })
	if !(send < trap && trap < fence && fence < ret) {
		t.Errorf("order send %d trap %d fence %d return %d", send, trap, fence, ret)
	}
}

func TestFenceArguments(t *testing.T) {
	cases := []struct {
		name string
		fid  uint64
		args []uint64
		want abi.Error
	}{
		{"unaligned start", abi.RFenceSFenceVMA, []uint64{1, 0, 0x1001, 0x1000}, abi.InvalidAddress},
		{"wrapping range", abi.RFenceSFenceVMA, []uint64{1, 0, 0xffff_ffff_ffff_f000, 0x2000}, abi.InvalidAddress},
		{"whole range", abi.RFenceSFenceVMAASID, []uint64{1, 0, 0x1001, ^uint64(0), 7}, abi.Success},
		{"bad hart", abi.RFenceFenceI, []uint64{1 << 9, 0}, abi.InvalidParam},
		{"no hypervisor", abi.RFenceHFenceGVMA, []uint64{1, 0, 0, 0}, abi.NotSupported},
		{"unknown function", 7, []uint64{1, 0}, abi.NotSupported},
	}
	got := make([]abi.Error, len(cases))
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			for i, c := range cases {
				got[i] = s.Ecall(abi.EIDRFence, c.fid, c.args...).Error
			}
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	for i, c := range cases {
		if got[i] != c.want {
			t.Errorf("%s: %v, want %v", c.name, got[i], c.want)
		}
	}
	var full bool
	for _, e := range m.Events() {
		if e.Kind == EventFence && e.Detail == "sfence.vma id=7 all" {
			full = true
		}
	}
	if !full {
		t.Errorf("whole range fence was not a full flush")
	}
}

func TestHypervisorFence(t *testing.T) {
	var ret abi.Ret
	m := newMachine(t, Config{Hypervisor: true, Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			startAll(s, 2)
			ret = s.Ecall(abi.EIDRFence, abi.RFenceHFenceGVMAVMID, 0b10, 0, 0x4000, 0x1000, 3)
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if ret.Error != abi.Success {
		t.Fatalf("hfence.gvma: %v", ret.Error)
	}
	for _, e := range m.Events() {
		if e.Hart == 1 && e.Kind == EventFence {
			if e.Detail != "hfence.gvma id=3" || e.Value != 0x4000>>2 {
				t.Errorf("hart 1 ran %s %#x", e.Detail, e.Value)
			}
			return
		}
	}
	t.Errorf("hart 1 did not fence")
}

func TestIPIIsIdempotent(t *testing.T) {
	gate := make(chan struct{})
	seen := make(chan int, 1)
	var sends [2]abi.Error
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			startAll(s, 2)
			sends[0] = s.Ecall(abi.EIDIPI, abi.IPISend, 0b10, 0).Error
			sends[1] = s.Ecall(abi.EIDIPI, abi.IPISend, 1, 1).Error
			close(gate)
			<-seen
			shutdown(s)
		},
		secondary: func(s *Supervisor) {
			<-gate
			s.Poll()
			s.Poll()
			seen <- s.IPIs()
			seen <- s.IPIs()
		},
	}})
	m.Start()
	finish(t, m)
	if sends[0] != abi.Success || sends[1] != abi.Success {
		t.Fatalf("sends: %v", sends)
	}
	if n := <-seen; n != 1 {
		t.Errorf("hart 1 took %d supervisor IPIs", n)
	}
	if n := countEvents(m.Events(), 1, EventSupervisorIPI); n != 1 {
		t.Errorf("%d supervisor IPI events", n)
	}
}

func TestIPIToEveryone(t *testing.T) {
	var bad abi.Error
	m := newMachine(t, Config{Disabled: []int{3}, Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			startAll(s, 3)
			bad = s.Ecall(abi.EIDIPI, abi.IPISend, 0b1000, 0).Error
			s.Ecall(abi.EIDIPI, abi.IPISend, 0, abi.IgnoreBase)
			for h := 0; h < 3; h++ {
				// wait for the targets to take it
				for countEvents(s.Machine().Events(), h, EventSupervisorIPI) == 0 {
					s.Poll()
					time.Sleep(time.Millisecond)
				}
			}
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if bad != abi.InvalidParam {
		t.Errorf("IPI to a disabled hart: %v", bad)
	}
}
