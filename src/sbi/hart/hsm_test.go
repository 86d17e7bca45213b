package hart

import (
	"sync"
	"testing"

	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
)

func TestStartTake(t *testing.T) {
	a := NewArena()
	c := a.Get(1)
	if c.HSM.Status() != abi.Stopped {
		t.Fatalf("fresh hart is %s", c.HSM.Status())
	}
	next := NextStage{StartAddr: 0x80200000, Opaque: 0x1234, Mode: riscv.ModeSupervisor}
	if !c.HSM.Start(next) {
		t.Fatalf("start of a stopped hart refused")
	}
	if s := c.HSM.Status(); s != abi.StartPending {
		t.Errorf("status after start is %s", s)
	}
	if c.HSM.Occupancy() != CommandPending {
		t.Errorf("occupancy after start is %s", c.HSM.Occupancy())
	}
	if c.HSM.Start(next) {
		t.Errorf("second start accepted")
	}
	got, state, ok := c.HSM.Take()
	if !ok || state != abi.Started || got != next {
		t.Fatalf("Take() = %+v %s %v", got, state, ok)
	}
	if c.HSM.Occupancy() != Consumed {
		t.Errorf("occupancy after take is %s", c.HSM.Occupancy())
	}
	if _, state, ok := c.HSM.Take(); ok || state != abi.Started {
		t.Errorf("second Take() = %s %v", state, ok)
	}
}

func TestStatusWhileWriting(t *testing.T) {
	var c HSMCell
	c.init()
	c.status.Store(stateWriting)
	if c.Status() != abi.StartPending {
		t.Errorf("writer-held cell reads as %s", c.Status())
	}
	if c.AllowIPI() {
		t.Errorf("pending hart accepts IPIs")
	}
}

func TestStopAndSuspendTransitions(t *testing.T) {
	a := NewArena()
	a.SetBoot(0)
	c := a.Get(0)
	if c.HSM.Status() != abi.Started || !c.HSM.AllowIPI() {
		t.Fatalf("boot hart is %s", c.HSM.Status())
	}
	c.HSM.BeginSuspend()
	if c.HSM.Status() != abi.SuspendPending || c.HSM.AllowIPI() {
		t.Errorf("suspend pending misreported")
	}
	c.HSM.Suspend()
	if !c.HSM.AllowIPI() {
		t.Errorf("suspended hart must take IPIs")
	}
	if !c.HSM.Wake() || c.HSM.Status() != abi.Started {
		t.Errorf("retentive wake failed, now %s", c.HSM.Status())
	}
	if c.HSM.Wake() {
		t.Errorf("wake of a started hart succeeded")
	}
	c.HSM.BeginStop()
	if c.HSM.Status() != abi.StopPending {
		t.Errorf("stop pending misreported")
	}
	c.HSM.Stop()
	if c.HSM.Status() != abi.Stopped {
		t.Errorf("stop misreported")
	}
}

func TestResumeNonRetentive(t *testing.T) {
	var c HSMCell
	c.init()
	next := NextStage{StartAddr: 0x1000, Opaque: 7, Mode: riscv.ModeSupervisor}
	if c.Resume(next) {
		t.Fatalf("resume of a stopped hart accepted")
	}
	c.status.Store(uint64(abi.Suspended))
	if !c.Resume(next) || c.Status() != abi.ResumePending {
		t.Fatalf("resume refused, status %s", c.Status())
	}
	got, _, ok := c.Take()
	if !ok || got != next {
		t.Errorf("Take after resume = %+v %v", got, ok)
	}
}

// One commander races many observers; nobody may ever see STOPPED after the
// start was accepted.
func TestStartVisibleToObservers(t *testing.T) {
	for round := 0; round < 50; round++ {
		var c HSMCell
		c.init()
		var wg sync.WaitGroup
		started := make(chan struct{})
		bad := make(chan abi.HartState, 8)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-started
				if s := c.Status(); s == abi.Stopped {
					bad <- s
				}
			}()
		}
		if !c.Start(NextStage{StartAddr: 1}) {
			t.Fatalf("start refused")
		}
		close(started)
		wg.Wait()
		close(bad)
		for s := range bad {
			t.Fatalf("observer saw %s after start", s)
		}
	}
}

func TestTakeWaitsForWriter(t *testing.T) {
	var c HSMCell
	c.init()
	done := make(chan NextStage)
	c.status.Store(stateWriting)
	go func() {
		next, _, _ := c.Take()
		done <- next
	}()
	c.next = NextStage{StartAddr: 0x42}
	c.occupancy.Store(uint32(CommandPending))
	c.status.Store(uint64(abi.StartPending))
	if got := <-done; got.StartAddr != 0x42 {
		t.Errorf("Take returned %+v", got)
	}
}
