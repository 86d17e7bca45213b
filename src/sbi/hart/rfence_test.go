package hart

import (
	"sync"
	"testing"

	"accord/src/sbi/cfg"
)

func TestFullFlush(t *testing.T) {
	limit := uint64(cfg.TLBFlushLimit)
	cases := []struct {
		r    Request
		full bool
	}{
		{Request{Start: 0, Size: 0}, true},
		{Request{Start: 0x1000, Size: 0}, false},
		{Request{Start: 0x1000, Size: WholeRange}, true},
		{Request{Start: 0x1000, Size: limit}, false},
		{Request{Start: 0x1000, Size: limit + 1}, true},
	}
	for _, c := range cases {
		if c.r.FullFlush(limit) != c.full {
			t.Errorf("FullFlush(%+v) = %v", c.r, !c.full)
		}
	}
}

func TestRFenceQueue(t *testing.T) {
	var c RFenceCell
	for i := 0; i < FIFOCapacity; i++ {
		if err := c.Push(Request{Kind: SFenceVMA, Start: uint64(i) << 12, From: 1}); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := c.Push(Request{}); err != FIFOFull {
		t.Errorf("push into a full queue returned %v", err)
	}
	for i := 0; i < FIFOCapacity; i++ {
		r, ok := c.Pop()
		if !ok || r.Start != uint64(i)<<12 {
			t.Fatalf("pop %d = %+v %v", i, r, ok)
		}
	}
	if _, ok := c.Pop(); ok || !c.Empty() {
		t.Errorf("queue not empty after draining")
	}
}

func TestRFenceCounters(t *testing.T) {
	var c RFenceCell
	if !c.Synced() {
		t.Errorf("fresh cell not synced")
	}
	c.Expect()
	c.Expect()
	c.Ack()
	if c.Synced() || c.Outstanding() != 1 {
		t.Errorf("synced with one of two acks")
	}
	c.Ack()
	if !c.Synced() || c.Completed() != 2 {
		t.Errorf("not synced after both acks")
	}
}

func TestRFenceConcurrentPush(t *testing.T) {
	var c RFenceCell
	var wg sync.WaitGroup
	for from := 0; from < 4; from++ {
		wg.Add(1)
		go func(from int) {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				if err := c.Push(Request{From: from}); err != nil {
					t.Errorf("push: %v", err)
				}
			}
		}(from)
	}
	wg.Wait()
	n := 0
	for {
		if _, ok := c.Pop(); !ok {
			break
		}
		n++
	}
	if n != 16 {
		t.Errorf("popped %d of 16", n)
	}
}

func TestFenceKindNames(t *testing.T) {
	if HFenceVVMAASID.String() != "hfence.vvma.asid" || FenceKind(40).String() != "invalid" {
		t.Errorf("fence names wrong")
	}
}
