package upbeat

import (
	"sync"
	"testing"
)

func TestBitSetBasics(t *testing.T) {
	var b BitSet
	for _, i := range []BitIndex{0, 1, 63, 64, 200, 255} {
		if b.On(i) {
			t.Errorf("bit %d on in a fresh set", i)
		}
		b.Set(i)
		if !b.On(i) {
			t.Errorf("bit %d not on after Set", i)
		}
	}
	if b.Count() != 6 {
		t.Errorf("Count() = %d, want 6", b.Count())
	}
	if b.Word(1) != 1 {
		t.Errorf("Word(1) = %x, want 1", b.Word(1))
	}
	b.Clear(63)
	if b.On(63) {
		t.Errorf("bit 63 still on after Clear")
	}
	b.Set(256) // out of range, ignored
	if b.On(256) {
		t.Errorf("out of range bit reported on")
	}
	b.ClearAll()
	if b.Count() != 0 {
		t.Errorf("ClearAll left %d bits", b.Count())
	}
}

func TestBitSetConcurrentSet(t *testing.T) {
	var b BitSet
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Set(BitIndex(i))
		}(i)
	}
	wg.Wait()
	if b.Word(0) != ^uint64(0) {
		t.Errorf("lost a concurrent Set: %x", b.Word(0))
	}
}

func TestSpinLockExcludes(t *testing.T) {
	var l SpinLock
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	if counter != 8000 {
		t.Errorf("counter = %d, want 8000", counter)
	}
	if !l.TryLock() {
		t.Fatalf("lock should be free")
	}
	if l.TryLock() {
		t.Errorf("TryLock succeeded on a held lock")
	}
	l.Unlock()
}
