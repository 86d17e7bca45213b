package upbeat

import (
	"math/bits"
	"sync/atomic"
)

// BitSet is a fixed 256 bit set.  The words are atomic because the hart
// enable list and the feature sets are read by every hart while the boot
// hart may still be filling them in.
type BitSet struct {
	data [4]atomic.Uint64
}

type BitIndex uint32

// BitSetSize is the number of bits a BitSet holds.
const BitSetSize = 256

func (b *BitSet) On(bit BitIndex) bool {
	if bit >= BitSetSize {
		return false
	}
	mask := uint64(1) << (bit % 64) //which bit in the word
	return b.data[bit>>6].Load()&mask != 0
}

func (b *BitSet) Set(bit BitIndex) {
	if bit >= BitSetSize {
		return
	}
	mask := uint64(1) << (bit % 64)
	w := &b.data[bit>>6]
	for {
		old := w.Load()
		if w.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

func (b *BitSet) Clear(bit BitIndex) {
	if bit >= BitSetSize {
		return
	}
	mask := uint64(1) << (bit % 64)
	w := &b.data[bit>>6]
	for {
		old := w.Load()
		if w.CompareAndSwap(old, old&^mask) {
			return
		}
	}
}

func (b *BitSet) ClearAll() {
	for i := range b.data {
		b.data[i].Store(0)
	}
}

// Count returns the number of bits that are on.
func (b *BitSet) Count() int {
	n := 0
	for i := range b.data {
		n += bits.OnesCount64(b.data[i].Load())
	}
	return n
}

// Word returns 64 bits starting at bit 64*i, used when a set is reported
// back through a single register.
func (b *BitSet) Word(i int) uint64 {
	if i < 0 || i >= len(b.data) {
		return 0
	}
	return b.data[i].Load()
}
