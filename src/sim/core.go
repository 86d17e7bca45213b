package sim

import (
	"fmt"
	"runtime"
	"time"

	"accord/src/hardware/riscv"
)

// halted unwinds a hart goroutine once the hart or the machine stops.
type halted struct{}

// Hart is a simulated riscv.Core.  Only the hart's own goroutine calls its
// methods; cross-hart state lives in the CLINT.
type Hart struct {
	m    *Machine
	id   int
	csr  [4096]uint64
	wake chan struct{}
}

var _ riscv.Core = (*Hart)(nil)

const (
	misaRV64    = uint64(2) << 62
	sstatusMask = riscv.MstatusSIE | riscv.MstatusSPIE | riscv.MstatusSPP | riscv.MstatusMXR
	// localMip are the pending bits the hart holds itself; the rest
	// come from the CLINT.
	localMip = riscv.MipSSIP | riscv.MipSTIP | riscv.MipSEIP
)

func misaBit(c byte) uint64 { return 1 << (c - 'A') }

func newHart(m *Machine, id int, hypervisor bool) *Hart {
	h := &Hart{m: m, id: id, wake: make(chan struct{}, 1)}
	misa := misaRV64 | misaBit('I') | misaBit('M') | misaBit('A') | misaBit('C') |
		misaBit('S') | misaBit('U')
	if hypervisor {
		misa |= misaBit('H')
	}
	h.csr[riscv.CSRMisa] = misa
	h.csr[riscv.CSRMhartid] = uint64(id)
	h.csr[riscv.CSRMimpid] = 1
	return h
}

func (h *Hart) HartID() int { return h.id }

func (h *Hart) mip() uint64 {
	v := h.csr[riscv.CSRMip] & localMip
	if h.m.clint.MSIP(h.id) {
		v |= riscv.MipMSIP
	}
	if h.m.mtime() >= h.m.clint.MTimeCmp(h.id) {
		v |= riscv.MipMTIP
	}
	return v
}

func (h *Hart) ReadCSR(csr uint16) uint64 {
	switch csr {
	case riscv.CSRMip:
		return h.mip()
	case riscv.CSRSip:
		return h.mip() & h.csr[riscv.CSRMideleg]
	case riscv.CSRSstatus:
		return h.csr[riscv.CSRMstatus] & sstatusMask
	case riscv.CSRTime:
		return h.m.mtime()
	case riscv.CSRCycle:
		return h.csr[riscv.CSRMcycle]
	case riscv.CSRInstret:
		return h.csr[riscv.CSRMinstret]
	}
	return h.csr[csr&0xfff]
}

func (h *Hart) WriteCSR(csr uint16, v uint64) {
	switch {
	case csr>>10 == 3:
		panic(fmt.Sprintf("hart %d: write to read only csr %#x", h.id, csr))
	case csr == riscv.CSRMip:
		h.csr[csr] = v & localMip
	case csr == riscv.CSRSip:
		h.csr[riscv.CSRMip] = h.csr[riscv.CSRMip]&^riscv.MipSSIP | v&riscv.MipSSIP
	case csr == riscv.CSRSstatus:
		h.csr[riscv.CSRMstatus] = h.csr[riscv.CSRMstatus]&^sstatusMask | v&sstatusMask
	case csr == riscv.CSRMisa, csr == riscv.CSRMhartid:
	default:
		h.csr[csr&0xfff] = v
	}
}

func (h *Hart) SetCSR(csr uint16, bits uint64) {
	h.WriteCSR(csr, h.ReadCSR(csr)|bits)
}

func (h *Hart) ClearCSR(csr uint16, bits uint64) {
	h.WriteCSR(csr, h.ReadCSR(csr)&^bits)
}

func (h *Hart) fence(name string, scope riscv.FenceScope, addr, id uint64) {
	detail := name
	if scope&riscv.FenceID != 0 {
		detail += fmt.Sprintf(" id=%d", id)
	}
	if scope&riscv.FenceAddr == 0 {
		detail += " all"
		addr = 0
	}
	h.m.events.add(Event{Hart: h.id, Kind: EventFence, Detail: detail, Value: addr})
}

func (h *Hart) FenceI() { h.fence("fence.i", riscv.FenceAll, 0, 0) }

func (h *Hart) SFenceVMA(scope riscv.FenceScope, addr, asid uint64) {
	h.fence("sfence.vma", scope, addr, asid)
}

func (h *Hart) HFenceGVMA(scope riscv.FenceScope, gaddr, vmid uint64) {
	h.fence("hfence.gvma", scope, gaddr, vmid)
}

func (h *Hart) HFenceVVMA(scope riscv.FenceScope, addr, asid uint64) {
	h.fence("hfence.vvma", scope, addr, asid)
}

// machinePending are the bits that end a wfi.
const machinePending = riscv.MipMSIP | riscv.MipMTIP

// WaitForInterrupt sleeps the goroutine until msip is raised or the timer
// comparator is reached.  The timer is polled.
func (h *Hart) WaitForInterrupt() {
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	for h.mip()&machinePending == 0 {
		select {
		case <-h.wake:
		case <-tick.C:
		case <-h.m.stop:
			panic(halted{})
		}
	}
}

func (h *Hart) Relax() {
	select {
	case <-h.m.stop:
		panic(halted{})
	default:
	}
	runtime.Gosched()
}

func (h *Hart) Halt() {
	panic(halted{})
}
