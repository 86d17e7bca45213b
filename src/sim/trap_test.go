package sim

import (
	"encoding/binary"
	"testing"
	"time"

	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

func TestReadTime(t *testing.T) {
	var first, second uint64
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			first = s.ReadTime()
			time.Sleep(2 * time.Millisecond)
			second = s.ReadTime()
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if second <= first {
		t.Errorf("time went from %d to %d", first, second)
	}
	if second-first < TimebaseHz/1000 {
		t.Errorf("only %d ticks in 2ms", second-first)
	}
}

func TestIllegalInstructionDelegated(t *testing.T) {
	var delegated []uint64
	var sepc uint64
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			s.Illegal(0) // c.unimp
			delegated = append(delegated, s.Delegated()...)
			sepc = s.h.ReadCSR(riscv.CSRSepc)
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if len(delegated) != 1 || delegated[0] != riscv.ExcIllegalInsn {
		t.Errorf("delegated causes %v", delegated)
	}
	if sepc != bootEntry {
		t.Errorf("sepc %#x", sepc)
	}
}

func TestTimer(t *testing.T) {
	var timers int
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			now := s.ReadTime()
			s.Ecall(abi.EIDTime, abi.TimeSetTimer, now+TimebaseHz/1000)
			for s.Timers() == 0 {
				s.Idle()
			}
			// set_timer withdraws the pending interrupt
			s.Ecall(abi.EIDTime, abi.TimeSetTimer, ^uint64(0))
			timers = s.Timers()
			if s.h.ReadCSR(riscv.CSRMip)&riscv.MipSTIP != 0 {
				t.Errorf("stip still pending")
			}
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if timers != 1 {
		t.Errorf("%d timer interrupts", timers)
	}
}

const (
	ldA0A1 = 11<<15 | 3<<12 | 10<<7 | 0x03  // ld a0, 0(a1)
	sdA2A1 = 12<<20 | 11<<15 | 3<<12 | 0x23 // sd a2, 0(a1)
	cLwA0  = 0x4188                         // c.lw a0, 0(a1)
	flwA0  = 11<<15 | 2<<12 | 10<<7 | 0x07  // flw fa0, 0(a1)
	cSdA3  = 0xe014                         // c.sd a3, 0(s0)
	cLdA3  = 0x6014                         // c.ld a3, 0(s0)
)

func TestMisalignedAccess(t *testing.T) {
	const addr = 0x8040_0003
	var loaded, signed uint64
	var stored [8]byte
	var delegated []uint64
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			mem := s.Machine().Memory()
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], 0x1122_3344_5566_7788)
			mem.WriteAt(b[:], addr)

			s.SetReg(hart.RegA1, addr)
			s.Load(ldA0A1, addr)
			loaded = s.Reg(hart.RegA0)

			mem.WriteAt([]byte{0xfe, 0xff, 0xff, 0xff}, addr)
			s.Load(cLwA0, addr)
			signed = s.Reg(hart.RegA0)

			s.SetReg(hart.RegA2, 0x0102_0304_0506_0708)
			s.Store(sdA2A1, addr+8)
			mem.ReadAt(stored[:], addr+8)

			s.Load(flwA0, addr)
			delegated = s.Delegated()
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if loaded != 0x1122_3344_5566_7788 {
		t.Errorf("ld gave %#x", loaded)
	}
	if signed != 0xffff_ffff_ffff_fffe {
		t.Errorf("c.lw gave %#x", signed)
	}
	if v := binary.LittleEndian.Uint64(stored[:]); v != 0x0102_0304_0506_0708 {
		t.Errorf("sd stored %#x", v)
	}
	if len(delegated) != 1 || delegated[0] != riscv.ExcLoadMisaligned {
		t.Errorf("float load: delegated %v", delegated)
	}
}

// The compressed register fields sit at different bits from the base ones.
func TestMisalignedCompressed(t *testing.T) {
	const addr = 0x8040_0101
	var stored [8]byte
	var loaded, a0 uint64
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			mem := s.Machine().Memory()
			s.SetReg(8, addr) // s0
			s.SetReg(hart.RegA0, 0x5a5a)
			s.SetReg(hart.RegA3, 0x8877_6655_4433_2211)
			s.Store(cSdA3, addr)
			mem.ReadAt(stored[:], addr)

			s.SetReg(hart.RegA3, 0)
			s.Load(cLdA3, addr)
			loaded = s.Reg(hart.RegA3)
			a0 = s.Reg(hart.RegA0)
			shutdown(s)
		},
	}})
	m.Start()
	finish(t, m)
	if v := binary.LittleEndian.Uint64(stored[:]); v != 0x8877_6655_4433_2211 {
		t.Errorf("c.sd stored %#x", v)
	}
	if loaded != 0x8877_6655_4433_2211 {
		t.Errorf("c.ld gave %#x", loaded)
	}
	if a0 != 0x5a5a {
		t.Errorf("a0 clobbered: %#x", a0)
	}
}

func TestFatalTrap(t *testing.T) {
	m := newMachine(t, Config{Programs: map[uint64]Program{
		bootEntry: func(s *Supervisor) {
			s.trap(riscv.ExcInsnAccessFault, 0, s.pc)
		},
	}})
	m.Start()
	r := finish(t, m)
	if r.Kind != Failed || r.Code != 0xfa {
		t.Errorf("fatal trap ended with %v %#x", r.Kind, r.Code)
	}
}
