package sim

import (
	"encoding/binary"
	"fmt"
	"time"

	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// jump unwinds a Program when a trap sends the hart somewhere else.
type jump struct{}

// trapVector is what stvec holds while a Program runs.  Nothing lives
// there; a trap that ends up at it was delegated.
const trapVector = 0xffff_ffff_ffff_f000

func (h *Hart) run() {
	defer h.m.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(halted); !ok {
				h.m.crashed(h.id, r)
			}
		}
	}()
	h.m.fw.Boot(h)
	for {
		h.stage()
	}
}

// stage runs the Program at the frame's pc, then idles taking interrupts,
// until a trap jumps elsewhere.
func (h *Hart) stage() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(jump); !ok {
				panic(r)
			}
		}
	}()
	s := newSupervisor(h)
	h.m.events.add(Event{Hart: h.id, Kind: EventStage, Value: s.pc})
	if p := h.m.cfg.Programs[s.pc]; p != nil {
		p(s)
	}
	for {
		s.Idle()
	}
}

// Supervisor is a Program's view of its hart: the calls it can make and the
// interrupts it has seen.
type Supervisor struct {
	h      *Hart
	ctx    *hart.Context
	pc     uint64
	mode   riscv.Mode
	a0, a1 uint64

	ipis      int
	timers    int
	stip      bool
	delegated []uint64
}

func newSupervisor(h *Hart) *Supervisor {
	ctx := h.m.fw.Harts().Get(uint64(h.id))
	s := &Supervisor{
		h:    h,
		ctx:  ctx,
		pc:   ctx.Frame.PC,
		mode: riscv.MPP(h.csr[riscv.CSRMstatus]),
		a0:   ctx.Frame.Reg(hart.RegA0),
		a1:   ctx.Frame.Reg(hart.RegA1),
	}
	h.WriteCSR(riscv.CSRStvec, trapVector)
	return s
}

func (s *Supervisor) HartID() int       { return s.h.id }
func (s *Supervisor) Entry() uint64     { return s.pc }
func (s *Supervisor) Mode() riscv.Mode  { return s.mode }
func (s *Supervisor) Machine() *Machine { return s.h.m }

// Args are a0 and a1 as they were on entry.
func (s *Supervisor) Args() (a0, a1 uint64) { return s.a0, s.a1 }

// IPIs counts supervisor software interrupts taken.
func (s *Supervisor) IPIs() int { return s.ipis }

// Timers counts supervisor timer interrupts taken.
func (s *Supervisor) Timers() int { return s.timers }

// Delegated lists the scause of every trap the firmware passed down.
func (s *Supervisor) Delegated() []uint64 { return s.delegated }

func (s *Supervisor) Reg(n int) uint64       { return s.ctx.Frame.Reg(n) }
func (s *Supervisor) SetReg(n int, v uint64) { s.ctx.Frame.SetReg(n, v) }

func (s *Supervisor) checkStop() {
	select {
	case <-s.h.m.stop:
		panic(halted{})
	default:
	}
}

// trap enters the firmware the way the hardware would and checks where it
// came back to.  ret is the pc of a normal return.
func (s *Supervisor) trap(cause, tval, ret uint64) {
	s.checkStop()
	h := s.h
	h.WriteCSR(riscv.CSRMcause, cause)
	h.WriteCSR(riscv.CSRMtval, tval)
	h.WriteCSR(riscv.CSRMepc, s.pc)
	h.WriteCSR(riscv.CSRMstatus, riscv.WithMPP(h.csr[riscv.CSRMstatus], s.mode))
	s.ctx.Frame.PC = s.pc
	h.m.events.add(Event{Hart: h.id, Kind: EventTrap, Value: cause})

	h.m.fw.HandleTrap(h)

	switch s.ctx.Frame.PC {
	case ret:
		s.ctx.Frame.PC = s.pc
	case trapVector &^ 3:
		scause := h.ReadCSR(riscv.CSRScause)
		s.delegated = append(s.delegated, scause)
		h.m.events.add(Event{Hart: h.id, Kind: EventDelegated, Value: scause})
		// sret
		mstatus := h.csr[riscv.CSRMstatus]
		if mstatus&riscv.MstatusSPIE != 0 {
			mstatus |= riscv.MstatusSIE
		}
		h.csr[riscv.CSRMstatus] = mstatus
		s.ctx.Frame.PC = s.pc
	default:
		panic(jump{})
	}
}

// Poll takes every pending machine interrupt, then notes and acknowledges
// the supervisor ones they left behind.
func (s *Supervisor) Poll() {
	s.checkStop()
	for {
		pending := s.h.mip() & s.h.csr[riscv.CSRMie]
		if pending&riscv.MipMSIP != 0 {
			s.trap(riscv.InterruptBit|riscv.IntMachineSoft, 0, s.pc)
			continue
		}
		if pending&riscv.MipMTIP != 0 {
			s.trap(riscv.InterruptBit|riscv.IntMachineTimer, 0, s.pc)
			continue
		}
		break
	}
	mip := s.h.csr[riscv.CSRMip]
	if mip&riscv.MipSSIP != 0 {
		s.ipis++
		s.h.csr[riscv.CSRMip] &^= riscv.MipSSIP
		s.h.m.events.add(Event{Hart: s.h.id, Kind: EventSupervisorIPI})
	}
	stip := mip&riscv.MipSTIP != 0
	if stip && !s.stip {
		s.timers++
		s.h.m.events.add(Event{Hart: s.h.id, Kind: EventSupervisorTimer})
	}
	s.stip = stip
}

// Idle is wfi followed by Poll.
func (s *Supervisor) Idle() {
	s.h.WaitForInterrupt()
	s.Poll()
}

// Ecall makes a call with up to six arguments.
func (s *Supervisor) Ecall(eid, fid uint64, args ...uint64) abi.Ret {
	if len(args) > 6 {
		panic(fmt.Sprintf("ecall with %d arguments", len(args)))
	}
	s.Poll()
	f := &s.ctx.Frame
	for i := 0; i < 6; i++ {
		var v uint64
		if i < len(args) {
			v = args[i]
		}
		f.SetReg(hart.RegA0+i, v)
	}
	f.SetReg(hart.RegA6, fid)
	f.SetReg(hart.RegA7, eid)
	began := time.Now()
	s.trap(riscv.ExcEcallFromS, 0, s.pc+4)
	took := time.Since(began)
	ret := abi.Ret{Error: abi.Error(f.Reg(hart.RegA0)), Value: f.Reg(hart.RegA1)}
	s.h.m.events.add(Event{Hart: s.h.id, Kind: EventReturn, Value: eid, Took: took,
		Detail: fmt.Sprintf("fid %d: %d", fid, ret.Error)})
	s.Poll()
	return ret
}

// place writes insn at the program's pc so the firmware can fetch it, and
// returns the pc after it.
func (s *Supervisor) place(insn uint32) uint64 {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], insn)
	n := 4
	if insn&3 != 3 {
		n = 2
	}
	if _, err := s.h.m.mem.WriteAt(b[:n], int64(s.pc)); err != nil {
		panic(fmt.Sprintf("program at %#x is outside memory", s.pc))
	}
	return s.pc + uint64(n)
}

// Illegal raises an illegal instruction trap on insn with mtval left at
// zero, as cores that do not report the bits do.
func (s *Supervisor) Illegal(insn uint32) {
	s.Poll()
	next := s.place(insn)
	s.trap(riscv.ExcIllegalInsn, 0, next)
}

// csrr a0, time
const rdtimeA0 = 0xc01<<20 | 2<<12 | hart.RegA0<<7 | 0x73

// ReadTime is rdtime on a core that traps it.
func (s *Supervisor) ReadTime() uint64 {
	s.Illegal(rdtimeA0)
	return s.Reg(hart.RegA0)
}

// Load raises a misaligned load trap for insn accessing addr.
func (s *Supervisor) Load(insn uint32, addr uint64) {
	s.Poll()
	next := s.place(insn)
	s.trap(riscv.ExcLoadMisaligned, addr, next)
}

// Store raises a misaligned store trap for insn accessing addr.
func (s *Supervisor) Store(insn uint32, addr uint64) {
	s.Poll()
	next := s.place(insn)
	s.trap(riscv.ExcStoreMisaligned, addr, next)
}
