package sbi

import (
	"encoding/binary"

	"golang.org/x/arch/riscv64/riscv64asm"

	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// fetch returns the instruction at pc, two or four bytes, and its length.
// Memory is read by physical address, which only works while the
// supervisor runs with translation off or identity mapped.
func (f *Firmware) fetch(pc uint64) (uint32, int, bool) {
	mem := f.devices.Memory
	if mem == nil {
		return 0, 0, false
	}
	var b [4]byte
	if _, err := mem.ReadAt(b[:2], int64(pc)); err != nil {
		return 0, 0, false
	}
	if b[0]&3 != 3 {
		return uint32(binary.LittleEndian.Uint16(b[:2])), 2, true
	}
	if _, err := mem.ReadAt(b[2:], int64(pc+2)); err != nil {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[:]), 4, true
}

func insnLen(insn uint32) int {
	if insn&3 != 3 {
		return 2
	}
	return 4
}

func decode(insn uint32) (riscv64asm.Inst, error) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], insn)
	return riscv64asm.Decode(b[:insnLen(insn)])
}

// illegalInstruction emulates reads of the time CSR, which the hardware
// may leave to machine mode, and hands everything else to the supervisor.
func (f *Firmware) illegalInstruction(core riscv.Core, ctx *hart.Context, insn uint64) {
	if riscv.MPP(core.ReadCSR(riscv.CSRMstatus)) == riscv.ModeMachine {
		f.fatal(core, "illegal instruction %#x in machine mode", insn)
		return
	}
	ctx.PMU.Count(abi.PMUFWIllegalInsn)
	if insn == 0 {
		if raw, _, ok := f.fetch(ctx.Frame.PC); ok {
			insn = uint64(raw)
		}
	}
	if f.emulateTime(ctx, uint32(insn)) {
		return
	}
	f.delegate(core, ctx, riscv.ExcIllegalInsn, insn)
}

// emulateTime handles csrrs rd, time, x0 and the timeh form.
func (f *Firmware) emulateTime(ctx *hart.Context, insn uint32) bool {
	inst, err := decode(insn)
	if err != nil || inst.Op != riscv64asm.CSRRS {
		return false
	}
	rd := int(insn>>7) & 31
	rs1 := int(insn>>15) & 31
	csr := uint16(insn >> 20)
	if rs1 != hart.RegZero {
		return false
	}
	var v uint64
	switch csr {
	case riscv.CSRTime:
		v = f.devices.IPI.MTime()
	case riscv.CSRTimeh:
		v = f.devices.IPI.MTime() >> 32
	default:
		return false
	}
	ctx.Frame.SetReg(rd, v)
	ctx.Frame.PC += 4
	return true
}

// access is a decoded integer load or store.
type access struct {
	store  bool
	width  int
	signed bool
	reg    int
}

// classify decodes a load or store.  Compressed forms come back from the
// decoder as their base instruction, so the register is taken from the
// operands rather than the encoding.
func classify(insn uint32) (access, bool) {
	inst, err := decode(insn)
	if err != nil {
		return access{}, false
	}
	var a access
	switch inst.Op {
	case riscv64asm.LB:
		a = access{width: 1, signed: true}
	case riscv64asm.LBU:
		a = access{width: 1}
	case riscv64asm.LH:
		a = access{width: 2, signed: true}
	case riscv64asm.LHU:
		a = access{width: 2}
	case riscv64asm.LW:
		a = access{width: 4, signed: true}
	case riscv64asm.LWU:
		a = access{width: 4}
	case riscv64asm.LD:
		a = access{width: 8}
	case riscv64asm.SB:
		a = access{store: true, width: 1}
	case riscv64asm.SH:
		a = access{store: true, width: 2}
	case riscv64asm.SW:
		a = access{store: true, width: 4}
	case riscv64asm.SD:
		a = access{store: true, width: 8}
	default:
		return access{}, false
	}
	// rd for a load, rs2 for a store; the address operand follows.
	r, ok := inst.Args[0].(riscv64asm.Reg)
	if !ok || r < riscv64asm.X0 || r > riscv64asm.X31 {
		return access{}, false
	}
	a.reg = int(r - riscv64asm.X0)
	return a, true
}

// misaligned performs a misaligned integer load or store a byte at a time.
// Floating point accesses, and anything when there is no memory
// collaborator, go to the supervisor.
func (f *Firmware) misaligned(core riscv.Core, ctx *hart.Context, cause, addr uint64) {
	if riscv.MPP(core.ReadCSR(riscv.CSRMstatus)) == riscv.ModeMachine {
		f.fatal(core, "misaligned access at %#x in machine mode", addr)
		return
	}
	if cause == riscv.ExcLoadMisaligned {
		ctx.PMU.Count(abi.PMUFWMisalignedLoad)
	} else {
		ctx.PMU.Count(abi.PMUFWMisalignedStore)
	}
	insn, n, ok := f.fetch(ctx.Frame.PC)
	if !ok {
		f.delegate(core, ctx, cause, addr)
		return
	}
	a, ok := classify(insn)
	if !ok || a.store != (cause == riscv.ExcStoreMisaligned) {
		f.delegate(core, ctx, cause, addr)
		return
	}
	var b [8]byte
	buf := b[:a.width]
	if a.store {
		binary.LittleEndian.PutUint64(b[:], ctx.Frame.Reg(a.reg))
		if _, err := f.devices.Memory.WriteAt(buf, int64(addr)); err != nil {
			f.delegate(core, ctx, riscv.ExcStoreAccessFault, addr)
			return
		}
	} else {
		if _, err := f.devices.Memory.ReadAt(buf, int64(addr)); err != nil {
			f.delegate(core, ctx, riscv.ExcLoadAccessFault, addr)
			return
		}
		v := binary.LittleEndian.Uint64(b[:])
		if a.signed {
			shift := uint(64 - 8*a.width)
			v = uint64(int64(v<<shift) >> shift)
		}
		ctx.Frame.SetReg(a.reg, v)
	}
	ctx.Frame.PC += uint64(n)
}
