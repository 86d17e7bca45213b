// Package virt wires the firmware to qemu's riscv virt machine: a CLINT at
// 0x200_0000, an NS16550A at 0x1000_0000, the SiFive test finisher at
// 0x10_0000 and RAM from 0x8000_0000.
package virt

import (
	"accord/src/hardware/clint"
	"accord/src/hardware/riscv"
	"accord/src/hardware/uart16550"
	"accord/src/sbi"
	"accord/src/sbi/cfg"
	"accord/src/sbi/hart"
)

const (
	CLINTBase  = 0x0200_0000
	UARTBase   = 0x1000_0000
	FinisherAt = 0x0010_0000
	RAMBase    = 0x8000_0000
	RAMSize    = 128 << 20
)

// Board is the platform description.  Harts come from the number the
// machine was started with; qemu numbers them from zero.
type Board struct {
	harts      int
	entry      uint64
	opaque     uint64
	ramBase    uint64
	ramSize    uint64
	extensions []hart.Extension
	priv       hart.PrivilegedVersion
}

var _ sbi.Platform = (*Board)(nil)

// NewBoard describes a virt machine with harts harts.  opaque is handed
// to the next stage in a1, usually the device tree address.
func NewBoard(harts int, opaque uint64) *Board {
	if harts > cfg.MaxHarts {
		harts = cfg.MaxHarts
	}
	return &Board{
		harts:      harts,
		entry:      cfg.JumpAddress,
		opaque:     opaque,
		ramBase:    RAMBase,
		ramSize:    RAMSize,
		extensions: []hart.Extension{hart.ExtSstc},
		priv:       hart.Priv1_12,
	}
}

func (b *Board) Harts() []int {
	ids := make([]int, b.harts)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (b *Board) BootHart() int { return 0 }

func (b *Board) NextStage() hart.NextStage {
	return hart.NextStage{StartAddr: b.entry, Opaque: b.opaque, Mode: riscv.ModeSupervisor}
}

// ValidAddress accepts anything in RAM above the firmware image.
func (b *Board) ValidAddress(addr uint64) bool {
	return addr >= b.ramBase+cfg.JumpAddress-cfg.LinkStart && addr < b.ramBase+b.ramSize
}

func (b *Board) Extensions(int) []hart.Extension { return b.extensions }

func (b *Board) PrivilegedVersion(int) hart.PrivilegedVersion { return b.priv }

// Devices maps the board's devices.  Only call this where the addresses
// are real.
func (b *Board) Devices() sbi.Devices {
	u := uart16550.At(UARTBase)
	u.Init(0)
	return sbi.Devices{
		IPI:     clint.At(CLINTBase, b.harts),
		Console: u,
		Reset:   FinisherAtBase(FinisherAt),
		Memory:  Physical{Base: uintptr(b.ramBase), Size: uintptr(b.ramSize)},
	}
}
