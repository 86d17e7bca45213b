// Package clint drives the SiFive core local interruptor: one software
// interrupt pending bit and one timer compare register per hart, plus the
// shared machine timer.
package clint

import (
	"accord/src/hardware/mmio"
)

const MaxHarts = 4095

type RegisterMap struct {
	MSIP     [MaxHarts + 1]mmio.Register32 //0x0000
	MTimeCmp [MaxHarts]mmio.Register64     //0x4000
	MTime    mmio.Register64               //0xBFF8
}

// CLINT is a RegisterMap bound to a fixed number of harts.
type CLINT struct {
	regs  *RegisterMap
	harts int
}

// At maps a CLINT whose registers start at base.
func At(base uintptr, harts int) *CLINT {
	return New(mmio.At[RegisterMap](base), harts)
}

// New wraps an already mapped register block.
func New(regs *RegisterMap, harts int) *CLINT {
	if harts > MaxHarts {
		harts = MaxHarts
	}
	return &CLINT{regs: regs, harts: harts}
}

func (c *CLINT) valid(hart int) bool {
	return hart >= 0 && hart < c.harts
}

func (c *CLINT) SetMSIP(hart int) {
	if c.valid(hart) {
		c.regs.MSIP[hart].Set(1)
	}
}

func (c *CLINT) ClearMSIP(hart int) {
	if c.valid(hart) {
		c.regs.MSIP[hart].Set(0)
	}
}

// MSIP reports whether hart's software interrupt is raised.
func (c *CLINT) MSIP(hart int) bool {
	return c.valid(hart) && c.regs.MSIP[hart].Get()&1 != 0
}

func (c *CLINT) MTime() uint64 {
	return c.regs.MTime.Get()
}

func (c *CLINT) SetMTimeCmp(hart int, v uint64) {
	if c.valid(hart) {
		c.regs.MTimeCmp[hart].Set(v)
	}
}

func (c *CLINT) MTimeCmp(hart int) uint64 {
	if !c.valid(hart) {
		return 0
	}
	return c.regs.MTimeCmp[hart].Get()
}
