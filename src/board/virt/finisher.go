package virt

import (
	"accord/src/hardware/mmio"
)

// Finisher is the SiFive test device qemu uses to end a run.
type Finisher struct {
	reg *mmio.Register32
}

const (
	finisherFail  = 0x3333
	finisherPass  = 0x5555
	finisherReset = 0x7777
)

// FinisherAtBase maps the finisher register at base.
func FinisherAtBase(base uintptr) Finisher {
	return Finisher{reg: mmio.At[mmio.Register32](base)}
}

func (f Finisher) Pass() {
	f.reg.Set(finisherPass)
}

// Fail exits qemu with code as the status.
func (f Finisher) Fail(code uint16) {
	f.reg.Set(uint32(code)<<16 | finisherFail)
}

// Reset reboots the machine.  qemu has no warm reset; both are cold.
func (f Finisher) Reset(bool) {
	f.reg.Set(finisherReset)
}
