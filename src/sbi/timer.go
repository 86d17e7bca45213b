package sbi

import (
	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// Timer programs the supervisor timer, through stimecmp when the hart has
// Sstc and through the machine timer otherwise.
type Timer struct {
	fw *Firmware
}

func (t *Timer) Handle(c *Call) abi.Ret {
	if c.FID != abi.TimeSetTimer {
		return abi.Fail(abi.NotSupported)
	}
	t.SetTimer(c, c.Args[0])
	return abi.Ok(0)
}

// SetTimer arms the next supervisor timer interrupt at stime.  Any pending
// one is withdrawn.
func (t *Timer) SetTimer(c *Call, stime uint64) {
	c.Hart.PMU.Count(abi.PMUFWSetTimer)
	if c.Hart.Features.Has(hart.ExtSstc) {
		c.Core.WriteCSR(riscv.CSRStimecmp, stime)
	} else {
		t.fw.devices.IPI.SetMTimeCmp(c.Hart.ID(), stime)
		c.Core.ClearCSR(riscv.CSRMip, riscv.MipSTIP)
	}
	c.Core.SetCSR(riscv.CSRMie, riscv.MipMTIP)
}
