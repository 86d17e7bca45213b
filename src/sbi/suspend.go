package sbi

import (
	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// Suspend is the system suspend extension.  Suspend to RAM is a
// non-retentive suspend of the last running hart.
type Suspend struct {
	fw *Firmware
}

func (s *Suspend) Handle(c *Call) abi.Ret {
	if c.FID != abi.SuspendSystemSuspend {
		return abi.Fail(abi.NotSupported)
	}
	a := c.Args
	return s.SystemSuspend(c, uint32(a[0]), a[1], a[2])
}

func (s *Suspend) SystemSuspend(c *Call, sleep uint32, resumeAddr, opaque uint64) abi.Ret {
	if sleep != abi.SuspendToRAM {
		return abi.Fail(abi.InvalidParam)
	}
	mpp := riscv.MPP(c.Core.ReadCSR(riscv.CSRMstatus))
	if mpp != riscv.ModeSupervisor && mpp != riscv.ModeUser {
		return abi.Fail(abi.Failed)
	}
	others := true
	s.fw.harts.Each(func(ctx *hart.Context) {
		if ctx != c.Hart && ctx.HSM.Status() != abi.Stopped {
			others = false
		}
	})
	if !others {
		return abi.Fail(abi.Denied)
	}
	s.fw.log.Infof("hart %d: system suspend, resume at %#x", c.Hart.ID(), resumeAddr)
	return s.fw.hsm.Suspend(c, abi.SuspendNonRetentive, resumeAddr, opaque)
}
