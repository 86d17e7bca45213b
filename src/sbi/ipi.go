package sbi

import (
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// IPI raises supervisor software interrupts on other harts.
type IPI struct {
	fw *Firmware
}

func (i *IPI) Handle(c *Call) abi.Ret {
	if c.FID != abi.IPISend {
		return abi.Fail(abi.NotSupported)
	}
	return i.Send(c, abi.HartMask{Mask: c.Args[0], Base: c.Args[1]})
}

// Send marks a supervisor IPI pending on every hart in mask.  The device
// interrupt is raised once per batch of reasons; a hart that already has
// one pending is not signaled again.
func (i *IPI) Send(c *Call, mask abi.HartMask) abi.Ret {
	if err := i.fw.targets(mask, func(target *hart.Context) {
		i.post(target, hart.IPISupervisor)
		c.Hart.PMU.Count(abi.PMUFWIPISent)
	}); err != abi.Success {
		return abi.Fail(err)
	}
	return abi.Ok(0)
}

// post records reason on target and rings its doorbell if nothing was
// pending before.
func (i *IPI) post(target *hart.Context, reason uint32) {
	if target.PostIPI(reason) == 0 {
		i.fw.devices.IPI.SetMSIP(target.ID())
	}
}

// targets checks mask and then calls fn with every enabled hart it names
// that is STARTED or SUSPENDED.  Nothing is called if any named hart is
// out of range or not enabled.
func (f *Firmware) targets(mask abi.HartMask, fn func(*hart.Context)) abi.Error {
	if mask.All() {
		f.harts.Each(func(ctx *hart.Context) {
			if ctx.HSM.AllowIPI() {
				fn(ctx)
			}
		})
		return abi.Success
	}
	bad := false
	n := 0
	mask.Each(func(id uint64) bool {
		n++
		if !f.harts.Enabled(id) {
			bad = true
			return false
		}
		return true
	})
	if bad || n != popCount64(mask.Mask) {
		return abi.InvalidParam
	}
	mask.Each(func(id uint64) bool {
		if ctx := f.harts.Get(id); ctx.HSM.AllowIPI() {
			fn(ctx)
		}
		return true
	})
	return abi.Success
}

func popCount64(m uint64) int {
	n := 0
	for ; m != 0; m &= m - 1 {
		n++
	}
	return n
}
