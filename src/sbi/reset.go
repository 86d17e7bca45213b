package sbi

import (
	"accord/src/sbi/abi"
)

// Reset is the system reset extension.
type Reset struct {
	fw *Firmware
}

func (r *Reset) Handle(c *Call) abi.Ret {
	if c.FID != abi.ResetSystemReset {
		return abi.Fail(abi.NotSupported)
	}
	return r.SystemReset(c, uint32(c.Args[0]), uint32(c.Args[1]))
}

// SystemReset does not return to the caller on success; the hart halts
// once the reset device has been told.
func (r *Reset) SystemReset(c *Call, kind, reason uint32) abi.Ret {
	dev := r.fw.devices.Reset
	switch {
	case reason == abi.ResetReasonNone, reason == abi.ResetReasonSystemFailure,
		reason >= abi.ResetReasonSBIMin:
	default:
		return abi.Fail(abi.InvalidParam)
	}
	switch kind {
	case abi.ResetShutdown:
		r.fw.log.Infof("hart %d: shutdown, reason %#x", c.Hart.ID(), reason)
		switch {
		case reason == abi.ResetReasonNone:
			dev.Pass()
		case reason == abi.ResetReasonSystemFailure:
			dev.Fail(0xffff)
		default:
			dev.Fail(uint16(reason))
		}
	case abi.ResetColdReboot, abi.ResetWarmReboot:
		r.fw.log.Infof("hart %d: reboot, reason %#x", c.Hart.ID(), reason)
		dev.Reset(kind == abi.ResetWarmReboot)
	default:
		return abi.Fail(abi.InvalidParam)
	}
	c.halt()
	return abi.Ok(0)
}
