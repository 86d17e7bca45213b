package sbi

import (
	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/cfg"
)

// Base answers version and probe queries.
type Base struct {
	fw *Firmware
}

func (b *Base) Handle(c *Call) abi.Ret {
	switch c.FID {
	case abi.BaseGetSpecVersion:
		return abi.Ok(abi.Version)
	case abi.BaseGetImplID:
		return abi.Ok(cfg.ImplID)
	case abi.BaseGetImplVersion:
		return abi.Ok(cfg.ImplVersion)
	case abi.BaseProbeExtension:
		if b.fw.registry.Probe(c.Args[0]) {
			return abi.Ok(1)
		}
		return abi.Ok(0)
	case abi.BaseGetMVendorID:
		return abi.Ok(c.Core.ReadCSR(riscv.CSRMvendorid))
	case abi.BaseGetMArchID:
		return abi.Ok(c.Core.ReadCSR(riscv.CSRMarchid))
	case abi.BaseGetMImpID:
		return abi.Ok(c.Core.ReadCSR(riscv.CSRMimpid))
	}
	return abi.Fail(abi.NotSupported)
}
