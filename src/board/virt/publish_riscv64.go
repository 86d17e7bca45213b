//go:build riscv64

package virt

import (
	"sync/atomic"
	"unsafe"

	"accord/src/hardware/riscv"
	"accord/src/sbi"
)

var published atomic.Pointer[sbi.Firmware]

func storeFirmware(fw *sbi.Firmware) {
	firmware = fw
	published.Store(fw)
}

func waitFirmware(core riscv.Core) *sbi.Firmware {
	for {
		if fw := published.Load(); fw != nil {
			return fw
		}
		core.Relax()
	}
}

// funcPC is the entry address of an assembly function.
func funcPC(fn func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&fn))
}
