//go:build riscv64

package virt

import (
	"unsafe"

	"accord/src/hardware/riscv"
	"accord/src/sbi"
	"accord/src/sbi/cfg"
	"accord/src/trust"
)

// Provided by entry_riscv64.s.
func trapVector()

// resume records the caller's stack pointer and g in sp and gp, then
// returns to the frame in machine mode.  It does not come back.
func resume(frame uintptr, sp, gp *uintptr)

var (
	firmware *sbi.Firmware
	// trapSP and trapG are where trapVector finds the Go stack and g of the
	// hart it runs on, indexed by mhartid.  Main's goroutine never returns
	// from resume, so everything below its frame is free for traps.
	trapSP [cfg.MaxHarts]uintptr
	trapG  [cfg.MaxHarts]uintptr
)

// Main is called on every hart once it has a stack.  The boot hart builds
// the firmware; the rest wait until it has.
func Main(harts int, dtb uint64) {
	core := riscv.Native{}
	id := core.HartID()
	if id == 0 {
		board := NewBoard(harts, dtb)
		devices := board.Devices()
		trust.SetOutput(devices.Console)
		trust.SetLevel(trust.ParseLevel(cfg.LogLevel))
		fw, err := sbi.New(board, devices, trust.Prefixed("accord: "))
		if err != nil {
			trust.Errorf("%v", err)
			devices.Reset.Fail(1)
			core.Halt()
		}
		storeFirmware(fw)
	}
	fw := waitFirmware(core)
	ctx := fw.Harts().Get(uint64(id))
	core.WriteCSR(riscv.CSRMscratch, uint64(uintptr(unsafe.Pointer(&ctx.Frame))))
	core.WriteCSR(riscv.CSRMtvec, uint64(funcPC(trapVector)))
	fw.Boot(core)
	resume(uintptr(unsafe.Pointer(&ctx.Frame)), &trapSP[id], &trapG[id])
}

// handleTrap is called by trapVector with the stack and g saved by resume.
//
//go:nosplit
func handleTrap() {
	firmware.HandleTrap(riscv.Native{})
}
