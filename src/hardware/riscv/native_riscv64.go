//go:build riscv64

package riscv

//go:generate go run ../../tools/gencsr/cmd/gencsr csrs.txt csr_riscv64.s csr_riscv64.go

func fenceI()
func waitForInterrupt()

func sfenceVMAAll()
func sfenceVMAAddr(addr uint64)
func sfenceVMAID(id uint64)
func sfenceVMAAddrID(addr, id uint64)

func hfenceGVMAAll()
func hfenceGVMAAddr(addr uint64)
func hfenceGVMAID(id uint64)
func hfenceGVMAAddrID(addr, id uint64)

func hfenceVVMAAll()
func hfenceVVMAAddr(addr uint64)
func hfenceVVMAID(id uint64)
func hfenceVVMAAddrID(addr, id uint64)

// Native is the hart executing this code.  It has no state; every method
// goes straight to the hardware.
type Native struct{}

var _ Core = Native{}

func (Native) HartID() int                      { return int(readMhartid()) }
func (Native) ReadCSR(csr uint16) uint64        { return readCSR(csr) }
func (Native) WriteCSR(csr uint16, v uint64)    { writeCSR(csr, v) }
func (Native) SetCSR(csr uint16, bits uint64)   { setCSR(csr, bits) }
func (Native) ClearCSR(csr uint16, bits uint64) { clearCSR(csr, bits) }
func (Native) FenceI()                          { fenceI() }
func (Native) WaitForInterrupt()                { waitForInterrupt() }
func (Native) Relax()                           {}

func (Native) SFenceVMA(scope FenceScope, addr, asid uint64) {
	switch scope {
	case FenceAll:
		sfenceVMAAll()
	case FenceAddr:
		sfenceVMAAddr(addr)
	case FenceID:
		sfenceVMAID(asid)
	default:
		sfenceVMAAddrID(addr, asid)
	}
}

func (Native) HFenceGVMA(scope FenceScope, gaddr, vmid uint64) {
	switch scope {
	case FenceAll:
		hfenceGVMAAll()
	case FenceAddr:
		hfenceGVMAAddr(gaddr)
	case FenceID:
		hfenceGVMAID(vmid)
	default:
		hfenceGVMAAddrID(gaddr, vmid)
	}
}

func (Native) HFenceVVMA(scope FenceScope, addr, asid uint64) {
	switch scope {
	case FenceAll:
		hfenceVVMAAll()
	case FenceAddr:
		hfenceVVMAAddr(addr)
	case FenceID:
		hfenceVVMAID(asid)
	default:
		hfenceVVMAAddrID(addr, asid)
	}
}

// Halt parks the hart with machine interrupts off.  It only leaves wfi for
// a debugger.
func (Native) Halt() {
	clearMstatus(MstatusMIE)
	for {
		waitForInterrupt()
	}
}
