// Package riscv names the privileged architecture pieces the firmware touches
// and defines Core, the narrow interface through which all CSR access, fence
// instructions and wfi go.  Nothing above this package uses raw assembly.
package riscv

// CSR numbers.
const (
	CSRSstatus    uint16 = 0x100
	CSRSie        uint16 = 0x104
	CSRStvec      uint16 = 0x105
	CSRScounteren uint16 = 0x106
	CSRSscratch   uint16 = 0x140
	CSRSepc       uint16 = 0x141
	CSRScause     uint16 = 0x142
	CSRStval      uint16 = 0x143
	CSRSip        uint16 = 0x144
	CSRStimecmp   uint16 = 0x14d
	CSRSatp       uint16 = 0x180

	CSRMstatus       uint16 = 0x300
	CSRMisa          uint16 = 0x301
	CSRMedeleg       uint16 = 0x302
	CSRMideleg       uint16 = 0x303
	CSRMie           uint16 = 0x304
	CSRMtvec         uint16 = 0x305
	CSRMcounteren    uint16 = 0x306
	CSRMenvcfg       uint16 = 0x30a
	CSRMcountinhibit uint16 = 0x320
	CSRMscratch      uint16 = 0x340
	CSRMepc          uint16 = 0x341
	CSRMcause        uint16 = 0x342
	CSRMtval         uint16 = 0x343
	CSRMip           uint16 = 0x344

	CSRMcycle   uint16 = 0xb00
	CSRMinstret uint16 = 0xb02

	CSRCycle   uint16 = 0xc00
	CSRTime    uint16 = 0xc01
	CSRInstret uint16 = 0xc02
	CSRTimeh   uint16 = 0xc81

	CSRMvendorid uint16 = 0xf11
	CSRMarchid   uint16 = 0xf12
	CSRMimpid    uint16 = 0xf13
	CSRMhartid   uint16 = 0xf14
)

// mip / mie bits
const (
	MipSSIP uint64 = 1 << 1
	MipMSIP uint64 = 1 << 3
	MipSTIP uint64 = 1 << 5
	MipMTIP uint64 = 1 << 7
	MipSEIP uint64 = 1 << 9
	MipMEIP uint64 = 1 << 11
)

// mstatus bits
const (
	MstatusSIE   uint64 = 1 << 1
	MstatusMIE   uint64 = 1 << 3
	MstatusSPIE  uint64 = 1 << 5
	MstatusMPIE  uint64 = 1 << 7
	MstatusSPP   uint64 = 1 << 8
	MstatusMPP   uint64 = 3 << 11
	MstatusMPRV  uint64 = 1 << 17
	MstatusMXR   uint64 = 1 << 19
	mstatusMPPAt        = 11
)

// menvcfg bits
const (
	MenvcfgCBIEInvalidate uint64 = 3 << 4
	MenvcfgCBCFE          uint64 = 1 << 6
	MenvcfgCBZE           uint64 = 1 << 7
	MenvcfgSTCE           uint64 = 1 << 63
)

// Mode is a privilege level as it appears in mstatus.MPP.
type Mode uint64

const (
	ModeUser       Mode = 0
	ModeSupervisor Mode = 1
	ModeMachine    Mode = 3
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "User"
	case ModeSupervisor:
		return "Supervisor"
	case ModeMachine:
		return "Machine"
	}
	return "Invalid"
}

// Valid reports whether m is a mode a next stage may run in.
func (m Mode) Valid() bool {
	return m == ModeUser || m == ModeSupervisor || m == ModeMachine
}

// MPP extracts the previous privilege mode from an mstatus value.
func MPP(mstatus uint64) Mode {
	return Mode((mstatus & MstatusMPP) >> mstatusMPPAt)
}

// WithMPP returns mstatus with its MPP field replaced.
func WithMPP(mstatus uint64, m Mode) uint64 {
	return (mstatus &^ MstatusMPP) | (uint64(m)<<mstatusMPPAt)&MstatusMPP
}

// InterruptBit is the top bit of mcause.
const InterruptBit uint64 = 1 << 63

// Interrupt codes.
const (
	IntSupervisorSoft  uint64 = 1
	IntMachineSoft     uint64 = 3
	IntSupervisorTimer uint64 = 5
	IntMachineTimer    uint64 = 7
	IntSupervisorExt   uint64 = 9
	IntMachineExt      uint64 = 11
)

// Exception codes.
const (
	ExcInsnMisaligned   uint64 = 0
	ExcInsnAccessFault  uint64 = 1
	ExcIllegalInsn      uint64 = 2
	ExcBreakpoint       uint64 = 3
	ExcLoadMisaligned   uint64 = 4
	ExcLoadAccessFault  uint64 = 5
	ExcStoreMisaligned  uint64 = 6
	ExcStoreAccessFault uint64 = 7
	ExcEcallFromU       uint64 = 8
	ExcEcallFromS       uint64 = 9
	ExcEcallFromM       uint64 = 11
	ExcInsnPageFault    uint64 = 12
	ExcLoadPageFault    uint64 = 13
	ExcStorePageFault   uint64 = 15
)

// IsInterrupt splits an mcause value.
func IsInterrupt(mcause uint64) (bool, uint64) {
	return mcause&InterruptBit != 0, mcause &^ InterruptBit
}

// FenceScope says which operands of an sfence.vma / hfence are real
// registers; a missing operand is encoded as x0 and widens the fence.
type FenceScope uint8

const (
	FenceAll  FenceScope = 0
	FenceAddr FenceScope = 1 << 0
	FenceID   FenceScope = 1 << 1
)

// Core is the executing hart's privileged state.  There is exactly one
// native implementation (the hart running the code); the simulator has one
// per simulated hart.  Every method must be safe to call with interrupts
// masked.
type Core interface {
	HartID() int

	ReadCSR(csr uint16) uint64
	WriteCSR(csr uint16, v uint64)
	SetCSR(csr uint16, bits uint64)
	ClearCSR(csr uint16, bits uint64)

	FenceI()
	SFenceVMA(scope FenceScope, addr, asid uint64)
	HFenceGVMA(scope FenceScope, gaddr, vmid uint64)
	HFenceVVMA(scope FenceScope, addr, asid uint64)

	// WaitForInterrupt returns when an interrupt is pending, even one that
	// is not enabled in mie.
	WaitForInterrupt()
	// Relax is called once per iteration of every busy wait.
	Relax()
	// Halt never returns.
	Halt()
}
