package abi

// Version is the call interface revision this firmware speaks, 2.0.
const Version = 2<<24 | 0

// Extension ids.
const (
	EIDLegacySetTimer = 0x00
	EIDLegacyPutchar  = 0x01
	EIDLegacyGetchar  = 0x02
	EIDBase           = 0x10
	EIDTime           = 0x54494d45 // "TIME"
	EIDIPI            = 0x735049   // "sPI"
	EIDRFence         = 0x52464e43 // "RFNC"
	EIDHSM            = 0x48534d   // "HSM"
	EIDReset          = 0x53525354 // "SRST"
	EIDPMU            = 0x504d55   // "PMU"
	EIDConsole        = 0x4442434e // "DBCN"
	EIDSuspend        = 0x53555350 // "SUSP"
)

// Base functions.
const (
	BaseGetSpecVersion = iota
	BaseGetImplID
	BaseGetImplVersion
	BaseProbeExtension
	BaseGetMVendorID
	BaseGetMArchID
	BaseGetMImpID
)

const TimeSetTimer = 0

const IPISend = 0

// RFENCE functions.
const (
	RFenceFenceI = iota
	RFenceSFenceVMA
	RFenceSFenceVMAASID
	RFenceHFenceGVMAVMID
	RFenceHFenceGVMA
	RFenceHFenceVVMAASID
	RFenceHFenceVVMA
)

// HSM functions.
const (
	HSMStart = iota
	HSMStop
	HSMGetStatus
	HSMSuspend
)

// HartState is a lifecycle state as reported by hart_get_status.
type HartState uint64

const (
	Started HartState = iota
	Stopped
	StartPending
	StopPending
	Suspended
	SuspendPending
	ResumePending
)

var stateNames = [...]string{
	"started", "stopped", "start-pending", "stop-pending",
	"suspended", "suspend-pending", "resume-pending",
}

func (s HartState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "invalid"
}

// Suspend types.
const (
	SuspendRetentive    = 0x0000_0000
	SuspendNonRetentive = 0x8000_0000
)

// SuspendTypeKnown reports whether kind is one of the two defined types.
// Reserved and platform ranges are not.
func SuspendTypeKnown(kind uint64) bool {
	return kind == SuspendRetentive || kind == SuspendNonRetentive
}

const ResetSystemReset = 0

// Reset types.
const (
	ResetShutdown = iota
	ResetColdReboot
	ResetWarmReboot
)

// Reset reasons.  Anything from ResetReasonSBIMin up is implementation or
// platform specific.
const (
	ResetReasonNone          = 0
	ResetReasonSystemFailure = 1
	ResetReasonSBIMin        = 0xe000_0000
)

const SuspendSystemSuspend = 0

// System sleep types.
const SuspendToRAM = 0

// Console functions.
const (
	ConsoleWrite = iota
	ConsoleRead
	ConsoleWriteByte
)

// PMU functions.
const (
	PMUNumCounters = iota
	PMUCounterGetInfo
	PMUCounterConfigMatching
	PMUCounterStart
	PMUCounterStop
	PMUCounterFWRead
	PMUCounterFWReadHi
)

// PMU event type held in event_idx[19:16].
const PMUEventTypeFirmware = 0xf

// Firmware events, event_idx[15:0].
const (
	PMUFWMisalignedLoad = iota
	PMUFWMisalignedStore
	PMUFWAccessLoad
	PMUFWAccessStore
	PMUFWIllegalInsn
	PMUFWSetTimer
	PMUFWIPISent
	PMUFWIPIReceived
	PMUFWFenceISent
	PMUFWFenceIReceived
	PMUFWSFenceVMASent
	PMUFWSFenceVMAReceived
	PMUFWSFenceVMAASIDSent
	PMUFWSFenceVMAASIDReceived
	PMUFWHFenceGVMASent
	PMUFWHFenceGVMAReceived
	PMUFWHFenceGVMAVMIDSent
	PMUFWHFenceGVMAVMIDReceived
	PMUFWHFenceVVMASent
	PMUFWHFenceVVMAReceived
	PMUFWHFenceVVMAASIDSent
	PMUFWHFenceVVMAASIDReceived
	PMUFWEventCount
)

// PMU counter config flags.
const (
	PMUCfgSkipMatch  = 1 << 0
	PMUCfgClearValue = 1 << 1
	PMUCfgAutoStart  = 1 << 2
)

const PMUStartSetInitValue = 1 << 0
const PMUStopReset = 1 << 0
