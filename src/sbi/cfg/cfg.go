// Package cfg holds the build time configuration of the firmware.  Nothing
// here is read at run time from the platform; change the constants and
// rebuild.
package cfg

// MaxHarts bounds every per-hart array.  Harts with a larger id are never
// enabled.
const MaxHarts = 8

// StackSizePerHart is the goroutine stack the boot code must give each
// hart's call to virt.Main; traps run on what is left of it.
const StackSizePerHart = 16 * 1024

const PageSize = 4096

// TLBFlushLimit is the largest range, in bytes, fenced page by page.  Any
// larger request becomes a full flush.
const TLBFlushLimit = 64 * PageSize

// LogLevel is the level set at boot.  See trust.ParseLevel.
const LogLevel = "info"

// LinkStart is where the firmware image is linked.
const LinkStart = 0x8000_0000

// JumpAddress is the default next stage entry for the boot hart.
const JumpAddress = 0x8020_0000

// ImplID is reported by the base extension.  It is not a registered
// implementation id.
const ImplID = 0x4143_4344

// ImplVersion is major<<16 | minor.
const ImplVersion = 0<<16 | 3

// MachineIDs are reported through the base extension when the core does not
// implement the corresponding CSRs.
const (
	DefaultMVendorID = 0
	DefaultMArchID   = 0
	DefaultMImpID    = 0
)

// PMUFirmwareCounters is the number of firmware event counters exposed per
// hart.  They are numbered after the hardware counters.
const PMUFirmwareCounters = 16

// PMUHardwareCounters is how many of mcycle, time, minstret and the
// mhpmcounters are reported.
const PMUHardwareCounters = 3
