// Package abi is the supervisor call interface as seen on the wire: the
// two word result, the error codes, the extension and function numbers and
// the hart mask encoding.  It has no behavior beyond decoding.
package abi

// Error is the signed code returned in a0.
type Error int64

const (
	Success          Error = 0
	Failed           Error = -1
	NotSupported     Error = -2
	InvalidParam     Error = -3
	Denied           Error = -4
	InvalidAddress   Error = -5
	AlreadyAvailable Error = -6
	AlreadyStarted   Error = -7
	AlreadyStopped   Error = -8
	NoSharedMemory   Error = -9
	DeniedLocked     Error = -10
)

var errorText = [...]string{
	"success",
	"failed",
	"not supported",
	"invalid parameter",
	"denied",
	"invalid address",
	"already available",
	"already started",
	"already stopped",
	"no shared memory",
	"denied (locked)",
}

func (e Error) Error() string {
	if e > 0 || int(-e) >= len(errorText) {
		return "unknown sbi error"
	}
	return errorText[-e]
}

// Ret is the (a0, a1) pair handed back to the supervisor.
type Ret struct {
	Error Error
	Value uint64
}

func Ok(value uint64) Ret {
	return Ret{Value: value}
}

func Fail(e Error) Ret {
	return Ret{Error: e}
}

// Err is nil on success and the code otherwise.
func (r Ret) Err() error {
	if r.Error == Success {
		return nil
	}
	return r.Error
}

// Registers returns the values for a0 and a1.
func (r Ret) Registers() (a0, a1 uint64) {
	return uint64(r.Error), r.Value
}
