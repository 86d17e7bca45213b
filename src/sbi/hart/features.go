package hart

import (
	"sync/atomic"

	"accord/src/upbeat"
)

// Extension is an optional ISA feature a hart may have.
type Extension uint32

const (
	ExtSstc Extension = iota
	ExtHypervisor
	extensionCount
)

func (e Extension) String() string {
	switch e {
	case ExtSstc:
		return "sstc"
	case ExtHypervisor:
		return "h"
	}
	return "unknown"
}

// Extensions lists everything Features can hold, in bit order.
func Extensions() []Extension {
	return []Extension{ExtSstc, ExtHypervisor}
}

// PrivilegedVersion is detected from which machine CSRs exist.
type PrivilegedVersion uint32

const (
	PrivUnknown PrivilegedVersion = iota
	Priv1_10
	Priv1_11
	Priv1_12
)

func (p PrivilegedVersion) String() string {
	switch p {
	case Priv1_10:
		return "1.10"
	case Priv1_11:
		return "1.11"
	case Priv1_12:
		return "1.12"
	}
	return "unknown"
}

// Features are probed once at boot and read only afterwards.
type Features struct {
	extensions upbeat.BitSet
	version    atomic.Uint32
	mhpmMask   atomic.Uint32
}

func (f *Features) Has(e Extension) bool {
	return e < extensionCount && f.extensions.On(upbeat.BitIndex(e))
}

func (f *Features) Set(e Extension, present bool) {
	if e >= extensionCount {
		return
	}
	if present {
		f.extensions.Set(upbeat.BitIndex(e))
	} else {
		f.extensions.Clear(upbeat.BitIndex(e))
	}
}

func (f *Features) PrivilegedVersion() PrivilegedVersion {
	return PrivilegedVersion(f.version.Load())
}

func (f *Features) SetPrivilegedVersion(v PrivilegedVersion) {
	f.version.Store(uint32(v))
}

// MHPMMask has a bit for each of mcycle, time, minstret and the
// mhpmcounters that exists, numbered from mcycle.
func (f *Features) MHPMMask() uint32 {
	return f.mhpmMask.Load()
}

func (f *Features) SetMHPMMask(m uint32) {
	f.mhpmMask.Store(m)
}
