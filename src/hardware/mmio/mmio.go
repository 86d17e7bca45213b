// Package mmio holds register types for memory mapped devices.  A device is
// described as a struct of registers laid out at the device's offsets and
// placed over its base address with At.
package mmio

import (
	"sync/atomic"
	"unsafe"
)

// At views the memory at addr as a *T.
func At[T any](addr uintptr) *T {
	return (*T)(unsafe.Pointer(addr))
}

type Register32 struct {
	v atomic.Uint32
}

func (r *Register32) Get() uint32           { return r.v.Load() }
func (r *Register32) Set(value uint32)      { r.v.Store(value) }
func (r *Register32) SetBits(bits uint32)   { r.v.Store(r.v.Load() | bits) }
func (r *Register32) ClearBits(bits uint32) { r.v.Store(r.v.Load() &^ bits) }
func (r *Register32) HasBits(bits uint32) bool {
	return r.v.Load()&bits != 0
}

// ReplaceBits writes value into the field mask<<pos.
func (r *Register32) ReplaceBits(value, mask uint32, pos uint8) {
	r.v.Store(r.v.Load()&^(mask<<pos) | (value&mask)<<pos)
}

type Register64 struct {
	v atomic.Uint64
}

func (r *Register64) Get() uint64      { return r.v.Load() }
func (r *Register64) Set(value uint64) { r.v.Store(value) }

// Register8 is a byte wide register.  There is no byte sized atomic, so
// the accessors are kept out of line to force a real load or store on
// every call.
type Register8 struct {
	v uint8
}

//go:noinline
func (r *Register8) Get() uint8 { return r.v }

//go:noinline
func (r *Register8) Set(value uint8) { r.v = value }

func (r *Register8) HasBits(bits uint8) bool { return r.Get()&bits != 0 }
