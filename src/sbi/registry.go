package sbi

import (
	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/hart"
)

// Extension serves every function of one extension id.  An unknown
// function id must give abi.NotSupported.
type Extension interface {
	Handle(c *Call) abi.Ret
}

type afterCall uint8

const (
	afterReturn afterCall = iota
	afterEnter
	afterPark
	afterHalt
)

// Call is one ecall from the supervisor.  Handlers that do not return to
// the caller in the usual way say so through enter, park or halt.
type Call struct {
	Hart *hart.Context
	Core riscv.Core
	EID  uint64
	FID  uint64
	Args [6]uint64

	after afterCall
	next  hart.NextStage
}

func (c *Call) enter(next hart.NextStage) {
	c.after = afterEnter
	c.next = next
}

func (c *Call) park() { c.after = afterPark }
func (c *Call) halt() { c.after = afterHalt }

const (
	slotBase = iota
	slotLegacyPutchar
	slotLegacyGetchar
	slotTime
	slotIPI
	slotRFence
	slotHSM
	slotReset
	slotPMU
	slotConsole
	slotSuspend
	slotCount
)

var slotEIDs = [slotCount]uint64{
	slotBase:          abi.EIDBase,
	slotLegacyPutchar: abi.EIDLegacyPutchar,
	slotLegacyGetchar: abi.EIDLegacyGetchar,
	slotTime:          abi.EIDTime,
	slotIPI:           abi.EIDIPI,
	slotRFence:        abi.EIDRFence,
	slotHSM:           abi.EIDHSM,
	slotReset:         abi.EIDReset,
	slotPMU:           abi.EIDPMU,
	slotConsole:       abi.EIDConsole,
	slotSuspend:       abi.EIDSuspend,
}

func slotOf(eid uint64) (int, bool) {
	for i, e := range slotEIDs {
		if e == eid {
			return i, true
		}
	}
	return 0, false
}

// Registry is the fixed table of extensions.  It is filled before any hart
// leaves Boot and only read afterwards.
type Registry struct {
	slots [slotCount]Extension
}

// Bind fills the slot for eid.  It reports false for an eid with no slot.
func (r *Registry) Bind(eid uint64, e Extension) bool {
	i, ok := slotOf(eid)
	if !ok {
		return false
	}
	r.slots[i] = e
	return true
}

// Unbind empties the slot for eid.
func (r *Registry) Unbind(eid uint64) {
	if i, ok := slotOf(eid); ok {
		r.slots[i] = nil
	}
}

func (r *Registry) lookup(eid uint64) Extension {
	i, ok := slotOf(eid)
	if !ok {
		return nil
	}
	return r.slots[i]
}

// Probe reports whether eid is served.  It never calls the extension.
func (r *Registry) Probe(eid uint64) bool {
	return r.lookup(eid) != nil
}

// Route hands c to its extension.
func (r *Registry) Route(c *Call) abi.Ret {
	e := r.lookup(c.EID)
	if e == nil {
		return abi.Fail(abi.NotSupported)
	}
	return e.Handle(c)
}

// Each visits the bound extension ids in slot order.
func (r *Registry) Each(fn func(eid uint64)) {
	for i, e := range r.slots {
		if e != nil {
			fn(slotEIDs[i])
		}
	}
}
