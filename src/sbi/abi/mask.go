package abi

// IgnoreBase as a mask base selects every hart and the mask word is not
// looked at.
const IgnoreBase = ^uint64(0)

// HartMask addresses up to 64 harts starting at Base.
type HartMask struct {
	Mask uint64
	Base uint64
}

func AllHarts() HartMask {
	return HartMask{Base: IgnoreBase}
}

func (m HartMask) All() bool {
	return m.Base == IgnoreBase
}

// Empty is true when no hart at all is addressed.
func (m HartMask) Empty() bool {
	return !m.All() && m.Mask == 0
}

func (m HartMask) Has(hart uint64) bool {
	if m.All() {
		return true
	}
	if hart < m.Base || hart-m.Base >= 64 {
		return false
	}
	return m.Mask&(1<<(hart-m.Base)) != 0
}

// Each calls fn with every hart id named by an explicit mask, in order,
// until fn returns false.  It does nothing for an ignore-base mask; the
// caller knows which harts exist.
func (m HartMask) Each(fn func(hart uint64) bool) {
	if m.All() {
		return
	}
	for bit := uint64(0); bit < 64; bit++ {
		if m.Mask&(1<<bit) == 0 {
			continue
		}
		hart := m.Base + bit
		if hart < m.Base {
			// wrapped; nothing past here is addressable
			return
		}
		if !fn(hart) {
			return
		}
	}
}
