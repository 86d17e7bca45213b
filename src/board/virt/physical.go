package virt

import (
	"errors"
	"unsafe"
)

var ErrNotRAM = errors.New("virt: address outside ram")

// Physical reads and writes RAM directly.  Firmware runs with translation
// off, so an offset is a physical address.
type Physical struct {
	Base uintptr
	Size uintptr
}

func (p Physical) window(off int64, n int) ([]byte, error) {
	addr := uintptr(off)
	if off < 0 || addr < p.Base || addr-p.Base > p.Size || uintptr(n) > p.Size-(addr-p.Base) {
		return nil, ErrNotRAM
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n), nil
}

func (p Physical) ReadAt(b []byte, off int64) (int, error) {
	w, err := p.window(off, len(b))
	if err != nil {
		return 0, err
	}
	return copy(b, w), nil
}

func (p Physical) WriteAt(b []byte, off int64) (int, error) {
	w, err := p.window(off, len(b))
	if err != nil {
		return 0, err
	}
	return copy(w, b), nil
}
