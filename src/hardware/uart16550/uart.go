// Package uart16550 is a polled driver for the NS16550A found on most
// riscv boards and in qemu.  Registers are one byte apart.
package uart16550

import (
	"accord/src/hardware/mmio"
)

type RegisterMap struct {
	Data        mmio.Register8 //0x00 rbr/thr, dll when DLAB
	IntEnable   mmio.Register8 //0x01 dlm when DLAB
	FIFOControl mmio.Register8 //0x02 write only, iir on read
	LineControl mmio.Register8 //0x03
	ModemCtrl   mmio.Register8 //0x04
	LineStatus  mmio.Register8 //0x05
	ModemStatus mmio.Register8 //0x06
	Scratch     mmio.Register8 //0x07
}

// line status bits
const DataReady = 1 << 0
const TransmitHoldingEmpty = 1 << 5

// line control bits
const DataLength8Bits = 3 << 0
const DLab = 1 << 7

// fifo control bits
const FIFOEnable = 1 << 0
const FIFOClear = 3 << 1

type UART struct {
	regs *RegisterMap
}

func At(base uintptr) *UART {
	return New(mmio.At[RegisterMap](base))
}

func New(regs *RegisterMap) *UART {
	return &UART{regs: regs}
}

// Init sets 8N1 and the divisor; a divisor of zero leaves the rate the
// previous stage programmed.
func (u *UART) Init(divisor uint16) {
	u.regs.IntEnable.Set(0)
	if divisor != 0 {
		u.regs.LineControl.Set(DLab)
		u.regs.Data.Set(uint8(divisor))
		u.regs.IntEnable.Set(uint8(divisor >> 8))
	}
	u.regs.LineControl.Set(DataLength8Bits)
	u.regs.FIFOControl.Set(FIFOEnable | FIFOClear)
}

func (u *UART) PutByte(b byte) {
	for !u.regs.LineStatus.HasBits(TransmitHoldingEmpty) {
	}
	u.regs.Data.Set(b)
}

// GetByte does not wait.
func (u *UART) GetByte() (byte, bool) {
	if !u.regs.LineStatus.HasBits(DataReady) {
		return 0, false
	}
	return u.regs.Data.Get(), true
}

// Write sends all of p, waiting on the transmitter as needed.
func (u *UART) Write(p []byte) (int, error) {
	for _, b := range p {
		u.PutByte(b)
	}
	return len(p), nil
}

// Read returns whatever is already received, possibly nothing.
func (u *UART) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, ok := u.GetByte()
		if !ok {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}
