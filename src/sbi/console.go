package sbi

import (
	"accord/src/sbi/abi"
)

const consoleChunk = 256

// Console is the debug console extension.  Buffers are named by physical
// address and copied through the memory collaborator.
type Console struct {
	fw *Firmware
}

func (con *Console) Handle(c *Call) abi.Ret {
	a := c.Args
	switch c.FID {
	case abi.ConsoleWrite:
		return con.Write(a[0], a[1], a[2])
	case abi.ConsoleRead:
		return con.Read(a[0], a[1], a[2])
	case abi.ConsoleWriteByte:
		con.putByte(byte(a[0]))
		return abi.Ok(0)
	}
	return abi.Fail(abi.NotSupported)
}

// Write sends up to n bytes starting at the physical address lo|hi<<64.
// Only the low word may be set on a 64 bit hart.
func (con *Console) Write(n, lo, hi uint64) abi.Ret {
	mem := con.fw.devices.Memory
	if hi != 0 || mem == nil || lo+n < lo {
		return abi.Fail(abi.InvalidParam)
	}
	var buf [consoleChunk]byte
	done := uint64(0)
	for done < n {
		chunk := buf[:min(n-done, consoleChunk)]
		if _, err := mem.ReadAt(chunk, int64(lo+done)); err != nil {
			return abi.Fail(abi.InvalidParam)
		}
		w, err := con.fw.devices.Console.Write(chunk)
		done += uint64(w)
		if err != nil {
			if done > 0 {
				break
			}
			return abi.Fail(abi.Failed)
		}
	}
	return abi.Ok(done)
}

// Read copies whatever input is pending, up to n bytes, to lo|hi<<64 and
// returns how many were copied.  It does not wait.
func (con *Console) Read(n, lo, hi uint64) abi.Ret {
	mem := con.fw.devices.Memory
	if hi != 0 || mem == nil || lo+n < lo {
		return abi.Fail(abi.InvalidParam)
	}
	var buf [consoleChunk]byte
	done := uint64(0)
	for done < n {
		chunk := buf[:min(n-done, consoleChunk)]
		r, err := con.fw.devices.Console.Read(chunk)
		if r > 0 {
			if _, werr := mem.WriteAt(chunk[:r], int64(lo+done)); werr != nil {
				return abi.Fail(abi.InvalidParam)
			}
			done += uint64(r)
		}
		if r < len(chunk) || err != nil {
			break
		}
	}
	return abi.Ok(done)
}

func (con *Console) putByte(b byte) {
	one := [1]byte{b}
	con.fw.devices.Console.Write(one[:])
}

// getByte reports -1 when there is no input.
func (con *Console) getByte() int64 {
	var one [1]byte
	if n, _ := con.fw.devices.Console.Read(one[:]); n == 1 {
		return int64(one[0])
	}
	return -1
}

// The legacy console calls return their result in a0 and leave a1 alone.

type legacyPutchar struct {
	con *Console
}

func (l legacyPutchar) Handle(c *Call) abi.Ret {
	l.con.putByte(byte(c.Args[0]))
	return abi.Ret{Error: 0, Value: c.Args[1]}
}

type legacyGetchar struct {
	con *Console
}

func (l legacyGetchar) Handle(c *Call) abi.Ret {
	return abi.Ret{Error: abi.Error(l.con.getByte()), Value: c.Args[1]}
}
