package main

import (
	"fmt"

	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sim"
)

const demoOpaque = 0x1234

// The boot hart starts everyone else this far past its own entry.
const secondaryOffset = 0x1000

// demo is a small supervisor: the boot hart greets, starts the others,
// fences them all and, when interactive, echoes input until q.  Then it
// shuts the machine down.
func demo(entry uint64, interactive bool) map[uint64]sim.Program {
	secondary := entry + secondaryOffset
	return map[uint64]sim.Program{
		entry: func(s *sim.Supervisor) {
			a0, a1 := s.Args()
			puts(s, fmt.Sprintf("hart %d up, opaque %#x\n", a0, a1))
			n := s.Machine().Firmware().Harts().EnabledCount()
			for h := 0; h < n; h++ {
				if h == s.HartID() {
					continue
				}
				r := s.Ecall(abi.EIDHSM, abi.HSMStart, uint64(h), secondary, uint64(h)*0x10)
				if r.Error != abi.Success {
					puts(s, fmt.Sprintf("hart_start(%d): %v\n", h, r.Error))
				}
			}
			for h := 0; h < n; h++ {
				for s.Ecall(abi.EIDHSM, abi.HSMGetStatus, uint64(h)).Value != uint64(abi.Started) {
					s.Poll()
				}
			}
			r := s.Ecall(abi.EIDRFence, abi.RFenceSFenceVMA, 0, abi.IgnoreBase, 0, 0x4000)
			puts(s, fmt.Sprintf("remote sfence.vma: %v, time %d\n", r.Error, s.ReadTime()))
			s.Ecall(abi.EIDIPI, abi.IPISend, 0, abi.IgnoreBase)

			if interactive {
				puts(s, "type, q to quit\n")
				for {
					c := s.Ecall(abi.EIDLegacyGetchar, 0)
					if c.Error < 0 {
						s.Poll()
						continue
					}
					if c.Error == 'q' {
						break
					}
					s.Ecall(abi.EIDConsole, abi.ConsoleWriteByte, uint64(c.Error))
				}
			}
			puts(s, "bye\n")
			s.Ecall(abi.EIDReset, abi.ResetSystemReset, abi.ResetShutdown, abi.ResetReasonNone)
		},
		secondary: func(s *sim.Supervisor) {
			a0, a1 := s.Args()
			puts(s, fmt.Sprintf("hart %d started in %s mode, opaque %#x\n", a0, s.Mode(), a1))
			if s.Mode() != riscv.ModeSupervisor {
				s.Ecall(abi.EIDHSM, abi.HSMStop)
			}
		},
	}
}

// puts copies str into the hart's scratch page and writes it with the
// debug console.
func puts(s *sim.Supervisor, str string) {
	mem := s.Machine().Memory()
	buf := mem.Base() + mem.Size() - uint64(s.HartID()+1)*0x1000
	mem.WriteAt([]byte(str), int64(buf))
	s.Ecall(abi.EIDConsole, abi.ConsoleWrite, uint64(len(str)), buf, 0)
}
