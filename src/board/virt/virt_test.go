package virt

import (
	"testing"
	"unsafe"

	"accord/src/hardware/mmio"
	"accord/src/hardware/riscv"
	"accord/src/sbi/cfg"
)

func TestBoard(t *testing.T) {
	b := NewBoard(cfg.MaxHarts+4, 0x8700_0000)
	if n := len(b.Harts()); n != cfg.MaxHarts {
		t.Errorf("%d harts", n)
	}
	next := b.NextStage()
	if next.StartAddr != cfg.JumpAddress || next.Opaque != 0x8700_0000 || next.Mode != riscv.ModeSupervisor {
		t.Errorf("next stage %+v", next)
	}
	cases := []struct {
		addr uint64
		ok   bool
	}{
		{RAMBase, false},
		{cfg.JumpAddress, true},
		{RAMBase + RAMSize - 4, true},
		{RAMBase + RAMSize, false},
		{UARTBase, false},
	}
	for _, c := range cases {
		if b.ValidAddress(c.addr) != c.ok {
			t.Errorf("ValidAddress(%#x) = %v", c.addr, !c.ok)
		}
	}
}

func TestFinisher(t *testing.T) {
	var reg mmio.Register32
	f := Finisher{reg: &reg}
	f.Pass()
	if reg.Get() != finisherPass {
		t.Errorf("pass wrote %#x", reg.Get())
	}
	f.Fail(0xfa)
	if reg.Get() != 0xfa<<16|finisherFail {
		t.Errorf("fail wrote %#x", reg.Get())
	}
	f.Reset(true)
	if reg.Get() != finisherReset {
		t.Errorf("reset wrote %#x", reg.Get())
	}
}

func TestPhysical(t *testing.T) {
	ram := make([]byte, 64)
	p := Physical{Base: uintptr(unsafe.Pointer(&ram[0])), Size: uintptr(len(ram))}
	if _, err := p.WriteAt([]byte("abcd"), int64(p.Base)+10); err != nil {
		t.Fatalf("write: %v", err)
	}
	if string(ram[10:14]) != "abcd" {
		t.Errorf("ram holds %q", ram[10:14])
	}
	got := make([]byte, 4)
	if _, err := p.ReadAt(got, int64(p.Base)+10); err != nil || string(got) != "abcd" {
		t.Errorf("read %q %v", got, err)
	}
	if _, err := p.ReadAt(got, int64(p.Base)+62); err != ErrNotRAM {
		t.Errorf("read past the end: %v", err)
	}
	if _, err := p.ReadAt(got, int64(p.Base)-1); err != ErrNotRAM {
		t.Errorf("read before the start: %v", err)
	}
}
