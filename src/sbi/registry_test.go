package sbi

import (
	"testing"

	"accord/src/hardware/riscv"
	"accord/src/sbi/abi"
	"accord/src/sbi/cfg"
	"accord/src/sbi/hart"
)

type echo struct {
	calls int
}

func (e *echo) Handle(c *Call) abi.Ret {
	e.calls++
	if c.FID != 0 {
		return abi.Fail(abi.NotSupported)
	}
	return abi.Ok(c.Args[0])
}

func TestRegistry(t *testing.T) {
	var r Registry
	e := &echo{}
	if r.Bind(0x1234_5678, e) {
		t.Errorf("bound an extension id with no slot")
	}
	if !r.Bind(abi.EIDTime, e) {
		t.Fatalf("time slot refused")
	}
	if !r.Probe(abi.EIDTime) || r.Probe(abi.EIDHSM) {
		t.Errorf("probe wrong after bind")
	}
	if e.calls != 0 {
		t.Errorf("probe called the extension")
	}
	ret := r.Route(&Call{EID: abi.EIDTime, Args: [6]uint64{42}})
	if ret.Error != abi.Success || ret.Value != 42 {
		t.Errorf("route: %+v", ret)
	}
	if ret := r.Route(&Call{EID: abi.EIDHSM}); ret.Error != abi.NotSupported {
		t.Errorf("route to empty slot: %v", ret.Error)
	}
	var bound []uint64
	r.Each(func(eid uint64) { bound = append(bound, eid) })
	if len(bound) != 1 || bound[0] != abi.EIDTime {
		t.Errorf("Each visited %#x", bound)
	}
	r.Unbind(abi.EIDTime)
	if r.Probe(abi.EIDTime) {
		t.Errorf("still bound after Unbind")
	}
}

func TestValidRange(t *testing.T) {
	cases := []struct {
		start, size uint64
		ok          bool
	}{
		{0, 0, true},
		{0x1000, 0x1000, true},
		{0x1001, 0x1000, false},
		{0x1001, hart.WholeRange, false},
		{0x2000, hart.WholeRange, true},
		{^uint64(0) &^ (cfg.PageSize - 1), cfg.PageSize, false},
	}
	for _, c := range cases {
		if validRange(c.start, c.size) != c.ok {
			t.Errorf("validRange(%#x, %#x) = %v", c.start, c.size, !c.ok)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		insn uint32
		want access
		ok   bool
	}{
		{"lh t0", 5<<7 | 1<<12 | 0x03, access{width: 2, signed: true, reg: 5}, true},
		{"lwu a5", 15<<7 | 6<<12 | 0x03, access{width: 4, reg: 15}, true},
		{"sw s1", 9<<20 | 2<<12 | 0x23, access{store: true, width: 4, reg: 9}, true},
		{"sd zero", 3<<12 | 0x23, access{store: true, width: 8, reg: 0}, true},
		{"c.lw a3", 0x4000 | 5<<2, access{width: 4, signed: true, reg: 13}, true},
		{"c.sd a3", 0xe000 | 5<<2, access{store: true, width: 8, reg: 13}, true},
		{"c.ldsp s0", 0x6002 | 8<<7, access{width: 8, reg: 8}, true},
		{"c.swsp a4", 0xc002 | 14<<2, access{store: true, width: 4, reg: 14}, true},
		{"add", 0x33, access{}, false},
	}
	for _, c := range cases {
		got, ok := classify(c.insn)
		if ok != c.ok || got != c.want {
			t.Errorf("%s: %+v %v", c.name, got, ok)
		}
	}
}

func TestFenceTables(t *testing.T) {
	if len(fenceKinds) != abi.RFenceHFenceVVMA+1 {
		t.Errorf("%d fence functions", len(fenceKinds))
	}
	for fid, k := range fenceKinds {
		if sentEvent[k]%2 != 0 {
			t.Errorf("fid %d: sent event %d is a received one", fid, sentEvent[k])
		}
	}
}

func TestPopCount(t *testing.T) {
	if popCount(0b1011) != 3 || popCount64(^uint64(0)) != 64 || popCount(0) != 0 {
		t.Errorf("popcount")
	}
}

// The mode check comes before anything touches the device, so a nil
// firmware device set is never reached.
func TestStartRejectsMachineMode(t *testing.T) {
	f := &Firmware{harts: hart.NewArena()}
	f.harts.Enable(1)
	f.hsm = &HSM{fw: f}
	if r := f.hsm.StartInMode(1, cfg.JumpAddress, 0, riscv.ModeMachine); r.Error != abi.InvalidParam {
		t.Errorf("start in machine mode: %v", r.Error)
	}
}
