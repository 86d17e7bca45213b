package sbi_test

import (
	"testing"
	"time"

	"accord/src/sbi/abi"
	"accord/src/sbi/cfg"
	"accord/src/sim"
	"accord/src/trust"
)

var probed = []uint64{
	abi.EIDLegacySetTimer, abi.EIDLegacyPutchar, abi.EIDLegacyGetchar,
	abi.EIDBase, abi.EIDTime, abi.EIDIPI, abi.EIDRFence, abi.EIDHSM,
	abi.EIDReset, abi.EIDPMU, abi.EIDConsole, abi.EIDSuspend,
	0x0a00_0000, 0x1234_5678,
}

// Every argument is all ones so that no call that gets past its function
// id check does anything.
var junk = []uint64{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}

func TestProbeMatchesRoute(t *testing.T) {
	trust.SetLevel(trust.ErrorMask)
	configs := []struct {
		name string
		cfg  sim.Config
	}{
		{"full", sim.Config{}},
		{"no console", sim.Config{NoConsole: true}},
		{"no reset", sim.Config{NoReset: true}},
	}
	for _, c := range configs {
		t.Run(c.name, func(t *testing.T) {
			type outcome struct {
				probe  uint64
				served bool
			}
			got := make(map[uint64]outcome)
			done := make(chan struct{})
			c.cfg.Programs = map[uint64]sim.Program{
				cfg.JumpAddress: func(s *sim.Supervisor) {
					for _, eid := range probed {
						o := outcome{probe: s.Ecall(abi.EIDBase, abi.BaseProbeExtension, eid).Value}
						for fid := uint64(0); fid < 8 && !o.served; fid++ {
							r := s.Ecall(eid, fid, junk...)
							o.served = r.Error != abi.NotSupported
						}
						got[eid] = o
					}
					close(done)
				},
			}
			m, err := sim.New(c.cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			m.Start()
			select {
			case <-done:
			case <-time.After(10 * time.Second):
				t.Fatalf("probe program did not finish")
			}
			m.Stop()
			if _, err := m.Wait(10 * time.Second); err != nil {
				t.Fatalf("machine: %v", err)
			}
			for _, eid := range probed {
				o := got[eid]
				if (o.probe == 1) != o.served {
					t.Errorf("eid %#x: probe %d but served %v", eid, o.probe, o.served)
				}
			}
			if got[abi.EIDConsole].probe != 0 && c.cfg.NoConsole {
				t.Errorf("console probed without a console device")
			}
		})
	}
}

func TestBaseQueries(t *testing.T) {
	trust.SetLevel(trust.ErrorMask)
	var rets [7]abi.Ret
	m, err := sim.New(sim.Config{Programs: map[uint64]sim.Program{
		cfg.JumpAddress: func(s *sim.Supervisor) {
			for fid := range rets {
				rets[fid] = s.Ecall(abi.EIDBase, uint64(fid), abi.EIDHSM)
			}
			s.Ecall(abi.EIDReset, abi.ResetSystemReset, abi.ResetShutdown, abi.ResetReasonNone)
		},
	}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.Run(10 * time.Second); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := [7]uint64{abi.Version, cfg.ImplID, cfg.ImplVersion, 1, 0, 0, 1}
	for fid, r := range rets {
		if r.Error != abi.Success || r.Value != want[fid] {
			t.Errorf("base fid %d: %+v, want %#x", fid, r, want[fid])
		}
	}
}
