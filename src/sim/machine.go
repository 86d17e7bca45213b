// Package sim runs the firmware on the host: one goroutine per hart, a
// CLINT, memory, a console and a reset device all in Go memory.  The
// supervisor is not emulated instruction by instruction; each next stage
// entry point is a Go Program that makes calls and raises traps through a
// Supervisor.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"accord/src/hardware/clint"
	"accord/src/hardware/riscv"
	"accord/src/sbi"
	"accord/src/sbi/cfg"
	"accord/src/sbi/hart"
	"accord/src/trust"
)

// Program is the supervisor code found at one entry address.
type Program func(s *Supervisor)

// Config describes the machine to build.  Zero fields take the defaults
// below.
type Config struct {
	Harts    int
	Disabled []int
	Boot     int
	Entry    uint64
	Opaque   uint64
	MemBase  uint64
	MemSize  int
	// Hypervisor and Sstc are given to every hart.
	Hypervisor bool
	Sstc       bool
	Privileged hart.PrivilegedVersion
	Programs   map[uint64]Program
	Log        trust.Logger
	NoConsole  bool
	NoReset    bool
}

const (
	DefaultHarts   = 4
	DefaultMemSize = 16 << 20
	// TimebaseHz is the rate of mtime.
	TimebaseHz = 10_000_000
)

// Machine is a running simulated board.
type Machine struct {
	cfg     Config
	fw      *sbi.Firmware
	clint   *clint.CLINT
	regs    *clint.RegisterMap
	harts   []*Hart
	mem     *Memory
	console *Console
	events  eventLog

	timeLock sync.Mutex
	start    time.Time

	stop     chan struct{}
	stopOnce sync.Once
	result   Result
	crash    error
	wg       sync.WaitGroup
}

var ErrTimeout = errors.New("sim: machine still running")

// New builds a machine and its firmware.  Nothing runs until Start.
func New(c Config) (*Machine, error) {
	if c.Harts == 0 {
		c.Harts = DefaultHarts
	}
	if c.Harts > cfg.MaxHarts {
		return nil, fmt.Errorf("sim: %d harts, firmware is built for %d", c.Harts, cfg.MaxHarts)
	}
	if c.MemBase == 0 {
		c.MemBase = cfg.LinkStart
	}
	if c.MemSize == 0 {
		c.MemSize = DefaultMemSize
	}
	if c.Entry == 0 {
		c.Entry = cfg.JumpAddress
	}
	if c.Privileged == hart.PrivUnknown {
		c.Privileged = hart.Priv1_12
	}
	m := &Machine{
		cfg:     c,
		regs:    &clint.RegisterMap{},
		mem:     NewMemory(c.MemBase, c.MemSize),
		console: &Console{},
		start:   time.Now(),
		stop:    make(chan struct{}),
	}
	m.events.start = m.start
	m.clint = clint.New(m.regs, c.Harts)
	for i := 0; i < c.Harts; i++ {
		m.harts = append(m.harts, newHart(m, i, c.Hypervisor))
		m.clint.SetMTimeCmp(i, ^uint64(0))
	}
	d := sbi.Devices{
		IPI:    &ipiDevice{m: m, clint: m.clint},
		Memory: m.mem,
	}
	if !c.NoConsole {
		d.Console = m.console
	}
	if !c.NoReset {
		d.Reset = resetDevice{m}
	}
	fw, err := sbi.New(m, d, c.Log)
	if err != nil {
		return nil, err
	}
	m.fw = fw
	return m, nil
}

func (m *Machine) Firmware() *sbi.Firmware { return m.fw }
func (m *Machine) Memory() *Memory         { return m.mem }
func (m *Machine) Console() *Console       { return m.console }

// Events returns a copy of the log so far.
func (m *Machine) Events() []Event { return m.events.snapshot() }

// The Platform side of the machine.

func (m *Machine) Harts() []int {
	var ids []int
	for i := 0; i < m.cfg.Harts; i++ {
		if !m.disabled(i) {
			ids = append(ids, i)
		}
	}
	return ids
}

func (m *Machine) disabled(id int) bool {
	for _, d := range m.cfg.Disabled {
		if d == id {
			return true
		}
	}
	return false
}

func (m *Machine) BootHart() int { return m.cfg.Boot }

func (m *Machine) NextStage() hart.NextStage {
	return hart.NextStage{StartAddr: m.cfg.Entry, Opaque: m.cfg.Opaque, Mode: riscv.ModeSupervisor}
}

func (m *Machine) ValidAddress(addr uint64) bool {
	return m.mem.Contains(addr)
}

func (m *Machine) Extensions(int) []hart.Extension {
	var e []hart.Extension
	if m.cfg.Sstc {
		e = append(e, hart.ExtSstc)
	}
	if m.cfg.Hypervisor {
		e = append(e, hart.ExtHypervisor)
	}
	return e
}

func (m *Machine) PrivilegedVersion(int) hart.PrivilegedVersion {
	return m.cfg.Privileged
}

// mtime follows the host clock and never goes backwards.
func (m *Machine) mtime() uint64 {
	m.timeLock.Lock()
	defer m.timeLock.Unlock()
	now := uint64(time.Since(m.start) / (time.Second / TimebaseHz))
	if now > m.regs.MTime.Get() {
		m.regs.MTime.Set(now)
	}
	return m.regs.MTime.Get()
}

func (m *Machine) wake(id int) {
	if id < 0 || id >= len(m.harts) {
		return
	}
	select {
	case m.harts[id].wake <- struct{}{}:
	default:
	}
}

// finish records the first result and stops every hart.
func (m *Machine) finish(r Result) {
	m.stopOnce.Do(func() {
		m.result = r
		close(m.stop)
	})
}

// Stop ends the run without a reset device result.
func (m *Machine) Stop() {
	m.finish(Result{Kind: Stopped})
}

// Start boots every enabled hart on its own goroutine.
func (m *Machine) Start() {
	for _, id := range m.Harts() {
		m.wg.Add(1)
		go m.harts[id].run()
	}
}

// Wait blocks until every hart goroutine has exited or d has passed.  A
// supervisor program that panicked is reported as an error.
func (m *Machine) Wait(d time.Duration) (Result, error) {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		return Result{}, ErrTimeout
	}
	m.timeLock.Lock()
	crash := m.crash
	m.timeLock.Unlock()
	return m.result, crash
}

// Run is Start followed by Wait.
func (m *Machine) Run(d time.Duration) (Result, error) {
	m.Start()
	return m.Wait(d)
}

func (m *Machine) crashed(id int, r interface{}) {
	m.timeLock.Lock()
	if m.crash == nil {
		m.crash = fmt.Errorf("sim: hart %d: %v", id, r)
	}
	m.timeLock.Unlock()
	m.finish(Result{Kind: Failed})
}
