package sim

import (
	"errors"
	"sync"

	"accord/src/hardware/clint"
)

// ipiDevice is a CLINT over Go memory.  Raising a hart's msip also wakes
// its goroutine if it is sitting in wfi.
type ipiDevice struct {
	m     *Machine
	clint *clint.CLINT
}

func (d *ipiDevice) SetMSIP(hart int) {
	d.clint.SetMSIP(hart)
	d.m.events.add(Event{Hart: hart, Kind: EventMSIP})
	d.m.wake(hart)
}

func (d *ipiDevice) ClearMSIP(hart int) {
	d.clint.ClearMSIP(hart)
}

func (d *ipiDevice) MTime() uint64 {
	return d.m.mtime()
}

func (d *ipiDevice) SetMTimeCmp(hart int, v uint64) {
	d.clint.SetMTimeCmp(hart, v)
	d.m.wake(hart)
}

var ErrOutOfRange = errors.New("sim: access outside memory")

// Memory is the physical memory of the machine.
type Memory struct {
	lock sync.RWMutex
	base uint64
	buf  []byte
}

func NewMemory(base uint64, size int) *Memory {
	return &Memory{base: base, buf: make([]byte, size)}
}

func (m *Memory) Base() uint64 { return m.base }
func (m *Memory) Size() uint64 { return uint64(len(m.buf)) }

// Contains reports whether addr is backed.
func (m *Memory) Contains(addr uint64) bool {
	return addr >= m.base && addr-m.base < uint64(len(m.buf))
}

func (m *Memory) span(off int64, n int) ([]byte, error) {
	addr := uint64(off)
	if !m.Contains(addr) || uint64(n) > uint64(len(m.buf))-(addr-m.base) {
		return nil, ErrOutOfRange
	}
	return m.buf[addr-m.base : addr-m.base+uint64(n)], nil
}

func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	src, err := m.span(off, len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, src), nil
}

func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	dst, err := m.span(off, len(p))
	if err != nil {
		return 0, err
	}
	return copy(dst, p), nil
}

// Console buffers everything written and hands out queued input without
// blocking.
type Console struct {
	lock sync.Mutex
	out  []byte
	in   []byte
	echo func([]byte)
}

func (c *Console) Write(p []byte) (int, error) {
	c.lock.Lock()
	c.out = append(c.out, p...)
	echo := c.echo
	c.lock.Unlock()
	if echo != nil {
		echo(p)
	}
	return len(p), nil
}

func (c *Console) Read(p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	n := copy(p, c.in)
	c.in = c.in[n:]
	return n, nil
}

// Feed queues input for the supervisor.
func (c *Console) Feed(b []byte) {
	c.lock.Lock()
	c.in = append(c.in, b...)
	c.lock.Unlock()
}

// Output is everything written so far.
func (c *Console) Output() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return string(c.out)
}

// SetEcho also passes every write to fn.
func (c *Console) SetEcho(fn func([]byte)) {
	c.lock.Lock()
	c.echo = fn
	c.lock.Unlock()
}

// ResultKind says how the machine ended.
type ResultKind int

const (
	Running ResultKind = iota
	Passed
	Failed
	Rebooted
	Stopped
)

func (k ResultKind) String() string {
	switch k {
	case Running:
		return "running"
	case Passed:
		return "pass"
	case Failed:
		return "fail"
	case Rebooted:
		return "reboot"
	case Stopped:
		return "stopped"
	}
	return "invalid"
}

// Result is what the reset device was told.
type Result struct {
	Kind ResultKind
	Code uint16
	Warm bool
}

type resetDevice struct {
	m *Machine
}

func (r resetDevice) Pass()            { r.m.finish(Result{Kind: Passed}) }
func (r resetDevice) Fail(code uint16) { r.m.finish(Result{Kind: Failed, Code: code}) }
func (r resetDevice) Reset(warm bool)  { r.m.finish(Result{Kind: Rebooted, Warm: warm}) }
