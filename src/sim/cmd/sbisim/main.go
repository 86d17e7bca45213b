package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"time"

	tty "github.com/mattn/go-tty"

	"accord/src/sim"
	"accord/src/trust"
)

var helpFlag = flag.Bool("h", false, "get usage info")
var hartsFlag = flag.Int("harts", sim.DefaultHarts, "number of harts")
var entryFlag = flag.Uint64("entry", 0x8020_0000, "next stage entry address of the boot hart")
var verbose = flag.Int("v", 0, "verbosity level: 0 terse (default), 1 debug info, 2 show everything")
var interactive = flag.Bool("i", false, "read console input from the terminal in raw mode")
var timeout = flag.Duration("timeout", 10*time.Second, "give up on a machine that has not reset by then")
var pprofFlag = flag.String("pprof", "", "write a pprof profile of firmware events to this file")
var timelineFlag = flag.String("timeline", "", "write a png timeline of firmware events to this file")
var eventsFlag = flag.Bool("events", false, "dump the event log when the machine stops")

func usage() {
	fmt.Fprintf(os.Stderr, "usage: sbisim [flags]\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Parse()
	if *helpFlag || flag.NArg() != 0 {
		usage()
	}
	trust.SetOutput(os.Stderr)
	switch *verbose {
	case 0:
		trust.SetLevel(trust.InfoMask)
	case 1:
		trust.SetLevel(trust.DebugMask)
	default:
		trust.SetLevel(trust.DebugMask | trust.StatsMask)
	}

	var term *tty.TTY
	if *interactive {
		var err error
		term, err = tty.Open()
		if err != nil {
			trust.Fatalf(1, "unable to open terminal: %v", err)
		}
		defer term.Close()
		restore := term.MustRaw()
		defer restore()
	}

	m, err := sim.New(sim.Config{
		Harts:    *hartsFlag,
		Entry:    *entryFlag,
		Opaque:   demoOpaque,
		Programs: demo(*entryFlag, *interactive),
		Log:      trust.Prefixed("sbi: "),
	})
	if err != nil {
		trust.Fatalf(1, "%v", err)
	}
	m.Console().SetEcho(func(b []byte) {
		if term != nil {
			b = bytes.ReplaceAll(b, []byte("\n"), []byte("\r\n"))
		}
		os.Stdout.Write(b)
	})
	if term != nil {
		go feed(term, m.Console())
	}

	result, err := m.Run(*timeout)
	if err == sim.ErrTimeout {
		trust.Warnf("machine did not reset within %s", *timeout)
		m.Stop()
		result, err = m.Wait(time.Second)
	}
	if err != nil {
		trust.Errorf("%v", err)
	}
	if *eventsFlag {
		for _, e := range m.Events() {
			fmt.Fprintln(os.Stderr, e)
		}
	}
	trust.Statsf("events", "%d events logged", len(m.Events()))
	for _, c := range sim.Latency(m.Events()) {
		trust.Statsf("latency", "eid %#x: %d calls, mean %s, median %s, p99 %s, max %s",
			c.EID, c.Calls, c.Mean, c.Median, c.P99, c.Max)
	}
	if *pprofFlag != "" {
		writeFile(*pprofFlag, func(f *os.File) error { return m.Profile().Write(f) })
	}
	if *timelineFlag != "" {
		writeFile(*timelineFlag, func(f *os.File) error {
			return sim.Timeline(m.Events(), *hartsFlag).EncodePNG(f)
		})
	}
	trust.Infof("machine stopped: %s code %#x", result.Kind, result.Code)
	if result.Kind != sim.Passed {
		os.Exit(2)
	}
}

// feed passes keystrokes to the console until the terminal goes away.
func feed(term *tty.TTY, con *sim.Console) {
	for {
		r, err := term.ReadRune()
		if err != nil {
			return
		}
		var b [4]byte
		n := copy(b[:], string(r))
		con.Feed(b[:n])
	}
}

func writeFile(path string, fn func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		trust.Errorf("%v", err)
		return
	}
	if err := fn(f); err != nil {
		trust.Errorf("writing %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		trust.Errorf("closing %s: %v", path, err)
	}
}
