package trust

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

type MaskLevel int

const (
	Nothing   MaskLevel = 0x0
	ErrorMask MaskLevel = 0x1
	WarnMask  MaskLevel = 0x2
	InfoMask  MaskLevel = 0x4
	DebugMask MaskLevel = 0x8
	StatsMask MaskLevel = 0x10
	fatalMask MaskLevel = 0x80
)

// Logger is what firmware components hold instead of calling the package
// functions directly, so a board can route one subsystem somewhere else.
type Logger interface {
	Errorf(format string, params ...interface{})
	Warnf(format string, params ...interface{})
	Infof(format string, params ...interface{})
	Debugf(format string, params ...interface{})
}

var level atomic.Int32

// out is swapped whole; harts log concurrently and a half-written sink is
// worse than a lost line.
var out atomic.Pointer[sinkHolder]

type sinkHolder struct {
	w io.Writer
}

// exit is replaced by boards that have no process to exit from.
var exit = os.Exit

func init() {
	level.Store(int32(fatalMask | ErrorMask | WarnMask | InfoMask))
	out.Store(&sinkHolder{w: os.Stdout})
}

// SetLevel lets you set an error mask directly. You can pass in something like
// ErrorMask | DebugMask to control exactly what gets printed.  It returns the
// previous mask.
func SetLevel(mask MaskLevel) MaskLevel {
	if mask&0x1f == 0 {
		logf(WarnMask, "trust.SetLevel is turning off log messages")
	}
	result := Nothing
	switch {
	case mask&DebugMask > 0:
		result |= DebugMask
		fallthrough
	case mask&InfoMask > 0:
		result |= InfoMask
		fallthrough
	case mask&WarnMask > 0:
		result |= WarnMask
		fallthrough
	case mask&ErrorMask > 0:
		result |= ErrorMask
	}
	result |= mask & StatsMask
	r := MaskLevel(level.Load()) & 0x1f
	level.Store(int32(result | fatalMask))
	return r
}

func Level() MaskLevel {
	return MaskLevel(level.Load())
}

// ParseLevel turns a config level name ("error", "warn", "info", "debug",
// "trace", "off") into a mask.  Unknown names give info.
func ParseLevel(s string) MaskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return Nothing
	case "error":
		return ErrorMask
	case "warn", "warning":
		return WarnMask
	case "debug":
		return DebugMask
	case "trace":
		return DebugMask | StatsMask
	}
	return InfoMask
}

func LevelToString() string {
	l := Level()
	var parts []string
	if l&ErrorMask > 0 {
		parts = append(parts, "error")
	}
	if l&WarnMask > 0 {
		parts = append(parts, "warn")
	}
	if l&InfoMask > 0 {
		parts = append(parts, "info")
	}
	if l&DebugMask > 0 {
		parts = append(parts, "debug")
	}
	if l&StatsMask > 0 {
		parts = append(parts, "stats")
	}
	return strings.Join(parts, " ")
}

// SetOutput points all log output at w.  The firmware calls this with its
// console device once the console is up.
func SetOutput(w io.Writer) {
	out.Store(&sinkHolder{w: w})
}

// SetExit replaces the function Fatalf uses to stop.  It returns the
// previous one.
func SetExit(fn func(int)) func(int) {
	prev := exit
	exit = fn
	return prev
}

func logf(l MaskLevel, format string, params ...interface{}) {
	if MaskLevel(level.Load())&l == 0 {
		return
	}
	start := 0
	prefix := ""
	switch {
	case l&ErrorMask > 0, l&fatalMask > 0:
		prefix = "ERROR:"
	case l&WarnMask > 0:
		prefix = " WARN:"
	case l&InfoMask > 0:
		prefix = " INFO:"
	case l&DebugMask > 0:
		prefix = "DEBUG:"
	case l&StatsMask > 0:
		s := "unknown"
		if len(params) > 0 {
			if cat, ok := params[0].(string); ok {
				s = cat
			}
			start = 1
		}
		prefix = "STATS[" + s + "]:"
	}
	if len(format) == 0 {
		format = "\n"
	} else if format[len(format)-1] != '\n' {
		format += "\n"
	}
	w := out.Load().w
	fmt.Fprintf(w, prefix+" "+format, params[start:]...)
}

// Fatalf prints the given log message (format + params) and then
// exits with the exitCode provided.  Fatalf is not maskable.
func Fatalf(exitCode int, format string, params ...interface{}) {
	logf(fatalMask, format, params...)
	exit(exitCode)
}

// Errorf prints the given log message (format + params) using the ErrorMask level.
func Errorf(format string, params ...interface{}) {
	logf(ErrorMask, format, params...)
}

// Warnf prints the given log message (format + params) using the WarnMask level.
func Warnf(format string, params ...interface{}) {
	logf(WarnMask, format, params...)
}

// Infof prints the given log message (format + params) using the InfoMask level.
func Infof(format string, params ...interface{}) {
	logf(InfoMask, format, params...)
}

// Debugf prints the given log message (format + params) using the DebugMask level.
func Debugf(format string, params ...interface{}) {
	logf(DebugMask, format, params...)
}

// Statsf prints the given log message (format + params) using the StatsMask level and
// takes an extra parameter that will be visible in the log message as the category
// of stats that is reported.
func Statsf(category string, format string, params ...interface{}) {
	logf(StatsMask, format, append([]interface{}{category}, params...)...)
}

// Default returns a Logger backed by the package level functions.
func Default() Logger {
	return packageLogger{}
}

type packageLogger struct{}

func (packageLogger) Errorf(format string, params ...interface{}) { Errorf(format, params...) }
func (packageLogger) Warnf(format string, params ...interface{})  { Warnf(format, params...) }
func (packageLogger) Infof(format string, params ...interface{})  { Infof(format, params...) }
func (packageLogger) Debugf(format string, params ...interface{}) { Debugf(format, params...) }

// Prefixed returns a Logger that puts tag in front of every message, the
// firmware uses it to mark which hart is talking.
func Prefixed(tag string) Logger {
	return prefixLogger{tag: tag}
}

type prefixLogger struct {
	tag string
}

func (p prefixLogger) Errorf(format string, params ...interface{}) {
	Errorf(p.tag+format, params...)
}
func (p prefixLogger) Warnf(format string, params ...interface{}) {
	Warnf(p.tag+format, params...)
}
func (p prefixLogger) Infof(format string, params ...interface{}) {
	Infof(p.tag+format, params...)
}
func (p prefixLogger) Debugf(format string, params ...interface{}) {
	Debugf(p.tag+format, params...)
}
