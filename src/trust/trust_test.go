package trust

import (
	"bytes"
	"strings"
	"testing"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := SetLevel(DebugMask)
	t.Cleanup(func() {
		SetLevel(prev)
		SetOutput(&bytes.Buffer{})
	})
	return &buf
}

func TestLevelsCascade(t *testing.T) {
	buf := withBuffer(t)
	SetLevel(WarnMask)
	Infof("should not show %d", 1)
	Debugf("nor this")
	Warnf("warned %s", "here")
	Errorf("broke %x", 0x10)
	got := buf.String()
	if strings.Contains(got, "should not show") || strings.Contains(got, "nor this") {
		t.Errorf("messages below the level leaked: %q", got)
	}
	if !strings.Contains(got, " WARN: warned here\n") {
		t.Errorf("missing warn line in %q", got)
	}
	if !strings.Contains(got, "ERROR: broke 10\n") {
		t.Errorf("missing error line in %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want MaskLevel
	}{
		{"error", ErrorMask},
		{"WARN", WarnMask},
		{" info ", InfoMask},
		{"debug", DebugMask},
		{"trace", DebugMask | StatsMask},
		{"off", Nothing},
		{"bogus", InfoMask},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %x, want %x", tt.in, got, tt.want)
		}
	}
}

func TestLevelToString(t *testing.T) {
	withBuffer(t)
	SetLevel(InfoMask)
	if got := LevelToString(); got != "error warn info" {
		t.Errorf("LevelToString() = %q", got)
	}
}

func TestStatsCategory(t *testing.T) {
	buf := withBuffer(t)
	SetLevel(ErrorMask | StatsMask)
	Statsf("rfence", "%d acks", 3)
	if got := buf.String(); got != "STATS[rfence]: 3 acks\n" {
		t.Errorf("stats line = %q", got)
	}
}

func TestFatalfUsesExit(t *testing.T) {
	buf := withBuffer(t)
	code := -1
	prev := SetExit(func(c int) { code = c })
	defer SetExit(prev)
	SetLevel(Nothing)
	Fatalf(3, "hart %d wedged", 2)
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if !strings.Contains(buf.String(), "hart 2 wedged") {
		t.Errorf("fatal message is maskable: %q", buf.String())
	}
}

func TestPrefixed(t *testing.T) {
	buf := withBuffer(t)
	Prefixed("[hart 1] ").Infof("started at %#x", 0x80200000)
	if got := buf.String(); got != " INFO: [hart 1] started at 0x80200000\n" {
		t.Errorf("prefixed line = %q", got)
	}
}
