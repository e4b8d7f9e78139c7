package corelog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Infof("should not appear")
	l.Warnf("should appear: %d", 42)

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("Info message leaked through a Warn-level logger: %q", out)
	}
	if !strings.Contains(out, "Warning: should appear: 42") {
		t.Fatalf("Warn message missing or malformed: %q", out)
	}
}

func TestLoggerErrorAlwaysPasses(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelError)
	l.Errorf("boom")
	if !strings.Contains(buf.String(), "Error: boom") {
		t.Fatalf("Error message missing: %q", buf.String())
	}
}
