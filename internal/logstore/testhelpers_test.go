package logstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// newTestLogFile creates a fresh log file of the given purpose in a temp directory and closes
// it when the test finishes via t.Cleanup.
func newTestLogFile(t *testing.T, purpose Purpose, mode WriteMode) *LogFile {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.glog")

	lf, err := Create(ctx, path, purpose, mode)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		_ = lf.Close(ctx)
	})
	return lf
}

func sampleMessage(text string) *Message {
	return &Message{
		Timestamp:       time.Date(2026, 7, 29, 12, 0, 0, 0, time.FixedZone("CET", 3600)),
		ProcessID:       1234,
		ProcessName:     "myproc",
		ApplicationName: "myapp",
		LogWriterName:   "mywriter",
		LogLevelName:    "Note",
		Text:            text,
	}
}
