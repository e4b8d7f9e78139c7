package logstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestCreateRejectsExistingFile covers invariant: Create must fail if path already exists.
func TestCreateRejectsExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "x.glog")

	lf, err := Create(ctx, path, PurposeRecording, WriteModeRobust)
	require.NoError(t, err)
	require.NoError(t, lf.Close(ctx))

	_, err = Create(ctx, path, PurposeRecording, WriteModeRobust)
	require.ErrorIs(t, err, ErrLogFileExistsAlready)
}

// TestOpenMissingFileFails covers invariant: Open must fail FileNotFound on a missing path.
func TestOpenMissingFileFails(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "missing.glog")

	_, err := Open(ctx, path, WriteModeRobust)
	require.ErrorIs(t, err, ErrFileNotFound)

	_, err = OpenReadOnly(ctx, path)
	require.ErrorIs(t, err, ErrFileNotFound)
}

// TestCreateWriteReadRoundTrip writes a batch of messages to a fresh Recording file and
// verifies they read back with ids, fields, and timestamps intact, and that the dictionary
// tables hold exactly the distinct names written.
func TestCreateWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs := []*Message{
		{Timestamp: base, ProcessID: 42, ProcessName: "p", ApplicationName: "a", LogWriterName: "w", LogLevelName: "l", Text: "m1"},
		{Timestamp: base.Add(time.Second), ProcessID: 42, ProcessName: "p", ApplicationName: "a", LogWriterName: "w", LogLevelName: "l", Text: "m2"},
		{Timestamp: base.Add(2 * time.Second), ProcessID: 42, ProcessName: "p", ApplicationName: "a", LogWriterName: "w", LogLevelName: "l", Text: "m3"},
	}

	n, err := lf.WriteBatch(ctx, msgs)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.Equal(t, int64(0), lf.OldestID())
	require.Equal(t, int64(2), lf.NewestID())
	require.Equal(t, int64(3), lf.MessageCount())

	var read []*Message
	ok, err := lf.Read(ctx, 0, 3, func(m *Message) bool {
		read = append(read, m)
		return true
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, read, 3)

	for i, m := range read {
		require.Equal(t, int64(i), m.ID)
		require.Equal(t, msgs[i].Text, m.Text)
		require.Equal(t, "p", m.ProcessName)
		require.Equal(t, "a", m.ApplicationName)
		require.Equal(t, "w", m.LogWriterName)
		require.Equal(t, "l", m.LogLevelName)
		require.True(t, m.Timestamp.Equal(msgs[i].Timestamp))
		require.True(t, m.IsImmutable())
	}

	for _, tbl := range []dictTable{tableProcesses, tableApplications, tableWriters, tableLevels} {
		names, err := lf.ListAllNames(ctx, tbl)
		require.NoError(t, err)
		require.Lenf(t, names, 1, "table %s should contain exactly one row", tbl)
	}
	tags, err := lf.ListAllNames(ctx, tableTags)
	require.NoError(t, err)
	require.Empty(t, tags)
}

// TestPruneByCountRemovesOldestExcess verifies that Prune with a count cap removes just
// enough of the oldest messages to bring the count down to the cap.
func TestPruneByCountRemovesOldestExcess(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)
	writeThreeSampleMessages(t, ctx, lf)

	removed, err := lf.Prune(ctx, 2, MinTimestamp())
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	require.Equal(t, int64(1), lf.OldestID())
	require.Equal(t, int64(2), lf.NewestID())
	require.Equal(t, int64(2), lf.MessageCount())
}

// TestPruneRemovesMessagesOlderThanCutoff verifies that Prune with a minimum timestamp
// removes every message strictly older than the cutoff and keeps the rest.
func TestPruneRemovesMessagesOlderThanCutoff(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)
	writeThreeSampleMessages(t, ctx, lf)

	cutoff := time.Date(2024, 1, 1, 0, 0, 1, 500_000_000, time.UTC)
	removed, err := lf.Prune(ctx, -1, cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)
	require.Equal(t, int64(2), lf.OldestID())
	require.Equal(t, int64(2), lf.NewestID())
}

func writeThreeSampleMessages(t *testing.T, ctx context.Context, lf *LogFile) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs := []*Message{
		{Timestamp: base, ProcessID: 42, ProcessName: "p", ApplicationName: "a", LogWriterName: "w", LogLevelName: "l", Text: "m1"},
		{Timestamp: base.Add(time.Second), ProcessID: 42, ProcessName: "p", ApplicationName: "a", LogWriterName: "w", LogLevelName: "l", Text: "m2"},
		{Timestamp: base.Add(2 * time.Second), ProcessID: 42, ProcessName: "p", ApplicationName: "a", LogWriterName: "w", LogLevelName: "l", Text: "m3"},
	}
	_, err := lf.WriteBatch(ctx, msgs)
	require.NoError(t, err)
}

// TestTagsRoundTrip verifies that a message's tags survive a write/read round trip sorted
// ascending and are recorded in the tags dictionary table.
func TestTagsRoundTrip(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeAnalysis, WriteModeRobust)

	m := sampleMessage("tagged")
	m.Tags = NewTagSet("net", "io")

	require.NoError(t, lf.Write(ctx, m))

	var got *Message
	_, err := lf.Read(ctx, 0, 1, func(msg *Message) bool {
		got = msg
		return true
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, []string{"io", "net"}, got.Tags.Sorted())

	tagRows, err := lf.ListAllNames(ctx, tableTags)
	require.NoError(t, err)
	require.Len(t, tagRows, 2)
}

// TestSchemaDispatchByPurpose verifies that a file created with each Purpose reopens
// reporting the same Purpose, confirming the schema version round-trips correctly.
func TestSchemaDispatchByPurpose(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	recPath := filepath.Join(dir, "rec.glog")
	anaPath := filepath.Join(dir, "ana.glog")

	rec, err := Create(ctx, recPath, PurposeRecording, WriteModeRobust)
	require.NoError(t, err)
	require.NoError(t, rec.Close(ctx))

	ana, err := Create(ctx, anaPath, PurposeAnalysis, WriteModeRobust)
	require.NoError(t, err)
	require.NoError(t, ana.Close(ctx))

	reopenedRec, err := Open(ctx, recPath, WriteModeRobust)
	require.NoError(t, err)
	defer func() { _ = reopenedRec.Close(ctx) }()
	require.Equal(t, PurposeRecording, reopenedRec.Purpose())

	reopenedAna, err := Open(ctx, anaPath, WriteModeRobust)
	require.NoError(t, err)
	defer func() { _ = reopenedAna.Close(ctx) }()
	require.Equal(t, PurposeAnalysis, reopenedAna.Purpose())
}

// TestReadStopsEarlyAndReportsFalse verifies that a stop-after-k callback is invoked
// exactly k+1 times and Read reports false to signal it didn't reach the end.
func TestReadStopsEarlyAndReportsFalse(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)
	writeThreeSampleMessages(t, context.Background(), lf)

	calls := 0
	ok, err := lf.Read(ctx, 0, 3, func(m *Message) bool {
		calls++
		return calls < 2
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 2, calls)
}

// TestClearMessagesOnlyPreservesDictionary verifies that Clear(messagesOnly=true) empties
// the messages table but leaves the dictionary tables populated.
func TestClearMessagesOnlyPreservesDictionary(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)
	writeThreeSampleMessages(t, ctx, lf)

	require.NoError(t, lf.Clear(ctx, true))
	require.Equal(t, int64(0), lf.MessageCount())

	names, err := lf.ListAllNames(ctx, tableProcesses)
	require.NoError(t, err)
	require.Len(t, names, 1)
}

// TestClearAllEmptiesDictionary verifies that Clear(messagesOnly=false) also empties the
// dictionary tables.
func TestClearAllEmptiesDictionary(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)
	writeThreeSampleMessages(t, ctx, lf)

	require.NoError(t, lf.Clear(ctx, false))
	require.Equal(t, int64(0), lf.MessageCount())

	names, err := lf.ListAllNames(ctx, tableProcesses)
	require.NoError(t, err)
	require.Empty(t, names)
}

// TestWriteRejectedOnReadOnlyLogFile covers the ReadOnlyViolation error kind.
func TestWriteRejectedOnReadOnlyLogFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "ro.glog")

	lf, err := Create(ctx, path, PurposeRecording, WriteModeRobust)
	require.NoError(t, err)
	require.NoError(t, lf.Close(ctx))

	ro, err := OpenReadOnly(ctx, path)
	require.NoError(t, err)
	defer func() { _ = ro.Close(ctx) }()

	err = ro.Write(ctx, sampleMessage("nope"))
	require.ErrorIs(t, err, ErrReadOnlyViolation)
}

// TestOpsAfterCloseReportAlreadyDisposed covers the AlreadyDisposed error kind.
func TestOpsAfterCloseReportAlreadyDisposed(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)
	require.NoError(t, lf.Close(ctx))

	err := lf.Write(ctx, sampleMessage("late"))
	require.ErrorIs(t, err, ErrAlreadyDisposed)

	// Close is idempotent.
	require.NoError(t, lf.Close(ctx))
}

// TestSnapshotProducesReadableCopy verifies that SaveSnapshot produces an independently
// openable copy with the same id range and message contents as the source.
func TestSnapshotProducesReadableCopy(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)
	writeThreeSampleMessages(t, ctx, lf)

	dst := filepath.Join(t.TempDir(), "snap.glog")
	require.NoError(t, lf.SaveSnapshot(ctx, dst))

	snap, err := OpenReadOnly(ctx, dst)
	require.NoError(t, err)
	defer func() { _ = snap.Close(ctx) }()

	require.Equal(t, lf.OldestID(), snap.OldestID())
	require.Equal(t, lf.NewestID(), snap.NewestID())

	var texts []string
	_, err = snap.Read(ctx, snap.OldestID(), snap.MessageCount(), func(m *Message) bool {
		texts = append(texts, m.Text)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []string{"m1", "m2", "m3"}, texts)
}

// TestSnapshotWithCancellationRemovesPartialFile verifies that a progress callback
// returning false aborts the snapshot, reports cancellation once more via the callback,
// and removes the partially written destination file.
func TestSnapshotWithCancellationRemovesPartialFile(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)

	msgs := make([]*Message, 0, 200)
	for i := 0; i < 200; i++ {
		msgs = append(msgs, sampleMessage("payload"))
	}
	_, err := lf.WriteBatch(ctx, msgs)
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "cancelled.glog")
	var sawCancelled bool
	err = lf.SaveSnapshotWithProgress(ctx, dst, time.Millisecond, func(progress float64, cancelled bool) bool {
		if cancelled {
			sawCancelled = true
		}
		return false
	})
	require.Error(t, err)
	require.True(t, sawCancelled)

	_, statErr := os.Stat(dst)
	require.True(t, os.IsNotExist(statErr))
}

// TestSnapshotRejectsExistingDestination mirrors Create's exists-already check.
func TestSnapshotRejectsExistingDestination(t *testing.T) {
	ctx := context.Background()
	lf := newTestLogFile(t, PurposeRecording, WriteModeRobust)

	dst := filepath.Join(t.TempDir(), "exists.glog")
	require.NoError(t, os.WriteFile(dst, []byte("not a database"), 0o644))

	err := lf.SaveSnapshot(ctx, dst)
	require.ErrorIs(t, err, ErrLogFileExistsAlready)
}
