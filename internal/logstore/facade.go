package logstore

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/griffinplus/go-logfile/internal/corelog"
)

const pageSize = 65536

// Logger receives diagnostics for boundary operations only (create, open, prune, snapshot,
// clear, compact) — never the hot Read/Write path. Callers may reassign it (e.g. to
// a corelog.NewRotatingFile logger); it defaults to stderr at Info level.
var Logger = corelog.NewStderr()

// LogFile is the public entry point for the package: it routes each public call to
// the Schema Accessor selected by the file's on-disk schema version, and enforces the
// New -> Open -> Disposed state machine.
type LogFile struct {
	mu       sync.Mutex
	h        *handle
	dict     *dictionary
	acc      *accessor
	disposed bool
	readOnly bool
}

// Create creates a new log file at path with the given purpose and write mode. path must
// not already exist.
func Create(ctx context.Context, path string, purpose Purpose, mode WriteMode) (*LogFile, error) {
	if purpose == PurposeNotSpecified {
		return nil, newErr(KindArgumentOutOfRange, "purpose must be specified when creating a file")
	}
	if mode == WriteModeNotSpecified {
		return nil, newErr(KindArgumentOutOfRange, "write mode must be specified when creating a file")
	}
	if _, err := os.Stat(path); err == nil {
		return nil, newErr(KindLogFileExistsAlready, path)
	}

	h, err := openHandle(ctx, path, false, mode)
	if err != nil {
		return nil, err
	}

	lf, err := buildForCreate(ctx, h, purpose)
	if err != nil {
		_ = h.close(ctx)
		_ = os.Remove(path)
		Logger.Warnf("create %s: %v", path, err)
		return nil, err
	}
	Logger.Infof("created %s (purpose=%s, mode=%s)", path, purpose, mode)
	return lf, nil
}

// OpenOrCreate opens path, creating it with the given purpose if it does not exist.
func OpenOrCreate(ctx context.Context, path string, purpose Purpose, mode WriteMode) (*LogFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Create(ctx, path, purpose, mode)
	}
	return Open(ctx, path, mode)
}

// Open opens an existing file for read-write access. The purpose is recovered from the
// on-disk schema version.
func Open(ctx context.Context, path string, mode WriteMode) (*LogFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, newErr(KindFileNotFound, path)
	}
	if mode == WriteModeNotSpecified {
		return nil, newErr(KindArgumentOutOfRange, "write mode must be specified when opening a file")
	}

	h, err := openHandle(ctx, path, false, mode)
	if err != nil {
		return nil, err
	}

	lf, err := buildForOpen(ctx, h)
	if err != nil {
		_ = h.close(ctx)
		Logger.Warnf("open %s: %v", path, err)
		return nil, err
	}
	Logger.Infof("opened %s (purpose=%s, mode=%s)", path, lf.Purpose(), mode)
	return lf, nil
}

// OpenReadOnly opens an existing file in read-only mode.
func OpenReadOnly(ctx context.Context, path string) (*LogFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, newErr(KindFileNotFound, path)
	}

	h, err := openHandle(ctx, path, true, WriteModeNotSpecified)
	if err != nil {
		return nil, err
	}

	lf, err := buildForOpen(ctx, h)
	if err != nil {
		_ = h.close(ctx)
		Logger.Warnf("open-read-only %s: %v", path, err)
		return nil, err
	}
	lf.readOnly = true
	Logger.Infof("opened %s read-only (purpose=%s)", path, lf.Purpose())
	return lf, nil
}

// buildForCreate materializes file metadata (application magic, schema version, page
// size), then common tables, then schema-specific tables, deferring index creation until
// after: no initial batch is accepted at this layer, so indices follow immediately.
func buildForCreate(ctx context.Context, h *handle, purpose Purpose) (*LogFile, error) {
	if _, err := h.db.ExecContext(ctx, "PRAGMA page_size = "+strconv.Itoa(pageSize)); err != nil {
		return nil, wrapEngineErr("set page size", err)
	}
	if _, err := h.db.ExecContext(ctx, "PRAGMA application_id = "+strconv.Itoa(applicationMagic)); err != nil {
		return nil, wrapEngineErr("set application id", err)
	}
	if _, err := h.db.ExecContext(ctx, "PRAGMA user_version = "+strconv.Itoa(purpose.schemaVersion())); err != nil {
		return nil, wrapEngineErr("set schema version", err)
	}

	if _, err := h.db.ExecContext(ctx, commonTables); err != nil {
		return nil, wrapEngineErr("create common tables", err)
	}

	var v variant
	var err error
	switch purpose {
	case PurposeRecording:
		v, err = newRecordingVariant(ctx, h)
	case PurposeAnalysis:
		v, err = newAnalysisVariant(ctx, h)
	}
	if err != nil {
		return nil, err
	}

	if _, err := h.db.ExecContext(ctx, v.specificTables()); err != nil {
		return nil, wrapEngineErr("create schema-specific tables", err)
	}

	if _, err := h.db.ExecContext(ctx, commonIndices); err != nil {
		return nil, wrapEngineErr("create common indices", err)
	}
	if _, err := h.db.ExecContext(ctx, v.specificIndices()); err != nil {
		return nil, wrapEngineErr("create schema-specific indices", err)
	}

	dict, err := newDictionary(ctx, h)
	if err != nil {
		return nil, err
	}
	acc, err := newAccessor(ctx, h, dict, v)
	if err != nil {
		return nil, err
	}

	return &LogFile{h: h, dict: dict, acc: acc}, nil
}

// buildForOpen validates file metadata (application id, schema version) and dispatches to
// the matching Schema Accessor.
func buildForOpen(ctx context.Context, h *handle) (*LogFile, error) {
	var magic, version int
	if err := h.db.QueryRowContext(ctx, "PRAGMA application_id").Scan(&magic); err != nil {
		return nil, wrapEngineErr("read application id", err)
	}
	if magic != applicationMagic {
		return nil, newErr(KindInvalidLogFileFormat, "unexpected application id")
	}
	if err := h.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return nil, wrapEngineErr("read schema version", err)
	}
	purpose, ok := purposeFromSchemaVersion(version)
	if !ok {
		return nil, newErr(KindFileVersionNotSupported, "unsupported schema version")
	}

	var v variant
	var err error
	switch purpose {
	case PurposeRecording:
		v, err = newRecordingVariant(ctx, h)
	case PurposeAnalysis:
		v, err = newAnalysisVariant(ctx, h)
	}
	if err != nil {
		return nil, err
	}

	dict, err := newDictionary(ctx, h)
	if err != nil {
		return nil, err
	}
	acc, err := newAccessor(ctx, h, dict, v)
	if err != nil {
		return nil, err
	}

	return &LogFile{h: h, dict: dict, acc: acc}, nil
}

func (lf *LogFile) checkUsable(requireWrite bool) error {
	if lf.disposed {
		return newErr(KindAlreadyDisposed, "log file is disposed")
	}
	if requireWrite && lf.readOnly {
		return newErr(KindReadOnlyViolation, "mutation attempted on a read-only log file")
	}
	return nil
}

// Purpose returns the file's schema variant.
func (lf *LogFile) Purpose() Purpose { return lf.acc.purpose() }

// OldestID returns the smallest message id in the file, or -1 if empty.
func (lf *LogFile) OldestID() int64 { return lf.acc.oldestID() }

// NewestID returns the largest message id in the file, or -1 if empty.
func (lf *LogFile) NewestID() int64 { return lf.acc.newestID() }

// MessageCount returns NewestID - OldestID + 1, or 0 if empty.
func (lf *LogFile) MessageCount() int64 { return lf.acc.messageCount() }

// Write appends a single message, assigning its ID.
func (lf *LogFile) Write(ctx context.Context, m *Message) error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(true); err != nil {
		return err
	}
	return lf.acc.write(ctx, m)
}

// WriteBatch appends every message in msgs within a single transaction (all-or-nothing),
// returning the number written.
func (lf *LogFile) WriteBatch(ctx context.Context, msgs []*Message) (int, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(true); err != nil {
		return 0, err
	}
	return lf.acc.writeBatch(ctx, msgs)
}

// Read streams messages with id >= fromID in ascending order, invoking cb once per
// message. cb returns true to continue, false to stop. Read returns false if cb ever
// returned false, true if every matching row was delivered.
func (lf *LogFile) Read(ctx context.Context, fromID int64, count int64, cb func(*Message) bool) (bool, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(false); err != nil {
		return false, err
	}
	return lf.acc.read(ctx, fromID, count, cb)
}

// Prune removes the oldest contiguous prefix of messages bounded by maxCount and
// minTimestamp, returning the number removed.
func (lf *LogFile) Prune(ctx context.Context, maxCount int64, minTimestamp time.Time) (int64, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(true); err != nil {
		return 0, err
	}
	_, n, err := lf.acc.prune(ctx, maxCount, minTimestamp, false)
	if err != nil {
		Logger.Warnf("prune %s: %v", lf.h.path, err)
	} else if n > 0 {
		Logger.Infof("pruned %d message(s) from %s", n, lf.h.path)
	}
	return n, err
}

// PruneWithRemoved behaves like Prune but also returns the removed messages.
func (lf *LogFile) PruneWithRemoved(ctx context.Context, maxCount int64, minTimestamp time.Time) ([]*Message, int64, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(true); err != nil {
		return nil, 0, err
	}
	removed, n, err := lf.acc.prune(ctx, maxCount, minTimestamp, true)
	if err != nil {
		Logger.Warnf("prune %s: %v", lf.h.path, err)
	} else if n > 0 {
		Logger.Infof("pruned %d message(s) from %s", n, lf.h.path)
	}
	return removed, n, err
}

// Clear removes messages (and, if messagesOnly is false, every dictionary entry too).
func (lf *LogFile) Clear(ctx context.Context, messagesOnly bool) error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(true); err != nil {
		return err
	}
	if err := lf.acc.clear(ctx, messagesOnly); err != nil {
		Logger.Warnf("clear %s: %v", lf.h.path, err)
		return err
	}
	Logger.Infof("cleared %s (messagesOnly=%v)", lf.h.path, messagesOnly)
	return nil
}

// ListUsedNames returns the distinct names of dictTable rows referenced by at least one
// message, sorted ascending.
func (lf *LogFile) ListUsedNames(ctx context.Context, t dictTable) ([]string, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(false); err != nil {
		return nil, err
	}
	return lf.acc.listUsed(ctx, t)
}

// ListAllNames returns the distinct names of every dictTable row, sorted ascending.
func (lf *LogFile) ListAllNames(ctx context.Context, t dictTable) ([]string, error) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(false); err != nil {
		return nil, err
	}
	return lf.acc.listAll(ctx, t)
}

// Compact rebuilds the file in place to reclaim free pages (VACUUM).
func (lf *LogFile) Compact(ctx context.Context) error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if err := lf.checkUsable(true); err != nil {
		return err
	}
	if _, err := lf.h.db.ExecContext(ctx, "VACUUM"); err != nil {
		err = wrapEngineErr("vacuum", err)
		Logger.Warnf("compact %s: %v", lf.h.path, err)
		return err
	}
	Logger.Infof("compacted %s", lf.h.path)
	return nil
}

// Close disposes the log file, releasing prepared statements and the connection.
// Idempotent.
func (lf *LogFile) Close(ctx context.Context) error {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.disposed {
		return nil
	}
	lf.disposed = true
	return lf.h.close(ctx)
}

// underlyingDB exposes the *sql.DB for the snapshot implementation in this package only.
func (lf *LogFile) underlyingDB() *sql.DB { return lf.h.db }
