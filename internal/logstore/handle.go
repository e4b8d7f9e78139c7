package logstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteBusyTimeoutMillis = 5000

// stageable is the subset of overlayMap's lifecycle the Handle drives from inside
// runInTransaction, so the Handle doesn't need to know about dictionary tables.
type stageable interface {
	commit()
	discard()
}

// handle owns the underlying database connection, the prepared statements retained
// through its lifetime, and the Overlay Maps that participate in its transaction
// lifecycle.
type handle struct {
	db         *sql.DB
	path       string
	readOnly   bool
	mode       WriteMode
	rollbackOK bool

	stmts   []*sql.Stmt
	overlay []stageable
	interns *interner
}

// connString builds the ncruces/go-sqlite3 connection URI. busy_timeout is supplied as a
// _pragma query parameter so it takes effect before the schema is touched.
func connString(path string, readOnly bool) string {
	mode := "rwc"
	if readOnly {
		mode = "ro"
	}
	return fmt.Sprintf("file:%s?mode=%s&_pragma=busy_timeout(%d)&_pragma=temp_store(MEMORY)",
		path, mode, sqliteBusyTimeoutMillis)
}

// openHandle opens the database file, applies its pragmas, and for a read-write handle
// materializes the exclusive file lock immediately rather than lazily on first write.
func openHandle(ctx context.Context, path string, readOnly bool, mode WriteMode) (*handle, error) {
	if !readOnly && mode == WriteModeNotSpecified {
		return nil, newErr(KindArgumentOutOfRange, "write mode must be specified for a read-write handle")
	}

	db, err := sql.Open("sqlite3", connString(path, readOnly))
	if err != nil {
		return nil, wrapEngineErr("open connection", err)
	}
	db.SetMaxOpenConns(1)

	h := &handle{db: db, path: path, readOnly: readOnly, mode: mode, interns: newInterner()}

	if err := h.applyPragmas(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if !readOnly {
		// Materialize the exclusive file lock now rather than on first write.
		if _, err := db.ExecContext(ctx, "BEGIN EXCLUSIVE"); err != nil {
			_ = db.Close()
			return nil, wrapEngineErr("acquire exclusive lock", err)
		}
		if _, err := db.ExecContext(ctx, "COMMIT"); err != nil {
			_ = db.Close()
			return nil, wrapEngineErr("acquire exclusive lock", err)
		}
	}

	return h, nil
}

func (h *handle) applyPragmas(ctx context.Context) error {
	pragmas := []string{"PRAGMA locking_mode = EXCLUSIVE"}
	if !h.readOnly {
		switch h.mode {
		case WriteModeRobust:
			h.rollbackOK = true
			pragmas = append(pragmas, "PRAGMA synchronous = NORMAL", "PRAGMA journal_mode = WAL")
		case WriteModeFast:
			h.rollbackOK = false
			pragmas = append(pragmas, "PRAGMA synchronous = OFF", "PRAGMA journal_mode = OFF")
		}
	}
	for _, p := range pragmas {
		if _, err := h.db.ExecContext(ctx, p); err != nil {
			return wrapEngineErr("apply pragma", err)
		}
	}
	return nil
}

// prepare prepares a statement and retains it for the lifetime of the Handle.
func (h *handle) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	stmt, err := h.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, wrapEngineErr("prepare statement", err)
	}
	h.stmts = append(h.stmts, stmt)
	return stmt, nil
}

// registerOverlay enrolls an Overlay Map in this Handle's transaction lifecycle.
func (h *handle) registerOverlay(o stageable) {
	h.overlay = append(h.overlay, o)
}

// runInTransaction runs op inside a database transaction, then COMMITs and commit()s every
// Overlay Map on success, or discard()s every Overlay Map (and ROLLBACKs if supported) on
// failure.
func (h *handle) runInTransaction(ctx context.Context, op func(*sql.Tx) error) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapEngineErr("begin transaction", err)
	}

	if err := op(tx); err != nil {
		for _, o := range h.overlay {
			o.discard()
		}
		if h.rollbackOK {
			_ = tx.Rollback()
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		for _, o := range h.overlay {
			o.discard()
		}
		return wrapEngineErr("commit transaction", err)
	}

	for _, o := range h.overlay {
		o.commit()
	}
	return nil
}

// close releases prepared statements in reverse order, resets journal_mode to delete for
// WAL-mode handles to avoid orphaned -shm/-wal sidecar files (swallowing errors from that
// call, since it's best-effort cleanup), and closes the connection.
func (h *handle) close(ctx context.Context) error {
	for i := len(h.stmts) - 1; i >= 0; i-- {
		_ = h.stmts[i].Close()
	}
	h.stmts = nil

	if !h.readOnly && h.mode == WriteModeRobust {
		_, _ = h.db.ExecContext(ctx, "PRAGMA journal_mode = delete")
	}

	if err := h.db.Close(); err != nil {
		return wrapEngineErr("close connection", err)
	}
	return nil
}
