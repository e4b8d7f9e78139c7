package logstore

import (
	"context"
	"database/sql"
)

// recordingVariant implements the write-optimized schema (version 1): message text is
// stored inline in the messages row.
type recordingVariant struct {
	insertStmt *sql.Stmt
}

func newRecordingVariant(ctx context.Context, h *handle) (*recordingVariant, error) {
	stmt, err := h.prepare(ctx, `
		INSERT INTO messages (
			id, timestamp, timezone_offset, high_precision_timestamp, lost_message_count,
			process_id, process_name_id, application_name_id, writer_name_id, level_name_id,
			has_tags, text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	return &recordingVariant{insertStmt: stmt}, nil
}

func (r *recordingVariant) purpose() Purpose { return PurposeRecording }

func (r *recordingVariant) specificTables() string { return recordingTables }
func (r *recordingVariant) specificIndices() string { return recordingIndices }

func (r *recordingVariant) insertMessage(ctx context.Context, tx *sql.Tx, id int64, m *Message,
	procID, appID, writerID, levelID int64, utcTicks, offsetTicks int64, hasTags bool) error {
	_, err := tx.StmtContext(ctx, r.insertStmt).ExecContext(ctx,
		id, utcTicks, offsetTicks, m.HighPrecisionTimestamp, m.LostMessageCount,
		m.ProcessID, procID, appID, writerID, levelID, boolToInt(hasTags), m.Text,
	)
	if err != nil {
		return wrapEngineErr("insert message", err)
	}
	return nil
}

func (r *recordingVariant) selectExtra() (columns string, joins string) {
	return ", m.text", ""
}

func (r *recordingVariant) deleteMessagesUpTo(ctx context.Context, tx *sql.Tx, cut int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id <= ?`, cut); err != nil {
		return wrapEngineErr("delete messages", err)
	}
	return nil
}

func (r *recordingVariant) clearSpecific(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS messages`); err != nil {
		return wrapEngineErr("drop messages table", err)
	}
	if _, err := db.ExecContext(ctx, recordingTables); err != nil {
		return wrapEngineErr("recreate messages table", err)
	}
	if _, err := db.ExecContext(ctx, recordingIndices); err != nil {
		return wrapEngineErr("recreate messages indices", err)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
