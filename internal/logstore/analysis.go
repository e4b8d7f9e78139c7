package logstore

import (
	"context"
	"database/sql"
)

// analysisVariant implements the read-optimized schema (version 2): message text lives
// in a separate texts table keyed 1:1 by message id.
type analysisVariant struct {
	insertMsgStmt  *sql.Stmt
	insertTextStmt *sql.Stmt
}

func newAnalysisVariant(ctx context.Context, h *handle) (*analysisVariant, error) {
	msgStmt, err := h.prepare(ctx, `
		INSERT INTO messages (
			id, timestamp, timezone_offset, high_precision_timestamp, lost_message_count,
			process_id, process_name_id, application_name_id, writer_name_id, level_name_id,
			has_tags
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, err
	}
	textStmt, err := h.prepare(ctx, `INSERT INTO texts (id, text) VALUES (?, ?)`)
	if err != nil {
		return nil, err
	}
	return &analysisVariant{insertMsgStmt: msgStmt, insertTextStmt: textStmt}, nil
}

func (a *analysisVariant) purpose() Purpose { return PurposeAnalysis }

func (a *analysisVariant) specificTables() string  { return analysisTables }
func (a *analysisVariant) specificIndices() string { return analysisIndices }

func (a *analysisVariant) insertMessage(ctx context.Context, tx *sql.Tx, id int64, m *Message,
	procID, appID, writerID, levelID int64, utcTicks, offsetTicks int64, hasTags bool) error {
	_, err := tx.StmtContext(ctx, a.insertMsgStmt).ExecContext(ctx,
		id, utcTicks, offsetTicks, m.HighPrecisionTimestamp, m.LostMessageCount,
		m.ProcessID, procID, appID, writerID, levelID, boolToInt(hasTags),
	)
	if err != nil {
		return wrapEngineErr("insert message", err)
	}
	if _, err := tx.StmtContext(ctx, a.insertTextStmt).ExecContext(ctx, id, m.Text); err != nil {
		return wrapEngineErr("insert message text", err)
	}
	return nil
}

func (a *analysisVariant) selectExtra() (columns string, joins string) {
	return ", t.text", " JOIN texts t ON t.id = m.id"
}

func (a *analysisVariant) deleteMessagesUpTo(ctx context.Context, tx *sql.Tx, cut int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM texts WHERE id <= ?`, cut); err != nil {
		return wrapEngineErr("delete texts", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id <= ?`, cut); err != nil {
		return wrapEngineErr("delete messages", err)
	}
	return nil
}

func (a *analysisVariant) clearSpecific(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{`DROP TABLE IF EXISTS texts`, `DROP TABLE IF EXISTS messages`} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return wrapEngineErr("drop analysis tables", err)
		}
	}
	if _, err := db.ExecContext(ctx, analysisTables); err != nil {
		return wrapEngineErr("recreate analysis tables", err)
	}
	if _, err := db.ExecContext(ctx, analysisIndices); err != nil {
		return wrapEngineErr("recreate analysis indices", err)
	}
	return nil
}
