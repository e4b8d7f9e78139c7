package logstore

import (
	"context"
	"database/sql"
	"math"
	"time"
)

// variant captures exactly the schema-specific parts of a log file: table DDL, the message
// insert statement, and how to turn a result-set row into a Message. Everything else
// (dictionary lookups, tag attachment, ID allocation, prune cutoff arithmetic, read-loop
// control flow) is shared across {Recording, Analysis} in accessor below. Modeled as an
// interface rather than an inheritance hierarchy, since the two variants differ only in
// storage layout, not in surrounding behavior.
type variant interface {
	purpose() Purpose
	specificTables() string
	specificIndices() string

	// insertMessage inserts the schema-specific row(s) for id, given already-resolved
	// dictionary ids and ticks.
	insertMessage(ctx context.Context, tx *sql.Tx, id int64, m *Message, procID, appID, writerID, levelID int64, utcTicks, offsetTicks int64, hasTags bool) error

	// selectExtra returns the column list (and any extra JOINs) needed to read a message,
	// appended after "FROM messages m JOIN processes p ON ... JOIN applications a ON ...
	// JOIN writers w ON ... JOIN levels l ON ...".
	selectExtra() (columns string, joins string)

	// deleteMessagesUpTo deletes this variant's rows with id <= cut, and any sibling
	// tables 1:1 with messages (e.g. Analysis' texts table).
	deleteMessagesUpTo(ctx context.Context, tx *sql.Tx, cut int64) error

	// clearSpecific drops and recreates the schema-specific tables/indices.
	clearSpecific(ctx context.Context, db *sql.DB) error
}

// accessor implements the Schema Accessor shared across both schema variants.
type accessor struct {
	h    *handle
	dict *dictionary
	v    variant

	oldest int64
	newest int64
}

func newAccessor(ctx context.Context, h *handle, dict *dictionary, v variant) (*accessor, error) {
	a := &accessor{h: h, dict: dict, v: v, oldest: -1, newest: -1}
	if err := a.refreshIDs(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *accessor) purpose() Purpose { return a.v.purpose() }
func (a *accessor) oldestID() int64  { return a.oldest }
func (a *accessor) newestID() int64  { return a.newest }
func (a *accessor) messageCount() int64 {
	if a.newest < a.oldest {
		return 0
	}
	return a.newest - a.oldest + 1
}

// refreshIDs computes OldestId/NewestId from MAX/MIN(messages.id).
func (a *accessor) refreshIDs(ctx context.Context) error {
	var oldest, newest sql.NullInt64
	err := a.h.db.QueryRowContext(ctx, `SELECT MIN(id), MAX(id) FROM messages`).Scan(&oldest, &newest)
	if err != nil {
		return wrapEngineErr("query message id range", err)
	}
	if !oldest.Valid {
		a.oldest, a.newest = -1, -1
		return nil
	}
	a.oldest, a.newest = oldest.Int64, newest.Int64
	return nil
}

// write resolves dictionary ids, attaches tags, allocates the next id inside the
// transaction, inserts the row, and refreshes the in-memory id range on commit.
func (a *accessor) write(ctx context.Context, m *Message) error {
	n, err := a.writeBatch(ctx, []*Message{m})
	if err != nil {
		return err
	}
	if n != 1 {
		return wrapErr(KindLogFileError, "write", nil)
	}
	return nil
}

// writeBatch writes every message in msgs within a single transaction; the returned count
// is the number written (all-or-nothing).
func (a *accessor) writeBatch(ctx context.Context, msgs []*Message) (int, error) {
	if len(msgs) == 0 {
		return 0, nil
	}

	startOldest, startNewest := a.oldest, a.newest
	nextID := a.newest + 1

	err := a.h.runInTransaction(ctx, func(tx *sql.Tx) error {
		id := nextID
		for _, m := range msgs {
			procID, err := a.dict.addOrGet(ctx, tx, tableProcesses, m.ProcessName)
			if err != nil {
				return err
			}
			appID, err := a.dict.addOrGet(ctx, tx, tableApplications, m.ApplicationName)
			if err != nil {
				return err
			}
			writerID, err := a.dict.addOrGet(ctx, tx, tableWriters, m.LogWriterName)
			if err != nil {
				return err
			}
			levelID, err := a.dict.addOrGet(ctx, tx, tableLevels, m.LogLevelName)
			if err != nil {
				return err
			}

			hasTags := len(m.Tags) > 0
			for tagName := range m.Tags {
				tagID, err := a.dict.addOrGet(ctx, tx, tableTags, tagName)
				if err != nil {
					return err
				}
				if err := a.dict.attachTag(ctx, tx, tagID, id); err != nil {
					return err
				}
			}

			utcTicks, offsetTicks := m.utcTicksAndOffset()
			if err := a.v.insertMessage(ctx, tx, id, m, procID, appID, writerID, levelID, utcTicks, offsetTicks, hasTags); err != nil {
				return err
			}

			m.ID = id
			id++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if startOldest == -1 {
		a.oldest = nextID
	} else {
		a.oldest = startOldest
	}
	a.newest = nextID + int64(len(msgs)) - 1
	_ = startNewest
	return len(msgs), nil
}

// read streams rows with id >= fromID in ascending order, invoking cb once per row,
// stopping early if cb returns false.
func (a *accessor) read(ctx context.Context, fromID int64, count int64, cb func(*Message) bool) (bool, error) {
	if fromID < 0 {
		return false, newErr(KindArgumentOutOfRange, "fromId must be >= 0")
	}
	if count < 0 {
		return false, newErr(KindArgumentOutOfRange, "count must be >= 0")
	}
	if a.messageCount() > 0 && (fromID < a.oldest || fromID > a.newest) {
		return false, newErr(KindArgumentOutOfRange, "fromId out of [OldestId, NewestId] range")
	}
	if count == 0 || a.messageCount() == 0 {
		return true, nil
	}

	extraCols, extraJoins := a.v.selectExtra()
	query := `
		SELECT m.id, m.timestamp, m.timezone_offset, m.high_precision_timestamp,
		       m.lost_message_count, m.process_id, p.name, app.name, w.name, l.name,
		       m.has_tags` + extraCols + `
		FROM messages m
		JOIN processes p ON p.id = m.process_name_id
		JOIN applications app ON app.id = m.application_name_id
		JOIN writers w ON w.id = m.writer_name_id
		JOIN levels l ON l.id = m.level_name_id` + extraJoins + `
		WHERE m.id >= ?
		ORDER BY m.id ASC
		LIMIT ?
	`

	rows, err := a.h.db.QueryContext(ctx, query, fromID, count)
	if err != nil {
		return false, wrapEngineErr("query messages", err)
	}
	defer func() { _ = rows.Close() }()

	in := a.h.interns
	for rows.Next() {
		var (
			m                                    Message
			utcTicks, offsetTicks, hpt           int64
			hasTagsInt                           int64
			procName, appName, writerName, level string
		)
		if err := rows.Scan(&m.ID, &utcTicks, &offsetTicks, &hpt, &m.LostMessageCount,
			&m.ProcessID, &procName, &appName, &writerName, &level, &hasTagsInt, &m.Text); err != nil {
			return false, wrapEngineErr("scan message", err)
		}

		m.Timestamp = messageFromTicks(utcTicks, offsetTicks)
		m.TimezoneOffset = time.Duration(offsetTicks*100) * time.Nanosecond
		m.HighPrecisionTimestamp = hpt
		m.ProcessName = in.intern(procName)
		m.ApplicationName = in.intern(appName)
		m.LogWriterName = in.intern(writerName)
		m.LogLevelName = in.intern(level)

		if hasTagsInt != 0 {
			tags, err := a.dict.tagsOf(ctx, a.h.db, m.ID)
			if err != nil {
				return false, err
			}
			m.Tags = tags
		}

		if !cb(m.immutableCopy()) {
			return false, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, wrapEngineErr("iterate messages", err)
	}
	return true, nil
}

// maxInt32 is the clamp value for a single Prune's removed-row count.
const maxInt32 = math.MaxInt32

// prune removes the oldest contiguous prefix of messages whose cutoff id is the larger of
// an age-based cutoff and a count-based cutoff, clamped to maxInt32 removed rows. When
// withRemoved is true, the removed messages are read first (before deletion) and returned.
func (a *accessor) prune(ctx context.Context, maxCount int64, minTimestamp time.Time, withRemoved bool) ([]*Message, int64, error) {
	if a.messageCount() == 0 {
		return nil, 0, nil
	}

	var tID sql.NullInt64
	if !IsMinTimestamp(minTimestamp) {
		cutoffTicks, _ := (&Message{Timestamp: minTimestamp}).utcTicksAndOffset()
		err := a.h.db.QueryRowContext(ctx, `
			SELECT MAX(id) FROM messages WHERE timestamp < ?
		`, cutoffTicks).Scan(&tID)
		if err != nil {
			return nil, 0, wrapEngineErr("compute age cutoff", err)
		}
	}

	var cID sql.NullInt64
	if maxCount >= 0 {
		excess := a.messageCount() - maxCount
		if excess > 0 {
			cID = sql.NullInt64{Int64: a.oldest + excess - 1, Valid: true}
		}
	}

	var cut int64
	haveCut := false
	if tID.Valid {
		cut, haveCut = tID.Int64, true
	}
	if cID.Valid && (!haveCut || cID.Int64 > cut) {
		cut, haveCut = cID.Int64, true
	}
	if !haveCut {
		return nil, 0, nil
	}
	if cut < a.oldest {
		return nil, 0, nil
	}
	if cut > a.newest {
		cut = a.newest
	}

	removedCount := cut - a.oldest + 1
	clamped := false
	if removedCount > maxInt32 {
		cut = a.oldest + maxInt32 - 1
		removedCount = maxInt32
		clamped = true
	}
	_ = clamped

	var removed []*Message
	if withRemoved {
		_, err := a.read(ctx, a.oldest, removedCount, func(m *Message) bool {
			removed = append(removed, m)
			return true
		})
		if err != nil {
			return nil, 0, err
		}
	}

	err := a.h.runInTransaction(ctx, func(tx *sql.Tx) error {
		if err := a.v.deleteMessagesUpTo(ctx, tx, cut); err != nil {
			return err
		}
		return a.dict.removeTagAssociationsUpTo(ctx, tx, cut)
	})
	if err != nil {
		return nil, 0, err
	}

	if err := a.refreshIDs(ctx); err != nil {
		return nil, 0, err
	}

	return removed, removedCount, nil
}

// clear drops and recreates every table, optionally preserving the dictionary tables.
// Tag associations are removed either way.
func (a *accessor) clear(ctx context.Context, messagesOnly bool) error {
	if err := a.v.clearSpecific(ctx, a.h.db); err != nil {
		return err
	}
	if messagesOnly {
		if _, err := a.h.db.ExecContext(ctx, `DELETE FROM tag2msg`); err != nil {
			return wrapEngineErr("delete tag associations", err)
		}
	}
	if !messagesOnly {
		if _, err := a.h.db.ExecContext(ctx, `DROP TABLE IF EXISTS tag2msg`); err != nil {
			return wrapEngineErr("drop tag2msg", err)
		}
		for _, t := range []dictTable{tableProcesses, tableApplications, tableWriters, tableLevels, tableTags} {
			if _, err := a.h.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+string(t)); err != nil {
				return wrapEngineErr("drop dictionary table", err)
			}
		}
		if _, err := a.h.db.ExecContext(ctx, commonTables); err != nil {
			return wrapEngineErr("recreate dictionary tables", err)
		}
		if _, err := a.h.db.ExecContext(ctx, commonIndices); err != nil {
			return wrapEngineErr("recreate dictionary indices", err)
		}
		a.dict.clearOverlays()
	}
	a.oldest, a.newest = -1, -1
	return nil
}

func (a *accessor) listUsed(ctx context.Context, t dictTable) ([]string, error) {
	col := map[dictTable]string{
		tableProcesses:    "process_name_id",
		tableApplications: "application_name_id",
		tableWriters:      "writer_name_id",
		tableLevels:       "level_name_id",
	}[t]
	return a.dict.listUsed(ctx, t, col)
}

func (a *accessor) listAll(ctx context.Context, t dictTable) ([]string, error) {
	return a.dict.listAll(ctx, t)
}
