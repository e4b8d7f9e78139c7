package logstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// dictTable names one of the five dictionary tables sharing the add_or_get/list idiom.
type dictTable string

const (
	tableProcesses    dictTable = "processes"
	tableApplications dictTable = "applications"
	tableWriters      dictTable = "writers"
	tableLevels       dictTable = "levels"
	tableTags         dictTable = "tags"
)

// DictTable identifies one of the five dictionary tables for ListUsedNames/ListAllNames
// callers outside this package (e.g. cmd/logfilectl's "info" subcommand).
type DictTable = dictTable

// Exported aliases of the dictionary table identifiers, for callers outside this package.
const (
	TableProcesses    = tableProcesses
	TableApplications = tableApplications
	TableWriters      = tableWriters
	TableLevels       = tableLevels
	TableTags         = tableTags
)

// dictionary implements the Dictionary Layer: common tables shared by both schema
// variants, with an Overlay Map per table for transaction-scoped caching.
type dictionary struct {
	h *handle

	overlays map[dictTable]*overlayMap

	insertIgnore map[dictTable]*sql.Stmt
	selectByName map[dictTable]*sql.Stmt

	attachTagStmt   *sql.Stmt
	tagsOfStmt      *sql.Stmt
	removeTagsUpTo  *sql.Stmt
}

func newDictionary(ctx context.Context, h *handle) (*dictionary, error) {
	d := &dictionary{
		h:            h,
		overlays:     make(map[dictTable]*overlayMap),
		insertIgnore: make(map[dictTable]*sql.Stmt),
		selectByName: make(map[dictTable]*sql.Stmt),
	}

	for _, t := range []dictTable{tableProcesses, tableApplications, tableWriters, tableLevels, tableTags} {
		o := newOverlayMap()
		d.overlays[t] = o
		h.registerOverlay(o)

		insStmt, err := h.prepare(ctx, fmt.Sprintf(`INSERT OR IGNORE INTO %s (name) VALUES (?)`, t))
		if err != nil {
			return nil, err
		}
		d.insertIgnore[t] = insStmt

		selStmt, err := h.prepare(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE name = ?`, t))
		if err != nil {
			return nil, err
		}
		d.selectByName[t] = selStmt
	}

	var err error
	if d.attachTagStmt, err = h.prepare(ctx, `INSERT INTO tag2msg (tag_id, message_id) VALUES (?, ?)`); err != nil {
		return nil, err
	}
	if d.tagsOfStmt, err = h.prepare(ctx, `
		SELECT t.name FROM tag2msg tm JOIN tags t ON t.id = tm.tag_id WHERE tm.message_id = ?
	`); err != nil {
		return nil, err
	}
	if d.removeTagsUpTo, err = h.prepare(ctx, `DELETE FROM tag2msg WHERE message_id <= ?`); err != nil {
		return nil, err
	}

	return d, nil
}

// addOrGet returns the dictionary id for name in table, consulting the Overlay Map first
// and falling back to INSERT OR IGNORE + SELECT on miss.
func (d *dictionary) addOrGet(ctx context.Context, tx *sql.Tx, t dictTable, name string) (int64, error) {
	o := d.overlays[t]
	if id, ok := o.tryGet(name); ok {
		return id, nil
	}

	if _, err := tx.StmtContext(ctx, d.insertIgnore[t]).ExecContext(ctx, name); err != nil {
		return 0, wrapEngineErr("insert dictionary entry", err)
	}

	var id int64
	if err := tx.StmtContext(ctx, d.selectByName[t]).QueryRowContext(ctx, name).Scan(&id); err != nil {
		return 0, wrapEngineErr("select dictionary entry", err)
	}

	o.stage(name, id)
	return id, nil
}

// attachTag inserts a tag2msg row linking tagID to messageID.
func (d *dictionary) attachTag(ctx context.Context, tx *sql.Tx, tagID, messageID int64) error {
	if _, err := tx.StmtContext(ctx, d.attachTagStmt).ExecContext(ctx, tagID, messageID); err != nil {
		return wrapEngineErr("attach tag", err)
	}
	return nil
}

// tagsOf returns the tag names attached to messageID, via the tag2msg/tags join.
func (d *dictionary) tagsOf(ctx context.Context, q queryer, messageID int64) (TagSet, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.name FROM tag2msg tm JOIN tags t ON t.id = tm.tag_id WHERE tm.message_id = ?
	`, messageID)
	if err != nil {
		return nil, wrapEngineErr("query tags of message", err)
	}
	defer func() { _ = rows.Close() }()

	tags := make(TagSet)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapEngineErr("scan tag name", err)
		}
		tags[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, wrapEngineErr("iterate tags", err)
	}
	return tags, nil
}

// removeTagAssociationsUpTo deletes tag2msg rows for messages with id <= cut.
func (d *dictionary) removeTagAssociationsUpTo(ctx context.Context, tx *sql.Tx, cut int64) error {
	if _, err := tx.StmtContext(ctx, d.removeTagsUpTo).ExecContext(ctx, cut); err != nil {
		return wrapEngineErr("remove tag associations", err)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx, letting read helpers run either inside
// or outside a transaction.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// listUsed returns the distinct names of table rows referenced by at least one message,
// via the schema-specific join column (e.g. "process_name_id"); tags are matched through
// tag2msg instead.
func (d *dictionary) listUsed(ctx context.Context, t dictTable, joinColumn string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT tbl.name FROM %s tbl JOIN messages m ON m.%s = tbl.id ORDER BY tbl.name ASC
	`, t, joinColumn)
	if t == tableTags {
		query = `
			SELECT DISTINCT tbl.name FROM tags tbl JOIN tag2msg tm ON tm.tag_id = tbl.id ORDER BY tbl.name ASC
		`
	}
	rows, err := d.h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapEngineErr("query used dictionary entries", err)
	}
	defer func() { _ = rows.Close() }()
	return scanNames(rows)
}

// listAll returns the distinct names of every row in table t, sorted ascending.
func (d *dictionary) listAll(ctx context.Context, t dictTable) ([]string, error) {
	rows, err := d.h.db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY name ASC`, t))
	if err != nil {
		return nil, wrapEngineErr("query dictionary entries", err)
	}
	defer func() { _ = rows.Close() }()
	return scanNames(rows)
}

func scanNames(rows *sql.Rows) ([]string, error) {
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, wrapEngineErr("scan name", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapEngineErr("iterate names", err)
	}
	sort.Strings(names)
	return names, nil
}

// clearOverlays wipes every dictionary table's Overlay Map (used by Clear(all)).
func (d *dictionary) clearOverlays() {
	for _, o := range d.overlays {
		o.clear()
	}
}
