package table

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jonathan/stocks-graph/internal/types"

	_ "modernc.org/sqlite"
)

// SQLiteCodec stores tables as a single-table SQLite database file.
// Row order is kept through the implicit rowid.
type SQLiteCodec struct{}

const sqliteTable = "records"

// Load reads a SQLite snapshot.
func (SQLiteCodec) Load(path string) (*types.Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &CodecError{Path: path, Message: "failed to open database", Cause: err}
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", sqliteTable))
	if err != nil {
		return nil, &CodecError{Path: path, Message: "failed to query records", Cause: err}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &CodecError{Path: path, Message: "failed to read columns", Cause: err}
	}
	for _, col := range columns {
		if !types.IsKnownColumn(col) {
			return nil, &CodecError{Path: path, Message: fmt.Sprintf("unknown column %q", col)}
		}
	}

	t := &types.Table{Columns: columns}
	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, &CodecError{Path: path, Message: "failed to scan row", Cause: err}
		}
		var rec types.Record
		for i, col := range columns {
			_ = rec.Set(col, values[i].String)
		}
		t.Records = append(t.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &CodecError{Path: path, Message: "failed to iterate rows", Cause: err}
	}
	return t, nil
}

// Save writes a SQLite snapshot. The target file must not already hold a records table.
func (SQLiteCodec) Save(path string, t *types.Table) error {
	if len(t.Columns) == 0 {
		return &CodecError{Path: path, Message: "table has no columns"}
	}
	for _, col := range t.Columns {
		if !types.IsKnownColumn(col) {
			return &CodecError{Path: path, Message: fmt.Sprintf("unknown column %q", col)}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &CodecError{Path: path, Message: "failed to open database", Cause: err}
	}
	defer func() { _ = db.Close() }()

	quoted := make([]string, len(t.Columns))
	defs := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		quoted[i] = `"` + col + `"`
		defs[i] = quoted[i] + " TEXT NOT NULL"
		marks[i] = "?"
	}

	tx, err := db.Begin()
	if err != nil {
		return &CodecError{Path: path, Message: "failed to begin transaction", Cause: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", sqliteTable, strings.Join(defs, ", "))); err != nil {
		return &CodecError{Path: path, Message: "failed to create table", Cause: err}
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sqliteTable, strings.Join(quoted, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return &CodecError{Path: path, Message: "failed to prepare insert", Cause: err}
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(t.Columns))
	for i := range t.Records {
		for j, col := range t.Columns {
			v, _ := t.Records[i].Get(col)
			args[j] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			return &CodecError{Path: path, Message: fmt.Sprintf("failed to insert row %d", i), Cause: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &CodecError{Path: path, Message: "failed to commit", Cause: err}
	}
	return nil
}
