package types

import "slices"

// Table is a snapshot of the working dataset at a stage boundary.
// Columns lists the fields that are present at that stage, in file order.
type Table struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// NewTable returns an empty table with a copy of the given columns.
func NewTable(columns []string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether the column is part of the table.
func (t *Table) HasColumn(column string) bool {
	return slices.Contains(t.Columns, column)
}

// AddColumn appends a column and blanks it on every record.
// Adding a column that already exists is a no-op so filled values survive.
func (t *Table) AddColumn(column string) {
	if t.HasColumn(column) {
		return
	}
	t.Columns = append(t.Columns, column)
	for i := range t.Records {
		_ = t.Records[i].Set(column, "")
	}
}

// Project keeps only the listed columns, in the listed order.
// Dropped columns are cleared on every record.
func (t *Table) Project(columns []string) {
	for _, col := range t.Columns {
		if slices.Contains(columns, col) {
			continue
		}
		for i := range t.Records {
			_ = t.Records[i].Set(col, "")
		}
	}
	t.Columns = slices.Clone(columns)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	return &Table{
		Columns: slices.Clone(t.Columns),
		Records: slices.Clone(t.Records),
	}
}

// Symbols returns the symbol column in row order.
func (t *Table) Symbols() []string {
	out := make([]string, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Symbol
	}
	return out
}

// CountFilled returns how many records have a non-empty value for column.
func (t *Table) CountFilled(column string) int {
	n := 0
	for i := range t.Records {
		v, err := t.Records[i].Get(column)
		if err == nil && v != "" {
			n++
		}
	}
	return n
}
