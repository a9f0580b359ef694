package table

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/jonathan/stocks-graph/internal/types"
)

// CSVCodec stores tables as comma-separated text with a header row.
// Every value is a string; columns that are not Record fields are dropped on load.
type CSVCodec struct{}

// Load reads a CSV snapshot.
func (CSVCodec) Load(path string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &CodecError{Path: path, Message: "failed to open file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &CodecError{Path: path, Message: "missing header row"}
		}
		return nil, &CodecError{Path: path, Message: "failed to read header", Cause: err}
	}

	t := &types.Table{}
	indexes := make([]int, 0, len(header))
	for i, col := range header {
		if !types.IsKnownColumn(col) {
			continue
		}
		t.Columns = append(t.Columns, col)
		indexes = append(indexes, i)
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &CodecError{Path: path, Message: "failed to read row", Cause: err}
		}
		var rec types.Record
		for j, i := range indexes {
			_ = rec.Set(t.Columns[j], row[i])
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// Save writes a CSV snapshot containing exactly the table's columns.
func (CSVCodec) Save(path string, t *types.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return &CodecError{Path: path, Message: "failed to create file", Cause: err}
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		_ = f.Close()
		return &CodecError{Path: path, Message: "failed to write header", Cause: err}
	}
	row := make([]string, len(t.Columns))
	for i := range t.Records {
		for j, col := range t.Columns {
			v, err := t.Records[i].Get(col)
			if err != nil {
				_ = f.Close()
				return &CodecError{Path: path, Message: "failed to encode row", Cause: err}
			}
			row[j] = v
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return &CodecError{Path: path, Message: "failed to write row", Cause: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return &CodecError{Path: path, Message: "failed to flush rows", Cause: err}
	}
	if err := f.Close(); err != nil {
		return &CodecError{Path: path, Message: "failed to close file", Cause: err}
	}
	return nil
}
