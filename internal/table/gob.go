package table

import (
	"bufio"
	"encoding/gob"
	"os"

	"github.com/jonathan/stocks-graph/internal/types"
)

// GobCodec stores tables in Go's binary gob format, preserving the table exactly.
type GobCodec struct{}

// Load reads a gob snapshot.
func (GobCodec) Load(path string) (*types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &CodecError{Path: path, Message: "failed to open file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	var t types.Table
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&t); err != nil {
		return nil, &CodecError{Path: path, Message: "failed to decode table", Cause: err}
	}
	return &t, nil
}

// Save writes a gob snapshot.
func (GobCodec) Save(path string, t *types.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return &CodecError{Path: path, Message: "failed to create file", Cause: err}
	}
	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(t); err != nil {
		_ = f.Close()
		return &CodecError{Path: path, Message: "failed to encode table", Cause: err}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return &CodecError{Path: path, Message: "failed to flush file", Cause: err}
	}
	if err := f.Close(); err != nil {
		return &CodecError{Path: path, Message: "failed to close file", Cause: err}
	}
	return nil
}
