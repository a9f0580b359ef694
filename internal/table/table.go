package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/stocks-graph/internal/types"
)

// Codec reads and writes a whole table snapshot at a file path.
type Codec interface {
	Load(path string) (*types.Table, error)
	Save(path string, t *types.Table) error
}

var codecs = map[string]Codec{
	".csv":    CSVCodec{},
	".gob":    GobCodec{},
	".sqlite": SQLiteCodec{},
	".db":     SQLiteCodec{},
}

// CodecFor returns the codec registered for the file extension of path.
func CodecFor(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	c, ok := codecs[ext]
	if !ok {
		return nil, &CodecError{Path: path, Message: fmt.Sprintf("unsupported file extension %q", ext)}
	}
	return c, nil
}

// Load reads the table stored at path using the codec for its extension.
func Load(path string) (*types.Table, error) {
	c, err := CodecFor(path)
	if err != nil {
		return nil, err
	}
	return c.Load(path)
}

// Save writes the table to path using the codec for its extension.
// The file is written to a temporary sibling first and renamed into place,
// so readers never observe a half-written snapshot.
func Save(path string, t *types.Table) error {
	c, err := CodecFor(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &CodecError{Path: path, Message: "failed to create directory", Cause: err}
		}
	}

	// keep the extension so the codec sees the same format
	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	_ = os.Remove(tmp)
	if err := c.Save(tmp, t); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &CodecError{Path: path, Message: "failed to move snapshot into place", Cause: err}
	}
	return nil
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
