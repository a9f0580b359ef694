// Package table provides load/save of dataset snapshots in several file formats.
package table

import "fmt"

// CodecError represents a failure reading or writing a table file
type CodecError struct {
	Path    string
	Message string
	Cause   error
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("table codec error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("table codec error for %s: %s", e.Path, e.Message)
}

func (e *CodecError) Unwrap() error {
	return e.Cause
}
