package jobs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTable returned when an aggregate is requested on a table without rows
var ErrEmptyTable = &EmptyTableError{}

// DataAccessError reports a source which can't be read or parsed
type DataAccessError struct {
	Path string
	Err  error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("can't access data %s: %v", e.Path, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// SchemaError reports required columns absent in the source
type SchemaError struct {
	Columns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// InvalidSelectionError reports a profession selection which is neither "All" nor a known profession
type InvalidSelectionError struct {
	Selection string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("unknown profession %q", e.Selection)
}

// EmptyTableError reports an aggregate undefined for zero rows
type EmptyTableError struct{}

func (e *EmptyTableError) Error() string { return "no data to display" }

// Is makes any EmptyTableError match ErrEmptyTable
func (e *EmptyTableError) Is(target error) bool {
	var et *EmptyTableError
	return errors.As(target, &et)
}
