package mztab

import (
	"errors"
	"fmt"
)

// Sentinel errors for document and table access.
var (
	ErrNoHeader        = errors.New("table header not set")
	ErrRowWidth        = errors.New("row width does not match header")
	ErrUnknownTable    = errors.New("unknown table")
	ErrUnknownProperty = errors.New("unknown metadata property")
	ErrNoColumn        = errors.New("no such column")
)

// RangeError reports a row index outside a table's bounds.
type RangeError struct {
	Table string
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("row %d out of range for %s table with %d rows", e.Index, e.Table, e.Len)
}

// RequiredFieldError reports metadata that the document's variant
// requires but the file does not carry. Accessors raise it on demand;
// parsing never does.
type RequiredFieldError struct {
	Key     string
	Variant string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("%s is missing from an mzTab-%s document where it is required", e.Key, e.Variant)
}
