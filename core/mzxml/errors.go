package mzxml

import (
	"errors"
	"fmt"
)

// ErrNestingOrder reports a scan stream arriving in an order no
// well-formed document produces.
var ErrNestingOrder = errors.New("invalid scan nesting order")

// NestingError carries the scan that could not close a group.
type NestingError struct {
	Level  int
	ScanID string
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("invalid scan nesting order: level %d scan %q left open at group boundary", e.Level, e.ScanID)
}

func (e *NestingError) Unwrap() error { return ErrNestingOrder }

// DecodeError reports a peak payload that could not be decoded.
type DecodeError struct {
	ScanID string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.ScanID == "" {
		return fmt.Sprintf("decoding peaks: %v", e.Err)
	}
	return fmt.Sprintf("decoding peaks for scan %q: %v", e.ScanID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
