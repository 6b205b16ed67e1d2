package lead

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrEmptySource     = errors.New("lead source is empty")
	ErrMalformedSource = errors.New("lead source is malformed")
)

// RowError describes why a single raw row could not be normalized.
// It always matches ErrMalformedSource.
type RowError struct {
	Row    int // zero-based index in the raw table
	Field  string
	Value  any
	Reason string
}

func (e *RowError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("row %d: %s %q: %s", e.Row, e.Field, fmt.Sprint(e.Value), e.Reason)
}

func (e *RowError) Unwrap() error { return ErrMalformedSource }
