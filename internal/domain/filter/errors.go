package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidParams marks a filter request that cannot be evaluated.
var ErrInvalidParams = errors.New("invalid filter parameters")

// ParamError names the offending parameter. It always matches ErrInvalidParams.
type ParamError struct {
	Field  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidParams, e.Field, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParams }
