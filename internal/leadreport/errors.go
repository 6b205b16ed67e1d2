package leadreport

import "errors"

// ErrUsage marks a bad command line.
var ErrUsage = errors.New("usage")
