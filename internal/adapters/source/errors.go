package source

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrRead              = errors.New("read source")
	ErrSheetNotFound     = errors.New("sheet not found")
)
