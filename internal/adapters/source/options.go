package source

// Option applies a configuration option to a Reader.
type Option func(*Reader)

// WithSheet selects the workbook sheet. The first sheet is used by default.
func WithSheet(name string) Option {
	return func(r *Reader) {
		r.sheet = name
	}
}

// WithDateColumns names the spreadsheet columns holding Excel date serials.
// Numeric cells in these columns are converted to time.Time.
func WithDateColumns(names ...string) Option {
	return func(r *Reader) {
		r.dateColumns = make(map[string]struct{}, len(names))
		for _, n := range names {
			if n != "" {
				r.dateColumns[n] = struct{}{}
			}
		}
	}
}

// WithComma sets the CSV field delimiter.
func WithComma(c rune) Option {
	return func(r *Reader) {
		if c != 0 {
			r.comma = c
		}
	}
}
