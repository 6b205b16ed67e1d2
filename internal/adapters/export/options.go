package export

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithExtraColumns adds passthrough lead fields to the recent sheet, in
// the given order.
func WithExtraColumns(names ...string) Option {
	return func(w *Writer) {
		w.extra = append([]string(nil), names...)
	}
}
