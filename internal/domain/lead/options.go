package lead

import "time"

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithTimestampField sets the column holding the lead timestamp.
func WithTimestampField(name string) Option {
	return func(n *Normalizer) {
		if name != "" {
			n.timestampField = name
		}
	}
}

// WithScoreField sets the column holding the lead score.
func WithScoreField(name string) Option {
	return func(n *Normalizer) {
		if name != "" {
			n.scoreField = name
		}
	}
}

// WithCategoryField sets the column holding the lead category.
func WithCategoryField(name string) Option {
	return func(n *Normalizer) {
		if name != "" {
			n.categoryField = name
		}
	}
}

// WithLocation sets the zone used for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// WithSkipMalformed drops malformed rows instead of failing the load.
func WithSkipMalformed(skip bool) Option {
	return func(n *Normalizer) {
		n.skipMalformed = skip
	}
}
