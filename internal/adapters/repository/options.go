package repository

import (
	"time"

	"github.com/okian/labx/internal/domain/lead"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the time source used to stamp loads.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInitial seeds the store with records.
func WithInitial(records []lead.Record) Option {
	return func(s *MemoryStore) {
		s.initial = records
	}
}
