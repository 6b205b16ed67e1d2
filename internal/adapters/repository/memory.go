package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/labx/internal/domain/lead"
	"github.com/okian/labx/pkg/metrics"
)

// MemoryStore keeps the dataset in process memory. Readers get copies, so a
// report computed from a snapshot never observes a concurrent Replace.
type MemoryStore struct {
	mu      sync.RWMutex
	data    Dataset
	closed  bool
	now     func() time.Time
	initial []lead.Record
}

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		now:  time.Now,
		data: Dataset{Records: []lead.Record{}, Categories: []string{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.initial != nil {
		s.data = s.build(s.initial, 1)
		s.initial = nil
	}
	metrics.UpdateDatasetSize(len(s.data.Records))
	return s
}

// Replace implements Store.Replace.
func (s *MemoryStore) Replace(ctx context.Context, records []lead.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryReplaceLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		metrics.RecordErrorByComponent("repository", "closed")
		return ErrClosed
	}
	s.data = s.build(records, s.data.Version+1)
	metrics.UpdateDatasetSize(len(s.data.Records))
	return nil
}

func (s *MemoryStore) build(records []lead.Record, version uint64) Dataset {
	owned := make([]lead.Record, len(records))
	copy(owned, records)
	return Dataset{
		Records:    owned,
		Categories: lead.Categories(owned),
		LoadedAt:   s.now(),
		Version:    version,
	}
}

// Snapshot implements Store.Snapshot.
func (s *MemoryStore) Snapshot(_ context.Context) Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.data
	out.Records = append([]lead.Record{}, s.data.Records...)
	out.Categories = append([]string{}, s.data.Categories...)
	return out
}

// Categories implements Store.Categories.
func (s *MemoryStore) Categories(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.data.Categories...)
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Records)
}

// Close rejects further writes. Reads keep serving the last dataset.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
