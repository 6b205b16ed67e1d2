// Package repository holds the loaded lead dataset.
package repository

import (
	"context"
	"time"

	"github.com/okian/labx/internal/domain/lead"
)

// Dataset is an immutable view of the loaded leads.
type Dataset struct {
	Records    []lead.Record
	Categories []string
	LoadedAt   time.Time
	// Version increments on every Replace.
	Version uint64
}

// Len returns the number of records in the dataset.
func (d Dataset) Len() int { return len(d.Records) }

// Store provides read/write access to the current dataset.
type Store interface {
	// Replace swaps the whole dataset for records.
	Replace(ctx context.Context, records []lead.Record) error

	// Snapshot returns a copy of the current dataset. It never fails; an
	// empty store yields an empty dataset.
	Snapshot(ctx context.Context) Dataset

	// Categories returns the distinct categories in first-seen order.
	Categories(ctx context.Context) []string

	// Count returns the number of loaded records.
	Count(ctx context.Context) int
}
