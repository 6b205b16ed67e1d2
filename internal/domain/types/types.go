// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/labx/internal/domain/pipeline"
)

// Report is one pipeline run as served to clients
type Report struct {
	RunID       uuid.UUID `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	pipeline.Result
}

// NewReport stamps a result with a fresh run id
func NewReport(res pipeline.Result, at time.Time) Report {
	return Report{
		RunID:       uuid.New(),
		GeneratedAt: at,
		Result:      res,
	}
}

// SourceSummary describes the currently loaded dataset
type SourceSummary struct {
	Records    int        `json:"records"`
	Categories []string   `json:"categories"`
	LoadedAt   time.Time  `json:"loaded_at"`
	First      *time.Time `json:"first,omitempty"`
	Last       *time.Time `json:"last,omitempty"`
}

// IngestSummary reports the outcome of loading a dataset
type IngestSummary struct {
	Loaded  int      `json:"loaded"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
