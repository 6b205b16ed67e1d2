// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/labx/internal/adapters/export"
	"github.com/okian/labx/internal/adapters/repository"
	"github.com/okian/labx/internal/adapters/source"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/lead"
	"github.com/okian/labx/internal/domain/pipeline"
	"github.com/okian/labx/internal/domain/types"
	"github.com/okian/labx/pkg/logger"
	"github.com/okian/labx/pkg/metrics"
)

// ErrStopped is returned by Start once the service has been stopped.
var ErrStopped = errors.New("service stopped")

// maxReportedErrors caps the row errors echoed back in an IngestSummary.
const maxReportedErrors = 20

// Service implements the API dependencies for the lead analytics dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	normalizer *lead.Normalizer
	pipeline   *pipeline.Pipeline
	reader     *source.Reader
	exporter   *export.Writer

	// Configuration
	sourcePath string
	loc        *time.Location
	now        func() time.Time

	// State
	started bool
	stopped bool
	ingests atomic.Uint64
	reports atomic.Uint64
	failed  atomic.Uint64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the dataset store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithNormalizer sets how raw rows become records.
func WithNormalizer(n *lead.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithPipeline sets the report pipeline.
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(s *Service) {
		if p != nil {
			s.pipeline = p
		}
	}
}

// WithSourceReader sets the decoder for source files.
func WithSourceReader(r *source.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.reader = r
		}
	}
}

// WithExporter sets the workbook writer used by Export.
func WithExporter(w *export.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.exporter = w
		}
	}
}

// WithSourcePath sets a file loaded by Start.
func WithSourcePath(path string) Option {
	return func(s *Service) {
		s.sourcePath = path
	}
}

// WithLocation sets the zone "today" is taken in. It also becomes the
// default normalizer's zone for timestamps without an offset.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		loc: time.UTC,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Discard()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithClock(s.now))
	}
	if s.normalizer == nil {
		s.normalizer = lead.NewNormalizer(lead.WithLocation(s.loc))
	}
	if s.pipeline == nil {
		s.pipeline = pipeline.New()
	}
	if s.reader == nil {
		s.reader = source.NewReader()
	}
	if s.exporter == nil {
		s.exporter = export.NewWriter()
	}
	return s
}

// Start loads the configured source file, if any. A stopped service cannot
// be started again; Start then fails with ErrStopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting lead analytics service...")

	if s.sourcePath != "" {
		summary, err := s.IngestFile(ctx, s.sourcePath)
		if err != nil {
			return fmt.Errorf("preload %s: %w", s.sourcePath, err)
		}
		s.logger.Info(ctx, "source preloaded",
			logger.String("path", s.sourcePath),
			logger.Int("loaded", summary.Loaded),
			logger.Int("skipped", summary.Skipped),
		)
	}

	s.started = true
	s.logger.Info(ctx, "lead analytics service started", logger.Int("records", s.store.Count(ctx)))
	return nil
}

// Stop rejects further ingests and is final. Reports keep serving the last
// dataset.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping lead analytics service...")

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.stopped = true
	s.logger.Info(context.Background(), "lead analytics service stopped")
}

// IngestFile reads path with the source reader and replaces the dataset.
func (s *Service) IngestFile(ctx context.Context, path string) (types.IngestSummary, error) {
	rows, err := s.reader.ReadFile(path)
	if err != nil {
		metrics.RecordIngestError("read")
		return types.IngestSummary{}, err
	}
	return s.Ingest(ctx, rows)
}

// Ingest normalizes rows and replaces the dataset. On error the previous
// dataset stays in place.
func (s *Service) Ingest(ctx context.Context, rows []map[string]any) (types.IngestSummary, error) {
	batch, err := s.normalizer.LoadBatch(rows)
	if err != nil {
		metrics.RecordIngestError(ingestErrorKind(err))
		s.logger.Warn(ctx, "ingest rejected", logger.Int("rows", len(rows)), logger.Error(err))
		return types.IngestSummary{}, err
	}
	if err := s.store.Replace(ctx, batch.Records); err != nil {
		metrics.RecordIngestError("store")
		return types.IngestSummary{}, fmt.Errorf("replace dataset: %w", err)
	}

	summary := types.IngestSummary{Loaded: len(batch.Records), Skipped: len(batch.Skipped)}
	for i, rowErr := range batch.Skipped {
		if i == maxReportedErrors {
			break
		}
		summary.Errors = append(summary.Errors, rowErr.Error())
	}

	s.ingests.Add(1)
	metrics.RecordIngest(summary.Loaded, summary.Skipped)
	s.logger.Info(ctx, "dataset replaced",
		logger.Int("loaded", summary.Loaded),
		logger.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func ingestErrorKind(err error) string {
	switch {
	case errors.Is(err, lead.ErrEmptySource):
		return "empty_source"
	case errors.Is(err, lead.ErrMalformedSource):
		return "malformed_source"
	default:
		return "unknown"
	}
}

// Report resolves q against the current dataset and runs the pipeline.
// Nonsensical parameters fail with filter.ErrInvalidParams.
func (s *Service) Report(ctx context.Context, q filter.Query) (types.Report, error) {
	if err := ctx.Err(); err != nil {
		return types.Report{}, err
	}
	start := time.Now()
	snap := s.store.Snapshot(ctx)
	today := lead.DateOf(s.now().In(s.loc))
	params := q.Resolve(snap.Records, s.pipeline.Domain(), today)

	res, err := s.pipeline.Run(snap.Records, params)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, filter.ErrInvalidParams) {
			outcome = metrics.OutcomeInvalid
		}
		s.failed.Add(1)
		metrics.RecordReport(outcome, latencyMs, 0)
		return types.Report{}, err
	}

	rep := types.NewReport(res, s.now())
	s.reports.Add(1)
	metrics.RecordReport(metrics.OutcomeOK, latencyMs, len(res.Filtered))
	s.logger.Debug(ctx, "report computed",
		logger.String("run_id", rep.RunID.String()),
		logger.Int("dataset", snap.Len()),
		logger.Int("filtered", len(res.Filtered)),
		logger.Float64("latency_ms", latencyMs),
	)
	return rep, nil
}

// Export runs Report and writes it as a workbook to w.
func (s *Service) Export(ctx context.Context, q filter.Query, w io.Writer) (types.Report, error) {
	rep, err := s.Report(ctx, q)
	if err != nil {
		return types.Report{}, err
	}
	if err := s.exporter.Write(w, rep); err != nil {
		metrics.RecordError("export", "write", "high", 0)
		return types.Report{}, fmt.Errorf("export %s: %w", rep.RunID, err)
	}
	metrics.RecordExport("xlsx")
	return rep, nil
}

// Categories lists the categories of the loaded dataset.
func (s *Service) Categories(ctx context.Context) []string {
	return s.store.Categories(ctx)
}

// Source describes the loaded dataset.
func (s *Service) Source(ctx context.Context) types.SourceSummary {
	snap := s.store.Snapshot(ctx)
	out := types.SourceSummary{
		Records:    snap.Len(),
		Categories: snap.Categories,
		LoadedAt:   snap.LoadedAt,
	}
	for i, r := range snap.Records {
		ts := r.Timestamp
		if i == 0 {
			first, last := ts, ts
			out.First, out.Last = &first, &last
			continue
		}
		if ts.Before(*out.First) {
			*out.First = ts
		}
		if ts.After(*out.Last) {
			*out.Last = ts
		}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.store.Snapshot(context.Background())
	stats := map[string]interface{}{
		"started":        s.started,
		"records":        snap.Len(),
		"categories":     len(snap.Categories),
		"datasetVersion": snap.Version,
		"ingests":        s.ingests.Load(),
		"reports":        s.reports.Load(),
		"failedReports":  s.failed.Load(),
		"timezone":       s.loc.String(),
	}
	if snap.Version > 0 {
		stats["loadedAt"] = snap.LoadedAt.Format(time.RFC3339)
	}
	if s.sourcePath != "" {
		stats["sourcePath"] = s.sourcePath
	}
	return stats
}
