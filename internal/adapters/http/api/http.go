// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/labx/internal/adapters/source"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/types"
)

// DefaultMaxUploadBytes bounds POST /leads bodies.
const DefaultMaxUploadBytes int64 = 32 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ingest replaces the dataset with the normalized rows.
	Ingest(ctx context.Context, rows []map[string]any) (types.IngestSummary, error)

	// Report resolves q against the dataset and runs the pipeline.
	Report(ctx context.Context, q filter.Query) (types.Report, error)

	// Export runs Report and writes it as a workbook to w.
	Export(ctx context.Context, q filter.Query, w io.Writer) (types.Report, error)

	// Categories lists the categories of the loaded dataset.
	Categories(ctx context.Context) []string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	leadsHandler  *LeadsHandler
	reportHandler *ReportHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
	reader         *source.Reader
}

// WithMaxUploadBytes caps the accepted upload size.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithSourceReader sets the decoder used for uploaded sheets.
func WithSourceReader(r *source.Reader) Option {
	return func(c *serverConfig) {
		if r != nil {
			c.reader = r
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{
		maxUploadBytes: DefaultMaxUploadBytes,
		reader:         source.NewReader(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	v := newValidator()
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		leadsHandler:  NewLeadsHandler(deps, cfg.reader, cfg.maxUploadBytes),
		reportHandler: NewReportHandler(deps, v),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leads/categories", MetricsMiddleware(s.leadsHandler.HandleGetCategories, "categories"))
	mux.HandleFunc("/leads", MetricsMiddleware(s.leadsHandler.HandlePostLeads, "leads"))
	mux.HandleFunc("/report.xlsx", MetricsMiddleware(s.reportHandler.HandleGetReportXLSX, "report_xlsx"))
	mux.HandleFunc("/report", MetricsMiddleware(s.reportHandler.HandleGetReport, "report"))
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

