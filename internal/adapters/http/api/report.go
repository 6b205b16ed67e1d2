package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/okian/labx/internal/adapters/export"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/types"
	"github.com/okian/labx/pkg/metrics"
)

// ReportDependencies defines the report operations used by ReportHandler.
type ReportDependencies interface {
	Report(ctx context.Context, q filter.Query) (types.Report, error)
	Export(ctx context.Context, q filter.Query, w io.Writer) (types.Report, error)
}

// ReportHandler handles report requests.
type ReportHandler struct {
	deps     ReportDependencies
	validate *validator.Validate
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies, v *validator.Validate) *ReportHandler {
	if v == nil {
		v = newValidator()
	}
	return &ReportHandler{deps: deps, validate: v}
}

// HandleGetReport handles GET /report requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	q, ok := h.query(w, r, op)
	if !ok {
		return
	}
	rep, err := h.deps.Report(r.Context(), q)
	if err != nil {
		h.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleGetReportXLSX handles GET /report.xlsx requests.
func (h *ReportHandler) HandleGetReportXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report_xlsx"
	q, ok := h.query(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	rep, err := h.deps.Export(r.Context(), q, &buf)
	if err != nil {
		h.fail(w, op, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "lead-report-"+rep.RunID.String()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *ReportHandler) query(w http.ResponseWriter, r *http.Request, op string) (filter.Query, bool) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return filter.Query{}, false
	}
	q, err := parseReportQuery(h.validate, r.URL.Query())
	if err != nil {
		metrics.RecordInvalidParams("query")
		writeError(w, http.StatusBadRequest, "invalid_params", WrapKind(op, ErrInvalidParams, err))
		return filter.Query{}, false
	}
	return q, true
}

func (h *ReportHandler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, filter.ErrInvalidParams) {
		metrics.RecordInvalidParams("range")
		writeError(w, http.StatusBadRequest, "invalid_params", Wrap(op, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
}
