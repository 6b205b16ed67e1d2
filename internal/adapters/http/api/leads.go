package api

import (
	"context"
	"errors"
	"mime"
	"net/http"

	"github.com/okian/labx/internal/adapters/export"
	"github.com/okian/labx/internal/adapters/source"
	"github.com/okian/labx/internal/domain/lead"
	"github.com/okian/labx/internal/domain/types"
)

// LeadsDependencies defines the dataset operations used by LeadsHandler.
type LeadsDependencies interface {
	Ingest(ctx context.Context, rows []map[string]any) (types.IngestSummary, error)
	Categories(ctx context.Context) []string
}

// LeadsHandler handles dataset upload and lookup requests.
type LeadsHandler struct {
	deps     LeadsDependencies
	reader   *source.Reader
	maxBytes int64
}

// NewLeadsHandler creates a new leads handler.
func NewLeadsHandler(deps LeadsDependencies, reader *source.Reader, maxBytes int64) *LeadsHandler {
	return &LeadsHandler{deps: deps, reader: reader, maxBytes: maxBytes}
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// HandlePostLeads handles POST /leads requests. The body is a JSON array of
// rows, a CSV file or an XLSX workbook, selected by Content-Type.
func (h *LeadsHandler) HandlePostLeads(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_leads"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	format, err := uploadFormat(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", WrapKind(op, ErrUnsupportedMedia, err))
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	rows, err := h.reader.Read(body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	summary, err := h.deps.Ingest(r.Context(), rows)
	switch {
	case errors.Is(err, lead.ErrEmptySource):
		writeError(w, http.StatusUnprocessableEntity, "empty_source", WrapKind(op, ErrUnprocessable, err))
	case errors.Is(err, lead.ErrMalformedSource):
		writeError(w, http.StatusUnprocessableEntity, "malformed_source", WrapKind(op, ErrUnprocessable, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}

// HandleGetCategories handles GET /leads/categories requests.
func (h *LeadsHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cats := h.deps.Categories(r.Context())
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: cats})
}

func uploadFormat(contentType string) (source.Format, error) {
	if contentType == "" {
		return source.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", err
	}
	switch mt {
	case "application/json":
		return source.FormatJSON, nil
	case "text/csv", "application/csv":
		return source.FormatCSV, nil
	case export.ContentType:
		return source.FormatXLSX, nil
	default:
		return "", source.ErrUnsupportedFormat
	}
}
