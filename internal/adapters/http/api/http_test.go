package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/labx/internal/adapters/export"
	"github.com/okian/labx/internal/adapters/http/api"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/lead"
	"github.com/okian/labx/internal/domain/pipeline"
	"github.com/okian/labx/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeps struct {
	mu         sync.Mutex
	rows       []map[string]any
	ingestErr  error
	reportErr  error
	lastQuery  filter.Query
	categories []string
}

func (m *mockDeps) Ingest(_ context.Context, rows []map[string]any) (types.IngestSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingestErr != nil {
		return types.IngestSummary{}, m.ingestErr
	}
	m.rows = rows
	return types.IngestSummary{Loaded: len(rows)}, nil
}

func (m *mockDeps) Report(_ context.Context, q filter.Query) (types.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	if m.reportErr != nil {
		return types.Report{}, m.reportErr
	}
	res, err := pipeline.Run(nil, filter.Params{
		DateRange:  filter.DateRange{Start: lead.Date{Year: 2024, Month: time.January, Day: 1}},
		ScoreRange: filter.ScoreRange{Min: 0, Max: 5},
	})
	if err != nil {
		return types.Report{}, err
	}
	return types.NewReport(res, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)), nil
}

func (m *mockDeps) Export(ctx context.Context, q filter.Query, w io.Writer) (types.Report, error) {
	rep, err := m.Report(ctx, q)
	if err != nil {
		return rep, err
	}
	_, err = io.WriteString(w, "workbook")
	return rep, err
}

func (m *mockDeps) Categories(context.Context) []string {
	return m.categories
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

const upload = `[{"Timestamp":"2024-01-01T09:00","Score":4,"Vehicle Type":"Car"},` +
	`{"Timestamp":"2024-01-01T09:30","Score":null,"Vehicle Type":"Bike"}]`

func TestServer_Routes(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDeps{categories: []string{"Car", "Bike"}}
		stats := &mockStatsProvider{stats: map[string]interface{}{"records": 2}}
		h := api.NewServer(deps, stats).Handler()

		Convey("Then the health endpoint reports ok", func() {
			w := serve(h, http.MethodGet, "/healthz", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("And the metrics endpoint is scrapeable", func() {
			w := serve(h, http.MethodGet, "/metrics", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats come from the provider", func() {
			w := serve(h, http.MethodGet, "/stats", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"records":2`)
		})

		Convey("And categories are listed", func() {
			w := serve(h, http.MethodGet, "/leads/categories", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"categories":["Car","Bike"]}`)
		})

		Convey("And an empty dataset lists no categories", func() {
			deps.categories = nil
			w := serve(h, http.MethodGet, "/leads/categories", "", "")
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"categories":[]}`)
		})

		Convey("And unknown paths are not found", func() {
			w := serve(h, http.MethodGet, "/unknown", "", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLeadsHandler(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{}
		h := api.NewServer(deps, &mockStatsProvider{}).Handler()

		Convey("When uploading a JSON array", func() {
			w := serve(h, http.MethodPost, "/leads", "application/json", upload)

			Convey("Then the rows reach the service and the summary is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"loaded":2,"skipped":0}`)
				So(len(deps.rows), ShouldEqual, 2)
				So(deps.rows[1]["Score"], ShouldBeNil)
			})
		})

		Convey("When uploading a CSV file", func() {
			w := serve(h, http.MethodPost, "/leads", "text/csv; charset=utf-8",
				"Timestamp,Score,Vehicle Type\n2024-01-01T09:00,4,Car\n")

			Convey("Then it is decoded by header", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.rows[0]["Vehicle Type"], ShouldEqual, "Car")
			})
		})

		Convey("When the body is not JSON", func() {
			w := serve(h, http.MethodPost, "/leads", "application/json", "{nope")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})

		Convey("When the media type is unsupported", func() {
			w := serve(h, http.MethodPost, "/leads", "text/plain", "hello")
			So(w.Code, ShouldEqual, http.StatusUnsupportedMediaType)
		})

		Convey("When the source is empty", func() {
			deps.ingestErr = fmt.Errorf("ingest: %w", lead.ErrEmptySource)
			w := serve(h, http.MethodPost, "/leads", "application/json", "[]")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errorCode(w), ShouldEqual, "empty_source")
		})

		Convey("When a row is malformed", func() {
			deps.ingestErr = &lead.RowError{Row: 1, Field: "Timestamp", Value: "x", Reason: "not a timestamp"}
			w := serve(h, http.MethodPost, "/leads", "application/json", upload)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errorCode(w), ShouldEqual, "malformed_source")
			So(w.Body.String(), ShouldContainSubstring, "row 1")
		})

		Convey("When the service fails otherwise", func() {
			deps.ingestErr = errors.New("disk on fire")
			w := serve(h, http.MethodPost, "/leads", "application/json", upload)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When using the wrong method", func() {
			w := serve(h, http.MethodGet, "/leads", "", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a server with a tiny upload limit", t, func() {
		h := api.NewServer(&mockDeps{}, &mockStatsProvider{}, api.WithMaxUploadBytes(16)).Handler()
		w := serve(h, http.MethodPost, "/leads", "application/json", upload)

		Convey("Then large bodies are rejected", func() {
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			So(errorCode(w), ShouldEqual, "payload_too_large")
		})
	})
}

func TestReportHandler(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDeps{}
		h := api.NewServer(deps, &mockStatsProvider{}).Handler()

		Convey("When requesting a fully specified report", func() {
			w := serve(h, http.MethodGet,
				"/report?start=2024-01-01&end=2024-01-02&min_score=1.5&max_score=4&category=Car&category=Bike", "", "")

			Convey("Then the query reaches the service intact", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				q := deps.lastQuery
				So(q.Start.String(), ShouldEqual, "2024-01-01")
				So(q.End.String(), ShouldEqual, "2024-01-02")
				So(*q.MinScore, ShouldEqual, 1.5)
				So(*q.MaxScore, ShouldEqual, 4.0)
				So(q.CategoriesSet, ShouldBeTrue)
				So(q.Categories, ShouldResemble, []string{"Car", "Bike"})
			})

			Convey("And the body is the report envelope", func() {
				var body map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body, ShouldContainKey, "run_id")
				So(body, ShouldContainKey, "kpis")
				So(body, ShouldContainKey, "daily")
			})
		})

		Convey("When no parameters are given", func() {
			w := serve(h, http.MethodGet, "/report", "", "")

			Convey("Then every field is left to the defaults", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery.Start.IsZero(), ShouldBeTrue)
				So(deps.lastQuery.MinScore, ShouldBeNil)
				So(deps.lastQuery.CategoriesSet, ShouldBeFalse)
			})
		})

		Convey("When the category list is present but empty", func() {
			w := serve(h, http.MethodGet, "/report?category=", "", "")

			Convey("Then an explicit empty selection is passed on", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery.CategoriesSet, ShouldBeTrue)
				So(deps.lastQuery.Categories, ShouldBeEmpty)
			})
		})

		Convey("When a date is malformed", func() {
			w := serve(h, http.MethodGet, "/report?start=01/02/2024", "", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_params")
			So(w.Body.String(), ShouldContainSubstring, "start must be a date")
		})

		Convey("When a score is not a number", func() {
			w := serve(h, http.MethodGet, "/report?max_score=high", "", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "max_score must be a number")
		})

		Convey("When scores use a leading dot or an exponent", func() {
			w := serve(h, http.MethodGet, "/report?min_score=.5&max_score=1e0", "", "")

			Convey("Then they parse as floats", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(*deps.lastQuery.MinScore, ShouldEqual, 0.5)
				So(*deps.lastQuery.MaxScore, ShouldEqual, 1.0)
			})
		})

		Convey("When a score is NaN", func() {
			w := serve(h, http.MethodGet, "/report?min_score=NaN", "", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, "min_score must be a number")
		})

		Convey("When the service rejects the range", func() {
			deps.reportErr = &filter.ParamError{Field: "score_range", Reason: "min is greater than max"}
			w := serve(h, http.MethodGet, "/report?min_score=4&max_score=1", "", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "invalid_params")
		})

		Convey("When the service fails", func() {
			deps.reportErr = errors.New("boom")
			w := serve(h, http.MethodGet, "/report", "", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(errorCode(w), ShouldEqual, "internal_error")
		})

		Convey("When requesting the workbook", func() {
			w := serve(h, http.MethodGet, "/report.xlsx?category=Car", "", "")

			Convey("Then it is served as an attachment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, export.ContentType)
				So(w.Header().Get("Content-Disposition"), ShouldStartWith, `attachment; filename="lead-report-`)
				So(w.Body.String(), ShouldEqual, "workbook")
			})
		})

		Convey("When posting to the report", func() {
			w := serve(h, http.MethodPost, "/report", "", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given a wrapped API error", t, func() {
		cause := errors.New("bad date")
		err := api.WrapKind("api.get_report", api.ErrInvalidParams, cause)

		Convey("Then both kind and cause match", func() {
			So(errors.Is(err, api.ErrInvalidParams), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.get_report: invalid params: bad date")
		})

		Convey("And the other constructors format consistently", func() {
			So(api.NewKind("op", api.ErrBadRequest).Error(), ShouldEqual, "op: bad request")
			So(api.Wrap("op", cause).Error(), ShouldEqual, "op: bad date")
			So(api.Wrap("op", nil), ShouldBeNil)
		})
	})
}
