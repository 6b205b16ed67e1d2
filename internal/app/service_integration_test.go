package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/labx/internal/adapters/export"
	"github.com/okian/labx/internal/adapters/http/api"
	"github.com/okian/labx/internal/adapters/source"
	service "github.com/okian/labx/internal/app"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

const leadsCSV = `Timestamp,Score,Vehicle Type,Agent
2024-01-01T09:00,4,Car,ana
2024-01-01T09:30,2,Bike,bo
2024-01-02T10:00,,Car,ana
2024-01-02T18:15,5,Van,cy
`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service preloaded from a CSV file behind the HTTP API", t, func() {
		path := writeSource(t, "leads.csv", leadsCSV)
		svc := newService(
			service.WithSourcePath(path),
			service.WithExporter(export.NewWriter(export.WithExtraColumns("Agent"))),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(api.NewServer(svc, svc).Handler())
		defer srv.Close()

		Convey("When the dataset is inspected", func() {
			stats := svc.GetStats()

			Convey("Then every row was preloaded", func() {
				So(stats["records"], ShouldEqual, 4)
				So(stats["sourcePath"], ShouldEqual, path)
				So(svc.Categories(ctx), ShouldResemble, []string{"Car", "Bike", "Van"})
			})
		})

		Convey("When requesting a report over HTTP", func() {
			resp, err := http.Get(srv.URL + "/report?min_score=3&category=Car&category=Van")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			var rep types.Report
			So(json.NewDecoder(resp.Body).Decode(&rep), ShouldBeNil)

			Convey("Then the filtered KPIs come back as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(rep.KPIs.Total, ShouldEqual, 2)
				So(rep.KPIs.AvgScore.Value, ShouldEqual, 4.5)
				So(rep.KPIs.HighQualityRate, ShouldEqual, 100.0)
				So(len(rep.Daily), ShouldEqual, 2)
				So(rep.Params.ScoreRange.Min, ShouldEqual, 3)
			})
		})

		Convey("When downloading the workbook", func() {
			resp, err := http.Get(srv.URL + "/report.xlsx")
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			f, err := excelize.OpenReader(resp.Body)
			So(err, ShouldBeNil)
			defer func() { _ = f.Close() }()

			Convey("Then the recent sheet carries the extra column", func() {
				So(resp.Header.Get("Content-Type"), ShouldEqual, export.ContentType)
				rows, err := f.GetRows(export.SheetRecent)
				So(err, ShouldBeNil)
				So(rows[0], ShouldResemble, []string{"Timestamp", "Score", "Category", "Agent"})
				So(rows[1][2], ShouldEqual, "Van")
				So(rows[1][3], ShouldEqual, "cy")
			})
		})

		Convey("When replacing the dataset over HTTP", func() {
			body := `[{"Timestamp":"2024-02-01T08:00:00Z","Score":3,"Vehicle Type":"Truck"}]`
			resp, err := http.Post(srv.URL+"/leads", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			_ = resp.Body.Close()

			Convey("Then later reports see only the new leads", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				rep, err := svc.Report(ctx, filter.Query{})
				So(err, ShouldBeNil)
				So(rep.KPIs.Total, ShouldEqual, 1)
				So(svc.Categories(ctx), ShouldResemble, []string{"Truck"})
			})
		})

		Convey("When uploading a CSV body", func() {
			resp, err := http.Post(srv.URL+"/leads", "text/csv", bytes.NewBufferString(leadsCSV))
			So(err, ShouldBeNil)
			defer func() { _ = resp.Body.Close() }()

			var summary types.IngestSummary
			So(json.NewDecoder(resp.Body).Decode(&summary), ShouldBeNil)

			Convey("Then all rows are loaded again", func() {
				So(summary.Loaded, ShouldEqual, 4)
				So(svc.GetStats()["datasetVersion"], ShouldEqual, uint64(2))
			})
		})
	})

	Convey("Given an XLSX source on disk", t, func() {
		f := excelize.NewFile()
		So(f.SetSheetRow("Sheet1", "A1", &[]any{"Timestamp", "Score", "Vehicle Type"}), ShouldBeNil)
		So(f.SetSheetRow("Sheet1", "A2", &[]any{"2024-03-01 10:00:00", 4.5, "Car"}), ShouldBeNil)
		So(f.SetSheetRow("Sheet1", "A3", &[]any{"2024-03-02 11:00:00", 1, "Bike"}), ShouldBeNil)
		path := filepath.Join(t.TempDir(), "leads.xlsx")
		So(f.SaveAs(path), ShouldBeNil)
		_ = f.Close()

		svc := newService(service.WithSourceReader(source.NewReader(source.WithSheet("Sheet1"))))

		Convey("When ingesting the file", func() {
			summary, err := svc.IngestFile(context.Background(), path)

			Convey("Then both rows are loaded", func() {
				So(err, ShouldBeNil)
				So(summary.Loaded, ShouldEqual, 2)
				So(svc.Categories(context.Background()), ShouldResemble, []string{"Car", "Bike"})
			})
		})
	})
}
