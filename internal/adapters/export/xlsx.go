// Package export renders a report as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/okian/labx/internal/domain/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetHourly     = "Hourly"
	SheetDaily      = "Daily"
	SheetScores     = "Scores"
	SheetCategories = "Categories"
	SheetRecent     = "Recent"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Writer renders reports to XLSX.
type Writer struct {
	extra []string
}

// NewWriter creates a Writer with configuration options.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders rep and streams the workbook to dst.
func (w *Writer) Write(dst io.Writer, rep types.Report) error {
	f, err := w.Build(rep)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(dst); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build renders rep into an in-memory workbook. The caller owns the file.
func (w *Writer) Build(rep types.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	b := &book{f: f, header: bold}

	b.table(SheetSummary, []string{"Field", "Value"}, summaryRows(rep))
	b.table(SheetHourly, []string{"Hour", "Leads", "Smoothed"}, hourlyRows(rep))
	b.table(SheetDaily, []string{"Date", "Scored Leads"}, dailyRows(rep))
	b.table(SheetScores, []string{"Score", "Leads"}, scoreRows(rep))
	b.table(SheetCategories, []string{"Category", "Leads"}, categoryRows(rep))
	b.table(SheetRecent, append([]string{"Timestamp", "Score", "Category"}, w.extra...), w.recentRows(rep))
	if b.err != nil {
		f.Close()
		return nil, b.err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// book accumulates the first error so sheet writers stay linear.
type book struct {
	f      *excelize.File
	header int
	err    error
}

func (b *book) table(sheet string, header []string, rows [][]any) {
	if b.err != nil {
		return
	}
	if sheet != SheetSummary {
		if _, err := b.f.NewSheet(sheet); err != nil {
			b.err = fmt.Errorf("new sheet %s: %w", sheet, err)
			return
		}
	}
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := b.f.SetSheetRow(sheet, "A1", &head); err != nil {
		b.err = fmt.Errorf("%s header: %w", sheet, err)
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := b.f.SetCellStyle(sheet, "A1", last, b.header); err != nil {
		b.err = fmt.Errorf("%s header style: %w", sheet, err)
		return
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := b.f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			b.err = fmt.Errorf("%s row %d: %w", sheet, i+1, err)
			return
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := b.f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		b.err = fmt.Errorf("%s width: %w", sheet, err)
	}
}

func summaryRows(rep types.Report) [][]any {
	var avg any
	if rep.KPIs.AvgScore.Valid {
		avg = rep.KPIs.AvgScore.Value
	}
	p := rep.Params
	return [][]any{
		{"Run ID", rep.RunID.String()},
		{"Generated At", rep.GeneratedAt},
		{"Start Date", p.DateRange.Start.String()},
		{"End Date", p.DateRange.End.String()},
		{"Min Score", p.ScoreRange.Min},
		{"Max Score", p.ScoreRange.Max},
		{"Categories", strings.Join(p.Categories, ", ")},
		{"Total Leads", rep.KPIs.Total},
		{"Completion Rate (%)", rep.KPIs.CompletionRate},
		{"Average Score", avg},
		{"High Quality Rate (%)", rep.KPIs.HighQualityRate},
	}
}

func hourlyRows(rep types.Report) [][]any {
	out := make([][]any, 0, len(rep.Hourly))
	for _, h := range rep.Hourly {
		out = append(out, []any{h.Hour, h.Count, h.Smoothed})
	}
	return out
}

func dailyRows(rep types.Report) [][]any {
	out := make([][]any, 0, len(rep.Daily))
	for _, d := range rep.Daily {
		out = append(out, []any{d.Date.String(), d.Count})
	}
	return out
}

func scoreRows(rep types.Report) [][]any {
	out := make([][]any, 0, len(rep.ScoreHist))
	for _, s := range rep.ScoreHist {
		out = append(out, []any{s.Score, s.Count})
	}
	return out
}

func categoryRows(rep types.Report) [][]any {
	out := make([][]any, 0, len(rep.CategoryHist))
	for _, c := range rep.CategoryHist {
		out = append(out, []any{c.Category, c.Count})
	}
	return out
}

func (w *Writer) recentRows(rep types.Report) [][]any {
	out := make([][]any, 0, len(rep.Recent))
	for _, r := range rep.Recent {
		var score any
		if r.Score.Valid {
			score = r.Score.Value
		}
		row := []any{r.Timestamp, score, r.Category}
		for _, name := range w.extra {
			row = append(row, r.Fields[name])
		}
		out = append(out, row)
	}
	return out
}
