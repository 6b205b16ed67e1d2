// Package source reads lead sheets from CSV, XLSX and JSON files into raw
// rows keyed by column name.
package source

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a supported input encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DefaultDateColumn is the column converted from Excel date serials unless
// WithDateColumns says otherwise.
const DefaultDateColumn = "Timestamp"

// Reader decodes a tabular source. The first CSV or sheet row is the header;
// blank cells become nil so the normalizer sees them as missing values.
type Reader struct {
	sheet       string
	dateColumns map[string]struct{}
	comma       rune
}

// NewReader creates a Reader with configuration options.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		comma:       ',',
		dateColumns: map[string]struct{}{DefaultDateColumn: {}},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadFile opens path and decodes it according to its extension.
func (r *Reader) ReadFile(path string) ([]map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer f.Close()
	return r.Read(f, format)
}

// Read decodes src in the given format.
func (r *Reader) Read(src io.Reader, format Format) ([]map[string]any, error) {
	switch format {
	case FormatCSV:
		return r.readCSV(src)
	case FormatXLSX:
		return r.readXLSX(src)
	case FormatJSON:
		return readJSON(src)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (r *Reader) readCSV(src io.Reader) ([]map[string]any, error) {
	cr := csv.NewReader(src)
	cr.Comma = r.comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %w", ErrRead, err)
	}
	return r.table(records, false), nil
}

func (r *Reader) readXLSX(src io.Reader) ([]map[string]any, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %w", ErrRead, err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return []map[string]any{}, nil
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx sheet %q: %w", ErrRead, sheet, err)
	}
	return r.table(rows, true), nil
}

// table turns a header row plus data rows into keyed rows. Fully blank rows
// are dropped.
func (r *Reader) table(rows [][]string, serialDates bool) []map[string]any {
	out := make([]map[string]any, 0)
	if len(rows) == 0 {
		return out
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = h
	}

	for _, cells := range rows[1:] {
		row := make(map[string]any, len(header))
		blank := true
		for i, name := range header {
			if name == "" {
				continue
			}
			var cell string
			if i < len(cells) {
				cell = strings.TrimSpace(cells[i])
			}
			if cell == "" {
				row[name] = nil
				continue
			}
			blank = false
			row[name] = r.cellValue(name, cell, serialDates)
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}

func (r *Reader) cellValue(column, cell string, serialDates bool) any {
	if !serialDates {
		return cell
	}
	if _, ok := r.dateColumns[column]; !ok {
		return cell
	}
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return t
}

func readJSON(src io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(src)
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return []map[string]any{}, nil
		}
		return nil, fmt.Errorf("%w: json: %w", ErrRead, err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}
