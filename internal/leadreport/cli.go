package leadreport

import (
	"io"
	"os"

	"github.com/okian/labx/pkg/logger"
)

// SetupLogging sends log output to stderr so stdout stays free for the report.
func SetupLogging(verbose bool) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.InitWithOptions(logger.WithWriter(os.Stderr), logger.WithLevel(level))
}

// ShowHelp prints usage information for the report tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Lead Report Tool
================

Computes the lead dashboard KPIs and views for one file.

Usage:
  go run ./cmd/leadreport -input leads.xlsx [options]

Options:
  -input string
        CSV, XLSX or JSON lead file (required)
  -sheet string
        XLSX sheet name (default: first sheet)
  -start string, -end string
        Inclusive date range, YYYY-MM-DD (default: span of the data)
  -min-score float, -max-score float
        Inclusive score bounds (default: 0 and 5)
  -category string
        Comma separated categories; an empty value selects none (default: all)
  -format string
        json or xlsx (default "json")
  -output string
        Output file (default: stdout; required for xlsx)
  -skip-malformed
        Drop rows that cannot be parsed
  -verbose
        Enable debug logging
  -help
        Show this help message

Column names, timezone, score domain and smoothing come from the same
LABX_* environment variables and LABX_CONFIG file as the server.

Examples:
  # Summary of every lead as JSON
  go run ./cmd/leadreport -input leads.csv

  # January report for two vehicle types as a workbook
  go run ./cmd/leadreport -input leads.xlsx -start 2024-01-01 -end 2024-01-31 -category Car,Van -format xlsx -output jan.xlsx
`)
}
