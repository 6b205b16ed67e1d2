package leadreport

import (
	"fmt"
	"strconv"
	"strings"

	appconfig "github.com/okian/labx/internal/config"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/lead"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Config holds configuration for one report run
type Config struct {
	Input         string // CSV, XLSX or JSON lead file
	Sheet         string // XLSX sheet, first sheet when empty
	Start         string // YYYY-MM-DD, data span when empty
	End           string // YYYY-MM-DD, data span when empty
	MinScore      string // domain minimum when empty
	MaxScore      string // domain maximum when empty
	Categories    string // comma separated
	CategoriesSet bool   // -category was given, even if empty
	Format        string // json or xlsx
	Output        string // file path, stdout when empty
	SkipMalformed bool   // drop bad rows instead of failing
	Verbose       bool   // debug logging

	// Settings carries columns, timezone, domain and pipeline tunables.
	// Defaults apply when nil.
	Settings *appconfig.Config
}

// Validate checks the flags that do not depend on the data.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: -input is required", ErrUsage)
	}
	if c.Format != FormatJSON && c.Format != FormatXLSX {
		return fmt.Errorf("%w: -format must be json or xlsx, got %q", ErrUsage, c.Format)
	}
	if c.Format == FormatXLSX && c.Output == "" {
		return fmt.Errorf("%w: -output is required for xlsx", ErrUsage)
	}
	return nil
}

// Query converts the filter flags.
func (c *Config) Query() (filter.Query, error) {
	var q filter.Query
	var err error
	if c.Start != "" {
		if q.Start, err = lead.ParseDate(c.Start); err != nil {
			return filter.Query{}, fmt.Errorf("%w: -start: %w", ErrUsage, err)
		}
	}
	if c.End != "" {
		if q.End, err = lead.ParseDate(c.End); err != nil {
			return filter.Query{}, fmt.Errorf("%w: -end: %w", ErrUsage, err)
		}
	}
	if q.MinScore, err = optionalFloat("-min-score", c.MinScore); err != nil {
		return filter.Query{}, err
	}
	if q.MaxScore, err = optionalFloat("-max-score", c.MaxScore); err != nil {
		return filter.Query{}, err
	}
	if c.CategoriesSet {
		q.CategoriesSet = true
		q.Categories = []string{}
		for _, part := range strings.Split(c.Categories, ",") {
			if part = strings.TrimSpace(part); part != "" {
				q.Categories = append(q.Categories, part)
			}
		}
	}
	return q, nil
}

func optionalFloat(flagName, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUsage, flagName, err)
	}
	return &v, nil
}
