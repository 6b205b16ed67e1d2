package leadreport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	service "github.com/okian/labx/internal/app"
	appconfig "github.com/okian/labx/internal/config"
	"github.com/okian/labx/internal/domain/types"
	"github.com/okian/labx/pkg/logger"
)

// File permission constants.
const (
	outputFilePermission = 0o644
)

// settings merges the flags into the service configuration. The input file
// replaces any configured source_path.
func (c *Config) settings() *appconfig.Config {
	s := appconfig.New()
	if c.Settings != nil {
		copied := *c.Settings
		s = &copied
	}
	s.SourcePath = ""
	if c.Sheet != "" {
		s.SourceSheet = c.Sheet
	}
	if c.SkipMalformed {
		s.SkipMalformed = true
	}
	return s
}

// Run loads the input file, computes the report and writes it to the
// configured output, or to stdout when none is set.
func Run(ctx context.Context, config *Config, stdout io.Writer) error {
	if err := config.Validate(); err != nil {
		return err
	}
	q, err := config.Query()
	if err != nil {
		return err
	}

	log := logger.Get().Named("leadreport")
	opts := append(service.ConfigOptions(config.settings()), service.WithLogger(log))
	svc := service.New(opts...)

	summary, err := svc.IngestFile(ctx, config.Input)
	if err != nil {
		return fmt.Errorf("load %s: %w", config.Input, err)
	}
	for _, msg := range summary.Errors {
		log.Warn(ctx, "skipped row", logger.String("reason", msg))
	}

	out := stdout
	if config.Output != "" {
		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePermission)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	var rep types.Report
	switch config.Format {
	case FormatXLSX:
		rep, err = svc.Export(ctx, q, out)
	default:
		rep, err = svc.Report(ctx, q)
		if err == nil {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			err = enc.Encode(rep)
		}
	}
	if err != nil {
		return err
	}

	log.Info(ctx, "report written",
		logger.String("run_id", rep.RunID.String()),
		logger.Int("loaded", summary.Loaded),
		logger.Int("skipped", summary.Skipped),
		logger.Int("filtered", rep.KPIs.Total),
	)
	return nil
}
