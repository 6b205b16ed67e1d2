package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/labx/internal/config"
	"github.com/okian/labx/internal/leadreport"
)

func main() {
	var (
		input         = flag.String("input", "", "CSV, XLSX or JSON lead file")
		sheet         = flag.String("sheet", "", "XLSX sheet name (default: first sheet)")
		start         = flag.String("start", "", "First day, YYYY-MM-DD (default: start of the data)")
		end           = flag.String("end", "", "Last day, YYYY-MM-DD (default: end of the data)")
		minScore      = flag.String("min-score", "", "Lowest score to include (default 0)")
		maxScore      = flag.String("max-score", "", "Highest score to include (default 5)")
		categories    = flag.String("category", "", "Comma separated categories (default: all)")
		format        = flag.String("format", leadreport.FormatJSON, "Output format: json or xlsx")
		output        = flag.String("output", "", "Output file (default: stdout)")
		skipMalformed = flag.Bool("skip-malformed", false, "Drop rows that cannot be parsed")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		leadreport.ShowHelp(os.Stdout)
		return
	}

	if err := leadreport.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	runConfig := &leadreport.Config{
		Input:         *input,
		Sheet:         *sheet,
		Start:         *start,
		End:           *end,
		MinScore:      *minScore,
		MaxScore:      *maxScore,
		Categories:    *categories,
		Format:        *format,
		Output:        *output,
		SkipMalformed: *skipMalformed,
		Verbose:       *verbose,
		Settings:      settings,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "category" {
			runConfig.CategoriesSet = true
		}
	})

	if err := leadreport.Run(ctx, runConfig, os.Stdout); err != nil {
		os.Stderr.WriteString("Report failed: " + err.Error() + "\n")
		if errors.Is(err, leadreport.ErrUsage) {
			leadreport.ShowHelp(os.Stderr)
			os.Exit(2)
		}
		os.Exit(1)
	}
}
