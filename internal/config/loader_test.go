package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/labx/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LABX_ADDR", ":8080")
			_ = os.Setenv("LABX_SCORE_MAX", "10")
			_ = os.Setenv("LABX_SMOOTHING_WINDOW", "5")
			_ = os.Setenv("LABX_SMOOTHING_CYCLIC", "true")
			_ = os.Setenv("LABX_SKIP_MALFORMED", "true")
			_ = os.Setenv("LABX_CATEGORY_FIELD", "Segment")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScoreMax, convey.ShouldEqual, 10)
				convey.So(cfg.SmoothingWindow, convey.ShouldEqual, 5)
				convey.So(cfg.SmoothingCyclic, convey.ShouldBeTrue)
				convey.So(cfg.SkipMalformed, convey.ShouldBeTrue)
				convey.So(cfg.CategoryField, convey.ShouldEqual, "Segment")
				convey.So(cfg.ScoreField, convey.ShouldEqual, "Score")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
source_path: "/data/leads.xlsx"
source_sheet: "Leads"
timezone: "Europe/Berlin"
high_quality_threshold: 3.5
recent_limit: 25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LABX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep defaults elsewhere", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SourcePath, convey.ShouldEqual, "/data/leads.xlsx")
				convey.So(cfg.SourceSheet, convey.ShouldEqual, "Leads")
				convey.So(cfg.Location().String(), convey.ShouldEqual, "Europe/Berlin")
				convey.So(cfg.HighQualityThreshold, convey.ShouldEqual, 3.5)
				convey.So(cfg.RecentLimit, convey.ShouldEqual, 25)
				convey.So(cfg.SmoothingWindow, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
recent_limit: 25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LABX_CONFIG", tmpFile)
			_ = os.Setenv("LABX_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RecentLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LABX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("LABX_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("LABX_SMOOTHING_WINDOW", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("LABX_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with an inverted score domain", func() {
			_ = os.Setenv("LABX_SCORE_MIN", "4")
			_ = os.Setenv("LABX_SCORE_MAX", "1")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "labx-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"LABX_CONFIG", "LABX_ADDR", "LABX_LOG_LEVEL", "LABX_LOG_FORMAT",
		"LABX_SOURCE_PATH", "LABX_SOURCE_SHEET", "LABX_TIMESTAMP_FIELD", "LABX_SCORE_FIELD",
		"LABX_CATEGORY_FIELD", "LABX_TIMEZONE", "LABX_SKIP_MALFORMED", "LABX_SCORE_MIN",
		"LABX_SCORE_MAX", "LABX_HIGH_QUALITY_THRESHOLD", "LABX_SMOOTHING_WINDOW",
		"LABX_SMOOTHING_CYCLIC", "LABX_RECENT_LIMIT", "LABX_MAX_UPLOAD_BYTES",
	} {
		_ = os.Unsetenv(key)
	}
}
