package service

import (
	"github.com/okian/labx/internal/adapters/source"
	"github.com/okian/labx/internal/config"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/lead"
	"github.com/okian/labx/internal/domain/pipeline"
)

// NewSourceReader builds the file decoder described by cfg.
func NewSourceReader(cfg *config.Config) *source.Reader {
	return source.NewReader(
		source.WithSheet(cfg.SourceSheet),
		source.WithDateColumns(cfg.TimestampField),
	)
}

// ConfigOptions translates cfg into Service options. Options given after
// them to New take precedence.
func ConfigOptions(cfg *config.Config) []Option {
	loc := cfg.Location()
	normalizer := lead.NewNormalizer(
		lead.WithTimestampField(cfg.TimestampField),
		lead.WithScoreField(cfg.ScoreField),
		lead.WithCategoryField(cfg.CategoryField),
		lead.WithLocation(loc),
		lead.WithSkipMalformed(cfg.SkipMalformed),
	)
	p := pipeline.New(
		pipeline.WithDomain(filter.Domain{Min: cfg.ScoreMin, Max: cfg.ScoreMax}),
		pipeline.WithHighQualityThreshold(cfg.HighQualityThreshold),
		pipeline.WithSmoothingWindow(cfg.SmoothingWindow),
		pipeline.WithCyclicSmoothing(cfg.SmoothingCyclic),
		pipeline.WithRecentLimit(cfg.RecentLimit),
	)
	return []Option{
		WithSourcePath(cfg.SourcePath),
		WithSourceReader(NewSourceReader(cfg)),
		WithNormalizer(normalizer),
		WithPipeline(p),
		WithLocation(loc),
	}
}
