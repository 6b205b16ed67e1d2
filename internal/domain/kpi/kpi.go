// Package kpi computes the summary metrics shown above the lead charts.
package kpi

import "github.com/okian/labx/internal/domain/lead"

// DefaultHighQualityThreshold is the score a lead must exceed to count as high quality.
const DefaultHighQualityThreshold = 3.0

// Set holds the KPIs of a filtered lead set. Rates are percentages in [0, 100].
type Set struct {
	Total           int        `json:"total"`
	CompletionRate  float64    `json:"completion_rate"`
	AvgScore        lead.Score `json:"avg_score"` // missing when no lead has a score
	HighQualityRate float64    `json:"high_quality_rate"`
}

// Option applies a configuration option to Compute.
type Option func(*calculator)

type calculator struct {
	threshold float64
}

// WithHighQualityThreshold overrides the high quality cut-off.
func WithHighQualityThreshold(v float64) Option {
	return func(c *calculator) {
		c.threshold = v
	}
}

// Compute derives the KPI set in a single pass. It never fails: an empty
// input yields zero rates and a missing average.
func Compute(records []lead.Record, opts ...Option) Set {
	c := calculator{threshold: DefaultHighQualityThreshold}
	for _, opt := range opts {
		opt(&c)
	}

	var scored, high int
	var sum float64
	for _, r := range records {
		if !r.Score.Valid {
			continue
		}
		scored++
		sum += r.Score.Value
		if r.Score.Value > c.threshold {
			high++
		}
	}

	s := Set{Total: len(records)}
	if s.Total > 0 {
		s.CompletionRate = percent(scored, s.Total)
		s.HighQualityRate = percent(high, s.Total)
	}
	if scored > 0 {
		s.AvgScore = lead.NewScore(sum / float64(scored))
	}
	return s
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
