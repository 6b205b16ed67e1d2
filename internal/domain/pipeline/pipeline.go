// Package pipeline runs a filter request end to end: validate parameters,
// select the matching leads, then compute the KPIs and every aggregation
// view over the same filtered set.
package pipeline

import (
	"github.com/okian/labx/internal/domain/aggregate"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/kpi"
	"github.com/okian/labx/internal/domain/lead"
	"golang.org/x/sync/errgroup"
)

// DefaultRecentLimit caps the recent-leads table.
const DefaultRecentLimit = 10

// Result is the output bundle of one run.
type Result struct {
	Params       filter.Params             `json:"params"`
	KPIs         kpi.Set                   `json:"kpis"`
	Hourly       []aggregate.HourlyBucket  `json:"hourly"`
	Daily        []aggregate.DailyCount    `json:"daily"`
	ScoreHist    []aggregate.ScoreCount    `json:"score_hist"`
	CategoryHist []aggregate.CategoryCount `json:"category_hist"`
	Recent       []lead.Record             `json:"recent"`
	// Filtered is the matching set itself, kept for exporters.
	Filtered []lead.Record `json:"-"`
}

// Pipeline holds the tunables of a run. It carries no per-run state and is
// safe for concurrent use.
type Pipeline struct {
	domain      filter.Domain
	threshold   float64
	window      int
	cyclic      bool
	recentLimit int
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithDomain sets the score domain filter bounds are clamped to.
func WithDomain(d filter.Domain) Option {
	return func(p *Pipeline) {
		p.domain = d
	}
}

// WithHighQualityThreshold sets the high quality KPI cut-off.
func WithHighQualityThreshold(v float64) Option {
	return func(p *Pipeline) {
		p.threshold = v
	}
}

// WithSmoothingWindow sets the hourly moving average width.
func WithSmoothingWindow(n int) Option {
	return func(p *Pipeline) {
		if n >= 1 {
			p.window = n
		}
	}
}

// WithCyclicSmoothing wraps the hourly axis when smoothing.
func WithCyclicSmoothing(cyclic bool) Option {
	return func(p *Pipeline) {
		p.cyclic = cyclic
	}
}

// WithRecentLimit sets how many recent leads the result carries.
func WithRecentLimit(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.recentLimit = n
		}
	}
}

// New creates a Pipeline with the dashboard defaults.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		domain:      filter.DefaultDomain(),
		threshold:   kpi.DefaultHighQualityThreshold,
		window:      aggregate.DefaultWindow,
		recentLimit: DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Domain returns the score domain used to clamp requests.
func (p *Pipeline) Domain() filter.Domain { return p.domain }

// Run executes a request with the default Pipeline.
func Run(records []lead.Record, params filter.Params) (Result, error) {
	return New().Run(records, params)
}

// Run validates params and computes the result over records. Invalid
// params fail with filter.ErrInvalidParams before any filtering happens.
// records is only read.
func (p *Pipeline) Run(records []lead.Record, params filter.Params) (Result, error) {
	normalized, err := params.Normalize(p.domain)
	if err != nil {
		return Result{}, err
	}
	filtered := filter.Apply(records, normalized)

	res := Result{Params: normalized, Filtered: filtered}
	// Each reducer owns exactly one field of res and only reads filtered.
	var g errgroup.Group
	g.Go(func() error {
		res.KPIs = kpi.Compute(filtered, kpi.WithHighQualityThreshold(p.threshold))
		return nil
	})
	g.Go(func() error {
		res.Hourly = aggregate.Hourly(filtered, aggregate.WithWindow(p.window), aggregate.WithCyclic(p.cyclic))
		return nil
	})
	g.Go(func() error {
		res.Daily = aggregate.Daily(filtered)
		return nil
	})
	g.Go(func() error {
		res.ScoreHist = aggregate.ScoreDistribution(filtered)
		return nil
	})
	g.Go(func() error {
		res.CategoryHist = aggregate.CategoryDistribution(filtered)
		return nil
	})
	g.Go(func() error {
		res.Recent = aggregate.Recent(filtered, p.recentLimit)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return res, nil
}
