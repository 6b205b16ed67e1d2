// Package filter selects the leads matching a date, score and category request.
package filter

import (
	"math"

	"github.com/okian/labx/internal/domain/lead"
)

// Default score domain of the leads sheet.
const (
	DefaultMinScore = 0.0
	DefaultMaxScore = 5.0
)

// Domain is the closed interval score bounds are clamped to.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultDomain returns the [0, 5] score domain.
func DefaultDomain() Domain {
	return Domain{Min: DefaultMinScore, Max: DefaultMaxScore}
}

func (d Domain) clamp(v float64) float64 {
	return math.Max(d.Min, math.Min(d.Max, v))
}

// DateRange is an inclusive pair of calendar days. A zero End means a
// single-day range.
type DateRange struct {
	Start lead.Date `json:"start"`
	End   lead.Date `json:"end"`
}

// ScoreRange is an inclusive pair of score bounds.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Params is one filter request.
type Params struct {
	DateRange  DateRange  `json:"date_range"`
	ScoreRange ScoreRange `json:"score_range"`
	Categories []string   `json:"categories"`
}

// Normalize validates p against the domain, fills a single-day range and
// clamps score bounds. Nonsensical requests fail with ErrInvalidParams.
func (p Params) Normalize(d Domain) (Params, error) {
	if math.IsNaN(d.Min) || math.IsNaN(d.Max) || d.Min > d.Max {
		return Params{}, &ParamError{Field: "domain", Reason: "min must not exceed max"}
	}
	out := Params{
		DateRange:  p.DateRange,
		ScoreRange: p.ScoreRange,
		Categories: append([]string(nil), p.Categories...),
	}
	if out.DateRange.Start.IsZero() {
		return Params{}, &ParamError{Field: "date_range.start", Reason: "required"}
	}
	if out.DateRange.End.IsZero() {
		out.DateRange.End = out.DateRange.Start
	}
	if out.DateRange.Start.After(out.DateRange.End) {
		return Params{}, &ParamError{Field: "date_range", Reason: "start is after end"}
	}
	if math.IsNaN(out.ScoreRange.Min) || math.IsNaN(out.ScoreRange.Max) {
		return Params{}, &ParamError{Field: "score_range", Reason: "bounds must be numbers"}
	}
	if out.ScoreRange.Min > out.ScoreRange.Max {
		return Params{}, &ParamError{Field: "score_range", Reason: "min is greater than max"}
	}
	out.ScoreRange.Min = d.clamp(out.ScoreRange.Min)
	out.ScoreRange.Max = d.clamp(out.ScoreRange.Max)
	return out, nil
}

// Apply returns the records matching every predicate of p, in input order.
// A record with a missing score never satisfies the score bounds, and an
// empty category set matches nothing. Apply does not validate p; call
// Normalize first.
func Apply(records []lead.Record, p Params) []lead.Record {
	out := make([]lead.Record, 0)
	if len(p.Categories) == 0 {
		return out
	}
	allowed := make(map[string]struct{}, len(p.Categories))
	for _, c := range p.Categories {
		allowed[c] = struct{}{}
	}
	end := p.DateRange.End
	if end.IsZero() {
		end = p.DateRange.Start
	}
	for _, r := range records {
		if !inDates(r, p.DateRange.Start, end) || !inScores(r, p.ScoreRange) {
			continue
		}
		if _, ok := allowed[r.Category]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

func inDates(r lead.Record, start, end lead.Date) bool {
	d := r.Date()
	return !d.Before(start) && !d.After(end)
}

func inScores(r lead.Record, s ScoreRange) bool {
	return r.Score.Valid && r.Score.Value >= s.Min && r.Score.Value <= s.Max
}
