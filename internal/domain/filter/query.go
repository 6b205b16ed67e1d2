package filter

import "github.com/okian/labx/internal/domain/lead"

// Query is a partially specified request. Unset fields take the dashboard
// defaults when resolved against a dataset.
type Query struct {
	Start    lead.Date
	End      lead.Date
	MinScore *float64
	MaxScore *float64
	// Categories is only consulted when CategoriesSet is true, so an explicit
	// empty selection stays distinguishable from "no selection".
	Categories    []string
	CategoriesSet bool
}

// Resolve fills unset fields: the date range spans the data (capped at
// today), scores span the domain and every category is selected. Only
// explicit dates can produce an inverted range.
func (q Query) Resolve(records []lead.Record, d Domain, today lead.Date) Params {
	first, last, ok := lead.Span(records)

	start := q.Start
	if start.IsZero() {
		start = today
		if ok {
			start = first
		}
	}
	end := q.End
	if end.IsZero() {
		end = today
		if ok && last.Before(today) {
			end = last
		}
		if end.Before(start) {
			end = start
		}
	}
	// A defaulted start never overtakes an explicit end.
	if q.Start.IsZero() && start.After(end) {
		start = end
	}

	p := Params{
		DateRange:  DateRange{Start: start, End: end},
		ScoreRange: ScoreRange{Min: d.Min, Max: d.Max},
	}
	if q.MinScore != nil {
		p.ScoreRange.Min = *q.MinScore
	}
	if q.MaxScore != nil {
		p.ScoreRange.Max = *q.MaxScore
	}
	if q.CategoriesSet {
		p.Categories = append([]string{}, q.Categories...)
	} else {
		p.Categories = lead.Categories(records)
	}
	return p
}
