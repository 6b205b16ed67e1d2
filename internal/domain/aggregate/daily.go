package aggregate

import "github.com/okian/labx/internal/domain/lead"

// DailyCount is the number of scored leads on one calendar day.
type DailyCount struct {
	Date  lead.Date `json:"date"`
	Count int       `json:"count"`
}

// Daily resamples records by calendar day over the span of the input,
// counting only records that carry a score. Days without scored records
// are emitted with a zero count.
func Daily(records []lead.Record) []DailyCount {
	first, last, ok := lead.Span(records)
	if !ok {
		return []DailyCount{}
	}

	counts := make(map[lead.Date]int)
	for _, r := range records {
		if r.Score.Valid {
			counts[r.Date()]++
		}
	}

	out := make([]DailyCount, 0)
	for d := first; !d.After(last); d = d.AddDays(1) {
		out = append(out, DailyCount{Date: d, Count: counts[d]})
	}
	return out
}
