package aggregate

import (
	"sort"

	"github.com/okian/labx/internal/domain/lead"
)

// ScoreCount is the number of leads with exactly Score.
type ScoreCount struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// CategoryCount is the number of leads in Category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ScoreDistribution groups scored records by exact score value, ascending.
// Missing scores are not counted.
func ScoreDistribution(records []lead.Record) []ScoreCount {
	counts := make(map[float64]int)
	for _, r := range records {
		if r.Score.Valid {
			counts[r.Score.Value]++
		}
	}
	out := make([]ScoreCount, 0, len(counts))
	for score, n := range counts {
		out = append(out, ScoreCount{Score: score, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}

// CategoryDistribution groups records by category, most frequent first.
// Ties keep the order in which categories first appear.
func CategoryDistribution(records []lead.Record) []CategoryCount {
	index := make(map[string]int)
	out := make([]CategoryCount, 0)
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryCount{Category: r.Category})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
