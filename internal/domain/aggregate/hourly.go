// Package aggregate reduces a filtered lead set into the bucketed tables
// behind the dashboard charts and the exported report. Every reducer is pure
// and returns a well formed result for empty input.
package aggregate

import "github.com/okian/labx/internal/domain/lead"

// HoursPerDay is the number of hour-of-day buckets.
const HoursPerDay = 24

// DefaultWindow is the width of the centered moving average.
const DefaultWindow = 3

// HourlyBucket is one hour-of-day bucket with its smoothed count.
type HourlyBucket struct {
	Hour     int     `json:"hour"`
	Count    int     `json:"count"`
	Smoothed float64 `json:"smoothed"`
}

// HourlyOption configures Hourly.
type HourlyOption func(*hourlyConfig)

type hourlyConfig struct {
	window int
	cyclic bool
}

// WithWindow sets the moving average width. Values below 1 are ignored.
func WithWindow(n int) HourlyOption {
	return func(c *hourlyConfig) {
		if n >= 1 {
			c.window = n
		}
	}
}

// WithCyclic makes hour 23 and hour 0 neighbors when smoothing.
func WithCyclic(cyclic bool) HourlyOption {
	return func(c *hourlyConfig) {
		c.cyclic = cyclic
	}
}

// Hourly counts records by hour of day (dates ignored) into 24 buckets and
// smooths them with a centered moving average. On the default linear axis a
// boundary bucket averages only the neighbors that exist.
func Hourly(records []lead.Record, opts ...HourlyOption) []HourlyBucket {
	cfg := hourlyConfig{window: DefaultWindow}
	for _, opt := range opts {
		opt(&cfg)
	}

	var counts [HoursPerDay]int
	for _, r := range records {
		counts[r.Timestamp.Hour()]++
	}

	out := make([]HourlyBucket, HoursPerDay)
	for h := range out {
		out[h] = HourlyBucket{
			Hour:     h,
			Count:    counts[h],
			Smoothed: smooth(counts[:], h, cfg),
		}
	}
	return out
}

// smooth averages the window [i-w/2, i-w/2+w-1] around i.
func smooth(counts []int, i int, cfg hourlyConfig) float64 {
	n := len(counts)
	lo := i - cfg.window/2
	hi := lo + cfg.window - 1
	var sum, used int
	for j := lo; j <= hi; j++ {
		k := j
		if cfg.cyclic {
			k = ((j % n) + n) % n
		} else if j < 0 || j >= n {
			continue
		}
		sum += counts[k]
		used++
	}
	if used == 0 {
		return 0
	}
	return float64(sum) / float64(used)
}
