package lead

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default column names of the leads sheet.
const (
	DefaultTimestampField = "Timestamp"
	DefaultScoreField     = "Score"
	DefaultCategoryField  = "Vehicle Type"
)

// Accepted ISO-8601 shapes. Fractional seconds are accepted after the
// seconds field even when the layout omits them.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		dateLayout,
	}
)

// Normalizer converts raw rows into typed Records.
type Normalizer struct {
	timestampField string
	scoreField     string
	categoryField  string
	loc            *time.Location
	skipMalformed  bool
}

// Batch is the outcome of a load: normalized records plus any rows dropped
// in skip-malformed mode.
type Batch struct {
	Records []Record
	Skipped []*RowError
}

// NewNormalizer creates a Normalizer using the sheet's default column names.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		timestampField: DefaultTimestampField,
		scoreField:     DefaultScoreField,
		categoryField:  DefaultCategoryField,
		loc:            time.UTC,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Load normalizes rows with the default Normalizer.
func Load(rows []map[string]any) ([]Record, error) {
	return NewNormalizer().Load(rows)
}

// Load normalizes rows and returns only the records.
func (n *Normalizer) Load(rows []map[string]any) ([]Record, error) {
	b, err := n.LoadBatch(rows)
	if err != nil {
		return nil, err
	}
	return b.Records, nil
}

// LoadBatch normalizes rows. An empty table fails with ErrEmptySource. A
// malformed row fails the whole load unless skip-malformed is enabled; even
// then a table with no usable rows fails with ErrMalformedSource.
func (n *Normalizer) LoadBatch(rows []map[string]any) (Batch, error) {
	if len(rows) == 0 {
		return Batch{}, ErrEmptySource
	}
	b := Batch{Records: make([]Record, 0, len(rows))}
	for i, row := range rows {
		rec, rowErr := n.normalize(i, row)
		if rowErr != nil {
			if !n.skipMalformed {
				return Batch{}, rowErr
			}
			b.Skipped = append(b.Skipped, rowErr)
			continue
		}
		b.Records = append(b.Records, rec)
	}
	if len(b.Records) == 0 {
		return Batch{Skipped: b.Skipped}, b.Skipped[0]
	}
	return b, nil
}

func (n *Normalizer) normalize(i int, row map[string]any) (Record, *RowError) {
	rawTS, ok := row[n.timestampField]
	if !ok {
		return Record{}, &RowError{Row: i, Field: n.timestampField, Reason: "missing field"}
	}
	ts, err := n.parseTimestamp(rawTS)
	if err != nil {
		return Record{}, &RowError{Row: i, Field: n.timestampField, Value: rawTS, Reason: err.Error()}
	}
	rawCat, ok := row[n.categoryField]
	if !ok {
		return Record{}, &RowError{Row: i, Field: n.categoryField, Reason: "missing field"}
	}

	rec := Record{
		Timestamp: ts,
		Score:     ParseScore(row[n.scoreField]),
		Category:  categoryString(rawCat),
	}
	for k, v := range row {
		if k == n.timestampField || k == n.scoreField || k == n.categoryField {
			continue
		}
		if rec.Fields == nil {
			rec.Fields = make(map[string]any, len(row))
		}
		rec.Fields[k] = v
	}
	return rec, nil
}

func (n *Normalizer) parseTimestamp(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, fmt.Errorf("zero timestamp")
		}
		return x, nil
	case string:
		return n.parseTimestampString(x)
	case nil:
		return time.Time{}, fmt.Errorf("empty timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func (n *Normalizer) parseTimestampString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO-8601 timestamp")
}

// ParseScore coerces a raw cell into a Score. Anything that is not a number
// or a numeric string becomes a missing score, never zero.
func ParseScore(v any) Score {
	switch x := v.(type) {
	case float64:
		return NewScore(x)
	case float32:
		return NewScore(float64(x))
	case int:
		return NewScore(float64(x))
	case int8:
		return NewScore(float64(x))
	case int16:
		return NewScore(float64(x))
	case int32:
		return NewScore(float64(x))
	case int64:
		return NewScore(float64(x))
	case uint:
		return NewScore(float64(x))
	case uint8:
		return NewScore(float64(x))
	case uint16:
		return NewScore(float64(x))
	case uint32:
		return NewScore(float64(x))
	case uint64:
		return NewScore(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return MissingScore()
		}
		return NewScore(f)
	case string:
		return parseScoreString(x)
	default:
		return MissingScore()
	}
}

func parseScoreString(s string) Score {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(strings.ToLower(strings.TrimLeft(s, "+-")), "0x") {
		return MissingScore()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return MissingScore()
	}
	return NewScore(f)
}

func categoryString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
