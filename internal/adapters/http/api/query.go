package api

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/labx/internal/domain/filter"
	"github.com/okian/labx/internal/domain/lead"
)

// reportQuery is the raw query string of GET /report.
type reportQuery struct {
	Start      string   `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End        string   `json:"end" validate:"omitempty,datetime=2006-01-02"`
	MinScore   string   `json:"min_score" validate:"omitempty,score"`
	MaxScore   string   `json:"max_score" validate:"omitempty,score"`
	Categories []string `json:"category" validate:"omitempty,dive,max=256"`
	// present but empty category= selects nothing
	categoriesSet bool
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("score", isScore)
	return v
}

// isScore accepts what strconv.ParseFloat accepts (".5", "1e0"), minus NaN.
func isScore(fl validator.FieldLevel) bool {
	f, err := strconv.ParseFloat(fl.Field().String(), 64)
	return err == nil && !math.IsNaN(f)
}

func readReportQuery(values url.Values) reportQuery {
	q := reportQuery{
		Start:    strings.TrimSpace(values.Get("start")),
		End:      strings.TrimSpace(values.Get("end")),
		MinScore: strings.TrimSpace(values.Get("min_score")),
		MaxScore: strings.TrimSpace(values.Get("max_score")),
	}
	raw, ok := values["category"]
	q.categoriesSet = ok
	for _, v := range raw {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Categories = append(q.Categories, c)
			}
		}
	}
	return q
}

// parseReportQuery validates the query string and converts it to a filter
// query.
func parseReportQuery(v *validator.Validate, values url.Values) (filter.Query, error) {
	raw := readReportQuery(values)
	if err := v.Struct(raw); err != nil {
		return filter.Query{}, errors.New(describe(err))
	}

	var q filter.Query
	var err error
	if raw.Start != "" {
		if q.Start, err = lead.ParseDate(raw.Start); err != nil {
			return filter.Query{}, fmt.Errorf("start: %w", err)
		}
	}
	if raw.End != "" {
		if q.End, err = lead.ParseDate(raw.End); err != nil {
			return filter.Query{}, fmt.Errorf("end: %w", err)
		}
	}
	if q.MinScore, err = optionalFloat("min_score", raw.MinScore); err != nil {
		return filter.Query{}, err
	}
	if q.MaxScore, err = optionalFloat("max_score", raw.MaxScore); err != nil {
		return filter.Query{}, err
	}
	if raw.categoriesSet {
		q.CategoriesSet = true
		q.Categories = append([]string{}, raw.Categories...)
	}
	return q, nil
}

func optionalFloat(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &f, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date (YYYY-MM-DD)", fe.Field()))
		case "score":
			msgs = append(msgs, fmt.Sprintf("%s must be a number", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s is too long", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
