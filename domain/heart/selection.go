package heart

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"heartdash/internal/errors"
)

// Selection is the state of every dashboard selector at one moment
type Selection struct {
	Year      *int     `json:"year,omitempty"`
	Region    string   `json:"region"`
	Income    string   `json:"income"`
	Gender    string   `json:"gender"`
	Metric    string   `json:"metric"`
	TopN      int      `json:"top_n"`
	Countries []string `json:"countries,omitempty"`
}

// DefaultSelection is what a fresh session starts with
func DefaultSelection() Selection {
	year := DefaultYear
	return Selection{
		Year:   &year,
		Region: AllValue,
		Income: AllValue,
		Gender: AllValue,
		Metric: MetricDeathRate,
		TopN:   DefaultTopN,
	}
}

// YearValue returns the selected year, or 0 when none is selected
func (s Selection) YearValue() int {
	if s.Year == nil {
		return 0
	}
	return *s.Year
}

// Column resolves the selected metric for the selected gender
func (s Selection) Column() (string, bool) {
	return MetricColumn(s.Gender, s.Metric)
}

// Validate rejects out-of-range slider values and unknown metrics
func (s Selection) Validate() error {
	if s.Year != nil && (*s.Year < MinYear || *s.Year > MaxYear) {
		return errors.InvalidInput(fmt.Sprintf("year %d outside %d-%d", *s.Year, MinYear, MaxYear))
	}
	if s.TopN != 0 && (s.TopN < MinTopN || s.TopN > MaxTopN) {
		return errors.InvalidInput(fmt.Sprintf("top_n %d outside %d-%d", s.TopN, MinTopN, MaxTopN))
	}
	if s.TopN%TopNStep != 0 {
		return errors.InvalidInput(fmt.Sprintf("top_n %d is not a multiple of %d", s.TopN, TopNStep))
	}
	if s.Metric != "" {
		if _, ok := s.Column(); !ok {
			return errors.UnknownMetric(s.Metric)
		}
	}
	return nil
}

// Key is a stable string form used for cache keys and logs
func (s Selection) Key() string {
	countries := append([]string(nil), s.Countries...)
	sort.Strings(countries)
	return fmt.Sprintf("y=%d|r=%s|i=%s|g=%s|m=%s|n=%d|c=%s",
		s.YearValue(), Slug(s.Region), IncomeSlug(s.Income), ParseGender(s.Gender),
		s.Metric, s.TopN, strings.Join(countries, ","))
}

// ParseSelection reads a selection from query parameters, starting from the
// defaults for anything absent. An explicitly empty year clears it.
func ParseSelection(q url.Values) (Selection, error) {
	sel := DefaultSelection()

	if q.Has("year") {
		raw := strings.TrimSpace(q.Get("year"))
		if raw == "" {
			sel.Year = nil
		} else {
			year, err := strconv.Atoi(raw)
			if err != nil {
				return sel, errors.InvalidInput(fmt.Sprintf("year %q is not a number", raw))
			}
			sel.Year = &year
		}
	}
	if v := q.Get("region"); v != "" {
		sel.Region = v
	}
	if v := q.Get("income"); v != "" {
		sel.Income = v
	}
	if q.Has("gender") {
		sel.Gender = q.Get("gender")
	}
	if q.Has("metric") {
		sel.Metric = q.Get("metric")
	}
	if raw := q.Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return sel, errors.InvalidInput(fmt.Sprintf("top_n %q is not a number", raw))
		}
		sel.TopN = n
	}
	for _, c := range q["country"] {
		if c = strings.TrimSpace(c); c != "" {
			sel.Countries = append(sel.Countries, c)
		}
	}

	return sel, sel.Validate()
}

// Values is the inverse of ParseSelection
func (s Selection) Values() url.Values {
	q := url.Values{}
	if s.Year != nil {
		q.Set("year", strconv.Itoa(*s.Year))
	} else {
		q.Set("year", "")
	}
	q.Set("region", s.Region)
	q.Set("income", s.Income)
	q.Set("gender", s.Gender)
	q.Set("metric", s.Metric)
	if s.TopN != 0 {
		q.Set("top_n", strconv.Itoa(s.TopN))
	}
	for _, c := range s.Countries {
		q.Add("country", c)
	}
	return q
}
