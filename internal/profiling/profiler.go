// Package profiling summarises the loaded dataset for the Introduction tab
// and the CLI.
package profiling

import (
	"math"
	"sort"

	"heartdash/domain/heart"
	"heartdash/internal/frame"
)

// ColumnProfile describes one column
type ColumnProfile struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Count   int      `json:"count"`
	Missing int      `json:"missing"`
	Markers *Markers `json:"markers,omitempty"`
}

// Completeness is the share of present values
func (p ColumnProfile) Completeness() float64 {
	total := p.Count + p.Missing
	if total == 0 {
		return 0
	}
	return float64(p.Count) / float64(total)
}

// Overview is the dataset-level profile
type Overview struct {
	Rows     int             `json:"rows"`
	Columns  int             `json:"columns"`
	Entities int             `json:"entities"`
	Regions  []string        `json:"regions"`
	YearMin  int             `json:"year_min"`
	YearMax  int             `json:"year_max"`
	Profiles []ColumnProfile `json:"profiles"`
	Metrics  []MetricProfile `json:"metrics"`
}

// MetricProfile describes one selectable metric, both genders combined,
// over every row and year
type MetricProfile struct {
	Metric  string   `json:"metric"`
	Column  string   `json:"column"`
	Markers *Markers `json:"markers,omitempty"`
}

// DataProfiler profiles frames
type DataProfiler struct{}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{}
}

// ProfileColumn counts missing values and, for numeric columns, computes
// the distribution markers of the present ones
func (dp *DataProfiler) ProfileColumn(f *frame.Frame, name string) ColumnProfile {
	kind, _ := f.Kind(name)
	p := ColumnProfile{Name: name, Kind: kind.String()}
	if kind != frame.Numeric {
		for _, s := range f.Texts(name) {
			if s == "" {
				p.Missing++
			} else {
				p.Count++
			}
		}
		return p
	}

	present := make([]float64, 0, f.Len())
	for _, v := range f.Numbers(name) {
		if math.IsNaN(v) {
			p.Missing++
			continue
		}
		present = append(present, v)
	}
	p.Count = len(present)
	if len(present) > 0 {
		if m, err := Describe(present); err == nil {
			p.Markers = &m
		}
	}
	return p
}

// ProfileFrame profiles every column and the dataset's coverage
func (dp *DataProfiler) ProfileFrame(f *frame.Frame) Overview {
	o := Overview{Rows: f.Len(), Columns: len(f.Columns())}
	o.Entities = len(f.Unique(heart.ColEntity))
	o.Regions = f.Unique(heart.ColRegion)
	sort.Strings(o.Regions)

	first := true
	for _, y := range f.Numbers(heart.ColYear) {
		if math.IsNaN(y) {
			continue
		}
		if first || int(y) < o.YearMin {
			o.YearMin = int(y)
		}
		if first || int(y) > o.YearMax {
			o.YearMax = int(y)
		}
		first = false
	}

	byName := make(map[string]*Markers)
	for _, name := range f.Columns() {
		p := dp.ProfileColumn(f, name)
		o.Profiles = append(o.Profiles, p)
		byName[name] = p.Markers
	}

	for _, metric := range heart.Metrics {
		col, _ := heart.MetricColumn(heart.AllValue, metric)
		if !f.HasColumn(col) {
			continue
		}
		o.Metrics = append(o.Metrics, MetricProfile{Metric: metric, Column: col, Markers: byName[col]})
	}
	return o
}
