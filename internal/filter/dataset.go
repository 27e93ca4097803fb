package filter

import (
	"math"
	"sort"
	"sync/atomic"
	"time"

	"heartdash/domain/heart"
	"heartdash/internal/frame"
)

var datasetVersion atomic.Uint64

// Dataset is an immutable snapshot of the loaded data
type Dataset struct {
	Frame    *frame.Frame
	Source   string
	LoadedAt time.Time
	Version  uint64
}

// NewDataset wraps a loaded frame in a snapshot with a fresh version
func NewDataset(f *frame.Frame, source string) *Dataset {
	return &Dataset{
		Frame:    f,
		Source:   source,
		LoadedAt: time.Now(),
		Version:  datasetVersion.Add(1),
	}
}

// Countries lists the entities that carry a country code, sorted by name
func (d *Dataset) Countries() []string {
	withCode := d.Frame.Filter(func(r frame.Row) bool { return r.Has(heart.ColCode) })
	names := withCode.Unique(heart.ColEntity)
	sort.Strings(names)
	return names
}

// Years returns the first and last year present
func (d *Dataset) Years() (int, int) {
	first, last := 0, 0
	for _, y := range d.Frame.Numbers(heart.ColYear) {
		if math.IsNaN(y) {
			continue
		}
		if first == 0 || int(y) < first {
			first = int(y)
		}
		if int(y) > last {
			last = int(y)
		}
	}
	return first, last
}
