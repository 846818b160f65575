package timeseries

import (
	"errors"
	"math"
	"sort"
	"time"
)

var (
	// ErrLengthMismatch is returned when a column does not match the index length.
	ErrLengthMismatch = errors.New("timeseries: column length mismatch")
	// ErrEmptyColumnName is returned when a column has no name.
	ErrEmptyColumnName = errors.New("timeseries: empty column name")
)

// Frame is a time-indexed table of float64 columns.
// Missing values are stored as NaN. Column order is insertion order.
type Frame struct {
	index   []time.Time
	order   []string
	columns map[string][]float64
}

// NewFrame creates a frame over the given index. The slice is copied.
func NewFrame(index []time.Time) *Frame {
	idx := make([]time.Time, len(index))
	copy(idx, index)
	return &Frame{
		index:   idx,
		columns: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.index)
}

// Index returns the timestamp index. Callers must not modify it.
func (f *Frame) Index() []time.Time {
	if f == nil {
		return nil
	}
	return f.index
}

// Names returns column names in insertion order.
func (f *Frame) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Has reports whether the column exists.
func (f *Frame) Has(name string) bool {
	if f == nil {
		return false
	}
	_, ok := f.columns[name]
	return ok
}

// Column returns the values of a column. Callers must not modify them.
func (f *Frame) Column(name string) ([]float64, bool) {
	if f == nil {
		return nil, false
	}
	values, ok := f.columns[name]
	return values, ok
}

// SetColumn adds or replaces a column.
func (f *Frame) SetColumn(name string, values []float64) error {
	if name == "" {
		return ErrEmptyColumnName
	}
	if len(values) != len(f.index) {
		return ErrLengthMismatch
	}
	if _, ok := f.columns[name]; !ok {
		f.order = append(f.order, name)
	}
	f.columns[name] = values
	return nil
}

// Start returns the first timestamp.
func (f *Frame) Start() (time.Time, bool) {
	if f.Len() == 0 {
		return time.Time{}, false
	}
	return f.index[0], true
}

// End returns the last timestamp.
func (f *Frame) End() (time.Time, bool) {
	if f.Len() == 0 {
		return time.Time{}, false
	}
	return f.index[len(f.index)-1], true
}

// Select returns a new frame with the rows for which keep returns true.
func (f *Frame) Select(keep func(i int) bool) *Frame {
	var rows []int
	for i := range f.index {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return f.take(rows)
}

// Window returns the rows whose timestamp lies in [start, end].
func (f *Frame) Window(start, end time.Time) *Frame {
	return f.Select(func(i int) bool {
		t := f.index[i]
		return !t.Before(start) && !t.After(end)
	})
}

// Normalize sorts the index and drops duplicate timestamps, keeping the first
// occurrence in input order. It returns the number of dropped rows.
func (f *Frame) Normalize() (*Frame, int) {
	rows := make([]int, len(f.index))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return f.index[rows[a]].Before(f.index[rows[b]])
	})
	kept := rows[:0:0]
	for _, r := range rows {
		if len(kept) > 0 && f.index[kept[len(kept)-1]].Equal(f.index[r]) {
			continue
		}
		kept = append(kept, r)
	}
	return f.take(kept), len(rows) - len(kept)
}

// IsStrictlyIncreasing reports whether every timestamp is after the previous one.
func (f *Frame) IsStrictlyIncreasing() bool {
	for i := 1; i < f.Len(); i++ {
		if !f.index[i].After(f.index[i-1]) {
			return false
		}
	}
	return true
}

// CountNaN counts missing or non-finite values across all columns.
func (f *Frame) CountNaN() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, name := range f.order {
		for _, v := range f.columns[name] {
			if !IsFinite(v) {
				n++
			}
		}
	}
	return n
}

func (f *Frame) take(rows []int) *Frame {
	idx := make([]time.Time, len(rows))
	for i, r := range rows {
		idx[i] = f.index[r]
	}
	out := &Frame{index: idx, columns: make(map[string][]float64, len(f.columns))}
	for _, name := range f.order {
		src := f.columns[name]
		dst := make([]float64, len(rows))
		for i, r := range rows {
			dst[i] = src[r]
		}
		out.order = append(out.order, name)
		out.columns[name] = dst
	}
	return out
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
