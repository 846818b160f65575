package timeseries

import (
	"math"
	"sort"
	"time"
)

// Reducer collapses the values of one bucket into a single value.
type Reducer func(values []float64) float64

// Sum adds the finite values. A bucket without finite values yields NaN.
func Sum(values []float64) float64 {
	total, n := 0.0, 0
	for _, v := range values {
		if IsFinite(v) {
			total += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return total
}

// Mean averages the finite values. A bucket without finite values yields NaN.
func Mean(values []float64) float64 {
	total, n := 0.0, 0
	for _, v := range values {
		if IsFinite(v) {
			total += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}

// Min returns the smallest finite value, NaN when there is none.
func Min(values []float64) float64 {
	out := math.NaN()
	for _, v := range values {
		if IsFinite(v) && (math.IsNaN(out) || v < out) {
			out = v
		}
	}
	return out
}

// Max returns the largest finite value, NaN when there is none.
func Max(values []float64) float64 {
	out := math.NaN()
	for _, v := range values {
		if IsFinite(v) && (math.IsNaN(out) || v > out) {
			out = v
		}
	}
	return out
}

// TruncateHour maps a timestamp to the start of its hour.
func TruncateHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// Resample groups consecutive rows sharing the same bucket key and reduces each
// column with the reducer chosen for it. The frame must be sorted.
// Buckets without rows are not created.
func (f *Frame) Resample(bucket func(time.Time) time.Time, reducerFor func(column string) Reducer) *Frame {
	var keys []time.Time
	var bounds [][2]int
	for i, t := range f.index {
		key := bucket(t)
		if len(keys) > 0 && keys[len(keys)-1].Equal(key) {
			bounds[len(bounds)-1][1] = i + 1
			continue
		}
		keys = append(keys, key)
		bounds = append(bounds, [2]int{i, i + 1})
	}

	out := &Frame{index: keys, columns: make(map[string][]float64, len(f.columns))}
	for _, name := range f.order {
		reduce := reducerFor(name)
		src := f.columns[name]
		dst := make([]float64, len(bounds))
		for i, b := range bounds {
			dst[i] = reduce(src[b[0]:b[1]])
		}
		out.order = append(out.order, name)
		out.columns[name] = dst
	}
	return out
}

// ModalStepMinutes returns the most frequent positive delta between consecutive
// timestamps, in minutes. Ties resolve to the smaller step. The second return
// value is false when fewer than two timestamps are available.
func ModalStepMinutes(index []time.Time) (int, bool) {
	counts := make(map[int]int)
	for i := 1; i < len(index); i++ {
		delta := int(math.Round(index[i].Sub(index[i-1]).Minutes()))
		if delta > 0 {
			counts[delta]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}
	steps := make([]int, 0, len(counts))
	for step := range counts {
		steps = append(steps, step)
	}
	sort.Ints(steps)
	best := steps[0]
	for _, step := range steps[1:] {
		if counts[step] > counts[best] {
			best = step
		}
	}
	return best, true
}
