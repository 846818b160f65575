package application

import (
	"math"
	"time"

	"github.com/samber/lo"

	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/timeseries"
)

// DefaultThresholdPct is the mean percentage difference above which a
// comparison raises an alert.
const DefaultThresholdPct = 5.0

// Compare restricts both datasets to their common period and computes per-variable
// differences of a relative to b. Rows are paired by timestamp.
// Disjoint or empty inputs produce NaN diffs and no alert.
func Compare(a, b *meteo.Dataset, thresholdPct float64) (meteo.ComparisonResult, error) {
	if a == nil || b == nil || a.Frame == nil || b.Frame == nil {
		return meteo.ComparisonResult{}, meteo.ErrNilDataset
	}
	if thresholdPct < 0 || math.IsNaN(thresholdPct) {
		return meteo.ComparisonResult{}, meteo.ErrNegativeThreshold
	}

	variables := lo.Filter(meteo.ComparedVariables, func(v string, _ int) bool {
		return a.Frame.Has(v) && b.Frame.Has(v)
	})
	result := meteo.ComparisonResult{
		Diffs:     make(map[string]meteo.VariableDiff, len(variables)),
		Variables: variables,
		Threshold: thresholdPct,
	}
	for _, v := range variables {
		result.Diffs[v] = meteo.NaNDiff()
	}

	startA, okA := a.Frame.Start()
	startB, okB := b.Frame.Start()
	if !okA || !okB {
		return result, nil
	}
	endA, _ := a.Frame.End()
	endB, _ := b.Frame.End()
	start := laterOf(startA, startB)
	end := earlierOf(endA, endB)
	result.CommonStart, result.CommonEnd = start, end
	if start.After(end) {
		return result, nil
	}
	result.Overlap = true

	wa := a.Frame.Window(start, end)
	wb := b.Frame.Window(start, end)
	rowsB := make(map[int64]int, wb.Len())
	for i, t := range wb.Index() {
		rowsB[t.UnixNano()] = i
	}
	var pairs [][2]int
	for i, t := range wa.Index() {
		if j, ok := rowsB[t.UnixNano()]; ok {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	result.Rows = len(pairs)

	for _, v := range variables {
		va, _ := wa.Column(v)
		vb, _ := wb.Column(v)
		diff := diffStats(va, vb, pairs)
		result.Diffs[v] = diff
		if diff.MeanPct > thresholdPct {
			result.AlertFlag = true
		}
	}
	return result, nil
}

func diffStats(a, b []float64, pairs [][2]int) meteo.VariableDiff {
	var abs, pct []float64
	for _, p := range pairs {
		x, y := a[p[0]], b[p[1]]
		if !timeseries.IsFinite(x) || !timeseries.IsFinite(y) {
			continue
		}
		d := math.Abs(x - y)
		abs = append(abs, d)
		if y != 0 {
			pct = append(pct, d/y*100)
		}
	}
	return meteo.VariableDiff{
		MeanAbs: timeseries.Mean(abs),
		MaxAbs:  timeseries.Max(abs),
		MeanPct: timeseries.Mean(pct),
		MaxPct:  timeseries.Max(pct),
	}
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
