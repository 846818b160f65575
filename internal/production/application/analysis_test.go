package application

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	production "pvinsight/internal/production/domain"
	"pvinsight/internal/timeseries"
)

func newContext(t *testing.T, index []time.Time, threshold float64, cols map[string][]float64) *production.AnalysisContext {
	t.Helper()
	frame := timeseries.NewFrame(index)
	for _, name := range []string{production.ColumnGridEnergy, production.ColumnInverterOutput, production.ColumnClippingLoss, "EArray"} {
		if values, ok := cols[name]; ok {
			require.NoError(t, frame.SetColumn(name, values))
		}
	}
	return &production.AnalysisContext{
		SourceName: "hourly.csv",
		Data:       frame,
		Options:    production.Options{ThresholdKW: threshold},
	}
}

func hours(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}

var june = time.Date(1990, 6, 1, 10, 0, 0, 0, time.UTC)

func TestAnalyzeThreshold_Scenario(t *testing.T) {
	actx := newContext(t, hours(june, 4), 500, map[string][]float64{
		production.ColumnGridEnergy: {0, 100, 600, 600},
	})

	AnalyzeThreshold(actx)

	res := actx.Results.Threshold
	require.NotNil(t, res)
	assert.Equal(t, 3, res.Summary.HoursProduction)
	assert.Equal(t, 2, res.Summary.HoursAbove)
	assert.InDelta(t, 66.7, res.Summary.PctAboveProdTime, 0.05)
	assert.InDelta(t, 1200.0, res.Summary.EnergyAboveKWh, 1e-9)

	require.Len(t, res.Monthly, 12)
	jun := res.Monthly[time.June-1]
	assert.Equal(t, time.June, jun.Month)
	assert.Equal(t, 2, jun.HoursAbove)
	assert.Equal(t, 3, jun.HoursProduction)
	assert.InDelta(t, 66.67, jun.PctAbove, 0.01)

	jan := res.Monthly[0]
	assert.Equal(t, 0, jan.HoursProduction)
	assert.Equal(t, 0.0, jan.PctAbove, "months without production report 0%")

	require.Len(t, res.Seasonal, 4)
	assert.Equal(t, production.SeasonSummer, res.Seasonal[2].Season)
	assert.Equal(t, 2, res.Seasonal[2].HoursAbove)
	assert.Equal(t, 0, res.Seasonal[0].HoursAbove)
}

func TestAnalyzeThreshold_NoProduction(t *testing.T) {
	actx := newContext(t, hours(june, 3), 500, map[string][]float64{
		production.ColumnGridEnergy: {0, math.NaN(), -1},
	})

	AnalyzeThreshold(actx)

	res := actx.Results.Threshold
	assert.Equal(t, 0, res.Summary.HoursProduction)
	assert.Equal(t, 0.0, res.Summary.PctAboveProdTime)
	for _, m := range res.Monthly {
		assert.False(t, math.IsNaN(m.PctAbove))
	}
}

func TestSeasonOf(t *testing.T) {
	assert.Equal(t, production.SeasonWinter, production.SeasonOf(time.December))
	assert.Equal(t, production.SeasonWinter, production.SeasonOf(time.February))
	assert.Equal(t, production.SeasonSpring, production.SeasonOf(time.March))
	assert.Equal(t, production.SeasonSummer, production.SeasonOf(time.August))
	assert.Equal(t, production.SeasonAutumn, production.SeasonOf(time.November))
}

func TestAnalyzePowerDistribution_Bins(t *testing.T) {
	actx := newContext(t, hours(june, 6), 500, map[string][]float64{
		production.ColumnGridEnergy: {0, 50, 60, 80, 90, 100},
	})

	AnalyzePowerDistribution(actx)

	res := actx.Results.PowerDistribution
	require.NotNil(t, res)
	require.True(t, res.Available)
	assert.Equal(t, 100.0, res.PMax)
	require.Len(t, res.Classes, 4)

	got := make(map[string]int)
	total := 0.0
	for _, c := range res.Classes {
		got[c.Key] = c.Hours
		total += c.PctTime
	}
	assert.Equal(t, map[string]int{"lt50": 1, "50_70": 1, "70_90": 2, "gt90": 1}, got)
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.InDelta(t, 170.0, res.Classes[2].EnergyKWh, 1e-9)
	assert.InDelta(t, 40.0, res.Classes[2].PctTime, 1e-9)
}

func TestAnalyzePowerDistribution_NoProductionIsUnavailable(t *testing.T) {
	actx := newContext(t, hours(june, 2), 500, map[string][]float64{
		production.ColumnGridEnergy: {0, 0},
	})

	AnalyzePowerDistribution(actx)

	require.NotNil(t, actx.Results.PowerDistribution)
	assert.False(t, actx.Results.PowerDistribution.Available)
	assert.Empty(t, actx.Results.PowerDistribution.Classes)
}

func TestAnalyzeInverterClipping_AllZero(t *testing.T) {
	actx := newContext(t, hours(june, 2), 500, map[string][]float64{
		production.ColumnGridEnergy:     {0, 0},
		production.ColumnInverterOutput: {0, 0},
		production.ColumnClippingLoss:   {0, 0},
	})

	AnalyzeInverterClipping(actx)

	res := actx.Results.InverterClipping
	require.NotNil(t, res)
	assert.True(t, res.Available)
	assert.True(t, res.Empty)
}

func TestAnalyzeInverterClipping_Totals(t *testing.T) {
	index := []time.Time{june, june.Add(time.Hour), june.AddDate(0, 1, 0), june.AddDate(0, 1, 0).Add(time.Hour)}
	actx := newContext(t, index, 500, map[string][]float64{
		production.ColumnGridEnergy:     {90, 100, 40, 0},
		production.ColumnInverterOutput: {90, 100, 40, 0},
		production.ColumnClippingLoss:   {10, 0, 0, 0},
	})

	AnalyzeInverterClipping(actx)

	res := actx.Results.InverterClipping
	require.True(t, res.Available)
	require.False(t, res.Empty)
	assert.InDelta(t, 10.0, res.Summary.EnergyClippedKWh, 1e-9)
	assert.InDelta(t, 240.0, res.Summary.EnergyPotentialKWh, 1e-9)
	assert.InDelta(t, 100*10.0/240, res.Summary.PctOfInverterOutput, 1e-9)
	assert.Equal(t, 1, res.Summary.HoursClipping)

	require.Len(t, res.Monthly, 12)
	assert.InDelta(t, 5.0, res.Monthly[time.June-1].PctClipping, 1e-9)
	assert.Equal(t, 0.0, res.Monthly[time.July-1].PctClipping)
	assert.Equal(t, 0.0, res.Monthly[time.January-1].PctClipping, "zero potential reports 0%")
}

func TestAnalyzeInverterClipping_MissingColumnsSuggest(t *testing.T) {
	frame := timeseries.NewFrame(hours(june, 1))
	for _, name := range []string{"E_Grid", "EOutInv_1", "IL_Pmin", "GlobInc"} {
		require.NoError(t, frame.SetColumn(name, []float64{1}))
	}
	actx := &production.AnalysisContext{Data: frame, Options: production.Options{ThresholdKW: 1}}

	AnalyzeInverterClipping(actx)

	res := actx.Results.InverterClipping
	require.NotNil(t, res)
	assert.False(t, res.Available)
	assert.Equal(t, []string{"EOutInv", "IL_Pmax"}, res.MissingColumns)
	assert.Equal(t, []string{"EOutInv_1"}, res.Suggestions["EOutInv"])
	assert.Equal(t, []string{"IL_Pmin"}, res.Suggestions["IL_Pmax"])
}

func TestSuggestColumns(t *testing.T) {
	got := SuggestColumns([]string{"e_grid", "EGrid", "E_Gridd", "Banana", "E_GRID_2"}, []string{"E_Grid", "Zzz"})

	require.Len(t, got["E_Grid"], 3)
	assert.Equal(t, "e_grid", got["E_Grid"][0], "case-insensitive exact match ranks first")
	assert.NotContains(t, got["E_Grid"], "Banana")
	assert.Empty(t, got["Zzz"])
}

func TestRunAll_FillsEverySlot(t *testing.T) {
	actx := newContext(t, hours(june, 4), 500, map[string][]float64{
		production.ColumnGridEnergy: {0, 100, 600, 600},
	})

	require.NoError(t, RunAll(context.Background(), actx, Registry()))

	assert.NotNil(t, actx.Results.Threshold)
	assert.NotNil(t, actx.Results.PowerDistribution)
	require.NotNil(t, actx.Results.InverterClipping)
	assert.False(t, actx.Results.InverterClipping.Available)
}

func TestRunAll_OrderIndependent(t *testing.T) {
	grid := map[string][]float64{
		production.ColumnGridEnergy:     {0, 100, 600, 600},
		production.ColumnInverterOutput: {0, 100, 600, 600},
		production.ColumnClippingLoss:   {0, 0, 50, 0},
	}
	forward := newContext(t, hours(june, 4), 500, grid)
	backward := newContext(t, hours(june, 4), 500, grid)

	reg := Registry()
	reversed := []Analysis{reg[2], reg[1], reg[0]}
	require.NoError(t, RunAll(context.Background(), forward, reg))
	require.NoError(t, RunAll(context.Background(), backward, reversed))

	assert.Equal(t, forward.Results, backward.Results)
}

func TestRunAll_RejectsNilContext(t *testing.T) {
	assert.ErrorIs(t, RunAll(context.Background(), nil, Registry()), production.ErrNilContext)
}
