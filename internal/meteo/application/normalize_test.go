package application

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvinsight/internal/ingest/pvsyst"
	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/timeseries"
)

func parse(t *testing.T, data []byte) *pvsyst.Table {
	t.Helper()
	table, err := pvsyst.ParseTable(data, "site.csv", pvsyst.ParseOptions{})
	require.NoError(t, err)
	return table
}

func quarterHourly(t *testing.T) *pvsyst.Table {
	ghi := []float64{100, 200, 300, 400, 50, 50, 50, 50}
	temp := []float64{10, 12, 14, 16, 20, 20, 22, 22}
	data := pvsystCSV("date;GlobHor;DiffHor;BeamNor;T_Amb;WindVel", ";W/m2;W/m2;W/m2;deg.C;m/s", len(ghi), 15*time.Minute,
		func(i int) string {
			return fmt.Sprintf("%g;%g;%g;%g;%g", ghi[i], ghi[i]/2, ghi[i]/4, temp[i], 3.0)
		})
	return parse(t, data)
}

func TestNormalize_ResamplesSubHourlyWithClassReducers(t *testing.T) {
	opts := DefaultNormalizeOptions()
	opts.TargetIrradianceUnit = meteo.UnitWm2

	ds, err := Normalize(quarterHourly(t), opts)
	require.NoError(t, err)

	assert.Equal(t, 60, ds.TimeStepMinutes)
	require.Equal(t, 2, ds.Frame.Len())

	ghi, ok := ds.Frame.Column(meteo.GHI)
	require.True(t, ok)
	assert.InDelta(t, 1000.0, ghi[0], 1e-9, "irradiance is summed")
	assert.InDelta(t, 200.0, ghi[1], 1e-9)

	temp, ok := ds.Frame.Column(meteo.Temp)
	require.True(t, ok)
	assert.InDelta(t, 13.0, temp[0], 1e-9, "temperature is averaged")
	assert.InDelta(t, 21.0, temp[1], 1e-9)

	wind, _ := ds.Frame.Column(meteo.WindSpeed)
	assert.InDelta(t, 3.0, wind[0], 1e-9, "wind is averaged")
}

func TestNormalize_ReducerPolicyIsConfigurable(t *testing.T) {
	opts := DefaultNormalizeOptions()
	opts.TargetIrradianceUnit = meteo.UnitWm2
	opts.Reducers = ReducerPolicy{meteo.ClassIrradiance: timeseries.Mean}

	ds, err := Normalize(quarterHourly(t), opts)
	require.NoError(t, err)

	ghi, _ := ds.Frame.Column(meteo.GHI)
	assert.InDelta(t, 250.0, ghi[0], 1e-9)
	temp, _ := ds.Frame.Column(meteo.Temp)
	assert.InDelta(t, 13.0, temp[0], 1e-9, "unconfigured classes fall back to mean")
}

func TestNormalize_WarnsWhenResamplingDisabled(t *testing.T) {
	opts := DefaultNormalizeOptions()
	opts.ResampleHourlyIfSubhourly = false

	ds, err := Normalize(quarterHourly(t), opts)
	require.NoError(t, err)

	assert.Equal(t, 15, ds.TimeStepMinutes)
	assert.Equal(t, 8, ds.Frame.Len())
	assert.Contains(t, ds.Warnings[0], "sub-hourly")
}

func TestNormalize_ConvertsIrradianceUnits(t *testing.T) {
	ds, err := Normalize(quarterHourly(t), DefaultNormalizeOptions())
	require.NoError(t, err)

	ghi, _ := ds.Frame.Column(meteo.GHI)
	assert.InDelta(t, 1.0, ghi[0], 1e-12)
	assert.Equal(t, meteo.UnitKWm2, ds.Unit(meteo.GHI))
	assert.Equal(t, "deg.C", ds.Unit(meteo.Temp), "non irradiance units pass through")
}

func TestIrradianceUnitRoundTrip(t *testing.T) {
	toKW, err := meteo.IrradianceFactor(meteo.UnitWm2, meteo.UnitKWm2)
	require.NoError(t, err)
	toW, err := meteo.IrradianceFactor(meteo.UnitKWm2, meteo.UnitWm2)
	require.NoError(t, err)

	for _, v := range []float64{0, 1, 123.456, 1361} {
		assert.InDelta(t, v, v*toKW*toW, 1e-9)
	}

	_, err = meteo.IrradianceFactor("lux", meteo.UnitWm2)
	assert.ErrorIs(t, err, meteo.ErrUnknownIrradianceUnit)
}

func TestNormalize_SortsAndDeduplicates(t *testing.T) {
	data := []byte("date;GlobHor;T_Amb\n;W/m2;C\n" +
		"01/01/90 02:00;3;1\n" +
		"01/01/90 00:00;1;1\n" +
		"01/01/90 01:00;2;1\n" +
		"01/01/90 00:00;9;1\n")

	ds, err := Normalize(parse(t, data), DefaultNormalizeOptions())
	require.NoError(t, err)

	assert.True(t, ds.Frame.IsStrictlyIncreasing())
	assert.Equal(t, 3, ds.Frame.Len())
	ghi, _ := ds.Frame.Column(meteo.GHI)
	assert.InDelta(t, 0.001, ghi[0], 1e-12, "first occurrence wins")
	assert.Contains(t, ds.Warnings, "1 duplicate timestamp(s) dropped, first occurrence kept")
}

func TestNormalize_KeepsUnknownColumnsAndWarnsOnMissing(t *testing.T) {
	data := []byte("date;GlobHor;Pressure;Albedo\n;W/m2;mbar;\n01/01/90 00:00;0;1013;0,2\n")

	ds, err := Normalize(parse(t, data), DefaultNormalizeOptions())
	require.NoError(t, err)

	assert.True(t, ds.Frame.Has(meteo.Pressure))
	assert.True(t, ds.Frame.Has("Albedo"))
	assert.Equal(t, "mbar", ds.Unit(meteo.Pressure))
	assert.Len(t, ds.Warnings, 3, "dni, dhi and temp are missing")
	assert.Equal(t, 60, ds.TimeStepMinutes)
}

func TestNormalize_UnknownIrradianceUnitAssumesWatts(t *testing.T) {
	data := []byte("date;GlobHor\n;Wh/m2\n01/01/90 00:00;500\n")

	ds, err := Normalize(parse(t, data), DefaultNormalizeOptions())
	require.NoError(t, err)

	ghi, _ := ds.Frame.Column(meteo.GHI)
	assert.InDelta(t, 0.5, ghi[0], 1e-12)
	assert.Contains(t, ds.Warnings[0], "assuming W/m²")
}

func TestNormalize_RejectsUnknownTargetUnit(t *testing.T) {
	opts := DefaultNormalizeOptions()
	opts.TargetIrradianceUnit = "MJ/m2"
	_, err := Normalize(quarterHourly(t), opts)
	assert.ErrorIs(t, err, meteo.ErrUnknownIrradianceUnit)
}

func TestAssessQuality(t *testing.T) {
	frame := timeseries.NewFrame([]time.Time{t0, t0.Add(time.Hour)})
	require.NoError(t, frame.SetColumn("ghi", []float64{1, math.NaN()}))

	q := AssessQuality(frame, 2, DefaultQualityPolicy())
	assert.Equal(t, 2, q.NRows)
	assert.Equal(t, 1, q.NNaN)
	assert.Equal(t, 2, q.NNaT)
	assert.Equal(t, t0, q.Start)
	assert.Equal(t, t0.Add(time.Hour), q.End)
	assert.Contains(t, q.Warning, "1 missing value(s)")
	assert.Contains(t, q.Warning, "unparseable timestamp")

	tolerant := AssessQuality(frame, 0, QualityPolicy{MaxMissingRatio: 0.5})
	assert.Empty(t, tolerant.Warning)

	empty := AssessQuality(timeseries.NewFrame(nil), 0, DefaultQualityPolicy())
	assert.Equal(t, 0, empty.NRows)
	assert.Equal(t, "no data rows", empty.Warning)
}
