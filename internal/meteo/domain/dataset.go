package meteo

import (
	"math"
	"time"

	"pvinsight/internal/timeseries"
)

// DataQuality summarizes a normalized series. It is computed once per
// normalization pass and not modified afterwards.
type DataQuality struct {
	NRows   int
	Start   time.Time
	End     time.Time
	NNaN    int
	NNaT    int
	Warning string
}

// Dataset is a normalized weather time series. The frame index is strictly
// increasing and unique.
type Dataset struct {
	SourceName      string
	Frame           *timeseries.Frame
	Units           map[string]string
	TimeStepMinutes int
	HeaderInfo      map[string]string
	Encoding        string
	Quality         DataQuality
	Warnings        []string
}

// AddWarning appends an advisory message. Warnings are never removed.
func (d *Dataset) AddWarning(msg string) {
	d.Warnings = append(d.Warnings, msg)
}

// Unit returns the unit of a column, empty when unknown.
func (d *Dataset) Unit(column string) string {
	if d.Units == nil {
		return ""
	}
	return d.Units[column]
}

// VariableStats holds descriptive statistics of one variable.
type VariableStats struct {
	Variable string
	Unit     string
	Mean     float64
	Min      float64
	Max      float64
}

// EnergySummary holds integrated irradiation per irradiance variable.
// A nil value means the source column was missing.
type EnergySummary struct {
	AnnualGHI *float64
	AnnualDNI *float64
	AnnualDHI *float64
	Unit      string
	Warnings  []string
}

// Annual returns the integrated value of an irradiance variable.
func (s EnergySummary) Annual(variable string) *float64 {
	switch variable {
	case GHI:
		return s.AnnualGHI
	case DNI:
		return s.AnnualDNI
	case DHI:
		return s.AnnualDHI
	default:
		return nil
	}
}

// VariableDiff holds difference statistics between two series of one variable.
// Values are NaN when no pair contributed.
type VariableDiff struct {
	MeanAbs float64
	MaxAbs  float64
	MeanPct float64
	MaxPct  float64
}

// NaNDiff is the diff reported when nothing could be compared.
func NaNDiff() VariableDiff {
	nan := math.NaN()
	return VariableDiff{MeanAbs: nan, MaxAbs: nan, MeanPct: nan, MaxPct: nan}
}

// ComparisonResult is the outcome of comparing two datasets over their common period.
type ComparisonResult struct {
	Diffs       map[string]VariableDiff
	Variables   []string
	AlertFlag   bool
	Threshold   float64
	CommonStart time.Time
	CommonEnd   time.Time
	Overlap     bool
	Rows        int
}
