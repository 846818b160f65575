package production

import (
	"errors"

	"pvinsight/internal/timeseries"
)

// Column names read from PVsyst hourly results.
const (
	ColumnGridEnergy     = "E_Grid"
	ColumnInverterOutput = "EOutInv"
	ColumnClippingLoss   = "IL_Pmax"
)

// DefaultThresholdKW is the grid output threshold used when none is given.
const DefaultThresholdKW = 500.0

var (
	// ErrNegativeThreshold is returned when threshold_kw is negative.
	ErrNegativeThreshold = errors.New("production: negative threshold")
	// ErrNilContext is returned when an analysis is run without data.
	ErrNilContext = errors.New("production: nil analysis context")
)

// Options holds user-tunable analysis parameters.
type Options struct {
	ThresholdKW float64
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.ThresholdKW < 0 {
		return ErrNegativeThreshold
	}
	return nil
}

// AnalysisContext is shared by the analyses of one production run. Each
// analysis writes its own slot of Results and reads nothing written by others.
type AnalysisContext struct {
	SourceName  string
	GeneralInfo map[string]string
	UnitsMap    map[string]string
	Data        *timeseries.Frame
	Options     Options
	Results     Results
	// Warnings collects non-fatal data notices raised while building the context.
	Warnings []string
}

// Results has one slot per registered analysis.
type Results struct {
	Threshold         *ThresholdResult
	PowerDistribution *PowerDistributionResult
	InverterClipping  *ClippingResult
}
