package pvsyst

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStructural matches every error caused by a malformed file layout.
	ErrStructural = errors.New("pvsyst: structural parse error")
	// ErrMissingTable is returned when no line starts with the date marker.
	ErrMissingTable = errors.New("pvsyst: hourly table not found")
	// ErrMissingUnits is returned when the header line is not followed by a units line.
	ErrMissingUnits = errors.New("pvsyst: units line missing after header")
	// ErrMissingColumn matches MissingColumnError.
	ErrMissingColumn = errors.New("pvsyst: missing required column")
	// ErrLowDataQuality matches LowDataQualityError.
	ErrLowDataQuality = errors.New("pvsyst: low data quality")
)

// StructuralError reports the marker that could not be located.
type StructuralError struct {
	Marker string
	Err    error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%v (expected %q)", e.Err, e.Marker)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Is makes every StructuralError match ErrStructural.
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

// MissingColumnError lists hard-required columns absent from the header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("pvsyst: missing required column(s): %s", strings.Join(e.Columns, ", "))
}

// Is makes MissingColumnError match ErrMissingColumn.
func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// LowDataQualityError is returned when too few rows carry a numeric value,
// which usually means the decimal separator or delimiter does not match.
type LowDataQualityError struct {
	ValidRows int
	TotalRows int
	MinRatio  float64
}

func (e *LowDataQualityError) Error() string {
	return fmt.Sprintf("pvsyst: low data quality: %d of %d rows (%.1f%%) contain numeric values, below %.0f%%; check the decimal separator",
		e.ValidRows, e.TotalRows, 100*e.Ratio(), 100*e.MinRatio)
}

// Ratio returns the share of rows with at least one numeric value.
func (e *LowDataQualityError) Ratio() float64 {
	if e.TotalRows == 0 {
		return 0
	}
	return float64(e.ValidRows) / float64(e.TotalRows)
}

// Is makes LowDataQualityError match ErrLowDataQuality.
func (e *LowDataQualityError) Is(target error) bool { return target == ErrLowDataQuality }

// Reason maps a parse error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingTable):
		return "missing_table"
	case errors.Is(err, ErrMissingUnits):
		return "missing_units"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrLowDataQuality):
		return "low_data_quality"
	default:
		return "unknown"
	}
}
