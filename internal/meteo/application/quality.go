package application

import (
	"fmt"
	"strings"

	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/timeseries"
)

// QualityPolicy holds the tolerance used by AssessQuality.
type QualityPolicy struct {
	// MaxMissingRatio is the share of missing cells tolerated without a warning.
	// Zero means any missing value is reported, which suits TMY-grade sources.
	MaxMissingRatio float64
}

// DefaultQualityPolicy reports any missing value.
func DefaultQualityPolicy() QualityPolicy {
	return QualityPolicy{MaxMissingRatio: 0}
}

// AssessQuality summarizes a frame. nat is the number of rows dropped earlier
// because their timestamp could not be parsed. It never fails.
func AssessQuality(frame *timeseries.Frame, nat int, policy QualityPolicy) meteo.DataQuality {
	q := meteo.DataQuality{
		NRows: frame.Len(),
		NNaN:  frame.CountNaN(),
		NNaT:  nat,
	}
	q.Start, _ = frame.Start()
	q.End, _ = frame.End()

	var reasons []string
	if q.NRows == 0 {
		reasons = append(reasons, "no data rows")
	}
	if cells := q.NRows * len(frame.Names()); cells > 0 && q.NNaN > 0 {
		ratio := float64(q.NNaN) / float64(cells)
		if ratio > policy.MaxMissingRatio {
			reasons = append(reasons, fmt.Sprintf("%d missing value(s) (%.2f%% of cells)", q.NNaN, 100*ratio))
		}
	}
	if q.NNaT > 0 {
		reasons = append(reasons, fmt.Sprintf("%d row(s) with unparseable timestamp dropped", q.NNaT))
	}
	q.Warning = strings.Join(reasons, "; ")
	return q
}
