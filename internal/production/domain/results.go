package production

import "time"

// Season keys, Northern hemisphere.
const (
	SeasonWinter = "winter"
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonAutumn = "autumn"
)

// Seasons lists season keys in display order.
var Seasons = []string{SeasonWinter, SeasonSpring, SeasonSummer, SeasonAutumn}

// SeasonOf maps a month to its 3-month season (Dec-Feb is winter).
func SeasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonAutumn
	}
}

// ThresholdSummary holds the global figures of the threshold analysis.
type ThresholdSummary struct {
	ThresholdKW      float64
	HoursProduction  int
	HoursAbove       int
	PctAboveProdTime float64
	EnergyAboveKWh   float64
}

// MonthThreshold is one row of the monthly threshold table.
type MonthThreshold struct {
	Month           time.Month
	HoursProduction int
	HoursAbove      int
	EnergyAboveKWh  float64
	// PctAbove is 0 when the month has no production hours.
	PctAbove float64
}

// SeasonThreshold is one row of the seasonal threshold table.
type SeasonThreshold struct {
	Season         string
	HoursAbove     int
	EnergyAboveKWh float64
}

// ThresholdResult is written by the threshold analysis.
type ThresholdResult struct {
	Summary  ThresholdSummary
	Monthly  []MonthThreshold
	Seasonal []SeasonThreshold
}

// PowerClass is one bin of the power distribution.
type PowerClass struct {
	Key       string
	Label     string
	Lower     float64
	Upper     float64
	Hours     int
	EnergyKWh float64
	PctTime   float64
}

// PowerDistributionResult is written by the power distribution analysis.
// Available is false when there are no production hours; Classes is then empty.
type PowerDistributionResult struct {
	Available bool
	PMax      float64
	Classes   []PowerClass
}

// ClippingSummary holds the global clipping figures.
type ClippingSummary struct {
	EnergyClippedKWh    float64
	PctOfInverterOutput float64
	HoursClipping       int
	EnergyPotentialKWh  float64
}

// MonthClipping is one row of the monthly clipping table.
type MonthClipping struct {
	Month              time.Month
	EnergyClippedKWh   float64
	EnergyPotentialKWh float64
	PctClipping        float64
}

// ClippingResult is written by the inverter clipping analysis.
// When Available is false, MissingColumns and Suggestions explain why.
// When Empty is true, no row had inverter output or clipping.
type ClippingResult struct {
	Available      bool
	Empty          bool
	MissingColumns []string
	Suggestions    map[string][]string
	Summary        ClippingSummary
	Monthly        []MonthClipping
}
