package application

import (
	"time"

	production "pvinsight/internal/production/domain"
	"pvinsight/internal/timeseries"
)

var clippingColumns = []string{production.ColumnInverterOutput, production.ColumnClippingLoss}

// AnalyzeInverterClipping quantifies energy lost to inverter saturation.
// Missing columns degrade the result to unavailable with suggestions.
func AnalyzeInverterClipping(actx *production.AnalysisContext) {
	names := actx.Data.Names()
	if missing := MissingColumns(names, clippingColumns); len(missing) > 0 {
		actx.Results.InverterClipping = &production.ClippingResult{
			Available:      false,
			MissingColumns: missing,
			Suggestions:    SuggestColumns(names, missing),
		}
		return
	}

	output, _ := actx.Data.Column(production.ColumnInverterOutput)
	clipped, _ := actx.Data.Column(production.ColumnClippingLoss)
	index := actx.Data.Index()

	var (
		summary production.ClippingSummary
		months  [12]production.MonthClipping
		rows    int
	)
	for i := range months {
		months[i].Month = time.Month(i + 1)
	}
	for i := range index {
		out, clip := output[i], clipped[i]
		if !(out > 0) && !(clip > 0) {
			continue
		}
		rows++
		m := index[i].Month() - 1
		if timeseries.IsFinite(clip) {
			summary.EnergyClippedKWh += clip
			months[m].EnergyClippedKWh += clip
		}
		if timeseries.IsFinite(out) && timeseries.IsFinite(clip) {
			summary.EnergyPotentialKWh += out + clip
			months[m].EnergyPotentialKWh += out + clip
		}
		if clip > 0 {
			summary.HoursClipping++
		}
	}
	if rows == 0 {
		actx.Results.InverterClipping = &production.ClippingResult{Available: true, Empty: true}
		return
	}

	summary.PctOfInverterOutput = ratioPercent(summary.EnergyClippedKWh, summary.EnergyPotentialKWh)
	result := &production.ClippingResult{Available: true, Summary: summary}
	for _, m := range months {
		m.PctClipping = ratioPercent(m.EnergyClippedKWh, m.EnergyPotentialKWh)
		result.Monthly = append(result.Monthly, m)
	}
	actx.Results.InverterClipping = result
}

func ratioPercent(part, whole float64) float64 {
	if !(whole > 0) {
		return 0
	}
	return 100 * part / whole
}
