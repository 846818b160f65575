package application

import (
	"time"

	production "pvinsight/internal/production/domain"
)

// AnalyzeThreshold measures how often and how much grid output exceeds the
// configured threshold. Production hours are rows with E_Grid > 0.
func AnalyzeThreshold(actx *production.AnalysisContext) {
	grid, _ := actx.Data.Column(production.ColumnGridEnergy)
	index := actx.Data.Index()
	threshold := actx.Options.ThresholdKW

	var (
		summary  = production.ThresholdSummary{ThresholdKW: threshold}
		months   [12]production.MonthThreshold
		seasonal = make(map[string]*production.SeasonThreshold, len(production.Seasons))
	)
	for i := range months {
		months[i].Month = time.Month(i + 1)
	}
	for _, key := range production.Seasons {
		seasonal[key] = &production.SeasonThreshold{Season: key}
	}

	for i, v := range grid {
		if !(v > 0) {
			continue
		}
		m := index[i].Month()
		summary.HoursProduction++
		months[m-1].HoursProduction++
		if v > threshold {
			summary.HoursAbove++
			summary.EnergyAboveKWh += v
			months[m-1].HoursAbove++
			months[m-1].EnergyAboveKWh += v
			s := seasonal[production.SeasonOf(m)]
			s.HoursAbove++
			s.EnergyAboveKWh += v
		}
	}

	summary.PctAboveProdTime = percent(summary.HoursAbove, summary.HoursProduction)
	result := &production.ThresholdResult{Summary: summary}
	for _, m := range months {
		m.PctAbove = percent(m.HoursAbove, m.HoursProduction)
		result.Monthly = append(result.Monthly, m)
	}
	for _, key := range production.Seasons {
		result.Seasonal = append(result.Seasonal, *seasonal[key])
	}
	actx.Results.Threshold = result
}

// percent returns 100*part/whole, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
