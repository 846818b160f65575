package application

import (
	production "pvinsight/internal/production/domain"
)

// powerBins are right-closed ratio classes; the last upper bound sits above 1
// so that the maximum itself lands in the top class.
var powerBins = []production.PowerClass{
	{Key: "lt50", Label: "< 50 %", Lower: 0, Upper: 0.5},
	{Key: "50_70", Label: "50-70 %", Lower: 0.5, Upper: 0.7},
	{Key: "70_90", Label: "70-90 %", Lower: 0.7, Upper: 0.9},
	{Key: "gt90", Label: "> 90 %", Lower: 0.9, Upper: 1.01},
}

// AnalyzePowerDistribution classifies production hours by their output
// relative to the observed maximum.
func AnalyzePowerDistribution(actx *production.AnalysisContext) {
	grid, _ := actx.Data.Column(production.ColumnGridEnergy)

	var prod []float64
	pMax := 0.0
	for _, v := range grid {
		if v > 0 {
			prod = append(prod, v)
			if v > pMax {
				pMax = v
			}
		}
	}
	if len(prod) == 0 {
		actx.Results.PowerDistribution = &production.PowerDistributionResult{Available: false}
		return
	}

	classes := make([]production.PowerClass, len(powerBins))
	copy(classes, powerBins)
	for _, v := range prod {
		ratio := v / pMax
		for i := range classes {
			if ratio > classes[i].Lower && ratio <= classes[i].Upper {
				classes[i].Hours++
				classes[i].EnergyKWh += v
				break
			}
		}
	}
	for i := range classes {
		classes[i].PctTime = percent(classes[i].Hours, len(prod))
	}

	actx.Results.PowerDistribution = &production.PowerDistributionResult{
		Available: true,
		PMax:      pMax,
		Classes:   classes,
	}
}
