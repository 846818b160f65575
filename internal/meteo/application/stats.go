package application

import (
	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/timeseries"
)

// BasicStats returns mean, min and max of the main weather variables present
// in the dataset, skipping missing values.
func BasicStats(ds *meteo.Dataset) []meteo.VariableStats {
	var out []meteo.VariableStats
	for _, name := range meteo.StatsVariables {
		values, ok := ds.Frame.Column(name)
		if !ok {
			continue
		}
		out = append(out, meteo.VariableStats{
			Variable: name,
			Unit:     ds.Unit(name),
			Mean:     timeseries.Mean(values),
			Min:      timeseries.Min(values),
			Max:      timeseries.Max(values),
		})
	}
	return out
}
