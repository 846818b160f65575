package application

import (
	"fmt"
	"math"

	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/timeseries"
)

// EnergyOptions configures irradiation integration.
type EnergyOptions struct {
	EnergyUnit string
	// ExpectedHours is the nominal period length, 8760 for a TMY.
	ExpectedHours float64
	// PeriodTolerance is the relative deviation from ExpectedHours tolerated
	// without a warning.
	PeriodTolerance float64
}

// DefaultEnergyOptions integrates to kWh/m² over a nominal year.
func DefaultEnergyOptions() EnergyOptions {
	return EnergyOptions{
		EnergyUnit:      meteo.UnitKWhm2,
		ExpectedHours:   8760,
		PeriodTolerance: 0.05,
	}
}

// IntegrateEnergy sums each irradiance column over the dataset time step and
// converts the result to the requested energy unit. Missing columns yield nil.
func IntegrateEnergy(ds *meteo.Dataset, opts EnergyOptions) (meteo.EnergySummary, error) {
	if ds == nil {
		return meteo.EnergySummary{}, meteo.ErrNilDataset
	}
	if !meteo.ValidEnergyUnit(opts.EnergyUnit) {
		return meteo.EnergySummary{}, fmt.Errorf("%w: %q", meteo.ErrUnknownEnergyUnit, opts.EnergyUnit)
	}

	summary := meteo.EnergySummary{Unit: opts.EnergyUnit}
	step := ds.TimeStepMinutes
	if step <= 0 {
		step = hourMinutes
	}
	hoursPerRow := float64(step) / 60

	annual := make(map[string]*float64, len(meteo.IrradianceVariables))
	for _, name := range meteo.IrradianceVariables {
		values, ok := ds.Frame.Column(name)
		if !ok {
			continue
		}
		unit, known := meteo.CanonicalIrradianceUnit(ds.Unit(name))
		if !known {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("unknown unit %q for %s during integration, assuming %s", ds.Unit(name), name, meteo.UnitWm2))
			unit = meteo.UnitWm2
		}
		// Power unit times hours: W/m² gives Wh/m², kW/m² gives kWh/m².
		total := 0.0
		for _, v := range values {
			if timeseries.IsFinite(v) {
				total += v * hoursPerRow
			}
		}
		value := convertEnergy(total, unit, opts.EnergyUnit)
		annual[name] = &value
	}
	summary.AnnualGHI = annual[meteo.GHI]
	summary.AnnualDNI = annual[meteo.DNI]
	summary.AnnualDHI = annual[meteo.DHI]

	if opts.ExpectedHours > 0 {
		covered := float64(ds.Frame.Len()) * hoursPerRow
		if math.Abs(covered-opts.ExpectedHours)/opts.ExpectedHours > opts.PeriodTolerance {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("series covers %.0f h, expected about %.0f h; input may be truncated or duplicated", covered, opts.ExpectedHours))
		}
	}
	return summary, nil
}

func convertEnergy(total float64, powerUnit, energyUnit string) float64 {
	wh := total
	if powerUnit == meteo.UnitKWm2 {
		wh = total * 1000
	}
	if energyUnit == meteo.UnitKWhm2 {
		return wh / 1000
	}
	return wh
}
