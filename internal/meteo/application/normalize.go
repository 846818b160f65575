package application

import (
	"fmt"

	"github.com/samber/lo"

	"pvinsight/internal/ingest/pvsyst"
	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/timeseries"
)

// ReducerPolicy chooses the hourly reducer per variable class.
type ReducerPolicy map[meteo.VariableClass]timeseries.Reducer

// DefaultReducerPolicy sums irradiance and averages everything else.
func DefaultReducerPolicy() ReducerPolicy {
	return ReducerPolicy{
		meteo.ClassIrradiance:  timeseries.Sum,
		meteo.ClassTemperature: timeseries.Mean,
		meteo.ClassWind:        timeseries.Mean,
		meteo.ClassOther:       timeseries.Mean,
	}
}

// ReducerFor returns the reducer of a column, Mean when the class is not configured.
func (p ReducerPolicy) ReducerFor(column string) timeseries.Reducer {
	if r, ok := p[meteo.ClassOf(column)]; ok && r != nil {
		return r
	}
	return timeseries.Mean
}

// NormalizeOptions configures the normalization pass.
type NormalizeOptions struct {
	TargetIrradianceUnit      string
	ResampleHourlyIfSubhourly bool
	Reducers                  ReducerPolicy
	Quality                   QualityPolicy
}

// DefaultNormalizeOptions returns kW/m² output with hourly resampling.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		TargetIrradianceUnit:      meteo.UnitKWm2,
		ResampleHourlyIfSubhourly: true,
		Reducers:                  DefaultReducerPolicy(),
		Quality:                   DefaultQualityPolicy(),
	}
}

const hourMinutes = 60

// Normalize builds a Dataset from a parsed table: semantic column names,
// sorted unique index, target irradiance unit and optional hourly resampling.
func Normalize(table *pvsyst.Table, opts NormalizeOptions) (*meteo.Dataset, error) {
	if table == nil || table.Frame == nil {
		return nil, meteo.ErrNilDataset
	}
	if !meteo.ValidIrradianceUnit(opts.TargetIrradianceUnit) {
		return nil, fmt.Errorf("%w: %q", meteo.ErrUnknownIrradianceUnit, opts.TargetIrradianceUnit)
	}
	if opts.Reducers == nil {
		opts.Reducers = DefaultReducerPolicy()
	}

	ds := &meteo.Dataset{
		SourceName: table.Source,
		Units:      make(map[string]string),
		HeaderInfo: lo.Assign(table.HeaderInfo),
		Encoding:   table.Encoding,
	}

	renamed := timeseries.NewFrame(table.Frame.Index())
	for _, header := range table.Frame.Names() {
		name := header
		if alias, ok := meteo.ColumnAliases[header]; ok && !renamed.Has(alias) {
			name = alias
		}
		if renamed.Has(name) {
			name = header
		}
		values, _ := table.Frame.Column(header)
		if err := renamed.SetColumn(name, append([]float64(nil), values...)); err != nil {
			return nil, fmt.Errorf("meteo: column %s: %w", name, err)
		}
		ds.Units[name] = table.Units[header]
	}

	frame, dropped := renamed.Normalize()
	if dropped > 0 {
		ds.AddWarning(fmt.Sprintf("%d duplicate timestamp(s) dropped, first occurrence kept", dropped))
	}

	for _, name := range meteo.IrradianceVariables {
		values, ok := frame.Column(name)
		if !ok {
			continue
		}
		source, known := meteo.CanonicalIrradianceUnit(ds.Units[name])
		if !known {
			ds.AddWarning(fmt.Sprintf("unknown unit %q for %s, assuming %s", ds.Units[name], name, meteo.UnitWm2))
			source = meteo.UnitWm2
		}
		factor, err := meteo.IrradianceFactor(source, opts.TargetIrradianceUnit)
		if err != nil {
			return nil, err
		}
		if factor != 1 {
			scaled := make([]float64, len(values))
			for i, v := range values {
				scaled[i] = v * factor
			}
			if err := frame.SetColumn(name, scaled); err != nil {
				return nil, fmt.Errorf("meteo: column %s: %w", name, err)
			}
		}
		ds.Units[name] = opts.TargetIrradianceUnit
	}

	step, ok := timeseries.ModalStepMinutes(frame.Index())
	if !ok {
		step = hourMinutes
	}
	if step < hourMinutes {
		if opts.ResampleHourlyIfSubhourly {
			frame = frame.Resample(timeseries.TruncateHour, opts.Reducers.ReducerFor)
			if step, ok = timeseries.ModalStepMinutes(frame.Index()); !ok {
				step = hourMinutes
			}
		} else {
			ds.AddWarning(fmt.Sprintf("sub-hourly time step (%d min) detected and hourly resampling is disabled", step))
		}
	}

	for _, name := range meteo.ExpectedVariables {
		if !frame.Has(name) {
			ds.AddWarning(fmt.Sprintf("column %s is missing; dependent results are unavailable", name))
		}
	}

	ds.Frame = frame
	ds.TimeStepMinutes = step
	ds.Quality = AssessQuality(frame, table.DroppedTimestamps, opts.Quality)
	return ds, nil
}
