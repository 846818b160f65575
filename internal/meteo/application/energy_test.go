package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	meteo "pvinsight/internal/meteo/domain"
)

func TestIntegrateEnergy_ConstantYear(t *testing.T) {
	ds := hourlyDataset(t, "tmy.csv", t0, 8760, column{name: meteo.GHI, unit: meteo.UnitWm2, value: constant(1000)})

	summary, err := IntegrateEnergy(ds, DefaultEnergyOptions())
	require.NoError(t, err)

	require.NotNil(t, summary.AnnualGHI)
	assert.InDelta(t, 8760.0, *summary.AnnualGHI, 1e-6)
	assert.Nil(t, summary.AnnualDNI, "missing column yields no value")
	assert.Nil(t, summary.AnnualDHI)
	assert.Equal(t, meteo.UnitKWhm2, summary.Unit)
	assert.Empty(t, summary.Warnings)
}

func TestIntegrateEnergy_UnitTargets(t *testing.T) {
	ds := hourlyDataset(t, "tmy.csv", t0, 8760,
		column{name: meteo.GHI, unit: meteo.UnitKWm2, value: constant(1)},
		column{name: meteo.DNI, unit: meteo.UnitKWm2, value: constant(0.5)},
	)

	opts := DefaultEnergyOptions()
	opts.EnergyUnit = meteo.UnitWhm2
	summary, err := IntegrateEnergy(ds, opts)
	require.NoError(t, err)

	assert.InDelta(t, 8_760_000.0, *summary.AnnualGHI, 1e-3)
	assert.InDelta(t, 4_380_000.0, *summary.AnnualDNI, 1e-3)
}

func TestIntegrateEnergy_UsesTimeStep(t *testing.T) {
	ds := hourlyDataset(t, "tmy.csv", t0, 4, column{name: meteo.GHI, unit: meteo.UnitWm2, value: constant(1000)})
	ds.TimeStepMinutes = 15

	summary, err := IntegrateEnergy(ds, DefaultEnergyOptions())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, *summary.AnnualGHI, 1e-9)
}

func TestIntegrateEnergy_WarnsOnImplausiblePeriod(t *testing.T) {
	ds := hourlyDataset(t, "tmy.csv", t0, 4380, column{name: meteo.GHI, unit: meteo.UnitWm2, value: constant(100)})

	summary, err := IntegrateEnergy(ds, DefaultEnergyOptions())
	require.NoError(t, err)
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "4380 h")

	opts := DefaultEnergyOptions()
	opts.PeriodTolerance = 0.6
	summary, err = IntegrateEnergy(ds, opts)
	require.NoError(t, err)
	assert.Empty(t, summary.Warnings)
}

func TestIntegrateEnergy_RejectsUnknownEnergyUnit(t *testing.T) {
	ds := hourlyDataset(t, "tmy.csv", t0, 1)
	opts := DefaultEnergyOptions()
	opts.EnergyUnit = "J"

	_, err := IntegrateEnergy(ds, opts)
	assert.ErrorIs(t, err, meteo.ErrUnknownEnergyUnit)
}
