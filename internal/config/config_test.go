package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	meteo "pvinsight/internal/meteo/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvFile, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	opts := cfg.MeteoOptions()
	assert.Equal(t, meteo.UnitKWm2, opts.Normalize.TargetIrradianceUnit)
	assert.True(t, opts.Normalize.ResampleHourlyIfSubhourly)
	assert.Equal(t, 5.0, opts.ThresholdPct)
	assert.Equal(t, 500.0, cfg.ProductionOptions().Analysis.ThresholdKW)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pvinsight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
meteo:
  target_irradiance_unit: "W/m²"
  resample_hourly_if_subhourly: false
  threshold_pct: 2.5
production:
  threshold_kw: 750
output:
  mode: runs
`), 0o644))
	t.Setenv(EnvFile, path)
	t.Setenv("PVINSIGHT_PRODUCTION_THRESHOLD_KW", "900")
	t.Setenv("PVINSIGHT_HTTP_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, meteo.UnitWm2, cfg.Meteo.TargetIrradianceUnit)
	assert.False(t, cfg.Meteo.ResampleHourly)
	assert.Equal(t, 2.5, cfg.Meteo.ThresholdPct)
	assert.Equal(t, 900.0, cfg.Production.ThresholdKW)
	assert.Equal(t, "runs", cfg.Output.Mode)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, meteo.UnitKWhm2, cfg.Meteo.EnergyUnit)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"PVINSIGHT_METEO_TARGET_IRRADIANCE_UNIT": "lux",
		"PVINSIGHT_METEO_THRESHOLD_PCT":          "-1",
		"PVINSIGHT_PRODUCTION_THRESHOLD_KW":      "-5",
		"PVINSIGHT_OUTPUT_MODE":                  "daily",
		"PVINSIGHT_METEO_MIN_VALID_ROW_RATIO":    "1.5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(EnvFile, "")
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv(EnvFile, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AcceptsASCIIUnitSpelling(t *testing.T) {
	t.Setenv(EnvFile, "")
	t.Setenv("PVINSIGHT_METEO_TARGET_IRRADIANCE_UNIT", "W/m2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, meteo.UnitWm2, cfg.Meteo.TargetIrradianceUnit)
}

func TestLoad_AcceptsASCIIEnergyUnitSpelling(t *testing.T) {
	t.Setenv(EnvFile, "")
	t.Setenv("PVINSIGHT_METEO_ENERGY_UNIT", "Wh/m2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, meteo.UnitWhm2, cfg.Meteo.EnergyUnit)
}
