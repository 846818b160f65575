// Package config loads pvinsight settings: built-in defaults, then an optional
// YAML file named by PVINSIGHT_CONFIG, then PVINSIGHT_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"pvinsight/internal/ingest/pvsyst"
	meteoapp "pvinsight/internal/meteo/application"
	meteo "pvinsight/internal/meteo/domain"
	prodapp "pvinsight/internal/production/application"
	production "pvinsight/internal/production/domain"
	"pvinsight/internal/runs"
)

const (
	EnvPrefix = "PVINSIGHT"
	EnvFile   = "PVINSIGHT_CONFIG"
)

// Config is the full application configuration.
type Config struct {
	Meteo      MeteoConfig      `yaml:"meteo" envconfig:"METEO"`
	Production ProductionConfig `yaml:"production" envconfig:"PRODUCTION"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	HTTP       HTTPConfig       `yaml:"http" envconfig:"HTTP"`
}

// MeteoConfig drives the TMY analysis and comparison pipelines.
type MeteoConfig struct {
	TargetIrradianceUnit string  `yaml:"target_irradiance_unit" envconfig:"TARGET_IRRADIANCE_UNIT" validate:"oneof=W/m² kW/m²"`
	EnergyUnit           string  `yaml:"energy_unit" envconfig:"ENERGY_UNIT" validate:"oneof=Wh/m² kWh/m²"`
	ResampleHourly       bool    `yaml:"resample_hourly_if_subhourly" envconfig:"RESAMPLE_HOURLY"`
	ThresholdPct         float64 `yaml:"threshold_pct" envconfig:"THRESHOLD_PCT" validate:"gte=0"`
	MinValidRowRatio     float64 `yaml:"min_valid_row_ratio" envconfig:"MIN_VALID_ROW_RATIO" validate:"gt=0,lte=1"`
	MaxMissingRatio      float64 `yaml:"max_missing_ratio" envconfig:"MAX_MISSING_RATIO" validate:"gte=0,lte=1"`
	ExpectedHours        float64 `yaml:"expected_hours" envconfig:"EXPECTED_HOURS" validate:"gt=0"`
	PeriodTolerance      float64 `yaml:"period_tolerance" envconfig:"PERIOD_TOLERANCE" validate:"gte=0,lt=1"`
}

// ProductionConfig drives the hourly results pipeline.
type ProductionConfig struct {
	ThresholdKW      float64 `yaml:"threshold_kw" envconfig:"THRESHOLD_KW" validate:"gte=0"`
	MinValidRowRatio float64 `yaml:"min_valid_row_ratio" envconfig:"MIN_VALID_ROW_RATIO" validate:"gt=0,lte=1"`
}

// OutputConfig locates run folders written by the CLI.
type OutputConfig struct {
	Root string `yaml:"root" envconfig:"ROOT" validate:"required"`
	Mode string `yaml:"mode" envconfig:"MODE" validate:"oneof=runs latest"`
}

// HTTPConfig configures the upload service.
type HTTPConfig struct {
	Addr           string `yaml:"addr" envconfig:"ADDR" validate:"required"`
	JWTSecret      string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Meteo: MeteoConfig{
			TargetIrradianceUnit: meteo.UnitKWm2,
			EnergyUnit:           meteo.UnitKWhm2,
			ResampleHourly:       true,
			ThresholdPct:         meteoapp.DefaultThresholdPct,
			MinValidRowRatio:     pvsyst.DefaultMinValidRowRatio,
			MaxMissingRatio:      0,
			ExpectedHours:        8760,
			PeriodTolerance:      0.05,
		},
		Production: ProductionConfig{
			ThresholdKW:      production.DefaultThresholdKW,
			MinValidRowRatio: pvsyst.DefaultMinValidRowRatio,
		},
		Output: OutputConfig{
			Root: filepath.FromSlash("outputs"),
			Mode: runs.ModeLatest,
		},
		HTTP: HTTPConfig{
			Addr:           ":8080",
			MaxUploadBytes: 32 << 20,
		},
	}
}

// Load builds the configuration from defaults, file and environment, then
// validates it.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("config: env: %w", err)
	}
	if unit, ok := meteo.CanonicalIrradianceUnit(cfg.Meteo.TargetIrradianceUnit); ok {
		cfg.Meteo.TargetIrradianceUnit = unit
	}
	if unit, ok := meteo.CanonicalEnergyUnit(cfg.Meteo.EnergyUnit); ok {
		cfg.Meteo.EnergyUnit = unit
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks units, ratios and thresholds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// MeteoOptions maps the settings onto the TMY pipeline options.
func (c Config) MeteoOptions() meteoapp.Options {
	opts := meteoapp.DefaultOptions()
	opts.MinValidRowRatio = c.Meteo.MinValidRowRatio
	opts.ThresholdPct = c.Meteo.ThresholdPct
	opts.Normalize.TargetIrradianceUnit = c.Meteo.TargetIrradianceUnit
	opts.Normalize.ResampleHourlyIfSubhourly = c.Meteo.ResampleHourly
	opts.Normalize.Quality.MaxMissingRatio = c.Meteo.MaxMissingRatio
	opts.Energy.EnergyUnit = c.Meteo.EnergyUnit
	opts.Energy.ExpectedHours = c.Meteo.ExpectedHours
	opts.Energy.PeriodTolerance = c.Meteo.PeriodTolerance
	return opts
}

// ProductionOptions maps the settings onto the hourly pipeline options.
func (c Config) ProductionOptions() prodapp.Options {
	return prodapp.Options{
		MinValidRowRatio: c.Production.MinValidRowRatio,
		Analysis:         production.Options{ThresholdKW: c.Production.ThresholdKW},
	}
}
