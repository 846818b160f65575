package meteo

import "errors"

var (
	// ErrUnknownIrradianceUnit is returned when a target irradiance unit is not supported.
	ErrUnknownIrradianceUnit = errors.New("meteo: unknown irradiance unit")
	// ErrUnknownEnergyUnit is returned when a target energy unit is not supported.
	ErrUnknownEnergyUnit = errors.New("meteo: unknown energy unit")
	// ErrNegativeThreshold is returned when an alert threshold is negative.
	ErrNegativeThreshold = errors.New("meteo: negative threshold")
	// ErrNilDataset is returned when a nil dataset is supplied.
	ErrNilDataset = errors.New("meteo: nil dataset")
)
