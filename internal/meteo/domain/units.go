package meteo

import "strings"

// Irradiance units.
const (
	UnitWm2  = "W/m²"
	UnitKWm2 = "kW/m²"
)

// Energy units.
const (
	UnitWhm2  = "Wh/m²"
	UnitKWhm2 = "kWh/m²"
)

// Semantic variable names.
const (
	GHI       = "ghi"
	DNI       = "dni"
	DHI       = "dhi"
	Temp      = "temp"
	WindSpeed = "wind_speed"
	Pressure  = "pressure"
)

// VariableClass drives unit conversion and resampling.
type VariableClass string

const (
	ClassIrradiance  VariableClass = "irradiance"
	ClassTemperature VariableClass = "temperature"
	ClassWind        VariableClass = "wind"
	ClassOther       VariableClass = "other"
)

// ClassOf returns the class of a semantic variable name.
func ClassOf(name string) VariableClass {
	switch name {
	case GHI, DNI, DHI:
		return ClassIrradiance
	case Temp:
		return ClassTemperature
	case WindSpeed:
		return ClassWind
	default:
		return ClassOther
	}
}

// IrradianceVariables are integrated into energy.
var IrradianceVariables = []string{GHI, DNI, DHI}

// StatsVariables get descriptive statistics.
var StatsVariables = []string{GHI, DNI, DHI, Temp}

// ComparedVariables are diffed by the comparison pipeline.
var ComparedVariables = []string{GHI, DNI, DHI, Temp, WindSpeed}

// ExpectedVariables are needed by downstream analyses; their absence is warned about.
var ExpectedVariables = []string{GHI, DNI, DHI, Temp}

// ColumnAliases maps PVsyst header names to semantic names.
var ColumnAliases = map[string]string{
	"GlobHor":  GHI,
	"GHI":      GHI,
	"BeamNor":  DNI,
	"DNI":      DNI,
	"DiffHor":  DHI,
	"DHI":      DHI,
	"T_Amb":    Temp,
	"Tamb":     Temp,
	"WindVel":  WindSpeed,
	"Pressure": Pressure,
}

// CanonicalIrradianceUnit maps spellings found in exports ("W/m2", "kw/m²") to
// UnitWm2 or UnitKWm2. The second return value is false for unknown units.
func CanonicalIrradianceUnit(raw string) (string, bool) {
	u := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	u = strings.ReplaceAll(u, "²", "2")
	switch u {
	case "w/m2", "wm-2", "w.m-2":
		return UnitWm2, true
	case "kw/m2", "kwm-2", "kw.m-2":
		return UnitKWm2, true
	default:
		return "", false
	}
}

// CanonicalEnergyUnit maps spellings such as "kWh/m2" to UnitWhm2 or UnitKWhm2.
func CanonicalEnergyUnit(raw string) (string, bool) {
	u := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
	u = strings.ReplaceAll(u, "²", "2")
	switch u {
	case "wh/m2", "whm-2", "wh.m-2":
		return UnitWhm2, true
	case "kwh/m2", "kwhm-2", "kwh.m-2":
		return UnitKWhm2, true
	default:
		return "", false
	}
}

// IrradianceFactor returns the multiplier converting from one irradiance unit to another.
func IrradianceFactor(from, to string) (float64, error) {
	scale := map[string]float64{UnitWm2: 1, UnitKWm2: 1000}
	f, ok := scale[from]
	if !ok {
		return 0, ErrUnknownIrradianceUnit
	}
	t, ok := scale[to]
	if !ok {
		return 0, ErrUnknownIrradianceUnit
	}
	return f / t, nil
}

// ValidIrradianceUnit reports whether u is a supported target irradiance unit.
func ValidIrradianceUnit(u string) bool {
	return u == UnitWm2 || u == UnitKWm2
}

// ValidEnergyUnit reports whether u is a supported target energy unit.
func ValidEnergyUnit(u string) bool {
	return u == UnitWhm2 || u == UnitKWhm2
}
