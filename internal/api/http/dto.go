package apihttp

import (
	"math"
	"time"

	meteoapp "pvinsight/internal/meteo/application"
	meteo "pvinsight/internal/meteo/domain"
	production "pvinsight/internal/production/domain"
)

const timeLayout = time.RFC3339

// num maps non-finite values to JSON null.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

type qualityDTO struct {
	Rows    int    `json:"rows"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	NaN     int    `json:"nan"`
	NaT     int    `json:"nat"`
	Warning string `json:"warning,omitempty"`
}

type datasetDTO struct {
	Source          string            `json:"source"`
	Encoding        string            `json:"encoding"`
	TimeStepMinutes int               `json:"time_step_minutes"`
	HeaderInfo      map[string]string `json:"header_info"`
	Units           map[string]string `json:"units"`
	Quality         qualityDTO        `json:"quality"`
}

type statsDTO struct {
	Variable string   `json:"variable"`
	Unit     string   `json:"unit"`
	Mean     *float64 `json:"mean"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
}

type energyDTO struct {
	Unit string   `json:"unit"`
	GHI  *float64 `json:"ghi"`
	DNI  *float64 `json:"dni"`
	DHI  *float64 `json:"dhi"`
}

type tmyAnalysisDTO struct {
	Dataset  datasetDTO `json:"dataset"`
	Stats    []statsDTO `json:"stats"`
	Energy   energyDTO  `json:"energy"`
	Warnings []string   `json:"warnings"`
}

type diffDTO struct {
	MeanAbs *float64 `json:"mean_abs"`
	MaxAbs  *float64 `json:"max_abs"`
	MeanPct *float64 `json:"mean_pct"`
	MaxPct  *float64 `json:"max_pct"`
}

type comparisonDTO struct {
	ThresholdPct float64            `json:"threshold_pct"`
	Alert        bool               `json:"alert"`
	Overlap      bool               `json:"overlap"`
	CommonStart  string             `json:"common_start,omitempty"`
	CommonEnd    string             `json:"common_end,omitempty"`
	Rows         int                `json:"rows"`
	Variables    []string           `json:"variables"`
	Diffs        map[string]diffDTO `json:"diffs"`
}

type tmyComparisonDTO struct {
	First      datasetDTO    `json:"first"`
	Second     datasetDTO    `json:"second"`
	Comparison comparisonDTO `json:"comparison"`
	Energy1    energyDTO     `json:"energy_first"`
	Energy2    energyDTO     `json:"energy_second"`
	Warnings   []string      `json:"warnings"`
}

func newDatasetDTO(ds *meteo.Dataset) datasetDTO {
	q := ds.Quality
	return datasetDTO{
		Source:          ds.SourceName,
		Encoding:        ds.Encoding,
		TimeStepMinutes: ds.TimeStepMinutes,
		HeaderInfo:      ds.HeaderInfo,
		Units:           ds.Units,
		Quality: qualityDTO{
			Rows:    q.NRows,
			Start:   timestamp(q.Start),
			End:     timestamp(q.End),
			NaN:     q.NNaN,
			NaT:     q.NNaT,
			Warning: q.Warning,
		},
	}
}

func newEnergyDTO(s meteo.EnergySummary) energyDTO {
	deref := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		return num(*p)
	}
	return energyDTO{
		Unit: s.Unit,
		GHI:  deref(s.AnnualGHI),
		DNI:  deref(s.AnnualDNI),
		DHI:  deref(s.AnnualDHI),
	}
}

func newTMYAnalysisDTO(res *meteoapp.TMYAnalysis) tmyAnalysisDTO {
	stats := make([]statsDTO, 0, len(res.Stats))
	for _, s := range res.Stats {
		stats = append(stats, statsDTO{Variable: s.Variable, Unit: s.Unit, Mean: num(s.Mean), Min: num(s.Min), Max: num(s.Max)})
	}
	return tmyAnalysisDTO{
		Dataset:  newDatasetDTO(res.Dataset),
		Stats:    stats,
		Energy:   newEnergyDTO(res.Energy),
		Warnings: nonNil(res.Warnings),
	}
}

func newTMYComparisonDTO(res *meteoapp.TMYComparison) tmyComparisonDTO {
	cmp := res.Comparison
	diffs := make(map[string]diffDTO, len(cmp.Diffs))
	for name, d := range cmp.Diffs {
		diffs[name] = diffDTO{MeanAbs: num(d.MeanAbs), MaxAbs: num(d.MaxAbs), MeanPct: num(d.MeanPct), MaxPct: num(d.MaxPct)}
	}
	out := comparisonDTO{
		ThresholdPct: cmp.Threshold,
		Alert:        cmp.AlertFlag,
		Overlap:      cmp.Overlap,
		Rows:         cmp.Rows,
		Variables:    nonNil(cmp.Variables),
		Diffs:        diffs,
	}
	if cmp.Overlap {
		out.CommonStart = timestamp(cmp.CommonStart)
		out.CommonEnd = timestamp(cmp.CommonEnd)
	}
	return tmyComparisonDTO{
		First:      newDatasetDTO(res.First),
		Second:     newDatasetDTO(res.Second),
		Comparison: out,
		Energy1:    newEnergyDTO(res.Energy1),
		Energy2:    newEnergyDTO(res.Energy2),
		Warnings:   nonNil(res.Warnings),
	}
}

type thresholdSummaryDTO struct {
	ThresholdKW      float64 `json:"threshold_kw"`
	HoursProduction  int     `json:"hours_production"`
	HoursAbove       int     `json:"hours_above"`
	PctAboveProdTime float64 `json:"pct_above_prod_time"`
	EnergyAboveKWh   float64 `json:"energy_above_kwh"`
}

type monthThresholdDTO struct {
	Month           int     `json:"month"`
	HoursProduction int     `json:"hours_production"`
	HoursAbove      int     `json:"hours_above"`
	EnergyAboveKWh  float64 `json:"energy_above_kwh"`
	PctAbove        float64 `json:"pct_above"`
}

type seasonThresholdDTO struct {
	Season         string  `json:"season"`
	HoursAbove     int     `json:"hours_above"`
	EnergyAboveKWh float64 `json:"energy_above_kwh"`
}

type thresholdDTO struct {
	Summary  thresholdSummaryDTO  `json:"summary"`
	Monthly  []monthThresholdDTO  `json:"monthly"`
	Seasonal []seasonThresholdDTO `json:"seasonal"`
}

type powerClassDTO struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Hours     int     `json:"hours"`
	EnergyKWh float64 `json:"energy_kwh"`
	PctTime   float64 `json:"pct_time"`
}

type powerDistributionDTO struct {
	Available bool            `json:"available"`
	PMax      *float64        `json:"p_max"`
	Classes   []powerClassDTO `json:"classes"`
}

type monthClippingDTO struct {
	Month              int      `json:"month"`
	EnergyClippedKWh   float64  `json:"energy_clipped_kwh"`
	EnergyPotentialKWh float64  `json:"energy_potential_kwh"`
	PctClipping        *float64 `json:"pct_clipping"`
}

type clippingDTO struct {
	Available           bool                `json:"available"`
	Empty               bool                `json:"empty"`
	MissingColumns      []string            `json:"missing_columns,omitempty"`
	Suggestions         map[string][]string `json:"suggestions,omitempty"`
	EnergyClippedKWh    float64             `json:"energy_clipped_kwh"`
	PctOfInverterOutput *float64            `json:"pct_of_inverter_output"`
	HoursClipping       int                 `json:"hours_clipping"`
	EnergyPotentialKWh  float64             `json:"energy_potential_kwh"`
	Monthly             []monthClippingDTO  `json:"monthly"`
}

type hourlyDTO struct {
	Source            string                `json:"source"`
	GeneralInfo       map[string]string     `json:"general_info"`
	Units             map[string]string     `json:"units"`
	Rows              int                   `json:"rows"`
	Threshold         *thresholdDTO         `json:"threshold"`
	PowerDistribution *powerDistributionDTO `json:"power_distribution"`
	InverterClipping  *clippingDTO          `json:"inverter_clipping"`
	Warnings          []string              `json:"warnings"`
}

func newHourlyDTO(actx *production.AnalysisContext) hourlyDTO {
	out := hourlyDTO{
		Source:      actx.SourceName,
		GeneralInfo: actx.GeneralInfo,
		Units:       actx.UnitsMap,
		Rows:        actx.Data.Len(),
		Warnings:    nonNil(actx.Warnings),
	}
	res := actx.Results
	if th := res.Threshold; th != nil {
		dto := &thresholdDTO{Summary: thresholdSummaryDTO(th.Summary)}
		for _, m := range th.Monthly {
			dto.Monthly = append(dto.Monthly, monthThresholdDTO{
				Month: int(m.Month), HoursProduction: m.HoursProduction, HoursAbove: m.HoursAbove,
				EnergyAboveKWh: m.EnergyAboveKWh, PctAbove: m.PctAbove,
			})
		}
		for _, s := range th.Seasonal {
			dto.Seasonal = append(dto.Seasonal, seasonThresholdDTO(s))
		}
		out.Threshold = dto
	}
	if pd := res.PowerDistribution; pd != nil {
		dto := &powerDistributionDTO{Available: pd.Available, PMax: num(pd.PMax), Classes: []powerClassDTO{}}
		for _, c := range pd.Classes {
			dto.Classes = append(dto.Classes, powerClassDTO{Key: c.Key, Label: c.Label, Hours: c.Hours, EnergyKWh: c.EnergyKWh, PctTime: c.PctTime})
		}
		out.PowerDistribution = dto
	}
	if c := res.InverterClipping; c != nil {
		dto := &clippingDTO{
			Available:           c.Available,
			Empty:               c.Empty,
			MissingColumns:      c.MissingColumns,
			Suggestions:         c.Suggestions,
			EnergyClippedKWh:    c.Summary.EnergyClippedKWh,
			PctOfInverterOutput: num(c.Summary.PctOfInverterOutput),
			HoursClipping:       c.Summary.HoursClipping,
			EnergyPotentialKWh:  c.Summary.EnergyPotentialKWh,
			Monthly:             []monthClippingDTO{},
		}
		for _, m := range c.Monthly {
			dto.Monthly = append(dto.Monthly, monthClippingDTO{
				Month: int(m.Month), EnergyClippedKWh: m.EnergyClippedKWh,
				EnergyPotentialKWh: m.EnergyPotentialKWh, PctClipping: num(m.PctClipping),
			})
		}
		out.InverterClipping = dto
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
