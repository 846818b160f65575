package reporting

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"pvinsight/internal/ingest/pvsyst"
	meteoapp "pvinsight/internal/meteo/application"
	meteo "pvinsight/internal/meteo/domain"
)

// ErrNilResult is returned when a builder receives nothing to render.
var ErrNilResult = errors.New("reporting: nil result")

// TMYPDF renders the one-page TMY report.
func TMYPDF(res *meteoapp.TMYAnalysis, generated time.Time) ([]byte, error) {
	if res == nil || res.Dataset == nil {
		return nil, ErrNilResult
	}
	ds := res.Dataset
	p := newPage("TMY Report (PVsyst)", generated)

	p.line(fmt.Sprintf("File: %s", ds.SourceName))
	if v := ds.HeaderInfo[pvsyst.HeaderVersionKey]; v != "" {
		p.line(fmt.Sprintf("Source: %s", v))
	}
	p.line(fmt.Sprintf("Time step: %d min", ds.TimeStepMinutes))

	p.heading("Data quality")
	q := ds.Quality
	p.line(fmt.Sprintf("Rows: %s", FormatNumber(float64(q.NRows), 0)))
	p.line(fmt.Sprintf("Period: %s -> %s", formatTime(q.Start), formatTime(q.End)))
	if q.NNaN == 0 && q.NNaT == 0 {
		p.line("Missing values: none")
	} else {
		p.line(fmt.Sprintf("Missing values: %d NaN, %d NaT", q.NNaN, q.NNaT))
	}
	if q.Warning != "" {
		p.line("Warning: " + q.Warning)
	}

	p.heading("Statistics")
	rows := [][]string{{"Variable", "Unit", "Mean", "Min", "Max"}}
	for _, s := range res.Stats {
		rows = append(rows, []string{strings.ToUpper(s.Variable), s.Unit,
			FormatNumber(s.Mean, 2), FormatNumber(s.Min, 2), FormatNumber(s.Max, 2)})
	}
	p.table([]float64{30, 30, 35, 35, 35}, rows)

	p.heading("Annual irradiation (integrated)")
	for _, name := range meteo.IrradianceVariables {
		if v := res.Energy.Annual(name); v != nil {
			p.line(fmt.Sprintf("%-4s %s %s", strings.ToUpper(name), FormatNumber(*v, 1), res.Energy.Unit))
		}
	}

	if len(res.Warnings) > 0 {
		p.heading("Warnings")
		for _, w := range res.Warnings {
			p.line("- " + w)
		}
	}

	for _, v := range []string{meteo.GHI, meteo.Temp} {
		values, ok := ds.Frame.Column(v)
		if !ok {
			continue
		}
		p.pdf.Ln(3)
		p.lineChart(fmt.Sprintf("%s (%s)", strings.ToUpper(v), ds.Unit(v)),
			[]chartSeries{{index: ds.Frame.Index(), values: values}}, 180, 45)
	}
	return p.bytes()
}

// TMYXLSX renders statistics, energy, quality and units of a TMY analysis.
func TMYXLSX(res *meteoapp.TMYAnalysis) ([]byte, error) {
	if res == nil || res.Dataset == nil {
		return nil, ErrNilResult
	}
	ds := res.Dataset
	wb := newWorkbook()

	var stats [][]interface{}
	for _, s := range res.Stats {
		stats = append(stats, []interface{}{s.Variable, s.Unit, cellValue(s.Mean), cellValue(s.Min), cellValue(s.Max)})
	}
	wb.sheet("Statistics", []string{"Variable", "Unit", "Mean", "Min", "Max"}, stats)

	var energy [][]interface{}
	for _, name := range meteo.IrradianceVariables {
		if v := res.Energy.Annual(name); v != nil {
			energy = append(energy, []interface{}{name, cellValue(*v), res.Energy.Unit})
		}
	}
	wb.sheet("Energy", []string{"Variable", "Annual", "Unit"}, energy)

	q := ds.Quality
	wb.sheet("Quality", []string{"Key", "Value"}, [][]interface{}{
		{"File", ds.SourceName},
		{"Encoding", ds.Encoding},
		{"Rows", q.NRows},
		{"Start", formatTime(q.Start)},
		{"End", formatTime(q.End)},
		{"Missing values", q.NNaN},
		{"Invalid timestamps", q.NNaT},
		{"Time step (min)", ds.TimeStepMinutes},
		{"Warning", q.Warning},
	})

	wb.sheet("Units", []string{"Column", "Unit"}, unitRows(ds.Units))

	var warnings [][]interface{}
	for _, w := range res.Warnings {
		warnings = append(warnings, []interface{}{w})
	}
	wb.sheet("Warnings", []string{"Warning"}, warnings)
	return wb.bytes()
}

// ComparisonPDF renders the TMY comparison report.
func ComparisonPDF(res *meteoapp.TMYComparison, generated time.Time) ([]byte, error) {
	if res == nil || res.First == nil || res.Second == nil {
		return nil, ErrNilResult
	}
	cmp := res.Comparison
	p := newPage("TMY Comparison Report (PVsyst)", generated)

	p.line(fmt.Sprintf("File 1: %s", res.First.SourceName))
	p.line(fmt.Sprintf("File 2: %s", res.Second.SourceName))
	if cmp.Overlap {
		p.line(fmt.Sprintf("Common period: %s -> %s (%d rows)", formatTime(cmp.CommonStart), formatTime(cmp.CommonEnd), cmp.Rows))
	} else {
		p.line("Common period: none")
	}

	p.heading("Annual irradiation")
	for _, name := range meteo.IrradianceVariables {
		a, b := res.Energy1.Annual(name), res.Energy2.Annual(name)
		if a != nil && b != nil {
			p.line(fmt.Sprintf("%-4s %s vs %s %s", strings.ToUpper(name), FormatNumber(*a, 1), FormatNumber(*b, 1), res.Energy1.Unit))
		}
	}

	p.heading("Differences (File 1 vs File 2)")
	rows := [][]string{{"Variable", "Mean abs", "Max abs", "Mean %", "Max %"}}
	for _, v := range cmp.Variables {
		d := cmp.Diffs[v]
		rows = append(rows, []string{strings.ToUpper(v), FormatNumber(d.MeanAbs, 3), FormatNumber(d.MaxAbs, 3),
			FormatPercent(d.MeanPct), FormatPercent(d.MaxPct)})
	}
	p.table([]float64{30, 35, 35, 35, 35}, rows)
	p.pdf.Ln(3)
	if cmp.AlertFlag {
		p.line(fmt.Sprintf("ALERT: mean difference above %.1f %% detected.", cmp.Threshold))
	} else {
		p.line("Differences look generally consistent.")
	}

	if len(res.Warnings) > 0 {
		p.heading("Warnings")
		for _, w := range res.Warnings {
			p.line("- " + w)
		}
	}

	if cmp.Overlap {
		a := res.First.Frame.Window(cmp.CommonStart, cmp.CommonEnd)
		b := res.Second.Frame.Window(cmp.CommonStart, cmp.CommonEnd)
		for _, v := range []string{meteo.GHI, meteo.DNI, meteo.Temp} {
			va, okA := a.Column(v)
			vb, okB := b.Column(v)
			if !okA || !okB {
				continue
			}
			p.pdf.Ln(3)
			p.lineChart(strings.ToUpper(v)+" (blue: file 1, orange: file 2)", []chartSeries{
				{index: a.Index(), values: va},
				{index: b.Index(), values: vb},
			}, 180, 40)
		}
	}
	return p.bytes()
}

func unitRows(units map[string]string) [][]interface{} {
	keys := lo.Keys(units)
	sort.Strings(keys)
	rows := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []interface{}{k, units[k]})
	}
	return rows
}
