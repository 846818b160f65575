package reporting

import (
	"fmt"
	"time"

	"pvinsight/internal/ingest/pvsyst"
	production "pvinsight/internal/production/domain"
)

// HourlyXLSX exports every production analysis plus the hourly data.
func HourlyXLSX(actx *production.AnalysisContext) ([]byte, error) {
	if actx == nil || actx.Results.Threshold == nil {
		return nil, ErrNilResult
	}
	res := actx.Results
	th := res.Threshold
	wb := newWorkbook()

	wb.sheet("Summary", []string{"Key", "Value"}, [][]interface{}{
		{"PVsyst version", actx.GeneralInfo[pvsyst.HeaderVersionKey]},
		{"File", actx.SourceName},
		{"Simulation date", actx.GeneralInfo["simulation_date"]},
		{"Threshold (kW)", FormatNumber(th.Summary.ThresholdKW, 1)},
		{"Operating hours (h)", FormatNumber(float64(th.Summary.HoursProduction), 0)},
		{"Hours above threshold (h)", FormatNumber(float64(th.Summary.HoursAbove), 0)},
		{"Operating time above threshold (%)", FormatPercent(th.Summary.PctAboveProdTime)},
		{"Energy above threshold (kWh)", FormatNumber(th.Summary.EnergyAboveKWh, 0)},
	})

	var monthly, monthlyPct [][]interface{}
	for _, m := range th.Monthly {
		monthly = append(monthly, []interface{}{MonthName(m.Month), m.HoursAbove, m.EnergyAboveKWh, m.HoursProduction})
		monthlyPct = append(monthlyPct, []interface{}{MonthName(m.Month), FormatPercent(m.PctAbove)})
	}
	wb.sheet("Threshold monthly", []string{"Month", "Hours above", "Energy above (kWh)", "Operating hours"}, monthly)
	wb.columnChart("Threshold monthly", "F2", "Monthly hours above threshold", len(monthly), "B")

	var seasonal [][]interface{}
	for _, s := range th.Seasonal {
		seasonal = append(seasonal, []interface{}{SeasonLabel(s.Season), s.HoursAbove, s.EnergyAboveKWh})
	}
	wb.sheet("Threshold seasonal", []string{"Season", "Hours above", "Energy above (kWh)"}, seasonal)
	wb.columnChart("Threshold seasonal", "E2", "Seasonal hours above threshold", len(seasonal), "B")

	wb.sheet("Threshold monthly %", []string{"Month", "% of operating time above"}, monthlyPct)

	if pd := res.PowerDistribution; pd != nil && pd.Available {
		var rows [][]interface{}
		for _, c := range pd.Classes {
			rows = append(rows, []interface{}{c.Label, c.Hours, FormatPercent(c.PctTime), FormatNumber(c.EnergyKWh, 0)})
		}
		wb.sheet("Power distribution", []string{"Class", "Hours", "% of time", "Energy (kWh)"}, rows)
	}

	if c := res.InverterClipping; c != nil {
		wb.sheet("Inverter clipping", []string{"Key", "Value"}, clippingRows(c))
		if c.Available && !c.Empty {
			var rows [][]interface{}
			for _, m := range c.Monthly {
				rows = append(rows, []interface{}{MonthName(m.Month), m.EnergyClippedKWh, FormatPercent(m.PctClipping)})
			}
			wb.sheet("Clipping monthly", []string{"Month", "Clipped energy (kWh)", "% of potential"}, rows)
		}
	}

	names := actx.Data.Names()
	header := append([]string{"date"}, names...)
	data := make([][]interface{}, 0, actx.Data.Len())
	for i, ts := range actx.Data.Index() {
		row := make([]interface{}, 0, len(header))
		row = append(row, ts.Format("2006-01-02 15:04"))
		for _, name := range names {
			values, _ := actx.Data.Column(name)
			row = append(row, cellValue(values[i]))
		}
		data = append(data, row)
	}
	wb.sheet("Hourly data", header, data)
	wb.sheet("Units", []string{"Parameter", "Unit"}, unitRows(actx.UnitsMap))
	return wb.bytes()
}

// HourlyPDF renders the production summary with the monthly bar chart.
func HourlyPDF(actx *production.AnalysisContext, generated time.Time) ([]byte, error) {
	if actx == nil || actx.Results.Threshold == nil {
		return nil, ErrNilResult
	}
	res := actx.Results
	th := res.Threshold
	p := newPage(AppName+" - Hourly results", generated)

	p.heading("Summary")
	p.table([]float64{75, 65}, [][]string{
		{"Key", "Value"},
		{"PVsyst version", actx.GeneralInfo[pvsyst.HeaderVersionKey]},
		{"File", actx.SourceName},
		{"Simulation date", actx.GeneralInfo["simulation_date"]},
		{"Threshold (kW)", FormatNumber(th.Summary.ThresholdKW, 1)},
		{"Operating hours (h)", FormatNumber(float64(th.Summary.HoursProduction), 0)},
		{"Hours above threshold (h)", FormatNumber(float64(th.Summary.HoursAbove), 0)},
		{"Operating time above threshold", FormatPercent(th.Summary.PctAboveProdTime)},
		{"Energy above threshold (kWh)", FormatNumber(th.Summary.EnergyAboveKWh, 0)},
	})

	p.heading("Monthly breakdown")
	rows := [][]string{{"Month", "Hours above (h)", "Energy (kWh)", "% of operating time"}}
	labels := make([]string, 0, len(th.Monthly))
	hoursAbove := make([]float64, 0, len(th.Monthly))
	for _, m := range th.Monthly {
		rows = append(rows, []string{MonthName(m.Month), FormatNumber(float64(m.HoursAbove), 0),
			FormatNumber(m.EnergyAboveKWh, 0), FormatPercent(m.PctAbove)})
		labels = append(labels, MonthName(m.Month)[:3])
		hoursAbove = append(hoursAbove, float64(m.HoursAbove))
	}
	p.table([]float64{40, 35, 35, 40}, rows)
	p.pdf.Ln(4)
	p.barChart("Monthly hours above threshold", labels, hoursAbove, 150, 55)

	if pd := res.PowerDistribution; pd != nil && pd.Available {
		p.heading("Power distribution")
		rows := [][]string{{"Class", "% of time", "Energy (kWh)"}}
		for _, c := range pd.Classes {
			rows = append(rows, []string{c.Label, FormatPercent(c.PctTime), FormatNumber(c.EnergyKWh, 0)})
		}
		p.table([]float64{50, 40, 40}, rows)
	}

	if c := res.InverterClipping; c != nil {
		p.heading("Inverter clipping")
		rows := [][]string{{"Key", "Value"}}
		for _, r := range clippingRows(c) {
			rows = append(rows, []string{fmt.Sprint(r[0]), fmt.Sprint(r[1])})
		}
		p.table([]float64{75, 65}, rows)
	}

	if len(actx.Warnings) > 0 {
		p.heading("Warnings")
		for _, w := range actx.Warnings {
			p.line("- " + w)
		}
	}
	return p.bytes()
}

func clippingRows(c *production.ClippingResult) [][]interface{} {
	switch {
	case !c.Available:
		rows := [][]interface{}{{"Status", "unavailable"}}
		for _, col := range c.MissingColumns {
			rows = append(rows, []interface{}{"Missing column " + col, fmt.Sprintf("did you mean: %v", c.Suggestions[col])})
		}
		return rows
	case c.Empty:
		return [][]interface{}{{"Status", "no inverter output or clipping"}}
	default:
		return [][]interface{}{
			{"Clipped energy (kWh)", FormatNumber(c.Summary.EnergyClippedKWh, 0)},
			{"Share of potential output", FormatPercent(c.Summary.PctOfInverterOutput)},
			{"Hours with clipping", c.Summary.HoursClipping},
		}
	}
}
