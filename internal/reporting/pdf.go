package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"pvinsight/internal/timeseries"
)

// AppName is printed in report titles.
const AppName = "PVInsight"

// page wraps a gofpdf document with the helpers shared by all reports.
type page struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newPage(title string, generated time.Time) *page {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	stamp := generated.Format("02/01/2006 15:04")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, stamp, "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, p.tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	return p
}

func (p *page) heading(text string) {
	p.pdf.Ln(3)
	p.pdf.SetFont("Arial", "B", 12)
	p.pdf.Cell(0, 7, p.tr(text))
	p.pdf.Ln(8)
}

func (p *page) line(text string) {
	p.pdf.SetFont("Courier", "", 9)
	p.pdf.Cell(0, 5, p.tr(text))
	p.pdf.Ln(5)
}

// table draws a bordered grid; the first row is the header.
func (p *page) table(widths []float64, rows [][]string) {
	for r, row := range rows {
		style := ""
		fill := false
		if r == 0 {
			style = "B"
			fill = true
			p.pdf.SetFillColor(240, 240, 240)
		}
		p.pdf.SetFont("Arial", style, 8)
		for c, cell := range row {
			align := "R"
			if c == 0 || r == 0 {
				align = "L"
			}
			p.pdf.CellFormat(widths[c], 5.5, p.tr(cell), "1", 0, align, fill, 0, "")
		}
		p.pdf.Ln(-1)
	}
}

// barChart draws labelled vertical bars in the box at the current position.
func (p *page) barChart(title string, labels []string, values []float64, w, h float64) {
	pdf := p.pdf
	x0, y0 := pdf.GetX(), pdf.GetY()
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(w, 5, p.tr(title), "", 1, "C", false, 0, "")

	top := y0 + 6
	bottom := y0 + h - 8
	maxV := timeseries.Max(values)
	pdf.SetDrawColor(160, 160, 160)
	pdf.Line(x0, bottom, x0+w, bottom)
	if !(maxV > 0) {
		pdf.SetXY(x0, bottom+1)
		pdf.SetFont("Arial", "", 7)
		pdf.CellFormat(w, 4, "no data", "", 0, "C", false, 0, "")
		pdf.SetXY(x0, y0+h)
		return
	}

	slot := w / float64(len(values))
	pdf.SetFillColor(70, 130, 180)
	pdf.SetFont("Arial", "", 6)
	for i, v := range values {
		bx := x0 + float64(i)*slot + slot*0.15
		if timeseries.IsFinite(v) && v > 0 {
			bh := (bottom - top) * v / maxV
			pdf.Rect(bx, bottom-bh, slot*0.7, bh, "F")
		}
		pdf.SetXY(x0+float64(i)*slot, bottom+1)
		pdf.CellFormat(slot, 3, p.tr(labels[i]), "", 0, "C", false, 0, "")
	}
	pdf.SetXY(x0, top)
	pdf.CellFormat(w, 3, FormatNumber(maxV, 0), "", 0, "L", false, 0, "")
	pdf.SetXY(x0, y0+h)
}

// lineChart plots one or two series against their index.
func (p *page) lineChart(title string, series []chartSeries, w, h float64) {
	pdf := p.pdf
	x0, y0 := pdf.GetX(), pdf.GetY()
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(w, 5, p.tr(title), "", 1, "C", false, 0, "")
	top, bottom := y0+6, y0+h-4

	var all []float64
	var first, last time.Time
	for _, s := range series {
		all = append(all, s.values...)
		if len(s.index) == 0 {
			continue
		}
		if first.IsZero() || s.index[0].Before(first) {
			first = s.index[0]
		}
		if end := s.index[len(s.index)-1]; end.After(last) {
			last = end
		}
	}
	lo, hi := timeseries.Min(all), timeseries.Max(all)
	pdf.SetDrawColor(160, 160, 160)
	pdf.Rect(x0, top, w, bottom-top, "D")
	if !timeseries.IsFinite(lo) || !last.After(first) {
		pdf.SetXY(x0, y0+h)
		return
	}
	if hi == lo {
		hi = lo + 1
	}
	span := last.Sub(first).Seconds()
	colors := [][3]int{{70, 130, 180}, {220, 120, 40}}
	for n, s := range series {
		c := colors[n%len(colors)]
		pdf.SetDrawColor(c[0], c[1], c[2])
		pdf.SetLineWidth(0.15)
		prevOK := false
		var px, py float64
		for i, v := range s.values {
			if !timeseries.IsFinite(v) {
				prevOK = false
				continue
			}
			x := x0 + w*s.index[i].Sub(first).Seconds()/span
			y := bottom - (bottom-top)*(v-lo)/(hi-lo)
			if prevOK {
				pdf.Line(px, py, x, y)
			}
			px, py, prevOK = x, y, true
		}
	}
	pdf.SetLineWidth(0.2)
	pdf.SetFont("Arial", "", 6)
	pdf.SetXY(x0, top)
	pdf.CellFormat(w, 3, fmt.Sprintf("max %s", FormatNumber(hi, 2)), "", 0, "L", false, 0, "")
	pdf.SetXY(x0, bottom-3)
	pdf.CellFormat(w, 3, fmt.Sprintf("min %s", FormatNumber(lo, 2)), "", 0, "L", false, 0, "")
	pdf.SetXY(x0, y0+h)
}

type chartSeries struct {
	index  []time.Time
	values []float64
}

func (p *page) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
