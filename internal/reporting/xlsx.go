package reporting

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// workbook collects sheets and remembers the first error, so builders can
// write cells without checking every call.
type workbook struct {
	f      *excelize.File
	sheets int
	bold   int
	err    error
}

func newWorkbook() *workbook {
	wb := &workbook{f: excelize.NewFile()}
	wb.bold, wb.err = wb.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	return wb
}

// sheet adds a sheet with a bold header row followed by rows.
func (wb *workbook) sheet(name string, header []string, rows [][]interface{}) {
	if wb.err != nil {
		return
	}
	if wb.sheets == 0 {
		wb.err = wb.f.SetSheetName("Sheet1", name)
	} else {
		_, wb.err = wb.f.NewSheet(name)
	}
	if wb.err != nil {
		return
	}
	wb.sheets++

	if err := wb.f.SetSheetRow(name, "A1", &header); err != nil {
		wb.err = err
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := wb.f.SetCellStyle(name, "A1", last, wb.bold); err != nil {
		wb.err = err
		return
	}
	for i, row := range rows {
		row := row
		if err := wb.f.SetSheetRow(name, fmt.Sprintf("A%d", i+2), &row); err != nil {
			wb.err = err
			return
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	wb.err = wb.f.SetColWidth(name, "A", lastCol, 18)
}

// columnChart inserts a clustered column chart of one data column.
func (wb *workbook) columnChart(sheet, anchor, title string, rows int, valueCol string) {
	if wb.err != nil || rows == 0 {
		return
	}
	wb.err = wb.f.AddChart(sheet, anchor, &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, valueCol),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, rows+1),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, valueCol, valueCol, rows+1),
		}},
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func (wb *workbook) bytes() ([]byte, error) {
	defer wb.f.Close()
	if wb.err != nil {
		return nil, wb.err
	}
	var buf bytes.Buffer
	if err := wb.f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
