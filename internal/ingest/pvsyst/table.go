package pvsyst

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"pvinsight/internal/timeseries"
)

const (
	// Delimiter separates fields in PVsyst CSV exports.
	Delimiter = ";"
	// DateColumn is the first header field of the hourly table.
	DateColumn = "date"
	// DateLayout parses PVsyst timestamps such as "01/01/90 09:00".
	DateLayout = "02/01/06 15:04"
	// DefaultMinValidRowRatio is the share of rows that must carry a numeric value.
	DefaultMinValidRowRatio = 0.5
)

// ParseOptions tunes table parsing.
type ParseOptions struct {
	// RequiredColumns must appear in the header, otherwise parsing fails.
	RequiredColumns []string
	// MinValidRowRatio defaults to DefaultMinValidRowRatio when zero.
	MinValidRowRatio float64
	// Markers defaults to DefaultMarkers when nil.
	Markers []MetadataMarker
	// Location defaults to UTC.
	Location *time.Location
}

// Table is the header/units/rows triple read from an export.
// Frame keeps the file order; timestamps may be unsorted or duplicated.
type Table struct {
	Source            string
	Encoding          string
	HeaderInfo        map[string]string
	Headers           []string
	Units             map[string]string
	Frame             *timeseries.Frame
	DroppedTimestamps int
	ValidRows         int
}

// ParseTable reads a semicolon-separated PVsyst export.
func ParseTable(data []byte, source string, opts ParseOptions) (*Table, error) {
	if opts.MinValidRowRatio <= 0 {
		opts.MinValidRowRatio = DefaultMinValidRowRatio
	}
	if opts.Markers == nil {
		opts.Markers = DefaultMarkers
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	text, enc := Decode(data)
	lines := splitLines(text)

	headerIdx := findHeader(lines)
	if headerIdx < 0 {
		return nil, &StructuralError{Marker: DateColumn + Delimiter, Err: ErrMissingTable}
	}
	if headerIdx+1 >= len(lines) || strings.TrimSpace(lines[headerIdx+1]) == "" {
		return nil, &StructuralError{Marker: "units line", Err: ErrMissingUnits}
	}

	rawHeaders := splitFields(lines[headerIdx])
	rawUnits := splitFields(lines[headerIdx+1])

	// positions[i] is the field index of headers[i]; column 0 is the date.
	var headers []string
	var positions []int
	seen := make(map[string]int)
	units := make(map[string]string)
	for pos := 1; pos < len(rawHeaders); pos++ {
		name := rawHeaders[pos]
		if name == "" {
			continue
		}
		seen[name]++
		if seen[name] > 1 {
			name = fmt.Sprintf("%s_%d", name, seen[name])
		}
		headers = append(headers, name)
		positions = append(positions, pos)
		if pos < len(rawUnits) {
			units[name] = rawUnits[pos]
		} else {
			units[name] = ""
		}
	}

	if missing := missingColumns(headers, opts.RequiredColumns); len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}

	var index []time.Time
	values := make([][]float64, len(headers))
	dropped := 0
	valid := 0
	for _, line := range lines[headerIdx+2:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)
		ts, err := time.ParseInLocation(DateLayout, fields[0], opts.Location)
		if err != nil {
			dropped++
			continue
		}
		rowValid := false
		for i, pos := range positions {
			v := math.NaN()
			if pos < len(fields) {
				v = ParseNumber(fields[pos])
			}
			if timeseries.IsFinite(v) {
				rowValid = true
			}
			values[i] = append(values[i], v)
		}
		if rowValid {
			valid++
		}
		index = append(index, ts)
	}

	if total := len(index); total > 0 && float64(valid)/float64(total) < opts.MinValidRowRatio {
		return nil, &LowDataQualityError{ValidRows: valid, TotalRows: total, MinRatio: opts.MinValidRowRatio}
	}

	frame := timeseries.NewFrame(index)
	for i, name := range headers {
		column := values[i]
		if column == nil {
			column = []float64{}
		}
		if err := frame.SetColumn(name, column); err != nil {
			return nil, fmt.Errorf("pvsyst: column %s: %w", name, err)
		}
	}

	return &Table{
		Source:            source,
		Encoding:          enc,
		HeaderInfo:        parseHeaderInfo(lines[:headerIdx], opts.Markers),
		Headers:           headers,
		Units:             units,
		Frame:             frame,
		DroppedTimestamps: dropped,
		ValidRows:         valid,
	}, nil
}

// ParseNumber accepts both comma and dot decimal separators.
// Unparseable and infinite cells yield NaN.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", ""))
	if s == "" {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !timeseries.IsFinite(v) {
		return math.NaN()
	}
	return v
}

func findHeader(lines []string) int {
	for i, line := range lines {
		fields := strings.SplitN(line, Delimiter, 2)
		if len(fields) == 2 && strings.EqualFold(strings.TrimSpace(fields[0]), DateColumn) {
			return i
		}
	}
	return -1
}

func splitFields(line string) []string {
	fields := strings.Split(line, Delimiter)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func missingColumns(headers, required []string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := present[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}
