package pvsyst

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHourly = `PVSYST V7.4.6
Simulation date;;12/03/24 10:15
Project;;Demo site

date;E_Grid;EOutInv;IL_Pmax;;
;kW;kW;kW;;
01/06/90 10:00;0;0;0
01/06/90 11:00;100,5;101;0
01/06/90 12:00;600;610;12.5
01/06/90 13:00;bad;600
not a date;1;1;1
`

func TestParseTable_ReadsHeaderUnitsAndRows(t *testing.T) {
	table, err := ParseTable([]byte(sampleHourly), "hourly.csv", ParseOptions{RequiredColumns: []string{"E_Grid"}})
	require.NoError(t, err)

	assert.Equal(t, "hourly.csv", table.Source)
	assert.Equal(t, EncodingUTF8, table.Encoding)
	assert.Equal(t, "PVSYST V7.4.6", table.HeaderInfo[HeaderVersionKey])
	assert.Equal(t, "12/03/24 10:15", table.HeaderInfo["simulation_date"])
	assert.Equal(t, []string{"E_Grid", "EOutInv", "IL_Pmax"}, table.Headers)
	assert.Equal(t, "kW", table.Units["E_Grid"])
	assert.Equal(t, 1, table.DroppedTimestamps)
	assert.Equal(t, 4, table.Frame.Len())
	assert.Equal(t, 4, table.ValidRows)

	grid, ok := table.Frame.Column("E_Grid")
	require.True(t, ok)
	assert.InDelta(t, 100.5, grid[1], 1e-9)
	assert.True(t, math.IsNaN(grid[3]))

	clip, _ := table.Frame.Column("IL_Pmax")
	assert.InDelta(t, 12.5, clip[2], 1e-9)
	assert.True(t, math.IsNaN(clip[3]), "short rows are padded with missing values")

	assert.Equal(t, time.Date(1990, 6, 1, 12, 0, 0, 0, time.UTC), table.Frame.Index()[2])
}

func TestParseTable_HeaderMarkerIsCaseInsensitive(t *testing.T) {
	data := "DATE;GlobHor\n;W/m2\n01/01/90 00:00;0\n"
	table, err := ParseTable([]byte(data), "tmy.csv", ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Frame.Len())
}

func TestParseTable_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "no table", data: "PVSYST\nfoo;bar\n", want: ErrMissingTable},
		{name: "no units line", data: "date;GlobHor", want: ErrMissingUnits},
		{name: "blank units line", data: "date;GlobHor\n\n01/01/90 00:00;1\n", want: ErrMissingUnits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.data), "x.csv", ParseOptions{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrStructural)

			var structural *StructuralError
			require.True(t, errors.As(err, &structural))
			assert.NotEmpty(t, structural.Marker)
		})
	}
}

func TestParseTable_MissingRequiredColumn(t *testing.T) {
	data := "date;EOutInv\n;kW\n01/01/90 00:00;1\n"
	_, err := ParseTable([]byte(data), "x.csv", ParseOptions{RequiredColumns: []string{"E_Grid"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"E_Grid"}, missing.Columns)
}

func TestParseTable_ThousandsSeparatorTripsLowDataQuality(t *testing.T) {
	var b strings.Builder
	b.WriteString("date;GlobHor;T_Amb\n;W/m2;deg.C\n")
	for h := 0; h < 10; h++ {
		b.WriteString("01/01/90 ")
		b.WriteString(time.Date(1990, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04"))
		b.WriteString(";1.234,5;2.345,6\n")
	}

	_, err := ParseTable([]byte(b.String()), "x.csv", ParseOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLowDataQuality)

	var low *LowDataQualityError
	require.True(t, errors.As(err, &low))
	assert.Equal(t, 0, low.ValidRows)
	assert.Equal(t, 10, low.TotalRows)
}

func TestParseTable_NoRowsIsNotLowQuality(t *testing.T) {
	table, err := ParseTable([]byte("date;GlobHor\n;W/m2\n"), "x.csv", ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, table.Frame.Len())
	assert.True(t, table.Frame.Has("GlobHor"))
}

func TestParseTable_DuplicateHeadersAreSuffixed(t *testing.T) {
	table, err := ParseTable([]byte("date;T_Amb;T_Amb\n;C;C\n01/01/90 00:00;1;2\n"), "x.csv", ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T_Amb", "T_Amb_2"}, table.Headers)
}

func TestDecode_FallsBackToWindows1252(t *testing.T) {
	raw := []byte("date;GlobHor\n;W/m\xb2\n01/01/90 00:00;5\n")

	table, err := ParseTable(raw, "legacy.csv", ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, EncodingWindows1252, table.Encoding)
	assert.Equal(t, "W/m²", table.Units["GlobHor"])
}

func TestDecode_StripsBOM(t *testing.T) {
	text, enc := Decode([]byte("\xef\xbb\xbfdate;x"))
	assert.Equal(t, EncodingUTF8, enc)
	assert.Equal(t, "date;x", text)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12,5", 12.5},
		{" 7.25 ", 7.25},
		{"1\u00a0000", 1000},
		{"-3", -3},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ParseNumber(tt.in), 1e-9, tt.in)
	}
	assert.True(t, math.IsNaN(ParseNumber("")))
	assert.True(t, math.IsNaN(ParseNumber("n/a")))
	assert.True(t, math.IsNaN(ParseNumber("1.234,5")))
	for _, raw := range []string{"inf", "Infinity", "-Inf", "+INF"} {
		assert.True(t, math.IsNaN(ParseNumber(raw)), raw)
	}
}
