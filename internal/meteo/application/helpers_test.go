package application

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/timeseries"
)

var t0 = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

// pvsystCSV renders a minimal PVsyst export with n rows spaced by step.
func pvsystCSV(header, units string, n int, step time.Duration, row func(i int) string) []byte {
	var b strings.Builder
	b.WriteString("PVSYST V7.4\n")
	b.WriteString("Simulation date;;01/02/24 08:00\n\n")
	b.WriteString(header + "\n")
	b.WriteString(units + "\n")
	for i := 0; i < n; i++ {
		ts := t0.Add(time.Duration(i) * step)
		fmt.Fprintf(&b, "%s;%s\n", ts.Format("02/01/06 15:04"), row(i))
	}
	return []byte(b.String())
}

type column struct {
	name  string
	unit  string
	value func(i int) float64
}

func hourlyDataset(t *testing.T, name string, start time.Time, n int, cols ...column) *meteo.Dataset {
	t.Helper()
	index := make([]time.Time, n)
	for i := range index {
		index[i] = start.Add(time.Duration(i) * time.Hour)
	}
	frame := timeseries.NewFrame(index)
	units := make(map[string]string)
	for _, c := range cols {
		values := make([]float64, n)
		for i := range values {
			values[i] = c.value(i)
		}
		require.NoError(t, frame.SetColumn(c.name, values))
		units[c.name] = c.unit
	}
	return &meteo.Dataset{SourceName: name, Frame: frame, Units: units, TimeStepMinutes: 60}
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}
