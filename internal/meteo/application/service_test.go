package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvinsight/internal/ingest/pvsyst"
	meteo "pvinsight/internal/meteo/domain"
)

func hourlyTMY(n int, ghi float64) []byte {
	return pvsystCSV("date;GlobHor;DiffHor;BeamNor;T_Amb", ";W/m2;W/m2;W/m2;deg.C", n, time.Hour, func(i int) string {
		return fmt.Sprintf("%g;%g;%g;%d", ghi, ghi/2, ghi/4, i%30)
	})
}

func TestService_AnalyzeTMY(t *testing.T) {
	svc := NewService(nil)

	res, err := svc.AnalyzeTMY(context.Background(), hourlyTMY(48, 800), "site.csv", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "site.csv", res.Dataset.SourceName)
	assert.Equal(t, "PVSYST V7.4", res.Dataset.HeaderInfo[pvsyst.HeaderVersionKey])
	assert.Equal(t, 48, res.Dataset.Quality.NRows)
	require.Len(t, res.Stats, 4)
	assert.Equal(t, meteo.GHI, res.Stats[0].Variable)
	assert.InDelta(t, 0.8, res.Stats[0].Mean, 1e-9)
	assert.InDelta(t, 29.0, res.Stats[3].Max, 1e-9)

	require.NotNil(t, res.Energy.AnnualGHI)
	assert.InDelta(t, 48*0.8, *res.Energy.AnnualGHI, 1e-9)
	assert.Contains(t, res.Warnings[len(res.Warnings)-1], "expected about 8760 h", "energy warnings are merged last")
}

func TestService_AnalyzeTMYPropagatesParseErrors(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.AnalyzeTMY(context.Background(), []byte("nothing here"), "bad.csv", DefaultOptions())
	assert.ErrorIs(t, err, pvsyst.ErrStructural)
}

func TestService_AnalyzeTMYHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(nil).AnalyzeTMY(ctx, hourlyTMY(2, 1), "site.csv", DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_CompareTMY(t *testing.T) {
	svc := NewService(nil)
	opts := DefaultOptions()

	res, err := svc.CompareTMY(context.Background(), hourlyTMY(24, 110), "a.csv", hourlyTMY(24, 100), "b.csv", opts)
	require.NoError(t, err)

	assert.True(t, res.Comparison.Overlap)
	assert.Equal(t, 24, res.Comparison.Rows)
	assert.True(t, res.Comparison.AlertFlag)
	assert.InDelta(t, 10.0, res.Comparison.Diffs[meteo.GHI].MeanPct, 1e-9)
	require.NotNil(t, res.Energy1.AnnualGHI)
	require.NotNil(t, res.Energy2.AnnualGHI)
	assert.Greater(t, *res.Energy1.AnnualGHI, *res.Energy2.AnnualGHI)
}
