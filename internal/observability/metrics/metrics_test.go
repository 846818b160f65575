package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePipelineCountsByResult(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(pipelineRuns.WithLabelValues(PipelineTMYAnalysis, ResultError))
	ObservePipeline(PipelineTMYAnalysis, ResultError, 10*time.Millisecond)
	after := testutil.ToFloat64(pipelineRuns.WithLabelValues(PipelineTMYAnalysis, ResultError))

	assert.Equal(t, before+1, after)
}

func TestAddRowsIgnoresNonPositive(t *testing.T) {
	Init()

	before := testutil.ToFloat64(rowsIngested.WithLabelValues(PipelineHourly))
	AddRows(PipelineHourly, 0)
	AddRows(PipelineHourly, -3)
	AddRows(PipelineHourly, 24)

	assert.Equal(t, before+24, testutil.ToFloat64(rowsIngested.WithLabelValues(PipelineHourly)))
}
