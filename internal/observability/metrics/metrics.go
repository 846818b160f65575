package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "pvinsight_"

	resultSuccess = "success"
	resultError   = "error"
)

// Pipeline names.
const (
	PipelineTMYAnalysis = "tmy_analysis"
	PipelineTMYCompare  = "tmy_compare"
	PipelineHourly      = "hourly_analysis"
)

var (
	registerOnce sync.Once

	pipelineRuns    *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec
	parseErrors     *prometheus.CounterVec
	rowsIngested    *prometheus.CounterVec
	warningsEmitted *prometheus.CounterVec

	comparisonAlerts prometheus.Counter

	analysisRuns *prometheus.CounterVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec
)

// Init registers the collectors with the default registry. It is safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		pipelineRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_runs_total",
				Help: "Total pipeline runs by pipeline and result",
			},
			[]string{"pipeline", "result"},
		)
		pipelineLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_latency_seconds",
				Help:    "Pipeline latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"pipeline", "result"},
		)
		parseErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parse_errors_total",
				Help: "Total rejected inputs by reason",
			},
			[]string{"reason"},
		)
		rowsIngested = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_ingested_total",
				Help: "Total data rows ingested by pipeline",
			},
			[]string{"pipeline"},
		)
		warningsEmitted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "warnings_total",
				Help: "Total degraded-data warnings by pipeline",
			},
			[]string{"pipeline"},
		)
		comparisonAlerts = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "comparison_alerts_total",
				Help: "Total comparisons whose mean difference exceeded the threshold",
			},
		)
		analysisRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "production_analysis_total",
				Help: "Total production analyses by analysis and outcome",
			},
			[]string{"analysis", "outcome"},
		)
		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			pipelineRuns,
			pipelineLatency,
			parseErrors,
			rowsIngested,
			warningsEmitted,
			comparisonAlerts,
			analysisRuns,
			reportExportTotal,
			reportExportLatency,
		)
	})
}

// ObservePipeline records pipeline latency and result.
func ObservePipeline(pipeline, result string, duration time.Duration) {
	if pipeline == "" {
		pipeline = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if pipelineRuns != nil {
		pipelineRuns.WithLabelValues(pipeline, result).Inc()
	}
	if pipelineLatency != nil {
		pipelineLatency.WithLabelValues(pipeline, result).Observe(duration.Seconds())
	}
}

// IncParseError increments the rejected input counter.
func IncParseError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if parseErrors != nil {
		parseErrors.WithLabelValues(reason).Inc()
	}
}

// AddRows adds ingested rows for a pipeline.
func AddRows(pipeline string, rows int) {
	if rows <= 0 {
		return
	}
	if rowsIngested != nil {
		rowsIngested.WithLabelValues(pipeline).Add(float64(rows))
	}
}

// AddWarnings adds emitted warnings for a pipeline.
func AddWarnings(pipeline string, count int) {
	if count <= 0 {
		return
	}
	if warningsEmitted != nil {
		warningsEmitted.WithLabelValues(pipeline).Add(float64(count))
	}
}

// IncComparisonAlert increments the comparison alert counter.
func IncComparisonAlert() {
	if comparisonAlerts != nil {
		comparisonAlerts.Inc()
	}
}

// IncAnalysis increments the production analysis counter.
func IncAnalysis(analysis, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	if analysisRuns != nil {
		analysisRuns.WithLabelValues(analysis, outcome).Inc()
	}
}

// ObserveReportExport records export latency and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
