package application

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/samber/lo"

	"pvinsight/internal/ingest/pvsyst"
	"pvinsight/internal/observability/metrics"
	production "pvinsight/internal/production/domain"
)

// Options configures the hourly production pipeline.
type Options struct {
	MinValidRowRatio float64
	Analysis         production.Options
}

// DefaultOptions uses a 500 kW threshold.
func DefaultOptions() Options {
	return Options{
		MinValidRowRatio: pvsyst.DefaultMinValidRowRatio,
		Analysis:         production.Options{ThresholdKW: production.DefaultThresholdKW},
	}
}

// Service runs the hourly production pipeline.
type Service struct {
	logger   *log.Logger
	analyses []Analysis
}

// NewService constructs a Service running the full registry.
func NewService(logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{logger: logger, analyses: Registry()}
}

// AnalyzeHourly parses a PVsyst hourly results export and runs every analysis.
func (s *Service) AnalyzeHourly(ctx context.Context, data []byte, source string, opts Options) (*production.AnalysisContext, error) {
	start := time.Now()
	result := metrics.ResultError
	defer func() { metrics.ObservePipeline(metrics.PipelineHourly, result, time.Since(start)) }()

	if err := opts.Analysis.Validate(); err != nil {
		return nil, err
	}
	table, err := pvsyst.ParseTable(data, source, pvsyst.ParseOptions{
		RequiredColumns:  []string{production.ColumnGridEnergy},
		MinValidRowRatio: opts.MinValidRowRatio,
	})
	if err != nil {
		metrics.IncParseError(pvsyst.Reason(err))
		s.logger.Printf("hourly parse: rejected source=%s err=%v", source, err)
		return nil, err
	}

	frame, dropped := table.Frame.Normalize()
	actx := &production.AnalysisContext{
		SourceName:  source,
		GeneralInfo: lo.Assign(table.HeaderInfo),
		UnitsMap:    lo.Assign(table.Units),
		Data:        frame,
		Options:     opts.Analysis,
	}
	if table.DroppedTimestamps > 0 {
		actx.Warnings = append(actx.Warnings, fmt.Sprintf("%d row(s) with unparseable timestamps dropped", table.DroppedTimestamps))
	}
	if dropped > 0 {
		actx.Warnings = append(actx.Warnings, fmt.Sprintf("%d duplicate timestamp(s) dropped, first occurrence kept", dropped))
	}
	for _, w := range actx.Warnings {
		s.logger.Printf("hourly parse: warning source=%s msg=%q", source, w)
	}
	if err := RunAll(ctx, actx, s.analyses); err != nil {
		return nil, fmt.Errorf("production: run analyses: %w", err)
	}
	recordOutcomes(actx.Results)

	metrics.AddRows(metrics.PipelineHourly, frame.Len())
	metrics.AddWarnings(metrics.PipelineHourly, len(actx.Warnings))
	result = metrics.ResultSuccess
	s.logger.Printf("hourly analysis: done source=%s rows=%d threshold_kw=%.1f", source, frame.Len(), opts.Analysis.ThresholdKW)
	return actx, nil
}

func recordOutcomes(r production.Results) {
	if r.Threshold != nil {
		metrics.IncAnalysis(IDThreshold, "computed")
	}
	if r.PowerDistribution != nil {
		metrics.IncAnalysis(IDPowerDistribution, lo.Ternary(r.PowerDistribution.Available, "computed", "unavailable"))
	}
	if c := r.InverterClipping; c != nil {
		switch {
		case !c.Available:
			metrics.IncAnalysis(IDInverterClipping, "unavailable")
		case c.Empty:
			metrics.IncAnalysis(IDInverterClipping, "empty")
		default:
			metrics.IncAnalysis(IDInverterClipping, "computed")
		}
	}
}
