package application

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/samber/lo"

	"pvinsight/internal/ingest/pvsyst"
	meteo "pvinsight/internal/meteo/domain"
	"pvinsight/internal/observability/metrics"
)

// Options groups every knob of the weather pipelines.
type Options struct {
	MinValidRowRatio float64
	Normalize        NormalizeOptions
	Energy           EnergyOptions
	ThresholdPct     float64
}

// DefaultOptions mirrors the defaults of the upload forms.
func DefaultOptions() Options {
	return Options{
		MinValidRowRatio: pvsyst.DefaultMinValidRowRatio,
		Normalize:        DefaultNormalizeOptions(),
		Energy:           DefaultEnergyOptions(),
		ThresholdPct:     DefaultThresholdPct,
	}
}

// TMYAnalysis is the result bundle of one TMY file.
type TMYAnalysis struct {
	Dataset  *meteo.Dataset
	Stats    []meteo.VariableStats
	Energy   meteo.EnergySummary
	Warnings []string
}

// TMYComparison is the result bundle of two TMY files.
type TMYComparison struct {
	First      *meteo.Dataset
	Second     *meteo.Dataset
	Comparison meteo.ComparisonResult
	Energy1    meteo.EnergySummary
	Energy2    meteo.EnergySummary
	Warnings   []string
}

// Service runs the weather pipelines. It holds no state between calls.
type Service struct {
	logger *log.Logger
}

// NewService constructs a Service.
func NewService(logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{logger: logger}
}

// AnalyzeTMY parses, normalizes and summarizes one TMY export.
func (s *Service) AnalyzeTMY(ctx context.Context, data []byte, source string, opts Options) (*TMYAnalysis, error) {
	start := time.Now()
	result := metrics.ResultError
	defer func() { metrics.ObservePipeline(metrics.PipelineTMYAnalysis, result, time.Since(start)) }()

	ds, err := s.load(ctx, data, source, opts)
	if err != nil {
		return nil, err
	}
	energy, err := IntegrateEnergy(ds, opts.Energy)
	if err != nil {
		return nil, err
	}

	out := &TMYAnalysis{
		Dataset:  ds,
		Stats:    BasicStats(ds),
		Energy:   energy,
		Warnings: lo.Flatten([][]string{ds.Warnings, energy.Warnings}),
	}
	metrics.AddRows(metrics.PipelineTMYAnalysis, ds.Frame.Len())
	metrics.AddWarnings(metrics.PipelineTMYAnalysis, len(out.Warnings))
	result = metrics.ResultSuccess
	s.logger.Printf("tmy analysis: done source=%s rows=%d step=%d warnings=%d", source, ds.Frame.Len(), ds.TimeStepMinutes, len(out.Warnings))
	return out, nil
}

// CompareTMY normalizes two TMY exports with the same options and diffs them
// over their common period.
func (s *Service) CompareTMY(ctx context.Context, data1 []byte, name1 string, data2 []byte, name2 string, opts Options) (*TMYComparison, error) {
	start := time.Now()
	result := metrics.ResultError
	defer func() { metrics.ObservePipeline(metrics.PipelineTMYCompare, result, time.Since(start)) }()

	first, err := s.load(ctx, data1, name1, opts)
	if err != nil {
		return nil, err
	}
	second, err := s.load(ctx, data2, name2, opts)
	if err != nil {
		return nil, err
	}
	cmp, err := Compare(first, second, opts.ThresholdPct)
	if err != nil {
		return nil, err
	}
	energy1, err := IntegrateEnergy(first, opts.Energy)
	if err != nil {
		return nil, err
	}
	energy2, err := IntegrateEnergy(second, opts.Energy)
	if err != nil {
		return nil, err
	}

	out := &TMYComparison{
		First:      first,
		Second:     second,
		Comparison: cmp,
		Energy1:    energy1,
		Energy2:    energy2,
		Warnings:   lo.Flatten([][]string{first.Warnings, second.Warnings, energy1.Warnings, energy2.Warnings}),
	}
	if !cmp.Overlap {
		out.Warnings = append(out.Warnings, "the two series share no common period")
	}
	if cmp.AlertFlag {
		metrics.IncComparisonAlert()
	}
	metrics.AddRows(metrics.PipelineTMYCompare, first.Frame.Len()+second.Frame.Len())
	metrics.AddWarnings(metrics.PipelineTMYCompare, len(out.Warnings))
	result = metrics.ResultSuccess
	s.logger.Printf("tmy compare: done first=%s second=%s rows=%d alert=%t", name1, name2, cmp.Rows, cmp.AlertFlag)
	return out, nil
}

func (s *Service) load(ctx context.Context, data []byte, source string, opts Options) (*meteo.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := pvsyst.ParseTable(data, source, pvsyst.ParseOptions{MinValidRowRatio: opts.MinValidRowRatio})
	if err != nil {
		metrics.IncParseError(pvsyst.Reason(err))
		s.logger.Printf("tmy parse: rejected source=%s err=%v", source, err)
		return nil, err
	}
	return Normalize(table, opts.Normalize)
}
