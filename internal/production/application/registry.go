package application

import (
	"context"

	"golang.org/x/sync/errgroup"

	production "pvinsight/internal/production/domain"
)

// Analysis identifiers.
const (
	IDThreshold         = "threshold"
	IDPowerDistribution = "power_distribution"
	IDInverterClipping  = "inverter_clipping"
)

// Analysis is a named pure function over the shared context. Run writes only
// the result slot matching ID.
type Analysis struct {
	ID  string
	Run func(*production.AnalysisContext)
}

// Registry returns the closed set of production analyses.
func Registry() []Analysis {
	return []Analysis{
		{ID: IDThreshold, Run: AnalyzeThreshold},
		{ID: IDPowerDistribution, Run: AnalyzePowerDistribution},
		{ID: IDInverterClipping, Run: AnalyzeInverterClipping},
	}
}

// RunAll runs every analysis concurrently and waits for all of them.
// Analyses only read Data and Options, and each writes a distinct slot.
func RunAll(ctx context.Context, actx *production.AnalysisContext, analyses []Analysis) error {
	if actx == nil || actx.Data == nil {
		return production.ErrNilContext
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range analyses {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a.Run(actx)
			return nil
		})
	}
	return g.Wait()
}
