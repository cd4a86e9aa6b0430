package analysis

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lmr105/supply-interruption-service/internal/domain"
	"github.com/lmr105/supply-interruption-service/internal/observability"
)

// Analyzer runs the derive-extract-aggregate pipeline for one dataset.
// Property groups are independent, so they fan out over a bounded worker
// pool; each worker writes only its own result slot.
type Analyzer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	workers int
}

// New creates an Analyzer. workers caps the per-group fan-out; values below
// one fall back to GOMAXPROCS.
func New(logger *slog.Logger, metrics *observability.Metrics, workers int) *Analyzer {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{
		logger:  logger,
		metrics: metrics,
		workers: workers,
	}
}

// CheckReadiness reports whether the analyzer can serve. Analysis is
// stateless, so the service is ready as soon as the process is up.
func (a *Analyzer) CheckReadiness(_ context.Context) error {
	return nil
}

// Analyze validates the inputs and runs the full pipeline: group properties
// by elevation, then per group derive the supply signal, extract
// interruptions, aggregate outages, and collate impact figures. The run is
// all-or-nothing: any malformed input aborts with no partial output.
func (a *Analyzer) Analyze(ctx context.Context, readings []domain.Reading, heights []float64, params Parameters) (*Result, error) {
	start := time.Now()
	params = params.withDefaults()

	if err := domain.ValidateReadings(readings); err != nil {
		a.metrics.AnalysisErrors.Inc()
		return nil, err
	}
	if len(heights) == 0 {
		a.metrics.AnalysisErrors.Inc()
		return nil, &domain.MalformedInputError{Field: "heights", Reason: "no property heights supplied"}
	}

	groups := domain.GroupProperties(heights)
	results := make([]GroupResult, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, group := range groups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.analyzeGroup(readings, group, params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.metrics.AnalysisErrors.Inc()
		return nil, err
	}

	result := a.collate(readings, results, params)

	a.metrics.AnalysesTotal.Inc()
	a.metrics.ReadingsPerAnalysis.Observe(float64(len(readings)))
	a.metrics.GroupsPerAnalysis.Observe(float64(len(groups)))
	a.metrics.OutagesFound.Add(float64(len(result.Outages)))
	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	a.logger.Info("analysis complete",
		"run_id", result.RunID,
		"readings", len(readings),
		"groups", len(groups),
		"outages", len(result.Outages),
		"total_impact", result.TotalImpact,
	)
	return result, nil
}

// analyzeGroup runs the per-elevation pipeline. Pure; no shared state.
func (a *Analyzer) analyzeGroup(readings []domain.Reading, group domain.PropertyGroup, params Parameters) GroupResult {
	signal := domain.DeriveStatus(readings, group.Height, params.LoggerHeight, params.Headloss, params.ReferenceOffset)
	interruptions := domain.ExtractInterruptions(readings, signal)

	return GroupResult{
		Group:          group,
		AlwaysInSupply: len(interruptions) == 0,
		Interruptions:  interruptions,
		Outages:        domain.AggregateOutages(group, interruptions, params.Thresholds),
		LastStatus:     domain.LastKnownStatus(readings, signal),
	}
}

// collate assembles the final result: the cross-group outage list ordered by
// height descending, per-outage impact and cost, and the run totals.
func (a *Analyzer) collate(readings []domain.Reading, groups []GroupResult, params Parameters) *Result {
	result := &Result{
		RunID:       uuid.NewString(),
		AnalyzedAt:  clock.Now(),
		Parameters:  params,
		WindowStart: readings[0].Timestamp,
		WindowEnd:   readings[len(readings)-1].Timestamp,
		Groups:      groups,
	}

	for gi := range groups {
		for oi := range groups[gi].Outages {
			o := &groups[gi].Outages[oi]
			o.Impact = domain.Impact(o.Cumulative, o.Count, params.NetworkProperties)
			if params.UnitCost > 0 {
				o.Cost = domain.Cost(o.Impact, params.UnitCost)
			}
			result.TotalImpact += o.Impact
			result.Outages = append(result.Outages, *o)
		}
	}
	domain.SortOutages(result.Outages)

	result.ImpactPerHour = domain.ImpactRate(result.TotalImpact, result.Window())
	if params.UnitCost > 0 {
		result.TotalCost = domain.Cost(result.TotalImpact, params.UnitCost)
	}
	return result
}
