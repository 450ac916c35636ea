package l3_service

import (
	"context"
	"fmt"
	"runtime"
	"strategysim/internal/domain"
	"strategysim/internal/logger"
	l1_service "strategysim/internal/service/l1"
	l2_service "strategysim/internal/service/l2"
)

type SensitivityService interface {
	RunFullAnalysis(ctx context.Context, cfg domain.AnalysisConfig) (*domain.AnalysisResult, error)
}

type sensitivityServiceHandler struct {
	ObjectiveService l2_service.ObjectiveService
}

func NewSensitivityService(objectiveService l2_service.ObjectiveService) SensitivityService {
	return sensitivityServiceHandler{
		ObjectiveService: objectiveService,
	}
}

// analysisRun carries everything the phases share. it is built once per
// RunFullAnalysis call and only read afterwards
type analysisRun struct {
	cfg          domain.AnalysisConfig
	ranges       domain.RangeTable
	baseline     domain.ParameterSet
	sampler      l2_service.ParameterSampler
	simulator    l2_service.StrategySimulator
	commonSeed   int64
	workers      int
	baselineRun  domain.SimulationResult
	baselineMets domain.Metrics
}

// RunFullAnalysis runs baseline, sweeps, monte carlo, elasticity, stress
// and correlation in that order. each phase is fully materialised before
// the next one starts. configuration problems and a failed baseline are
// returned as errors; anything that goes wrong inside a batch is recorded
// on the affected entry instead
func (h sensitivityServiceHandler) RunFullAnalysis(ctx context.Context, cfg domain.AnalysisConfig) (*domain.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled before start: %w", err)
	}
	log := logger.FromContext(ctx)
	profile, endProfile := domain.GetProfile(ctx)

	run, err := h.newAnalysisRun(cfg)
	if err != nil {
		return nil, err
	}
	log.Infow("starting sensitivity analysis",
		"seed", run.cfg.Seed,
		"numSimulations", run.cfg.NumSimulations,
		"sweepPoints", run.cfg.SweepPoints,
		"workers", run.workers,
	)

	// only the monte carlo batch honours cancellation; the other phases are
	// small and always run so a cut short analysis is still complete
	phaseCtx := context.WithoutCancel(ctx)

	_, endSpan := profile.StartNewSpan("baseline")
	log.Info("phase: baseline")
	baselineResult, err := runRecovered(phaseCtx, 0, func(ctx context.Context, _ int) (*domain.SimulationResult, error) {
		return l2_service.NewStrategySimulator(run.cfg.Horizon, run.cfg.InitialCapital, true).Simulate(run.baseline, run.commonSeed)
	})
	endSpan()
	if err != nil {
		return nil, fmt.Errorf("failed to run baseline simulation: %w", err)
	}
	run.baselineRun = *baselineResult
	run.baselineMets = baselineResult.Metrics

	span, endSpan := profile.StartNewSpan("univariate sweeps")
	log.Info("phase: univariate sweeps")
	sweeps, numSweepRuns, err := h.runSweeps(phaseCtx, run)
	span.Count = numSweepRuns
	endSpan()
	if err != nil {
		return nil, err
	}

	span, endSpan = profile.StartNewSpan("monte carlo")
	log.Infof("phase: monte carlo (%d samples)", run.cfg.NumSimulations)
	samples, batch := h.runMonteCarlo(ctx, run)
	span.Count = batch.Completed
	endSpan()

	span, endSpan = profile.StartNewSpan("elasticity")
	log.Info("phase: elasticity")
	elasticity, numElasticityRuns := h.runElasticity(phaseCtx, run)
	span.Count = numElasticityRuns
	endSpan()

	scenarios := append(domain.DefaultStressScenarios(), run.cfg.ExtraScenarios...)
	span, endSpan = profile.StartNewSpan("stress scenarios")
	log.Info("phase: stress scenarios")
	stress := h.runStressTests(phaseCtx, run, scenarios)
	span.Count = len(scenarios)
	endSpan()

	_, endSpan = profile.StartNewSpan("correlation")
	log.Info("phase: correlation")
	correlation := CalculateCorrelationMatrix(samples)
	endSpan()

	_, endSpan = profile.StartNewSpan("summary")
	distribution := SummarizeDistribution(samples)
	risk := AssessRisk(samples, stress)
	insights := h.buildInsights(ctx, run, sweeps, samples, elasticity, correlation)
	endSpan()

	endProfile()

	log.Infow("sensitivity analysis complete",
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
		"skipped", batch.Skipped,
		"partial", batch.Partial,
	)

	return &domain.AnalysisResult{
		Seed:               run.cfg.Seed,
		NumSimulations:     run.cfg.NumSimulations,
		Ranges:             run.ranges,
		Baseline:           run.baseline,
		BaselineMetrics:    run.baselineRun,
		SensitivityMaps:    sweeps,
		MonteCarloResults:  samples,
		ElasticityAnalysis: elasticity,
		StressTestResults:  stress,
		CorrelationMatrix:  correlation,
		Batch:              batch,
		Distribution:       distribution,
		RiskAssessment:     risk,
		Insights:           insights,
		Profile:            profile,
	}, nil
}

func (h sensitivityServiceHandler) newAnalysisRun(cfg domain.AnalysisConfig) (*analysisRun, error) {
	cfg = cfg.WithDefaults()

	ranges, err := domain.DefaultRanges().WithOverrides(cfg.RangeOverrides)
	if err != nil {
		return nil, fmt.Errorf("failed to apply range overrides: %w", err)
	}
	sampler, err := l2_service.NewParameterSampler(ranges)
	if err != nil {
		return nil, fmt.Errorf("failed to build parameter sampler: %w", err)
	}

	baseline, err := domain.DefaultBaseline().ApplyOverrides(cfg.BaselineOverrides, ranges)
	if err != nil {
		return nil, fmt.Errorf("invalid baseline: %w", err)
	}

	if err := h.ObjectiveService.Validate(cfg.Objective); err != nil {
		return nil, fmt.Errorf("%w %q: %w", domain.ErrInvalidObjective, cfg.Objective, err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &analysisRun{
		cfg:        cfg,
		ranges:     ranges,
		baseline:   baseline,
		sampler:    sampler,
		simulator:  l2_service.NewStrategySimulator(cfg.Horizon, cfg.InitialCapital, false),
		commonSeed: l1_service.DeriveSeed(cfg.Seed, 0),
		workers:    workers,
	}, nil
}

// simulate runs one non monte carlo configuration on the common seed, so
// differences between runs come from parameters alone
func (r *analysisRun) simulate(params domain.ParameterSet) (*domain.SimulationResult, error) {
	if err := params.Validate(nil); err != nil {
		return nil, err
	}
	return r.simulator.Simulate(params, r.commonSeed)
}

// ratio is a / b, or 0 when b is zero
func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return l2_service.Sanitize(a / b)
}
