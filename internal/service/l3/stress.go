package l3_service

import (
	"context"
	"fmt"
	"strategysim/internal/domain"
	"strategysim/internal/logger"
)

// runStressTests applies each scenario's overrides on top of baseline and
// reports every metric as a ratio to the baseline metric
func (h sensitivityServiceHandler) runStressTests(ctx context.Context, run *analysisRun, scenarios []domain.StressScenario) map[string]domain.StressTestResult {
	log := logger.FromContext(ctx)

	results := runWorkers(
		ctx,
		run.workers,
		len(scenarios),
		func(ctx context.Context, i int) (*domain.SimulationResult, error) {
			params, err := scenarioParameters(run, scenarios[i])
			if err != nil {
				return nil, err
			}
			return run.simulate(params)
		},
		nil,
	)

	out := map[string]domain.StressTestResult{}
	for i, scenario := range scenarios {
		params := run.baseline.Merge(scenario.Overrides)
		result := domain.StressTestResult{
			Parameters:          params,
			RelativeToBenchmark: map[domain.MetricName]float64{},
		}

		res := results[i]
		if res == nil || res.Err != nil {
			err := fmt.Errorf("scenario was not run")
			if res != nil {
				err = res.Err
			}
			log.Warnw("stress scenario failed", "scenario", scenario.Name, "error", err)
			result.Error = errString(err)
			for _, metric := range domain.AllMetrics {
				result.RelativeToBenchmark[metric] = 0
			}
		} else {
			result.Metrics = res.Value.Metrics
			for _, metric := range domain.AllMetrics {
				result.RelativeToBenchmark[metric] = ratio(res.Value.Metrics.Get(metric), run.baselineMets.Get(metric))
			}
		}

		if _, exists := out[scenario.Name]; exists {
			log.Warnf("duplicate stress scenario %s, keeping the last one", scenario.Name)
		}
		out[scenario.Name] = result
	}

	return out
}

func scenarioParameters(run *analysisRun, scenario domain.StressScenario) (domain.ParameterSet, error) {
	return run.baseline.ApplyOverrides(scenario.Overrides, run.ranges)
}
