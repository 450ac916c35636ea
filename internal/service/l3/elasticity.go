package l3_service

import (
	"context"
	"strategysim/internal/domain"
	"strategysim/internal/logger"
	l2_service "strategysim/internal/service/l2"
)

const elasticityPerturbation = 0.01

// runElasticity bumps each parameter by +-1% around baseline and reports
// the percentage change of every metric per percentage change of input.
// perturbed values may step just outside the sampling range; only
// presence and finiteness are checked for them
func (h sensitivityServiceHandler) runElasticity(ctx context.Context, run *analysisRun) (domain.ElasticityAnalysis, int) {
	log := logger.FromContext(ctx)
	keys := domain.AllParameterKeys()

	// job 2k is the up move for keys[k], 2k+1 the down move
	results := runWorkers(
		ctx,
		run.workers,
		2*len(keys),
		func(ctx context.Context, i int) (*domain.SimulationResult, error) {
			key := keys[i/2]
			base, err := run.baseline.Get(key.Category, key.Parameter)
			if err != nil {
				return nil, err
			}
			factor := 1 + elasticityPerturbation
			if i%2 == 1 {
				factor = 1 - elasticityPerturbation
			}
			return run.simulate(run.baseline.With(key.Category, key.Parameter, base*factor))
		},
		nil,
	)

	out := domain.ElasticityAnalysis{}
	for k, key := range keys {
		if _, ok := out[key.Category]; !ok {
			out[key.Category] = map[string]map[domain.MetricName]float64{}
		}
		values := map[domain.MetricName]float64{}
		up, down := results[2*k], results[2*k+1]

		for _, metric := range domain.AllMetrics {
			values[metric] = 0
		}
		if up == nil || down == nil || up.Err != nil || down.Err != nil {
			log.Warnw("elasticity run failed, reporting 0", "parameter", key.String())
			out[key.Category][key.Parameter] = values
			continue
		}
		for _, metric := range domain.AllMetrics {
			values[metric] = Elasticity(
				up.Value.Metrics.Get(metric),
				down.Value.Metrics.Get(metric),
				run.baselineMets.Get(metric),
			)
		}
		out[key.Category][key.Parameter] = values
	}

	return out, len(results)
}

// Elasticity is ((up - down) / (2 * base)) / (2 * 0.01), zero when the
// baseline metric is zero
func Elasticity(up, down, base float64) float64 {
	if base == 0 {
		return 0
	}
	return l2_service.Sanitize(((up - down) / (2 * base)) / (2 * elasticityPerturbation))
}
