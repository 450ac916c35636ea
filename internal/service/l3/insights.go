package l3_service

import (
	"context"
	"math"
	"sort"
	"strategysim/internal/domain"
	"strategysim/internal/logger"
	l2_service "strategysim/internal/service/l2"
)

const (
	criticalElasticity     = 1.0
	significantCorrelation = 0.3
	optimalSampleFraction  = 0.05
)

func (h sensitivityServiceHandler) buildInsights(
	ctx context.Context,
	run *analysisRun,
	sweeps domain.SensitivityMaps,
	samples []domain.MonteCarloSample,
	elasticity domain.ElasticityAnalysis,
	correlation domain.CorrelationMatrix,
) domain.Insights {
	log := logger.FromContext(ctx)

	optimal, topCount, err := h.optimalParameters(run, samples)
	if err != nil {
		log.Warnf("failed to rank samples by objective %q: %v", run.cfg.Objective, err)
	}

	return domain.Insights{
		CriticalElasticities:    CriticalElasticities(elasticity),
		SignificantCorrelations: SignificantCorrelations(correlation),
		SensitivityRanges:       SweepRanges(sweeps),
		Objective:               run.cfg.Objective,
		TopSampleCount:          topCount,
		OptimalParameters:       optimal,
	}
}

// CriticalElasticities lists every |elasticity| above 1, largest first
func CriticalElasticities(elasticity domain.ElasticityAnalysis) []domain.ElasticityRecord {
	out := []domain.ElasticityRecord{}
	for _, key := range domain.AllParameterKeys() {
		for _, metric := range domain.AllMetrics {
			v := elasticity[key.Category][key.Parameter][metric]
			if math.Abs(v) > criticalElasticity {
				out = append(out, domain.ElasticityRecord{
					Category:  key.Category,
					Parameter: key.Parameter,
					Metric:    metric,
					Value:     v,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	return out
}

// SignificantCorrelations lists every |r| above 0.3, strongest first
func SignificantCorrelations(correlation domain.CorrelationMatrix) []domain.CorrelationRecord {
	out := []domain.CorrelationRecord{}
	for _, key := range domain.AllParameterKeys() {
		for _, metric := range domain.AllMetrics {
			v := correlation[key.String()][metric]
			if math.Abs(v) > significantCorrelation {
				out = append(out, domain.CorrelationRecord{
					Parameter: key.String(),
					Metric:    metric,
					Value:     v,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	return out
}

// SweepRanges is the spread of total return across each parameter's
// sweep, widest first. failed sweep points are ignored
func SweepRanges(sweeps domain.SensitivityMaps) []domain.SensitivityRange {
	out := []domain.SensitivityRange{}
	for _, key := range domain.AllParameterKeys() {
		entries := sweeps[key.Category][key.Parameter]
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, e := range entries {
			if e.Error != nil {
				continue
			}
			lo = math.Min(lo, e.TotalReturn)
			hi = math.Max(hi, e.TotalReturn)
		}
		if math.IsInf(lo, 0) {
			continue
		}
		out = append(out, domain.SensitivityRange{
			Category:  key.Category,
			Parameter: key.Parameter,
			Min:       lo,
			Max:       hi,
			Range:     hi - lo,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range > out[j].Range
	})
	return out
}

type scoredSample struct {
	sample domain.MonteCarloSample
	score  float64
}

// optimalParameters averages the parameters of the best 5% of samples as
// ranked by the configured objective (at least one sample)
func (h sensitivityServiceHandler) optimalParameters(run *analysisRun, samples []domain.MonteCarloSample) ([]domain.OptimalParameter, int, error) {
	ok := successfulSamples(samples)
	scored := make([]scoredSample, 0, len(ok))
	var firstErr error
	for _, s := range ok {
		score, err := h.ObjectiveService.Evaluate(run.cfg.Objective, *s.Metrics)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		scored = append(scored, scoredSample{sample: s, score: score})
	}
	if len(scored) == 0 {
		return []domain.OptimalParameter{}, 0, firstErr
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	topCount := int(math.Ceil(float64(len(scored)) * optimalSampleFraction))
	if topCount < 1 {
		topCount = 1
	}
	top := scored[:topCount]

	out := []domain.OptimalParameter{}
	for _, key := range domain.AllParameterKeys() {
		sum := 0.0
		for _, s := range top {
			sum += s.sample.Parameters[key.Category][key.Parameter]
		}
		optimal := sum / float64(len(top))
		base := run.baseline[key.Category][key.Parameter]
		changePercent := 0.0
		if base != 0 {
			changePercent = l2_service.Sanitize((optimal - base) / math.Abs(base) * 100)
		}
		out = append(out, domain.OptimalParameter{
			Category:      key.Category,
			Parameter:     key.Parameter,
			Baseline:      base,
			Optimal:       optimal,
			ChangePercent: changePercent,
		})
	}

	return out, topCount, firstErr
}
