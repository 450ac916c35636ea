package l3_service

import (
	"math"
	"sort"
	"strategysim/internal/domain"
	l2_service "strategysim/internal/service/l2"

	"github.com/montanaflynn/stats"
)

const (
	// chi-squared critical value with 2 degrees of freedom at 5%
	jarqueBeraCritical = 5.99

	highRiskRatio     = 0.5
	criticalRiskRatio = 0.2
)

func metricValues(samples []domain.MonteCarloSample, metric domain.MetricName) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.Metrics.Get(metric))
	}
	return out
}

// percentile falls back to the extremes when the sample is too small for
// the requested rank
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	v, err := stats.Percentile(data, p)
	if err == nil && !math.IsNaN(v) {
		return v
	}
	if p < 50 {
		v, _ = stats.Min(data)
	} else {
		v, _ = stats.Max(data)
	}
	return l2_service.Sanitize(v)
}

// moments returns skewness and excess kurtosis using population moments
func moments(data []float64, mean, stdev float64) (skewness, kurtosis float64) {
	if len(data) == 0 || stdev == 0 {
		return 0, 0
	}
	m3, m4 := 0.0, 0.0
	for _, v := range data {
		d := (v - mean) / stdev
		m3 += d * d * d
		m4 += d * d * d * d
	}
	n := float64(len(data))
	return l2_service.Sanitize(m3 / n), l2_service.Sanitize(m4/n - 3)
}

func describe(data []float64) domain.MetricDistribution {
	if len(data) == 0 {
		return domain.MetricDistribution{}
	}
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	stdev, _ := stats.StandardDeviationPopulation(data)
	lo, _ := stats.Min(data)
	hi, _ := stats.Max(data)
	skewness, kurtosis := moments(data, mean, stdev)

	return domain.MetricDistribution{
		Mean:     l2_service.Sanitize(mean),
		Median:   l2_service.Sanitize(median),
		StdDev:   l2_service.Sanitize(stdev),
		Skewness: skewness,
		Kurtosis: kurtosis,
		Min:      l2_service.Sanitize(lo),
		Max:      l2_service.Sanitize(hi),
		P5:       percentile(data, 5),
		P25:      percentile(data, 25),
		P75:      percentile(data, 75),
		P95:      percentile(data, 95),
	}
}

// SummarizeDistribution describes every metric across the successful monte
// carlo samples and runs a jarque-bera normality check on total return
func SummarizeDistribution(samples []domain.MonteCarloSample) domain.DistributionSummary {
	ok := successfulSamples(samples)

	out := domain.DistributionSummary{
		Metrics: map[domain.MetricName]domain.MetricDistribution{},
	}
	for _, metric := range domain.AllMetrics {
		out.Metrics[metric] = describe(metricValues(ok, metric))
	}

	if len(ok) > 0 {
		returns := out.Metrics[domain.Metric_TotalReturn]
		n := float64(len(ok))
		out.JarqueBera = l2_service.Sanitize(n / 6 * (returns.Skewness*returns.Skewness + returns.Kurtosis*returns.Kurtosis/4))
		out.IsNormal = out.JarqueBera < jarqueBeraCritical
	}
	return out
}

// AssessRisk reads tail risk off the monte carlo return distribution and
// flags stress scenarios that cut return or sharpe below half of baseline
func AssessRisk(samples []domain.MonteCarloSample, stress map[string]domain.StressTestResult) domain.RiskAssessment {
	returns := metricValues(successfulSamples(samples), domain.Metric_TotalReturn)

	out := domain.RiskAssessment{
		HighRiskScenarios: []domain.HighRiskScenario{},
	}
	if len(returns) > 0 {
		out.VaR95 = percentile(returns, 5)
		out.VaR99 = percentile(returns, 1)

		tail := []float64{}
		losses := 0
		for _, r := range returns {
			if r <= out.VaR95 {
				tail = append(tail, r)
			}
			if r < 0 {
				losses++
			}
		}
		if len(tail) > 0 {
			cvar, _ := stats.Mean(tail)
			out.CVaR95 = l2_service.Sanitize(cvar)
		}
		maxLoss, _ := stats.Min(returns)
		out.MaxLoss = l2_service.Sanitize(maxLoss)
		out.ProbabilityOfLoss = float64(losses) / float64(len(returns))
	}

	for name, result := range stress {
		if result.Error != nil {
			continue
		}
		returnImpact := result.RelativeToBenchmark[domain.Metric_TotalReturn]
		sharpeImpact := result.RelativeToBenchmark[domain.Metric_SharpeRatio]
		if returnImpact >= highRiskRatio && sharpeImpact >= highRiskRatio {
			continue
		}
		severity := "HIGH"
		if returnImpact < criticalRiskRatio {
			severity = "CRITICAL"
		}
		out.HighRiskScenarios = append(out.HighRiskScenarios, domain.HighRiskScenario{
			Scenario:     name,
			ReturnImpact: returnImpact,
			SharpeImpact: sharpeImpact,
			Severity:     severity,
		})
	}
	sort.Slice(out.HighRiskScenarios, func(i, j int) bool {
		return out.HighRiskScenarios[i].Scenario < out.HighRiskScenarios[j].Scenario
	})

	return out
}
