package l3_service

import (
	"math"
	"strategysim/internal/domain"
	"strategysim/internal/util"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func samplesWithReturns(returns ...float64) []domain.MonteCarloSample {
	out := []domain.MonteCarloSample{}
	for i, r := range returns {
		out = append(out, domain.MonteCarloSample{
			Simulation: i,
			Parameters: domain.DefaultBaseline(),
			Metrics:    &domain.Metrics{TotalReturn: r, SharpeRatio: r * 10},
		})
	}
	return out
}

func TestElasticity(t *testing.T) {
	require.InDelta(t, 5.0, Elasticity(1.1, 0.9, 1.0), 1e-9)
	require.InDelta(t, -5.0, Elasticity(0.9, 1.1, 1.0), 1e-9)
	require.Equal(t, 0.0, Elasticity(1.1, 0.9, 0))
	require.Equal(t, 0.0, Elasticity(0.5, 0.5, 2))
}

func TestCorrelation(t *testing.T) {
	t.Run("self correlation is one", func(t *testing.T) {
		xs := []float64{0.1, 0.5, 0.2, 0.9, 0.4}
		require.InDelta(t, 1.0, Correlation(xs, xs), 1e-9)
	})

	t.Run("perfect negative", func(t *testing.T) {
		require.InDelta(t, -1.0, Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-9)
	})

	t.Run("degenerate inputs are zero", func(t *testing.T) {
		require.Equal(t, 0.0, Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}))
		require.Equal(t, 0.0, Correlation([]float64{1}, []float64{1}))
		require.Equal(t, 0.0, Correlation([]float64{1, 2}, []float64{1}))
	})
}

func TestCalculateCorrelationMatrix(t *testing.T) {
	samples := []domain.MonteCarloSample{}
	for i := 0; i < 10; i++ {
		params := domain.DefaultBaseline().With(domain.Category_Risk, domain.Param_KellyFraction, float64(i))
		samples = append(samples, domain.MonteCarloSample{
			Simulation: i,
			Parameters: params,
			Metrics:    &domain.Metrics{TotalReturn: 2 * float64(i), MaxDrawdown: -float64(i)},
		})
	}
	// failed samples must not shift the result
	samples = append(samples, domain.MonteCarloSample{
		Simulation: 10,
		Parameters: domain.DefaultBaseline().With(domain.Category_Risk, domain.Param_KellyFraction, 100),
		Error:      util.StringPointer("failed"),
	})

	matrix := CalculateCorrelationMatrix(samples)

	require.Len(t, matrix, len(domain.AllParameterKeys()))
	kelly := matrix["risk.kelly_fraction"]
	require.InDelta(t, 1.0, kelly[domain.Metric_TotalReturn], 1e-9)
	require.InDelta(t, -1.0, kelly[domain.Metric_MaxDrawdown], 1e-9)
	require.Equal(t, 0.0, kelly[domain.Metric_WinRate])
	// constant parameter
	require.Equal(t, 0.0, matrix["signal.z_real"][domain.Metric_TotalReturn])
}

func TestSummarizeDistribution(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		summary := SummarizeDistribution(nil)
		require.Equal(t, 0.0, summary.JarqueBera)
		require.False(t, summary.IsNormal)
		require.Equal(t, domain.MetricDistribution{}, summary.Metrics[domain.Metric_TotalReturn])
	})

	t.Run("symmetric sample", func(t *testing.T) {
		summary := SummarizeDistribution(samplesWithReturns(-0.2, -0.1, 0, 0.1, 0.2))
		d := summary.Metrics[domain.Metric_TotalReturn]

		require.InDelta(t, 0.0, d.Mean, 1e-12)
		require.InDelta(t, 0.0, d.Median, 1e-12)
		require.InDelta(t, math.Sqrt(0.02), d.StdDev, 1e-12)
		require.InDelta(t, 0.0, d.Skewness, 1e-12)
		// population excess kurtosis of five evenly spaced points
		require.InDelta(t, 1.7-3, d.Kurtosis, 1e-9)
		require.Equal(t, -0.2, d.Min)
		require.Equal(t, 0.2, d.Max)
		require.LessOrEqual(t, d.P5, d.P25)
		require.LessOrEqual(t, d.P75, d.P95)
		require.True(t, summary.IsNormal)
	})
}

func TestAssessRisk(t *testing.T) {
	returns := []float64{}
	for i := 1; i <= 100; i++ {
		returns = append(returns, float64(i-21)/100)
	}
	samples := samplesWithReturns(returns...)
	samples = append(samples, domain.MonteCarloSample{Simulation: 100, Error: util.StringPointer("failed")})

	stress := map[string]domain.StressTestResult{
		"fine": {RelativeToBenchmark: map[domain.MetricName]float64{
			domain.Metric_TotalReturn: 0.9,
			domain.Metric_SharpeRatio: 1.1,
		}},
		"bad": {RelativeToBenchmark: map[domain.MetricName]float64{
			domain.Metric_TotalReturn: 0.4,
			domain.Metric_SharpeRatio: 0.9,
		}},
		"awful": {RelativeToBenchmark: map[domain.MetricName]float64{
			domain.Metric_TotalReturn: -0.5,
			domain.Metric_SharpeRatio: 0.1,
		}},
		"errored": {Error: util.StringPointer("failed")},
	}

	risk := AssessRisk(samples, stress)

	require.InDelta(t, -0.16, risk.VaR95, 1e-9)
	require.InDelta(t, -0.20, risk.VaR99, 1e-9)
	require.InDelta(t, -0.18, risk.CVaR95, 1e-9)
	require.InDelta(t, -0.20, risk.MaxLoss, 1e-9)
	require.InDelta(t, 0.20, risk.ProbabilityOfLoss, 1e-9)
	require.Equal(
		t,
		"",
		cmp.Diff([]domain.HighRiskScenario{
			{Scenario: "awful", ReturnImpact: -0.5, SharpeImpact: 0.1, Severity: "CRITICAL"},
			{Scenario: "bad", ReturnImpact: 0.4, SharpeImpact: 0.9, Severity: "HIGH"},
		}, risk.HighRiskScenarios),
	)
}

func TestCriticalElasticities(t *testing.T) {
	analysis := domain.ElasticityAnalysis{
		domain.Category_Signal: {
			domain.Param_ZReal: {domain.Metric_TotalReturn: 0.5, domain.Metric_SharpeRatio: -3},
		},
		domain.Category_Risk: {
			domain.Param_KellyFraction: {domain.Metric_TotalReturn: 1.5},
		},
	}

	require.Equal(
		t,
		"",
		cmp.Diff([]domain.ElasticityRecord{
			{Category: domain.Category_Signal, Parameter: domain.Param_ZReal, Metric: domain.Metric_SharpeRatio, Value: -3},
			{Category: domain.Category_Risk, Parameter: domain.Param_KellyFraction, Metric: domain.Metric_TotalReturn, Value: 1.5},
		}, CriticalElasticities(analysis)),
	)
}

func TestSignificantCorrelations(t *testing.T) {
	matrix := domain.CorrelationMatrix{
		"market.drift_rate":   {domain.Metric_TotalReturn: 0.8, domain.Metric_WinRate: 0.1},
		"risk.kelly_fraction": {domain.Metric_MaxDrawdown: -0.45},
	}
	require.Equal(
		t,
		"",
		cmp.Diff([]domain.CorrelationRecord{
			{Parameter: "market.drift_rate", Metric: domain.Metric_TotalReturn, Value: 0.8},
			{Parameter: "risk.kelly_fraction", Metric: domain.Metric_MaxDrawdown, Value: -0.45},
		}, SignificantCorrelations(matrix)),
	)
}

func TestSweepRanges(t *testing.T) {
	sweeps := domain.SensitivityMaps{
		domain.Category_Market: {
			domain.Param_DriftRate: {
				{Value: -0.2, Metrics: domain.Metrics{TotalReturn: -0.1}},
				{Value: 0.3, Metrics: domain.Metrics{TotalReturn: 0.3}},
				{Value: 0.5, Error: util.StringPointer("failed"), Metrics: domain.Metrics{TotalReturn: 9}},
			},
		},
		domain.Category_Risk: {
			domain.Param_KellyFraction: {
				{Value: 0.1, Metrics: domain.Metrics{TotalReturn: 0.05}},
				{Value: 0.5, Metrics: domain.Metrics{TotalReturn: 0.15}},
			},
		},
	}

	ranges := SweepRanges(sweeps)
	require.Len(t, ranges, 2)
	require.Equal(t, domain.Param_DriftRate, ranges[0].Parameter)
	require.InDelta(t, 0.4, ranges[0].Range, 1e-12)
	require.Equal(t, domain.Param_KellyFraction, ranges[1].Parameter)
	require.InDelta(t, 0.1, ranges[1].Range, 1e-12)
}
