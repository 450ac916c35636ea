package l3_service

import (
	"math"
	"strategysim/internal/domain"
	l2_service "strategysim/internal/service/l2"

	"github.com/montanaflynn/stats"
)

// CalculateCorrelationMatrix is the pearson r between every parameter and
// every metric over the successful monte carlo samples. pairs with no
// variance on either side, or fewer than two samples, report 0
func CalculateCorrelationMatrix(samples []domain.MonteCarloSample) domain.CorrelationMatrix {
	ok := successfulSamples(samples)

	out := domain.CorrelationMatrix{}
	for _, key := range domain.AllParameterKeys() {
		xs := make([]float64, 0, len(ok))
		for _, s := range ok {
			xs = append(xs, s.Parameters[key.Category][key.Parameter])
		}

		row := map[domain.MetricName]float64{}
		for _, metric := range domain.AllMetrics {
			ys := make([]float64, 0, len(ok))
			for _, s := range ok {
				ys = append(ys, s.Metrics.Get(metric))
			}
			row[metric] = Correlation(xs, ys)
		}
		out[key.String()] = row
	}
	return out
}

func Correlation(xs, ys []float64) float64 {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0
	}
	r, err := stats.Pearson(xs, ys)
	if err != nil {
		return 0
	}
	r = l2_service.Sanitize(r)
	return math.Max(-1, math.Min(1, r))
}
