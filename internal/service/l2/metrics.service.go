package l2_service

import (
	"math"
	"strategysim/internal/domain"

	"github.com/montanaflynn/stats"
)

// CalculateMetrics reduces one run to its summary metrics. equityCurve is
// the capital after each step; initialCapital is treated as the point
// before the first step
func CalculateMetrics(initialCapital float64, equityCurve []float64, trades []domain.Trade) domain.Metrics {
	finalCapital := initialCapital
	if len(equityCurve) > 0 {
		finalCapital = equityCurve[len(equityCurve)-1]
	}

	totalReturn := 0.0
	if initialCapital > 0 {
		totalReturn = (finalCapital - initialCapital) / initialCapital
	}

	return domain.Metrics{
		TotalReturn:  Sanitize(totalReturn),
		SharpeRatio:  Sanitize(SharpeRatio(stepReturns(initialCapital, equityCurve))),
		MaxDrawdown:  Sanitize(MaxDrawdown(initialCapital, equityCurve)),
		WinRate:      Sanitize(WinRate(trades)),
		ProfitFactor: Sanitize(ProfitFactor(trades)),
	}
}

func stepReturns(initialCapital float64, equityCurve []float64) []float64 {
	out := make([]float64, 0, len(equityCurve))
	prev := initialCapital
	for _, v := range equityCurve {
		if prev != 0 {
			out = append(out, (v-prev)/prev)
		} else {
			out = append(out, 0)
		}
		prev = v
	}
	return out
}

// SharpeRatio annualises mean/stdev of per-step returns, using the
// population stdev. zero when there is no dispersion
func SharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	stdev, err := stats.StandardDeviationPopulation(returns)
	if err != nil || stdev == 0 || math.IsNaN(stdev) || math.IsInf(stdev, 0) {
		return 0
	}
	return mean / stdev * math.Sqrt(domain.TradingDaysPerYear)
}

// MaxDrawdown is the largest peak-to-trough decline as a fraction of the
// peak, in [0,1]
func MaxDrawdown(initialCapital float64, equityCurve []float64) float64 {
	peak := initialCapital
	maxDd := 0.0
	for _, v := range equityCurve {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - v) / peak
		if dd > maxDd {
			maxDd = dd
		}
	}
	return math.Max(0, math.Min(1, maxDd))
}

// WinRate counts every recorded trade, including steps that never opened a
// position
func WinRate(trades []domain.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

func ProfitFactor(trades []domain.Trade) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, t := range trades {
		if t.PnL > 0 {
			grossProfit += t.PnL
		} else if t.PnL < 0 {
			grossLoss -= t.PnL
		}
	}

	if grossProfit <= 0 {
		return 0
	}
	if grossLoss == 0 {
		return domain.ProfitFactorNoLosses
	}
	return grossProfit / grossLoss
}

// Sanitize maps NaN and ±Inf to 0 so reported metrics stay finite
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
