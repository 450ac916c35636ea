package l1_service

import (
	"math"
	"strategysim/internal/domain"
)

const (
	baseWinProbability = 0.5
	coherenceWinScale  = 0.3
	basePayoffRatio    = 1.5
	signalPayoffScale  = 0.1
	maxWinProbability  = 1 - 1e-6
	minWinProbability  = 1e-6
)

type SizingService interface {
	Size(capital float64, signal domain.Signal, risk domain.RiskParams) float64
}

type sizingServiceHandler struct{}

func NewSizingService() SizingService {
	return sizingServiceHandler{}
}

// Size returns the capital allocated to one trade using a capped kelly
// fraction. the result is always in [0, capital*PositionSizeLimit]
func (h sizingServiceHandler) Size(capital float64, signal domain.Signal, risk domain.RiskParams) float64 {
	if !signal.IsValid || capital <= 0 || math.IsNaN(capital) || math.IsInf(capital, 0) {
		return 0
	}

	limit := capital * risk.PositionSizeLimit
	if limit <= 0 || math.IsNaN(limit) {
		return 0
	}

	p := WinProbability(signal.Coherence)
	b := PayoffRatio(signal)
	f := KellyFraction(p, b)
	f = math.Min(f, risk.KellyFraction)
	if f <= 0 || math.IsNaN(f) {
		return 0
	}

	allocation := capital * f * math.Abs(signal.Value)
	if math.IsNaN(allocation) || allocation <= 0 {
		return 0
	}

	return math.Min(allocation, limit)
}

// WinProbability is monotonic in coherence, clipped to the open interval (0,1)
func WinProbability(coherence float64) float64 {
	p := baseWinProbability + coherenceWinScale*coherence
	return math.Max(minWinProbability, math.Min(maxWinProbability, p))
}

func PayoffRatio(signal domain.Signal) float64 {
	return basePayoffRatio + signalPayoffScale*math.Abs(signal.Value)
}

// KellyFraction is f* = (p*b - (1-p)) / b
func KellyFraction(p, b float64) float64 {
	if b <= 0 {
		return 0
	}
	return (p*b - (1 - p)) / b
}
