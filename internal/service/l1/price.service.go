package l1_service

import (
	"math"
	"strategysim/internal/domain"
)

const (
	BasePrice = 50_000.0
	// floor applied to any price or volatility that comes out non-positive
	// or non-finite
	PriceEpsilon = 1e-9

	volClusterAmplitude = 0.3
)

type PriceService interface {
	Generate(step int, market domain.MarketParams) domain.PricePoint
	GeneratePath(horizon int, market domain.MarketParams) []domain.PricePoint
}

type priceServiceHandler struct {
	Rng RandomSource
}

func NewPriceService(rng RandomSource) PriceService {
	return priceServiceHandler{
		Rng: rng,
	}
}

// Generate draws the price for one step: deterministic drift, a slow
// sinusoidal vol modulation, one log-normal innovation and an occasional
// jump. each step is drawn around the drift line, not from the prior price
func (h priceServiceHandler) Generate(step int, market domain.MarketParams) domain.PricePoint {
	t := float64(step) * domain.Dt

	price := BasePrice * math.Exp(market.DriftRate*t)

	vol := market.VolatilityBase * (1 + volClusterAmplitude*math.Sin(float64(step)*market.MeanReversionSpeed*domain.Dt))
	vol = clampPositive(vol)

	price *= math.Exp(h.Rng.NextNormal(0, vol*math.Sqrt(domain.Dt)))

	jumped := false
	if h.Rng.NextFloat() < market.JumpFrequency*domain.Dt {
		direction := 1.0
		if h.Rng.NextFloat() <= 0.5 {
			direction = -1.0
		}
		price *= math.Exp(direction * market.JumpMagnitude)
		jumped = true
	}

	return domain.PricePoint{
		Step:       step,
		Price:      clampPositive(price),
		Volatility: vol,
		Regime:     regimeFor(vol, market.VolatilityBase),
		Jumped:     jumped,
	}
}

func (h priceServiceHandler) GeneratePath(horizon int, market domain.MarketParams) []domain.PricePoint {
	out := make([]domain.PricePoint, 0, horizon)
	for step := 0; step < horizon; step++ {
		out = append(out, h.Generate(step, market))
	}
	return out
}

// regimeFor buckets the prevailing vol relative to its base level. only
// used for downstream grouping
func regimeFor(vol, base float64) domain.Regime {
	if base <= 0 {
		return domain.Regime_Normal
	}
	ratio := vol / base
	if ratio < 1-volClusterAmplitude/2 {
		return domain.Regime_Calm
	} else if ratio > 1+volClusterAmplitude/2 {
		return domain.Regime_Turbulent
	}
	return domain.Regime_Normal
}

func clampPositive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return PriceEpsilon
	}
	return v
}
