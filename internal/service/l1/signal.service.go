package l1_service

import (
	"math"
	"strategysim/internal/domain"
)

type SignalService interface {
	Compute(step int, price float64, params domain.SignalParams) domain.Signal
}

type signalServiceHandler struct{}

func NewSignalService() SignalService {
	return signalServiceHandler{}
}

// Compute is a bounded oscillator over the step index. price is accepted
// for interface symmetry with the other primitives but doesn't feed the
// oscillator
func (h signalServiceHandler) Compute(step int, price float64, params domain.SignalParams) domain.Signal {
	strength := 0.0
	period := params.ResonanceFreq * params.LambdaMultiplier
	if period > 0 && !math.IsInf(period, 0) && !math.IsNaN(period) {
		strength = math.Sin(2 * math.Pi * float64(step) / period)
	}

	coherence := math.Abs(strength) * params.ConsciousnessLevel
	amplitude := math.Hypot(params.ZReal, params.ZImag)
	isValid := coherence > params.CoherenceThreshold

	value := 0.0
	if isValid {
		value = strength * amplitude
	}

	return domain.Signal{
		Strength:  strength,
		Coherence: coherence,
		Amplitude: amplitude,
		Value:     value,
		IsValid:   isValid,
	}
}
