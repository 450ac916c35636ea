package domain

import (
	"fmt"
	"math"
	"sort"
)

type Category string

const (
	Category_Signal Category = "signal"
	Category_Market Category = "market"
	Category_Risk   Category = "risk"
)

// Categories is the fixed iteration order used everywhere a parameter
// set is walked. random draws depend on it, so don't reorder
var Categories = []Category{Category_Signal, Category_Market, Category_Risk}

const (
	// signal
	Param_LambdaMultiplier   = "lambda_multiplier"
	Param_ResonanceFreq      = "resonance_freq"
	Param_CoherenceThreshold = "coherence_threshold"
	Param_ConsciousnessLevel = "consciousness_level"
	Param_ZReal              = "z_real"
	Param_ZImag              = "z_imag"

	// market
	Param_VolatilityBase     = "volatility_base"
	Param_DriftRate          = "drift_rate"
	Param_MeanReversionSpeed = "mean_reversion_speed"
	Param_JumpFrequency      = "jump_frequency"
	Param_JumpMagnitude      = "jump_magnitude"

	// risk
	Param_KellyFraction     = "kelly_fraction"
	Param_MaxDrawdownLimit  = "max_drawdown_limit"
	Param_PositionSizeLimit = "position_size_limit"
	Param_StopLossThreshold = "stop_loss_threshold"
	Param_TakeProfitRatio   = "take_profit_ratio"
)

var parameterNames = map[Category][]string{
	Category_Signal: {
		Param_LambdaMultiplier,
		Param_ResonanceFreq,
		Param_CoherenceThreshold,
		Param_ConsciousnessLevel,
		Param_ZReal,
		Param_ZImag,
	},
	Category_Market: {
		Param_VolatilityBase,
		Param_DriftRate,
		Param_MeanReversionSpeed,
		Param_JumpFrequency,
		Param_JumpMagnitude,
	},
	Category_Risk: {
		Param_KellyFraction,
		Param_MaxDrawdownLimit,
		Param_PositionSizeLimit,
		Param_StopLossThreshold,
		Param_TakeProfitRatio,
	},
}

// ParameterNames returns the ordered parameter names of a category
func ParameterNames(category Category) []string {
	names := parameterNames[category]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

type ParameterKey struct {
	Category  Category
	Parameter string
}

func (k ParameterKey) String() string {
	return fmt.Sprintf("%s.%s", k.Category, k.Parameter)
}

// AllParameterKeys walks every known parameter in the canonical order
func AllParameterKeys() []ParameterKey {
	out := []ParameterKey{}
	for _, c := range Categories {
		for _, p := range parameterNames[c] {
			out = append(out, ParameterKey{Category: c, Parameter: p})
		}
	}
	return out
}

func IsKnownParameter(category Category, param string) bool {
	for _, p := range parameterNames[category] {
		if p == param {
			return true
		}
	}
	return false
}

// ParameterSet maps category -> parameter -> value
type ParameterSet map[Category]map[string]float64

func (p ParameterSet) Clone() ParameterSet {
	out := ParameterSet{}
	for c, values := range p {
		out[c] = make(map[string]float64, len(values))
		for k, v := range values {
			out[c][k] = v
		}
	}
	return out
}

// Get looks up a single value. missing values are an error, never a default
func (p ParameterSet) Get(category Category, param string) (float64, error) {
	values, ok := p[category]
	if !ok {
		return 0, NewInvalidParameterError(category, "", 0, "missing category")
	}
	v, ok := values[param]
	if !ok {
		return 0, NewInvalidParameterError(category, param, 0, "missing parameter")
	}
	return v, nil
}

// With returns a copy with one value replaced
func (p ParameterSet) With(category Category, param string, value float64) ParameterSet {
	out := p.Clone()
	if _, ok := out[category]; !ok {
		out[category] = map[string]float64{}
	}
	out[category][param] = value
	return out
}

// Merge returns a copy with every value in overrides applied on top
func (p ParameterSet) Merge(overrides ParameterSet) ParameterSet {
	out := p.Clone()
	for c, values := range overrides {
		if _, ok := out[c]; !ok {
			out[c] = map[string]float64{}
		}
		for k, v := range values {
			out[c][k] = v
		}
	}
	return out
}

// Validate checks that every known parameter is present and finite. ranges
// are optional; when given, values must also fall inside them
func (p ParameterSet) Validate(ranges RangeTable) error {
	for _, key := range AllParameterKeys() {
		v, err := p.Get(key.Category, key.Parameter)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewInvalidParameterError(key.Category, key.Parameter, v, "value is not finite")
		}
		if ranges == nil {
			continue
		}
		r, ok := ranges.Get(key.Category, key.Parameter)
		if !ok {
			continue
		}
		if !r.Contains(v) {
			return NewInvalidParameterError(
				key.Category,
				key.Parameter,
				v,
				fmt.Sprintf("outside range [%g, %g]", r.Min, r.Max),
			)
		}
	}
	return nil
}

// ApplyOverrides merges caller-supplied values onto p. unknown keys and
// values outside ranges are rejected
func (p ParameterSet) ApplyOverrides(overrides ParameterSet, ranges RangeTable) (ParameterSet, error) {
	for c, values := range overrides {
		for k, v := range values {
			if !IsKnownParameter(c, k) {
				return nil, NewInvalidParameterError(c, k, v, "unknown parameter")
			}
		}
	}
	out := p.Merge(overrides)
	if err := out.Validate(ranges); err != nil {
		return nil, err
	}
	return out, nil
}

// Flatten keys values by "category.parameter"
func (p ParameterSet) Flatten() map[string]float64 {
	out := map[string]float64{}
	for c, values := range p {
		for k, v := range values {
			out[ParameterKey{Category: c, Parameter: k}.String()] = v
		}
	}
	return out
}

func (p ParameterSet) Signal() SignalParams {
	v := p[Category_Signal]
	return SignalParams{
		LambdaMultiplier:   v[Param_LambdaMultiplier],
		ResonanceFreq:      v[Param_ResonanceFreq],
		CoherenceThreshold: v[Param_CoherenceThreshold],
		ConsciousnessLevel: v[Param_ConsciousnessLevel],
		ZReal:              v[Param_ZReal],
		ZImag:              v[Param_ZImag],
	}
}

func (p ParameterSet) Market() MarketParams {
	v := p[Category_Market]
	return MarketParams{
		VolatilityBase:     v[Param_VolatilityBase],
		DriftRate:          v[Param_DriftRate],
		MeanReversionSpeed: v[Param_MeanReversionSpeed],
		JumpFrequency:      v[Param_JumpFrequency],
		JumpMagnitude:      v[Param_JumpMagnitude],
	}
}

func (p ParameterSet) Risk() RiskParams {
	v := p[Category_Risk]
	return RiskParams{
		KellyFraction:     v[Param_KellyFraction],
		MaxDrawdownLimit:  v[Param_MaxDrawdownLimit],
		PositionSizeLimit: v[Param_PositionSizeLimit],
		StopLossThreshold: v[Param_StopLossThreshold],
		TakeProfitRatio:   v[Param_TakeProfitRatio],
	}
}

// typed views handed to the l1 primitives. they're only built from a
// validated ParameterSet

type SignalParams struct {
	LambdaMultiplier   float64
	ResonanceFreq      float64
	CoherenceThreshold float64
	ConsciousnessLevel float64
	ZReal              float64
	ZImag              float64
}

type MarketParams struct {
	VolatilityBase     float64
	DriftRate          float64
	MeanReversionSpeed float64
	JumpFrequency      float64
	JumpMagnitude      float64
}

type RiskParams struct {
	KellyFraction     float64
	MaxDrawdownLimit  float64
	PositionSizeLimit float64
	StopLossThreshold float64
	TakeProfitRatio   float64
}

func DefaultBaseline() ParameterSet {
	return ParameterSet{
		Category_Signal: {
			Param_LambdaMultiplier:   1.0,
			Param_ResonanceFreq:      888.0,
			Param_CoherenceThreshold: 0.618,
			Param_ConsciousnessLevel: 1.0,
			Param_ZReal:              9.0,
			Param_ZImag:              16.0,
		},
		Category_Market: {
			Param_VolatilityBase:     0.4,
			Param_DriftRate:          0.05,
			Param_MeanReversionSpeed: 0.5,
			Param_JumpFrequency:      0.02,
			Param_JumpMagnitude:      0.1,
		},
		Category_Risk: {
			Param_KellyFraction:     0.25,
			Param_MaxDrawdownLimit:  0.2,
			Param_PositionSizeLimit: 0.15,
			Param_StopLossThreshold: 0.08,
			Param_TakeProfitRatio:   2.5,
		},
	}
}

type ParameterRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r ParameterRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r ParameterRange) Width() float64 {
	return r.Max - r.Min
}

type RangeTable map[Category]map[string]ParameterRange

func (t RangeTable) Get(category Category, param string) (ParameterRange, bool) {
	values, ok := t[category]
	if !ok {
		return ParameterRange{}, false
	}
	r, ok := values[param]
	return r, ok
}

func (t RangeTable) Clone() RangeTable {
	out := RangeTable{}
	for c, values := range t {
		out[c] = make(map[string]ParameterRange, len(values))
		for k, v := range values {
			out[c][k] = v
		}
	}
	return out
}

// WithOverrides replaces individual ranges. unknown keys are rejected so a
// typo can't silently leave the default in place
func (t RangeTable) WithOverrides(overrides RangeTable) (RangeTable, error) {
	out := t.Clone()
	for c, values := range overrides {
		for k, v := range values {
			if !IsKnownParameter(c, k) {
				return nil, fmt.Errorf("%w: unknown parameter %s.%s", ErrMalformedRange, c, k)
			}
			if _, ok := out[c]; !ok {
				out[c] = map[string]ParameterRange{}
			}
			out[c][k] = v
		}
	}
	return out, nil
}

// Validate enforces the structural rules of a range table: every
// parameter present, finite bounds, min <= max
func (t RangeTable) Validate() error {
	for _, key := range AllParameterKeys() {
		r, ok := t.Get(key.Category, key.Parameter)
		if !ok {
			return fmt.Errorf("%w: missing range for %s", ErrMalformedRange, key)
		}
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
			return fmt.Errorf("%w: non-finite bound for %s", ErrMalformedRange, key)
		}
		if r.Min > r.Max {
			return fmt.Errorf("%w: min %g > max %g for %s", ErrMalformedRange, r.Min, r.Max, key)
		}
	}
	return nil
}

// DegenerateKeys lists parameters whose range collapses to one point; a
// sweep over them can't say anything
func (t RangeTable) DegenerateKeys() []ParameterKey {
	out := []ParameterKey{}
	for _, key := range AllParameterKeys() {
		r, ok := t.Get(key.Category, key.Parameter)
		if ok && r.Min == r.Max {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

func DefaultRanges() RangeTable {
	return RangeTable{
		Category_Signal: {
			Param_LambdaMultiplier:   {Min: 0.5, Max: 2.0},
			Param_ResonanceFreq:      {Min: 400, Max: 1200},
			Param_CoherenceThreshold: {Min: 0.4, Max: 0.9},
			Param_ConsciousnessLevel: {Min: 0.5, Max: 2.5},
			Param_ZReal:              {Min: 5, Max: 15},
			Param_ZImag:              {Min: 10, Max: 25},
		},
		Category_Market: {
			Param_VolatilityBase:     {Min: 0.15, Max: 0.8},
			Param_DriftRate:          {Min: -0.2, Max: 0.3},
			Param_MeanReversionSpeed: {Min: 0.1, Max: 2.0},
			Param_JumpFrequency:      {Min: 0.0, Max: 0.1},
			Param_JumpMagnitude:      {Min: 0.05, Max: 0.25},
		},
		Category_Risk: {
			Param_KellyFraction:     {Min: 0.1, Max: 0.5},
			Param_MaxDrawdownLimit:  {Min: 0.1, Max: 0.3},
			Param_PositionSizeLimit: {Min: 0.05, Max: 0.25},
			Param_StopLossThreshold: {Min: 0.05, Max: 0.15},
			Param_TakeProfitRatio:   {Min: 1.5, Max: 4.0},
		},
	}
}
