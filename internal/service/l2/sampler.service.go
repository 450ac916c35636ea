package l2_service

import (
	"fmt"
	"strategysim/internal/domain"
	l1_service "strategysim/internal/service/l1"
)

type SweepPoint struct {
	Value      float64
	Parameters domain.ParameterSet
}

type ParameterSampler interface {
	Ranges() domain.RangeTable
	Grid(baseline domain.ParameterSet, category domain.Category, param string, n int) ([]SweepPoint, error)
	Sample(rng l1_service.RandomSource) domain.ParameterSet
}

type parameterSamplerHandler struct {
	RangeTable domain.RangeTable
}

// NewParameterSampler rejects a malformed table up front, so Sample can
// assume every range exists
func NewParameterSampler(ranges domain.RangeTable) (ParameterSampler, error) {
	if err := ranges.Validate(); err != nil {
		return nil, err
	}
	return parameterSamplerHandler{
		RangeTable: ranges.Clone(),
	}, nil
}

func (h parameterSamplerHandler) Ranges() domain.RangeTable {
	return h.RangeTable.Clone()
}

// Grid returns n evenly spaced points across the parameter's range with
// both endpoints included, each paired with a copy of baseline holding that
// value. a single point, or a collapsed range, yields just Min
func (h parameterSamplerHandler) Grid(baseline domain.ParameterSet, category domain.Category, param string, n int) ([]SweepPoint, error) {
	r, ok := h.RangeTable.Get(category, param)
	if !ok {
		return nil, fmt.Errorf("%w: no range for %s.%s", domain.ErrMalformedRange, category, param)
	}
	if n <= 0 {
		n = domain.DefaultSweepPoints
	}

	values := []float64{r.Min}
	if n > 1 && r.Min != r.Max {
		values = make([]float64, n)
		step := r.Width() / float64(n-1)
		for i := 0; i < n; i++ {
			values[i] = r.Min + float64(i)*step
		}
		// pin the last point so rounding can't step outside the range
		values[n-1] = r.Max
	}

	out := make([]SweepPoint, 0, len(values))
	for _, v := range values {
		out = append(out, SweepPoint{
			Value:      v,
			Parameters: baseline.With(category, param, v),
		})
	}
	return out, nil
}

// Sample draws one uniform value per parameter, walking categories and
// parameters in a fixed order so a given seed always maps to the same set
func (h parameterSamplerHandler) Sample(rng l1_service.RandomSource) domain.ParameterSet {
	out := domain.ParameterSet{}
	for _, key := range domain.AllParameterKeys() {
		r, _ := h.RangeTable.Get(key.Category, key.Parameter)
		v := r.Min + rng.NextFloat()*r.Width()
		if v > r.Max {
			v = r.Max
		}
		if _, ok := out[key.Category]; !ok {
			out[key.Category] = map[string]float64{}
		}
		out[key.Category][key.Parameter] = v
	}
	return out
}
