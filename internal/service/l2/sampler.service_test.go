package l2_service

import (
	"errors"
	"strategysim/internal/domain"
	l1_service "strategysim/internal/service/l1"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestParameterSampler_Grid(t *testing.T) {
	sampler, err := NewParameterSampler(domain.DefaultRanges())
	require.NoError(t, err)
	baseline := domain.DefaultBaseline()

	t.Run("evenly spaced and inclusive", func(t *testing.T) {
		points, err := sampler.Grid(baseline, domain.Category_Risk, domain.Param_KellyFraction, 5)
		require.NoError(t, err)

		values := []float64{}
		for _, p := range points {
			values = append(values, p.Value)
			v, err := p.Parameters.Get(domain.Category_Risk, domain.Param_KellyFraction)
			require.NoError(t, err)
			require.Equal(t, p.Value, v)
		}
		require.Len(t, values, 5)
		require.InDeltaSlice(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, values, 1e-12)
		require.Equal(t, 0.5, values[4])
	})

	t.Run("default point count", func(t *testing.T) {
		points, err := sampler.Grid(baseline, domain.Category_Signal, domain.Param_ZReal, 0)
		require.NoError(t, err)
		require.Len(t, points, domain.DefaultSweepPoints)
	})

	t.Run("single point is min", func(t *testing.T) {
		points, err := sampler.Grid(baseline, domain.Category_Market, domain.Param_DriftRate, 1)
		require.NoError(t, err)
		require.Len(t, points, 1)
		require.Equal(t, -0.2, points[0].Value)
	})

	t.Run("collapsed range is one point", func(t *testing.T) {
		ranges, err := domain.DefaultRanges().WithOverrides(domain.RangeTable{
			domain.Category_Market: {domain.Param_JumpFrequency: {Min: 0.05, Max: 0.05}},
		})
		require.NoError(t, err)
		s, err := NewParameterSampler(ranges)
		require.NoError(t, err)

		points, err := s.Grid(baseline, domain.Category_Market, domain.Param_JumpFrequency, 20)
		require.NoError(t, err)
		require.Len(t, points, 1)
		require.Equal(t, 0.05, points[0].Value)
	})

	t.Run("baseline is not mutated", func(t *testing.T) {
		before := baseline.Clone()
		_, err := sampler.Grid(baseline, domain.Category_Signal, domain.Param_ResonanceFreq, 20)
		require.NoError(t, err)
		require.Equal(t, "", cmp.Diff(before, baseline))
	})

	t.Run("unknown parameter", func(t *testing.T) {
		_, err := sampler.Grid(baseline, domain.Category_Signal, "nope", 3)
		require.True(t, errors.Is(err, domain.ErrMalformedRange))
	})
}

func TestParameterSampler_Sample(t *testing.T) {
	ranges := domain.DefaultRanges()
	sampler, err := NewParameterSampler(ranges)
	require.NoError(t, err)

	t.Run("draws stay within ranges", func(t *testing.T) {
		rng := l1_service.NewSeededRandomSource(12345)
		for i := 0; i < domain.DefaultNumSimulations; i++ {
			params := sampler.Sample(rng)
			require.NoError(t, params.Validate(ranges))
		}
	})

	t.Run("same seed same sample", func(t *testing.T) {
		a := sampler.Sample(l1_service.NewSeededRandomSource(9))
		b := sampler.Sample(l1_service.NewSeededRandomSource(9))
		require.Equal(t, "", cmp.Diff(a, b))
	})

	t.Run("each sample is independent", func(t *testing.T) {
		rng := l1_service.NewSeededRandomSource(9)
		a := sampler.Sample(rng)
		b := sampler.Sample(rng)
		a[domain.Category_Risk][domain.Param_KellyFraction] = -1
		require.NotEqual(t, -1.0, b[domain.Category_Risk][domain.Param_KellyFraction])
	})
}

func TestNewParameterSampler(t *testing.T) {
	t.Run("inverted range", func(t *testing.T) {
		ranges := domain.DefaultRanges()
		ranges[domain.Category_Signal][domain.Param_ZReal] = domain.ParameterRange{Min: 15, Max: 5}
		_, err := NewParameterSampler(ranges)
		require.ErrorIs(t, err, domain.ErrMalformedRange)
	})

	t.Run("missing range", func(t *testing.T) {
		ranges := domain.DefaultRanges()
		delete(ranges, domain.Category_Market)
		_, err := NewParameterSampler(ranges)
		require.ErrorIs(t, err, domain.ErrMalformedRange)
	})
}
