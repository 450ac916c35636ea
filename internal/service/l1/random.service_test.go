package l1_service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomSource(t *testing.T) {
	t.Run("same seed replays the same sequence", func(t *testing.T) {
		a := NewSeededRandomSource(12345)
		b := NewSeededRandomSource(12345)
		for i := 0; i < 1000; i++ {
			require.Equal(t, a.NextFloat(), b.NextFloat())
			require.Equal(t, a.NextNormal(1, 2), b.NextNormal(1, 2))
		}
	})

	t.Run("reseeding resets state", func(t *testing.T) {
		r := NewSeededRandomSource(7)
		first := []float64{r.NextFloat(), r.NextNormal(0, 1), r.NextFloat()}

		r.Seed(7)
		second := []float64{r.NextFloat(), r.NextNormal(0, 1), r.NextFloat()}

		require.Equal(t, first, second)
		require.Equal(t, int64(7), r.CurrentSeed())
	})

	t.Run("implicit seed is flagged as unseeded", func(t *testing.T) {
		r := NewRandomSource()
		require.False(t, r.IsSeeded())
		v := r.NextFloat()
		require.True(t, v >= 0 && v < 1)

		r.Seed(1)
		require.True(t, r.IsSeeded())
	})

	t.Run("floats stay in [0,1)", func(t *testing.T) {
		r := NewSeededRandomSource(99)
		for i := 0; i < 10_000; i++ {
			v := r.NextFloat()
			require.GreaterOrEqual(t, v, 0.0)
			require.Less(t, v, 1.0)
		}
	})

	t.Run("normal draws have roughly the requested moments", func(t *testing.T) {
		r := NewSeededRandomSource(2024)
		n := 50_000
		sum, sumSq := 0.0, 0.0
		for i := 0; i < n; i++ {
			v := r.NextNormal(3, 2)
			require.False(t, math.IsNaN(v))
			sum += v
			sumSq += v * v
		}
		mean := sum / float64(n)
		std := math.Sqrt(sumSq/float64(n) - mean*mean)
		require.InDelta(t, 3, mean, 0.05)
		require.InDelta(t, 2, std, 0.05)
	})
}

func TestDeriveSeed(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		require.Equal(t, DeriveSeed(42, 3), DeriveSeed(42, 3))
	})

	t.Run("distinct streams", func(t *testing.T) {
		seen := map[int64]bool{}
		for i := uint64(0); i < 1000; i++ {
			s := DeriveSeed(42, i)
			require.False(t, seen[s], "stream %d collided", i)
			seen[s] = true
		}
	})

	t.Run("distinct bases", func(t *testing.T) {
		require.NotEqual(t, DeriveSeed(1, 0), DeriveSeed(2, 0))
	})
}
