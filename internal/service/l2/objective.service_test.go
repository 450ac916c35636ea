package l2_service

import (
	"strategysim/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjectiveService_Evaluate(t *testing.T) {
	h := NewObjectiveService()
	metrics := domain.Metrics{
		TotalReturn:  0.12,
		SharpeRatio:  1.5,
		MaxDrawdown:  0.1,
		WinRate:      0.4,
		ProfitFactor: 1.8,
	}

	t.Run("single metric", func(t *testing.T) {
		v, err := h.Evaluate("sharpeRatio", metrics)
		require.NoError(t, err)
		require.Equal(t, 1.5, v)
	})

	t.Run("arithmetic over metrics", func(t *testing.T) {
		v, err := h.Evaluate("sharpeRatio - 2.0 * maxDrawdown", metrics)
		require.NoError(t, err)
		require.InDelta(t, 1.3, v, 1e-12)
	})

	t.Run("functions", func(t *testing.T) {
		v, err := h.Evaluate("min(totalReturn, winRate) + abs(-1)", metrics)
		require.NoError(t, err)
		require.InDelta(t, 1.12, v, 1e-12)
	})

	t.Run("integer results are converted", func(t *testing.T) {
		v, err := h.Evaluate("3", metrics)
		require.NoError(t, err)
		require.Equal(t, 3.0, v)
	})

	t.Run("unknown variable", func(t *testing.T) {
		_, err := h.Evaluate("calmarRatio", metrics)
		require.Error(t, err)
		require.Error(t, h.Validate("calmarRatio"))
	})

	t.Run("non numeric result", func(t *testing.T) {
		_, err := h.Evaluate(`"abc"`, metrics)
		require.Error(t, err)
	})

	t.Run("valid expression", func(t *testing.T) {
		require.NoError(t, h.Validate("sharpeRatio * winRate"))
	})
}
