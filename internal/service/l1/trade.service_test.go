package l1_service

import (
	"math"
	"strategysim/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type countingRandomSource struct {
	RandomSource
	calls int
}

func (c *countingRandomSource) NextFloat() float64 {
	c.calls++
	return c.RandomSource.NextFloat()
}

func (c *countingRandomSource) NextNormal(mean, stddev float64) float64 {
	c.calls++
	return c.RandomSource.NextNormal(mean, stddev)
}

func TestTradeService_Simulate(t *testing.T) {
	risk := domain.DefaultBaseline().Risk()
	entry := domain.PricePoint{
		Step:       3,
		Price:      50_000,
		Volatility: 0.4,
		Regime:     domain.Regime_Normal,
	}
	longSignal := domain.Signal{Strength: 0.9, Coherence: 0.9, Amplitude: 18, Value: 16.2, IsValid: true}
	shortSignal := domain.Signal{Strength: -0.9, Coherence: 0.9, Amplitude: 18, Value: -16.2, IsValid: true}

	t.Run("no allocation consumes no randomness", func(t *testing.T) {
		rng := &countingRandomSource{RandomSource: NewSeededRandomSource(1)}
		h := NewTradeService(rng)

		trade := h.Simulate(entry, 0, longSignal, risk)

		require.Equal(t, 0, rng.calls)
		require.Equal(
			t,
			"",
			cmp.Diff(domain.Trade{
				EntryStep:  3,
				ExitStep:   3,
				EntryPrice: 50_000,
				ExitPrice:  50_000,
				Direction:  domain.TradeDirection_Flat,
				Outcome:    domain.TradeOutcome_NoSignal,
				Signal:     longSignal,
			}, trade),
		)
		require.False(t, trade.Executed())
	})

	t.Run("pnl bounded by stop loss and take profit", func(t *testing.T) {
		// high vol so that both exits trigger often
		volatile := entry
		volatile.Volatility = 5
		h := NewTradeService(NewSeededRandomSource(42))
		allocation := 10_000.0
		maxLoss := allocation * risk.StopLossThreshold
		maxGain := allocation * risk.StopLossThreshold * risk.TakeProfitRatio

		outcomes := map[domain.TradeOutcome]int{}
		for i := 0; i < 5000; i++ {
			signal := longSignal
			if i%2 == 1 {
				signal = shortSignal
			}
			trade := h.Simulate(volatile, allocation, signal, risk)
			require.GreaterOrEqual(t, trade.PnL, -maxLoss-1e-9)
			require.LessOrEqual(t, trade.PnL, maxGain+1e-9)
			require.Equal(t, 4, trade.ExitStep)
			require.Greater(t, trade.ExitPrice, 0.0)
			outcomes[trade.Outcome]++
		}

		require.Greater(t, outcomes[domain.TradeOutcome_StopLoss], 0)
		require.Greater(t, outcomes[domain.TradeOutcome_TakeProfit], 0)
		require.Greater(t, outcomes[domain.TradeOutcome_PassThrough], 0)
	})

	t.Run("direction follows signal sign", func(t *testing.T) {
		h := NewTradeService(NewSeededRandomSource(8))
		long := h.Simulate(entry, 1000, longSignal, risk)
		short := h.Simulate(entry, 1000, shortSignal, risk)
		require.Equal(t, domain.TradeDirection_Long, long.Direction)
		require.Equal(t, domain.TradeDirection_Short, short.Direction)

		move := (short.ExitPrice - short.EntryPrice) / short.EntryPrice
		require.InDelta(t, -move, short.RawReturn, 1e-12)
	})

	t.Run("same seed same trade", func(t *testing.T) {
		a := NewTradeService(NewSeededRandomSource(5)).Simulate(entry, 1000, longSignal, risk)
		b := NewTradeService(NewSeededRandomSource(5)).Simulate(entry, 1000, longSignal, risk)
		require.Equal(t, a, b)
	})
}

func Test_applyExitRules(t *testing.T) {
	risk := domain.RiskParams{StopLossThreshold: 0.08, TakeProfitRatio: 2.5}

	t.Run("stop loss", func(t *testing.T) {
		pnl, outcome := applyExitRules(1000, -0.3, risk)
		require.InDelta(t, -80, pnl, 1e-9)
		require.Equal(t, domain.TradeOutcome_StopLoss, outcome)
	})

	t.Run("take profit", func(t *testing.T) {
		pnl, outcome := applyExitRules(1000, 0.5, risk)
		require.InDelta(t, 200, pnl, 1e-9)
		require.Equal(t, domain.TradeOutcome_TakeProfit, outcome)
	})

	t.Run("pass through", func(t *testing.T) {
		pnl, outcome := applyExitRules(1000, 0.05, risk)
		require.InDelta(t, 50, pnl, 1e-9)
		require.Equal(t, domain.TradeOutcome_PassThrough, outcome)

		pnl, outcome = applyExitRules(1000, -0.05, risk)
		require.InDelta(t, -50, pnl, 1e-9)
		require.Equal(t, domain.TradeOutcome_PassThrough, outcome)
	})

	t.Run("non-finite move resolves flat", func(t *testing.T) {
		pnl, outcome := applyExitRules(1000, math.NaN(), risk)
		require.Equal(t, 0.0, pnl)
		require.Equal(t, domain.TradeOutcome_PassThrough, outcome)
	})
}
