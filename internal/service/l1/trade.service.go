package l1_service

import (
	"math"
	"strategysim/internal/domain"
)

type TradeService interface {
	Simulate(entry domain.PricePoint, allocation float64, signal domain.Signal, risk domain.RiskParams) domain.Trade
}

type tradeServiceHandler struct {
	Rng RandomSource
}

func NewTradeService(rng RandomSource) TradeService {
	return tradeServiceHandler{
		Rng: rng,
	}
}

// Simulate resolves one position over the next step. the realised pnl is
// either the raw move, the stop loss or the take profit, so its magnitude
// never exceeds allocation * max(stop, takeProfitRatio*stop)
func (h tradeServiceHandler) Simulate(entry domain.PricePoint, allocation float64, signal domain.Signal, risk domain.RiskParams) domain.Trade {
	if allocation <= 0 || math.IsNaN(allocation) {
		return NoTrade(entry, signal, domain.TradeOutcome_NoSignal)
	}

	direction := domain.TradeDirection_Short
	if signal.Strength > 0 {
		direction = domain.TradeDirection_Long
	}

	dailyVol := entry.Volatility * math.Sqrt(domain.Dt)
	change := h.Rng.NextNormal(0, dailyVol)
	exitPrice := clampPositive(entry.Price * (1 + change))

	rawReturn := (exitPrice - entry.Price) / entry.Price
	if direction == domain.TradeDirection_Short {
		rawReturn = -rawReturn
	}

	pnl, outcome := applyExitRules(allocation, rawReturn, risk)

	return domain.Trade{
		EntryStep:    entry.Step,
		ExitStep:     entry.Step + 1,
		EntryPrice:   entry.Price,
		ExitPrice:    exitPrice,
		PositionSize: allocation,
		PnL:          pnl,
		RawReturn:    rawReturn,
		Direction:    direction,
		Outcome:      outcome,
		Signal:       signal,
	}
}

func applyExitRules(allocation, rawReturn float64, risk domain.RiskParams) (float64, domain.TradeOutcome) {
	stop := risk.StopLossThreshold
	takeProfit := risk.TakeProfitRatio * risk.StopLossThreshold

	if rawReturn < 0 && -rawReturn > stop {
		return -allocation * stop, domain.TradeOutcome_StopLoss
	} else if rawReturn > 0 && rawReturn > takeProfit {
		return allocation * takeProfit, domain.TradeOutcome_TakeProfit
	}

	pnl := allocation * rawReturn
	if math.IsNaN(pnl) || math.IsInf(pnl, 0) {
		return 0, domain.TradeOutcome_PassThrough
	}
	return pnl, domain.TradeOutcome_PassThrough
}

// NoTrade is a step that resolves immediately without a position
func NoTrade(entry domain.PricePoint, signal domain.Signal, outcome domain.TradeOutcome) domain.Trade {
	return domain.Trade{
		EntryStep:  entry.Step,
		ExitStep:   entry.Step,
		EntryPrice: entry.Price,
		ExitPrice:  entry.Price,
		Direction:  domain.TradeDirection_Flat,
		Outcome:    outcome,
		Signal:     signal,
	}
}
