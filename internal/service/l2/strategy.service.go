package l2_service

import (
	"fmt"
	"strategysim/internal/domain"
	l1_service "strategysim/internal/service/l1"
)

type StrategySimulator interface {
	Simulate(params domain.ParameterSet, seed int64) (*domain.SimulationResult, error)
}

type strategySimulatorHandler struct {
	Horizon        int
	InitialCapital float64
	// Trace keeps the full equity curve and trade list on the result. batch
	// callers turn it off since they only read the metrics
	Trace bool
}

func NewStrategySimulator(horizon int, initialCapital float64, trace bool) StrategySimulator {
	if horizon <= 0 {
		horizon = domain.DefaultHorizon
	}
	if initialCapital <= 0 {
		initialCapital = domain.DefaultCapital
	}
	return strategySimulatorHandler{
		Horizon:        horizon,
		InitialCapital: initialCapital,
		Trace:          trace,
	}
}

// Simulate runs one full horizon. every random draw comes from a source
// seeded with seed, so identical inputs give identical results
func (h strategySimulatorHandler) Simulate(params domain.ParameterSet, seed int64) (*domain.SimulationResult, error) {
	if err := params.Validate(nil); err != nil {
		return nil, fmt.Errorf("failed to validate parameters: %w", err)
	}

	signalParams := params.Signal()
	marketParams := params.Market()
	riskParams := params.Risk()

	rng := l1_service.NewSeededRandomSource(seed)
	priceService := l1_service.NewPriceService(rng)
	signalService := l1_service.NewSignalService()
	sizingService := l1_service.NewSizingService()
	tradeService := l1_service.NewTradeService(rng)

	capital := h.InitialCapital

	equityCurve := make([]float64, 0, h.Horizon)
	trades := make([]domain.Trade, 0, h.Horizon)
	numExecuted := 0
	executedPnL := 0.0

	for step := 0; step < h.Horizon; step++ {
		point := priceService.Generate(step, marketParams)
		signal := signalService.Compute(step, point.Price, signalParams)

		allocation := sizingService.Size(capital, signal, riskParams)
		trade := tradeService.Simulate(point, allocation, signal, riskParams)

		if trade.Executed() {
			numExecuted++
			executedPnL += trade.PnL
		}
		capital += trade.PnL
		equityCurve = append(equityCurve, capital)
		trades = append(trades, trade)
	}

	avgTradePnL := 0.0
	if numExecuted > 0 {
		avgTradePnL = executedPnL / float64(numExecuted)
	}

	result := domain.SimulationResult{
		Metrics:        CalculateMetrics(h.InitialCapital, equityCurve, trades),
		InitialCapital: h.InitialCapital,
		FinalCapital:   Sanitize(capital),
		NumTrades:      len(trades),
		NumExecuted:    numExecuted,
		AvgTradePnL:    Sanitize(avgTradePnL),
	}
	if h.Trace {
		result.EquityCurve = equityCurve
		result.Trades = trades
	}

	return &result, nil
}
