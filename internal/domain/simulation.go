package domain

// annualisation constants shared by the price path and the metrics
const (
	TradingDaysPerYear = 252
	Dt                 = 1.0 / TradingDaysPerYear
)

type Regime string

const (
	Regime_Calm      Regime = "calm"
	Regime_Normal    Regime = "normal"
	Regime_Turbulent Regime = "turbulent"
)

// PricePoint is one simulated day
type PricePoint struct {
	Step       int     `json:"step"`
	Price      float64 `json:"price"`
	Volatility float64 `json:"volatility"`
	Regime     Regime  `json:"regime,omitempty"`
	Jumped     bool    `json:"jumped,omitempty"`
}

type Signal struct {
	Strength  float64 `json:"strength"`
	Coherence float64 `json:"coherence"`
	Amplitude float64 `json:"amplitude"`
	// Value is Strength scaled by Amplitude, zero when the signal isn't valid
	Value   float64 `json:"value"`
	IsValid bool    `json:"isValid"`
}

type TradeDirection string

const (
	TradeDirection_Long  TradeDirection = "LONG"
	TradeDirection_Short TradeDirection = "SHORT"
	TradeDirection_Flat  TradeDirection = "FLAT"
)

type TradeOutcome string

const (
	TradeOutcome_NoSignal    TradeOutcome = "no_signal"
	TradeOutcome_StopLoss    TradeOutcome = "stop_loss"
	TradeOutcome_TakeProfit  TradeOutcome = "take_profit"
	TradeOutcome_PassThrough TradeOutcome = "pass_through"
)

// Trade is one position lifecycle. steps with no position still produce a
// trade that resolves immediately with zero pnl
type Trade struct {
	EntryStep    int            `json:"entryStep"`
	ExitStep     int            `json:"exitStep"`
	EntryPrice   float64        `json:"entryPrice"`
	ExitPrice    float64        `json:"exitPrice"`
	PositionSize float64        `json:"positionSize"`
	PnL          float64        `json:"pnl"`
	RawReturn    float64        `json:"rawReturn"`
	Direction    TradeDirection `json:"direction"`
	Outcome      TradeOutcome   `json:"outcome"`
	Signal       Signal         `json:"signal"`
}

func (t Trade) Executed() bool {
	return t.PositionSize > 0
}

type MetricName string

const (
	Metric_TotalReturn  MetricName = "totalReturn"
	Metric_SharpeRatio  MetricName = "sharpeRatio"
	Metric_MaxDrawdown  MetricName = "maxDrawdown"
	Metric_WinRate      MetricName = "winRate"
	Metric_ProfitFactor MetricName = "profitFactor"
)

var AllMetrics = []MetricName{
	Metric_TotalReturn,
	Metric_SharpeRatio,
	Metric_MaxDrawdown,
	Metric_WinRate,
	Metric_ProfitFactor,
}

// ProfitFactorNoLosses is reported instead of +Inf when a run has winners
// but no losers
const ProfitFactorNoLosses = 99.0

type Metrics struct {
	TotalReturn  float64 `json:"totalReturn"`
	SharpeRatio  float64 `json:"sharpeRatio"`
	MaxDrawdown  float64 `json:"maxDrawdown"`
	WinRate      float64 `json:"winRate"`
	ProfitFactor float64 `json:"profitFactor"`
}

func (m Metrics) Get(name MetricName) float64 {
	switch name {
	case Metric_TotalReturn:
		return m.TotalReturn
	case Metric_SharpeRatio:
		return m.SharpeRatio
	case Metric_MaxDrawdown:
		return m.MaxDrawdown
	case Metric_WinRate:
		return m.WinRate
	case Metric_ProfitFactor:
		return m.ProfitFactor
	}
	return 0
}

func (m Metrics) ToMap() map[MetricName]float64 {
	out := make(map[MetricName]float64, len(AllMetrics))
	for _, name := range AllMetrics {
		out[name] = m.Get(name)
	}
	return out
}

// SimulationResult is produced once per run and never mutated
type SimulationResult struct {
	Metrics
	InitialCapital float64   `json:"initialCapital"`
	FinalCapital   float64   `json:"finalCapital"`
	NumTrades      int       `json:"numTrades"`
	NumExecuted    int       `json:"numExecuted"`
	AvgTradePnL    float64   `json:"avgTradePnl"`
	EquityCurve    []float64 `json:"equityCurve,omitempty"`
	Trades         []Trade   `json:"trades,omitempty"`
}

// Summary drops the raw curve and trade list, which is what batch phases
// keep around
func (r SimulationResult) Summary() SimulationResult {
	r.EquityCurve = nil
	r.Trades = nil
	return r
}
