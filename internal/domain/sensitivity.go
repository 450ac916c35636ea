package domain

import (
	"time"
)

type SensitivityMapEntry struct {
	Value float64 `json:"value"`
	Metrics
	Error *string `json:"error,omitempty"`
}

// SensitivityMaps is category -> parameter -> entries sorted by value
type SensitivityMaps map[Category]map[string][]SensitivityMapEntry

type MonteCarloSample struct {
	Simulation int          `json:"simulation"`
	Seed       int64        `json:"seed"`
	Parameters ParameterSet `json:"parameters"`
	Metrics    *Metrics     `json:"metrics,omitempty"`
	Error      *string      `json:"error,omitempty"`
}

func (s MonteCarloSample) Failed() bool {
	return s.Error != nil
}

// ElasticityAnalysis is category -> parameter -> metric -> elasticity
type ElasticityAnalysis map[Category]map[string]map[MetricName]float64

type ElasticityRecord struct {
	Category  Category   `json:"category"`
	Parameter string     `json:"parameter"`
	Metric    MetricName `json:"metric"`
	Value     float64    `json:"value"`
}

type CorrelationRecord struct {
	Parameter string     `json:"parameter"`
	Metric    MetricName `json:"metric"`
	Value     float64    `json:"value"`
}

// CorrelationMatrix is "category.parameter" -> metric -> pearson r
type CorrelationMatrix map[string]map[MetricName]float64

type StressScenario struct {
	Name      string       `json:"name"`
	Overrides ParameterSet `json:"overrides"`
}

type StressTestResult struct {
	Parameters          ParameterSet           `json:"parameters"`
	Metrics             Metrics                `json:"metrics"`
	RelativeToBenchmark map[MetricName]float64 `json:"relativeToBenchmark"`
	Error               *string                `json:"error,omitempty"`
}

func DefaultStressScenarios() []StressScenario {
	return []StressScenario{
		{
			Name: "highVolatility",
			Overrides: ParameterSet{Category_Market: {
				Param_VolatilityBase: 0.8,
				Param_JumpFrequency:  0.1,
				Param_JumpMagnitude:  0.25,
			}},
		},
		{
			Name: "lowVolatility",
			Overrides: ParameterSet{Category_Market: {
				Param_VolatilityBase: 0.15,
				Param_DriftRate:      0.01,
			}},
		},
		{
			Name: "bearMarket",
			Overrides: ParameterSet{Category_Market: {
				Param_DriftRate:          -0.2,
				Param_MeanReversionSpeed: 2.0,
			}},
		},
		{
			Name: "highCoherence",
			Overrides: ParameterSet{Category_Signal: {
				Param_CoherenceThreshold: 0.9,
				Param_ConsciousnessLevel: 2.5,
			}},
		},
		{
			Name: "lowCoherence",
			Overrides: ParameterSet{Category_Signal: {
				Param_CoherenceThreshold: 0.4,
				Param_ConsciousnessLevel: 0.5,
			}},
		},
		{
			Name: "extremeRisk",
			Overrides: ParameterSet{Category_Risk: {
				Param_KellyFraction:    0.5,
				Param_MaxDrawdownLimit: 0.3,
			}},
		},
		{
			Name: "conservativeRisk",
			Overrides: ParameterSet{Category_Risk: {
				Param_KellyFraction:    0.1,
				Param_MaxDrawdownLimit: 0.1,
			}},
		},
	}
}

const (
	DefaultNumSimulations = 10_000
	DefaultSweepPoints    = 20
	DefaultHorizon        = TradingDaysPerYear
	DefaultCapital        = 100_000.0
	DefaultObjective      = "sharpeRatio"
)

// AnalysisConfig is supplied in memory by callers; nothing here touches disk
type AnalysisConfig struct {
	Seed           int64   `json:"seed"`
	NumSimulations int     `json:"numSimulations"`
	SweepPoints    int     `json:"sweepPoints"`
	Horizon        int     `json:"horizon"`
	InitialCapital float64 `json:"initialCapital"`
	Workers        int     `json:"workers"`

	// budgets for the monte carlo phase. zero means unlimited
	MaxDuration  time.Duration `json:"maxDuration"`
	SampleBudget int           `json:"sampleBudget"`

	RangeOverrides    RangeTable       `json:"rangeOverrides,omitempty"`
	BaselineOverrides ParameterSet     `json:"baselineOverrides,omitempty"`
	ExtraScenarios    []StressScenario `json:"extraScenarios,omitempty"`

	// goval expression over the metric names, used to rank monte carlo
	// samples when picking optimal parameters
	Objective string `json:"objective"`
}

func (c AnalysisConfig) WithDefaults() AnalysisConfig {
	if c.NumSimulations <= 0 {
		c.NumSimulations = DefaultNumSimulations
	}
	if c.SweepPoints <= 0 {
		c.SweepPoints = DefaultSweepPoints
	}
	if c.Horizon <= 0 {
		c.Horizon = DefaultHorizon
	}
	if c.InitialCapital <= 0 {
		c.InitialCapital = DefaultCapital
	}
	if c.Objective == "" {
		c.Objective = DefaultObjective
	}
	return c
}

type BatchSummary struct {
	Requested int  `json:"requested"`
	Completed int  `json:"completed"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Skipped   int  `json:"skipped"`
	Partial   bool `json:"partial"`
	// why the batch stopped early, empty when it ran to completion
	AbortReason string `json:"abortReason,omitempty"`
}

type MetricDistribution struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"stdDev"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	P5       float64 `json:"p5"`
	P25      float64 `json:"p25"`
	P75      float64 `json:"p75"`
	P95      float64 `json:"p95"`
}

type DistributionSummary struct {
	Metrics    map[MetricName]MetricDistribution `json:"metrics"`
	JarqueBera float64                           `json:"jarqueBera"`
	IsNormal   bool                              `json:"isNormal"`
}

type HighRiskScenario struct {
	Scenario     string  `json:"scenario"`
	ReturnImpact float64 `json:"returnImpact"`
	SharpeImpact float64 `json:"sharpeImpact"`
	Severity     string  `json:"severity"`
}

type RiskAssessment struct {
	VaR95             float64            `json:"var95"`
	VaR99             float64            `json:"var99"`
	CVaR95            float64            `json:"cvar95"`
	MaxLoss           float64            `json:"maxLoss"`
	ProbabilityOfLoss float64            `json:"probabilityOfLoss"`
	HighRiskScenarios []HighRiskScenario `json:"highRiskScenarios"`
}

type SensitivityRange struct {
	Category  Category `json:"category"`
	Parameter string   `json:"parameter"`
	Min       float64  `json:"min"`
	Max       float64  `json:"max"`
	Range     float64  `json:"range"`
}

type OptimalParameter struct {
	Category      Category `json:"category"`
	Parameter     string   `json:"parameter"`
	Baseline      float64  `json:"baseline"`
	Optimal       float64  `json:"optimal"`
	ChangePercent float64  `json:"changePercent"`
}

type Insights struct {
	CriticalElasticities    []ElasticityRecord  `json:"criticalElasticities"`
	SignificantCorrelations []CorrelationRecord `json:"significantCorrelations"`
	SensitivityRanges       []SensitivityRange  `json:"sensitivityRanges"`
	Objective               string              `json:"objective"`
	TopSampleCount          int                 `json:"topSampleCount"`
	OptimalParameters       []OptimalParameter  `json:"optimalParameters"`
}

// AnalysisResult is plain data for reporting collaborators. it is built
// once by the orchestrator and never mutated afterwards
type AnalysisResult struct {
	Seed               int64                       `json:"seed"`
	NumSimulations     int                         `json:"numSimulations"`
	Ranges             RangeTable                  `json:"ranges"`
	Baseline           ParameterSet                `json:"baseline"`
	BaselineMetrics    SimulationResult            `json:"baselineMetrics"`
	SensitivityMaps    SensitivityMaps             `json:"sensitivityMaps"`
	MonteCarloResults  []MonteCarloSample          `json:"monteCarloResults"`
	ElasticityAnalysis ElasticityAnalysis          `json:"elasticityAnalysis"`
	StressTestResults  map[string]StressTestResult `json:"stressTestResults"`
	CorrelationMatrix  CorrelationMatrix           `json:"correlationMatrix"`
	Batch              BatchSummary                `json:"batch"`
	Distribution       DistributionSummary         `json:"distribution"`
	RiskAssessment     RiskAssessment              `json:"riskAssessment"`
	Insights           Insights                    `json:"insights"`
	Profile            *Profile                    `json:"profile,omitempty"`
}
