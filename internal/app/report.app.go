package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strategysim/internal/db/models/postgres/public/model"
	"strategysim/internal/domain"
	"strategysim/internal/repository"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunDocument is what gets persisted for a finished analysis
type RunDocument struct {
	RunID     uuid.UUID              `json:"runId"`
	Timestamp time.Time              `json:"timestamp"`
	Seed      int64                  `json:"seed"`
	Result    *domain.AnalysisResult `json:"result"`
}

const (
	resultFileName     = "sensitivity_result.json"
	reportFileName     = "sensitivity_report.md"
	monteCarloFileName = "monte_carlo_samples.csv"
)

type ReportService interface {
	BuildDocument(result *domain.AnalysisResult) (*RunDocument, error)
	RenderMarkdown(doc RunDocument) string
	ExportMonteCarloCSV(w io.Writer, samples []domain.MonteCarloSample) error
	WriteArtifacts(dir string, doc RunDocument) ([]string, error)
	Save(doc RunDocument) (*model.SensitivityRun, error)
	Load(id uuid.UUID) (*RunDocument, error)
	List(limit int64) ([]model.SensitivityRun, error)
}

type reportServiceHandler struct {
	SensitivityRunRepository repository.SensitivityRunRepository
	now                      func() time.Time
}

// NewReportService accepts a nil repository for callers that only write
// local artifacts
func NewReportService(sensitivityRunRepository repository.SensitivityRunRepository) ReportService {
	return reportServiceHandler{
		SensitivityRunRepository: sensitivityRunRepository,
		now:                      func() time.Time { return time.Now().UTC() },
	}
}

func (h reportServiceHandler) BuildDocument(result *domain.AnalysisResult) (*RunDocument, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot build document from nil result")
	}
	return &RunDocument{
		RunID:     uuid.New(),
		Timestamp: h.now(),
		Seed:      result.Seed,
		Result:    result,
	}, nil
}

func pct(v float64) string {
	return decimal.NewFromFloat(v*100).StringFixed(2) + "%"
}

func num(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

func money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func (h reportServiceHandler) RenderMarkdown(doc RunDocument) string {
	r := doc.Result
	b := &strings.Builder{}
	if r == nil {
		return "# Sensitivity Analysis\n\nno result\n"
	}

	fmt.Fprintf(b, "# Sensitivity Analysis\n\n")
	fmt.Fprintf(b, "- run: `%s`\n", doc.RunID.String())
	fmt.Fprintf(b, "- timestamp: %s\n", doc.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(b, "- seed: %d\n", doc.Seed)
	fmt.Fprintf(b, "- monte carlo: %d requested, %d succeeded, %d failed, %d skipped\n",
		r.Batch.Requested, r.Batch.Succeeded, r.Batch.Failed, r.Batch.Skipped)
	if r.Batch.Partial {
		fmt.Fprintf(b, "- partial batch: %s\n", r.Batch.AbortReason)
	}

	base := r.BaselineMetrics
	fmt.Fprintf(b, "\n## Baseline\n\n")
	fmt.Fprintf(b, "| metric | value |\n|---|---|\n")
	fmt.Fprintf(b, "| initial capital | %s |\n", money(base.InitialCapital))
	fmt.Fprintf(b, "| final capital | %s |\n", money(base.FinalCapital))
	fmt.Fprintf(b, "| total return | %s |\n", pct(base.TotalReturn))
	fmt.Fprintf(b, "| sharpe ratio | %s |\n", num(base.SharpeRatio))
	fmt.Fprintf(b, "| max drawdown | %s |\n", pct(base.MaxDrawdown))
	fmt.Fprintf(b, "| win rate | %s |\n", pct(base.WinRate))
	fmt.Fprintf(b, "| profit factor | %s |\n", num(base.ProfitFactor))

	fmt.Fprintf(b, "\n## Distribution\n\n")
	fmt.Fprintf(b, "| metric | mean | median | std dev | p5 | p95 |\n|---|---|---|---|---|---|\n")
	for _, metric := range domain.AllMetrics {
		d := r.Distribution.Metrics[metric]
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			metric, num(d.Mean), num(d.Median), num(d.StdDev), num(d.P5), num(d.P95))
	}
	normal := "no"
	if r.Distribution.IsNormal {
		normal = "yes"
	}
	fmt.Fprintf(b, "\njarque-bera %s, returns normal: %s\n", num(r.Distribution.JarqueBera), normal)

	risk := r.RiskAssessment
	fmt.Fprintf(b, "\n## Risk\n\n")
	fmt.Fprintf(b, "- VaR 95: %s\n", pct(risk.VaR95))
	fmt.Fprintf(b, "- VaR 99: %s\n", pct(risk.VaR99))
	fmt.Fprintf(b, "- CVaR 95: %s\n", pct(risk.CVaR95))
	fmt.Fprintf(b, "- max loss: %s\n", pct(risk.MaxLoss))
	fmt.Fprintf(b, "- probability of loss: %s\n", pct(risk.ProbabilityOfLoss))
	if len(risk.HighRiskScenarios) > 0 {
		fmt.Fprintf(b, "\n| scenario | return vs baseline | sharpe vs baseline | severity |\n|---|---|---|---|\n")
		for _, s := range risk.HighRiskScenarios {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n", s.Scenario, num(s.ReturnImpact), num(s.SharpeImpact), s.Severity)
		}
	}

	insights := r.Insights
	fmt.Fprintf(b, "\n## Critical Elasticities\n\n")
	if len(insights.CriticalElasticities) == 0 {
		fmt.Fprintf(b, "none\n")
	}
	for _, e := range insights.CriticalElasticities {
		fmt.Fprintf(b, "- %s.%s -> %s: %s\n", e.Category, e.Parameter, e.Metric, num(e.Value))
	}

	fmt.Fprintf(b, "\n## Significant Correlations\n\n")
	if len(insights.SignificantCorrelations) == 0 {
		fmt.Fprintf(b, "none\n")
	}
	for _, c := range insights.SignificantCorrelations {
		fmt.Fprintf(b, "- %s -> %s: %s\n", c.Parameter, c.Metric, num(c.Value))
	}

	fmt.Fprintf(b, "\n## Sweep Ranges\n\n")
	fmt.Fprintf(b, "| parameter | min return | max return | range |\n|---|---|---|---|\n")
	for _, s := range insights.SensitivityRanges {
		fmt.Fprintf(b, "| %s.%s | %s | %s | %s |\n", s.Category, s.Parameter, pct(s.Min), pct(s.Max), pct(s.Range))
	}

	fmt.Fprintf(b, "\n## Optimal Parameters\n\n")
	fmt.Fprintf(b, "top %d samples by `%s`\n\n", insights.TopSampleCount, insights.Objective)
	fmt.Fprintf(b, "| parameter | baseline | optimal | change |\n|---|---|---|---|\n")
	for _, p := range insights.OptimalParameters {
		fmt.Fprintf(b, "| %s.%s | %s | %s | %s%% |\n",
			p.Category, p.Parameter, num(p.Baseline), num(p.Optimal), decimal.NewFromFloat(p.ChangePercent).StringFixed(1))
	}

	return b.String()
}

type monteCarloCsvRow struct {
	Simulation int    `csv:"simulation"`
	Seed       int64  `csv:"seed"`
	Error      string `csv:"error"`

	LambdaMultiplier   float64 `csv:"signal_lambda_multiplier"`
	ResonanceFreq      float64 `csv:"signal_resonance_freq"`
	CoherenceThreshold float64 `csv:"signal_coherence_threshold"`
	ConsciousnessLevel float64 `csv:"signal_consciousness_level"`
	ZReal              float64 `csv:"signal_z_real"`
	ZImag              float64 `csv:"signal_z_imag"`

	VolatilityBase     float64 `csv:"market_volatility_base"`
	DriftRate          float64 `csv:"market_drift_rate"`
	MeanReversionSpeed float64 `csv:"market_mean_reversion_speed"`
	JumpFrequency      float64 `csv:"market_jump_frequency"`
	JumpMagnitude      float64 `csv:"market_jump_magnitude"`

	KellyFraction     float64 `csv:"risk_kelly_fraction"`
	MaxDrawdownLimit  float64 `csv:"risk_max_drawdown_limit"`
	PositionSizeLimit float64 `csv:"risk_position_size_limit"`
	StopLossThreshold float64 `csv:"risk_stop_loss_threshold"`
	TakeProfitRatio   float64 `csv:"risk_take_profit_ratio"`

	TotalReturn  float64 `csv:"totalReturn"`
	SharpeRatio  float64 `csv:"sharpeRatio"`
	MaxDrawdown  float64 `csv:"maxDrawdown"`
	WinRate      float64 `csv:"winRate"`
	ProfitFactor float64 `csv:"profitFactor"`
}

func newMonteCarloCsvRow(s domain.MonteCarloSample) monteCarloCsvRow {
	p := s.Parameters
	signal := p.Signal()
	market := p.Market()
	risk := p.Risk()

	row := monteCarloCsvRow{
		Simulation: s.Simulation,
		Seed:       s.Seed,

		LambdaMultiplier:   signal.LambdaMultiplier,
		ResonanceFreq:      signal.ResonanceFreq,
		CoherenceThreshold: signal.CoherenceThreshold,
		ConsciousnessLevel: signal.ConsciousnessLevel,
		ZReal:              signal.ZReal,
		ZImag:              signal.ZImag,

		VolatilityBase:     market.VolatilityBase,
		DriftRate:          market.DriftRate,
		MeanReversionSpeed: market.MeanReversionSpeed,
		JumpFrequency:      market.JumpFrequency,
		JumpMagnitude:      market.JumpMagnitude,

		KellyFraction:     risk.KellyFraction,
		MaxDrawdownLimit:  risk.MaxDrawdownLimit,
		PositionSizeLimit: risk.PositionSizeLimit,
		StopLossThreshold: risk.StopLossThreshold,
		TakeProfitRatio:   risk.TakeProfitRatio,
	}
	if s.Error != nil {
		row.Error = *s.Error
	}
	if s.Metrics != nil {
		row.TotalReturn = s.Metrics.TotalReturn
		row.SharpeRatio = s.Metrics.SharpeRatio
		row.MaxDrawdown = s.Metrics.MaxDrawdown
		row.WinRate = s.Metrics.WinRate
		row.ProfitFactor = s.Metrics.ProfitFactor
	}
	return row
}

// ExportMonteCarloCSV writes one row per sample with every parameter and
// metric as its own column. failed samples keep their parameters and
// carry the error instead of metrics
func (h reportServiceHandler) ExportMonteCarloCSV(w io.Writer, samples []domain.MonteCarloSample) error {
	rows := make([]monteCarloCsvRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, newMonteCarloCsvRow(s))
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to marshal monte carlo samples: %w", err)
	}
	return nil
}

// WriteArtifacts writes the json document, the markdown report and the
// monte carlo csv into dir and returns the paths written
func (h reportServiceHandler) WriteArtifacts(dir string, doc RunDocument) ([]string, error) {
	if doc.Result == nil {
		return nil, fmt.Errorf("cannot write artifacts for nil result")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	resultBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run document: %w", err)
	}

	csvBuf := &bytes.Buffer{}
	if err := h.ExportMonteCarloCSV(csvBuf, doc.Result.MonteCarloResults); err != nil {
		return nil, err
	}

	files := []struct {
		name    string
		content []byte
	}{
		{resultFileName, resultBytes},
		{reportFileName, []byte(h.RenderMarkdown(doc))},
		{monteCarloFileName, csvBuf.Bytes()},
	}

	paths := []string{}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.content, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func (h reportServiceHandler) Save(doc RunDocument) (*model.SensitivityRun, error) {
	if h.SensitivityRunRepository == nil {
		return nil, fmt.Errorf("no sensitivity run repository configured")
	}
	if doc.Result == nil {
		return nil, fmt.Errorf("cannot save nil result")
	}

	resultBytes, err := json.Marshal(doc.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	run, err := h.SensitivityRunRepository.Add(nil, model.SensitivityRun{
		SensitivityRunID: doc.RunID,
		Seed:             doc.Seed,
		NumSimulations:   int32(doc.Result.Batch.Requested),
		NumFailed:        int32(doc.Result.Batch.Failed),
		Partial:          doc.Result.Batch.Partial,
		Result:           string(resultBytes),
		CreatedAt:        doc.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save sensitivity run: %w", err)
	}

	return run, nil
}

// Load returns nil, nil when the run does not exist
func (h reportServiceHandler) Load(id uuid.UUID) (*RunDocument, error) {
	if h.SensitivityRunRepository == nil {
		return nil, fmt.Errorf("no sensitivity run repository configured")
	}

	run, err := h.SensitivityRunRepository.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sensitivity run: %w", err)
	}
	if run == nil {
		return nil, nil
	}

	result := domain.AnalysisResult{}
	if err := json.Unmarshal([]byte(run.Result), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sensitivity run %s: %w", id.String(), err)
	}

	return &RunDocument{
		RunID:     run.SensitivityRunID,
		Timestamp: run.CreatedAt,
		Seed:      run.Seed,
		Result:    &result,
	}, nil
}

func (h reportServiceHandler) List(limit int64) ([]model.SensitivityRun, error) {
	if h.SensitivityRunRepository == nil {
		return nil, fmt.Errorf("no sensitivity run repository configured")
	}
	runs, err := h.SensitivityRunRepository.List(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensitivity runs: %w", err)
	}
	return runs, nil
}
