package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strategysim/api"
	"strategysim/cmd"
	"strategysim/internal/domain"
	"strategysim/internal/logger"
	l2_service "strategysim/internal/service/l2"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type runOptions struct {
	configPath   string
	seed         int64
	simulations  int
	sweepPoints  int
	horizon      int
	capital      float64
	workers      int
	maxDuration  time.Duration
	sampleBudget int
	objective    string
	outDir       string
	persist      bool
}

// loadConfig starts from the json file when one is given and lets any flag
// the caller set explicitly win over it
func (o runOptions) loadConfig(flags *pflag.FlagSet) (domain.AnalysisConfig, error) {
	cfg := domain.AnalysisConfig{}
	if o.configPath != "" {
		raw, err := os.ReadFile(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", o.configPath, err)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", o.configPath, err)
		}
	}

	if o.configPath == "" || flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if o.configPath == "" || flags.Changed("simulations") {
		cfg.NumSimulations = o.simulations
	}
	if o.configPath == "" || flags.Changed("sweep-points") {
		cfg.SweepPoints = o.sweepPoints
	}
	if o.configPath == "" || flags.Changed("horizon") {
		cfg.Horizon = o.horizon
	}
	if o.configPath == "" || flags.Changed("capital") {
		cfg.InitialCapital = o.capital
	}
	if o.configPath == "" || flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if o.configPath == "" || flags.Changed("max-duration") {
		cfg.MaxDuration = o.maxDuration
	}
	if o.configPath == "" || flags.Changed("sample-budget") {
		cfg.SampleBudget = o.sampleBudget
	}
	if o.configPath == "" || flags.Changed("objective") {
		cfg.Objective = o.objective
	}

	return cfg, nil
}

func bindRunFlags(f *pflag.FlagSet, opts *runOptions) {
	f.StringVar(&opts.configPath, "config", "", "json AnalysisConfig file; explicit flags override it")
	f.Int64Var(&opts.seed, "seed", 12345, "master seed")
	f.IntVar(&opts.simulations, "simulations", domain.DefaultNumSimulations, "number of monte carlo samples")
	f.IntVar(&opts.sweepPoints, "sweep-points", domain.DefaultSweepPoints, "grid points per univariate sweep")
	f.IntVar(&opts.horizon, "horizon", domain.DefaultHorizon, "steps per simulation")
	f.Float64Var(&opts.capital, "capital", domain.DefaultCapital, "initial capital")
	f.IntVar(&opts.workers, "workers", 0, "worker count, 0 uses every cpu")
	f.DurationVar(&opts.maxDuration, "max-duration", 0, "wall clock budget for the monte carlo batch")
	f.IntVar(&opts.sampleBudget, "sample-budget", 0, "cap on monte carlo samples actually run")
	f.StringVar(&opts.objective, "objective", domain.DefaultObjective, "expression used to rank samples")
	f.StringVar(&opts.outDir, "out", "sensitivity_results", "directory for the report artifacts")
	f.BoolVar(&opts.persist, "persist", false, "save the run to postgres")
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	c := &cobra.Command{
		Use:   "run",
		Short: "run the full sensitivity analysis and write the report artifacts",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(c.Flags())
			if err != nil {
				return err
			}

			var handler *api.ApiHandler
			if opts.persist {
				handler, _, err = cmd.InitializeDependencies()
				if err != nil {
					return err
				}
				defer cmd.CloseDependencies(handler)
			} else {
				handler = cmd.NewEngine(nil)
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt)
			defer stop()
			log := zap.S()
			ctx = logger.NewCtx(ctx, log)

			result, err := handler.SensitivityService.RunFullAnalysis(ctx, cfg)
			if err != nil {
				return err
			}

			doc, err := handler.ReportService.BuildDocument(result)
			if err != nil {
				return err
			}
			paths, err := handler.ReportService.WriteArtifacts(opts.outDir, *doc)
			if err != nil {
				return err
			}
			for _, p := range paths {
				log.Infof("wrote %s", p)
			}

			if opts.persist {
				run, err := handler.ReportService.Save(*doc)
				if err != nil {
					return err
				}
				log.Infof("saved sensitivity run %s", run.SensitivityRunID.String())
			}

			fmt.Fprintf(c.OutOrStdout(), "run %s: %d/%d samples succeeded\n",
				doc.RunID.String(), result.Batch.Succeeded, result.Batch.Requested)
			return nil
		},
	}

	bindRunFlags(c.Flags(), &opts)

	return c
}

type simulateOptions struct {
	seed    int64
	horizon int
	capital float64
	trace   bool
	params  string
}

func newSimulateCmd() *cobra.Command {
	opts := simulateOptions{}
	c := &cobra.Command{
		Use:   "simulate",
		Short: "run one strategy simulation on the baseline parameters",
		RunE: func(c *cobra.Command, args []string) error {
			overrides := domain.ParameterSet{}
			if opts.params != "" {
				if err := json.Unmarshal([]byte(opts.params), &overrides); err != nil {
					return fmt.Errorf("failed to parse params: %w", err)
				}
			}
			params, err := domain.DefaultBaseline().ApplyOverrides(overrides, domain.DefaultRanges())
			if err != nil {
				return fmt.Errorf("failed to apply params: %w", err)
			}

			result, err := l2_service.NewStrategySimulator(opts.horizon, opts.capital, opts.trace).Simulate(params, opts.seed)
			if err != nil {
				return err
			}
			return printJson(c.OutOrStdout(), result)
		},
	}

	f := c.Flags()
	f.Int64Var(&opts.seed, "seed", 12345, "simulation seed")
	f.IntVar(&opts.horizon, "horizon", domain.DefaultHorizon, "steps to simulate")
	f.Float64Var(&opts.capital, "capital", domain.DefaultCapital, "initial capital")
	f.BoolVar(&opts.trace, "trace", false, "include the equity curve and trades")
	f.StringVar(&opts.params, "params", "", `json overrides, e.g. {"risk":{"kelly_fraction":0.1}}`)

	return c
}

func printJson(w io.Writer, v any) error {
	bytes, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bytes))
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sensitivity",
		Short:         "parameter sensitivity and monte carlo analysis for the strategy simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newSimulateCmd())
	return root
}

func main() {
	defer zap.S().Sync()
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		zap.S().Error(err)
		os.Exit(1)
	}
}
