package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strategysim/internal/domain"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func parseRunFlags(t *testing.T, args ...string) (runOptions, *pflag.FlagSet) {
	t.Helper()
	opts := runOptions{}
	f := pflag.NewFlagSet("run", pflag.ContinueOnError)
	bindRunFlags(f, &opts)
	require.NoError(t, f.Parse(args))
	return opts, f
}

func Test_runOptions_loadConfig(t *testing.T) {
	t.Run("flags only", func(t *testing.T) {
		opts, f := parseRunFlags(t, "--seed", "9", "--simulations", "50", "--max-duration", "2s")

		cfg, err := opts.loadConfig(f)
		require.NoError(t, err)
		require.Equal(t, int64(9), cfg.Seed)
		require.Equal(t, 50, cfg.NumSimulations)
		require.Equal(t, domain.DefaultSweepPoints, cfg.SweepPoints)
		require.Equal(t, 2*time.Second, cfg.MaxDuration)
		require.Equal(t, domain.DefaultObjective, cfg.Objective)
	})

	t.Run("explicit flags override the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		raw, err := json.Marshal(domain.AnalysisConfig{Seed: 1, NumSimulations: 10, Objective: "winRate"})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, raw, 0o644))

		opts, f := parseRunFlags(t, "--config", path, "--seed", "2")

		cfg, err := opts.loadConfig(f)
		require.NoError(t, err)
		require.Equal(t, int64(2), cfg.Seed)
		require.Equal(t, 10, cfg.NumSimulations)
		require.Equal(t, "winRate", cfg.Objective)
		// unset flags leave the file's zero value for WithDefaults to fill
		require.Equal(t, 0, cfg.SweepPoints)
	})

	t.Run("missing config file", func(t *testing.T) {
		opts, f := parseRunFlags(t, "--config", filepath.Join(t.TempDir(), "nope.json"))
		_, err := opts.loadConfig(f)
		require.Error(t, err)
	})
}

func TestRootCmd(t *testing.T) {
	t.Run("simulate prints the result", func(t *testing.T) {
		out := &bytes.Buffer{}
		root := newRootCmd()
		root.SetOut(out)
		root.SetArgs([]string{"simulate", "--seed", "5", "--horizon", "30", "--capital", "500"})
		require.NoError(t, root.Execute())

		result := domain.SimulationResult{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, 500.0, result.InitialCapital)
		require.Equal(t, 30, result.NumTrades)
	})

	t.Run("simulate rejects bad params", func(t *testing.T) {
		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"simulate", "--params", "{"})
		require.Error(t, root.Execute())
	})

	t.Run("simulate rejects out of range params", func(t *testing.T) {
		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetArgs([]string{"simulate", "--params", `{"risk":{"stop_loss_threshold":-0.1}}`})
		err := root.Execute()
		require.ErrorIs(t, err, domain.ErrInvalidParameter)
	})

	t.Run("run writes artifacts", func(t *testing.T) {
		dir := t.TempDir()
		out := &bytes.Buffer{}
		root := newRootCmd()
		root.SetOut(out)
		root.SetArgs([]string{
			"run",
			"--seed", "3",
			"--simulations", "12",
			"--sweep-points", "3",
			"--horizon", "30",
			"--workers", "2",
			"--out", dir,
		})
		require.NoError(t, root.Execute())
		require.True(t, strings.Contains(out.String(), "12/12 samples succeeded"), out.String())

		for _, name := range []string{"sensitivity_result.json", "sensitivity_report.md", "monte_carlo_samples.csv"} {
			_, err := os.Stat(filepath.Join(dir, name))
			require.NoError(t, err, name)
		}
	})
}
