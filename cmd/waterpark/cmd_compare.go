package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/sw965/chlorine/mathx/randx"
	"github.com/sw965/chlorine/policy"
	"github.com/sw965/chlorine/report"
	"github.com/sw965/chlorine/rl"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare fixed, random and Q-learning dosing",
		Long: `Runs the fixed-interval and random baselines alongside Q-learning training,
then evaluates the learned table greedily. Prints a summary table and, unless
disabled, writes an HTML chart of the learning curves.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if n, _ := cmd.Flags().GetInt("episodes"); n > 0 {
				cfg.Episodes = n
			}
			if n, _ := cmd.Flags().GetInt("eval-episodes"); n > 0 {
				cfg.EvalEpisodes = n
			}
			if noChart, _ := cmd.Flags().GetBool("no-chart"); noChart {
				cfg.Report.Chart = false
			}

			runID := uuid.NewString()
			log := newLogger(cfg.LogLevel, cmd.ErrOrStderr()).With("run_id", runID)

			// 並列に走る各コンテンダーは専用の乱数生成器を持つ
			rngs := randx.Split(cfg.Rand(), 6)
			fixed, err := cfg.FixedPolicy()
			if err != nil {
				return err
			}
			fixedEnv, err := newEnv(cfg, rngs[0])
			if err != nil {
				return err
			}
			randomEnv, err := newEnv(cfg, rngs[1])
			if err != nil {
				return err
			}
			trainer, err := newTrainer(cfg, log, rngs[2], rngs[3])
			if err != nil {
				return err
			}
			evalEnv, err := newEnv(cfg, rngs[4])
			if err != nil {
				return err
			}
			random := policy.NewRandom(rngs[5])

			contenders := []rl.Contender{
				rl.Evaluate(fixed.Name(), rl.Runner{Env: fixedEnv, Policy: fixed, OveruseEpisodePenalty: cfg.OveruseEpisodePenalty}),
				rl.Evaluate(random.Name(), rl.Runner{Env: randomEnv, Policy: random, OveruseEpisodePenalty: cfg.OveruseEpisodePenalty}),
				rl.Train(trainer.Policy().Name(), trainer),
			}
			log.Info("comparison started",
				"variant", cfg.Variant,
				"episodes", cfg.Episodes,
				"parallelism", cfg.Parallelism,
			)
			results, err := rl.Compare(contenders, cfg.Episodes, cfg.Parallelism)
			if err != nil {
				return err
			}

			greedy := policy.Greedy{Agent: trainer.Agent, Quantizer: trainer.Quantizer}
			evalResults, err := rl.Runner{Env: evalEnv, Policy: greedy, OveruseEpisodePenalty: cfg.OveruseEpisodePenalty}.Run(cfg.EvalEpisodes)
			if err != nil {
				return err
			}
			log.Info("greedy evaluation finished",
				"episodes", cfg.EvalEpisodes,
				"coverage", trainer.Agent.Table().Coverage(),
			)

			rows := make([]rl.Summary, 0, len(contenders)+1)
			series := make([]report.Series, 0, len(contenders))
			for i, c := range contenders {
				rows = append(rows, results[i].Summary(c.Name))
				series = append(series, report.Series{Name: c.Name, Results: results[i]})
			}
			rows = append(rows, evalResults.Summary(greedy.Name()))
			if err := report.Summary(cmd.OutOrStdout(), rows, cfg.Report.Color); err != nil {
				return err
			}

			if !cfg.Report.Chart {
				return nil
			}
			path, err := writeChart(cfg.Report.Dir, runID, cfg.Window, series)
			if err != nil {
				return err
			}
			log.Info("chart written", "path", path)
			return nil
		},
	}
	cmd.Flags().Int("episodes", 0, "Training episodes per contender (0 uses the config)")
	cmd.Flags().Int("eval-episodes", 0, "Greedy evaluation episodes (0 uses the config)")
	cmd.Flags().Bool("no-chart", false, "Skip the HTML chart")
	return cmd
}

func writeChart(dir, runID string, window int, series []report.Series) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating chart directory: %w", err)
	}
	path := filepath.Join(dir, "compare-"+runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating chart file: %w", err)
	}
	if err := report.Chart(f, window, series...); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
