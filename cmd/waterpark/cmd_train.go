package main

import (
	"github.com/spf13/cobra"
	"github.com/sw965/chlorine/mathx/randx"
	"github.com/sw965/chlorine/policy"
	"github.com/sw965/chlorine/report"
	"github.com/sw965/chlorine/rl"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a Q-learning agent and evaluate it greedily",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if n, _ := cmd.Flags().GetInt("episodes"); n > 0 {
				cfg.Episodes = n
			}
			log := newLogger(cfg.LogLevel, cmd.ErrOrStderr())

			rngs := randx.Split(cfg.Rand(), 3)
			trainer, err := newTrainer(cfg, log, rngs[0], rngs[1])
			if err != nil {
				return err
			}
			trained, err := trainer.Train(cfg.Episodes)
			if err != nil {
				return err
			}
			log.Info("training finished",
				"episodes", cfg.Episodes,
				"epsilon", trainer.Agent.Epsilon(),
				"coverage", trainer.Agent.Table().Coverage(),
			)

			evalEnv, err := newEnv(cfg, rngs[2])
			if err != nil {
				return err
			}
			greedy := policy.Greedy{Agent: trainer.Agent, Quantizer: trainer.Quantizer}
			evaluated, err := rl.Runner{Env: evalEnv, Policy: greedy, OveruseEpisodePenalty: cfg.OveruseEpisodePenalty}.Run(cfg.EvalEpisodes)
			if err != nil {
				return err
			}
			rows := []rl.Summary{
				trained.Tail(cfg.Window).Summary("last-window"),
				evaluated.Summary(greedy.Name()),
			}
			return report.Summary(cmd.OutOrStdout(), rows, cfg.Report.Color)
		},
	}
	cmd.Flags().Int("episodes", 0, "Training episodes (0 uses the config)")
	return cmd
}
