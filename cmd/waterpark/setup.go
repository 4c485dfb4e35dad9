package main

import (
	"log/slog"
	"math/rand/v2"

	"github.com/sw965/chlorine/config"
	"github.com/sw965/chlorine/ql"
	"github.com/sw965/chlorine/quantize"
	"github.com/sw965/chlorine/rl"
	"github.com/sw965/chlorine/waterpark"
)

func newEnv(cfg *config.Config, rng *rand.Rand) (*waterpark.Env, error) {
	return waterpark.New(cfg.EnvConfig(), rng)
}

// newTrainer wires a fresh agent to its own environment. The two
// generators must not be shared with anything running concurrently.
func newTrainer(cfg *config.Config, log *slog.Logger, envRng, agentRng *rand.Rand) (*rl.Trainer, error) {
	env, err := newEnv(cfg, envRng)
	if err != nil {
		return nil, err
	}
	q, err := quantize.New(cfg.Layout())
	if err != nil {
		return nil, err
	}
	agent, err := ql.NewAgentFor(q, q.Shape(), env.NumActions(), cfg.AgentParams(), agentRng)
	if err != nil {
		return nil, err
	}
	return &rl.Trainer{
		Env:                   env,
		Agent:                 agent,
		Quantizer:             q,
		OveruseEpisodePenalty: cfg.OveruseEpisodePenalty,
		LogEvery:              cfg.LogEvery,
		Logger:                log,
	}, nil
}
