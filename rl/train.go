package rl

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sw965/chlorine/policy"
	"github.com/sw965/chlorine/ql"
	"github.com/sw965/chlorine/quantize"
	"github.com/sw965/chlorine/waterpark"
)

// Trainer runs epsilon-greedy Q-learning episodes. Epsilon decays once per
// finished episode, never within one.
type Trainer struct {
	Env                   *waterpark.Env
	Agent                 *ql.Agent
	Quantizer             *quantize.Quantizer
	OveruseEpisodePenalty float64

	// LogEvery <= 0 disables progress logging.
	LogEvery int
	Logger   *slog.Logger
}

func (t *Trainer) Validate() error {
	switch {
	case t.Env == nil:
		return fmt.Errorf("%w: Env", ErrNilField)
	case t.Agent == nil:
		return fmt.Errorf("%w: Agent", ErrNilField)
	case t.Quantizer == nil:
		return fmt.Errorf("%w: Quantizer", ErrNilField)
	}
	if got, want := t.Agent.Table().NumActions(), t.Env.NumActions(); got != want {
		return fmt.Errorf("%w: agent has %d actions, environment %d", ql.ErrInvalidAction, got, want)
	}
	return t.Quantizer.Shape().Fits(t.Agent.Table().Shape())
}

func (t *Trainer) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return t.Logger
}

// Policy returns the behaviour policy the trainer acts with.
func (t *Trainer) Policy() policy.Policy {
	return policy.EpsilonGreedy{Agent: t.Agent, Quantizer: t.Quantizer}
}

func (t *Trainer) Train(episodes int) (Results, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	log := t.logger()
	r := Runner{
		Env:                   t.Env,
		Policy:                t.Policy(),
		OveruseEpisodePenalty: t.OveruseEpisodePenalty,
		OnStep: func(e Experience) error {
			s := t.Quantizer.Quantize(e.State)
			next := t.Quantizer.Quantize(e.Next)
			return t.Agent.Learn(s, e.ActionIndex, e.Reward, next)
		},
		OnEpisodeEnd: func(episode int, result EpisodeResult) error {
			t.Agent.DecayEpsilon()
			if t.LogEvery > 0 && episode%t.LogEvery == 0 {
				log.Info("training progress",
					"episode", episode,
					"episodes", episodes,
					"epsilon", t.Agent.Epsilon(),
					"reward", result.Reward,
					"usage", result.Usage,
				)
			}
			return nil
		},
	}
	return r.Run(episodes)
}
