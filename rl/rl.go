// Package rl drives episodes of the water-park environment: evaluation
// rollouts, Q-learning training and side-by-side comparison of policies.
//
// Package rl はエピソードの実行・学習・方策比較を行うハーネスです。
package rl

import (
	"errors"
	"fmt"

	"github.com/sw965/chlorine/policy"
	"github.com/sw965/chlorine/waterpark"
)

var (
	ErrNilField       = errors.New("required field is nil")
	ErrInvalidEpisode = errors.New("episode count must be positive")
)

// Experience is one transition as seen by the harness.
type Experience struct {
	State       waterpark.Observation
	ActionIndex int
	Reward      float64
	Next        waterpark.Observation
	Done        bool
}

type Experiences []Experience

// EpisodeResult summarises one simulated day. Reward includes the
// end-of-episode overuse penalty applied by the harness.
type EpisodeResult struct {
	Reward float64
	Usage  float64
	Safe   bool
	Steps  int
	Final  waterpark.Observation
}

type Results []EpisodeResult

// Runner plays a policy on an environment. OnStep, when set, sees every
// transition before the next action is chosen. OnEpisodeEnd runs after the
// result is recorded.
type Runner struct {
	Env                   *waterpark.Env
	Policy                policy.Policy
	OveruseEpisodePenalty float64

	OnStep       func(Experience) error
	OnEpisodeEnd func(episode int, result EpisodeResult) error
}

func (r Runner) validate() error {
	if r.Env == nil {
		return fmt.Errorf("%w: Env", ErrNilField)
	}
	if r.Policy == nil {
		return fmt.Errorf("%w: Policy", ErrNilField)
	}
	return nil
}

func (r Runner) RunEpisode() (EpisodeResult, error) {
	if err := r.validate(); err != nil {
		return EpisodeResult{}, err
	}
	env := r.Env
	bands := env.Bands()

	state := env.Reset()
	result := EpisodeResult{Safe: true}
	for {
		action, err := r.Policy.Act(state)
		if err != nil {
			return result, fmt.Errorf("%s: %w", r.Policy.Name(), err)
		}
		next, reward, done, _, err := env.Step(action)
		if err != nil {
			return result, err
		}
		result.Reward += reward
		result.Steps++
		if !bands.Safe(next) {
			result.Safe = false
		}
		if r.OnStep != nil {
			exp := Experience{State: state, ActionIndex: action, Reward: reward, Next: next, Done: done}
			if err := r.OnStep(exp); err != nil {
				return result, err
			}
		}
		state = next
		if done {
			break
		}
	}

	result.Usage = env.UsedStock()
	result.Final = state
	if over := result.Usage - env.MaxDailyStock(); over > 0 {
		result.Reward -= over * r.OveruseEpisodePenalty
	}
	return result, nil
}

func (r Runner) Run(episodes int) (Results, error) {
	if episodes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEpisode, episodes)
	}
	results := make(Results, 0, episodes)
	for i := range episodes {
		result, err := r.RunEpisode()
		if err != nil {
			return results, fmt.Errorf("episode %d: %w", i+1, err)
		}
		results = append(results, result)
		if r.OnEpisodeEnd != nil {
			if err := r.OnEpisodeEnd(i+1, result); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

// Rollout plays one episode and returns its full trajectory.
func Rollout(env *waterpark.Env, p policy.Policy) (Experiences, EpisodeResult, error) {
	experiences := make(Experiences, 0, env.MaxSteps())
	r := Runner{
		Env:    env,
		Policy: p,
		OnStep: func(e Experience) error {
			experiences = append(experiences, e)
			return nil
		},
	}
	result, err := r.RunEpisode()
	if err != nil {
		return nil, result, err
	}
	return experiences, result, nil
}
