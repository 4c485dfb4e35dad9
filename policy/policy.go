// Package policy provides the dosing decision rules compared against each
// other: a fixed schedule, a coin flip, and rules backed by a learned table.
package policy

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sw965/chlorine/mathx/randx"
	"github.com/sw965/chlorine/ql"
	"github.com/sw965/chlorine/quantize"
	"github.com/sw965/chlorine/waterpark"
	omwrandx "github.com/sw965/omw/mathx/randx"
)

var ErrInvalidPolicy = errors.New("invalid policy")

type Policy interface {
	Name() string
	Act(waterpark.Observation) (int, error)
}

// FixedInterval doses Action every Interval steps while stock remains.
type FixedInterval struct {
	Interval int
	Action   int
}

// NewFixedInterval spreads pulses doses evenly over a day of maxSteps.
func NewFixedInterval(maxSteps, pulses, action int) (FixedInterval, error) {
	if pulses <= 0 || maxSteps < pulses {
		return FixedInterval{}, fmt.Errorf("%w: %d pulses over %d steps", ErrInvalidPolicy, pulses, maxSteps)
	}
	if action < 0 {
		return FixedInterval{}, fmt.Errorf("%w: negative action %d", ErrInvalidPolicy, action)
	}
	return FixedInterval{Interval: maxSteps / pulses, Action: action}, nil
}

func (p FixedInterval) Name() string {
	return "fixed"
}

func (p FixedInterval) Act(obs waterpark.Observation) (int, error) {
	if p.Interval <= 0 {
		return 0, fmt.Errorf("%w: interval %d", ErrInvalidPolicy, p.Interval)
	}
	if obs.RemainingStock > 0 && obs.Step%p.Interval == 0 {
		return p.Action, nil
	}
	return 0, nil
}

// Random picks uniformly among Actions and ignores the observation.
type Random struct {
	Actions []int
	rng     *rand.Rand
}

// NewRandom chooses between action 0 and action 1, which are "no dose" and
// the smallest dose because waterpark.Config requires an ascending menu.
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = randx.New(nil)
	}
	return &Random{Actions: []int{0, 1}, rng: rng}
}

func (p *Random) Name() string {
	return "random"
}

func (p *Random) Act(waterpark.Observation) (int, error) {
	return omwrandx.Choice(p.Actions, p.rng)
}

// Greedy always exploits the agent's table.
type Greedy struct {
	Agent     *ql.Agent
	Quantizer *quantize.Quantizer
}

func (p Greedy) Name() string {
	return "greedy"
}

func (p Greedy) Act(obs waterpark.Observation) (int, error) {
	return p.Agent.Greedy(p.Quantizer.Quantize(obs))
}

// EpsilonGreedy is the behaviour policy used while training.
type EpsilonGreedy struct {
	Agent     *ql.Agent
	Quantizer *quantize.Quantizer
}

func (p EpsilonGreedy) Name() string {
	return "q-learning"
}

func (p EpsilonGreedy) Act(obs waterpark.Observation) (int, error) {
	return p.Agent.ChooseAction(p.Quantizer.Quantize(obs))
}
