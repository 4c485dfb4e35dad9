package ql

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sw965/chlorine/mathx/randx"
	"github.com/sw965/chlorine/quantize"
)

var ErrInvalidParams = errors.New("invalid agent parameters")

type Params struct {
	LearningRate   float64
	DiscountFactor float64
	Epsilon        float64
	EpsilonDecay   float64
	EpsilonMin     float64
}

func DefaultParams() Params {
	return Params{
		LearningRate:   0.1,
		DiscountFactor: 0.95,
		Epsilon:        0.3,
		EpsilonDecay:   0.999,
		EpsilonMin:     0.001,
	}
}

func (p Params) Validate() error {
	in01 := func(name string, v float64) error {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %v", ErrInvalidParams, name, v)
		}
		return nil
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"LearningRate", p.LearningRate},
		{"DiscountFactor", p.DiscountFactor},
		{"Epsilon", p.Epsilon},
		{"EpsilonDecay", p.EpsilonDecay},
		{"EpsilonMin", p.EpsilonMin},
	} {
		if err := in01(c.name, c.v); err != nil {
			return err
		}
	}
	if p.Epsilon < p.EpsilonMin {
		return fmt.Errorf("%w: Epsilon (%v) below EpsilonMin (%v)", ErrInvalidParams, p.Epsilon, p.EpsilonMin)
	}
	return nil
}

// Agent is an epsilon-greedy Q-learner. Not safe for concurrent use.
type Agent struct {
	table   *Table
	params  Params
	epsilon float64
	rng     *rand.Rand
}

// NewAgent sizes the table from the declared shape. A nil rng is replaced by
// an unseeded source.
func NewAgent(declared quantize.Shape, nActions int, params Params, rng *rand.Rand) (*Agent, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	table, err := NewTable(declared, nActions)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = randx.New(nil)
	}
	return &Agent{table: table, params: params, epsilon: params.Epsilon, rng: rng}, nil
}

// NewAgentFor checks that q cannot emit a bucket outside declared before
// building the agent.
func NewAgentFor(q *quantize.Quantizer, declared quantize.Shape, nActions int, params Params, rng *rand.Rand) (*Agent, error) {
	if err := declared.Validate(); err != nil {
		return nil, err
	}
	if err := q.Shape().Fits(declared); err != nil {
		return nil, err
	}
	return NewAgent(declared, nActions, params, rng)
}

// ChooseAction explores with probability epsilon, otherwise exploits.
func (a *Agent) ChooseAction(s quantize.State) (int, error) {
	best, err := a.table.Argmax(s)
	if err != nil {
		return 0, err
	}
	if a.rng.Float64() < a.epsilon {
		return a.rng.IntN(a.table.nActions), nil
	}
	return best, nil
}

func (a *Agent) Greedy(s quantize.State) (int, error) {
	return a.table.Argmax(s)
}

func (a *Agent) Learn(s quantize.State, action int, reward float64, next quantize.State) error {
	nextMax, err := a.table.Max(next)
	if err != nil {
		return err
	}
	q, err := a.table.Value(s, action)
	if err != nil {
		return err
	}
	return a.table.Set(s, action, UpdateQ(q, nextMax, reward, a.params.LearningRate, a.params.DiscountFactor))
}

// DecayEpsilon is meant to be called once per finished episode.
func (a *Agent) DecayEpsilon() {
	if a.epsilon > a.params.EpsilonMin {
		a.epsilon *= a.params.EpsilonDecay
		if a.epsilon < a.params.EpsilonMin {
			a.epsilon = a.params.EpsilonMin
		}
	}
}

func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

func (a *Agent) Params() Params {
	return a.params
}

func (a *Agent) Table() *Table {
	return a.table
}
