package rl

import (
	"fmt"

	"github.com/sw965/omw/parallel"
)

// Contender is one independent run of a comparison. Run must own every
// environment, agent and generator it touches, since contenders execute
// concurrently.
type Contender struct {
	Name string
	Run  func(episodes int) (Results, error)
}

// Evaluate wraps a Runner as a contender.
func Evaluate(name string, r Runner) Contender {
	return Contender{Name: name, Run: r.Run}
}

// Train wraps a Trainer as a contender; the agent keeps what it learned.
func Train(name string, t *Trainer) Contender {
	return Contender{Name: name, Run: t.Train}
}

// Compare runs every contender for the same number of episodes with up to
// p workers. Results are returned in contender order.
func Compare(contenders []Contender, episodes, p int) ([]Results, error) {
	if episodes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEpisode, episodes)
	}
	for i, c := range contenders {
		if c.Run == nil {
			return nil, fmt.Errorf("%w: contender %d (%s) has no Run", ErrNilField, i, c.Name)
		}
	}
	n := len(contenders)
	if n == 0 {
		return []Results{}, nil
	}
	p = min(max(p, 1), n)

	results := make([]Results, len(contenders))
	err := parallel.For(len(contenders), p, func(workerId, idx int) error {
		c := contenders[idx]
		rs, err := c.Run(episodes)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
		results[idx] = rs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
