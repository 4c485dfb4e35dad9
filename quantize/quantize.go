// Package quantize maps continuous water-park observations onto the small
// bucket tuples used to index a tabular value function.
package quantize

import (
	"errors"
	"fmt"

	"github.com/sw965/chlorine/waterpark"
)

var (
	ErrInvalidLayout = errors.New("invalid quantization layout")
	ErrShapeMismatch = errors.New("quantizer produces more buckets than the declared shape")
	ErrOutOfRange    = errors.New("bucket index out of range")
)

// Field order of State and Shape. It matches waterpark.Observation.
const (
	Residual = iota
	Turbidity
	PH
	Stock
	Time
)

type State [waterpark.NumFields]int

// Shape holds the cardinality of every dimension.
type Shape [waterpark.NumFields]int

func (s Shape) Size() int {
	n := 1
	for _, c := range s {
		n *= c
	}
	return n
}

func (s Shape) Validate() error {
	for i, c := range s {
		if c <= 0 {
			return fmt.Errorf("%w: dimension %d has cardinality %d", ErrInvalidLayout, i, c)
		}
	}
	return nil
}

// Fits returns ErrShapeMismatch when any dimension of s needs more buckets
// than declared allows.
func (s Shape) Fits(declared Shape) error {
	for i := range s {
		if s[i] > declared[i] {
			return fmt.Errorf("%w: dimension %d needs %d buckets, declared %d", ErrShapeMismatch, i, s[i], declared[i])
		}
	}
	return nil
}

func (s Shape) Contains(state State) bool {
	for i, b := range state {
		if b < 0 || b >= s[i] {
			return false
		}
	}
	return true
}

// Flatten returns the row-major index of state.
func (s Shape) Flatten(state State) (int, error) {
	if !s.Contains(state) {
		return 0, fmt.Errorf("%w: %v for shape %v", ErrOutOfRange, state, s)
	}
	idx := 0
	for i, b := range state {
		idx = idx*s[i] + b
	}
	return idx, nil
}

// Unflatten is the inverse of Flatten.
func (s Shape) Unflatten(idx int) (State, error) {
	if idx < 0 || idx >= s.Size() {
		return State{}, fmt.Errorf("%w: flat index %d for shape %v", ErrOutOfRange, idx, s)
	}
	var state State
	for i := len(s) - 1; i >= 0; i-- {
		state[i] = idx % s[i]
		idx /= s[i]
	}
	return state, nil
}
