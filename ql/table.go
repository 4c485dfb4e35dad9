package ql

import (
	"errors"
	"fmt"

	"github.com/sw965/chlorine/quantize"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrInvalidAction = errors.New("action index out of range")

// Table is a dense value table. Each row is one flattened quantized state,
// each column one action.
type Table struct {
	shape    quantize.Shape
	nActions int
	data     *mat.Dense
}

func NewTable(shape quantize.Shape, nActions int) (*Table, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if nActions <= 0 {
		return nil, fmt.Errorf("%w: nActions must be positive, got %d", ErrInvalidAction, nActions)
	}
	return &Table{
		shape:    shape,
		nActions: nActions,
		data:     mat.NewDense(shape.Size(), nActions, nil),
	}, nil
}

func (t *Table) Shape() quantize.Shape {
	return t.shape
}

func (t *Table) NumActions() int {
	return t.nActions
}

func (t *Table) row(s quantize.State) ([]float64, error) {
	i, err := t.shape.Flatten(s)
	if err != nil {
		return nil, err
	}
	return t.data.RawRowView(i), nil
}

func (t *Table) checkAction(a int) error {
	if a < 0 || a >= t.nActions {
		return fmt.Errorf("%w: %d (actions %d)", ErrInvalidAction, a, t.nActions)
	}
	return nil
}

func (t *Table) Value(s quantize.State, a int) (float64, error) {
	if err := t.checkAction(a); err != nil {
		return 0, err
	}
	row, err := t.row(s)
	if err != nil {
		return 0, err
	}
	return row[a], nil
}

func (t *Table) Set(s quantize.State, a int, v float64) error {
	if err := t.checkAction(a); err != nil {
		return err
	}
	row, err := t.row(s)
	if err != nil {
		return err
	}
	row[a] = v
	return nil
}

// Values returns a copy of the action values of s.
func (t *Table) Values(s quantize.State) ([]float64, error) {
	row, err := t.row(s)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), row...), nil
}

func (t *Table) Max(s quantize.State) (float64, error) {
	row, err := t.row(s)
	if err != nil {
		return 0, err
	}
	return floats.Max(row), nil
}

// Argmax returns the best action of s. Ties go to the lowest index.
func (t *Table) Argmax(s quantize.State) (int, error) {
	row, err := t.row(s)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(row), nil
}

// Coverage counts the states that hold at least one non-zero value, i.e.
// the states reached by a learning update.
func (t *Table) Coverage() int {
	n := 0
	rows, _ := t.data.Dims()
	for i := range rows {
		if floats.Norm(t.data.RawRowView(i), 1) != 0 {
			n++
		}
	}
	return n
}
