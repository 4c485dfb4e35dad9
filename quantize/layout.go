package quantize

import (
	"fmt"
	"math"

	"github.com/sw965/chlorine/waterpark"
)

// Edge is a cut point between two buckets. A value is below the edge when
// x < At, or x <= At when Inclusive.
type Edge struct {
	At        float64
	Inclusive bool
}

func (e Edge) below(x float64) bool {
	if e.Inclusive {
		return x <= e.At
	}
	return x < e.At
}

// Edges are ascending cut points. n edges give n+1 buckets.
type Edges []Edge

// Bucket returns the index of the first edge x is below, or len(es).
// NaN is never below an edge and so falls in the last bucket.
func (es Edges) Bucket(x float64) int {
	for i, e := range es {
		if e.below(x) {
			return i
		}
	}
	return len(es)
}

func (es Edges) validate() error {
	for i, e := range es {
		if math.IsNaN(e.At) {
			return fmt.Errorf("edge %d is NaN", i)
		}
		if i > 0 && e.At <= es[i-1].At {
			return fmt.Errorf("edges must be strictly ascending: %v then %v", es[i-1].At, e.At)
		}
	}
	return nil
}

// Layout lists the edges of every field. The time dimension is cut on the
// simulated hour, not the raw step counter.
type Layout struct {
	Residual  Edges
	Turbidity Edges
	PH        Edges
	Stock     Edges
	Hour      Edges

	StartHour      int
	MinutesPerStep int
}

func (l Layout) Shape() Shape {
	return Shape{
		Residual:  len(l.Residual) + 1,
		Turbidity: len(l.Turbidity) + 1,
		PH:        len(l.PH) + 1,
		Stock:     len(l.Stock) + 1,
		Time:      len(l.Hour) + 1,
	}
}

func (l Layout) Validate() error {
	fields := []struct {
		name  string
		edges Edges
	}{
		{"Residual", l.Residual},
		{"Turbidity", l.Turbidity},
		{"PH", l.PH},
		{"Stock", l.Stock},
		{"Hour", l.Hour},
	}
	for _, f := range fields {
		if err := f.edges.validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidLayout, f.name, err)
		}
	}
	if l.MinutesPerStep <= 0 {
		return fmt.Errorf("%w: MinutesPerStep must be positive, got %d", ErrInvalidLayout, l.MinutesPerStep)
	}
	return nil
}

// bandEdges gives low / normal / high buckets for a closed safe band.
func bandEdges(min, max float64) Edges {
	return Edges{{At: min}, {At: max, Inclusive: true}}
}

// StandardLayout: shape (3, 2, 3, 4, 3).
func StandardLayout() Layout {
	return Layout{
		Residual:  bandEdges(0.4, 2.0),
		Turbidity: Edges{{At: 2.8, Inclusive: true}},
		PH:        bandEdges(5.8, 8.6),
		// 20kg 未満は在庫不足とみなす
		Stock:          Edges{{At: 20}, {At: 50}, {At: 100}},
		Hour:           Edges{{At: 12}, {At: 17}},
		StartHour:      9,
		MinutesPerStep: 10,
	}
}

// ExtendedLayout splits stock into five buckets sized for a 200 kg day and
// the afternoon into 12-14 and 14-17. Shape (3, 2, 3, 5, 4).
func ExtendedLayout() Layout {
	l := StandardLayout()
	l.Stock = Edges{
		{At: 0, Inclusive: true},
		{At: 50, Inclusive: true},
		{At: 100, Inclusive: true},
		{At: 150, Inclusive: true},
	}
	l.Hour = Edges{{At: 12}, {At: 14}, {At: 17}}
	return l
}

// LayoutFor builds a layout whose safe-band edges follow bands and whose
// clock follows cfg, keeping the stock and hour cuts of base.
func LayoutFor(base Layout, cfg waterpark.Config) Layout {
	base.Residual = bandEdges(cfg.Bands.Residual.Min, cfg.Bands.Residual.Max)
	base.Turbidity = Edges{{At: cfg.Bands.Turbidity.Max, Inclusive: true}}
	base.PH = bandEdges(cfg.Bands.PH.Min, cfg.Bands.PH.Max)
	base.StartHour = cfg.StartHour
	base.MinutesPerStep = cfg.MinutesPerStep
	return base
}
