package quantize

import (
	"slices"

	"github.com/sw965/chlorine/waterpark"
)

// Quantizer is immutable after New and safe to share between goroutines.
type Quantizer struct {
	layout Layout
	shape  Shape
}

func New(layout Layout) (*Quantizer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	layout.Residual = slices.Clone(layout.Residual)
	layout.Turbidity = slices.Clone(layout.Turbidity)
	layout.PH = slices.Clone(layout.PH)
	layout.Stock = slices.Clone(layout.Stock)
	layout.Hour = slices.Clone(layout.Hour)
	return &Quantizer{layout: layout, shape: layout.Shape()}, nil
}

// Quantize never returns an index outside Shape, whatever the input.
// Hours before StartHour share the last time bucket with the late hours,
// so every hour outside opening time counts as evening.
func (q *Quantizer) Quantize(obs waterpark.Observation) State {
	l := q.layout
	minutes := obs.Step * l.MinutesPerStep
	hour := l.StartHour + minutes/60
	if minutes%60 < 0 {
		hour--
	}
	time := len(l.Hour)
	if hour >= l.StartHour {
		time = l.Hour.Bucket(float64(hour))
	}
	return State{
		Residual:  l.Residual.Bucket(obs.ResidualDisinfectant),
		Turbidity: l.Turbidity.Bucket(obs.Turbidity),
		PH:        l.PH.Bucket(obs.PH),
		Stock:     l.Stock.Bucket(obs.RemainingStock),
		Time:      time,
	}
}

func (q *Quantizer) Shape() Shape {
	return q.shape
}

func (q *Quantizer) Layout() Layout {
	return q.layout
}
