// Package waterpark simulates the water quality of a pool over one operating
// day. Residual disinfectant, turbidity and pH drift with guest load and are
// corrected by discrete chemical doses drawn from a limited daily stock.
//
// Package waterpark はプールの水質（残留塩素・濁度・pH）が一日の中で
// 変動する様子をシミュレートします。
package waterpark

import (
	"errors"

	"github.com/sw965/chlorine/mathx"
	"gonum.org/v1/gonum/spatial/r1"
)

var (
	ErrInvalidAction = errors.New("action index is not in the dose menu")
	ErrEpisodeDone   = errors.New("episode already finished, call Reset")
	ErrInvalidState  = errors.New("invalid observation")
	ErrInvalidConfig = errors.New("invalid environment config")
)

// NumFields is the number of values carried by an Observation.
const NumFields = 5

type Observation struct {
	ResidualDisinfectant float64
	Turbidity            float64
	PH                   float64
	RemainingStock       float64
	Step                 int
}

func (o Observation) Values() [NumFields]float64 {
	return [NumFields]float64{
		o.ResidualDisinfectant,
		o.Turbidity,
		o.PH,
		o.RemainingStock,
		float64(o.Step),
	}
}

// Bands are the per-field ranges considered healthy.
type Bands struct {
	Residual  r1.Interval
	Turbidity r1.Interval
	PH        r1.Interval
}

func DefaultBands() Bands {
	return Bands{
		Residual:  r1.Interval{Min: 0.4, Max: 2.0},
		Turbidity: r1.Interval{Min: 0.0, Max: 2.8},
		PH:        r1.Interval{Min: 5.8, Max: 8.6},
	}
}

// Safe reports whether all three chemistry fields are inside their bands.
func (b Bands) Safe(o Observation) bool {
	return mathx.Contains(b.Residual, o.ResidualDisinfectant) &&
		mathx.Contains(b.Turbidity, o.Turbidity) &&
		mathx.Contains(b.PH, o.PH)
}

// Deviation is the summed distance of the chemistry fields outside their bands.
func (b Bands) Deviation(o Observation) float64 {
	return mathx.Deviation(b.Residual, o.ResidualDisinfectant) +
		mathx.Deviation(b.Turbidity, o.Turbidity) +
		mathx.Deviation(b.PH, o.PH)
}

// PollutionFactor scales the guest-driven perturbation for a simulated hour.
func PollutionFactor(hour int) float64 {
	switch {
	case 14 <= hour && hour < 17:
		return 1.0
	case 9 <= hour && hour < 12:
		return 0.7
	case 12 <= hour && hour < 14, 17 <= hour && hour < 19:
		return 0.3
	default:
		return 0.0
	}
}

// GuestProfile models occupancy: a daily visitor total spread over the
// opening periods. Informational only.
type GuestProfile struct {
	DailyVisitors float64
}

func (g GuestProfile) Guests(hour int) int {
	v := g.DailyVisitors
	switch {
	case 9 <= hour && hour < 12:
		return int(v * 0.3 / 18)
	case 12 <= hour && hour < 14:
		return int(v * 0.1 / 12)
	case 14 <= hour && hour < 17:
		return int(v * 0.5 / 18)
	default:
		return int(v * 0.1 / 12)
	}
}

const (
	KeyResidual        = "residual_disinfectant"
	KeyTurbidity       = "turbidity"
	KeyPH              = "ph"
	KeyRemainingStock  = "remaining_stock"
	KeyStep            = "step"
	KeyUsedStock       = "used_stock"
	KeyGuests          = "guests"
	KeyHour            = "hour"
	KeyPollutionFactor = "pollution_factor"
)

// Diagnostics carries the raw values behind a step, keyed by the Key constants.
// The chemistry, stock and step keys describe the state after the step;
// hour, guests and pollution_factor describe the interval the step covered,
// which starts at the pre-step hour.
type Diagnostics map[string]float64

func (d Diagnostics) Step() int {
	return int(d[KeyStep])
}
