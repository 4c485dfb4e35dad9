package waterpark

import (
	"fmt"
	"math"
	"slices"

	"github.com/sw965/chlorine/mathx"
	"gonum.org/v1/gonum/spatial/r1"
)

// StartRanges are the intervals the initial chemistry is drawn from on Reset.
type StartRanges struct {
	Residual  r1.Interval
	Turbidity r1.Interval
	PH        r1.Interval
}

// DoseEffect is the per-kg change a dose applies to the chemistry.
type DoseEffect struct {
	ResidualPerKg  float64
	TurbidityPerKg float64
	PHPerKg        float64
}

// Pollution is the guest load applied each step before scaling by
// PollutionFactor. PHSwing is symmetric around zero.
type Pollution struct {
	PHSwing   r1.Interval
	Turbidity r1.Interval
	Residual  r1.Interval
}

type Recovery struct {
	Turbidity r1.Interval
	PHStep    r1.Interval
	PHTarget  float64
}

type RewardConfig struct {
	Baseline            float64
	SafeBonus           float64
	UnsafePenalty       float64
	DosePenaltyPerKg    float64
	ShortagePenalty     float64
	OverusePenaltyPerKg float64
}

type Config struct {
	MaxSteps       int
	MaxDailyStock  float64
	Doses          []float64
	StartHour      int
	MinutesPerStep int

	Bands     Bands
	Start     StartRanges
	Dose      DoseEffect
	Pollution Pollution
	Recovery  Recovery
	Reward    RewardConfig
	Guests    GuestProfile
}

// StandardConfig: 60 ten-minute steps from 09:00, 200 kg per day.
func StandardConfig() Config {
	return Config{
		MaxSteps:       60,
		MaxDailyStock:  200,
		Doses:          []float64{0, 5, 20, 30},
		StartHour:      9,
		MinutesPerStep: 10,
		Bands:          DefaultBands(),
		Start: StartRanges{
			Residual:  r1.Interval{Min: 0.4, Max: 2.0},
			Turbidity: r1.Interval{Min: 0.0, Max: 2.8},
			PH:        r1.Interval{Min: 5.8, Max: 8.6},
		},
		// 10kg で残留塩素 +0.2mg
		Dose: DoseEffect{
			ResidualPerKg:  0.02,
			TurbidityPerKg: 0.1,
			PHPerKg:        0.05,
		},
		Pollution: Pollution{
			PHSwing:   r1.Interval{Min: -0.1, Max: 0.1},
			Turbidity: r1.Interval{Min: 0.5, Max: 1.0},
			Residual:  r1.Interval{Min: 0.05, Max: 0.1},
		},
		Recovery: Recovery{
			Turbidity: r1.Interval{Min: 0.1, Max: 0.3},
			PHStep:    r1.Interval{Min: 0.01, Max: 0.05},
			PHTarget:  7.0,
		},
		Reward: RewardConfig{
			Baseline:            0.0,
			SafeBonus:           1.0,
			UnsafePenalty:       0.5,
			DosePenaltyPerKg:    0.1,
			ShortagePenalty:     0.2,
			OverusePenaltyPerKg: 0.1,
		},
		Guests: GuestProfile{DailyVisitors: 10000},
	}
}

// ExtendedConfig uses the smaller dose menu and a constant 0.7 baseline
// reward with no explicit safety bonus.
func ExtendedConfig() Config {
	c := StandardConfig()
	c.Doses = []float64{0, 5, 15, 25}
	c.Reward.Baseline = 0.7
	c.Reward.SafeBonus = 0.0
	return c
}

// Hour converts a step counter into the simulated hour of day.
func (c Config) Hour(step int) int {
	return c.StartHour + (step*c.MinutesPerStep)/60
}

func (c Config) Clone() Config {
	c.Doses = slices.Clone(c.Doses)
	return c
}

func (c Config) Validate() error {
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: MaxSteps must be positive, got %d", ErrInvalidConfig, c.MaxSteps)
	}
	if c.MaxDailyStock < 0 || math.IsNaN(c.MaxDailyStock) || math.IsInf(c.MaxDailyStock, 0) {
		return fmt.Errorf("%w: MaxDailyStock must be finite and non-negative, got %v", ErrInvalidConfig, c.MaxDailyStock)
	}
	if len(c.Doses) == 0 {
		return fmt.Errorf("%w: Doses must not be empty", ErrInvalidConfig)
	}
	for i, d := range c.Doses {
		if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return fmt.Errorf("%w: Doses[%d] = %v", ErrInvalidConfig, i, d)
		}
		// 行動1が最小の投入量であることを方策が前提にしている
		if i > 0 && d <= c.Doses[i-1] {
			return fmt.Errorf("%w: Doses must be strictly ascending, Doses[%d] = %v after %v", ErrInvalidConfig, i, d, c.Doses[i-1])
		}
	}
	if c.MinutesPerStep <= 0 {
		return fmt.Errorf("%w: MinutesPerStep must be positive, got %d", ErrInvalidConfig, c.MinutesPerStep)
	}

	intervals := map[string]r1.Interval{
		"Bands.Residual":      c.Bands.Residual,
		"Bands.Turbidity":     c.Bands.Turbidity,
		"Bands.PH":            c.Bands.PH,
		"Start.Residual":      c.Start.Residual,
		"Start.Turbidity":     c.Start.Turbidity,
		"Start.PH":            c.Start.PH,
		"Pollution.PHSwing":   c.Pollution.PHSwing,
		"Pollution.Turbidity": c.Pollution.Turbidity,
		"Pollution.Residual":  c.Pollution.Residual,
		"Recovery.Turbidity":  c.Recovery.Turbidity,
		"Recovery.PHStep":     c.Recovery.PHStep,
	}
	for name, iv := range intervals {
		if !mathx.ValidInterval(iv) {
			return fmt.Errorf("%w: %s has Min > Max (%v > %v)", ErrInvalidConfig, name, iv.Min, iv.Max)
		}
	}
	if c.Start.Residual.Min < 0 || c.Start.Turbidity.Min < 0 || c.Start.PH.Min < 0 {
		return fmt.Errorf("%w: start ranges must be non-negative", ErrInvalidConfig)
	}
	return nil
}
