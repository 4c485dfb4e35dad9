package waterpark

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/sw965/chlorine/mathx"
	"github.com/sw965/chlorine/mathx/randx"
)

// Env owns the continuous water state of one episode. It is not safe for
// concurrent use; run one Env per goroutine.
type Env struct {
	cfg Config
	rng *rand.Rand

	state     Observation
	usedStock float64
	done      bool
}

// New validates cfg and returns an Env that has already been Reset.
// A nil rng is replaced by an unseeded source.
func New(cfg Config, rng *rand.Rand) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = randx.New(nil)
	}
	e := &Env{cfg: cfg.Clone(), rng: rng}
	e.Reset()
	return e, nil
}

func (e *Env) Reset() Observation {
	e.state = Observation{
		ResidualDisinfectant: randx.Uniform(e.cfg.Start.Residual, e.rng),
		Turbidity:            randx.Uniform(e.cfg.Start.Turbidity, e.rng),
		PH:                   randx.Uniform(e.cfg.Start.PH, e.rng),
		RemainingStock:       e.cfg.MaxDailyStock,
		Step:                 0,
	}
	e.usedStock = 0
	e.done = false
	return e.state
}

// ResetFrom starts a new episode from obs instead of a random draw. The
// stock already missing from the daily maximum counts as used.
func (e *Env) ResetFrom(obs Observation) error {
	values := obs.Values()
	for i, v := range values[:4] {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: field %d = %v", ErrInvalidState, i, v)
		}
	}
	if obs.Step < 0 || obs.Step >= e.cfg.MaxSteps {
		return fmt.Errorf("%w: step %d outside [0, %d)", ErrInvalidState, obs.Step, e.cfg.MaxSteps)
	}
	e.state = obs
	e.usedStock = mathx.ClampMin(e.cfg.MaxDailyStock-obs.RemainingStock, 0)
	e.done = false
	return nil
}

func (e *Env) Step(action int) (Observation, float64, bool, Diagnostics, error) {
	if e.done {
		return e.state, 0, true, nil, ErrEpisodeDone
	}
	if action < 0 || action >= len(e.cfg.Doses) {
		return e.state, 0, false, nil, fmt.Errorf("%w: %d (menu size %d)", ErrInvalidAction, action, len(e.cfg.Doses))
	}

	s := e.state
	rc := e.cfg.Reward
	reward := 0.0

	dose := e.cfg.Doses[action]
	if s.RemainingStock >= dose {
		s.RemainingStock -= dose
		e.usedStock += dose
		s.ResidualDisinfectant += dose * e.cfg.Dose.ResidualPerKg
		s.Turbidity -= dose * e.cfg.Dose.TurbidityPerKg
		s.PH -= dose * e.cfg.Dose.PHPerKg
		reward -= rc.DosePenaltyPerKg * dose
	} else {
		reward -= rc.ShortagePenalty
	}

	hour := e.cfg.Hour(s.Step)
	factor := PollutionFactor(hour)
	s.PH += randx.Uniform(e.cfg.Pollution.PHSwing, e.rng) * factor
	s.Turbidity += randx.Uniform(e.cfg.Pollution.Turbidity, e.rng) * factor
	s.ResidualDisinfectant -= randx.Uniform(e.cfg.Pollution.Residual, e.rng) * factor

	s.Turbidity -= randx.Uniform(e.cfg.Recovery.Turbidity, e.rng)
	switch target := e.cfg.Recovery.PHTarget; {
	case s.PH > target:
		s.PH -= randx.Uniform(e.cfg.Recovery.PHStep, e.rng)
	case s.PH < target:
		s.PH += randx.Uniform(e.cfg.Recovery.PHStep, e.rng)
	}

	// 全ての摂動を適用した後で一度だけ下限処理をする
	s.ResidualDisinfectant = mathx.ClampMin(s.ResidualDisinfectant, 0)
	s.Turbidity = mathx.ClampMin(s.Turbidity, 0)
	s.PH = mathx.ClampMin(s.PH, 0)

	reward += e.reward(s)

	s.Step++
	e.state = s
	e.done = s.Step >= e.cfg.MaxSteps

	diag := Diagnostics{
		KeyResidual:        s.ResidualDisinfectant,
		KeyTurbidity:       s.Turbidity,
		KeyPH:              s.PH,
		KeyRemainingStock:  s.RemainingStock,
		KeyStep:            float64(s.Step),
		KeyUsedStock:       e.usedStock,
		KeyGuests:          float64(e.cfg.Guests.Guests(hour)),
		KeyHour:            float64(hour),
		KeyPollutionFactor: factor,
	}
	return s, reward, e.done, diag, nil
}

// reward scores the post-transition chemistry and the day's usage. Dose and
// shortage terms are added by Step.
func (e *Env) reward(s Observation) float64 {
	rc := e.cfg.Reward
	r := rc.Baseline
	if e.cfg.Bands.Safe(s) {
		r += rc.SafeBonus
	} else {
		r -= rc.UnsafePenalty
	}
	r -= e.cfg.Bands.Deviation(s)
	if e.usedStock > e.cfg.MaxDailyStock {
		r -= (e.usedStock - e.cfg.MaxDailyStock) * rc.OverusePenaltyPerKg
	}
	return r
}

func (e *Env) State() Observation {
	return e.state
}

func (e *Env) Done() bool {
	return e.done
}

func (e *Env) UsedStock() float64 {
	return e.usedStock
}

func (e *Env) MaxDailyStock() float64 {
	return e.cfg.MaxDailyStock
}

func (e *Env) MaxSteps() int {
	return e.cfg.MaxSteps
}

func (e *Env) NumActions() int {
	return len(e.cfg.Doses)
}

func (e *Env) Doses() []float64 {
	return slices.Clone(e.cfg.Doses)
}

func (e *Env) Bands() Bands {
	return e.cfg.Bands
}

func (e *Env) Config() Config {
	return e.cfg.Clone()
}
