package randx

import (
	"math/rand/v2"

	"github.com/sw965/omw/mathx/randx"
	"gonum.org/v1/gonum/spatial/r1"
)

// New returns a PCG-backed generator. A nil seed draws from the global seed,
// so runs are only reproducible when a seed is given.
func New(seed *uint64) *rand.Rand {
	if seed == nil {
		return randx.NewPCGFromGlobalSeed()
	}
	return NewSeeded(*seed)
}

func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Split derives n independent generators from rng. The draws happen
// sequentially on the caller's goroutine, so the children are deterministic
// whenever rng is.
func Split(rng *rand.Rand, n int) []*rand.Rand {
	rngs := make([]*rand.Rand, n)
	for i := range n {
		rngs[i] = rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
	}
	return rngs
}

// Uniform draws from [iv.Min, iv.Max).
func Uniform(iv r1.Interval, rng *rand.Rand) float64 {
	return iv.Min + (iv.Max-iv.Min)*rng.Float64()
}
