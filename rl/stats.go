package rl

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func (rs Results) Rewards() []float64 {
	ys := make([]float64, len(rs))
	for i, r := range rs {
		ys[i] = r.Reward
	}
	return ys
}

func (rs Results) Usages() []float64 {
	ys := make([]float64, len(rs))
	for i, r := range rs {
		ys[i] = r.Usage
	}
	return ys
}

func (rs Results) SafeRatio() float64 {
	if len(rs) == 0 {
		return 0
	}
	n := 0
	for _, r := range rs {
		if r.Safe {
			n++
		}
	}
	return float64(n) / float64(len(rs))
}

type Summary struct {
	Name       string
	Episodes   int
	MeanReward float64
	StdReward  float64
	MeanUsage  float64
	StdUsage   float64
	SafeRatio  float64
}

func (rs Results) Summary(name string) Summary {
	s := Summary{Name: name, Episodes: len(rs), SafeRatio: rs.SafeRatio()}
	if len(rs) == 0 {
		return s
	}
	s.MeanReward, s.StdReward = stat.MeanStdDev(rs.Rewards(), nil)
	s.MeanUsage, s.StdUsage = stat.MeanStdDev(rs.Usages(), nil)
	if len(rs) == 1 {
		s.StdReward, s.StdUsage = 0, 0
	}
	return s
}

// Tail returns the last n results, or all of them when there are fewer.
func (rs Results) Tail(n int) Results {
	if n >= len(rs) || n < 0 {
		return rs
	}
	return rs[len(rs)-n:]
}

// MovingAverage returns the means of every full window over xs, so the
// output has len(xs)-window+1 elements. It is empty when window is not in
// [1, len(xs)].
func MovingAverage(xs []float64, window int) []float64 {
	if window <= 0 || window > len(xs) {
		return []float64{}
	}
	w := float64(window)
	ys := make([]float64, 0, len(xs)-window+1)
	sum := floats.Sum(xs[:window])
	ys = append(ys, sum/w)
	for i := window; i < len(xs); i++ {
		sum += xs[i] - xs[i-window]
		ys = append(ys, sum/w)
	}
	return ys
}
