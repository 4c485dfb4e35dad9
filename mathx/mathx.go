package mathx

import (
	"gonum.org/v1/gonum/spatial/r1"
)

// ClampMin returns x, or min when x falls below it.
func ClampMin(x, min float64) float64 {
	if x < min {
		return min
	}
	return x
}

// Contains reports whether x lies within the closed interval iv.
func Contains(iv r1.Interval, x float64) bool {
	return iv.Min <= x && x <= iv.Max
}

// Deviation は x が区間 iv の外側にどれだけ離れているかを返す。区間内なら 0。
func Deviation(iv r1.Interval, x float64) float64 {
	switch {
	case x < iv.Min:
		return iv.Min - x
	case x > iv.Max:
		return x - iv.Max
	default:
		return 0
	}
}

// ValidInterval reports whether iv is finite-ordered (Min <= Max).
func ValidInterval(iv r1.Interval) bool {
	return iv.Min <= iv.Max
}
