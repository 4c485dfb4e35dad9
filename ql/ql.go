// Package ql implements tabular Q-learning over quantized water-park states.
package ql

// UpdateQ returns the one-step Q-learning estimate. It equals
// q + lr*(reward + discountRate*nextMaxQ - q); with lr = 1 the old value is
// dropped exactly.
func UpdateQ(q, nextMaxQ, reward, lr, discountRate float64) float64 {
	qRatio := 1.0 - lr
	newQ := (reward + discountRate*nextMaxQ)
	return (qRatio * q) + (lr * newQ)
}
