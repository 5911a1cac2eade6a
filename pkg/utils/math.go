package utils

import "math"

// Round6 rounds v to 6 decimal places. Embedding values are rounded this way
// at every production site so repeated runs yield identical vectors.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// L2Norm returns the Euclidean norm of a vector.
func L2Norm(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// NormalizeL2 normalizes the slice in place to unit L2 norm, rounding each
// element to 6 decimal places. If the norm is zero, the slice is unchanged.
func NormalizeL2(x []float64) {
	norm := L2Norm(x)
	if norm == 0 {
		return
	}
	for i := range x {
		x[i] = Round6(x[i] / norm)
	}
}
