package embedding

import (
	"math"

	"github.com/hyperjump/miru/pkg/utils"
)

// FallbackVector returns the constant-seeded fallback embedding: sin(i)*0.1
// per index, rounded to 6 decimal places, then L2-normalized. It is returned
// whenever an embedding path fails so that a valid vector is always available
// to callers; no nil embedding ever crosses this package's boundary.
func FallbackVector(dimensions int) []float64 {
	if dimensions <= 0 {
		dimensions = Dimensions
	}
	v := make([]float64, dimensions)
	for i := range v {
		v[i] = utils.Round6(math.Sin(float64(i)) * 0.1)
	}
	utils.NormalizeL2(v)
	return v
}
