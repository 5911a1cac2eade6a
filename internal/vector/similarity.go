package vector

import "math"

// CosineSimilarity returns the cosine similarity of two vectors. Stored and
// query vectors are expected to be unit-normalized already, but normalization
// is not assumed: the full formula is computed, and a zero-norm operand (or a
// length mismatch) yields 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
