// Package vector holds the similarity primitive shared by all rankers.
package vector

import "math"

// Cosine returns the cosine similarity of two equal-length vectors.
// Returns 0 for nil, mismatched, or zero-magnitude input instead of
// failing: a missing or degenerate signal scores as no similarity.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
