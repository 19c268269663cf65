package vector

import (
	"math"
	"testing"
)

func TestCosine_SelfSimilarity(t *testing.T) {
	vecs := [][]float32{
		{1, 0, 0},
		{0.3, -0.7, 0.2},
		{5, 5, 5, 5},
	}
	for _, v := range vecs {
		got := Cosine(v, v)
		if math.Abs(got-1.0) > 1e-9 {
			t.Errorf("Cosine(v, v) = %f, want 1.0 for %v", got, v)
		}
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	got := Cosine([]float32{1, 0}, []float32{0, 1})
	if got != 0 {
		t.Errorf("expected 0 for orthogonal vectors, got %f", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	got := Cosine([]float32{1, 2}, []float32{-1, -2})
	if math.Abs(got+1.0) > 1e-9 {
		t.Errorf("expected -1 for opposite vectors, got %f", got)
	}
}

func TestCosine_DegenerateInput(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
	}{
		{"both nil", nil, nil},
		{"zero magnitude", []float32{1, 2}, []float32{0, 0}},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}},
		{"empty", []float32{}, []float32{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cosine(tc.a, tc.b); got != 0 {
				t.Errorf("expected 0, got %f", got)
			}
		})
	}
}
