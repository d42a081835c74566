package pipeline

import "testing"

func TestNormalize_ProducesUnitNormWithinTolerance(t *testing.T) {
	v := []float32{3, 4, 0} // 3-4-5 triangle, norm = 5
	out := normalize(v)

	var sumSq float64
	for _, f := range out {
		sumSq += float64(f) * float64(f)
	}
	norm := sumSq
	if diff := norm - 1.0; diff > 1e-4 || diff < -1e-4 {
		t.Fatalf("expected unit norm within 1e-4, got squared norm %v", norm)
	}
	if out[0] < 0.59 || out[0] > 0.61 {
		t.Fatalf("unexpected scaled component: %v", out[0])
	}
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	out := normalize(v)
	for i, f := range out {
		if f != 0 {
			t.Fatalf("expected zero vector unchanged at index %d, got %v", i, f)
		}
	}
}
