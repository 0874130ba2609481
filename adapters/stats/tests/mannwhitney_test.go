package tests

import (
	"math"
	"testing"
)

// TestMannWhitney_ExactSmallSample verifies the exact two-sided p-value
// for fully separated 3-vs-3 groups, the minimum attainable at that size.
func TestMannWhitney_ExactSmallSample(t *testing.T) {
	effect, p := MannWhitney([]float64{1, 2, 3}, []float64{10, 11, 12})

	if math.Abs(p-0.1) > 1e-12 {
		t.Errorf("Expected exact p = 0.1 for 3/3 full separation, got %g", p)
	}
	if effect != -1.0 {
		t.Errorf("Expected rank-biserial effect -1.0, got %g", effect)
	}
}

func TestMannWhitney_ExactSymmetry(t *testing.T) {
	_, pAB := MannWhitney([]float64{1, 2, 3}, []float64{10, 11, 12})
	_, pBA := MannWhitney([]float64{10, 11, 12}, []float64{1, 2, 3})

	if math.Abs(pAB-pBA) > 1e-12 {
		t.Errorf("p-value should not depend on group order: %g vs %g", pAB, pBA)
	}
}

func TestMannWhitney_ConstantValues(t *testing.T) {
	_, p := MannWhitney([]float64{5, 5, 5}, []float64{5, 5, 5})

	if p != 1.0 {
		t.Errorf("Expected p = 1 for identical constant groups, got %g", p)
	}
}

func TestMannWhitney_DegenerateGroups(t *testing.T) {
	if _, p := MannWhitney(nil, []float64{1, 2, 3}); p != 1.0 {
		t.Errorf("Empty group should yield p = 1, got %g", p)
	}
	if _, p := MannWhitney([]float64{9}, []float64{1, 2}); p <= 0 || p > 1 {
		t.Errorf("Single-sample group should yield a valid p-value, got %g", p)
	}
}

func TestMannWhitney_InterleavedGroups(t *testing.T) {
	// Perfectly interleaved groups carry no location signal.
	_, p := MannWhitney([]float64{1, 3, 5, 7}, []float64{2, 4, 6, 8})

	if p < 0.5 {
		t.Errorf("Expected large p for interleaved groups, got %g", p)
	}
}

func TestMannWhitney_LargeSampleApproximation(t *testing.T) {
	x := make([]float64, 30)
	y := make([]float64, 30)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i) + 50
	}

	effect, p := MannWhitney(x, y)
	if p > 1e-6 {
		t.Errorf("Expected tiny p for fully separated large groups, got %g", p)
	}
	if effect != -1.0 {
		t.Errorf("Expected effect -1.0, got %g", effect)
	}
}

func TestMannWhitney_TiesUseApproximation(t *testing.T) {
	// Cross-group ties force the midrank approximation even at small n.
	_, p := MannWhitney([]float64{1, 2, 2}, []float64{2, 3, 4})

	if p <= 0 || p > 1 {
		t.Errorf("Tie-heavy input should still yield p in (0, 1], got %g", p)
	}
}
