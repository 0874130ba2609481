package abundance

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"taxoscreen/domain/core"
)

func TestRelativeAbundance(t *testing.T) {
	m := &AbundanceMatrix{
		Features: []core.FeatureID{"f1", "f2", "f3"},
		Samples:  []core.SampleID{"s1", "s2"},
		Data: [][]float64{
			{10, 1},
			{30, 1},
			{60, 2},
		},
	}

	rel, err := m.RelativeAbundance()
	if err != nil {
		t.Fatalf("RelativeAbundance failed: %v", err)
	}
	for j := 0; j < rel.NumSamples(); j++ {
		sum := 0.0
		for i := range rel.Data {
			sum += rel.Data[i][j]
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("Sample %d sums to %g after transform, expected 1", j, sum)
		}
	}
	if rel.Data[0][0] != 0.1 || rel.Data[2][0] != 0.6 {
		t.Errorf("Unexpected relative values: %v", rel.Data)
	}
	// The input must not be mutated.
	if m.Data[0][0] != 10 {
		t.Error("RelativeAbundance mutated its receiver")
	}
}

func TestRelativeAbundance_ZeroSumSample(t *testing.T) {
	m := &AbundanceMatrix{
		Features: []core.FeatureID{"f1", "f2"},
		Samples:  []core.SampleID{"s1", "s2"},
		Data: [][]float64{
			{1, 0},
			{2, 0},
		},
	}
	if _, err := m.RelativeAbundance(); !errors.Is(err, core.ErrZeroSumSample) {
		t.Errorf("Expected ErrZeroSumSample, got %v", err)
	}
}

func TestFilterFeatures(t *testing.T) {
	m := &AbundanceMatrix{
		Features: []core.FeatureID{"keep_high", "drop_low", "keep_edge"},
		Samples:  []core.SampleID{"s1", "s2"},
		Data: [][]float64{
			{0.5, 0.2},
			{0.0001, 0.0005},
			{0.0, 0.001}, // max exactly at cutoff: kept
		},
	}

	filtered, kept := m.FilterFeatures(0.001)
	if len(filtered.Features) != 2 {
		t.Fatalf("Expected 2 features kept, got %d", len(filtered.Features))
	}
	if filtered.Features[0] != "keep_high" || filtered.Features[1] != "keep_edge" {
		t.Errorf("Feature order not preserved: %v", filtered.Features)
	}
	if !reflect.DeepEqual(kept, []int{0, 2}) {
		t.Errorf("Kept indices = %v, expected [0 2]", kept)
	}

	empty, kept := m.FilterFeatures(10)
	if len(empty.Features) != 0 || len(kept) != 0 {
		t.Errorf("Cutoff above all values should keep nothing, got %v", empty.Features)
	}
}

func TestRarefy(t *testing.T) {
	m := &AbundanceMatrix{
		Features: []core.FeatureID{"f1", "f2", "f3"},
		Samples:  []core.SampleID{"s1", "s2"},
		Data: [][]float64{
			{40, 10},
			{30, 20},
			{30, 70},
		},
	}

	out, err := m.Rarefy(50, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Rarefy failed: %v", err)
	}
	for j := 0; j < out.NumSamples(); j++ {
		sum := 0.0
		for i := range out.Data {
			if out.Data[i][j] > m.Data[i][j] {
				t.Errorf("Subsample exceeds source count at [%d][%d]", i, j)
			}
			sum += out.Data[i][j]
		}
		if sum != 50 {
			t.Errorf("Sample %d depth = %g after rarefaction, expected 50", j, sum)
		}
	}
}

func TestRarefy_Deterministic(t *testing.T) {
	m := &AbundanceMatrix{
		Features: []core.FeatureID{"f1", "f2"},
		Samples:  []core.SampleID{"s1"},
		Data: [][]float64{
			{60},
			{40},
		},
	}

	a, err := m.Rarefy(30, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Rarefy failed: %v", err)
	}
	b, err := m.Rarefy(30, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Rarefy failed: %v", err)
	}
	if !reflect.DeepEqual(a.Data, b.Data) {
		t.Error("Same seed must produce the same subsample")
	}
}

func TestRarefy_Errors(t *testing.T) {
	m := &AbundanceMatrix{
		Features: []core.FeatureID{"f1"},
		Samples:  []core.SampleID{"s1"},
		Data:     [][]float64{{0.5}},
	}
	if _, err := m.Rarefy(1, rand.New(rand.NewSource(1))); !errors.Is(err, core.ErrNotCounts) {
		t.Errorf("Fractional values should raise ErrNotCounts, got %v", err)
	}

	m.Data = [][]float64{{5}}
	if _, err := m.Rarefy(10, rand.New(rand.NewSource(1))); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Depth past library size should raise ErrInsufficientData, got %v", err)
	}
	if _, err := m.Rarefy(0, rand.New(rand.NewSource(1))); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Non-positive depth should raise ErrInsufficientData, got %v", err)
	}
}
