package testkit

import (
	"math"
	"reflect"
	"testing"
)

func TestGenerate(t *testing.T) {
	cfg := DefaultConfig()
	matrix, metadata := NewGenerator(cfg).Generate()

	if matrix.NumFeatures() != cfg.FeatureCount {
		t.Errorf("Expected %d features, got %d", cfg.FeatureCount, matrix.NumFeatures())
	}
	if matrix.NumSamples() != 2*cfg.SamplesPerGroup {
		t.Errorf("Expected %d samples, got %d", 2*cfg.SamplesPerGroup, matrix.NumSamples())
	}
	if err := matrix.Validate(); err != nil {
		t.Fatalf("Generated matrix invalid: %v", err)
	}
	if err := metadata.Align(matrix); err != nil {
		t.Fatalf("Generated metadata misaligned: %v", err)
	}

	// Compositional output: every sample sums to 1.
	for j := 0; j < matrix.NumSamples(); j++ {
		sum := 0.0
		for i := range matrix.Data {
			sum += matrix.Data[i][j]
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("Sample %d sums to %g, expected 1", j, sum)
		}
	}

	levels := metadata.GroupLevels()
	if len(levels) != 2 || levels[0] != GroupHealthy || levels[1] != GroupDisease {
		t.Errorf("Group levels = %v, expected [%s %s]", levels, GroupHealthy, GroupDisease)
	}
	if _, ok := metadata.Covariates["age"]; !ok {
		t.Error("Generated metadata should carry the age covariate")
	}
}

func TestGenerate_SeedDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	a, _ := NewGenerator(cfg).Generate()
	b, _ := NewGenerator(cfg).Generate()

	if !reflect.DeepEqual(a.Data, b.Data) {
		t.Error("Same seed must generate identical data")
	}

	cfg.Seed = 99
	c, _ := NewGenerator(cfg).Generate()
	if reflect.DeepEqual(a.Data, c.Data) {
		t.Error("Different seeds should generate different data")
	}
}

func TestGenerate_PlantedSignal(t *testing.T) {
	cfg := DefaultConfig()
	matrix, metadata := NewGenerator(cfg).Generate()

	// Each planted taxon's mean abundance should be clearly higher in the
	// disease group.
	for i := 0; i < cfg.DifferentialCount; i++ {
		var healthy, disease float64
		for j, group := range metadata.Groups {
			if group == GroupDisease {
				disease += matrix.Data[i][j]
			} else {
				healthy += matrix.Data[i][j]
			}
		}
		if disease <= healthy {
			t.Errorf("Planted taxon %d not elevated in disease group", i)
		}
	}
}

func TestGenerateCounts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeatureCount = 30
	cfg.SamplesPerGroup = 5
	counts, _ := NewGenerator(cfg).GenerateCounts(500, 1000)

	for j := 0; j < counts.NumSamples(); j++ {
		depth := 0.0
		for i := range counts.Data {
			v := counts.Data[i][j]
			if v != math.Trunc(v) || v < 0 {
				t.Fatalf("Count [%d][%d] = %g is not a non-negative integer", i, j, v)
			}
			depth += v
		}
		if depth < 500 || depth > 1000 {
			t.Errorf("Sample %d depth = %g, expected within [500, 1000]", j, depth)
		}
	}
}
