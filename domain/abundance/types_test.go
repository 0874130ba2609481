package abundance

import (
	"errors"
	"math"
	"testing"

	"taxoscreen/domain/core"
)

func validMatrix() *AbundanceMatrix {
	return &AbundanceMatrix{
		Features: []core.FeatureID{"f1", "f2"},
		Samples:  []core.SampleID{"s1", "s2", "s3"},
		Data: [][]float64{
			{1, 2, 3},
			{0, 4, 0},
		},
	}
}

func TestValidate(t *testing.T) {
	if err := validMatrix().Validate(); err != nil {
		t.Fatalf("Valid matrix rejected: %v", err)
	}

	m := validMatrix()
	m.Data[1][2] = -0.5
	if err := m.Validate(); !errors.Is(err, core.ErrNegativeAbundance) {
		t.Errorf("Negative value should be rejected, got %v", err)
	}

	m = validMatrix()
	m.Data[0][1] = math.NaN()
	if err := m.Validate(); !errors.Is(err, core.ErrNegativeAbundance) {
		t.Errorf("NaN value should be rejected, got %v", err)
	}

	m = validMatrix()
	m.Features[1] = "f1"
	if err := m.Validate(); !errors.Is(err, core.ErrDuplicateID) {
		t.Errorf("Duplicate feature ID should be rejected, got %v", err)
	}

	m = validMatrix()
	m.Data = m.Data[:1]
	if err := m.Validate(); !errors.Is(err, core.ErrDimensionMismatch) {
		t.Errorf("Row count mismatch should be rejected, got %v", err)
	}

	m = validMatrix()
	m.Data[0] = []float64{1, 2}
	if err := m.Validate(); !errors.Is(err, core.ErrDimensionMismatch) {
		t.Errorf("Short row should be rejected, got %v", err)
	}
}

func TestAccessorsCopy(t *testing.T) {
	m := validMatrix()

	row := m.Row(0)
	row[0] = 99
	if m.Data[0][0] == 99 {
		t.Error("Row must return a copy")
	}

	col := m.Column(1)
	if col[0] != 2 || col[1] != 4 {
		t.Errorf("Column(1) = %v, expected [2 4]", col)
	}
	col[0] = 99
	if m.Data[0][1] == 99 {
		t.Error("Column must return a copy")
	}

	if got := m.MaxAbundance(1); got != 4 {
		t.Errorf("MaxAbundance(1) = %g, expected 4", got)
	}
}

func TestMetadataAlign(t *testing.T) {
	m := validMatrix()
	md := &SampleMetadata{
		Samples: []core.SampleID{"s1", "s2", "s3"},
		Groups:  []string{"A", "A", "B"},
	}
	if err := md.Align(m); err != nil {
		t.Fatalf("Aligned metadata rejected: %v", err)
	}

	short := &SampleMetadata{
		Samples: []core.SampleID{"s1", "s2"},
		Groups:  []string{"A", "A"},
	}
	if err := short.Align(m); !errors.Is(err, core.ErrDimensionMismatch) {
		t.Errorf("Short metadata should be rejected, got %v", err)
	}

	reordered := &SampleMetadata{
		Samples: []core.SampleID{"s2", "s1", "s3"},
		Groups:  []string{"A", "A", "B"},
	}
	if err := reordered.Align(m); !errors.Is(err, core.ErrDimensionMismatch) {
		t.Errorf("Out-of-order metadata should be rejected, got %v", err)
	}

	badCov := &SampleMetadata{
		Samples:    []core.SampleID{"s1", "s2", "s3"},
		Groups:     []string{"A", "A", "B"},
		Covariates: map[string][]float64{"age": {1, 2}},
	}
	if err := badCov.Align(m); !errors.Is(err, core.ErrInvalidCovariate) {
		t.Errorf("Short covariate should be rejected, got %v", err)
	}
}

func TestGroupLevels(t *testing.T) {
	md := &SampleMetadata{
		Samples: []core.SampleID{"s1", "s2", "s3", "s4"},
		Groups:  []string{"case", "control", "case", "control"},
	}
	levels := md.GroupLevels()
	if len(levels) != 2 || levels[0] != "case" || levels[1] != "control" {
		t.Errorf("GroupLevels = %v, expected [case control] in first-seen order", levels)
	}
}
