package ordination

import (
	"errors"
	"math"
	"testing"

	"taxoscreen/domain/abundance"
	"taxoscreen/domain/core"

	"taxoscreen/internal/ecology"
)

func clusteredMatrix() *abundance.AbundanceMatrix {
	// Two tight clusters well separated along the first feature.
	return &abundance.AbundanceMatrix{
		Features: []core.FeatureID{"f1", "f2", "f3"},
		Samples:  []core.SampleID{"a1", "a2", "a3", "b1", "b2", "b3"},
		Data: [][]float64{
			{1.0, 1.1, 0.9, 9.0, 9.1, 8.9},
			{2.0, 2.1, 1.9, 2.0, 2.1, 1.9},
			{0.5, 0.4, 0.6, 0.5, 0.4, 0.6},
		},
	}
}

func TestPCA(t *testing.T) {
	m := clusteredMatrix()

	res, err := PCA(m, 2)
	if err != nil {
		t.Fatalf("PCA failed: %v", err)
	}
	if len(res.Coordinates) != 6 || len(res.Coordinates[0]) != 2 {
		t.Fatalf("Expected 6x2 coordinates, got %dx%d", len(res.Coordinates), len(res.Coordinates[0]))
	}
	if res.NegativeEigenvalues != 0 {
		t.Errorf("PCA reported %d negative eigenvalues", res.NegativeEigenvalues)
	}

	// Nearly all variance sits on the separating axis.
	if res.Explained[0] < 0.95 {
		t.Errorf("First axis explains %g, expected > 0.95", res.Explained[0])
	}
	sum := 0.0
	for _, e := range res.Explained {
		if e < 0 || e > 1 {
			t.Errorf("Explained fraction %g out of range", e)
		}
		sum += e
	}
	if sum > 1.0+1e-9 {
		t.Errorf("Explained fractions sum to %g, expected at most 1", sum)
	}

	// The two clusters separate on axis 1.
	for i := 0; i < 3; i++ {
		for j := 3; j < 6; j++ {
			if math.Signbit(res.Coordinates[i][0]) == math.Signbit(res.Coordinates[j][0]) {
				t.Errorf("Samples %d and %d on the same side of axis 1", i, j)
			}
		}
	}
}

func TestPCA_Errors(t *testing.T) {
	m := &abundance.AbundanceMatrix{
		Features: []core.FeatureID{"f1"},
		Samples:  []core.SampleID{"s1"},
		Data:     [][]float64{{1}},
	}
	if _, err := PCA(m, 2); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Single sample should be rejected, got %v", err)
	}
}

// Classical MDS on a Euclidean distance matrix recovers the PCA
// configuration up to axis sign.
func TestPCoA_MatchesPCAOnEuclidean(t *testing.T) {
	m := clusteredMatrix()

	dist, err := ecology.DistanceMatrix(m, ecology.MetricEuclidean)
	if err != nil {
		t.Fatalf("DistanceMatrix failed: %v", err)
	}
	pcoa, err := PCoA(dist, m.Samples, 2)
	if err != nil {
		t.Fatalf("PCoA failed: %v", err)
	}
	pca, err := PCA(m, 2)
	if err != nil {
		t.Fatalf("PCA failed: %v", err)
	}

	for axis := 0; axis < 2; axis++ {
		sameSign := 0.0
		for i := range pcoa.Coordinates {
			sameSign += pcoa.Coordinates[i][axis] * pca.Coordinates[i][axis]
		}
		flip := 1.0
		if sameSign < 0 {
			flip = -1.0
		}
		for i := range pcoa.Coordinates {
			a := flip * pcoa.Coordinates[i][axis]
			b := pca.Coordinates[i][axis]
			if math.Abs(a-b) > 1e-6 {
				t.Errorf("Axis %d sample %d: PCoA %g vs PCA %g", axis, i, a, b)
			}
		}
	}
	if pcoa.NegativeEigenvalues != 0 {
		t.Errorf("Euclidean input produced %d negative eigenvalues", pcoa.NegativeEigenvalues)
	}
}

func TestPCoA_BrayCurtisCountsNegatives(t *testing.T) {
	m := clusteredMatrix()

	dist, err := ecology.DistanceMatrix(m, ecology.MetricBrayCurtis)
	if err != nil {
		t.Fatalf("DistanceMatrix failed: %v", err)
	}
	res, err := PCoA(dist, m.Samples, 2)
	if err != nil {
		t.Fatalf("PCoA failed: %v", err)
	}
	if len(res.Coordinates) != 6 {
		t.Fatalf("Expected 6 samples, got %d", len(res.Coordinates))
	}
	// Cluster structure survives on the first coordinate.
	for i := 0; i < 3; i++ {
		for j := 3; j < 6; j++ {
			if math.Signbit(res.Coordinates[i][0]) == math.Signbit(res.Coordinates[j][0]) {
				t.Errorf("Samples %d and %d on the same side of axis 1", i, j)
			}
		}
	}
}

func TestPCoA_Errors(t *testing.T) {
	if _, err := PCoA(nil, nil, 2); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Empty distance matrix should be rejected, got %v", err)
	}

	ragged := [][]float64{{0, 1}, {1}}
	if _, err := PCoA(ragged, []core.SampleID{"a", "b"}, 2); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Ragged matrix should be rejected, got %v", err)
	}

	dist := [][]float64{{0, 1}, {1, 0}}
	if _, err := PCoA(dist, []core.SampleID{"a"}, 2); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Sample/matrix size mismatch should be rejected, got %v", err)
	}
}
