// Package ordination projects samples into a low-dimensional space for
// visualization: PCA on abundance profiles and PCoA (classical MDS) on a
// precomputed dissimilarity matrix.
package ordination

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"taxoscreen/domain/abundance"
	"taxoscreen/domain/core"
)

// Result holds sample coordinates on the leading axes and the fraction of
// variance each axis explains.
type Result struct {
	Samples     []core.SampleID `json:"samples"`
	Coordinates [][]float64     `json:"coordinates"` // Coordinates[sample][axis]
	Explained   []float64       `json:"explained"`
	// NegativeEigenvalues counts axes dropped by PCoA because the input
	// dissimilarity is non-Euclidean. Always 0 for PCA.
	NegativeEigenvalues int `json:"negative_eigenvalues,omitempty"`
}

// PCA computes a principal component analysis of the samples, treating
// each sample column of the matrix as one observation over the features.
// At most axes coordinates are returned per sample.
func PCA(m *abundance.AbundanceMatrix, axes int) (*Result, error) {
	n := m.NumSamples()
	d := m.NumFeatures()
	if n < 2 || d < 1 {
		return nil, core.ErrInsufficientData
	}

	// Observations are samples: transpose the feature-by-sample data.
	x := mat.NewDense(n, d, nil)
	for j := 0; j < n; j++ {
		x.SetRow(j, m.Column(j))
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, core.ErrInsufficientData
	}

	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	if axes <= 0 || axes > len(vars) {
		axes = len(vars)
	}

	// Project mean-centered observations onto the leading components.
	means := make([]float64, d)
	for c := 0; c < d; c++ {
		col := mat.Col(nil, c, x)
		sum := 0.0
		for _, v := range col {
			sum += v
		}
		means[c] = sum / float64(n)
	}
	centered := mat.NewDense(n, d, nil)
	for r := 0; r < n; r++ {
		for c := 0; c < d; c++ {
			centered.Set(r, c, x.At(r, c)-means[c])
		}
	}
	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, d, 0, axes))

	total := 0.0
	for _, v := range vars {
		total += v
	}

	res := &Result{
		Samples:     append([]core.SampleID(nil), m.Samples...),
		Coordinates: make([][]float64, n),
		Explained:   make([]float64, axes),
	}
	for j := 0; j < n; j++ {
		res.Coordinates[j] = mat.Row(nil, j, &proj)
	}
	for a := 0; a < axes; a++ {
		if total > 0 {
			res.Explained[a] = vars[a] / total
		}
	}
	return res, nil
}
