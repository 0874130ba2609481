package ordination

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"taxoscreen/domain/core"
)

// eigTolerance treats tiny negative eigenvalues as numerical noise
const eigTolerance = 1e-9

// PCoA performs principal coordinates analysis (classical MDS) on a
// symmetric dissimilarity matrix with zero diagonal. Axes with negative
// eigenvalues, which arise for non-Euclidean dissimilarities like
// Bray-Curtis, are dropped and counted in the result.
func PCoA(dist [][]float64, samples []core.SampleID, axes int) (*Result, error) {
	n := len(dist)
	if n < 2 || len(samples) != n {
		return nil, core.ErrInsufficientData
	}

	// Gower double-centering: B = -1/2 * J * D^2 * J with J = I - 11'/n.
	rowMeans := make([]float64, n)
	grandMean := 0.0
	sq := make([][]float64, n)
	for i := range sq {
		if len(dist[i]) != n {
			return nil, core.ErrInsufficientData
		}
		sq[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			sq[i][j] = dist[i][j] * dist[i][j]
			rowMeans[i] += sq[i][j]
		}
		rowMeans[i] /= float64(n)
		grandMean += rowMeans[i]
	}
	grandMean /= float64(n)

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, -0.5*(sq[i][j]-rowMeans[i]-rowMeans[j]+grandMean))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(b, true); !ok {
		return nil, core.ErrInsufficientData
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Order axes by eigenvalue descending.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] > values[order[b]]
	})

	positive := make([]int, 0, n)
	negatives := 0
	for _, idx := range order {
		switch {
		case values[idx] > eigTolerance:
			positive = append(positive, idx)
		case values[idx] < -eigTolerance:
			negatives++
		}
	}
	if len(positive) == 0 {
		return nil, core.ErrInsufficientData
	}
	if axes <= 0 || axes > len(positive) {
		axes = len(positive)
	}

	totalPositive := 0.0
	for _, idx := range positive {
		totalPositive += values[idx]
	}

	res := &Result{
		Samples:             append([]core.SampleID(nil), samples...),
		Coordinates:         make([][]float64, n),
		Explained:           make([]float64, axes),
		NegativeEigenvalues: negatives,
	}
	for i := 0; i < n; i++ {
		res.Coordinates[i] = make([]float64, axes)
	}
	for a := 0; a < axes; a++ {
		idx := positive[a]
		scale := math.Sqrt(values[idx])
		for i := 0; i < n; i++ {
			res.Coordinates[i][a] = vectors.At(i, idx) * scale
		}
		res.Explained[a] = values[idx] / totalPositive
	}
	return res, nil
}
