// Package ecology computes sample-level ecological summaries: pairwise
// dissimilarities between community profiles and alpha-diversity indices.
package ecology

import (
	"fmt"
	"math"

	"taxoscreen/domain/abundance"
)

// Metric names accepted by DistanceMatrix
const (
	MetricBrayCurtis = "braycurtis"
	MetricJaccard    = "jaccard"
	MetricEuclidean  = "euclidean"
)

// BrayCurtis returns the Bray-Curtis dissimilarity between two abundance
// profiles: sum|x-y| / sum(x+y). Two empty profiles have distance 0.
func BrayCurtis(x, y []float64) float64 {
	num := 0.0
	den := 0.0
	for i := range x {
		num += math.Abs(x[i] - y[i])
		den += x[i] + y[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Jaccard returns the presence/absence Jaccard dissimilarity:
// 1 - |shared| / |union|. Two empty profiles have distance 0.
func Jaccard(x, y []float64) float64 {
	shared := 0
	union := 0
	for i := range x {
		px := x[i] > 0
		py := y[i] > 0
		if px || py {
			union++
			if px && py {
				shared++
			}
		}
	}
	if union == 0 {
		return 0
	}
	return 1.0 - float64(shared)/float64(union)
}

// Euclidean returns the Euclidean distance between two profiles
func Euclidean(x, y []float64) float64 {
	sum := 0.0
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// DistanceMatrix computes the full symmetric sample-by-sample distance
// matrix for the named metric. The diagonal is zero.
func DistanceMatrix(m *abundance.AbundanceMatrix, metric string) ([][]float64, error) {
	var dist func(x, y []float64) float64
	switch metric {
	case MetricBrayCurtis:
		dist = BrayCurtis
	case MetricJaccard:
		dist = Jaccard
	case MetricEuclidean:
		dist = Euclidean
	default:
		return nil, fmt.Errorf("unknown distance metric: %s", metric)
	}

	n := m.NumSamples()
	cols := make([][]float64, n)
	for j := 0; j < n; j++ {
		cols[j] = m.Column(j)
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist(cols[i], cols[j])
			out[i][j] = d
			out[j][i] = d
		}
	}
	return out, nil
}
