// Package classify validates sample clusters with a k-nearest-neighbor
// vote over a precomputed dissimilarity matrix.
package classify

import (
	"sort"

	"taxoscreen/domain/core"
)

// Prediction is one sample's leave-one-out classification
type Prediction struct {
	Sample    core.SampleID `json:"sample"`
	Actual    string        `json:"actual"`
	Predicted string        `json:"predicted"`
}

// Report summarizes leave-one-out accuracy overall and per group
type Report struct {
	K           int                `json:"k"`
	Accuracy    float64            `json:"accuracy"`
	PerGroup    map[string]float64 `json:"per_group"`
	Predictions []Prediction       `json:"predictions"`
}

// LeaveOneOut classifies each sample from its k nearest neighbors among
// the remaining samples and reports the cross-validated accuracy. Ties in
// the vote are broken by smallest mean neighbor distance, then by label
// order, so the result is deterministic.
func LeaveOneOut(dist [][]float64, samples []core.SampleID, labels []string, k int) (*Report, error) {
	n := len(dist)
	if n < 2 || len(labels) != n || len(samples) != n {
		return nil, core.ErrInsufficientData
	}
	if k <= 0 || k > n-1 {
		return nil, core.ErrInsufficientData
	}

	report := &Report{
		K:           k,
		PerGroup:    make(map[string]float64),
		Predictions: make([]Prediction, n),
	}
	groupTotals := make(map[string]int)
	groupCorrect := make(map[string]int)
	correct := 0

	for i := 0; i < n; i++ {
		predicted := vote(dist[i], labels, i, k)
		report.Predictions[i] = Prediction{
			Sample:    samples[i],
			Actual:    labels[i],
			Predicted: predicted,
		}
		groupTotals[labels[i]]++
		if predicted == labels[i] {
			correct++
			groupCorrect[labels[i]]++
		}
	}

	report.Accuracy = float64(correct) / float64(n)
	for group, total := range groupTotals {
		report.PerGroup[group] = float64(groupCorrect[group]) / float64(total)
	}
	return report, nil
}

// vote returns the majority label among the k nearest neighbors of query,
// excluding the query itself.
func vote(row []float64, labels []string, query, k int) string {
	type neighbor struct {
		index int
		dist  float64
	}
	neighbors := make([]neighbor, 0, len(row)-1)
	for j := range row {
		if j == query {
			continue
		}
		neighbors = append(neighbors, neighbor{index: j, dist: row[j]})
	}
	sort.Slice(neighbors, func(a, b int) bool {
		if neighbors[a].dist != neighbors[b].dist {
			return neighbors[a].dist < neighbors[b].dist
		}
		return neighbors[a].index < neighbors[b].index
	})

	votes := make(map[string]int)
	meanDist := make(map[string]float64)
	for _, nb := range neighbors[:k] {
		label := labels[nb.index]
		votes[label]++
		meanDist[label] += nb.dist
	}

	best := ""
	for label, count := range votes {
		if best == "" {
			best = label
			continue
		}
		switch {
		case count > votes[best]:
			best = label
		case count == votes[best]:
			mCur := meanDist[label] / float64(count)
			mBest := meanDist[best] / float64(votes[best])
			if mCur < mBest || (mCur == mBest && label < best) {
				best = label
			}
		}
	}
	return best
}
