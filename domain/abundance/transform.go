package abundance

import (
	"math"

	"taxoscreen/domain/core"
)

// Rand is the subsampling randomness source. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// RelativeAbundance returns a new matrix with each sample column divided by
// its total, so columns sum to 1. A sample with zero total abundance is an
// error because the transform is undefined for it.
func (m *AbundanceMatrix) RelativeAbundance() (*AbundanceMatrix, error) {
	totals := make([]float64, m.NumSamples())
	for _, row := range m.Data {
		for j, v := range row {
			totals[j] += v
		}
	}
	for _, t := range totals {
		if t == 0 {
			return nil, core.ErrZeroSumSample
		}
	}

	out := &AbundanceMatrix{
		Features: append([]core.FeatureID(nil), m.Features...),
		Samples:  append([]core.SampleID(nil), m.Samples...),
		Data:     make([][]float64, len(m.Data)),
	}
	for i, row := range m.Data {
		newRow := make([]float64, len(row))
		for j, v := range row {
			newRow[j] = v / totals[j]
		}
		out.Data[i] = newRow
	}
	return out, nil
}

// FilterFeatures returns a new matrix retaining only features whose maximum
// abundance across samples meets or exceeds cutoff. Feature order is
// preserved. The returned index slice maps retained rows back to the
// original feature indices.
func (m *AbundanceMatrix) FilterFeatures(cutoff float64) (*AbundanceMatrix, []int) {
	out := &AbundanceMatrix{
		Samples: append([]core.SampleID(nil), m.Samples...),
	}
	kept := make([]int, 0, len(m.Features))
	for i := range m.Features {
		if m.MaxAbundance(i) >= cutoff {
			out.Features = append(out.Features, m.Features[i])
			out.Data = append(out.Data, m.Row(i))
			kept = append(kept, i)
		}
	}
	return out, kept
}

// Rarefy subsamples each sample column without replacement to a common
// depth, removing library-size bias from count data. Values must be
// non-negative integers and every sample total must be at least depth.
func (m *AbundanceMatrix) Rarefy(depth int, rng Rand) (*AbundanceMatrix, error) {
	if depth <= 0 {
		return nil, core.ErrInsufficientData
	}

	out := &AbundanceMatrix{
		Features: append([]core.FeatureID(nil), m.Features...),
		Samples:  append([]core.SampleID(nil), m.Samples...),
		Data:     make([][]float64, len(m.Data)),
	}
	for i := range out.Data {
		out.Data[i] = make([]float64, m.NumSamples())
	}

	for j := 0; j < m.NumSamples(); j++ {
		// Expand the column into a pool of feature indices, one per count.
		var pool []int
		for i, row := range m.Data {
			v := row[j]
			if v != math.Trunc(v) {
				return nil, core.ErrNotCounts
			}
			for c := 0; c < int(v); c++ {
				pool = append(pool, i)
			}
		}
		if len(pool) < depth {
			return nil, core.ErrInsufficientData
		}

		// Partial Fisher-Yates: the first depth entries are the subsample.
		for k := 0; k < depth; k++ {
			swap := k + rng.Intn(len(pool)-k)
			pool[k], pool[swap] = pool[swap], pool[k]
			out.Data[pool[k]][j]++
		}
	}

	return out, nil
}
