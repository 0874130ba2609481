package abundance

import (
	"math"

	"taxoscreen/domain/core"
)

// AbundanceMatrix holds feature-by-sample abundance values.
// Rows are features, columns are samples, values are non-negative reals.
type AbundanceMatrix struct {
	Features []core.FeatureID `json:"features"`
	Samples  []core.SampleID  `json:"samples"`
	Data     [][]float64      `json:"data"` // Data[feature][sample]
}

// NumFeatures returns the number of feature rows
func (m *AbundanceMatrix) NumFeatures() int {
	return len(m.Features)
}

// NumSamples returns the number of sample columns
func (m *AbundanceMatrix) NumSamples() int {
	return len(m.Samples)
}

// Validate checks structural invariants: row/column counts agree with the
// identifier slices, identifiers are unique, and all values are finite and
// non-negative.
func (m *AbundanceMatrix) Validate() error {
	if len(m.Data) != len(m.Features) {
		return core.NewDimensionError(len(m.Data), len(m.Features))
	}

	seenFeatures := make(map[core.FeatureID]struct{}, len(m.Features))
	for _, f := range m.Features {
		if _, dup := seenFeatures[f]; dup {
			return core.ErrDuplicateID
		}
		seenFeatures[f] = struct{}{}
	}

	seenSamples := make(map[core.SampleID]struct{}, len(m.Samples))
	for _, s := range m.Samples {
		if _, dup := seenSamples[s]; dup {
			return core.ErrDuplicateID
		}
		seenSamples[s] = struct{}{}
	}

	for _, row := range m.Data {
		if len(row) != len(m.Samples) {
			return core.NewDimensionError(len(row), len(m.Samples))
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return core.ErrNegativeAbundance
			}
		}
	}

	return nil
}

// Row returns a copy of a feature's values across all samples
func (m *AbundanceMatrix) Row(featureIdx int) []float64 {
	row := make([]float64, len(m.Data[featureIdx]))
	copy(row, m.Data[featureIdx])
	return row
}

// Column returns a copy of a sample's values across all features
func (m *AbundanceMatrix) Column(sampleIdx int) []float64 {
	col := make([]float64, len(m.Data))
	for i, row := range m.Data {
		col[i] = row[sampleIdx]
	}
	return col
}

// MaxAbundance returns the maximum value of a feature across all samples
func (m *AbundanceMatrix) MaxAbundance(featureIdx int) float64 {
	maxVal := 0.0
	for _, v := range m.Data[featureIdx] {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

// SampleIndex returns the column index of a sample ID, or -1
func (m *AbundanceMatrix) SampleIndex(id core.SampleID) int {
	for i, s := range m.Samples {
		if s == id {
			return i
		}
	}
	return -1
}

// SampleMetadata holds per-sample attributes aligned 1:1 with the matrix
// columns: a categorical group label and optional numeric covariates.
// NaN marks a missing covariate value.
type SampleMetadata struct {
	Samples    []core.SampleID      `json:"samples"`
	Groups     []string             `json:"groups"`
	Covariates map[string][]float64 `json:"covariates,omitempty"`
}

// Align verifies the metadata corresponds 1:1 with the matrix columns
func (md *SampleMetadata) Align(m *AbundanceMatrix) error {
	if len(md.Samples) != len(m.Samples) {
		return core.NewDimensionError(len(m.Samples), len(md.Samples))
	}
	if len(md.Groups) != len(md.Samples) {
		return core.NewDimensionError(len(md.Samples), len(md.Groups))
	}
	for i, s := range md.Samples {
		if m.Samples[i] != s {
			return core.NewDimensionError(len(m.Samples), len(md.Samples))
		}
	}
	for name, col := range md.Covariates {
		if len(col) != len(md.Samples) {
			return core.NewCovariateError(name, "length mismatch")
		}
	}
	return nil
}

// GroupLevels returns the distinct group labels in first-seen order
func (md *SampleMetadata) GroupLevels() []string {
	seen := make(map[string]struct{})
	levels := make([]string, 0, 2)
	for _, g := range md.Groups {
		if _, ok := seen[g]; !ok {
			seen[g] = struct{}{}
			levels = append(levels, g)
		}
	}
	return levels
}

// Covariate returns the named covariate column, or false if absent
func (md *SampleMetadata) Covariate(name string) ([]float64, bool) {
	col, ok := md.Covariates[name]
	return col, ok
}
