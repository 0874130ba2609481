// Package testkit generates seeded synthetic metagenomic datasets for
// tests, demos, and the CLI demo mode.
package testkit

import (
	"fmt"
	"math/rand"

	"taxoscreen/domain/abundance"
	"taxoscreen/domain/core"
)

// GeneratorConfig configures the synthetic abundance generator
type GeneratorConfig struct {
	FeatureCount      int     `json:"feature_count"`
	SamplesPerGroup   int     `json:"samples_per_group"`
	DifferentialCount int     `json:"differential_count"`
	FoldChange        float64 `json:"fold_change"`
	Seed              int64   `json:"seed"`
}

// DefaultConfig returns sensible defaults for dataset generation
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		FeatureCount:      120,
		SamplesPerGroup:   25,
		DifferentialCount: 10,
		FoldChange:        4.0,
		Seed:              42,
	}
}

// Generator produces compositional abundance matrices with a planted
// group signal in the leading features.
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a new generator
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Group labels used in generated metadata
const (
	GroupHealthy = "healthy"
	GroupDisease = "disease"
)

// Generate builds a relative-abundance matrix and aligned metadata. The
// first DifferentialCount features are inflated by FoldChange in the
// disease group; an "age" covariate correlates with the first feature.
func (g *Generator) Generate() (*abundance.AbundanceMatrix, *abundance.SampleMetadata) {
	nSamples := 2 * g.config.SamplesPerGroup
	matrix := &abundance.AbundanceMatrix{
		Features: make([]core.FeatureID, g.config.FeatureCount),
		Samples:  make([]core.SampleID, nSamples),
		Data:     make([][]float64, g.config.FeatureCount),
	}
	metadata := &abundance.SampleMetadata{
		Samples:    make([]core.SampleID, nSamples),
		Groups:     make([]string, nSamples),
		Covariates: map[string][]float64{"age": make([]float64, nSamples)},
	}

	for i := range matrix.Features {
		matrix.Features[i] = core.FeatureID(fmt.Sprintf("taxon_%04d", i+1))
		matrix.Data[i] = make([]float64, nSamples)
	}

	// Per-feature baseline intensity, log-normal-ish so a few taxa dominate
	// the community as in real profiles.
	baseline := make([]float64, g.config.FeatureCount)
	for i := range baseline {
		baseline[i] = g.rng.ExpFloat64() + 0.05
	}

	for j := 0; j < nSamples; j++ {
		diseased := j >= g.config.SamplesPerGroup
		group := GroupHealthy
		if diseased {
			group = GroupDisease
		}
		id := core.SampleID(fmt.Sprintf("%s_%03d", group, j%g.config.SamplesPerGroup+1))
		matrix.Samples[j] = id
		metadata.Samples[j] = id
		metadata.Groups[j] = group

		total := 0.0
		for i := 0; i < g.config.FeatureCount; i++ {
			v := baseline[i] * (0.5 + g.rng.Float64())
			if diseased && i < g.config.DifferentialCount {
				v *= g.config.FoldChange
			}
			matrix.Data[i][j] = v
			total += v
		}
		for i := 0; i < g.config.FeatureCount; i++ {
			matrix.Data[i][j] /= total
		}

		// Age tracks the first planted taxon so the correlation variant has
		// a true positive too.
		metadata.Covariates["age"][j] = 40 + 200*matrix.Data[0][j] + g.rng.NormFloat64()*2
	}

	return matrix, metadata
}

// GenerateCounts builds an integer count matrix with uneven library sizes,
// suitable for exercising rarefaction.
func (g *Generator) GenerateCounts(minDepth, maxDepth int) (*abundance.AbundanceMatrix, *abundance.SampleMetadata) {
	rel, metadata := g.Generate()
	counts := &abundance.AbundanceMatrix{
		Features: rel.Features,
		Samples:  rel.Samples,
		Data:     make([][]float64, len(rel.Data)),
	}
	for i := range counts.Data {
		counts.Data[i] = make([]float64, rel.NumSamples())
	}

	for j := 0; j < rel.NumSamples(); j++ {
		depth := minDepth + g.rng.Intn(maxDepth-minDepth+1)
		for draw := 0; draw < depth; draw++ {
			r := g.rng.Float64()
			cum := 0.0
			for i := 0; i < len(rel.Data); i++ {
				cum += rel.Data[i][j]
				if r <= cum || i == len(rel.Data)-1 {
					counts.Data[i][j]++
					break
				}
			}
		}
	}
	return counts, metadata
}

// Rand exposes the generator's seeded randomness source
func (g *Generator) Rand() *rand.Rand {
	return g.rng
}
