package ecology

import (
	"math"

	"github.com/montanaflynn/stats"

	"taxoscreen/domain/abundance"
	"taxoscreen/domain/core"
)

// SampleDiversity holds alpha-diversity indices for one sample
type SampleDiversity struct {
	Sample   core.SampleID `json:"sample"`
	Richness int           `json:"richness"`
	Shannon  float64       `json:"shannon"`
	Simpson  float64       `json:"simpson"`
}

// DiversitySummary aggregates an index across all samples
type DiversitySummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// AlphaDiversity computes richness, Shannon entropy, and the Gini-Simpson
// index per sample from proportional abundances. Counts are normalized
// per column first, so raw count input is accepted.
func AlphaDiversity(m *abundance.AbundanceMatrix) []SampleDiversity {
	out := make([]SampleDiversity, m.NumSamples())
	for j := 0; j < m.NumSamples(); j++ {
		col := m.Column(j)
		total := 0.0
		richness := 0
		for _, v := range col {
			total += v
			if v > 0 {
				richness++
			}
		}

		shannon := 0.0
		simpson := 0.0
		if total > 0 {
			for _, v := range col {
				if v == 0 {
					continue
				}
				p := v / total
				shannon -= p * math.Log(p)
				simpson += p * p
			}
		}

		out[j] = SampleDiversity{
			Sample:   m.Samples[j],
			Richness: richness,
			Shannon:  shannon,
			Simpson:  1.0 - simpson,
		}
	}
	return out
}

// SummarizeShannon aggregates the Shannon index across samples
func SummarizeShannon(div []SampleDiversity) DiversitySummary {
	values := make([]float64, len(div))
	for i, d := range div {
		values[i] = d.Shannon
	}
	return summarize(values)
}

func summarize(values []float64) DiversitySummary {
	mean, _ := stats.Mean(values)
	stdDev, _ := stats.StandardDeviation(values)
	median, _ := stats.Median(values)
	minVal, _ := stats.Min(values)
	maxVal, _ := stats.Max(values)
	return DiversitySummary{
		Mean:   mean,
		StdDev: stdDev,
		Median: median,
		Min:    minVal,
		Max:    maxVal,
	}
}
