package app

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"taxoscreen/adapters/stats/fdr"
	"taxoscreen/adapters/stats/tests"
	"taxoscreen/domain/abundance"
	"taxoscreen/domain/core"
	"taxoscreen/domain/screen"
)

// MaxFeatures bounds the per-run feature count to keep a sweep from
// exploding on a mis-shaped input file.
const MaxFeatures = 100000

// ScreenService runs univariate association screens over an abundance
// matrix: per-feature rank tests, family-wide BH correction, and
// significance filtering. Pure with respect to its inputs.
type ScreenService struct{}

// NewScreenService creates a new screen service
func NewScreenService() *ScreenService {
	return &ScreenService{}
}

// Outcome summarizes one screening run
type Outcome struct {
	FeaturesTotal int                 `json:"features_total"`
	FeaturesKept  int                 `json:"features_kept"`
	Results       []screen.TestResult `json:"results"`
}

// Screen validates the inputs, filters features by the abundance cutoff,
// computes a raw p-value per retained feature, applies BH correction
// across the family, and returns the significant features sorted by
// adjusted p-value ascending (feature ID ascending on ties).
func (s *ScreenService) Screen(ctx context.Context, matrix *abundance.AbundanceMatrix, metadata *abundance.SampleMetadata, cfg screen.Config) (*Outcome, error) {
	cfg = cfg.WithDefaults()

	if err := matrix.Validate(); err != nil {
		return nil, err
	}
	if err := metadata.Align(matrix); err != nil {
		return nil, err
	}
	if matrix.NumFeatures() > MaxFeatures {
		return nil, fmt.Errorf("too many features: %d > %d", matrix.NumFeatures(), MaxFeatures)
	}

	var groupA, groupB []int
	var covariate []float64
	switch cfg.Variant {
	case screen.TestTwoGroup:
		levels := metadata.GroupLevels()
		if len(levels) != 2 {
			return nil, core.NewGroupingError(len(levels))
		}
		for i, g := range metadata.Groups {
			if g == levels[0] {
				groupA = append(groupA, i)
			} else {
				groupB = append(groupB, i)
			}
		}
	case screen.TestCorrelation:
		col, ok := metadata.Covariate(cfg.CovariateColumn)
		if !ok {
			return nil, core.NewCovariateError(cfg.CovariateColumn, "not present in metadata")
		}
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, core.NewCovariateError(cfg.CovariateColumn, "missing or non-numeric value")
			}
		}
		covariate = col
	default:
		return nil, fmt.Errorf("unknown test variant: %s", cfg.Variant)
	}

	filtered, _ := matrix.FilterFeatures(cfg.AbundanceCutoff)
	kept := filtered.NumFeatures()
	if kept == 0 {
		if cfg.ZeroResultsOK {
			return &Outcome{FeaturesTotal: matrix.NumFeatures(), Results: []screen.TestResult{}}, nil
		}
		return nil, core.ErrEmptyInput
	}

	// Per-feature tests are independent; fan out with a bounded group and
	// write results by index so output order stays deterministic.
	rawP := make([]float64, kept)
	effects := make([]float64, kept)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < kept; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := filtered.Row(i)
			switch cfg.Variant {
			case screen.TestTwoGroup:
				effects[i], rawP[i] = tests.MannWhitney(subset(row, groupA), subset(row, groupB))
			case screen.TestCorrelation:
				effects[i], rawP[i] = tests.Spearman(row, covariate)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Correction is a barrier: it needs the full family of raw p-values.
	adjusted := fdr.Adjust(rawP)

	results := make([]screen.TestResult, 0, kept)
	for i := 0; i < kept; i++ {
		if adjusted[i] < cfg.Alpha {
			results = append(results, screen.TestResult{
				FeatureID:  filtered.Features[i],
				RawP:       rawP[i],
				AdjustedP:  adjusted[i],
				EffectSize: effects[i],
			})
		}
	}
	screen.SortResults(results)

	return &Outcome{
		FeaturesTotal: matrix.NumFeatures(),
		FeaturesKept:  kept,
		Results:       results,
	}, nil
}

func subset(row []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = row[j]
	}
	return out
}
