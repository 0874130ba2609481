package screen

import (
	"sort"

	"taxoscreen/domain/core"
)

// TestVariant selects the per-feature association test
type TestVariant string

const (
	// TestTwoGroup compares feature values between two sample groups with a
	// Wilcoxon rank-sum test.
	TestTwoGroup TestVariant = "two_group"
	// TestCorrelation relates feature values to a numeric covariate with a
	// Spearman rank correlation test.
	TestCorrelation TestVariant = "correlation"
)

// Default screening thresholds
const (
	DefaultAbundanceCutoff = 1e-3
	DefaultAlpha           = 0.05
)

// Config holds the parameters of one screening run
type Config struct {
	Variant         TestVariant `json:"variant"`
	AbundanceCutoff float64     `json:"abundance_cutoff"`
	Alpha           float64     `json:"alpha"`
	CovariateColumn string      `json:"covariate_column,omitempty"`
	// Workers caps concurrent per-feature tests; <= 0 means GOMAXPROCS.
	Workers int `json:"workers,omitempty"`
	// ZeroResultsOK downgrades the empty-filter error to an empty result set.
	ZeroResultsOK bool `json:"zero_results_ok,omitempty"`
}

// WithDefaults fills unset thresholds
func (c Config) WithDefaults() Config {
	if c.Variant == "" {
		c.Variant = TestTwoGroup
	}
	if c.AbundanceCutoff == 0 {
		c.AbundanceCutoff = DefaultAbundanceCutoff
	}
	if c.Alpha == 0 {
		c.Alpha = DefaultAlpha
	}
	return c
}

// TestResult is one feature's outcome from a screening run.
// INVARIANTS:
// - RawP and AdjustedP in [0, 1], AdjustedP >= RawP
// - never mutated after the run produces it
type TestResult struct {
	FeatureID  core.FeatureID `json:"feature_id" db:"feature_id"`
	RawP       float64        `json:"raw_p" db:"raw_p"`
	AdjustedP  float64        `json:"adjusted_p" db:"adjusted_p"`
	EffectSize float64        `json:"effect_size" db:"effect_size"`
	Rank       int            `json:"rank" db:"rank"`
}

// SortResults orders results by adjusted p ascending with feature ID
// ascending as the deterministic tie-break, then assigns 1-based ranks.
func SortResults(results []TestResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].AdjustedP != results[j].AdjustedP {
			return results[i].AdjustedP < results[j].AdjustedP
		}
		return results[i].FeatureID < results[j].FeatureID
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

// RunStatus tracks the lifecycle of a persisted screen run
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is a completed screening invocation with its configuration and the
// significant results it produced.
type Run struct {
	ID            core.RunID     `json:"id"`
	DatasetLabel  string         `json:"dataset_label"`
	Config        Config         `json:"config"`
	Status        RunStatus      `json:"status"`
	ErrorMessage  string         `json:"error_message,omitempty"`
	FeaturesTotal int            `json:"features_total"`
	FeaturesKept  int            `json:"features_kept"`
	Results       []TestResult   `json:"results"`
	CreatedAt     core.Timestamp `json:"created_at"`
}
