// Package lasso fits an L1-penalized logistic regression for binary
// disease-state prediction, with stratified cross-validation and ROC
// evaluation.
package lasso

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"taxoscreen/domain/core"
)

// FitConfig controls the coordinate-descent solver
type FitConfig struct {
	Lambda  float64 `json:"lambda"`
	MaxIter int     `json:"max_iter"`
	Tol     float64 `json:"tol"`
}

// WithDefaults fills unset solver parameters
func (c FitConfig) WithDefaults() FitConfig {
	if c.Lambda == 0 {
		c.Lambda = 0.01
	}
	if c.MaxIter == 0 {
		c.MaxIter = 200
	}
	if c.Tol == 0 {
		c.Tol = 1e-6
	}
	return c
}

// Model is a fitted L1 logistic regression. Weights apply to standardized
// features; Predict handles the standardization internally.
type Model struct {
	Intercept float64          `json:"intercept"`
	Weights   []float64        `json:"weights"`
	Features  []core.FeatureID `json:"features"`
	means     []float64
	scales    []float64
}

// Coefficient pairs a feature with its fitted weight
type Coefficient struct {
	FeatureID core.FeatureID `json:"feature_id"`
	Weight    float64        `json:"weight"`
}

// minCurvature floors the IRLS working weights away from zero
const minCurvature = 1e-5

// Fit trains the model by cyclic coordinate descent on the penalized
// quadratic approximation of the logistic loss (soft-thresholding each
// coordinate). x is samples-by-features; y holds 0/1 class labels.
func Fit(x [][]float64, y []int, features []core.FeatureID, cfg FitConfig) (*Model, error) {
	cfg = cfg.WithDefaults()
	n := len(x)
	if n < 2 || len(y) != n {
		return nil, core.ErrInsufficientData
	}
	d := len(features)
	for _, row := range x {
		if len(row) != d {
			return nil, core.NewDimensionError(len(row), d)
		}
	}
	if !hasBothClasses(y) {
		return nil, core.ErrInvalidGrouping
	}

	std, means, scales := standardize(x)

	model := &Model{
		Weights:  make([]float64, d),
		Features: append([]core.FeatureID(nil), features...),
		means:    means,
		scales:   scales,
	}

	linear := make([]float64, n)
	for iter := 0; iter < cfg.MaxIter; iter++ {
		// Quadratic approximation at the current estimate.
		curvature := make([]float64, n)
		working := make([]float64, n)
		for i := 0; i < n; i++ {
			p := sigmoid(linear[i])
			w := p * (1 - p)
			if w < minCurvature {
				w = minCurvature
			}
			curvature[i] = w
			working[i] = linear[i] + (float64(y[i])-p)/w
		}

		maxDelta := 0.0

		// Unpenalized intercept update.
		num, den := 0.0, 0.0
		for i := 0; i < n; i++ {
			num += curvature[i] * (working[i] - (linear[i] - model.Intercept))
			den += curvature[i]
		}
		newIntercept := num / den
		shiftLinear(linear, newIntercept-model.Intercept)
		maxDelta = math.Abs(newIntercept - model.Intercept)
		model.Intercept = newIntercept

		// Cyclic coordinate updates with soft-thresholding.
		for j := 0; j < d; j++ {
			if scales[j] == 0 {
				continue
			}
			a, c := 0.0, 0.0
			for i := 0; i < n; i++ {
				partial := working[i] - linear[i] + std[i][j]*model.Weights[j]
				a += curvature[i] * std[i][j] * std[i][j]
				c += curvature[i] * std[i][j] * partial
			}
			a /= float64(n)
			c /= float64(n)

			newWeight := softThreshold(c, cfg.Lambda) / a
			delta := newWeight - model.Weights[j]
			if delta != 0 {
				for i := 0; i < n; i++ {
					linear[i] += std[i][j] * delta
				}
				model.Weights[j] = newWeight
			}
			if math.Abs(delta) > maxDelta {
				maxDelta = math.Abs(delta)
			}
		}

		if maxDelta < cfg.Tol {
			break
		}
	}

	return model, nil
}

// Predict returns the probability of the positive class for a raw
// (unstandardized) feature row.
func (m *Model) Predict(row []float64) float64 {
	z := m.Intercept
	for j, w := range m.Weights {
		if w == 0 || m.scales[j] == 0 {
			continue
		}
		z += w * (row[j] - m.means[j]) / m.scales[j]
	}
	return sigmoid(z)
}

// SelectedFeatures returns features with nonzero weight sorted by
// absolute weight descending, feature ID ascending on ties.
func (m *Model) SelectedFeatures() []Coefficient {
	var out []Coefficient
	for j, w := range m.Weights {
		if w != 0 {
			out = append(out, Coefficient{FeatureID: m.Features[j], Weight: w})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		wa, wb := math.Abs(out[a].Weight), math.Abs(out[b].Weight)
		if wa != wb {
			return wa > wb
		}
		return out[a].FeatureID < out[b].FeatureID
	})
	return out
}

// standardize centers each column to mean 0 and scales to unit standard
// deviation. Constant columns keep scale 0 and are skipped by the solver.
func standardize(x [][]float64) (std [][]float64, means, scales []float64) {
	n := len(x)
	d := len(x[0])
	means = make([]float64, d)
	scales = make([]float64, d)

	col := make([]float64, n)
	for j := 0; j < d; j++ {
		for i := 0; i < n; i++ {
			col[i] = x[i][j]
		}
		mean, _ := stats.Mean(col)
		sd, _ := stats.StandardDeviationPopulation(col)
		means[j] = mean
		scales[j] = sd
	}

	std = make([][]float64, n)
	for i := 0; i < n; i++ {
		std[i] = make([]float64, d)
		for j := 0; j < d; j++ {
			if scales[j] == 0 {
				continue
			}
			std[i][j] = (x[i][j] - means[j]) / scales[j]
		}
	}
	return std, means, scales
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func softThreshold(v, gamma float64) float64 {
	switch {
	case v > gamma:
		return v - gamma
	case v < -gamma:
		return v + gamma
	default:
		return 0
	}
}

func shiftLinear(linear []float64, delta float64) {
	for i := range linear {
		linear[i] += delta
	}
}

func hasBothClasses(y []int) bool {
	seen0, seen1 := false, false
	for _, v := range y {
		switch v {
		case 0:
			seen0 = true
		case 1:
			seen1 = true
		}
	}
	return seen0 && seen1
}
