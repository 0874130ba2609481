package lasso

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"taxoscreen/domain/core"
)

// CVConfig controls stratified k-fold cross-validation
type CVConfig struct {
	Folds int       `json:"folds"`
	Seed  int64     `json:"seed"`
	Fit   FitConfig `json:"fit"`
}

// Evaluation holds out-of-fold performance of the pipeline
type Evaluation struct {
	Folds     int     `json:"folds"`
	AUC       float64 `json:"auc"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// CrossValidate runs stratified k-fold cross-validation: each fold's model
// is trained on the remaining folds and scored on the held-out samples.
// All reported metrics are computed from the pooled out-of-fold
// predictions (threshold 0.5 for the classification metrics).
func CrossValidate(x [][]float64, y []int, features []core.FeatureID, cfg CVConfig) (*Evaluation, error) {
	n := len(x)
	if cfg.Folds < 2 || cfg.Folds > n {
		return nil, core.ErrInsufficientData
	}
	if !hasBothClasses(y) {
		return nil, core.ErrInvalidGrouping
	}

	folds := stratifiedFolds(y, cfg.Folds, cfg.Seed)

	scores := make([]float64, n)
	for f := 0; f < cfg.Folds; f++ {
		var trainX [][]float64
		var trainY []int
		for i := 0; i < n; i++ {
			if folds[i] != f {
				trainX = append(trainX, x[i])
				trainY = append(trainY, y[i])
			}
		}
		if !hasBothClasses(trainY) {
			return nil, core.ErrInsufficientData
		}

		model, err := Fit(trainX, trainY, features, cfg.Fit)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if folds[i] == f {
				scores[i] = model.Predict(x[i])
			}
		}
	}

	eval := &Evaluation{Folds: cfg.Folds}
	eval.AUC = rocAUC(scores, y)

	var tp, fp, tn, fn float64
	for i := 0; i < n; i++ {
		predicted := scores[i] >= 0.5
		actual := y[i] == 1
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && !actual:
			tn++
		default:
			fn++
		}
	}
	eval.Accuracy = (tp + tn) / float64(n)
	if tp+fp > 0 {
		eval.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		eval.Recall = tp / (tp + fn)
	}
	if eval.Precision+eval.Recall > 0 {
		eval.F1 = 2 * eval.Precision * eval.Recall / (eval.Precision + eval.Recall)
	}
	return eval, nil
}

// stratifiedFolds assigns each sample to a fold, shuffling within each
// class so every fold sees both classes when counts allow.
func stratifiedFolds(y []int, folds int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	assignment := make([]int, len(y))
	for _, class := range []int{0, 1} {
		var idx []int
		for i, v := range y {
			if v == class {
				idx = append(idx, i)
			}
		}
		rng.Shuffle(len(idx), func(a, b int) {
			idx[a], idx[b] = idx[b], idx[a]
		})
		for pos, i := range idx {
			assignment[i] = pos % folds
		}
	}
	return assignment
}

// rocAUC computes the area under the ROC curve from scores and 0/1 labels
func rocAUC(scores []float64, y []int) float64 {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	sorted := make([]float64, n)
	classes := make([]bool, n)
	for pos, i := range order {
		sorted[pos] = scores[i]
		classes[pos] = y[i] == 1
	}

	tpr, fpr, _ := stat.ROC(nil, sorted, classes, nil)

	auc := 0.0
	for i := 1; i < len(fpr); i++ {
		auc += (fpr[i-1] - fpr[i]) * (tpr[i] + tpr[i-1]) / 2
	}
	return math.Abs(auc)
}
