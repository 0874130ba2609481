package lasso

import (
	"errors"
	"testing"

	"taxoscreen/domain/core"
)

func TestCrossValidate_SeparableData(t *testing.T) {
	x, y, features := separableData(20, 3)

	eval, err := CrossValidate(x, y, features, CVConfig{Folds: 5, Seed: 42})
	if err != nil {
		t.Fatalf("CrossValidate failed: %v", err)
	}
	if eval.Folds != 5 {
		t.Errorf("Folds = %d, expected 5", eval.Folds)
	}
	if eval.AUC < 0.95 {
		t.Errorf("AUC = %g on separable data, expected near 1", eval.AUC)
	}
	if eval.Accuracy < 0.9 {
		t.Errorf("Accuracy = %g on separable data, expected near 1", eval.Accuracy)
	}
	if eval.F1 < 0.9 {
		t.Errorf("F1 = %g on separable data, expected near 1", eval.F1)
	}
}

func TestCrossValidate_SeedDeterminism(t *testing.T) {
	x, y, features := separableData(15, 4)

	a, err := CrossValidate(x, y, features, CVConfig{Folds: 3, Seed: 7})
	if err != nil {
		t.Fatalf("CrossValidate failed: %v", err)
	}
	b, err := CrossValidate(x, y, features, CVConfig{Folds: 3, Seed: 7})
	if err != nil {
		t.Fatalf("CrossValidate failed: %v", err)
	}
	if *a != *b {
		t.Errorf("Same seed must reproduce the evaluation: %+v vs %+v", a, b)
	}
}

func TestCrossValidate_Errors(t *testing.T) {
	x, y, features := separableData(10, 5)

	if _, err := CrossValidate(x, y, features, CVConfig{Folds: 1}); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Folds < 2 should be rejected, got %v", err)
	}
	if _, err := CrossValidate(x, y, features, CVConfig{Folds: len(x) + 1}); !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("Folds > n should be rejected, got %v", err)
	}

	ones := []int{1, 1, 1, 1}
	if _, err := CrossValidate(x[:4], ones, features, CVConfig{Folds: 2}); !errors.Is(err, core.ErrInvalidGrouping) {
		t.Errorf("Single-class labels should be rejected, got %v", err)
	}
}

func TestStratifiedFolds(t *testing.T) {
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}
	folds := stratifiedFolds(y, 2, 9)

	perFold := map[int]map[int]int{}
	for i, f := range folds {
		if f < 0 || f > 1 {
			t.Fatalf("Sample %d assigned to fold %d", i, f)
		}
		if perFold[f] == nil {
			perFold[f] = map[int]int{}
		}
		perFold[f][y[i]]++
	}
	for f, counts := range perFold {
		if counts[0] != 2 || counts[1] != 2 {
			t.Errorf("Fold %d class counts = %v, expected 2 of each", f, counts)
		}
	}
}
