package ml

import (
	"context"
	"testing"
)

// stumpOn splits on feature idx at threshold; left leaf low, right leaf high.
func stumpOn(idx int, threshold, low, high float64) Tree {
	return Tree{
		{FeatureIdx: idx, Threshold: threshold, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: low, IsLeaf: true},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: high, IsLeaf: true},
	}
}

func TestTreeEvaluate(t *testing.T) {
	tree := stumpOn(0, 55, 0.2, 0.7)

	got, err := tree.Evaluate([]float64{50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.2 {
		t.Fatalf("expected left leaf 0.2, got %v", got)
	}

	got, err = tree.Evaluate([]float64{55})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.2 {
		t.Fatalf("threshold value should go left, got %v", got)
	}

	got, err = tree.Evaluate([]float64{60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.7 {
		t.Fatalf("expected right leaf 0.7, got %v", got)
	}
}

func TestTreeValidate(t *testing.T) {
	tests := []struct {
		name    string
		tree    Tree
		wantErr bool
	}{
		{name: "valid stump", tree: stumpOn(9, 1.5, 0.1, 0.9)},
		{name: "empty", tree: Tree{}, wantErr: true},
		{name: "feature out of range", tree: stumpOn(13, 1, 0, 1), wantErr: true},
		{
			name: "child points backwards",
			tree: Tree{
				{FeatureIdx: 0, Threshold: 1, LeftChild: 0, RightChild: 1},
				{IsLeaf: true, Value: 0.5},
			},
			wantErr: true,
		},
		{
			name: "child past end",
			tree: Tree{
				{FeatureIdx: 0, Threshold: 1, LeftChild: 1, RightChild: 5},
				{IsLeaf: true, Value: 0.5},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tree.Validate(len(FeatureNames()))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecisionTreePredictProba(t *testing.T) {
	// split on exang (index 8)
	model, err := NewDecisionTree(stumpOn(8, 0.5, 0.25, 0.8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	proba, err := model.PredictProba(context.Background(), FeatureRecord{Exang: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proba != 0.8 {
		t.Fatalf("expected 0.8, got %v", proba)
	}
}

func TestNewDecisionTreeRejectsLeafOutsideUnitInterval(t *testing.T) {
	if _, err := NewDecisionTree(stumpOn(0, 50, -0.1, 0.9)); err == nil {
		t.Fatal("expected error for negative leaf probability")
	}
}
