package ml

import (
	"context"
	"errors"
	"fmt"
)

// TreeNode is one node of a flattened binary tree. Children are indexes into
// the node slice; samples go left when feature <= threshold.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// Tree is a flattened tree rooted at node 0.
type Tree []TreeNode

// Validate checks node references against the feature count.
func (t Tree) Validate(featureCount int) error {
	if len(t) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range t {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(t) {
			return fmt.Errorf("node %d: invalid left child %d", i, node.LeftChild)
		}
		if node.RightChild <= i || node.RightChild >= len(t) {
			return fmt.Errorf("node %d: invalid right child %d", i, node.RightChild)
		}
	}
	return nil
}

// Evaluate walks the tree for one feature vector and returns the leaf value.
func (t Tree) Evaluate(features []float64) (float64, error) {
	if len(t) == 0 {
		return 0, errors.New("tree has no nodes")
	}
	idx := 0
	for steps := 0; steps < len(t); steps++ {
		node := t[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree walk did not reach a leaf")
}

// DecisionTree is a single tree whose leaves hold the positive-class probability.
type DecisionTree struct {
	nodes Tree
}

// NewDecisionTree validates nodes and wraps them as a Classifier.
func NewDecisionTree(nodes Tree) (*DecisionTree, error) {
	if err := nodes.Validate(len(featureNames)); err != nil {
		return nil, err
	}
	for i, node := range nodes {
		if node.IsLeaf && (node.Value < 0 || node.Value > 1) {
			return nil, fmt.Errorf("node %d: leaf probability %v outside [0,1]", i, node.Value)
		}
	}
	return &DecisionTree{nodes: append(Tree(nil), nodes...)}, nil
}

func (dt *DecisionTree) PredictProba(ctx context.Context, record FeatureRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return dt.nodes.Evaluate(record.Vector())
}
