package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
)

const objectiveLogistic = "binary:logistic"

// GradientBoostedTrees is an additive ensemble of regression trees with a
// logistic link, as exported from an XGBoost gbtree booster.
type GradientBoostedTrees struct {
	baseMargin float64
	trees      []Tree
}

// NewGradientBoostedTrees validates the ensemble. baseScore is the prior
// probability the booster starts from.
func NewGradientBoostedTrees(objective string, baseScore float64, trees []Tree) (*GradientBoostedTrees, error) {
	if objective != "" && objective != objectiveLogistic {
		return nil, fmt.Errorf("unsupported objective %q", objective)
	}
	if baseScore <= 0 || baseScore >= 1 {
		return nil, fmt.Errorf("base score %v must be in (0,1)", baseScore)
	}
	if len(trees) == 0 {
		return nil, errors.New("ensemble has no trees")
	}
	copied := make([]Tree, len(trees))
	for i, tree := range trees {
		if err := tree.Validate(len(featureNames)); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		copied[i] = append(Tree(nil), tree...)
	}
	return &GradientBoostedTrees{
		baseMargin: logit(baseScore),
		trees:      copied,
	}, nil
}

func (g *GradientBoostedTrees) PredictProba(ctx context.Context, record FeatureRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	features := record.Vector()
	margin := g.baseMargin
	for i, tree := range g.trees {
		leaf, err := tree.Evaluate(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		margin += leaf
	}
	return sigmoid(margin), nil
}

// TreeCount returns the number of boosting rounds.
func (g *GradientBoostedTrees) TreeCount() int {
	return len(g.trees)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
