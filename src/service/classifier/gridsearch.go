package classifier

import (
	"context"
	"fmt"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/util"
)

// DefaultCandidates returns the three base classifiers configured from cfg,
// in voting order: forest, SVM, logistic regression
func DefaultCandidates(cfg config.ClassifierConfig) []Candidate {
	return []Candidate{
		{Name: NameForest, Scaled: false, Factory: func() Classifier { return NewRandomForest(cfg.Forest, cfg.Seed) }},
		{Name: NameSVM, Scaled: true, Factory: func() Classifier { return NewSVM(cfg.SVM, cfg.Seed) }},
		{Name: NameLogistic, Scaled: true, Factory: func() Classifier { return NewLogistic(cfg.Logistic) }},
	}
}

// Grid returns every hyperparameter combination searched for the named base classifier
func Grid(name string, cfg config.ClassifierConfig) []Candidate {
	var out []Candidate
	switch name {
	case NameForest:
		for _, n := range []int{50, 100, 200} {
			for _, depth := range []int{0, 10, 20} {
				for _, split := range []int{2, 5, 10} {
					fc := config.ForestConfig{NEstimators: n, MaxDepth: depth, MinSamplesSplit: split}
					out = append(out, Candidate{Name: name, Factory: func() Classifier { return NewRandomForest(fc, cfg.Seed) }})
				}
			}
		}
	case NameSVM:
		for _, c := range []float64{0.1, 1, 10} {
			for _, gamma := range []float64{0, 0.01, 0.1} {
				sc := cfg.SVM
				sc.C, sc.Gamma = c, gamma
				out = append(out, Candidate{Name: name, Scaled: true, Factory: func() Classifier { return NewSVM(sc, cfg.Seed) }})
			}
		}
	case NameLogistic:
		for _, c := range []float64{0.1, 1, 10} {
			for _, lr := range []float64{0.05, 0.1} {
				lc := cfg.Logistic
				lc.C, lc.LearningRate = c, lr
				out = append(out, Candidate{Name: name, Scaled: true, Factory: func() Classifier { return NewLogistic(lc) }})
			}
		}
	}
	return out
}

// GridSearch cross-validates every candidate and returns the one with the best
// mean accuracy. Ties keep the earlier candidate.
func GridSearch(ctx context.Context, candidates []Candidate, X [][]float64, y []int, k int, seed uint64) (Candidate, model.CVScore, error) {
	if len(candidates) == 0 {
		return Candidate{}, model.CVScore{}, fmt.Errorf("grid search: no candidates")
	}

	var (
		best      Candidate
		bestScore model.CVScore
	)
	for i, c := range candidates {
		score, err := CrossValidate(ctx, c, X, y, k, seed)
		if err != nil {
			return Candidate{}, model.CVScore{}, fmt.Errorf("grid search %s candidate %d: %w", c.Name, i, err)
		}
		util.Debug("Grid search %s %v: cv mean %.4f", c.Name, c.Factory().Params(), score.Mean)
		if i == 0 || score.Mean > bestScore.Mean {
			best, bestScore = c, score
		}
	}
	return best, bestScore, nil
}
