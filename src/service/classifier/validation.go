package classifier

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"smell-bot/src/model"
)

// Factory builds a fresh, untrained classifier
type Factory func() Classifier

// Candidate is one base classifier configuration: how to build it and whether
// it needs standardized input
type Candidate struct {
	Name    string
	Scaled  bool
	Factory Factory
}

// StratifiedSplit partitions sample indices into train and test sets keeping
// the label proportions. Every class with at least two samples contributes to both sides.
func StratifiedSplit(y []int, testFraction float64, seed uint64) (train, test []int) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	for _, idx := range byLabel(y) {
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

		nTest := int(math.Round(float64(len(idx)) * testFraction))
		if len(idx) >= 2 {
			nTest = min(max(nTest, 1), len(idx)-1)
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	return train, test
}

// StratifiedKFold returns k disjoint test folds. Samples of each label are dealt
// round-robin, so a label with at least k samples appears in every fold.
func StratifiedKFold(y []int, k int, seed uint64) [][]int {
	rng := rand.New(rand.NewPCG(seed, seed+2))
	folds := make([][]int, k)
	offset := 0
	for _, idx := range byLabel(y) {
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		for i, sample := range idx {
			f := (offset + i) % k
			folds[f] = append(folds[f], sample)
		}
		offset += len(idx)
	}
	return folds
}

// byLabel groups indices by label in ascending label order
func byLabel(y []int) [][]int {
	var zero, one []int
	for i, l := range y {
		if l == 1 {
			one = append(one, i)
		} else {
			zero = append(zero, i)
		}
	}
	return [][]int{zero, one}
}

// LabelCounts returns the number of samples of each binary label
func LabelCounts(y []int) map[int]int {
	counts := map[int]int{0: 0, 1: 0}
	for _, l := range y {
		counts[l]++
	}
	return counts
}

func subset(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}

func complement(n int, fold []int) []int {
	in := make([]bool, n)
	for _, i := range fold {
		in[i] = true
	}
	out := make([]int, 0, n-len(fold))
	for i := 0; i < n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

// fitter trains something on a fold and returns its accuracy on the held-out part
type fitter func(trainX [][]float64, trainY []int, testX [][]float64, testY []int) (float64, error)

func crossValidate(ctx context.Context, X [][]float64, y []int, k int, seed uint64, fit fitter) (model.CVScore, error) {
	folds := StratifiedKFold(y, k, seed)
	scores := make([]float64, 0, k)
	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return model.CVScore{}, err
		}
		trainX, trainY := subset(X, y, complement(len(X), fold))
		testX, testY := subset(X, y, fold)
		acc, err := fit(trainX, trainY, testX, testY)
		if err != nil {
			return model.CVScore{}, err
		}
		scores = append(scores, acc)
	}
	return scoreOf(scores), nil
}

func scoreOf(scores []float64) model.CVScore {
	mean, variance := stat.PopMeanVariance(scores, nil)
	return model.CVScore{
		Mean:     mean,
		Variance: variance,
		Std:      math.Sqrt(variance),
		Folds:    scores,
	}
}

// candidateFitter fits a single base classifier, standardizing inside the fold when needed
func candidateFitter(c Candidate) fitter {
	return func(trainX [][]float64, trainY []int, testX [][]float64, testY []int) (float64, error) {
		if c.Scaled {
			scaler := FitScaler(trainX)
			trainX = scaler.TransformAll(trainX)
			testX = scaler.TransformAll(testX)
		}
		clf := c.Factory()
		if err := clf.Fit(trainX, trainY); err != nil {
			return 0, err
		}
		return accuracy(clf, testX, testY), nil
	}
}

// CrossValidate runs stratified k-fold cross-validation of one candidate
func CrossValidate(ctx context.Context, c Candidate, X [][]float64, y []int, k int, seed uint64) (model.CVScore, error) {
	return crossValidate(ctx, X, y, k, seed, candidateFitter(c))
}

// PerClassMetrics derives precision, recall and F1 per label from a confusion
// matrix indexed [actual][predicted]. Undefined ratios are 0.
func PerClassMetrics(confusion [2][2]int) []model.ClassMetrics {
	out := make([]model.ClassMetrics, 0, 2)
	for c := range 2 {
		tp := float64(confusion[c][c])
		support := confusion[c][0] + confusion[c][1]
		predicted := confusion[0][c] + confusion[1][c]

		m := model.ClassMetrics{Label: model.LabelName(c), Support: support}
		if predicted > 0 {
			m.Precision = tp / float64(predicted)
		}
		if support > 0 {
			m.Recall = tp / float64(support)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		out = append(out, m)
	}
	return out
}
