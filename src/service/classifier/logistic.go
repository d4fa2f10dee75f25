package classifier

import (
	"smell-bot/src/config"
)

// Logistic is an L2-regularized logistic regression trained by batch
// gradient descent. C is the inverse regularization strength. Expects
// standardized input.
type Logistic struct {
	C            float64   `json:"c"`
	MaxIter      int       `json:"max_iter"`
	LearningRate float64   `json:"learning_rate"`
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
}

// NewLogistic creates an untrained logistic regression
func NewLogistic(cfg config.LogisticConfig) *Logistic {
	l := &Logistic{
		C:            cfg.C,
		MaxIter:      cfg.MaxIter,
		LearningRate: cfg.LearningRate,
	}
	if l.C <= 0 {
		l.C = 1
	}
	if l.MaxIter <= 0 {
		l.MaxIter = 1000
	}
	if l.LearningRate <= 0 {
		l.LearningRate = 0.1
	}
	return l
}

// Name returns the classifier name
func (l *Logistic) Name() string { return NameLogistic }

// Params returns the logistic regression hyperparameters
func (l *Logistic) Params() map[string]any {
	return map[string]any{"c": l.C, "learning_rate": l.LearningRate, "max_iter": l.MaxIter}
}

// Fit minimizes mean log-loss plus ||w||^2 / (2*C*n)
func (l *Logistic) Fit(X [][]float64, y []int) error {
	d, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}

	n := float64(len(X))
	w := make([]float64, d)
	grad := make([]float64, d)
	var b float64

	for it := 0; it < l.MaxIter; it++ {
		for j := range grad {
			grad[j] = w[j] / (l.C * n)
		}
		var gb float64
		for i, x := range X {
			z := b
			for j, v := range x {
				z += w[j] * v
			}
			diff := (sigmoid(z) - float64(y[i])) / n
			for j, v := range x {
				grad[j] += diff * v
			}
			gb += diff
		}
		for j := range w {
			w[j] -= l.LearningRate * grad[j]
		}
		b -= l.LearningRate * gb
	}

	l.Weights = w
	l.Bias = b
	return nil
}

// PredictProba returns the class probabilities for x
func (l *Logistic) PredictProba(x []float64) [2]float64 {
	z := l.Bias
	for j, v := range x {
		if j < len(l.Weights) {
			z += l.Weights[j] * v
		}
	}
	p := sigmoid(z)
	return [2]float64{1 - p, p}
}
