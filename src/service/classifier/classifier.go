// Package classifier implements the soft-voting ensemble that labels feature
// vectors as clean or smelly, together with the base classifiers, feature
// scaling, validation and persistence it needs.
package classifier

import (
	"fmt"
	"math"
)

// Classifier is a binary probabilistic classifier over dense vectors
type Classifier interface {
	// Name returns the classifier name used in reports and probability breakdowns
	Name() string

	// Fit trains the classifier. Labels must be 0 or 1.
	Fit(X [][]float64, y []int) error

	// PredictProba returns P(label=0) and P(label=1) for one vector
	PredictProba(x []float64) [2]float64

	// Params returns the hyperparameters in use
	Params() map[string]any
}

// Base classifier names
const (
	NameForest   = "random_forest"
	NameSVM      = "svm"
	NameLogistic = "logistic_regression"
)

func checkTrainingSet(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("empty training set")
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%d vectors but %d labels", len(X), len(y))
	}
	d := len(X[0])
	for i, x := range X {
		if len(x) != d {
			return 0, fmt.Errorf("vector %d has %d features, expected %d", i, len(x), d)
		}
		if y[i] != 0 && y[i] != 1 {
			return 0, fmt.Errorf("label %d at index %d is not binary", y[i], i)
		}
	}
	return d, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func accuracy(c Classifier, X [][]float64, y []int) float64 {
	if len(X) == 0 {
		return 0
	}
	correct := 0
	for i, x := range X {
		if argmax(c.PredictProba(x)) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

// argmax picks label 1 only when it is strictly more probable
func argmax(p [2]float64) int {
	if p[1] > p[0] {
		return 1
	}
	return 0
}
