package model

import "time"

// Class labels
const (
	LabelClean  = 0
	LabelSmelly = 1
)

// LabelName returns the human-readable name of a class label
func LabelName(label int) string {
	if label == LabelSmelly {
		return "smelly"
	}
	return "clean"
}

// TrainingSample is one labeled feature vector
type TrainingSample struct {
	Features    []float64 `json:"features" yaml:"features"`
	Label       int       `json:"label" yaml:"label"`
	Description string    `json:"description,omitempty" yaml:"description"`
}

// Prediction is the ensemble output for one feature vector
type Prediction struct {
	Label         int                `json:"label"`
	LabelName     string             `json:"label_name"`
	Confidence    float64            `json:"confidence"`
	Probabilities []float64          `json:"probabilities"`
	Breakdown     map[string]float64 `json:"breakdown"`
}

// CVScore summarizes a cross-validation run
type CVScore struct {
	Mean     float64   `json:"mean"`
	Std      float64   `json:"std"`
	Variance float64   `json:"variance"`
	Folds    []float64 `json:"folds"`
}

// ClassifierReport describes the training outcome of one base classifier
type ClassifierReport struct {
	Name            string         `json:"name"`
	Params          map[string]any `json:"params"`
	HoldoutAccuracy float64        `json:"holdout_accuracy"`
	CV              CVScore        `json:"cv"`
}

// ClassMetrics is the holdout precision, recall and F1 of one class label
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// TrainingReport is returned by a successful training run
type TrainingReport struct {
	ModelID         string             `json:"model_id"`
	TrainedAt       time.Time          `json:"trained_at"`
	FeatureVersion  string             `json:"feature_version"`
	Samples         int                `json:"samples"`
	TrainSamples    int                `json:"train_samples"`
	TestSamples     int                `json:"test_samples"`
	LabelCounts     map[int]int        `json:"label_counts"`
	Synthetic       bool               `json:"synthetic"`
	Warning         string             `json:"warning,omitempty"`
	GridSearch      bool               `json:"grid_search"`
	Classifiers     []ClassifierReport `json:"classifiers"`
	HoldoutAccuracy float64            `json:"holdout_accuracy"`
	CV              CVScore            `json:"cv"`
	Confusion       [2][2]int          `json:"confusion"`
	PerClass        []ClassMetrics     `json:"per_class"`
}
