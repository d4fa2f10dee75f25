package classifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/service/features"
	"smell-bot/src/util"
)

const syntheticWarning = "model trained on synthetic data; accuracy on real code is unverified"

// TrainOptions control one training run
type TrainOptions struct {
	TestFraction float64
	Folds        int
	Seed         uint64
	GridSearch   bool
	Synthetic    bool
}

// OptionsFromConfig returns the training options configured in cfg
func OptionsFromConfig(cfg config.ClassifierConfig) TrainOptions {
	return TrainOptions{
		TestFraction: cfg.TestFraction,
		Folds:        cfg.Folds,
		Seed:         cfg.Seed,
		GridSearch:   cfg.GridSearch,
	}
}

type member struct {
	name   string
	scaled bool
	weight float64
	clf    Classifier
}

// state is an immutable trained model; Ensemble swaps it atomically
type state struct {
	id        string
	trainedAt time.Time
	synthetic bool
	samples   int
	scaler    *StandardScaler
	members   []member
}

// Ensemble is a soft-voting combination of a random forest, an RBF SVM and a
// logistic regression. Predict is safe for concurrent use; Train and Load
// replace the whole model only when they succeed.
type Ensemble struct {
	cfg config.ClassifierConfig

	mu    sync.RWMutex
	state *state
}

// NewEnsemble creates an untrained ensemble
func NewEnsemble(cfg config.ClassifierConfig) *Ensemble {
	w := cfg.Weights
	if w.Forest < 0 || w.SVM < 0 || w.Logistic < 0 || w.Forest+w.SVM+w.Logistic == 0 {
		cfg.Weights = config.VotingWeights{Forest: 1, SVM: 1, Logistic: 1}
	}
	return &Ensemble{cfg: cfg}
}

// Trained reports whether a model is available for prediction
func (e *Ensemble) Trained() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state != nil
}

// ModelID returns the identifier of the current model, or "" when untrained
func (e *Ensemble) ModelID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return ""
	}
	return e.state.id
}

func (e *Ensemble) weightOf(name string) float64 {
	switch name {
	case NameForest:
		return e.cfg.Weights.Forest
	case NameSVM:
		return e.cfg.Weights.SVM
	case NameLogistic:
		return e.cfg.Weights.Logistic
	}
	return 0
}

// Train fits the ensemble on samples. Every label needs at least opts.Folds
// samples. A failed run leaves any previous model in place.
func (e *Ensemble) Train(ctx context.Context, samples []model.TrainingSample, opts TrainOptions) (*model.TrainingReport, error) {
	const op = "train"
	start := time.Now()

	if opts.Folds < 2 {
		return nil, fmt.Errorf("%s: folds must be at least 2, got %d", op, opts.Folds)
	}
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		return nil, fmt.Errorf("%s: test fraction must be within (0, 1), got %v", op, opts.TestFraction)
	}

	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		if len(s.Features) != features.Len {
			return nil, fmt.Errorf("%s: sample %d has %d features, expected %d", op, i, len(s.Features), features.Len)
		}
		if s.Label != model.LabelClean && s.Label != model.LabelSmelly {
			return nil, fmt.Errorf("%s: sample %d has label %d, expected 0 or 1", op, i, s.Label)
		}
		X[i] = s.Features
		y[i] = s.Label
	}

	counts := LabelCounts(y)
	for _, label := range []int{model.LabelClean, model.LabelSmelly} {
		if counts[label] < opts.Folds {
			return nil, &model.InsufficientDataError{Operation: op, Label: label, Count: counts[label], Required: opts.Folds}
		}
	}

	util.Info("Training ensemble on %d samples (%d clean, %d smelly, grid search: %v)",
		len(samples), counts[0], counts[1], opts.GridSearch)

	trainIdx, testIdx := StratifiedSplit(y, opts.TestFraction, opts.Seed)
	trainX, trainY := subset(X, y, trainIdx)
	testX, testY := subset(X, y, testIdx)

	scaler := FitScaler(trainX)
	scaledTrain := scaler.TransformAll(trainX)
	scaledTest := scaler.TransformAll(testX)

	cfg := e.cfg
	cfg.Seed = opts.Seed

	report := &model.TrainingReport{
		ModelID:        uuid.NewString(),
		TrainedAt:      time.Now().UTC(),
		FeatureVersion: features.Version,
		Samples:        len(samples),
		TrainSamples:   len(trainIdx),
		TestSamples:    len(testIdx),
		LabelCounts:    counts,
		Synthetic:      opts.Synthetic,
		GridSearch:     opts.GridSearch,
	}
	if opts.Synthetic {
		report.Warning = syntheticWarning
	}

	var (
		members []member
		chosen  []Candidate
	)
	for _, cand := range DefaultCandidates(cfg) {
		var (
			cv  model.CVScore
			err error
		)
		if opts.GridSearch {
			cand, cv, err = GridSearch(ctx, Grid(cand.Name, cfg), trainX, trainY, opts.Folds, opts.Seed)
		} else {
			cv, err = CrossValidate(ctx, cand, trainX, trainY, opts.Folds, opts.Seed)
		}
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", op, cand.Name, err)
		}

		clf := cand.Factory()
		fitX, evalX := trainX, testX
		if cand.Scaled {
			fitX, evalX = scaledTrain, scaledTest
		}
		if err := clf.Fit(fitX, trainY); err != nil {
			return nil, fmt.Errorf("%s %s: %w", op, cand.Name, err)
		}

		holdout := accuracy(clf, evalX, testY)
		util.Info("  %s: holdout accuracy %.3f, cv %.3f (+/- %.3f)", cand.Name, holdout, cv.Mean, cv.Std*2)

		report.Classifiers = append(report.Classifiers, model.ClassifierReport{
			Name:            cand.Name,
			Params:          clf.Params(),
			HoldoutAccuracy: holdout,
			CV:              cv,
		})
		members = append(members, member{name: cand.Name, scaled: cand.Scaled, weight: e.weightOf(cand.Name), clf: clf})
		chosen = append(chosen, cand)
	}

	ensembleCV, err := crossValidate(ctx, trainX, trainY, opts.Folds, opts.Seed, e.ensembleFitter(chosen))
	if err != nil {
		return nil, fmt.Errorf("%s ensemble: %w", op, err)
	}

	st := &state{
		id:        report.ModelID,
		trainedAt: report.TrainedAt,
		synthetic: opts.Synthetic,
		samples:   len(samples),
		scaler:    scaler,
		members:   members,
	}

	correct := 0
	for i, x := range testX {
		p := predictWith(st, x)
		report.Confusion[testY[i]][p.Label]++
		if p.Label == testY[i] {
			correct++
		}
	}
	if len(testX) > 0 {
		report.HoldoutAccuracy = float64(correct) / float64(len(testX))
	}
	report.CV = ensembleCV
	report.PerClass = PerClassMetrics(report.Confusion)

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()

	util.Info("Ensemble trained: holdout accuracy %.3f, cv %.3f (+/- %.3f) (took %v)",
		report.HoldoutAccuracy, ensembleCV.Mean, ensembleCV.Std*2, time.Since(start))
	return report, nil
}

// ensembleFitter cross-validates the whole pipeline, refitting the scaler inside each fold
func (e *Ensemble) ensembleFitter(candidates []Candidate) fitter {
	return func(trainX [][]float64, trainY []int, testX [][]float64, testY []int) (float64, error) {
		st := &state{scaler: FitScaler(trainX)}
		scaled := st.scaler.TransformAll(trainX)
		for _, c := range candidates {
			clf := c.Factory()
			input := trainX
			if c.Scaled {
				input = scaled
			}
			if err := clf.Fit(input, trainY); err != nil {
				return 0, err
			}
			st.members = append(st.members, member{name: c.Name, scaled: c.Scaled, weight: e.weightOf(c.Name), clf: clf})
		}

		correct := 0
		for i, x := range testX {
			if predictWith(st, x).Label == testY[i] {
				correct++
			}
		}
		if len(testX) == 0 {
			return 0, nil
		}
		return float64(correct) / float64(len(testX)), nil
	}
}

// Predict labels one feature vector. It fails with ModelNotTrainedError
// before a successful Train or Load.
func (e *Ensemble) Predict(vector []float64) (model.Prediction, error) {
	e.mu.RLock()
	st := e.state
	e.mu.RUnlock()

	if st == nil {
		return model.Prediction{}, &model.ModelNotTrainedError{Operation: "predict"}
	}
	if len(vector) != features.Len {
		return model.Prediction{}, fmt.Errorf("predict: vector has %d features, expected %d", len(vector), features.Len)
	}
	return predictWith(st, vector), nil
}

func predictWith(st *state, x []float64) model.Prediction {
	scaled := st.scaler.Transform(x)

	var (
		sum       [2]float64
		weightSum float64
		breakdown = make(map[string]float64, len(st.members))
	)
	for _, m := range st.members {
		input := x
		if m.scaled {
			input = scaled
		}
		p := m.clf.PredictProba(input)
		breakdown[m.name] = p[1]
		sum[0] += m.weight * p[0]
		sum[1] += m.weight * p[1]
		weightSum += m.weight
	}

	probs := [2]float64{0.5, 0.5}
	if weightSum > 0 {
		probs = [2]float64{sum[0] / weightSum, sum[1] / weightSum}
	}
	label := argmax(probs)

	return model.Prediction{
		Label:         label,
		LabelName:     model.LabelName(label),
		Confidence:    max(probs[0], probs[1]),
		Probabilities: []float64{probs[0], probs[1]},
		Breakdown:     breakdown,
	}
}
