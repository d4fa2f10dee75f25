package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/service/features"
	"smell-bot/src/service/modelstore"
	"smell-bot/src/service/synthetic"
)

func testConfig() config.ClassifierConfig {
	cfg := config.DefaultConfig().Classifier
	cfg.Forest.NEstimators = 30
	return cfg
}

func trainSynthetic(t *testing.T, n int) (*Ensemble, *model.TrainingReport) {
	t.Helper()
	cfg := testConfig()
	e := NewEnsemble(cfg)
	opts := OptionsFromConfig(cfg)
	opts.Synthetic = true
	report, err := e.Train(context.Background(), synthetic.NewGenerator(7).Generate(n), opts)
	require.NoError(t, err)
	return e, report
}

func TestScaler(t *testing.T) {
	X := [][]float64{{1, 5}, {3, 5}, {5, 5}}
	s := FitScaler(X)
	assert.Equal(t, []float64{3, 5}, s.Mean)
	assert.InDelta(t, math.Sqrt(8.0/3.0), s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1])

	out := s.Transform([]float64{3, 7})
	assert.InDelta(t, 0, out[0], 1e-12)
	assert.InDelta(t, 2, out[1], 1e-12)
}

func TestStratifiedKFoldCoversEveryLabel(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	folds := StratifiedKFold(y, 5, 1)
	require.Len(t, folds, 5)

	seen := map[int]bool{}
	for _, fold := range folds {
		var ones int
		for _, i := range fold {
			assert.False(t, seen[i], "index %d in two folds", i)
			seen[i] = true
			ones += y[i]
		}
		assert.Equal(t, 1, ones)
	}
	assert.Len(t, seen, len(y))
}

func TestStratifiedSplit(t *testing.T) {
	y := make([]int, 100)
	for i := 0; i < 30; i++ {
		y[i] = 1
	}
	train, test := StratifiedSplit(y, 0.2, 42)
	assert.Len(t, train, 80)
	assert.Len(t, test, 20)

	ones := 0
	for _, i := range test {
		ones += y[i]
	}
	assert.Equal(t, 6, ones)
}

func TestTrainInsufficientData(t *testing.T) {
	cfg := testConfig()
	e := NewEnsemble(cfg)

	samples := synthetic.NewGenerator(1).Generate(40)
	var filtered []model.TrainingSample
	keptSmelly := false
	for _, s := range samples {
		if s.Label == model.LabelSmelly {
			if keptSmelly {
				continue
			}
			keptSmelly = true
		}
		filtered = append(filtered, s)
	}

	_, err := e.Train(context.Background(), filtered, OptionsFromConfig(cfg))
	var insufficient *model.InsufficientDataError
	require.True(t, errors.As(err, &insufficient), "got %v", err)
	assert.Equal(t, model.LabelSmelly, insufficient.Label)
	assert.Equal(t, 1, insufficient.Count)
	assert.Equal(t, 5, insufficient.Required)
	assert.False(t, e.Trained())
}

func TestPredictBeforeTrain(t *testing.T) {
	e := NewEnsemble(testConfig())
	_, err := e.Predict(make([]float64, features.Len))
	var notTrained *model.ModelNotTrainedError
	assert.True(t, errors.As(err, &notTrained))

	_, err = e.Marshal()
	assert.True(t, errors.As(err, &notTrained))
}

func TestTrainAndPredictCanonicalSmell(t *testing.T) {
	e, report := trainSynthetic(t, 500)

	assert.True(t, report.Synthetic)
	assert.NotEmpty(t, report.Warning)
	assert.Equal(t, 500, report.Samples)
	assert.Equal(t, 400, report.TrainSamples)
	assert.Equal(t, 100, report.TestSamples)
	assert.Len(t, report.Classifiers, 3)
	assert.Len(t, report.CV.Folds, 5)
	assert.Greater(t, report.HoldoutAccuracy, 0.7)
	require.Len(t, report.PerClass, 2)
	assert.Equal(t, "clean", report.PerClass[0].Label)
	assert.Equal(t, 100, report.PerClass[0].Support+report.PerClass[1].Support)

	p, err := e.Predict(synthetic.Vector(67, 8, 15, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, model.LabelSmelly, p.Label)
	assert.Equal(t, "smelly", p.LabelName)
	assert.GreaterOrEqual(t, p.Confidence, 0.5)
	assert.Len(t, p.Breakdown, 3)
	assert.InDelta(t, 1.0, p.Probabilities[0]+p.Probabilities[1], 1e-9)

	_, err = e.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, _ := trainSynthetic(t, 300)

	store, err := modelstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, e.Save(ctx, store, "smell-model"))

	loaded := NewEnsemble(testConfig())
	require.NoError(t, loaded.Load(ctx, store, "smell-model"))
	assert.Equal(t, e.ModelID(), loaded.ModelID())
	assert.True(t, loaded.Synthetic())

	heldOut := synthetic.NewGenerator(99).Generate(25)
	for _, s := range heldOut {
		want, err := e.Predict(s.Features)
		require.NoError(t, err)
		got, err := loaded.Predict(s.Features)
		require.NoError(t, err)
		assert.Equal(t, want, got, s.Description)
	}
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	ctx := context.Background()
	e, _ := trainSynthetic(t, 100)

	data, err := e.Marshal()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["format_version"] = "smell-ensemble/0"
	tampered, err := json.Marshal(raw)
	require.NoError(t, err)

	store := modelstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "old", tampered))
	require.NoError(t, store.Put(ctx, "garbage", []byte("not json")))

	fresh := NewEnsemble(testConfig())
	var formatErr *model.ModelFormatError

	err = fresh.Load(ctx, store, "old")
	require.True(t, errors.As(err, &formatErr), "got %v", err)
	assert.Equal(t, "old", formatErr.Handle)
	assert.False(t, fresh.Trained())

	err = fresh.Load(ctx, store, "garbage")
	assert.True(t, errors.As(err, &formatErr))

	err = fresh.Load(ctx, store, "absent")
	assert.True(t, errors.Is(err, modelstore.ErrNotFound))
}

func TestLoadRejectsTamperedModel(t *testing.T) {
	e, _ := trainSynthetic(t, 100)
	data, err := e.Marshal()
	require.NoError(t, err)

	tamper := map[string]func(raw map[string]any){
		"long support vector": func(raw map[string]any) {
			svm := raw["svm"].(map[string]any)
			vectors := svm["support_vectors"].([]any)
			vectors[0] = append(vectors[0].([]any), 1.0, 2.0)
		},
		"short support vector": func(raw map[string]any) {
			svm := raw["svm"].(map[string]any)
			vectors := svm["support_vectors"].([]any)
			vectors[0] = vectors[0].([]any)[:3]
		},
		"zero kernel gamma": func(raw map[string]any) {
			raw["svm"].(map[string]any)["kernel_gamma"] = 0.0
		},
		"zero scaler scale": func(raw map[string]any) {
			raw["scaler"].(map[string]any)["scale"].([]any)[4] = 0.0
		},
		"missing weights": func(raw map[string]any) {
			delete(raw, "weights")
		},
		"all-zero weights": func(raw map[string]any) {
			raw["weights"] = map[string]any{NameForest: 0.0, NameSVM: 0.0, NameLogistic: 0.0}
		},
		"negative weight": func(raw map[string]any) {
			raw["weights"] = map[string]any{NameForest: 2.0, NameSVM: -1.0, NameLogistic: 1.0}
		},
	}

	for name, mutate := range tamper {
		t.Run(name, func(t *testing.T) {
			var raw map[string]any
			require.NoError(t, json.Unmarshal(data, &raw))
			mutate(raw)
			tampered, err := json.Marshal(raw)
			require.NoError(t, err)

			fresh := NewEnsemble(testConfig())
			err = fresh.Unmarshal("tampered", tampered)
			var formatErr *model.ModelFormatError
			require.True(t, errors.As(err, &formatErr), "got %v", err)
			assert.False(t, fresh.Trained())
		})
	}
}

func TestPerClassMetrics(t *testing.T) {
	// 8 clean predicted clean, 2 clean predicted smelly, 1 smelly missed, 9 smelly caught
	got := PerClassMetrics([2][2]int{{8, 2}, {1, 9}})
	require.Len(t, got, 2)

	assert.Equal(t, "clean", got[0].Label)
	assert.Equal(t, 10, got[0].Support)
	assert.InDelta(t, 8.0/9.0, got[0].Precision, 1e-12)
	assert.InDelta(t, 0.8, got[0].Recall, 1e-12)

	assert.Equal(t, "smelly", got[1].Label)
	assert.InDelta(t, 9.0/11.0, got[1].Precision, 1e-12)
	assert.InDelta(t, 0.9, got[1].Recall, 1e-12)
	p, r := 9.0/11.0, 0.9
	assert.InDelta(t, 2*p*r/(p+r), got[1].F1, 1e-12)

	empty := PerClassMetrics([2][2]int{{5, 0}, {0, 0}})
	assert.Zero(t, empty[1].Precision)
	assert.Zero(t, empty[1].Recall)
	assert.Zero(t, empty[1].F1)
	assert.Equal(t, 1.0, empty[0].F1)
}

func TestFailedTrainKeepsPreviousModel(t *testing.T) {
	e, _ := trainSynthetic(t, 100)
	id := e.ModelID()

	_, err := e.Train(context.Background(), nil, OptionsFromConfig(testConfig()))
	require.Error(t, err)
	assert.Equal(t, id, e.ModelID())

	_, err = e.Predict(synthetic.Vector(10, 1, 1, 0, 0))
	assert.NoError(t, err)
}

type constClassifier struct {
	name string
	p1   float64
}

func (c constClassifier) Name() string                      { return c.name }
func (c constClassifier) Fit([][]float64, []int) error      { return nil }
func (c constClassifier) PredictProba([]float64) [2]float64 { return [2]float64{1 - c.p1, c.p1} }
func (c constClassifier) Params() map[string]any            { return nil }

func TestSoftVotingTieResolvesToClean(t *testing.T) {
	st := &state{
		scaler: &StandardScaler{Mean: make([]float64, features.Len), Scale: ones(features.Len)},
		members: []member{
			{name: "a", weight: 1, clf: constClassifier{name: "a", p1: 0.75}},
			{name: "b", weight: 1, clf: constClassifier{name: "b", p1: 0.25}},
		},
	}
	p := predictWith(st, make([]float64, features.Len))
	assert.Equal(t, model.LabelClean, p.Label)
	assert.Equal(t, 0.5, p.Confidence)
	assert.Equal(t, map[string]float64{"a": 0.75, "b": 0.25}, p.Breakdown)

	st.members[0].weight = 3
	p = predictWith(st, make([]float64, features.Len))
	assert.Equal(t, model.LabelSmelly, p.Label)
	assert.InDelta(t, 0.625, p.Confidence, 1e-12)
}

func TestGridSearchPicksACandidate(t *testing.T) {
	samples := synthetic.NewGenerator(3).Generate(60)
	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i], y[i] = s.Features, s.Label
	}

	grid := Grid(NameLogistic, testConfig())
	require.Len(t, grid, 6)

	best, score, err := GridSearch(context.Background(), grid, X, y, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, NameLogistic, best.Name)
	assert.Len(t, score.Folds, 3)
	assert.GreaterOrEqual(t, score.Mean, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = GridSearch(ctx, grid, X, y, 3, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
