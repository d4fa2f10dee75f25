package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"smell-bot/src/model"
	"smell-bot/src/service/features"
	"smell-bot/src/service/modelstore"
	"smell-bot/src/util"
)

// FormatVersion tags every persisted model. Loading any other version fails.
const FormatVersion = "smell-ensemble/1"

type envelope struct {
	FormatVersion  string             `json:"format_version"`
	FeatureVersion string             `json:"feature_version"`
	FeatureCount   int                `json:"feature_count"`
	ModelID        string             `json:"model_id"`
	TrainedAt      time.Time          `json:"trained_at"`
	Synthetic      bool               `json:"synthetic"`
	Samples        int                `json:"samples"`
	Labels         []string           `json:"labels"`
	Weights        map[string]float64 `json:"weights"`
	Scaler         *StandardScaler    `json:"scaler"`
	Forest         *RandomForest      `json:"random_forest"`
	SVM            *SVM               `json:"svm"`
	Logistic       *Logistic          `json:"logistic_regression"`
}

// Marshal serializes the current model
func (e *Ensemble) Marshal() ([]byte, error) {
	e.mu.RLock()
	st := e.state
	e.mu.RUnlock()
	if st == nil {
		return nil, &model.ModelNotTrainedError{Operation: "save"}
	}

	env := envelope{
		FormatVersion:  FormatVersion,
		FeatureVersion: features.Version,
		FeatureCount:   features.Len,
		ModelID:        st.id,
		TrainedAt:      st.trainedAt,
		Synthetic:      st.synthetic,
		Samples:        st.samples,
		Labels:         []string{model.LabelName(model.LabelClean), model.LabelName(model.LabelSmelly)},
		Weights:        make(map[string]float64, len(st.members)),
		Scaler:         st.scaler,
	}
	for _, m := range st.members {
		env.Weights[m.name] = m.weight
		switch c := m.clf.(type) {
		case *RandomForest:
			env.Forest = c
		case *SVM:
			env.SVM = c
		case *Logistic:
			env.Logistic = c
		default:
			return nil, fmt.Errorf("save: unsupported classifier %s", m.name)
		}
	}
	return json.Marshal(env)
}

// Unmarshal replaces the current model with a serialized one. Nothing is
// replaced unless the whole envelope is valid.
func (e *Ensemble) Unmarshal(handle string, data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &model.ModelFormatError{Handle: handle, Reason: "decoding: " + err.Error()}
	}
	if env.FormatVersion != FormatVersion {
		return &model.ModelFormatError{Handle: handle, Reason: fmt.Sprintf("format version %q, expected %q", env.FormatVersion, FormatVersion)}
	}
	if env.FeatureVersion != features.Version || env.FeatureCount != features.Len {
		return &model.ModelFormatError{Handle: handle, Reason: fmt.Sprintf("feature layout %s/%d, expected %s/%d",
			env.FeatureVersion, env.FeatureCount, features.Version, features.Len)}
	}
	if env.Scaler == nil || len(env.Scaler.Mean) != features.Len || len(env.Scaler.Scale) != features.Len {
		return &model.ModelFormatError{Handle: handle, Reason: "missing or malformed scaler"}
	}
	if env.Forest == nil || env.SVM == nil || env.Logistic == nil {
		return &model.ModelFormatError{Handle: handle, Reason: "missing base classifier"}
	}
	if len(env.Logistic.Weights) != features.Len {
		return &model.ModelFormatError{Handle: handle, Reason: "malformed logistic regression weights"}
	}
	for _, check := range []func(*envelope) error{validateScaler, validateSVM, validateWeights} {
		if err := check(&env); err != nil {
			return &model.ModelFormatError{Handle: handle, Reason: err.Error()}
		}
	}
	if err := validateTrees(env.Forest); err != nil {
		return &model.ModelFormatError{Handle: handle, Reason: err.Error()}
	}

	st := &state{
		id:        env.ModelID,
		trainedAt: env.TrainedAt,
		synthetic: env.Synthetic,
		samples:   env.Samples,
		scaler:    env.Scaler,
		members: []member{
			{name: NameForest, scaled: false, weight: env.Weights[NameForest], clf: env.Forest},
			{name: NameSVM, scaled: true, weight: env.Weights[NameSVM], clf: env.SVM},
			{name: NameLogistic, scaled: true, weight: env.Weights[NameLogistic], clf: env.Logistic},
		},
	}

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
	return nil
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func validateScaler(env *envelope) error {
	for j, sc := range env.Scaler.Scale {
		if !finite(sc, env.Scaler.Mean[j]) || sc <= 0 {
			return fmt.Errorf("scaler feature %d has mean %v scale %v", j, env.Scaler.Mean[j], sc)
		}
	}
	return nil
}

func validateSVM(env *envelope) error {
	s := env.SVM
	if len(s.SupportVectors) != len(s.Coef) {
		return fmt.Errorf("svm has %d support vectors but %d coefficients", len(s.SupportVectors), len(s.Coef))
	}
	for i, sv := range s.SupportVectors {
		if len(sv) != features.Len {
			return fmt.Errorf("svm support vector %d has %d features, expected %d", i, len(sv), features.Len)
		}
		if !finite(sv...) || !finite(s.Coef[i]) {
			return fmt.Errorf("svm support vector %d is not finite", i)
		}
	}
	if !finite(s.KernelGamma, s.PlattA, s.PlattB, s.Bias) || s.KernelGamma <= 0 {
		return fmt.Errorf("svm kernel or calibration parameters are invalid")
	}
	if !finite(env.Logistic.Weights...) || !finite(env.Logistic.Bias) {
		return fmt.Errorf("logistic regression weights are not finite")
	}
	return nil
}

// validateWeights requires a non-negative finite weight per member and a positive sum
func validateWeights(env *envelope) error {
	var sum float64
	for _, name := range []string{NameForest, NameSVM, NameLogistic} {
		w, ok := env.Weights[name]
		if !ok || !finite(w) || w < 0 {
			return fmt.Errorf("voting weight for %s is missing or invalid", name)
		}
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("voting weights sum to zero")
	}
	return nil
}

func validateTrees(f *RandomForest) error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("random forest has no trees")
	}
	for t, tree := range f.Trees {
		if tree == nil || len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", t)
		}
		for i, n := range tree.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= features.Len ||
				n.Left <= i || n.Left >= len(tree.Nodes) || n.Right <= i || n.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d is malformed", t, i)
			}
		}
	}
	return nil
}

// Save persists the current model under handle
func (e *Ensemble) Save(ctx context.Context, store modelstore.Store, handle string) error {
	data, err := e.Marshal()
	if err != nil {
		return err
	}
	if err := store.Put(ctx, handle, data); err != nil {
		return fmt.Errorf("saving model %q: %w", handle, err)
	}
	util.Info("Model %s saved as %q (%d bytes)", e.ModelID(), handle, len(data))
	return nil
}

// Load replaces the current model with the one stored under handle
func (e *Ensemble) Load(ctx context.Context, store modelstore.Store, handle string) error {
	data, err := store.Get(ctx, handle)
	if err != nil {
		return fmt.Errorf("loading model %q: %w", handle, err)
	}
	if err := e.Unmarshal(handle, data); err != nil {
		return err
	}
	util.Info("Model %s loaded from %q", e.ModelID(), handle)
	return nil
}

// Synthetic reports whether the current model was trained on generated data
func (e *Ensemble) Synthetic() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state != nil && e.state.synthetic
}
