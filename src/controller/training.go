package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/service/audit"
	"smell-bot/src/service/classifier"
	"smell-bot/src/service/codeapi"
	"smell-bot/src/service/features"
	"smell-bot/src/service/metrics"
	"smell-bot/src/service/modelstore"
	"smell-bot/src/service/synthetic"
	"smell-bot/src/util"
)

// TrainingController trains, persists and audits classifier models
type TrainingController struct {
	cfg   *config.Config
	store modelstore.Store
}

// NewTrainingController creates a training controller on the configured model store
func NewTrainingController(cfg *config.Config) (*TrainingController, error) {
	store, err := modelstore.New(cfg.ModelStore)
	if err != nil {
		return nil, fmt.Errorf("opening model store: %w", err)
	}
	return &TrainingController{cfg: cfg, store: store}, nil
}

// TrainRequest selects the training data and options
type TrainRequest struct {
	// DataPath is a labeled sample file; empty means synthetic data
	DataPath string
	// Samples overrides the configured synthetic sample count
	Samples    int
	GridSearch bool
	// Handle overrides the configured model handle
	Handle string
}

// TrainResult is the outcome of a training run
type TrainResult struct {
	Report   *model.TrainingReport
	Handle   string
	Ensemble *classifier.Ensemble
}

// Train fits a new ensemble and saves it. The stored model is only replaced
// when training succeeds.
func (c *TrainingController) Train(ctx context.Context, req TrainRequest) (*TrainResult, error) {
	samples, isSynthetic, err := c.samples(req)
	if err != nil {
		return nil, err
	}

	ensemble := classifier.NewEnsemble(c.cfg.Classifier)
	opts := classifier.OptionsFromConfig(c.cfg.Classifier)
	opts.GridSearch = opts.GridSearch || req.GridSearch
	opts.Synthetic = isSynthetic

	report, err := ensemble.Train(ctx, samples, opts)
	if err != nil {
		util.Error("Training failed: %v", err)
		return nil, err
	}
	if report.Warning != "" {
		util.Warn("%s", report.Warning)
	}

	handle := req.Handle
	if handle == "" {
		handle = c.cfg.ModelStore.Handle
	}
	if err := ensemble.Save(ctx, c.store, handle); err != nil {
		return nil, err
	}

	if c.cfg.Audit.Enabled {
		if err := c.record(report, samples); err != nil {
			// the model is already saved; a missing audit entry is not fatal
			util.Error("Failed to record training run %s: %v", report.ModelID, err)
		}
	}

	return &TrainResult{Report: report, Handle: handle, Ensemble: ensemble}, nil
}

func (c *TrainingController) record(report *model.TrainingReport, samples []model.TrainingSample) error {
	log, err := audit.Open(c.cfg.Audit.Path)
	if err != nil {
		return err
	}
	defer log.Close()
	return log.Record(report, samples)
}

func (c *TrainingController) samples(req TrainRequest) ([]model.TrainingSample, bool, error) {
	if req.DataPath != "" {
		samples, err := LoadSamples(req.DataPath)
		if err != nil {
			return nil, false, err
		}
		util.Info("Loaded %d labeled samples from %s", len(samples), req.DataPath)
		return samples, false, nil
	}

	n := req.Samples
	if n <= 0 {
		n = c.cfg.Classifier.Synthetic.Samples
	}
	util.Info("Generating %d synthetic samples (seed %d)", n, c.cfg.Classifier.Synthetic.Seed)
	return synthetic.NewGenerator(c.cfg.Classifier.Synthetic.Seed).Generate(n), true, nil
}

// Models lists the handles in the model store
func (c *TrainingController) Models(ctx context.Context) ([]string, error) {
	return c.store.List(ctx)
}

// LoadEnsemble loads the configured model. A missing model is not an error:
// the returned ensemble is simply untrained.
func LoadEnsemble(ctx context.Context, cfg *config.Config, handle string) (*classifier.Ensemble, error) {
	ensemble := classifier.NewEnsemble(cfg.Classifier)
	store, err := modelstore.New(cfg.ModelStore)
	if err != nil {
		return nil, fmt.Errorf("opening model store: %w", err)
	}
	if handle == "" {
		handle = cfg.ModelStore.Handle
	}

	err = ensemble.Load(ctx, store, handle)
	if errors.Is(err, modelstore.ErrNotFound) {
		util.Warn("No model stored under %q; run `train` first", handle)
		return ensemble, nil
	}
	if err != nil {
		return nil, err
	}
	if ensemble.Synthetic() {
		util.Warn("Model %s was trained on synthetic data", ensemble.ModelID())
	}
	return ensemble, nil
}

// labeledRecord is one entry of a labeled sample file: either a raw feature
// vector or a unit record that is vectorized on load
type labeledRecord struct {
	Label       int                 `json:"label" yaml:"label"`
	Description string              `json:"description,omitempty" yaml:"description"`
	Features    []float64           `json:"features,omitempty" yaml:"features"`
	Unit        *codeapi.UnitRecord `json:"unit,omitempty" yaml:"unit"`
}

type labeledFile struct {
	Samples []labeledRecord `json:"samples" yaml:"samples"`
}

// LoadSamples reads labeled training samples from a JSON or YAML file
func LoadSamples(path string) ([]model.TrainingSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}

	var file labeledFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing samples %s: %w", filepath.Base(path), err)
	}

	samples := make([]model.TrainingSample, 0, len(file.Samples))
	for i, rec := range file.Samples {
		s := model.TrainingSample{Label: rec.Label, Description: rec.Description}
		switch {
		case rec.Unit != nil:
			unit := metrics.ToSourceUnit(*rec.Unit)
			if !unit.ParseOK {
				return nil, fmt.Errorf("sample %d: %s", i, unit.ParseError)
			}
			s.Features = features.Extract(unit)
			if s.Description == "" {
				s.Description = unit.Path
			}
		case len(rec.Features) == features.Len:
			s.Features = rec.Features
		default:
			return nil, fmt.Errorf("sample %d: expected %d features or a unit, got %d features", i, features.Len, len(rec.Features))
		}
		samples = append(samples, s)
	}
	return samples, nil
}
