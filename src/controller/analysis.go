package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/service/aggregate"
	"smell-bot/src/service/classifier"
	"smell-bot/src/service/codeapi"
	"smell-bot/src/service/consistency"
	"smell-bot/src/service/detector"
	"smell-bot/src/service/features"
	"smell-bot/src/service/metrics"
	"smell-bot/src/util"
)

// AnalysisController orchestrates the smell analysis pipeline
type AnalysisController struct {
	cfg        *config.Config
	ensemble   *classifier.Ensemble
	exclusions *util.ExclusionMatcher
	provider   *metrics.Provider
}

// NewAnalysisController creates a new analysis controller. An untrained
// ensemble makes every result rules only.
func NewAnalysisController(cfg *config.Config, ensemble *classifier.Ensemble) *AnalysisController {
	exclusions := util.NewExclusionMatcher(cfg.Exclusions)

	var client *codeapi.Client
	if cfg.Ingestion.Source == "codeapi" {
		client = codeapi.NewClient(cfg.CodeAPI)
		util.Debug("CodeAPI client initialized (endpoint: %s)", cfg.CodeAPI.URL)
	}

	return &AnalysisController{
		cfg:        cfg,
		ensemble:   ensemble,
		exclusions: exclusions,
		provider:   metrics.NewProvider(cfg, client, exclusions),
	}
}

// AnalyzeRequest selects what to analyze
type AnalyzeRequest struct {
	// MetricsFile overrides the configured source with a metrics dump
	MetricsFile string
}

// unitOutcome is the per-unit work product of the worker pool
type unitOutcome struct {
	issues []model.Issue
	pred   *model.Prediction
}

// Load returns the units named by the request
func (c *AnalysisController) Load(ctx context.Context, req AnalyzeRequest) ([]model.SourceUnit, string, error) {
	if req.MetricsFile != "" {
		units, err := c.provider.FileUnits(req.MetricsFile)
		return units, "file:" + req.MetricsFile, err
	}
	units, err := c.provider.SourceUnits(ctx)
	return units, c.provider.Source(), err
}

// Analyze loads the requested units and runs the full pipeline on them
func (c *AnalysisController) Analyze(ctx context.Context, req AnalyzeRequest) (*model.AnalysisReport, error) {
	units, source, err := c.Load(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.AnalyzeUnits(ctx, source, units)
}

// AnalyzeUnits runs rules, feature extraction and prediction for every unit
// concurrently, then consistency analysis and aggregation. Results keep the
// order of units.
func (c *AnalysisController) AnalyzeUnits(ctx context.Context, source string, units []model.SourceUnit) (*model.AnalysisReport, error) {
	startTime := time.Now()
	classify := c.ensemble != nil && c.ensemble.Trained()
	util.Info("Starting analysis of %d units from %s (classifier: %v)", len(units), source, classify)
	if !classify {
		util.Warn("No trained model available, results are rules only")
	}

	runner := detector.NewRunner(c.cfg.Thresholds, c.exclusions)
	outcomes := make([]unitOutcome, len(units))

	workers := max(c.cfg.Concurrency.Workers, 1)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	util.Debug("Analyzing with %d workers", workers)

	for i := range units {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			outcomes[i] = c.analyzeUnit(runner, units[i], classify)
		}(i)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		util.Error("Analysis cancelled: %v", err)
		return nil, err
	}

	findings := consistency.NewAnalyzer(c.cfg.Consistency, c.exclusions).Analyze(units)
	util.Debug("Consistency analysis produced %d findings", len(findings))

	results := make([]model.DetectionResult, len(units))
	for i, unit := range units {
		results[i] = c.trimSuggestions(aggregate.Aggregate(unit, outcomes[i].issues, outcomes[i].pred, findings))
	}

	report := &model.AnalysisReport{
		RunID:       uuid.NewString(),
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Summary:     aggregate.Summarize(results, c.cfg.Output.TopN),
		Results:     results,
		Consistency: findings,
	}
	if report.Consistency == nil {
		report.Consistency = []model.ConsistencyFinding{}
	}
	if classify {
		report.ModelID = c.ensemble.ModelID()
	}

	util.Info("Analysis complete: %d files, %d smelly, %d clean, %d parse errors (took %v)",
		report.Summary.TotalFiles, report.Summary.Smelly, report.Summary.Clean,
		report.Summary.ParseErrors, time.Since(startTime))

	return report, nil
}

func (c *AnalysisController) analyzeUnit(runner *detector.Runner, unit model.SourceUnit, classify bool) unitOutcome {
	out := unitOutcome{issues: runner.Evaluate(unit)}
	if !unit.ParseOK || !classify {
		return out
	}

	pred, err := c.ensemble.Predict(features.Extract(unit))
	if err != nil {
		var notTrained *model.ModelNotTrainedError
		if !errors.As(err, &notTrained) {
			util.Warn("Prediction failed for %s: %v", unit.Path, err)
		}
		return out
	}
	out.pred = &pred
	return out
}

func (c *AnalysisController) trimSuggestions(r model.DetectionResult) model.DetectionResult {
	if !c.cfg.Output.IncludeSuggestions {
		r.Suggestions = nil
		return r
	}
	if limit := c.cfg.Output.MaxSuggestions; limit > 0 && len(r.Suggestions) > limit {
		r.Suggestions = r.Suggestions[:limit]
	}
	return r
}

// UnitFeatures is the feature vector of one unit
type UnitFeatures struct {
	Path     string             `json:"path"`
	Version  string             `json:"feature_version"`
	Vector   []float64          `json:"vector,omitempty"`
	Named    map[string]float64 `json:"features,omitempty"`
	ParseErr string             `json:"parse_error,omitempty"`
}

// Features extracts the feature vectors of the requested units
func (c *AnalysisController) Features(ctx context.Context, req AnalyzeRequest) ([]UnitFeatures, error) {
	units, _, err := c.Load(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]UnitFeatures, len(units))
	for i, unit := range units {
		out[i] = UnitFeatures{Path: unit.Path, Version: features.Version}
		if !unit.ParseOK {
			out[i].ParseErr = unit.ParseError
			continue
		}
		vec := features.Extract(unit)
		out[i].Vector = vec
		out[i].Named = features.Named(vec)
	}
	return out, nil
}

// UnitPrediction is the classifier output for one unit
type UnitPrediction struct {
	Path       string            `json:"path"`
	Prediction *model.Prediction `json:"prediction,omitempty"`
	ParseErr   string            `json:"parse_error,omitempty"`
}

// Predict classifies the requested units without running rules
func (c *AnalysisController) Predict(ctx context.Context, req AnalyzeRequest) ([]UnitPrediction, error) {
	if c.ensemble == nil || !c.ensemble.Trained() {
		return nil, &model.ModelNotTrainedError{Operation: "predict"}
	}
	units, _, err := c.Load(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]UnitPrediction, len(units))
	for i, unit := range units {
		out[i].Path = unit.Path
		if !unit.ParseOK {
			out[i].ParseErr = unit.ParseError
			continue
		}
		pred, err := c.ensemble.Predict(features.Extract(unit))
		if err != nil {
			return nil, err
		}
		out[i].Prediction = &pred
	}
	return out, nil
}
