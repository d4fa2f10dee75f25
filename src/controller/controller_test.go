package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/service/audit"
	"smell-bot/src/service/features"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ModelStore.Dir = filepath.Join(t.TempDir(), "models")
	cfg.Output.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Output.Formats = []string{"json", "markdown", "sarif"}
	cfg.Classifier.Forest.NEstimators = 20
	cfg.Classifier.Synthetic.Samples = 120
	return cfg
}

func testUnits() []model.SourceUnit {
	long := model.SourceUnit{
		Path:         "src/UserService.php",
		Language:     "php",
		LineCount:    300,
		CommentRatio: 0.05,
		ParseOK:      true,
		Methods: []model.MethodMetric{{
			ClassName:            "UserService",
			Name:                 "processUserRegistration",
			LineCount:            158,
			ParameterCount:       7,
			CyclomaticComplexity: 45,
			CognitiveComplexity:  60,
			Visibility:           model.VisibilityPublic,
		}},
		Classes: []model.ClassMetric{{Name: "UserService", LineCount: 290, MethodCount: 1}},
	}
	clean := model.SourceUnit{
		Path:         "src/Money.php",
		Language:     "php",
		LineCount:    30,
		CommentRatio: 0.3,
		ParseOK:      true,
		Methods: []model.MethodMetric{{
			ClassName:            "Money",
			Name:                 "add",
			LineCount:            5,
			ParameterCount:       1,
			CyclomaticComplexity: 1,
			CognitiveComplexity:  0,
			Visibility:           model.VisibilityPublic,
			HasReturnType:        true,
		}},
		Classes: []model.ClassMetric{{Name: "Money", LineCount: 28, MethodCount: 1}},
	}
	broken := model.SourceUnit{Path: "src/Broken.php"}.Failed("unexpected end of file")
	return []model.SourceUnit{long, clean, broken}
}

func TestAnalyzeRulesOnlyWithoutModel(t *testing.T) {
	cfg := testConfig(t)
	ctrl := NewAnalysisController(cfg, nil)

	report, err := ctrl.AnalyzeUnits(context.Background(), "test", testUnits())
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Equal(t, "src/UserService.php", report.Results[0].Path)
	assert.Equal(t, model.StatusRulesOnly, report.Results[0].Status)
	assert.NotEmpty(t, report.Results[0].Issues)
	assert.Equal(t, model.StatusRulesOnly, report.Results[1].Status)
	assert.Equal(t, model.StatusParseError, report.Results[2].Status)

	assert.Equal(t, 2, report.Summary.Unclassified)
	assert.Equal(t, 1, report.Summary.ParseErrors)
	assert.Empty(t, report.ModelID)
	assert.NotEmpty(t, report.RunID)
}

func TestTrainThenAnalyze(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Audit.Enabled = true
	cfg.Audit.Path = filepath.Join(t.TempDir(), "audit.db")

	trainer, err := NewTrainingController(cfg)
	require.NoError(t, err)

	result, err := trainer.Train(ctx, TrainRequest{})
	require.NoError(t, err)
	assert.True(t, result.Report.Synthetic)
	assert.Equal(t, 120, result.Report.Samples)
	assert.Equal(t, cfg.ModelStore.Handle, result.Handle)

	handles, err := trainer.Models(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{cfg.ModelStore.Handle}, handles)

	log, err := audit.Open(cfg.Audit.Path)
	require.NoError(t, err)
	runs, err := log.Runs(5)
	require.NoError(t, err)
	require.NoError(t, log.Close())
	require.Len(t, runs, 1)
	assert.Equal(t, result.Report.ModelID, runs[0].ID)

	ensemble, err := LoadEnsemble(ctx, cfg, "")
	require.NoError(t, err)
	require.True(t, ensemble.Trained())
	assert.Equal(t, result.Report.ModelID, ensemble.ModelID())

	ctrl := NewAnalysisController(cfg, ensemble)
	report, err := ctrl.AnalyzeUnits(ctx, "test", testUnits())
	require.NoError(t, err)
	assert.Equal(t, ensemble.ModelID(), report.ModelID)
	assert.Equal(t, model.StatusClassified, report.Results[0].Status)
	assert.Equal(t, model.StatusClassified, report.Results[1].Status)
	assert.Len(t, report.Results[0].Breakdown, 3)
	assert.Equal(t, 2, report.Summary.Smelly+report.Summary.Clean)

	paths, err := NewReportController(cfg).GenerateReports(report)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestLoadEnsembleMissingModel(t *testing.T) {
	ensemble, err := LoadEnsemble(context.Background(), testConfig(t), "nothing-here")
	require.NoError(t, err)
	assert.False(t, ensemble.Trained())

	ctrl := NewAnalysisController(testConfig(t), ensemble)
	_, err = ctrl.Predict(context.Background(), AnalyzeRequest{MetricsFile: "unused.json"})
	var notTrained *model.ModelNotTrainedError
	assert.True(t, errors.As(err, &notTrained))
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalysisController(testConfig(t), nil).AnalyzeUnits(ctx, "test", testUnits())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.yaml")
	vector := make([]float64, features.Len)
	vector[0] = 12

	content := `
samples:
  - label: 1
    unit:
      path: src/Big.php
      line_count: 200
      methods:
        - name: run
          line_count: 150
          cyclomatic_complexity: 20
  - label: 0
    description: tiny
    features: [` + joinFloats(vector) + `]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	samples, err := LoadSamples(path)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 1, samples[0].Label)
	assert.Equal(t, "src/Big.php", samples[0].Description)
	assert.Len(t, samples[0].Features, features.Len)
	assert.Equal(t, vector, samples[1].Features)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"samples": [{"label": 1, "features": [1, 2]}]}`), 0o644))
	_, err = LoadSamples(bad)
	assert.Error(t, err)
}

func TestFeaturesFromMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"units": [
		{"path": "a.php", "line_count": 20, "methods": [{"name": "go", "line_count": 10, "cyclomatic_complexity": 2}]},
		{"path": "b.php", "error": "boom"}
	]}`), 0o644))

	rows, err := NewAnalysisController(testConfig(t), nil).Features(context.Background(), AnalyzeRequest{MetricsFile: path})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].Vector, features.Len)
	assert.Equal(t, features.Version, rows[0].Version)
	assert.Contains(t, rows[1].ParseErr, "boom")
}

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}
