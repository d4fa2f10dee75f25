package config

import (
	"fmt"
	"math"

	"smell-bot/src/model"
)

// Threshold keys accepted in loose threshold maps
const (
	KeyLongMethodLines         = "long_method_lines"
	KeyLongClassLines          = "long_class_lines"
	KeyLargeParameterCount     = "large_parameter_count"
	KeyComplexMethodComplexity = "complex_method_complexity"
	KeyLowCommentRatio         = "low_comment_ratio"
)

// ThresholdConfig holds the rule engine thresholds. It is passed by value.
type ThresholdConfig struct {
	LongMethodLines         int     `yaml:"long_method_lines"`
	LongClassLines          int     `yaml:"long_class_lines"`
	LargeParameterCount     int     `yaml:"large_parameter_count"`
	ComplexMethodComplexity int     `yaml:"complex_method_complexity"`
	LowCommentRatio         float64 `yaml:"low_comment_ratio"`
}

// DefaultThresholds returns the built-in rule thresholds
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		LongMethodLines:         50,
		LongClassLines:          500,
		LargeParameterCount:     5,
		ComplexMethodComplexity: 10,
		LowCommentRatio:         0.10,
	}
}

// Validate rejects negative thresholds and ratios outside [0, 1], NaN included
func (t ThresholdConfig) Validate() error {
	ints := []struct {
		key string
		val int
	}{
		{KeyLongMethodLines, t.LongMethodLines},
		{KeyLongClassLines, t.LongClassLines},
		{KeyLargeParameterCount, t.LargeParameterCount},
		{KeyComplexMethodComplexity, t.ComplexMethodComplexity},
	}
	for _, i := range ints {
		if i.val < 0 {
			return &model.ThresholdConfigError{Key: i.key, Value: i.val, Reason: "must not be negative"}
		}
	}
	if math.IsNaN(t.LowCommentRatio) || t.LowCommentRatio < 0 || t.LowCommentRatio > 1 {
		return &model.ThresholdConfigError{Key: KeyLowCommentRatio, Value: t.LowCommentRatio, Reason: "must be within [0, 1]"}
	}
	return nil
}

// ThresholdsFromMap builds a ThresholdConfig from a loose key/value map.
// Missing keys keep their defaults and unknown keys are ignored.
func ThresholdsFromMap(values map[string]any) (ThresholdConfig, error) {
	t := DefaultThresholds()

	intFields := map[string]*int{
		KeyLongMethodLines:         &t.LongMethodLines,
		KeyLongClassLines:          &t.LongClassLines,
		KeyLargeParameterCount:     &t.LargeParameterCount,
		KeyComplexMethodComplexity: &t.ComplexMethodComplexity,
	}

	for key, raw := range values {
		if key == KeyLowCommentRatio {
			f, ok := toFloat(raw)
			if !ok {
				return ThresholdConfig{}, &model.ThresholdConfigError{Key: key, Value: raw, Reason: "not a number"}
			}
			t.LowCommentRatio = f
			continue
		}

		dst, known := intFields[key]
		if !known {
			continue
		}
		f, ok := toFloat(raw)
		if !ok {
			return ThresholdConfig{}, &model.ThresholdConfigError{Key: key, Value: raw, Reason: "not a number"}
		}
		if f != float64(int(f)) {
			return ThresholdConfig{}, &model.ThresholdConfigError{Key: key, Value: raw, Reason: "must be a whole number"}
		}
		*dst = int(f)
	}

	if err := t.Validate(); err != nil {
		return ThresholdConfig{}, err
	}
	return t, nil
}

// AsMap returns the thresholds keyed by their configuration names
func (t ThresholdConfig) AsMap() map[string]any {
	return map[string]any{
		KeyLongMethodLines:         t.LongMethodLines,
		KeyLongClassLines:          t.LongClassLines,
		KeyLargeParameterCount:     t.LargeParameterCount,
		KeyComplexMethodComplexity: t.ComplexMethodComplexity,
		KeyLowCommentRatio:         t.LowCommentRatio,
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Validate checks the whole configuration for values that cannot be used
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Classifier.Folds < 2 {
		return fmt.Errorf("classifier.folds must be at least 2, got %d", c.Classifier.Folds)
	}
	if c.Classifier.TestFraction <= 0 || c.Classifier.TestFraction >= 1 {
		return fmt.Errorf("classifier.test_fraction must be within (0, 1), got %v", c.Classifier.TestFraction)
	}
	w := c.Classifier.Weights
	for _, v := range []float64{w.Forest, w.SVM, w.Logistic} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("classifier.weights must be finite and non-negative, got %+v", w)
		}
	}
	if w.Forest+w.SVM+w.Logistic <= 0 {
		return fmt.Errorf("classifier.weights must not all be zero")
	}
	if math.IsNaN(c.Consistency.VarianceThreshold) || c.Consistency.VarianceThreshold < 0 {
		return fmt.Errorf("consistency.variance_threshold must not be negative, got %v", c.Consistency.VarianceThreshold)
	}
	switch c.Ingestion.Source {
	case "file", "codeapi":
	default:
		return fmt.Errorf("ingestion.source must be file or codeapi, got %q", c.Ingestion.Source)
	}
	switch c.ModelStore.Backend {
	case "file", "s3":
	default:
		return fmt.Errorf("model_store.backend must be file or s3, got %q", c.ModelStore.Backend)
	}
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = 1
	}
	return nil
}
