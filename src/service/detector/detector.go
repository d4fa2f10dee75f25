package detector

import (
	"fmt"
	"strings"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/util"
)

// Detector is the interface for all rule detectors. Detectors are stateless
// apart from their configuration and are safe for concurrent use.
type Detector interface {
	// Name returns the detector name
	Name() string

	// Description returns a one-line summary for listings
	Description() string

	// Detect evaluates one parsed source unit and returns summarized issues
	Detect(unit model.SourceUnit) []model.Issue
}

// BaseDetector provides common functionality for detectors
type BaseDetector struct {
	Thresholds config.ThresholdConfig
	Exclusions *util.ExclusionMatcher
}

// NewBaseDetector creates a new base detector
func NewBaseDetector(thresholds config.ThresholdConfig, exclusions *util.ExclusionMatcher) BaseDetector {
	if exclusions == nil {
		exclusions = util.NewExclusionMatcher(config.ExclusionsConfig{})
	}
	return BaseDetector{
		Thresholds: thresholds,
		Exclusions: exclusions,
	}
}

// worst tracks the most extreme offender of one rule within a unit
type worst struct {
	value  int
	line   int
	entity string
	count  int
}

func (w *worst) observe(value, line int, entity string) {
	w.count++
	if w.count == 1 || value > w.value {
		w.value = value
		w.line = line
		w.entity = entity
	}
}

// magnitudeSeverity escalates to error once the value is more than twice the threshold
func magnitudeSeverity(value, threshold int) model.IssueSeverity {
	if value > threshold*2 {
		return model.IssueError
	}
	return model.IssueWarning
}

// summarize builds the single issue carrying the worst observed value of a rule
func summarize(rule, metric, noun string, w worst, threshold int, suggestion string) model.Issue {
	return model.Issue{
		Rule:     rule,
		Severity: magnitudeSeverity(w.value, threshold),
		Message: fmt.Sprintf("max %s = %d in %s (threshold %d, %s over threshold)",
			metric, w.value, w.entity, threshold, plural(w.count, noun)),
		Line:       w.line,
		Value:      float64(w.value),
		Threshold:  float64(threshold),
		Count:      w.count,
		Suggestion: suggestion,
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if strings.HasSuffix(noun, "s") {
		return fmt.Sprintf("%d %ses", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
