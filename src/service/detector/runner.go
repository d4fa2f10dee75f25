package detector

import (
	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/util"
)

// Runner evaluates every registered detector against a source unit
type Runner struct {
	detectors []Detector
}

// NewRunner creates a runner with all detectors registered
func NewRunner(thresholds config.ThresholdConfig, exclusions *util.ExclusionMatcher) *Runner {
	base := NewBaseDetector(thresholds, exclusions)

	detectors := []Detector{
		NewSizeDetector(base),
		NewComplexityDetector(base),
		NewNamingDetector(base),
		NewDocumentationDetector(base),
		NewSecurityDetector(base),
	}

	util.Debug("Detector runner initialized with %d detectors", len(detectors))
	return &Runner{detectors: detectors}
}

// Evaluate runs the rule engine with the given thresholds and no exclusions
func Evaluate(unit model.SourceUnit, thresholds config.ThresholdConfig) []model.Issue {
	return NewRunner(thresholds, nil).Evaluate(unit)
}

// Evaluate returns the issues of all detectors in registration order.
// Units that failed to parse produce no issues.
func (r *Runner) Evaluate(unit model.SourceUnit) []model.Issue {
	if !unit.ParseOK {
		return nil
	}

	var issues []model.Issue
	for _, d := range r.detectors {
		found := d.Detect(unit)
		if len(found) > 0 {
			util.Debug("Detector %s found %d issues in %s", d.Name(), len(found), unit.Path)
		}
		issues = append(issues, found...)
	}
	return issues
}

// GetDetector returns a detector by name
func (r *Runner) GetDetector(name string) Detector {
	for _, d := range r.detectors {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Detectors returns all registered detectors
func (r *Runner) Detectors() []Detector {
	return r.detectors
}
