package detector

import (
	"smell-bot/src/model"
)

// ComplexityDetector flags methods whose cyclomatic complexity exceeds the threshold
type ComplexityDetector struct {
	BaseDetector
}

// NewComplexityDetector creates a new complexity detector
func NewComplexityDetector(base BaseDetector) *ComplexityDetector {
	return &ComplexityDetector{BaseDetector: base}
}

// Name returns the detector name
func (d *ComplexityDetector) Name() string {
	return "complexity"
}

// Description returns the detector summary
func (d *ComplexityDetector) Description() string {
	return "Cyclomatic complexity of methods"
}

// Detect runs complexity detection
func (d *ComplexityDetector) Detect(unit model.SourceUnit) []model.Issue {
	threshold := d.Thresholds.ComplexMethodComplexity
	var complex worst

	for _, m := range unit.Methods {
		if d.Exclusions.ExcludesMethod(m.ClassName, m.Name) {
			continue
		}
		if m.CyclomaticComplexity > threshold {
			complex.observe(m.CyclomaticComplexity, m.StartLine, m.QualifiedName())
		}
	}

	if complex.count == 0 {
		return nil
	}
	return []model.Issue{
		summarize(model.RuleComplexMethod, "cyclomatic complexity", "method", complex,
			threshold, "Reduce nesting with early returns and extract complex conditions into named methods"),
	}
}
