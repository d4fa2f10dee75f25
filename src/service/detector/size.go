package detector

import (
	"smell-bot/src/model"
)

// SizeDetector flags long methods, long classes and long parameter lists
type SizeDetector struct {
	BaseDetector
}

// NewSizeDetector creates a new size detector
func NewSizeDetector(base BaseDetector) *SizeDetector {
	return &SizeDetector{BaseDetector: base}
}

// Name returns the detector name
func (d *SizeDetector) Name() string {
	return "size"
}

// Description returns the detector summary
func (d *SizeDetector) Description() string {
	return "Long methods, long classes, long parameter lists"
}

// Detect runs size detection
func (d *SizeDetector) Detect(unit model.SourceUnit) []model.Issue {
	th := d.Thresholds
	var longMethod, longParams, longClass worst

	for _, m := range unit.Methods {
		if d.Exclusions.ExcludesMethod(m.ClassName, m.Name) {
			continue
		}
		if m.LineCount > th.LongMethodLines {
			longMethod.observe(m.LineCount, m.StartLine, m.QualifiedName())
		}
		if m.ParameterCount > th.LargeParameterCount {
			longParams.observe(m.ParameterCount, m.StartLine, m.QualifiedName())
		}
	}

	for _, c := range unit.Classes {
		if d.Exclusions.ExcludesClass(c.Name) {
			continue
		}
		if c.LineCount > th.LongClassLines {
			longClass.observe(c.LineCount, c.StartLine, c.Name)
		}
	}

	var issues []model.Issue
	if longMethod.count > 0 {
		issues = append(issues, summarize(model.RuleLongMethod, "method lines", "method", longMethod,
			th.LongMethodLines, "Break the method into smaller single-purpose methods (Extract Method)"))
	}
	if longClass.count > 0 {
		issues = append(issues, summarize(model.RuleLongClass, "class lines", "class", longClass,
			th.LongClassLines, "Split the class by responsibility (Extract Class)"))
	}
	if longParams.count > 0 {
		issues = append(issues, summarize(model.RuleLongParameterList, "method parameters", "method", longParams,
			th.LargeParameterCount, "Introduce a parameter object or builder for related arguments"))
	}
	return issues
}
