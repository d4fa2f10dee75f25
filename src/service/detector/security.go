package detector

import (
	"fmt"

	"smell-bot/src/model"
)

var securitySuggestions = map[model.SecurityCategory]string{
	model.SecurityDangerousCall: "Replace dynamic execution with explicit, whitelisted operations",
	model.SecurityInjectionRisk: "Use prepared statements and validate or escape all external input",
	model.SecurityOther:         "Review the flagged lines against secure coding guidelines",
}

// SecurityDetector summarizes the parser's security findings per category
type SecurityDetector struct {
	BaseDetector
}

// NewSecurityDetector creates a new security detector
func NewSecurityDetector(base BaseDetector) *SecurityDetector {
	return &SecurityDetector{BaseDetector: base}
}

// Name returns the detector name
func (d *SecurityDetector) Name() string {
	return "security"
}

// Description returns the detector summary
func (d *SecurityDetector) Description() string {
	return "Dangerous calls, injection risks and other security patterns"
}

// Detect emits one issue per security category present in the unit
func (d *SecurityDetector) Detect(unit model.SourceUnit) []model.Issue {
	type group struct {
		count int
		worst model.SecurityFinding
	}
	groups := make(map[model.SecurityCategory]*group)

	for _, f := range unit.Security {
		g, ok := groups[f.Category]
		if !ok {
			groups[f.Category] = &group{count: 1, worst: f}
			continue
		}
		g.count++
		if f.Severity.Rank() > g.worst.Severity.Rank() {
			g.worst = f
		}
	}

	var issues []model.Issue
	for _, cat := range []model.SecurityCategory{model.SecurityDangerousCall, model.SecurityInjectionRisk, model.SecurityOther} {
		g, ok := groups[cat]
		if !ok {
			continue
		}
		issues = append(issues, model.Issue{
			Rule:       model.RuleSecurityPrefix + string(cat),
			Severity:   securityIssueSeverity(g.worst.Severity),
			Message:    fmt.Sprintf("%d %s findings, worst %s at line %d", g.count, cat, g.worst.Severity, g.worst.Line),
			Line:       g.worst.Line,
			Value:      float64(g.count),
			Count:      g.count,
			Suggestion: securitySuggestions[cat],
		})
	}
	return issues
}

func securityIssueSeverity(s model.Severity) model.IssueSeverity {
	switch s {
	case model.SeverityCritical, model.SeverityHigh:
		return model.IssueError
	case model.SeverityMedium:
		return model.IssueWarning
	default:
		return model.IssueInfo
	}
}
