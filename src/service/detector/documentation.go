package detector

import (
	"fmt"

	"smell-bot/src/model"
)

// DocumentationDetector flags files whose comment ratio is below the threshold
type DocumentationDetector struct {
	BaseDetector
}

// NewDocumentationDetector creates a new documentation detector
func NewDocumentationDetector(base BaseDetector) *DocumentationDetector {
	return &DocumentationDetector{BaseDetector: base}
}

// Name returns the detector name
func (d *DocumentationDetector) Name() string {
	return "documentation"
}

// Description returns the detector summary
func (d *DocumentationDetector) Description() string {
	return "Comment ratio of the file"
}

// Detect runs the comment ratio check. Empty files are skipped.
func (d *DocumentationDetector) Detect(unit model.SourceUnit) []model.Issue {
	threshold := d.Thresholds.LowCommentRatio
	if unit.LineCount == 0 || unit.CommentRatio >= threshold {
		return nil
	}
	return []model.Issue{{
		Rule:       model.RuleLowCommentRatio,
		Severity:   model.IssueInfo,
		Message:    fmt.Sprintf("comment ratio = %.2f (threshold %.2f)", unit.CommentRatio, threshold),
		Value:      unit.CommentRatio,
		Threshold:  threshold,
		Count:      1,
		Suggestion: "Document the purpose, parameters and return values of public methods",
	}}
}
