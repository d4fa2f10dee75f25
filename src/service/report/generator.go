package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/util"
)

// Generator renders analysis reports in various formats
type Generator struct {
	cfg   config.OutputConfig
	agent config.AgentConfig
}

// NewGenerator creates a new report generator
func NewGenerator(cfg config.OutputConfig, agent config.AgentConfig) *Generator {
	return &Generator{cfg: cfg, agent: agent}
}

// Extension returns the file extension used for a format
func Extension(format string) string {
	switch format {
	case "markdown", "md":
		return "md"
	case "sarif":
		return "sarif"
	default:
		return "json"
	}
}

// Generate renders the report in the specified format
func (g *Generator) Generate(report *model.AnalysisReport, format string) (string, error) {
	util.Debug("Generating report in %s format (%d results)", format, len(report.Results))
	switch format {
	case "json":
		return g.generateJSON(report)
	case "markdown", "md":
		return g.generateMarkdown(report)
	case "sarif":
		return g.generateSARIF(report)
	default:
		util.Warn("Unsupported report format requested: %s", format)
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (g *Generator) generateJSON(report *model.AnalysisReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *Generator) generateMarkdown(report *model.AnalysisReport) (string, error) {
	var sb strings.Builder
	s := report.Summary

	sb.WriteString("# Code Smell Report\n\n")
	fmt.Fprintf(&sb, "**Source:** %s\n", report.Source)
	if report.ModelID != "" {
		fmt.Fprintf(&sb, "**Model:** %s\n", report.ModelID)
	}
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Files:** %d\n", s.TotalFiles)
	fmt.Fprintf(&sb, "- **Smelly:** %d (%.1f%% of classified)\n", s.Smelly, s.SmellyRatio*100)
	fmt.Fprintf(&sb, "- **Clean:** %d\n", s.Clean)
	if s.Unclassified > 0 {
		fmt.Fprintf(&sb, "- **Rules only:** %d\n", s.Unclassified)
	}
	if s.ParseErrors > 0 {
		fmt.Fprintf(&sb, "- **Parse errors:** %d\n", s.ParseErrors)
	}
	fmt.Fprintf(&sb, "- **Mean confidence:** %.2f\n", s.MeanConfidence)
	fmt.Fprintf(&sb, "- **Consistency findings:** %d\n\n", s.ConsistencyFinding)

	sb.WriteString("### Issues by Severity\n\n")
	sb.WriteString("| Severity | Count |\n")
	sb.WriteString("|----------|-------|\n")
	for _, sev := range []model.IssueSeverity{model.IssueError, model.IssueWarning, model.IssueInfo} {
		fmt.Fprintf(&sb, "| %s | %d |\n", sev, s.IssuesBySeverity[sev])
	}
	sb.WriteString("\n")

	if len(s.SmellTypes) > 0 {
		types := make([]string, 0, len(s.SmellTypes))
		for t := range s.SmellTypes {
			types = append(types, string(t))
		}
		sort.Strings(types)

		sb.WriteString("### Smell Types\n\n")
		sb.WriteString("| Smell | Files |\n")
		sb.WriteString("|-------|-------|\n")
		for _, t := range types {
			fmt.Fprintf(&sb, "| %s | %d |\n", t, s.SmellTypes[model.SmellType(t)])
		}
		sb.WriteString("\n")
	}

	if len(s.Top) > 0 {
		sb.WriteString("### Top Files\n\n")
		sb.WriteString("| File | Label | Smell | Confidence | Issues |\n")
		sb.WriteString("|------|-------|-------|------------|--------|\n")
		for _, r := range s.Top {
			fmt.Fprintf(&sb, "| %s | %s | %s | %.2f | %d |\n", r.Path, labelOf(r), r.SmellType, r.Confidence, len(r.Issues))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Files\n\n")
	for _, r := range report.Results {
		if r.Status == model.StatusParseError {
			fmt.Fprintf(&sb, "### [PARSE ERROR] `%s`\n\n- %s\n\n", r.Path, r.ParseError)
			continue
		}
		if len(r.Issues) == 0 && r.Label != model.LabelSmelly {
			continue
		}

		fmt.Fprintf(&sb, "### [%s] `%s`\n\n", strings.ToUpper(labelOf(r)), r.Path)
		if r.SmellType != "" {
			fmt.Fprintf(&sb, "- **Smell:** %s\n", r.SmellType)
		}
		if r.Status == model.StatusClassified {
			fmt.Fprintf(&sb, "- **Confidence:** %.2f (%s)\n", r.Confidence, breakdown(r.Breakdown))
		} else {
			fmt.Fprintf(&sb, "- **Confidence:** %.2f (rules)\n", r.Confidence)
		}
		for _, issue := range r.Issues {
			fmt.Fprintf(&sb, "- %s **%s**: %s", severityTag(issue.Severity), issue.Rule, issue.Message)
			if issue.Line > 0 {
				fmt.Fprintf(&sb, " (line %d)", issue.Line)
			}
			sb.WriteString("\n")
		}
		if g.cfg.IncludeSuggestions && len(r.Suggestions) > 0 {
			sb.WriteString("\n**Suggestions:**\n")
			for _, sug := range r.Suggestions {
				fmt.Fprintf(&sb, "- %s\n", sug)
			}
		}
		sb.WriteString("\n")
	}

	if len(report.Consistency) > 0 {
		sb.WriteString("## Business Logic Consistency\n\n")
		for _, f := range report.Consistency {
			fmt.Fprintf(&sb, "- **%s** [%s] %s\n", f.Pattern, f.Severity, f.Description)
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func (g *Generator) generateSARIF(report *model.AnalysisReport) (string, error) {
	sarif := map[string]any{
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"version": "2.1.0",
		"runs": []map[string]any{
			{
				"tool": map[string]any{
					"driver": map[string]any{
						"name":    g.agent.Name,
						"version": g.agent.Version,
						"rules":   g.buildSARIFRules(report.Results),
					},
				},
				"automationDetails": map[string]any{"id": report.RunID},
				"results":           g.buildSARIFResults(report.Results),
			},
		},
	}

	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *Generator) buildSARIFRules(results []model.DetectionResult) []map[string]any {
	ruleMap := make(map[string]bool)
	rules := []map[string]any{}

	for _, r := range results {
		for _, issue := range r.Issues {
			if ruleMap[issue.Rule] {
				continue
			}
			ruleMap[issue.Rule] = true

			rule := map[string]any{
				"id":   issue.Rule,
				"name": issue.Rule,
				"shortDescription": map[string]any{
					"text": issue.Rule,
				},
				"defaultConfiguration": map[string]any{
					"level": sarifLevel(issue.Severity),
				},
			}
			if issue.Suggestion != "" {
				rule["help"] = map[string]any{"text": issue.Suggestion}
			}
			rules = append(rules, rule)
		}
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i]["id"].(string) < rules[j]["id"].(string) })
	return rules
}

func (g *Generator) buildSARIFResults(results []model.DetectionResult) []map[string]any {
	out := []map[string]any{}

	for _, r := range results {
		for _, issue := range r.Issues {
			region := map[string]any{}
			if issue.Line > 0 {
				region["startLine"] = issue.Line
			}
			result := map[string]any{
				"ruleId":  issue.Rule,
				"level":   sarifLevel(issue.Severity),
				"message": map[string]any{"text": issue.Message},
				"locations": []map[string]any{
					{
						"physicalLocation": map[string]any{
							"artifactLocation": map[string]any{"uri": r.Path},
							"region":           region,
						},
					},
				},
				"properties": map[string]any{
					"value":      issue.Value,
					"count":      issue.Count,
					"smell_type": r.SmellType,
				},
			}

			if issue.Suggestion != "" {
				result["fixes"] = []map[string]any{
					{
						"description": map[string]any{"text": issue.Suggestion},
					},
				}
			}

			out = append(out, result)
		}
	}

	return out
}

func labelOf(r model.DetectionResult) string {
	switch r.Status {
	case model.StatusRulesOnly:
		return "rules only"
	case model.StatusParseError:
		return "parse error"
	}
	return r.LabelName
}

func breakdown(b map[string]float64) string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %.2f", name, b[name])
	}
	return strings.Join(parts, ", ")
}

func severityTag(s model.IssueSeverity) string {
	switch s {
	case model.IssueError:
		return "[ERROR]"
	case model.IssueWarning:
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

func sarifLevel(s model.IssueSeverity) string {
	switch s {
	case model.IssueError:
		return "error"
	case model.IssueWarning:
		return "warning"
	default:
		return "note"
	}
}
