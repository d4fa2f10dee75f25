package model

import "time"

// Severity is the severity of security findings and consistency findings
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities from low (0) to critical (3); unknown values rank -1
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// IssueSeverity is the severity of a rule-engine issue
type IssueSeverity string

const (
	IssueError   IssueSeverity = "error"
	IssueWarning IssueSeverity = "warning"
	IssueInfo    IssueSeverity = "info"
)

// Rule identifiers emitted by the rule engine
const (
	RuleLongMethod        = "long_method"
	RuleLongClass         = "long_class"
	RuleLongParameterList = "long_parameter_list"
	RuleComplexMethod     = "complex_method"
	RuleNaming            = "naming"
	RuleLowCommentRatio   = "low_comment_ratio"
	RuleSecurityPrefix    = "security/"
)

// Issue is one summarized rule violation for a source unit
type Issue struct {
	Rule       string        `json:"rule"`
	Severity   IssueSeverity `json:"severity"`
	Message    string        `json:"message"`
	Line       int           `json:"line,omitempty"`
	Value      float64       `json:"value"`
	Threshold  float64       `json:"threshold,omitempty"`
	Count      int           `json:"count"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// MethodRef identifies a method within the analyzed codebase
type MethodRef struct {
	Path      string `json:"path"`
	ClassName string `json:"class_name,omitempty"`
	Method    string `json:"method"`
}

// ConsistencyKind is the heuristic that produced a consistency finding
type ConsistencyKind string

const (
	ConsistencyComplexityVariance ConsistencyKind = "complexity_variance"
	ConsistencyParameterSpread    ConsistencyKind = "parameter_spread"
)

// ConsistencyFinding flags a business-pattern group whose members look inconsistent
type ConsistencyFinding struct {
	Pattern     string          `json:"pattern"`
	Kind        ConsistencyKind `json:"kind"`
	Description string          `json:"description"`
	Methods     []MethodRef     `json:"methods"`
	Severity    Severity        `json:"severity"`
	Value       float64         `json:"value"`
}

// References reports whether the finding names a method in the given file
func (f ConsistencyFinding) References(path string) bool {
	for _, m := range f.Methods {
		if m.Path == path {
			return true
		}
	}
	return false
}

// ResultStatus describes how far a source unit got through the pipeline
type ResultStatus string

const (
	StatusClassified ResultStatus = "classified"
	StatusRulesOnly  ResultStatus = "rules_only"
	StatusParseError ResultStatus = "parse_error"
)

// SmellType names the dominant smell category of a file
type SmellType string

const (
	SmellClean             SmellType = "clean"
	SmellSecurity          SmellType = "security_issues"
	SmellLongMethod        SmellType = "long_method"
	SmellComplexMethod     SmellType = "complex_method"
	SmellLongParameterList SmellType = "long_parameter_list"
	SmellLargeClass        SmellType = "large_class"
	SmellNaming            SmellType = "naming_issues"
	SmellLowCommentRatio   SmellType = "low_comment_ratio"
	SmellCodeQuality       SmellType = "code_quality_issues"
)

// DetectionResult is the per-file outcome of an analysis run
type DetectionResult struct {
	Path        string               `json:"path"`
	Status      ResultStatus         `json:"status"`
	Label       int                  `json:"label"`
	LabelName   string               `json:"label_name,omitempty"`
	Confidence  float64              `json:"confidence"`
	Breakdown   map[string]float64   `json:"breakdown,omitempty"`
	SmellType   SmellType            `json:"smell_type,omitempty"`
	Issues      []Issue              `json:"issues"`
	Suggestions []string             `json:"suggestions,omitempty"`
	Consistency []ConsistencyFinding `json:"consistency,omitempty"`
	ParseError  string               `json:"parse_error,omitempty"`
}

// Summary contains project-level statistics over all detection results
type Summary struct {
	TotalFiles         int                   `json:"total_files"`
	Smelly             int                   `json:"smelly"`
	Clean              int                   `json:"clean"`
	ParseErrors        int                   `json:"parse_errors"`
	Unclassified       int                   `json:"unclassified"`
	MeanConfidence     float64               `json:"mean_confidence"`
	SmellyRatio        float64               `json:"smelly_ratio"`
	IssuesBySeverity   map[IssueSeverity]int `json:"issues_by_severity"`
	SmellTypes         map[SmellType]int     `json:"smell_types"`
	ConsistencyFinding int                   `json:"consistency_findings"`
	Top                []DetectionResult     `json:"top"`
}

// AnalysisReport is the complete output of one analysis run
type AnalysisReport struct {
	RunID       string               `json:"run_id"`
	Source      string               `json:"source"`
	ModelID     string               `json:"model_id,omitempty"`
	GeneratedAt time.Time            `json:"generated_at"`
	Summary     Summary              `json:"summary"`
	Results     []DetectionResult    `json:"results"`
	Consistency []ConsistencyFinding `json:"consistency"`
}
