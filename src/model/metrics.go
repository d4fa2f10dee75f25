package model

// Visibility is the declared access level of a method
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Valid reports whether v is one of the known visibilities
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityProtected, VisibilityPrivate:
		return true
	}
	return false
}

// SecurityCategory classifies a raw security-pattern hit
type SecurityCategory string

const (
	SecurityDangerousCall SecurityCategory = "dangerous-call"
	SecurityInjectionRisk SecurityCategory = "injection-risk"
	SecurityOther         SecurityCategory = "other"
)

// Valid reports whether c is one of the known categories
func (c SecurityCategory) Valid() bool {
	switch c {
	case SecurityDangerousCall, SecurityInjectionRisk, SecurityOther:
		return true
	}
	return false
}

// MethodMetric contains the structural metrics of a single method or free function
type MethodMetric struct {
	ClassName            string     `json:"class_name,omitempty" yaml:"class_name"`
	Name                 string     `json:"name" yaml:"name"`
	StartLine            int        `json:"start_line,omitempty" yaml:"start_line"`
	LineCount            int        `json:"line_count" yaml:"line_count"`
	ParameterCount       int        `json:"parameter_count" yaml:"parameter_count"`
	CyclomaticComplexity int        `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	CognitiveComplexity  int        `json:"cognitive_complexity" yaml:"cognitive_complexity"`
	Visibility           Visibility `json:"visibility" yaml:"visibility"`
	IsStatic             bool       `json:"is_static" yaml:"is_static"`
	HasReturnType        bool       `json:"has_return_type" yaml:"has_return_type"`
}

// QualifiedName returns Class.method, or just the method name for free functions
func (m MethodMetric) QualifiedName() string {
	if m.ClassName == "" {
		return m.Name
	}
	return m.ClassName + "." + m.Name
}

// ClassMetric contains the structural metrics of a single class
type ClassMetric struct {
	Name          string   `json:"name" yaml:"name"`
	StartLine     int      `json:"start_line,omitempty" yaml:"start_line"`
	LineCount     int      `json:"line_count" yaml:"line_count"`
	MethodCount   int      `json:"method_count" yaml:"method_count"`
	PropertyCount int      `json:"property_count" yaml:"property_count"`
	IsAbstract    bool     `json:"is_abstract" yaml:"is_abstract"`
	IsFinal       bool     `json:"is_final" yaml:"is_final"`
	Parent        string   `json:"parent,omitempty" yaml:"parent"`
	Interfaces    []string `json:"interfaces,omitempty" yaml:"interfaces"`
}

// SecurityFinding is a raw security-pattern hit reported by the parser
type SecurityFinding struct {
	Category SecurityCategory `json:"category" yaml:"category"`
	Severity Severity         `json:"severity" yaml:"severity"`
	Line     int              `json:"line" yaml:"line"`
}

// SourceUnit holds everything the parser reported for one file.
// Units with ParseOK == false carry no metrics and skip classification.
type SourceUnit struct {
	Path         string            `json:"path" yaml:"path"`
	Language     string            `json:"language,omitempty" yaml:"language"`
	LineCount    int               `json:"line_count" yaml:"line_count"`
	CommentRatio float64           `json:"comment_ratio" yaml:"comment_ratio"`
	Methods      []MethodMetric    `json:"methods" yaml:"methods"`
	Classes      []ClassMetric     `json:"classes" yaml:"classes"`
	Security     []SecurityFinding `json:"security" yaml:"security"`
	ParseOK      bool              `json:"parse_ok" yaml:"parse_ok"`
	ParseError   string            `json:"parse_error,omitempty" yaml:"parse_error"`
}

// Failed returns a copy of the unit marked as a parse failure with its metrics dropped
func (u SourceUnit) Failed(reason string) SourceUnit {
	return SourceUnit{
		Path:       u.Path,
		Language:   u.Language,
		ParseOK:    false,
		ParseError: reason,
	}
}
