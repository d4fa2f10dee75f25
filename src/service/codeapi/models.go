package codeapi

// UnitsRequest asks CodeAPI for the parsed metrics of a project
type UnitsRequest struct {
	Project string   `json:"project"`
	Paths   []string `json:"paths,omitempty"`
}

// UnitsResponse carries one record per parsed source file. The same document
// shape is used for metrics dumps on disk.
type UnitsResponse struct {
	Project string       `json:"project,omitempty" yaml:"project,omitempty"`
	Units   []UnitRecord `json:"units" yaml:"units"`
}

// UnitRecord is the wire form of a parsed source file
type UnitRecord struct {
	Path         string           `json:"path" yaml:"path"`
	Language     string           `json:"language" yaml:"language"`
	LineCount    int              `json:"line_count" yaml:"line_count"`
	CommentRatio float64          `json:"comment_ratio" yaml:"comment_ratio"`
	Methods      []MethodRecord   `json:"methods" yaml:"methods"`
	Classes      []ClassRecord    `json:"classes" yaml:"classes"`
	Security     []SecurityRecord `json:"security" yaml:"security"`
	// Error is set by the parser when the file could not be parsed
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// MethodRecord is the wire form of a method or free function
type MethodRecord struct {
	ClassName            string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	Name                 string `json:"name" yaml:"name"`
	StartLine            int    `json:"start_line" yaml:"start_line"`
	LineCount            int    `json:"line_count" yaml:"line_count"`
	ParameterCount       int    `json:"parameter_count" yaml:"parameter_count"`
	CyclomaticComplexity int    `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	CognitiveComplexity  int    `json:"cognitive_complexity" yaml:"cognitive_complexity"`
	Visibility           string `json:"visibility" yaml:"visibility"`
	IsStatic             bool   `json:"is_static" yaml:"is_static"`
	HasReturnType        bool   `json:"has_return_type" yaml:"has_return_type"`
}

// ClassRecord is the wire form of a class
type ClassRecord struct {
	Name          string   `json:"name" yaml:"name"`
	StartLine     int      `json:"start_line" yaml:"start_line"`
	LineCount     int      `json:"line_count" yaml:"line_count"`
	MethodCount   int      `json:"method_count" yaml:"method_count"`
	PropertyCount int      `json:"property_count" yaml:"property_count"`
	IsAbstract    bool     `json:"is_abstract" yaml:"is_abstract"`
	IsFinal       bool     `json:"is_final" yaml:"is_final"`
	Parent        string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Interfaces    []string `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
}

// SecurityRecord is the wire form of a security pattern hit
type SecurityRecord struct {
	Category string `json:"category" yaml:"category"`
	Severity string `json:"severity" yaml:"severity"`
	Line     int    `json:"line" yaml:"line"`
}
