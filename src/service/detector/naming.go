package detector

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"smell-bot/src/model"
)

var (
	classNamePattern  = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
	methodNamePattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
)

// NamingDetector checks PascalCase class names and camelCase method names
type NamingDetector struct {
	BaseDetector
}

// NewNamingDetector creates a new naming detector
func NewNamingDetector(base BaseDetector) *NamingDetector {
	return &NamingDetector{BaseDetector: base}
}

// Name returns the detector name
func (d *NamingDetector) Name() string {
	return "naming"
}

// Description returns the detector summary
func (d *NamingDetector) Description() string {
	return "PascalCase classes and camelCase methods"
}

// Detect runs naming convention checks
func (d *NamingDetector) Detect(unit model.SourceUnit) []model.Issue {
	var (
		violations int
		first      string
		firstLine  int
		suggestion string
	)
	note := func(line int, bad, fixed, kind string) {
		violations++
		if violations == 1 {
			first = fmt.Sprintf("%s %s", kind, bad)
			firstLine = line
			suggestion = fmt.Sprintf("Rename %s %s to %s", kind, bad, fixed)
		}
	}

	for _, c := range unit.Classes {
		if c.Name == "" || d.Exclusions.ExcludesClass(c.Name) {
			continue
		}
		if !classNamePattern.MatchString(c.Name) {
			note(c.StartLine, c.Name, toPascalCase(c.Name), "class")
		}
	}

	for _, m := range unit.Methods {
		if m.Name == "" || strings.HasPrefix(m.Name, "__") || d.Exclusions.ExcludesMethod(m.ClassName, m.Name) {
			continue
		}
		if !methodNamePattern.MatchString(m.Name) {
			note(m.StartLine, m.Name, toCamelCase(m.Name), "method")
		}
	}

	if violations == 0 {
		return nil
	}
	return []model.Issue{{
		Rule:       model.RuleNaming,
		Severity:   model.IssueInfo,
		Message:    fmt.Sprintf("%d naming convention violations (first: %s)", violations, first),
		Line:       firstLine,
		Value:      float64(violations),
		Count:      violations,
		Suggestion: suggestion,
	}}
}

func splitWords(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
}

func toPascalCase(name string) string {
	var sb strings.Builder
	for _, w := range splitWords(name) {
		r := []rune(w)
		sb.WriteRune(unicode.ToUpper(r[0]))
		sb.WriteString(string(r[1:]))
	}
	return sb.String()
}

func toCamelCase(name string) string {
	p := []rune(toPascalCase(name))
	if len(p) == 0 {
		return name
	}
	p[0] = unicode.ToLower(p[0])
	return string(p)
}
