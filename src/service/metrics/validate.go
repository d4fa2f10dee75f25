package metrics

import (
	"fmt"
	"math"

	"smell-bot/src/model"
	"smell-bot/src/service/codeapi"
)

// ToSourceUnit validates a wire record and converts it. Invalid records become
// parse failures that keep the path and reason.
func ToSourceUnit(rec codeapi.UnitRecord) model.SourceUnit {
	unit, err := convert(rec)
	if err != nil {
		return model.SourceUnit{Path: rec.Path, Language: rec.Language}.Failed(err.Error())
	}
	return unit
}

func convert(rec codeapi.UnitRecord) (model.SourceUnit, error) {
	fail := func(format string, args ...any) (model.SourceUnit, error) {
		return model.SourceUnit{}, &model.ParseFailure{Path: rec.Path, Reason: fmt.Sprintf(format, args...)}
	}

	if rec.Error != "" {
		return fail("%s", rec.Error)
	}
	if rec.Path == "" {
		return fail("missing path")
	}
	if rec.LineCount < 0 {
		return fail("negative line count %d", rec.LineCount)
	}
	if math.IsNaN(rec.CommentRatio) || rec.CommentRatio < 0 || rec.CommentRatio > 1 {
		return fail("comment ratio %v outside [0, 1]", rec.CommentRatio)
	}

	unit := model.SourceUnit{
		Path:         rec.Path,
		Language:     rec.Language,
		LineCount:    rec.LineCount,
		CommentRatio: rec.CommentRatio,
		ParseOK:      true,
	}

	for _, m := range rec.Methods {
		name := m.Name
		if m.ClassName != "" {
			name = m.ClassName + "." + m.Name
		}
		switch {
		case m.Name == "":
			return fail("method without a name")
		case m.LineCount < 0 || m.ParameterCount < 0 || m.CognitiveComplexity < 0:
			return fail("negative metric in %s", name)
		case m.CyclomaticComplexity < 1:
			return fail("cyclomatic complexity %d < 1 in %s", m.CyclomaticComplexity, name)
		}
		visibility := model.Visibility(m.Visibility)
		if visibility == "" {
			visibility = model.VisibilityPublic
		}
		if !visibility.Valid() {
			return fail("unknown visibility %q in %s", m.Visibility, name)
		}
		unit.Methods = append(unit.Methods, model.MethodMetric{
			ClassName:            m.ClassName,
			Name:                 m.Name,
			StartLine:            m.StartLine,
			LineCount:            m.LineCount,
			ParameterCount:       m.ParameterCount,
			CyclomaticComplexity: m.CyclomaticComplexity,
			CognitiveComplexity:  m.CognitiveComplexity,
			Visibility:           visibility,
			IsStatic:             m.IsStatic,
			HasReturnType:        m.HasReturnType,
		})
	}

	for _, c := range rec.Classes {
		if c.Name == "" {
			return fail("class without a name")
		}
		if c.LineCount < 0 || c.MethodCount < 0 || c.PropertyCount < 0 {
			return fail("negative metric in class %s", c.Name)
		}
		unit.Classes = append(unit.Classes, model.ClassMetric{
			Name:          c.Name,
			StartLine:     c.StartLine,
			LineCount:     c.LineCount,
			MethodCount:   c.MethodCount,
			PropertyCount: c.PropertyCount,
			IsAbstract:    c.IsAbstract,
			IsFinal:       c.IsFinal,
			Parent:        c.Parent,
			Interfaces:    c.Interfaces,
		})
	}

	for _, s := range rec.Security {
		category := model.SecurityCategory(s.Category)
		if category == "" {
			category = model.SecurityOther
		}
		if !category.Valid() {
			return fail("unknown security category %q", s.Category)
		}
		severity := model.Severity(s.Severity)
		if !severity.Valid() {
			return fail("unknown security severity %q", s.Severity)
		}
		unit.Security = append(unit.Security, model.SecurityFinding{Category: category, Severity: severity, Line: s.Line})
	}

	return unit, nil
}
