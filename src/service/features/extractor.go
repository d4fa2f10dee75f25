// Package features turns the structural metrics of one source unit into the
// fixed-length numeric vector consumed by the classifier ensemble.
package features

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"smell-bot/src/model"
)

// Version identifies the field layout below. Persisted models record it and
// refuse to load against a different layout.
const Version = "v1"

// Vector field indices
const (
	MeanMethodLines = iota
	MaxMethodLines
	MeanClassMethods
	MeanClassProperties
	MeanMethodParams
	MaxMethodParams
	MeanCyclomatic
	MaxCyclomatic
	MeanCognitive
	MaxCognitive
	PublicRatio
	StaticRatio
	ReturnTypeRatio
	ExtendsRatio
	MeanInterfaces
	SecurityTotal
	SecurityCritical
	SecurityHigh
	SecurityDangerousCall
	SecurityInjectionRisk

	Len
)

// Names lists the vector fields in order
var Names = [Len]string{
	"mean_method_lines",
	"max_method_lines",
	"mean_class_methods",
	"mean_class_properties",
	"mean_method_params",
	"max_method_params",
	"mean_cyclomatic",
	"max_cyclomatic",
	"mean_cognitive",
	"max_cognitive",
	"public_ratio",
	"static_ratio",
	"return_type_ratio",
	"extends_ratio",
	"mean_interfaces",
	"security_total",
	"security_critical",
	"security_high",
	"security_dangerous_call",
	"security_injection_risk",
}

// Extract computes the feature vector of a unit. It is pure and never
// returns NaN: empty method or class collections yield zeros.
func Extract(unit model.SourceUnit) []float64 {
	v := make([]float64, Len)

	if n := len(unit.Methods); n > 0 {
		lines := make([]float64, n)
		params := make([]float64, n)
		cyclo := make([]float64, n)
		cog := make([]float64, n)
		var public, static, returns float64

		for i, m := range unit.Methods {
			lines[i] = float64(m.LineCount)
			params[i] = float64(m.ParameterCount)
			cyclo[i] = float64(m.CyclomaticComplexity)
			cog[i] = float64(m.CognitiveComplexity)
			if m.Visibility == model.VisibilityPublic {
				public++
			}
			if m.IsStatic {
				static++
			}
			if m.HasReturnType {
				returns++
			}
		}

		v[MeanMethodLines] = stat.Mean(lines, nil)
		v[MaxMethodLines] = floats.Max(lines)
		v[MeanMethodParams] = stat.Mean(params, nil)
		v[MaxMethodParams] = floats.Max(params)
		v[MeanCyclomatic] = stat.Mean(cyclo, nil)
		v[MaxCyclomatic] = floats.Max(cyclo)
		v[MeanCognitive] = stat.Mean(cog, nil)
		v[MaxCognitive] = floats.Max(cog)
		v[PublicRatio] = public / float64(n)
		v[StaticRatio] = static / float64(n)
		v[ReturnTypeRatio] = returns / float64(n)
	}

	if n := len(unit.Classes); n > 0 {
		methods := make([]float64, n)
		props := make([]float64, n)
		ifaces := make([]float64, n)
		var extends float64

		for i, c := range unit.Classes {
			methods[i] = float64(c.MethodCount)
			props[i] = float64(c.PropertyCount)
			ifaces[i] = float64(len(c.Interfaces))
			if c.Parent != "" {
				extends++
			}
		}

		v[MeanClassMethods] = stat.Mean(methods, nil)
		v[MeanClassProperties] = stat.Mean(props, nil)
		v[MeanInterfaces] = stat.Mean(ifaces, nil)
		v[ExtendsRatio] = extends / float64(n)
	}

	for _, f := range unit.Security {
		v[SecurityTotal]++
		switch f.Severity {
		case model.SeverityCritical:
			v[SecurityCritical]++
		case model.SeverityHigh:
			v[SecurityHigh]++
		}
		switch f.Category {
		case model.SecurityDangerousCall:
			v[SecurityDangerousCall]++
		case model.SecurityInjectionRisk:
			v[SecurityInjectionRisk]++
		}
	}

	return v
}

// Named returns the vector as a name-keyed map, for reports and debugging
func Named(v []float64) map[string]float64 {
	out := make(map[string]float64, len(v))
	for i, x := range v {
		if i < Len {
			out[Names[i]] = x
		}
	}
	return out
}
