// Package consistency correlates metrics of methods that implement the same
// business concern across files and flags groups that look inconsistent.
package consistency

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/util"
)

type pattern struct {
	name        string
	description string
	re          *regexp.Regexp
}

// member is one method matched by a business pattern
type member struct {
	ref       model.MethodRef
	cognitive int
	params    int
}

// Analyzer groups methods by business pattern and compares their metrics
type Analyzer struct {
	cfg        config.ConsistencyConfig
	patterns   []pattern
	exclusions *util.ExclusionMatcher
}

// NewAnalyzer compiles the configured patterns. Invalid patterns are skipped.
func NewAnalyzer(cfg config.ConsistencyConfig, exclusions *util.ExclusionMatcher) *Analyzer {
	if exclusions == nil {
		exclusions = util.NewExclusionMatcher(config.ExclusionsConfig{})
	}
	a := &Analyzer{cfg: cfg, exclusions: exclusions}
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			util.Warn("Skipping business pattern %q: %v", p.Name, err)
			continue
		}
		a.patterns = append(a.patterns, pattern{name: p.Name, description: p.Description, re: re})
	}
	return a
}

// Patterns returns the names of the usable patterns in evaluation order
func (a *Analyzer) Patterns() []string {
	names := make([]string, len(a.patterns))
	for i, p := range a.patterns {
		names[i] = p.name
	}
	return names
}

// Analyze returns the findings for all pattern groups with at least two
// members. Findings are ordered by pattern, then kind.
func (a *Analyzer) Analyze(units []model.SourceUnit) []model.ConsistencyFinding {
	if !a.cfg.Enabled {
		return nil
	}

	groups := make([][]member, len(a.patterns))
	for _, unit := range units {
		if !unit.ParseOK {
			continue
		}
		for _, m := range unit.Methods {
			if a.exclusions.ExcludesMethod(m.ClassName, m.Name) {
				continue
			}
			qualified := m.QualifiedName()
			for i, p := range a.patterns {
				if p.re.MatchString(qualified) {
					groups[i] = append(groups[i], member{
						ref:       model.MethodRef{Path: unit.Path, ClassName: m.ClassName, Method: m.Name},
						cognitive: m.CognitiveComplexity,
						params:    m.ParameterCount,
					})
				}
			}
		}
	}

	var findings []model.ConsistencyFinding
	for i, p := range a.patterns {
		if len(groups[i]) < 2 {
			continue
		}
		util.Debug("Consistency: pattern %s matched %d methods", p.name, len(groups[i]))
		findings = append(findings, a.check(p, groups[i])...)
	}
	return findings
}

func (a *Analyzer) check(p pattern, group []member) []model.ConsistencyFinding {
	refs := make([]model.MethodRef, len(group))
	cognitive := make([]float64, len(group))
	distinct := make(map[int]bool)
	for i, m := range group {
		refs[i] = m.ref
		cognitive[i] = float64(m.cognitive)
		distinct[m.params] = true
	}

	label := p.name
	if p.description != "" {
		label = p.description
	}

	var findings []model.ConsistencyFinding

	_, variance := stat.PopMeanVariance(cognitive, nil)
	if variance > a.cfg.VarianceThreshold {
		findings = append(findings, model.ConsistencyFinding{
			Pattern: p.name,
			Kind:    model.ConsistencyComplexityVariance,
			Description: fmt.Sprintf("%s is implemented with uneven complexity across %d methods (cognitive complexity variance %.2f > %.2f): %s",
				label, len(group), variance, a.cfg.VarianceThreshold, names(refs)),
			Methods:  refs,
			Severity: model.SeverityMedium,
			Value:    variance,
		})
	}

	if len(distinct) > a.cfg.MaxDistinctParams {
		counts := make([]int, 0, len(distinct))
		for c := range distinct {
			counts = append(counts, c)
		}
		sort.Ints(counts)
		findings = append(findings, model.ConsistencyFinding{
			Pattern: p.name,
			Kind:    model.ConsistencyParameterSpread,
			Description: fmt.Sprintf("%s methods take %d different parameter counts %v: %s",
				label, len(distinct), counts, names(refs)),
			Methods:  refs,
			Severity: model.SeverityLow,
			Value:    float64(len(distinct)),
		})
	}
	return findings
}

func names(refs []model.MethodRef) string {
	out := make([]string, len(refs))
	for i, r := range refs {
		if r.ClassName != "" {
			out[i] = r.ClassName + "." + r.Method
		} else {
			out[i] = r.Method
		}
	}
	return strings.Join(out, ", ")
}
