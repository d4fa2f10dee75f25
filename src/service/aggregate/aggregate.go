// Package aggregate merges rule findings, predictions and consistency findings
// into per-file results and project summaries.
package aggregate

import (
	"math"
	"sort"
	"strings"

	"smell-bot/src/model"
)

// MaxSuggestions caps the suggestions attached to a single result
const MaxSuggestions = 5

// adviceByRule is the label-level advice for smelly files, keyed by the rule
// of their most severe issue
var adviceByRule = map[string][]string{
	model.RuleLongMethod: {
		"Split long methods with Extract Method",
		"Keep each method focused on a single responsibility",
	},
	model.RuleComplexMethod: {
		"Reduce nesting with early returns",
		"Extract complex conditions into well-named methods",
	},
	model.RuleLongParameterList: {
		"Introduce a parameter object",
		"Check whether the method has too many responsibilities",
	},
	model.RuleLongClass: {
		"Split large classes with Extract Class",
		"Prefer composition over inheritance",
	},
	model.RuleNaming: {
		"Use names that describe intent and keep the style consistent",
	},
}

const genericAdvice = "Review this file for refactoring opportunities"

var severityRank = map[model.IssueSeverity]int{
	model.IssueError:   3,
	model.IssueWarning: 2,
	model.IssueInfo:    1,
}

// Aggregate builds the result of one unit. A nil prediction marks the result
// as rules only, with a smell category and confidence derived from the issues.
// Only findings that reference the unit are kept.
func Aggregate(unit model.SourceUnit, issues []model.Issue, pred *model.Prediction, findings []model.ConsistencyFinding) model.DetectionResult {
	result := model.DetectionResult{
		Path:   unit.Path,
		Issues: []model.Issue{},
	}

	if !unit.ParseOK {
		result.Status = model.StatusParseError
		result.ParseError = unit.ParseError
		return result
	}

	result.Issues = append(result.Issues, issues...)
	for _, f := range findings {
		if f.References(unit.Path) {
			result.Consistency = append(result.Consistency, f)
		}
	}

	if pred == nil {
		result.Status = model.StatusRulesOnly
		result.SmellType, result.Confidence = ruleSmell(result.Issues)
	} else {
		result.Status = model.StatusClassified
		result.Label = pred.Label
		result.LabelName = pred.LabelName
		result.Confidence = pred.Confidence
		result.Breakdown = pred.Breakdown
		result.SmellType = classifiedSmell(pred.Label, result.Issues)
	}

	result.Suggestions = suggestions(result)
	return result
}

func suggestions(r model.DetectionResult) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] || len(out) >= MaxSuggestions {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, issue := range r.Issues {
		add(issue.Suggestion)
	}

	if r.Status == model.StatusClassified && r.Label == model.LabelSmelly {
		if top, ok := mostSevere(r.Issues); ok {
			for _, s := range adviceByRule[top.Rule] {
				add(s)
			}
		} else {
			add(genericAdvice)
		}
	}
	return out
}

// Rule-derived confidences
const (
	errorConfidence = 0.95
	cleanConfidence = 0.8
)

// occurrencesForCertainty is how many offenders of a rule make its score 1
var occurrencesForCertainty = map[string]float64{
	model.RuleLongMethod:        5,
	model.RuleComplexMethod:     3,
	model.RuleLongParameterList: 3,
	model.RuleLongClass:         2,
	model.RuleNaming:            10,
}

// smellOf maps a rule to the smell category it indicates
func smellOf(rule string) model.SmellType {
	switch rule {
	case model.RuleLongMethod:
		return model.SmellLongMethod
	case model.RuleComplexMethod:
		return model.SmellComplexMethod
	case model.RuleLongParameterList:
		return model.SmellLongParameterList
	case model.RuleLongClass:
		return model.SmellLargeClass
	case model.RuleNaming:
		return model.SmellNaming
	case model.RuleLowCommentRatio:
		return model.SmellLowCommentRatio
	}
	if strings.HasPrefix(rule, model.RuleSecurityPrefix) {
		return model.SmellSecurity
	}
	return model.SmellCodeQuality
}

// score rates how strongly one issue indicates its smell, in [0, 1]
func score(issue model.Issue) float64 {
	if issue.Rule == model.RuleLowCommentRatio {
		if issue.Threshold <= 0 {
			return 1
		}
		return math.Min(math.Max((issue.Threshold-issue.Value)/issue.Threshold, 0), 1)
	}
	n, ok := occurrencesForCertainty[issue.Rule]
	if !ok {
		n = 2
	}
	return math.Min(float64(max(issue.Count, 1))/n, 1)
}

// dominant returns the highest scoring issue of the given severity, or of
// any severity when severity is empty. Ties keep the earlier issue.
func dominant(issues []model.Issue, severity model.IssueSeverity) (model.Issue, float64, bool) {
	var (
		best  model.Issue
		bestS = -1.0
	)
	for _, i := range issues {
		if severity != "" && i.Severity != severity {
			continue
		}
		if sc := score(i); sc > bestS {
			best, bestS = i, sc
		}
	}
	return best, bestS, bestS >= 0
}

// errorSmell reports the smell of error-level issues, which take precedence
// over every other signal. Security errors win over other errors.
func errorSmell(issues []model.Issue) (model.SmellType, bool) {
	top, _, ok := dominant(issues, model.IssueError)
	if !ok {
		return "", false
	}
	for _, i := range issues {
		if i.Severity == model.IssueError && strings.HasPrefix(i.Rule, model.RuleSecurityPrefix) {
			return model.SmellSecurity, true
		}
	}
	return smellOf(top.Rule), true
}

// ruleSmell derives a smell category and confidence from rule issues alone,
// for results without a model prediction
func ruleSmell(issues []model.Issue) (model.SmellType, float64) {
	if smell, ok := errorSmell(issues); ok {
		return smell, errorConfidence
	}
	top, sc, ok := dominant(issues, "")
	if !ok {
		return model.SmellClean, cleanConfidence
	}
	return smellOf(top.Rule), sc
}

// classifiedSmell names the smell of a classified result. Error issues
// override the vote, and warnings name a smell even when the vote is clean.
func classifiedSmell(label int, issues []model.Issue) model.SmellType {
	if smell, ok := errorSmell(issues); ok {
		return smell
	}
	if label == model.LabelSmelly {
		if top, _, ok := dominant(issues, ""); ok {
			return smellOf(top.Rule)
		}
		return model.SmellCodeQuality
	}
	if top, _, ok := dominant(issues, model.IssueWarning); ok {
		return smellOf(top.Rule)
	}
	return model.SmellClean
}

// mostSevere returns the first issue of the highest severity
func mostSevere(issues []model.Issue) (model.Issue, bool) {
	if len(issues) == 0 {
		return model.Issue{}, false
	}
	best := issues[0]
	for _, i := range issues[1:] {
		if severityRank[i.Severity] > severityRank[best.Severity] {
			best = i
		}
	}
	return best, true
}

// Summarize computes project statistics. Top holds at most topN classified or
// rules-only results ordered by confidence, then issue count, then path.
func Summarize(results []model.DetectionResult, topN int) model.Summary {
	s := model.Summary{
		TotalFiles:       len(results),
		IssuesBySeverity: make(map[model.IssueSeverity]int),
		SmellTypes:       make(map[model.SmellType]int),
	}

	var (
		confidenceSum float64
		candidates    []model.DetectionResult
		findings      = make(map[string]bool)
	)
	for _, r := range results {
		switch r.Status {
		case model.StatusParseError:
			s.ParseErrors++
			continue
		case model.StatusRulesOnly:
			s.Unclassified++
		case model.StatusClassified:
			confidenceSum += r.Confidence
			if r.Label == model.LabelSmelly {
				s.Smelly++
			} else {
				s.Clean++
			}
		}
		for _, issue := range r.Issues {
			s.IssuesBySeverity[issue.Severity]++
		}
		if r.SmellType != "" && r.SmellType != model.SmellClean {
			s.SmellTypes[r.SmellType]++
		}
		for _, f := range r.Consistency {
			findings[f.Pattern+"/"+string(f.Kind)] = true
		}
		candidates = append(candidates, r)
	}

	if classified := s.Smelly + s.Clean; classified > 0 {
		s.MeanConfidence = confidenceSum / float64(classified)
		s.SmellyRatio = float64(s.Smelly) / float64(classified)
	}
	s.ConsistencyFinding = len(findings)

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if len(a.Issues) != len(b.Issues) {
			return len(a.Issues) > len(b.Issues)
		}
		return a.Path < b.Path
	})
	if topN < 0 {
		topN = 0
	}
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	s.Top = candidates
	return s
}
