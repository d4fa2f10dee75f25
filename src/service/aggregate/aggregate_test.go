package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smell-bot/src/model"
)

func okUnit(path string) model.SourceUnit {
	return model.SourceUnit{Path: path, Language: "php", LineCount: 10, ParseOK: true}
}

func TestAggregateClassified(t *testing.T) {
	issues := []model.Issue{
		{Rule: model.RuleNaming, Severity: model.IssueInfo, Suggestion: "Rename it"},
		{Rule: model.RuleComplexMethod, Severity: model.IssueError, Suggestion: "Simplify it"},
		{Rule: model.RuleLongMethod, Severity: model.IssueWarning, Suggestion: "Simplify it"},
	}
	pred := &model.Prediction{Label: model.LabelSmelly, LabelName: "smelly", Confidence: 0.9, Breakdown: map[string]float64{"svm": 0.9}}
	findings := []model.ConsistencyFinding{
		{Pattern: "p", Methods: []model.MethodRef{{Path: "a.php", Method: "x"}}},
		{Pattern: "q", Methods: []model.MethodRef{{Path: "b.php", Method: "y"}}},
	}

	r := Aggregate(okUnit("a.php"), issues, pred, findings)

	assert.Equal(t, model.StatusClassified, r.Status)
	assert.Equal(t, model.LabelSmelly, r.Label)
	assert.Equal(t, 0.9, r.Confidence)
	require.Len(t, r.Consistency, 1)
	assert.Equal(t, "p", r.Consistency[0].Pattern)
	assert.Equal(t, []string{
		"Rename it",
		"Simplify it",
		"Reduce nesting with early returns",
		"Extract complex conditions into well-named methods",
	}, r.Suggestions)
}

func TestAggregateCapsSuggestions(t *testing.T) {
	var issues []model.Issue
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "a"} {
		issues = append(issues, model.Issue{Rule: model.RuleLongMethod, Severity: model.IssueWarning, Suggestion: s})
	}
	r := Aggregate(okUnit("x.php"), issues, &model.Prediction{Label: model.LabelSmelly}, nil)
	assert.Len(t, r.Suggestions, MaxSuggestions)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, r.Suggestions)
}

func TestAggregateRulesOnlyAndParseError(t *testing.T) {
	r := Aggregate(okUnit("x.php"), nil, nil, nil)
	assert.Equal(t, model.StatusRulesOnly, r.Status)
	assert.Empty(t, r.Suggestions)
	assert.NotNil(t, r.Issues)

	failed := okUnit("bad.php").Failed("unexpected token")
	r = Aggregate(failed, []model.Issue{{Rule: model.RuleNaming}}, &model.Prediction{}, nil)
	assert.Equal(t, model.StatusParseError, r.Status)
	assert.Equal(t, "unexpected token", r.ParseError)
	assert.Empty(t, r.Issues)

	r = Aggregate(okUnit("smelly.php"), nil, &model.Prediction{Label: model.LabelSmelly}, nil)
	assert.Equal(t, []string{genericAdvice}, r.Suggestions)
}

func TestSummarize(t *testing.T) {
	finding := model.ConsistencyFinding{Pattern: "price-calculation", Kind: model.ConsistencyComplexityVariance}
	results := []model.DetectionResult{
		{Path: "b.php", Status: model.StatusClassified, Label: 1, Confidence: 0.8,
			Issues: []model.Issue{{Severity: model.IssueError}}, Consistency: []model.ConsistencyFinding{finding}},
		{Path: "a.php", Status: model.StatusClassified, Label: 1, Confidence: 0.8,
			Issues: []model.Issue{{Severity: model.IssueError}}, Consistency: []model.ConsistencyFinding{finding}},
		{Path: "c.php", Status: model.StatusClassified, Label: 0, Confidence: 0.6},
		{Path: "d.php", Status: model.StatusClassified, Label: 1, Confidence: 0.8,
			Issues: []model.Issue{{Severity: model.IssueWarning}, {Severity: model.IssueInfo}}},
		{Path: "e.php", Status: model.StatusRulesOnly, Issues: []model.Issue{{Severity: model.IssueWarning}}},
		{Path: "f.php", Status: model.StatusParseError},
	}

	s := Summarize(results, 3)

	assert.Equal(t, 6, s.TotalFiles)
	assert.Equal(t, 3, s.Smelly)
	assert.Equal(t, 1, s.Clean)
	assert.Equal(t, 1, s.ParseErrors)
	assert.Equal(t, 1, s.Unclassified)
	assert.InDelta(t, 0.75, s.MeanConfidence, 1e-12)
	assert.InDelta(t, 0.75, s.SmellyRatio, 1e-12)
	assert.Equal(t, map[model.IssueSeverity]int{
		model.IssueError:   2,
		model.IssueWarning: 2,
		model.IssueInfo:    1,
	}, s.IssuesBySeverity)
	assert.Equal(t, 1, s.ConsistencyFinding)

	var top []string
	for _, r := range s.Top {
		top = append(top, r.Path)
	}
	assert.Equal(t, []string{"d.php", "a.php", "b.php"}, top)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 10)
	assert.Zero(t, s.TotalFiles)
	assert.Zero(t, s.MeanConfidence)
	assert.Zero(t, s.SmellyRatio)
	assert.Empty(t, s.Top)
}

func TestRulesOnlySmellType(t *testing.T) {
	tests := []struct {
		name       string
		issues     []model.Issue
		want       model.SmellType
		confidence float64
	}{
		{
			name:       "no issues is clean",
			want:       model.SmellClean,
			confidence: 0.8,
		},
		{
			name: "error issue takes precedence",
			issues: []model.Issue{
				{Rule: model.RuleNaming, Severity: model.IssueInfo, Count: 10},
				{Rule: model.RuleComplexMethod, Severity: model.IssueError, Count: 1},
			},
			want:       model.SmellComplexMethod,
			confidence: 0.95,
		},
		{
			name: "security error wins over other errors",
			issues: []model.Issue{
				{Rule: model.RuleLongMethod, Severity: model.IssueError, Count: 5},
				{Rule: model.RuleSecurityPrefix + "injection_risk", Severity: model.IssueError, Count: 1},
			},
			want:       model.SmellSecurity,
			confidence: 0.95,
		},
		{
			name: "highest scoring warning",
			issues: []model.Issue{
				{Rule: model.RuleLongMethod, Severity: model.IssueWarning, Count: 1},
				{Rule: model.RuleLongParameterList, Severity: model.IssueWarning, Count: 2},
			},
			want:       model.SmellLongParameterList,
			confidence: 2.0 / 3.0,
		},
		{
			name: "many long classes saturate",
			issues: []model.Issue{
				{Rule: model.RuleLongClass, Severity: model.IssueWarning, Count: 4},
			},
			want:       model.SmellLargeClass,
			confidence: 1,
		},
		{
			name: "comment ratio scored against its threshold",
			issues: []model.Issue{
				{Rule: model.RuleLowCommentRatio, Severity: model.IssueInfo, Value: 0.025, Threshold: 0.1, Count: 1},
			},
			want:       model.SmellLowCommentRatio,
			confidence: 0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Aggregate(okUnit("x.php"), tt.issues, nil, nil)
			assert.Equal(t, model.StatusRulesOnly, r.Status)
			assert.Equal(t, tt.want, r.SmellType)
			assert.InDelta(t, tt.confidence, r.Confidence, 1e-12)
		})
	}
}

func TestClassifiedSmellType(t *testing.T) {
	warning := model.Issue{Rule: model.RuleLongMethod, Severity: model.IssueWarning, Count: 1}
	info := model.Issue{Rule: model.RuleNaming, Severity: model.IssueInfo, Count: 1}
	clean := &model.Prediction{Label: model.LabelClean, LabelName: "clean", Confidence: 0.7}
	smelly := &model.Prediction{Label: model.LabelSmelly, LabelName: "smelly", Confidence: 0.9}

	r := Aggregate(okUnit("a.php"), nil, clean, nil)
	assert.Equal(t, model.SmellClean, r.SmellType)

	r = Aggregate(okUnit("a.php"), []model.Issue{info}, clean, nil)
	assert.Equal(t, model.SmellClean, r.SmellType)

	r = Aggregate(okUnit("a.php"), []model.Issue{info, warning}, clean, nil)
	assert.Equal(t, model.SmellLongMethod, r.SmellType)
	assert.Equal(t, model.LabelClean, r.Label)
	assert.Equal(t, 0.7, r.Confidence)

	r = Aggregate(okUnit("a.php"), nil, smelly, nil)
	assert.Equal(t, model.SmellCodeQuality, r.SmellType)

	r = Aggregate(okUnit("a.php"), []model.Issue{info}, smelly, nil)
	assert.Equal(t, model.SmellNaming, r.SmellType)

	security := model.Issue{Rule: model.RuleSecurityPrefix + "dangerous_call", Severity: model.IssueError, Count: 1}
	r = Aggregate(okUnit("a.php"), []model.Issue{warning, security}, clean, nil)
	assert.Equal(t, model.SmellSecurity, r.SmellType)
	assert.Equal(t, 0.7, r.Confidence)

	failed := okUnit("bad.php").Failed("eof")
	r = Aggregate(failed, nil, nil, nil)
	assert.Empty(t, r.SmellType)
	assert.Zero(t, r.Confidence)
}

func TestSummarizeCountsSmellTypes(t *testing.T) {
	results := []model.DetectionResult{
		{Path: "a.php", Status: model.StatusClassified, Label: 1, SmellType: model.SmellLongMethod},
		{Path: "b.php", Status: model.StatusRulesOnly, SmellType: model.SmellLongMethod},
		{Path: "c.php", Status: model.StatusClassified, SmellType: model.SmellClean},
		{Path: "d.php", Status: model.StatusParseError},
	}
	s := Summarize(results, 10)
	assert.Equal(t, map[model.SmellType]int{model.SmellLongMethod: 2}, s.SmellTypes)
}
