package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/util"
)

func issueByRule(issues []model.Issue, rule string) (model.Issue, bool) {
	for _, i := range issues {
		if i.Rule == rule {
			return i, true
		}
	}
	return model.Issue{}, false
}

func TestEvaluateCanonicalMethod(t *testing.T) {
	unit := model.SourceUnit{
		Path:    "src/UserService.php",
		ParseOK: true,
		Methods: []model.MethodMetric{{
			ClassName:            "UserService",
			Name:                 "processUserRegistration",
			StartLine:            12,
			LineCount:            158,
			ParameterCount:       7,
			CyclomaticComplexity: 45,
			CognitiveComplexity:  60,
			Visibility:           model.VisibilityPublic,
		}},
	}

	issues := Evaluate(unit, config.DefaultThresholds())

	long, ok := issueByRule(issues, model.RuleLongMethod)
	require.True(t, ok)
	assert.Contains(t, long.Message, "158")
	assert.Equal(t, model.IssueError, long.Severity)
	assert.Equal(t, 12, long.Line)

	cc, ok := issueByRule(issues, model.RuleComplexMethod)
	require.True(t, ok)
	assert.Contains(t, cc.Message, "45")
	assert.Equal(t, model.IssueError, cc.Severity)

	params, ok := issueByRule(issues, model.RuleLongParameterList)
	require.True(t, ok)
	assert.Contains(t, params.Message, "7")
	assert.Equal(t, model.IssueWarning, params.Severity)
}

func TestEvaluateSummarizesWorstValue(t *testing.T) {
	unit := model.SourceUnit{
		Path:    "src/Order.php",
		ParseOK: true,
		Methods: []model.MethodMetric{
			{ClassName: "Order", Name: "a", ParameterCount: 6, CyclomaticComplexity: 1, StartLine: 5},
			{ClassName: "Order", Name: "b", ParameterCount: 9, CyclomaticComplexity: 1, StartLine: 40},
			{ClassName: "Order", Name: "c", ParameterCount: 7, CyclomaticComplexity: 1, StartLine: 80},
			{ClassName: "Order", Name: "d", ParameterCount: 2, CyclomaticComplexity: 1, StartLine: 99},
		},
	}

	issues := Evaluate(unit, config.DefaultThresholds())
	require.Len(t, issues, 1)

	params := issues[0]
	assert.Equal(t, model.RuleLongParameterList, params.Rule)
	assert.Contains(t, params.Message, "max method parameters = 9")
	assert.Contains(t, params.Message, "3 methods")
	assert.Equal(t, 3, params.Count)
	assert.Equal(t, 9.0, params.Value)
	assert.Equal(t, 40, params.Line)
	assert.Equal(t, model.IssueWarning, params.Severity)
}

func TestEvaluateLongClass(t *testing.T) {
	unit := model.SourceUnit{
		Path:    "src/God.php",
		ParseOK: true,
		Classes: []model.ClassMetric{{Name: "God", LineCount: 1200}, {Name: "Small", LineCount: 20}},
	}
	issues := Evaluate(unit, config.DefaultThresholds())
	long, ok := issueByRule(issues, model.RuleLongClass)
	require.True(t, ok)
	assert.Contains(t, long.Message, "1200")
	assert.Contains(t, long.Message, "1 class over")
	assert.Equal(t, model.IssueError, long.Severity)
}

func TestEvaluateNamingAndDocumentation(t *testing.T) {
	unit := model.SourceUnit{
		Path:         "src/legacy.php",
		ParseOK:      true,
		LineCount:    200,
		CommentRatio: 0.02,
		Classes:      []model.ClassMetric{{Name: "user_repo"}},
		Methods: []model.MethodMetric{
			{ClassName: "user_repo", Name: "__construct", CyclomaticComplexity: 1},
			{ClassName: "user_repo", Name: "Find_By_Id", CyclomaticComplexity: 1},
			{ClassName: "user_repo", Name: "save", CyclomaticComplexity: 1},
		},
	}

	issues := Evaluate(unit, config.DefaultThresholds())

	naming, ok := issueByRule(issues, model.RuleNaming)
	require.True(t, ok)
	assert.Equal(t, model.IssueInfo, naming.Severity)
	assert.Equal(t, 2, naming.Count)
	assert.Contains(t, naming.Suggestion, "UserRepo")

	doc, ok := issueByRule(issues, model.RuleLowCommentRatio)
	require.True(t, ok)
	assert.Equal(t, model.IssueInfo, doc.Severity)
}

func TestEvaluateSecurity(t *testing.T) {
	unit := model.SourceUnit{
		Path:    "src/db.php",
		ParseOK: true,
		Security: []model.SecurityFinding{
			{Category: model.SecurityInjectionRisk, Severity: model.SeverityMedium, Line: 3},
			{Category: model.SecurityInjectionRisk, Severity: model.SeverityCritical, Line: 9},
			{Category: model.SecurityOther, Severity: model.SeverityLow, Line: 30},
		},
	}

	issues := Evaluate(unit, config.DefaultThresholds())
	require.Len(t, issues, 2)

	assert.Equal(t, "security/injection-risk", issues[0].Rule)
	assert.Equal(t, model.IssueError, issues[0].Severity)
	assert.Equal(t, 9, issues[0].Line)
	assert.Equal(t, 2, issues[0].Count)

	assert.Equal(t, "security/other", issues[1].Rule)
	assert.Equal(t, model.IssueInfo, issues[1].Severity)
}

func TestEvaluateSkipsParseFailuresAndExclusions(t *testing.T) {
	failed := model.SourceUnit{Path: "broken.php", ParseOK: false}
	assert.Empty(t, Evaluate(failed, config.DefaultThresholds()))

	runner := NewRunner(config.DefaultThresholds(), util.NewExclusionMatcher(config.ExclusionsConfig{
		ClassPatterns: []string{"Mock$"},
	}))
	unit := model.SourceUnit{
		Path:    "src/PaymentMock.php",
		ParseOK: true,
		Methods: []model.MethodMetric{{ClassName: "PaymentMock", Name: "charge", LineCount: 400, CyclomaticComplexity: 1}},
	}
	assert.Empty(t, runner.Evaluate(unit))
}

func TestEvaluateDegenerateMetricsDoNotPanic(t *testing.T) {
	unit := model.SourceUnit{
		Path:    "weird.php",
		ParseOK: true,
		Methods: []model.MethodMetric{{}},
		Classes: []model.ClassMetric{{}},
	}
	assert.NotPanics(t, func() {
		Evaluate(unit, config.ThresholdConfig{})
	})
}

func TestCaseConversion(t *testing.T) {
	assert.Equal(t, "GetUserName", toPascalCase("get_user_name"))
	assert.Equal(t, "getUserName", toCamelCase("get_user_name"))
	assert.Equal(t, "findById", toCamelCase("Find_By_Id"))
}
