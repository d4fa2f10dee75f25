package metrics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/service/codeapi"
	"smell-bot/src/util"
)

const yamlDump = `
project: shop
units:
  - path: src/Order.php
    language: php
    line_count: 120
    comment_ratio: 0.2
    methods:
      - class_name: Order
        name: process
        line_count: 40
        parameter_count: 2
        cyclomatic_complexity: 4
        cognitive_complexity: 6
        visibility: public
    classes:
      - name: Order
        line_count: 110
        method_count: 1
    security:
      - category: dangerous-call
        severity: high
        line: 12
  - path: src/Broken.php
    error: "unexpected '}' on line 3"
  - path: vendor/lib/Util.php
    line_count: 10
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileUnitsYAML(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewProvider(cfg, nil, util.NewExclusionMatcher(cfg.Exclusions))

	units, err := p.FileUnits(writeFile(t, "metrics.yaml", yamlDump))
	require.NoError(t, err)
	require.Len(t, units, 2)

	order := units[0]
	assert.True(t, order.ParseOK)
	assert.Equal(t, 120, order.LineCount)
	require.Len(t, order.Methods, 1)
	assert.Equal(t, model.VisibilityPublic, order.Methods[0].Visibility)
	assert.Equal(t, model.SecurityDangerousCall, order.Security[0].Category)

	broken := units[1]
	assert.False(t, broken.ParseOK)
	assert.Equal(t, "src/Broken.php", broken.Path)
	assert.Contains(t, broken.ParseError, "unexpected")
}

func TestFileUnitsJSONAndCache(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewProvider(cfg, nil, nil)

	path := writeFile(t, "metrics.json", `{"units": [{"path": "a.php", "line_count": 5, "methods": [{"name": "run", "line_count": 3, "cyclomatic_complexity": 1}]}]}`)
	units, err := p.FileUnits(path)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].ParseOK)
	assert.Equal(t, 1, p.CacheLen())

	again, err := p.FileUnits(path)
	require.NoError(t, err)
	assert.Equal(t, units, again)
	assert.Equal(t, 1, p.CacheLen())
}

func TestFileUnitsMissingFile(t *testing.T) {
	p := NewProvider(config.DefaultConfig(), nil, nil)
	_, err := p.FileUnits(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestToSourceUnitValidation(t *testing.T) {
	valid := codeapi.UnitRecord{
		Path:      "x.php",
		LineCount: 10,
		Methods:   []codeapi.MethodRecord{{Name: "m", LineCount: 5, CyclomaticComplexity: 1}},
	}

	tests := []struct {
		name   string
		mutate func(r *codeapi.UnitRecord)
		reason string
	}{
		{"valid", func(r *codeapi.UnitRecord) {}, ""},
		{"negative lines", func(r *codeapi.UnitRecord) { r.LineCount = -1 }, "negative line count"},
		{"comment ratio", func(r *codeapi.UnitRecord) { r.CommentRatio = 1.5 }, "comment ratio"},
		{"comment ratio NaN", func(r *codeapi.UnitRecord) { r.CommentRatio = math.NaN() }, "comment ratio"},
		{"cyclomatic zero", func(r *codeapi.UnitRecord) { r.Methods[0].CyclomaticComplexity = 0 }, "cyclomatic complexity"},
		{"negative params", func(r *codeapi.UnitRecord) { r.Methods[0].ParameterCount = -2 }, "negative metric"},
		{"visibility", func(r *codeapi.UnitRecord) { r.Methods[0].Visibility = "internal" }, "unknown visibility"},
		{"severity", func(r *codeapi.UnitRecord) {
			r.Security = []codeapi.SecurityRecord{{Category: "injection-risk", Severity: "severe"}}
		}, "unknown security severity"},
		{"category", func(r *codeapi.UnitRecord) {
			r.Security = []codeapi.SecurityRecord{{Category: "xss", Severity: "low"}}
		}, "unknown security category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			rec.Methods = append([]codeapi.MethodRecord(nil), valid.Methods...)
			tt.mutate(&rec)

			unit := ToSourceUnit(rec)
			assert.Equal(t, "x.php", unit.Path)
			if tt.reason == "" {
				assert.True(t, unit.ParseOK)
				return
			}
			assert.False(t, unit.ParseOK)
			assert.Contains(t, unit.ParseError, tt.reason)
			assert.Empty(t, unit.Methods)
		})
	}
}
