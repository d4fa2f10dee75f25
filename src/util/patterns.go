package util

import (
	"path/filepath"
	"regexp"
	"strings"

	"smell-bot/src/config"
)

// ExclusionMatcher decides which files, classes and methods are left out of analysis
type ExclusionMatcher struct {
	filePatterns     []string
	files            map[string]bool
	classPatterns    []*regexp.Regexp
	functionPatterns []*regexp.Regexp
}

// NewExclusionMatcher creates a new exclusion matcher from config.
// Patterns that fail to compile are logged and skipped.
func NewExclusionMatcher(cfg config.ExclusionsConfig) *ExclusionMatcher {
	m := &ExclusionMatcher{
		filePatterns: cfg.FilePatterns,
		files:        make(map[string]bool, len(cfg.Files)),
	}
	for _, f := range cfg.Files {
		m.files[f] = true
	}

	m.classPatterns = compileAll(cfg.ClassPatterns, "class")
	m.functionPatterns = compileAll(cfg.FunctionPatterns, "function")
	return m
}

func compileAll(patterns []string, kind string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			Warn("Ignoring invalid %s exclusion pattern %q: %v", kind, p, err)
			continue
		}
		out = append(out, re)
	}
	return out
}

// ExcludesFile reports whether a whole source file is excluded
func (m *ExclusionMatcher) ExcludesFile(path string) bool {
	if m.files[path] {
		return true
	}
	for _, pattern := range m.filePatterns {
		if MatchGlob(pattern, path) {
			return true
		}
	}
	return false
}

// ExcludesClass reports whether a class is excluded by name
func (m *ExclusionMatcher) ExcludesClass(name string) bool {
	return name != "" && matchAny(m.classPatterns, name)
}

// ExcludesMethod reports whether a method is excluded, either by its own name or its owner
func (m *ExclusionMatcher) ExcludesMethod(className, name string) bool {
	if m.ExcludesClass(className) {
		return true
	}
	return name != "" && matchAny(m.functionPatterns, name)
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// doubleGlobRegexp translates a glob containing ** into an anchored regexp.
// "**/" matches zero or more directories, "*" stays within one path segment.
func doubleGlobRegexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			sb.WriteString("(?:.*/)?")
			i += 2
		case strings.HasPrefix(pattern[i:], "**"):
			sb.WriteString(".*")
			i++
		case c == '*':
			sb.WriteString("[^/]*")
		case c == '?':
			sb.WriteString("[^/]")
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// MatchGlob matches a path against a glob pattern, with ** spanning directories
func MatchGlob(pattern, path string) bool {
	if strings.Contains(pattern, "**") {
		re, err := doubleGlobRegexp(pattern)
		return err == nil && re.MatchString(path)
	}
	matched, _ := filepath.Match(pattern, path)
	return matched
}
