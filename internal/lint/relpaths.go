package lint

import (
	"context"
	"fmt"
	"strings"

	"templint/internal/jsontree"
)

// relPathField describes one path-bearing manifest field: where its
// string values live and whether they must reference JSON files.
type relPathField struct {
	pattern jsontree.Pattern
	json    bool
}

// relPathFields is the full set of manifest fields whose values resolve
// to sibling files.
var relPathFields = []relPathField{
	{jsontree.P("variableDefinition"), true},
	{jsontree.P("uiDefinition"), true},
	{jsontree.P("layoutDefinition"), true},
	{jsontree.P("folderDefinition"), true},
	{jsontree.P("autoInstallDefinition"), true},
	{jsontree.P("readinessDefinition"), true},
	{jsontree.P("ruleDefinition"), true},
	{jsontree.P("releaseInfo", "notesFile"), false},
	{jsontree.P("rules", "*", "file"), true},
	{jsontree.P("dashboards", "*", "file"), true},
	{jsontree.P("components", "*", "file"), true},
	{jsontree.P("lenses", "*", "file"), true},
	{jsontree.P("eltDataflows", "*", "file"), true},
	{jsontree.P("recipes", "*", "file"), true},
	{jsontree.P("externalFiles", "*", "file"), false},
	{jsontree.P("externalFiles", "*", "schema"), true},
	{jsontree.P("externalFiles", "*", "userXmd"), true},
	{jsontree.P("datasetFiles", "*", "userXmd"), true},
	{jsontree.P("storedQueries", "*", "file"), true},
	{jsontree.P("imageFiles", "*", "file"), false},
	{jsontree.P("extendedTypes", "*", "*", "file"), true},
}

// lintRelPaths checks every declared path-bearing field: the value must
// be a well-formed relative path, point at an existing regular file,
// and (for most fields) name a .json file.
func (l *TemplateLinter) lintRelPaths(ctx context.Context) error {
	for _, field := range relPathFields {
		for _, node := range jsontree.MatchAll(l.tree, field.pattern, onlyStrings) {
			s, _ := node.StringValue()
			rel := strings.TrimSpace(s)

			if !IsValidRelativePath(rel) {
				l.add(Diagnostic{
					Doc:      l.manifest,
					Message:  fmt.Sprintf("%q is not a valid relative path", s),
					Code:     CodeTmplInvalidRelPath,
					Node:     node,
					Severity: SeverityWarning,
				})
				continue
			}
			if field.json && !strings.HasSuffix(strings.ToLower(rel), ".json") {
				l.add(Diagnostic{
					Doc:      l.manifest,
					Message:  fmt.Sprintf("%q should reference a .json file", rel),
					Code:     CodeTmplRelPathNotJSON,
					Node:     node,
					Severity: SeverityWarning,
				})
			}

			switch l.ws.Stat(ctx, l.ws.JoinRelative(l.dir, rel)) {
			case StatMissing:
				l.add(Diagnostic{
					Doc:      l.manifest,
					Message:  fmt.Sprintf("Referenced file %q does not exist", rel),
					Code:     CodeTmplRelPathNotFound,
					Node:     node,
					Severity: SeverityWarning,
				})
			case StatDir:
				l.add(Diagnostic{
					Doc:      l.manifest,
					Message:  fmt.Sprintf("%q references a directory, not a file", rel),
					Code:     CodeTmplRelPathNotFound,
					Node:     node,
					Severity: SeverityWarning,
				})
			}
		}
	}
	return nil
}

// lintDuplicateRelPaths flags relative paths referenced by more than
// one field. Duplicate references are usually a copy-paste slip, but a
// template can legitimately share a file, so this stays a warning.
func (l *TemplateLinter) lintDuplicateRelPaths() {
	patterns := make([]jsontree.Pattern, len(relPathFields))
	for i, f := range relPathFields {
		patterns[i] = f.pattern
	}
	l.lintUniqueValues(
		l.manifestSource(), patterns,
		CodeTmplDuplicateRelPath, SeverityWarning,
		"Duplicate relative path %q",
		strings.TrimSpace,
	)
}
