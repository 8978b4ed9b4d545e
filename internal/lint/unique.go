package lint

import (
	"fmt"

	"templint/internal/jsontree"
)

// docTree pairs a document with its parsed tree, the unit duplicate
// scans operate over.
type docTree struct {
	doc  Document
	tree *jsontree.Node
}

// occurrence is one sighting of a value during a duplicate scan.
type occurrence struct {
	doc  Document
	node *jsontree.Node
}

func (l *TemplateLinter) manifestSource() []docTree {
	return []docTree{{doc: l.manifest, tree: l.tree}}
}

// collectStringMatches gathers every string value matched by any of the
// patterns across the sources. Returns the distinct values in
// first-seen order plus all occurrences per value. transform (optional)
// normalizes values before keying.
func collectStringMatches(sources []docTree, patterns []jsontree.Pattern, transform func(string) string) ([]string, map[string][]occurrence) {
	var keys []string
	occs := make(map[string][]occurrence)
	record := func(doc Document, node *jsontree.Node, value string) {
		if transform != nil {
			value = transform(value)
		}
		if _, seen := occs[value]; !seen {
			keys = append(keys, value)
		}
		occs[value] = append(occs[value], occurrence{doc: doc, node: node})
	}

	for _, src := range sources {
		for _, pattern := range patterns {
			for _, node := range jsontree.MatchAll(src.tree, pattern, onlyStrings) {
				s, _ := node.StringValue()
				record(src.doc, node, s)
			}
		}
	}
	return keys, occs
}

// lintUniqueValues runs a duplicate scan: every value with two or more
// occurrences yields one diagnostic per occurrence, each related-linked
// to all the other occurrences. format must contain one %q verb for the
// value.
func (l *TemplateLinter) lintUniqueValues(
	sources []docTree,
	patterns []jsontree.Pattern,
	code Code,
	severity Severity,
	format string,
	transform func(string) string,
) {
	keys, occs := collectStringMatches(sources, patterns, transform)
	l.reportDuplicates(keys, occs, code, severity, format)
}

// reportDuplicates emits the diagnostics for a collected duplicate scan.
func (l *TemplateLinter) reportDuplicates(
	keys []string,
	occs map[string][]occurrence,
	code Code,
	severity Severity,
	format string,
) {
	for _, value := range keys {
		found := occs[value]
		if len(found) < 2 {
			continue
		}
		for i, occ := range found {
			related := make([]RelatedInfo, 0, len(found)-1)
			for j, other := range found {
				if j == i {
					continue
				}
				related = append(related, RelatedInfo{
					Doc:     other.doc,
					Node:    other.node,
					Message: "also used here",
				})
			}
			l.add(Diagnostic{
				Doc:      occ.doc,
				Message:  fmt.Sprintf(format, value),
				Code:     code,
				Node:     occ.node,
				Severity: severity,
				Related:  related,
			})
		}
	}
}

// lintAssetNames flags duplicate asset names. Dashboards, components
// and lenses live in one shared namespace; every other asset kind has
// its own.
func (l *TemplateLinter) lintAssetNames() {
	src := l.manifestSource()

	l.lintUniqueValues(src, []jsontree.Pattern{
		jsontree.P("dashboards", "*", "name"),
		jsontree.P("components", "*", "name"),
		jsontree.P("lenses", "*", "name"),
	}, CodeTmplDuplicateName, SeverityWarning, "Duplicate asset name %q", nil)

	for _, kind := range []string{"eltDataflows", "recipes", "externalFiles", "datasetFiles", "storedQueries", "imageFiles"} {
		l.lintUniqueValues(src, []jsontree.Pattern{
			jsontree.P(kind, "*", "name"),
		}, CodeTmplDuplicateName, SeverityWarning, "Duplicate asset name %q", nil)
	}
}

// lintAssetLabels flags duplicate asset labels across every labeled
// asset kind. Labels are display-only, so this is only a hint.
func (l *TemplateLinter) lintAssetLabels() {
	var patterns []jsontree.Pattern
	for _, kind := range []string{"dashboards", "components", "lenses", "eltDataflows", "recipes", "externalFiles", "datasetFiles"} {
		patterns = append(patterns, jsontree.P(kind, "*", "label"))
	}
	l.lintUniqueValues(l.manifestSource(), patterns,
		CodeTmplDuplicateLabel, SeverityHint, "Duplicate asset label %q", nil)
}
