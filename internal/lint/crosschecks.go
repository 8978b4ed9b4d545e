package lint

import (
	"context"
	"fmt"

	"templint/internal/jsontree"
)

// lintUIPages cross-checks UI page variable references against the
// variables definition. Unknown names get a fuzzy suggestion; known
// names get type checks: ObjectType and DateTimeType only work on
// Visualforce pages, DatasetAnyFieldType only in data templates.
func (l *TemplateLinter) lintUIPages(ctx context.Context) error {
	entry := l.loadRelPathPattern(ctx, jsontree.P("uiDefinition"))
	if entry == nil || entry.tree == nil {
		return nil
	}
	idx := l.variables(ctx)
	if !idx.loaded {
		return nil
	}

	for _, page := range jsontree.MatchAll(entry.tree, jsontree.P("pages", "*"), nil) {
		vfPage := page.Property("vfPage") != nil
		for _, nameNode := range jsontree.MatchAll(page, jsontree.P("variables", "*", "name"), onlyStrings) {
			name, _ := nameNode.StringValue()
			if !idx.has(name) {
				l.reportUnknownVariable(entry.doc, nameNode, name, CodeUIPageUnknownVariable, idx)
				continue
			}
			l.checkVariableUsage(entry.doc, nameNode, name, idx, vfPage, CodeUIPageUnsupportedVariable)
		}
	}
	return nil
}

// lintLayout cross-checks layout Variable items the same way. Layout
// pages have no Visualforce escape hatch, so ObjectType and
// DateTimeType are always rejected there.
func (l *TemplateLinter) lintLayout(ctx context.Context) error {
	entry := l.loadRelPathPattern(ctx, jsontree.P("layoutDefinition"))
	if entry == nil || entry.tree == nil {
		return nil
	}
	idx := l.variables(ctx)
	if !idx.loaded {
		return nil
	}

	for _, page := range jsontree.MatchAll(entry.tree, jsontree.P("pages", "*"), nil) {
		for _, panel := range []string{"center", "left", "right"} {
			items := jsontree.MatchAll(page, jsontree.P("layout", panel, "items", "*"), nil)
			l.lintLayoutItems(entry.doc, items, idx)
		}
	}
	return nil
}

// lintLayoutItems walks layout items recursively; GroupBox items nest
// further item lists.
func (l *TemplateLinter) lintLayoutItems(doc Document, items []*jsontree.Node, idx *variableIndex) {
	for _, item := range items {
		itemType, _ := item.Property("type").StringValue()
		switch itemType {
		case "Variable":
			nameNode := item.Property("name")
			name, ok := nameNode.StringValue()
			if !ok {
				continue
			}
			if !idx.has(name) {
				l.reportUnknownVariable(doc, nameNode, name, CodeLayoutUnknownVariable, idx)
				continue
			}
			l.checkVariableUsage(doc, nameNode, name, idx, false, CodeLayoutUnsupportedVariable)
		case "GroupBox":
			if nested := item.Property("items"); nested != nil && nested.Kind == jsontree.KindArray {
				l.lintLayoutItems(doc, nested.Children, idx)
			}
		}
	}
}

// checkVariableUsage emits the unsupported-variable diagnostics for a
// reference to a known variable, linked back to its definition.
func (l *TemplateLinter) checkVariableUsage(doc Document, node *jsontree.Node, name string, idx *variableIndex, vfPage bool, code Code) {
	vt := idx.types[name]
	var msg string
	switch {
	case !vfPage && (vt.Base == "ObjectType" || vt.Base == "DateTimeType"):
		msg = fmt.Sprintf("Variable %q of type %s cannot be used on a non-Visualforce page", name, vt.Base)
	case vt.Base == "DatasetAnyFieldType" && l.tmplType != "data":
		msg = fmt.Sprintf("Variable %q of type DatasetAnyFieldType can only be used in data templates", name)
	default:
		return
	}

	l.add(Diagnostic{
		Doc:      doc,
		Message:  msg,
		Code:     code,
		Node:     node,
		Severity: SeverityWarning,
		Related: []RelatedInfo{{
			Doc:     idx.entry.doc,
			Node:    idx.keyNodes[name],
			Message: "variable defined here",
		}},
	})
}

// lintReadiness cross-checks the readiness file's values map: every key
// must name a declared variable.
func (l *TemplateLinter) lintReadiness(ctx context.Context) error {
	return l.lintValuesMap(ctx,
		jsontree.P("readinessDefinition"),
		jsontree.P("values"),
		CodeReadinessUnknownVariable,
	)
}

// lintAutoInstall cross-checks the auto-install configuration values
// map against the variables definition.
func (l *TemplateLinter) lintAutoInstall(ctx context.Context) error {
	return l.lintValuesMap(ctx,
		jsontree.P("autoInstallDefinition"),
		jsontree.P("configuration", "appConfiguration", "values"),
		CodeAutoInstallUnknownVariable,
	)
}

// lintValuesMap is the shared variable-name check for the readiness and
// auto-install values objects: object keys are variable references.
func (l *TemplateLinter) lintValuesMap(ctx context.Context, filePattern, valuesPattern jsontree.Pattern, code Code) error {
	entry := l.loadRelPathPattern(ctx, filePattern)
	if entry == nil || entry.tree == nil {
		return nil
	}
	idx := l.variables(ctx)
	if !idx.loaded {
		return nil
	}

	values := jsontree.MatchFirst(entry.tree, valuesPattern, nil)
	if values == nil || values.Kind != jsontree.KindObject {
		return nil
	}
	for _, prop := range values.Children {
		key, _, ok := prop.PropertyParts()
		if !ok {
			continue
		}
		name := prop.PropertyName()
		if !idx.has(name) {
			l.reportUnknownVariable(entry.doc, key, name, code, idx)
		}
	}
	return nil
}

// lintRulesFiles runs the duplicate checks across every rules file the
// manifest references: the standalone ruleDefinition plus each
// rules[].file entry. Constants, rule names and macro namespace:name
// pairs must each be unique across the whole set.
func (l *TemplateLinter) lintRulesFiles(ctx context.Context) error {
	var sources []docTree
	seen := make(map[Document]bool)
	addSource := func(entry *relPathEntry) {
		if entry == nil || entry.doc == nil || entry.tree == nil || seen[entry.doc] {
			return
		}
		seen[entry.doc] = true
		sources = append(sources, docTree{doc: entry.doc, tree: entry.tree})
	}

	addSource(l.loadRelPathPattern(ctx, jsontree.P("ruleDefinition")))
	for _, fileNode := range jsontree.MatchAll(l.tree, jsontree.P("rules", "*", "file"), onlyStrings) {
		addSource(l.loadRelPath(ctx, fileNode))
	}
	if len(sources) == 0 {
		return nil
	}

	l.lintUniqueValues(sources, []jsontree.Pattern{
		jsontree.P("constants", "*", "name"),
	}, CodeRulesDuplicateConstant, SeverityWarning, "Duplicate constant %q", nil)

	l.lintUniqueValues(sources, []jsontree.Pattern{
		jsontree.P("rules", "*", "name"),
	}, CodeRulesDuplicateRuleName, SeverityWarning, "Duplicate rule name %q", nil)

	l.lintDuplicateMacros(sources)
	return nil
}

// lintDuplicateMacros checks macro definitions, keyed by their
// namespace:name pair since equal names under different namespaces do
// not collide.
func (l *TemplateLinter) lintDuplicateMacros(sources []docTree) {
	var keys []string
	occs := make(map[string][]occurrence)

	for _, src := range sources {
		for _, macro := range jsontree.MatchAll(src.tree, jsontree.P("macros", "*"), nil) {
			ns, _ := macro.Property("namespace").StringValue()
			for _, nameNode := range jsontree.MatchAll(macro, jsontree.P("definitions", "*", "name"), onlyStrings) {
				name, _ := nameNode.StringValue()
				key := ns + ":" + name
				if _, ok := occs[key]; !ok {
					keys = append(keys, key)
				}
				occs[key] = append(occs[key], occurrence{doc: src.doc, node: nameNode})
			}
		}
	}
	l.reportDuplicates(keys, occs, CodeRulesDuplicateMacro, SeverityWarning, "Duplicate macro %q")
}
