package lint

import (
	"context"
	"fmt"

	"templint/internal/jsontree"
)

// lintTemplateTypeRules dispatches the structural rules selected by the
// declared template type. Unrecognized types get no structural checks;
// the schema layer owns the enum.
func (l *TemplateLinter) lintTemplateTypeRules(ctx context.Context) error {
	switch l.tmplType {
	case "app", "embeddedapp":
		l.lintAppRequiredObjects()
		if l.tmplType == "embeddedapp" {
			l.lintEmbeddedUIPages(ctx)
			l.lintEmbeddedShares(ctx)
		}
	case "dashboard":
		l.lintDashboardCount()
	case "data":
		l.lintDataTemplate()
	}
	return nil
}

// nonEmptyArray reports whether the named top-level manifest field is
// an array with at least one element, also returning the field's value
// node when declared at all.
func (l *TemplateLinter) nonEmptyArray(name string) (*jsontree.Node, bool) {
	node := l.tree.Property(name)
	return node, node != nil && node.Kind == jsontree.KindArray && len(node.Children) > 0
}

// lintAppRequiredObjects enforces the app/embeddedapp rule: at least
// one of the creatable asset collections must be non-empty. The
// diagnostic lands on the templateType node with related info pointing
// at each collection that was declared but left empty.
func (l *TemplateLinter) lintAppRequiredObjects() {
	fields := []string{"dashboards", "eltDataflows", "externalFiles", "lenses", "recipes"}

	var related []RelatedInfo
	for _, name := range fields {
		node, nonEmpty := l.nonEmptyArray(name)
		if nonEmpty {
			return
		}
		if node != nil {
			related = append(related, RelatedInfo{
				Doc:     l.manifest,
				Node:    node,
				Message: fmt.Sprintf("%s is empty", name),
			})
		}
	}

	l.add(Diagnostic{
		Doc:      l.manifest,
		Message:  "App templates must declare at least one dashboard, dataflow, external file, lens, or recipe",
		Code:     CodeTmplAppMissingObjects,
		Node:     l.typeNode,
		Severity: SeverityWarning,
		Related:  related,
	})
}

// lintDashboardCount enforces the dashboard-template rule: exactly one
// dashboard entry.
func (l *TemplateLinter) lintDashboardCount() {
	dashboards := l.tree.Property("dashboards")
	count := 0
	if dashboards != nil && dashboards.Kind == jsontree.KindArray {
		count = len(dashboards.Children)
	}
	if count == 1 {
		return
	}

	node := dashboards
	if node == nil {
		node = l.typeNode
	}
	l.add(Diagnostic{
		Doc:      l.manifest,
		Message:  fmt.Sprintf("Dashboard templates must declare exactly one dashboard, found %d", count),
		Code:     CodeTmplDashOneDashboard,
		Node:     node,
		Severity: SeverityWarning,
	})
}

// lintDataTemplate enforces the data-template rules: at least one of
// the data asset collections must be non-empty, non-data asset
// collections are forbidden, and the template cannot depend on other
// templates.
func (l *TemplateLinter) lintDataTemplate() {
	required := []string{"datasetFiles", "externalFiles", "recipes"}
	haveRequired := false
	var related []RelatedInfo
	for _, name := range required {
		node, nonEmpty := l.nonEmptyArray(name)
		if nonEmpty {
			haveRequired = true
			break
		}
		if node != nil {
			related = append(related, RelatedInfo{
				Doc:     l.manifest,
				Node:    node,
				Message: fmt.Sprintf("%s is empty", name),
			})
		}
	}
	if !haveRequired {
		l.add(Diagnostic{
			Doc:      l.manifest,
			Message:  "Data templates must declare at least one dataset file, external file, or recipe",
			Code:     CodeTmplDataMissingObjects,
			Node:     l.typeNode,
			Severity: SeverityWarning,
			Related:  related,
		})
	}

	// Each unsupported collection is flagged individually so a fix for
	// one does not hide the others.
	unsupported := []string{"dashboards", "components", "lenses", "eltDataflows", "storedQueries", "imageFiles"}
	for _, name := range unsupported {
		node, nonEmpty := l.nonEmptyArray(name)
		if !nonEmpty {
			continue
		}
		l.add(Diagnostic{
			Doc:      l.manifest,
			Message:  fmt.Sprintf("Data templates do not support %s", name),
			Code:     CodeTmplDataUnsupportedObject,
			Node:     node,
			Severity: SeverityWarning,
		})
	}

	// extendedTypes is an object of per-type asset arrays, not an array
	// itself; it counts as declared content when any nested array holds
	// an entry.
	if ext := l.tree.Property("extendedTypes"); ext != nil {
		if jsontree.MatchFirst(ext, jsontree.P("*", "*"), nil) != nil {
			l.add(Diagnostic{
				Doc:      l.manifest,
				Message:  "Data templates do not support extendedTypes",
				Code:     CodeTmplDataUnsupportedObject,
				Node:     ext,
				Severity: SeverityWarning,
			})
		}
	}

	if deps, nonEmpty := l.nonEmptyArray("templateDependencies"); nonEmpty {
		l.add(Diagnostic{
			Doc:      l.manifest,
			Message:  "Data templates cannot declare template dependencies",
			Code:     CodeTmplDataNoDependencies,
			Node:     deps,
			Severity: SeverityWarning,
		})
	}
}

// lintEmbeddedUIPages enforces the embeddedapp rule that the referenced
// UI definition must not declare pages. The diagnostic attaches to the
// referencing uiDefinition field; the pages themselves appear as
// related info in the UI file.
func (l *TemplateLinter) lintEmbeddedUIPages(ctx context.Context) {
	uiNode := jsontree.MatchFirst(l.tree, jsontree.P("uiDefinition"), onlyStrings)
	if uiNode == nil {
		return
	}
	entry := l.loadRelPath(ctx, uiNode)
	if entry == nil || entry.tree == nil {
		return
	}

	pages := jsontree.MatchAll(entry.tree, jsontree.P("pages", "*"), nil)
	if len(pages) == 0 {
		return
	}
	related := make([]RelatedInfo, 0, len(pages))
	for _, page := range pages {
		related = append(related, RelatedInfo{Doc: entry.doc, Node: page, Message: "page declared here"})
	}
	l.add(Diagnostic{
		Doc:      l.manifest,
		Message:  "Embedded app templates cannot use a UI definition that declares pages",
		Code:     CodeTmplEmbeddedNoUIPages,
		Node:     uiNode,
		Severity: SeverityWarning,
		Related:  related,
	})
}

// lintEmbeddedShares enforces the embeddedapp rule that the referenced
// folder definition declares at least one share. A missing or unusable
// folder file is left to the relative-path checker.
func (l *TemplateLinter) lintEmbeddedShares(ctx context.Context) {
	folderNode := jsontree.MatchFirst(l.tree, jsontree.P("folderDefinition"), onlyStrings)
	if folderNode == nil {
		l.add(Diagnostic{
			Doc:      l.manifest,
			Message:  "Embedded app templates require a folder definition with at least one share",
			Code:     CodeTmplEmbeddedRequiresShare,
			Node:     l.typeNode,
			Severity: SeverityWarning,
		})
		return
	}
	entry := l.loadRelPath(ctx, folderNode)
	if entry == nil || entry.tree == nil {
		return
	}

	if jsontree.MatchFirst(entry.tree, jsontree.P("shares", "*"), nil) != nil {
		return
	}
	var related []RelatedInfo
	if shares := entry.tree.Property("shares"); shares != nil {
		related = append(related, RelatedInfo{Doc: entry.doc, Node: shares, Message: "shares is empty"})
	}
	l.add(Diagnostic{
		Doc:      l.manifest,
		Message:  "Embedded app templates require at least one share in the folder definition",
		Code:     CodeTmplEmbeddedRequiresShare,
		Node:     folderNode,
		Severity: SeverityWarning,
		Related:  related,
	})
}
