package lint

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"templint/internal/jsontree"
)

const manifestPath = "pkg/template-info.json"

// runLint lints an in-memory template package. files is keyed by full
// path; the manifest must be present at manifestPath.
func runLint(t *testing.T, files map[string]string) (*TemplateLinter, *memWorkspace) {
	t.Helper()
	ws := newMemWorkspace(files)
	doc, err := ws.Open(context.Background(), manifestPath)
	require.NoError(t, err)
	l := New(ws, doc)
	require.NoError(t, l.Lint(context.Background()))
	return l, ws
}

func byCode(set *DiagnosticSet, code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range set.All() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func TestLintEmptyManifestIsFatal(t *testing.T) {
	for _, text := range []string{"", "// nothing here\n"} {
		l, _ := runLint(t, map[string]string{manifestPath: text})
		all := l.Diagnostics().All()
		require.Len(t, all, 1, "empty manifest must yield exactly one diagnostic")
		assert.Equal(t, CodeTmplEmptyFile, all[0].Code)
		assert.Equal(t, SeverityError, all[0].Severity)
		assert.Nil(t, all[0].Node)
	}
}

func TestLintAppMissingObjects(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{"templateType": "app", "dashboards": [], "lenses": []}`,
	})
	diags := byCode(l.Diagnostics(), CodeTmplAppMissingObjects)
	require.Len(t, diags, 1)
	d := diags[0]
	// Located on the templateType value node.
	require.NotNil(t, d.Node)
	assert.Equal(t, "app", d.Node.Value)
	// Related info points at each declared-but-empty collection.
	assert.Len(t, d.Related, 2)
}

func TestLintAppWithObjectsClean(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath:    `{"templateType": "app", "dashboards": [{"name": "d", "file": "dash.json"}]}`,
		"pkg/dash.json": `{}`,
	})
	assert.Empty(t, byCode(l.Diagnostics(), CodeTmplAppMissingObjects))
}

func TestLintDefaultTemplateTypeIsApp(t *testing.T) {
	l, _ := runLint(t, map[string]string{manifestPath: `{"name": "t"}`})
	diags := byCode(l.Diagnostics(), CodeTmplAppMissingObjects)
	require.Len(t, diags, 1)
	assert.Nil(t, diags[0].Node, "no templateType node to anchor to")
}

func TestLintTemplateTypeCaseInsensitive(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{"templateType": "Dashboard", "dashboards": []}`,
	})
	assert.Len(t, byCode(l.Diagnostics(), CodeTmplDashOneDashboard), 1)
}

func TestLintDashboardExactlyOne(t *testing.T) {
	files := map[string]string{
		"pkg/d1.json": `{}`,
		"pkg/d2.json": `{}`,
	}

	files[manifestPath] = `{"templateType": "dashboard", "dashboards": [
		{"name": "a", "file": "d1.json"}, {"name": "b", "file": "d2.json"}]}`
	l, _ := runLint(t, files)
	require.Len(t, byCode(l.Diagnostics(), CodeTmplDashOneDashboard), 1)

	files[manifestPath] = `{"templateType": "dashboard", "dashboards": [{"name": "a", "file": "d1.json"}]}`
	l, _ = runLint(t, files)
	assert.Empty(t, byCode(l.Diagnostics(), CodeTmplDashOneDashboard))
}

func TestLintDataTemplateRules(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "data",
			"dashboards": [{"name": "d", "file": "dash.json"}],
			"templateDependencies": [{"name": "other"}]
		}`,
		"pkg/dash.json": `{}`,
	})
	set := l.Diagnostics()
	assert.Len(t, byCode(set, CodeTmplDataMissingObjects), 1)
	unsupported := byCode(set, CodeTmplDataUnsupportedObject)
	require.Len(t, unsupported, 1)
	assert.Contains(t, unsupported[0].Message, "dashboards")
	assert.Len(t, byCode(set, CodeTmplDataNoDependencies), 1)
}

func TestLintDataTemplateRejectsExtendedTypes(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "data",
			"recipes": [{"name": "r", "file": "r.json"}],
			"extendedTypes": {"discoveryStories": [{"name": "s", "file": "s.json"}]}
		}`,
		"pkg/r.json": `{}`,
		"pkg/s.json": `{}`,
	})
	diags := byCode(l.Diagnostics(), CodeTmplDataUnsupportedObject)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "extendedTypes")
	require.NotNil(t, diags[0].Node)
	assert.Equal(t, jsontree.KindObject, diags[0].Node.Kind)

	// Declared but empty nested arrays do not count as content.
	l, _ = runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "data",
			"recipes": [{"name": "r", "file": "r.json"}],
			"extendedTypes": {"discoveryStories": []}
		}`,
		"pkg/r.json": `{}`,
	})
	assert.Empty(t, byCode(l.Diagnostics(), CodeTmplDataUnsupportedObject))
}

func TestLintDataTemplateClean(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{"templateType": "data", "recipes": [{"name": "r", "file": "r.json"}]}`,
		"pkg/r.json": `{}`,
	})
	set := l.Diagnostics()
	assert.Empty(t, byCode(set, CodeTmplDataMissingObjects))
	assert.Empty(t, byCode(set, CodeTmplDataUnsupportedObject))
}

func TestLintEmbeddedAppUIPages(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "embeddedapp",
			"recipes": [{"name": "r", "file": "r.json"}],
			"uiDefinition": "ui.json",
			"folderDefinition": "folder.json"
		}`,
		"pkg/r.json":      `{}`,
		"pkg/ui.json":     `{"pages": [{"title": "one"}, {"title": "two"}]}`,
		"pkg/folder.json": `{"shares": [{"accessType": "View", "shareType": "Organization"}]}`,
	})
	diags := byCode(l.Diagnostics(), CodeTmplEmbeddedNoUIPages)
	require.Len(t, diags, 1)
	assert.Equal(t, "ui.json", diags[0].Node.Value, "attaches to the referencing field")
	assert.Len(t, diags[0].Related, 2, "one related entry per page")
	assert.Empty(t, byCode(l.Diagnostics(), CodeTmplEmbeddedRequiresShare))
}

func TestLintEmbeddedAppRequiresShare(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "embeddedapp",
			"recipes": [{"name": "r", "file": "r.json"}],
			"folderDefinition": "folder.json"
		}`,
		"pkg/r.json":      `{}`,
		"pkg/folder.json": `{"shares": []}`,
	})
	diags := byCode(l.Diagnostics(), CodeTmplEmbeddedRequiresShare)
	require.Len(t, diags, 1)
	assert.Len(t, diags[0].Related, 1, "points at the empty shares array")
}

func TestLintRelPathChecks(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "missing.json",
			"uiDefinition": "../outside.json",
			"layoutDefinition": "sub"
		}`,
		"pkg/r.json":     `{}`,
		"pkg/sub/x.json": `{}`,
	})
	set := l.Diagnostics()

	notFound := byCode(set, CodeTmplRelPathNotFound)
	require.Len(t, notFound, 2)
	joined := notFound[0].Message + "\n" + notFound[1].Message
	assert.Contains(t, joined, "missing.json")
	assert.Contains(t, joined, "directory")

	invalid := byCode(set, CodeTmplInvalidRelPath)
	require.Len(t, invalid, 1)
	assert.Contains(t, invalid[0].Message, "../outside.json")

	notJSON := byCode(set, CodeTmplRelPathNotJSON)
	require.Len(t, notJSON, 1)
	assert.Contains(t, notJSON[0].Message, "sub")
}

func TestLintDuplicateRelPathsShareOneCacheEntry(t *testing.T) {
	l, ws := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "shared.json",
			"readinessDefinition": "shared.json"
		}`,
		"pkg/r.json":      `{}`,
		"pkg/shared.json": `{}`,
	})
	diags := byCode(l.Diagnostics(), CodeTmplDuplicateRelPath)
	require.Len(t, diags, 2, "one diagnostic per occurrence")
	for _, d := range diags {
		assert.Len(t, d.Related, 1, "each occurrence points at the other")
	}
	assert.Equal(t, 1, ws.opens["pkg/shared.json"], "one cache entry, one open per pass")
}

func TestLintDuplicateAssetNamesSharedNamespace(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"dashboards": [{"name": "thing", "label": "A", "file": "d.json"}],
			"lenses": [{"name": "thing", "label": "B", "file": "l.json"}],
			"recipes": [{"name": "thing", "file": "r.json"}]
		}`,
		"pkg/d.json": `{}`,
		"pkg/l.json": `{}`,
		"pkg/r.json": `{}`,
	})
	// dashboards and lenses collide (shared namespace); the recipe named
	// the same does not.
	diags := byCode(l.Diagnostics(), CodeTmplDuplicateName)
	require.Len(t, diags, 2)
}

func TestLintDuplicateAssetLabels(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"dashboards": [{"name": "a", "label": "Sales", "file": "d.json"}],
			"recipes": [{"name": "b", "label": "Sales", "file": "r.json"}]
		}`,
		"pkg/d.json": `{}`,
		"pkg/r.json": `{}`,
	})
	diags := byCode(l.Diagnostics(), CodeTmplDuplicateLabel)
	require.Len(t, diags, 2)
	assert.Equal(t, SeverityHint, diags[0].Severity)
}

func TestLintDuplicateExternalFileLabels(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"externalFiles": [
				{"name": "a", "label": "Feed", "file": "a.csv"},
				{"name": "b", "label": "Feed", "file": "b.csv"}
			]
		}`,
		"pkg/r.json": `{}`,
		"pkg/a.csv":  ``,
		"pkg/b.csv":  ``,
	})
	diags := byCode(l.Diagnostics(), CodeTmplDuplicateLabel)
	require.Len(t, diags, 2)
}

// autoInstallManifest wires a minimal app template with auto-install
// configuration referencing the given variable name.
func autoInstallFiles(ref string) map[string]string {
	return map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "variables.json",
			"autoInstallDefinition": "auto-install.json"
		}`,
		"pkg/r.json":         `{}`,
		"pkg/variables.json": `{"varname1": {"variableType": {"type": "StringType"}}}`,
		"pkg/auto-install.json": `{"configuration": {"appConfiguration": {"values": {"` + ref + `": "v"}}}}`,
	}
}

func TestLintAutoInstallUnknownVariableNoMatch(t *testing.T) {
	l, _ := runLint(t, autoInstallFiles("foo"))
	diags := byCode(l.Diagnostics(), CodeAutoInstallUnknownVariable)
	require.Len(t, diags, 1)
	assert.Nil(t, diags[0].Args, "no plausible fuzzy match for \"foo\"")
	assert.NotContains(t, diags[0].Message, "did you mean")
}

func TestLintAutoInstallUnknownVariableWithMatch(t *testing.T) {
	l, _ := runLint(t, autoInstallFiles("varname"))
	diags := byCode(l.Diagnostics(), CodeAutoInstallUnknownVariable)
	require.Len(t, diags, 1)
	require.NotNil(t, diags[0].Args)
	assert.Equal(t, "varname1", diags[0].Args["match"])
	assert.Contains(t, diags[0].Message, `"varname1"`)
}

func TestLintAutoInstallKnownVariableClean(t *testing.T) {
	l, _ := runLint(t, autoInstallFiles("varname1"))
	assert.Empty(t, byCode(l.Diagnostics(), CodeAutoInstallUnknownVariable))
}

func TestLintReadinessUnknownVariable(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "variables.json",
			"readinessDefinition": "readiness.json"
		}`,
		"pkg/r.json":         `{}`,
		"pkg/variables.json": `{"varname1": {"variableType": {"type": "StringType"}}}`,
		"pkg/readiness.json": `{"values": {"varname": 1, "varname1": 2}}`,
	})
	diags := byCode(l.Diagnostics(), CodeReadinessUnknownVariable)
	require.Len(t, diags, 1)
	assert.Equal(t, "varname1", diags[0].Args["match"])
}

func TestLintUIPageVariables(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "variables.json",
			"uiDefinition": "ui.json"
		}`,
		"pkg/r.json": `{}`,
		"pkg/variables.json": `{
			"plain": {"variableType": {"type": "StringType"}},
			"obj": {"variableType": {"type": "ObjectType"}},
			"when": {"variableType": {"type": "DateTimeType"}},
			"anyField": {"variableType": {"type": "DatasetAnyFieldType"}}
		}`,
		"pkg/ui.json": `{"pages": [
			{"title": "p1", "variables": [
				{"name": "plain"}, {"name": "obj"}, {"name": "when"}, {"name": "anyField"}, {"name": "nope"}
			]},
			{"title": "vf", "vfPage": {"name": "VfP", "namespace": "ns"}, "variables": [
				{"name": "obj"}, {"name": "when"}
			]}
		]}`,
	})
	set := l.Diagnostics()

	unknown := byCode(set, CodeUIPageUnknownVariable)
	require.Len(t, unknown, 1)
	assert.Contains(t, unknown[0].Message, `"nope"`)

	// obj + when + anyField on the plain page; the vf page allows
	// ObjectType and DateTimeType.
	unsupported := byCode(set, CodeUIPageUnsupportedVariable)
	require.Len(t, unsupported, 3)
	for _, d := range unsupported {
		require.Len(t, d.Related, 1, "links back to the variable definition")
	}
}

func TestLintUIDatasetAnyFieldAllowedInDataTemplates(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "data",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "variables.json",
			"uiDefinition": "ui.json"
		}`,
		"pkg/r.json":         `{}`,
		"pkg/variables.json": `{"anyField": {"variableType": {"type": "DatasetAnyFieldType"}}}`,
		"pkg/ui.json":        `{"pages": [{"title": "p", "variables": [{"name": "anyField"}]}]}`,
	})
	assert.Empty(t, byCode(l.Diagnostics(), CodeUIPageUnsupportedVariable))
}

func TestLintLayoutVariables(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "variables.json",
			"layoutDefinition": "layout.json"
		}`,
		"pkg/r.json": `{}`,
		"pkg/variables.json": `{
			"plain": {"variableType": {"type": "StringType"}},
			"obj": {"variableType": {"type": "ObjectType"}}
		}`,
		"pkg/layout.json": `{"pages": [{"title": "p", "layout": {"type": "SingleColumn", "center": {"items": [
			{"type": "Variable", "name": "plain"},
			{"type": "GroupBox", "items": [
				{"type": "Variable", "name": "obj"},
				{"type": "Variable", "name": "plian"}
			]}
		]}}}]}`,
	})
	set := l.Diagnostics()

	unknown := byCode(set, CodeLayoutUnknownVariable)
	require.Len(t, unknown, 1, "nested GroupBox items are walked")
	assert.Equal(t, "plain", unknown[0].Args["match"])

	unsupported := byCode(set, CodeLayoutUnsupportedVariable)
	require.Len(t, unsupported, 1)
	assert.Contains(t, unsupported[0].Message, "ObjectType")
}

func TestLintArrayVariableTypeReduction(t *testing.T) {
	// An array of DateTimeType reduces to base DateTimeType and is
	// rejected on a non-vf page like the scalar would be.
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "variables.json",
			"uiDefinition": "ui.json"
		}`,
		"pkg/r.json": `{}`,
		"pkg/variables.json": `{
			"dates": {"variableType": {"type": "ArrayType", "itemsType": {"type": "DateTimeType"}}}
		}`,
		"pkg/ui.json": `{"pages": [{"title": "p", "variables": [{"name": "dates"}]}]}`,
	})
	diags := byCode(l.Diagnostics(), CodeUIPageUnsupportedVariable)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "DateTimeType")
}

func TestLintRulesDuplicates(t *testing.T) {
	l, _ := runLint(t, map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"ruleDefinition": "rule-def.json",
			"rules": [{"type": "templateToApp", "file": "rules1.json"}]
		}`,
		"pkg/r.json": `{}`,
		"pkg/rule-def.json": `{
			"constants": [{"name": "konst"}],
			"rules": [{"name": "ruleA"}],
			"macros": [{"namespace": "ns1", "definitions": [{"name": "mac"}]}]
		}`,
		"pkg/rules1.json": `{
			"constants": [{"name": "konst"}],
			"rules": [{"name": "ruleA"}, {"name": "ruleB"}],
			"macros": [
				{"namespace": "ns1", "definitions": [{"name": "mac"}]},
				{"namespace": "ns2", "definitions": [{"name": "mac"}]}
			]
		}`,
	})
	set := l.Diagnostics()

	assert.Len(t, byCode(set, CodeRulesDuplicateConstant), 2, "constant duplicated across files")
	assert.Len(t, byCode(set, CodeRulesDuplicateRuleName), 2)

	// ns1:mac collides across files; ns2:mac does not.
	macros := byCode(set, CodeRulesDuplicateMacro)
	require.Len(t, macros, 2)
	assert.Contains(t, macros[0].Message, "ns1:mac")
}

func variablesManifest(variablesJSON string) map[string]string {
	return map[string]string{
		manifestPath: `{
			"templateType": "app",
			"recipes": [{"name": "r", "file": "r.json"}],
			"variableDefinition": "variables.json"
		}`,
		"pkg/r.json":         `{}`,
		"pkg/variables.json": variablesJSON,
	}
}

func TestLintInvalidVariableName(t *testing.T) {
	l, _ := runLint(t, variablesManifest(`{"has-dash": {"variableType": {"type": "StringType"}}}`))
	diags := byCode(l.Diagnostics(), CodeVarsInvalidName)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `"has-dash"`)
}

func TestLintRegexExcludes(t *testing.T) {
	tests := []struct {
		name     string
		excludes string
		code     Code
	}{
		{"missing closing slash", `["/abc"]`, CodeVarsRegexMissingSlash},
		{"duplicate flag", `["/abc/xx"]`, CodeVarsInvalidRegexOptions},
		{"invalid flag", `["/abc/q"]`, CodeVarsInvalidRegexOptions},
		{"bad pattern", `["/ab[c/i"]`, CodeVarsInvalidRegex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := runLint(t, variablesManifest(
				`{"varname1": {"variableType": {"type": "StringType"}, "excludes": `+tt.excludes+`}}`))
			diags := byCode(l.Diagnostics(), tt.code)
			require.Len(t, diags, 1)
		})
	}
}

func TestLintRegexExcludeValidIsClean(t *testing.T) {
	l, _ := runLint(t, variablesManifest(
		`{"varname1": {"variableType": {"type": "StringType"}, "excludes": ["literal", "/^a.c$/gi"]}}`))
	set := l.Diagnostics()
	for _, code := range []Code{CodeVarsRegexMissingSlash, CodeVarsInvalidRegex, CodeVarsInvalidRegexOptions, CodeVarsMultipleRegexes} {
		assert.Empty(t, byCode(set, code), "code %s", code)
	}
}

func TestLintMultipleRegexExcludes(t *testing.T) {
	l, _ := runLint(t, variablesManifest(
		`{"varname1": {"variableType": {"type": "StringType"}, "excludes": ["/one/", "mid", "/two/"]}}`))
	diags := byCode(l.Diagnostics(), CodeVarsMultipleRegexes)
	require.Len(t, diags, 1, "exactly one extra diagnostic")
	assert.Len(t, diags[0].Related, 2, "one related entry per regex found")
}

func TestLintInvalidRegexMessageHasEngineDetail(t *testing.T) {
	l, _ := runLint(t, variablesManifest(
		`{"varname1": {"variableType": {"type": "StringType"}, "excludes": ["/ab[c/"]}}`))
	diags := byCode(l.Diagnostics(), CodeVarsInvalidRegex)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Invalid regular expression: ")
	assert.NotContains(t, diags[0].Message, "error parsing regexp", "engine prefix is stripped")
}

func TestLintIdempotent(t *testing.T) {
	files := map[string]string{
		manifestPath: `{
			"templateType": "dashboard",
			"dashboards": [{"name": "a", "file": "d.json"}, {"name": "a", "file": "d.json"}],
			"variableDefinition": "missing.json"
		}`,
		"pkg/d.json": `{}`,
	}
	ws := newMemWorkspace(files)
	doc, err := ws.Open(context.Background(), manifestPath)
	require.NoError(t, err)
	l := New(ws, doc)

	snapshot := func() []string {
		var out []string
		for _, d := range l.Diagnostics().All() {
			line := string(d.Code) + "|" + d.Message
			if d.Node != nil {
				line += "|" + d.Node.Kind.String()
			}
			out = append(out, line)
		}
		sort.Strings(out)
		return out
	}

	require.NoError(t, l.Lint(context.Background()))
	first := snapshot()
	require.NoError(t, l.Lint(context.Background()))
	second := snapshot()
	assert.Equal(t, first, second)
}

func TestLintObserverRunsBeforeValidations(t *testing.T) {
	ws := newMemWorkspace(map[string]string{manifestPath: `{"templateType": "app"}`})
	doc, err := ws.Open(context.Background(), manifestPath)
	require.NoError(t, err)
	l := New(ws, doc)

	called := 0
	l.OnParsedManifest(func(_ context.Context, manifest Document, tree *jsontree.Node, inst *TemplateLinter) error {
		called++
		assert.Same(t, doc, manifest)
		require.NotNil(t, tree)
		assert.Equal(t, 0, inst.Diagnostics().Len(), "observers run before built-in validations")
		return nil
	})
	require.NoError(t, l.Lint(context.Background()))
	assert.Equal(t, 1, called)
}

func TestLintObserverErrorAbortsPass(t *testing.T) {
	ws := newMemWorkspace(map[string]string{manifestPath: `{"templateType": "app"}`})
	doc, err := ws.Open(context.Background(), manifestPath)
	require.NoError(t, err)
	l := New(ws, doc)

	boom := assert.AnError
	l.OnParsedManifest(func(context.Context, Document, *jsontree.Node, *TemplateLinter) error {
		return boom
	})
	err = l.Lint(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, l.Diagnostics().Len(), "built-in validations did not run")
}

// gateDoc blocks Text until released, to hold a pass open.
type gateDoc struct {
	path    string
	text    string
	entered chan struct{}
	release chan struct{}
}

func (d *gateDoc) Location() string { return d.path }

func (d *gateDoc) Text(context.Context) (string, error) {
	close(d.entered)
	<-d.release
	return d.text, nil
}

func TestLintOverlappingPassRejected(t *testing.T) {
	ws := newMemWorkspace(map[string]string{})
	manifest := &gateDoc{
		path:    manifestPath,
		text:    `{}`,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	l := New(ws, manifest)

	done := make(chan error, 1)
	go func() { done <- l.Lint(context.Background()) }()
	<-manifest.entered

	assert.ErrorIs(t, l.Lint(context.Background()), ErrPassInProgress)

	close(manifest.release)
	require.NoError(t, <-done)
}
