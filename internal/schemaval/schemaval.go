// Package schemaval layers JSON Schema validation over a lint pass.
//
// Each template file kind carries an embedded schema. The validator
// registers as a pass observer so it works from the engine's parsed
// trees and file cache instead of re-reading anything, and reports its
// findings into the same diagnostic set as the semantic checks.
package schemaval

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"templint/internal/jsontree"
	"templint/internal/lint"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// relatedKind maps a manifest field to the schema its referenced files
// must satisfy.
type relatedKind struct {
	pattern jsontree.Pattern
	schema  string
}

const manifestSchema = "template-info.schema.json"

var relatedKinds = []relatedKind{
	{jsontree.P("variableDefinition"), "variables.schema.json"},
	{jsontree.P("uiDefinition"), "ui.schema.json"},
	{jsontree.P("layoutDefinition"), "layout.schema.json"},
	{jsontree.P("folderDefinition"), "folder.schema.json"},
	{jsontree.P("autoInstallDefinition"), "auto-install.schema.json"},
	{jsontree.P("readinessDefinition"), "readiness.schema.json"},
	{jsontree.P("ruleDefinition"), "rules.schema.json"},
	{jsontree.P("rules", "*", "file"), "rules.schema.json"},
}

// Validator holds the compiled schemas. One instance is safe for
// concurrent use and can be registered on any number of linters.
type Validator struct {
	schemas map[string]*jsonschema.Schema
	printer *message.Printer
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("schemaval: list embedded schemas: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		data, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("schemaval: read schema %s: %w", entry.Name(), err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("schemaval: decode schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource("urn:templint:"+entry.Name(), doc); err != nil {
			return nil, fmt.Errorf("schemaval: register schema %s: %w", entry.Name(), err)
		}
		names = append(names, entry.Name())
	}

	v := &Validator{
		schemas: make(map[string]*jsonschema.Schema, len(names)),
		printer: message.NewPrinter(language.English),
	}
	for _, name := range names {
		sch, err := compiler.Compile("urn:templint:" + name)
		if err != nil {
			return nil, fmt.Errorf("schemaval: compile schema %s: %w", name, err)
		}
		v.schemas[name] = sch
	}
	return v, nil
}

// Register attaches the validator to a linter's passes.
func (v *Validator) Register(l *lint.TemplateLinter) {
	l.OnParsedManifest(v.observe)
}

func (v *Validator) observe(ctx context.Context, manifest lint.Document, tree *jsontree.Node, l *lint.TemplateLinter) error {
	v.check(l, manifest, tree, manifestSchema)

	// A file referenced under two fields is validated once, against the
	// first kind that named it.
	seen := map[lint.Document]bool{manifest: true}
	for _, kind := range relatedKinds {
		for _, file := range l.ResolveRelatedAll(ctx, kind.pattern) {
			if seen[file.Doc] {
				continue
			}
			seen[file.Doc] = true
			v.check(l, file.Doc, file.Tree, kind.schema)
		}
	}
	return nil
}

// check validates one parsed tree and reports every leaf failure as a
// diagnostic anchored to the offending node.
func (v *Validator) check(l *lint.TemplateLinter, doc lint.Document, tree *jsontree.Node, schemaName string) {
	sch, ok := v.schemas[schemaName]
	if !ok {
		return
	}
	err := sch.Validate(tree.Plain())
	if err == nil {
		return
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		l.Report(lint.Diagnostic{
			Doc:      doc,
			Message:  err.Error(),
			Code:     lint.CodeSchemaValidation,
			Severity: lint.SeverityWarning,
		})
		return
	}
	for _, cause := range leafCauses(ve) {
		l.Report(lint.Diagnostic{
			Doc:      doc,
			Message:  cause.ErrorKind.LocalizedString(v.printer),
			Code:     lint.CodeSchemaValidation,
			Node:     resolveLocation(tree, cause.InstanceLocation),
			Severity: lint.SeverityWarning,
		})
	}
}

// leafCauses flattens a validation error to its leaves; intermediate
// causes just restate which branch failed.
func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, leafCauses(cause)...)
	}
	return out
}

// resolveLocation maps an instance location (JSON pointer tokens) to
// the deepest node the tree can account for. A token that cannot be
// followed stops the walk; the diagnostic then anchors to the innermost
// resolved ancestor.
func resolveLocation(tree *jsontree.Node, tokens []string) *jsontree.Node {
	node := tree
	for _, token := range tokens {
		if node == nil {
			return nil
		}
		switch node.Kind {
		case jsontree.KindObject:
			next := node.Property(token)
			if next == nil {
				return node
			}
			node = next
		case jsontree.KindArray:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(node.Children) {
				return node
			}
			node = node.Children[i]
		default:
			return node
		}
	}
	return node
}
