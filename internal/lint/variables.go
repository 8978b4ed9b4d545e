package lint

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"templint/internal/fuzzy"
	"templint/internal/jsontree"
)

// VarType is the reduced type descriptor of a declared variable. The
// ArrayType wrapper is folded away by descending into itemsType, so a
// "list of numbers" reduces to {NumberType, true}.
type VarType struct {
	Base    string
	IsArray bool
}

// reduceVarType derives the descriptor from a variable's definition
// node. Variables without an explicit type default to StringType.
func reduceVarType(def *jsontree.Node) VarType {
	vt := VarType{Base: "StringType"}
	t := def.Property("variableType")
	for t != nil {
		base, _ := t.Property("type").StringValue()
		if base == "ArrayType" {
			vt.IsArray = true
			t = t.Property("itemsType")
			continue
		}
		if base != "" {
			vt.Base = base
		}
		break
	}
	return vt
}

// variableIndex is the per-pass view of the variables-definition file,
// shared by every cross-check that resolves variable names. Built once
// per pass and never mutated afterwards, except for the lazily-created
// suggester which is guarded by mu.
type variableIndex struct {
	entry  *relPathEntry
	loaded bool

	names      []string // declaration order
	types      map[string]VarType
	keyNodes   map[string]*jsontree.Node
	valueNodes map[string]*jsontree.Node

	mu        sync.Mutex
	suggester fuzzy.Suggester
}

func (idx *variableIndex) has(name string) bool {
	_, ok := idx.types[name]
	return ok
}

// suggest returns the best fuzzy match for a misspelled name, or ""
// when nothing is close enough. Only valid, well-formed names are
// candidates; suggesting a broken name would trade one problem for
// another.
func (idx *variableIndex) suggest(name string) string {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.suggester == nil {
		idx.suggester = fuzzy.Build(func() []string {
			var valid []string
			for _, n := range idx.names {
				if IsValidVariableName(n) {
					valid = append(valid, n)
				}
			}
			return valid
		}, 1)
	}
	if matches := idx.suggester(name); len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// variables returns the pass's variable index, building it on first
// use. Safe to call from concurrent validations.
func (l *TemplateLinter) variables(ctx context.Context) *variableIndex {
	l.varsOnce.Do(func() {
		l.vars = l.buildVariableIndex(ctx)
	})
	return l.vars
}

func (l *TemplateLinter) buildVariableIndex(ctx context.Context) *variableIndex {
	idx := &variableIndex{
		types:      make(map[string]VarType),
		keyNodes:   make(map[string]*jsontree.Node),
		valueNodes: make(map[string]*jsontree.Node),
	}
	idx.entry = l.loadRelPathPattern(ctx, jsontree.P("variableDefinition"))
	if idx.entry == nil || idx.entry.tree == nil || idx.entry.tree.Kind != jsontree.KindObject {
		return idx
	}
	idx.loaded = true

	for _, prop := range idx.entry.tree.Children {
		key, value, ok := prop.PropertyParts()
		if !ok {
			continue
		}
		name := prop.PropertyName()
		if _, dup := idx.types[name]; dup {
			continue // first declaration wins, as everywhere else
		}
		idx.names = append(idx.names, name)
		idx.types[name] = reduceVarType(value)
		idx.keyNodes[name] = key
		idx.valueNodes[name] = value
	}
	return idx
}

// reportUnknownVariable emits the unknown-variable diagnostic for one
// reference, attaching the best fuzzy match (when any) both in the
// message and as a structured "match" argument for quick-fix tooling.
func (l *TemplateLinter) reportUnknownVariable(doc Document, node *jsontree.Node, name string, code Code, idx *variableIndex) {
	msg := fmt.Sprintf("Unknown variable %q", name)
	var args map[string]any
	if match := idx.suggest(name); match != "" {
		msg = fmt.Sprintf("Unknown variable %q, did you mean %q?", name, match)
		args = map[string]any{"match": match}
	}
	l.add(Diagnostic{
		Doc:      doc,
		Message:  msg,
		Code:     code,
		Node:     node,
		Severity: SeverityWarning,
		Args:     args,
	})
}

// lintVariableDefinitions runs the variables file's internal checks:
// well-formed variable names and valid regex excludes.
func (l *TemplateLinter) lintVariableDefinitions(ctx context.Context) error {
	idx := l.variables(ctx)
	if !idx.loaded {
		return nil
	}

	for _, name := range idx.names {
		if !IsValidVariableName(name) {
			l.add(Diagnostic{
				Doc:      idx.entry.doc,
				Message:  fmt.Sprintf("%q is not a valid variable name: names must start with a letter or underscore followed by at least one letter, digit, or underscore", name),
				Code:     CodeVarsInvalidName,
				Node:     idx.keyNodes[name],
				Severity: SeverityWarning,
			})
		}
		l.lintVariableExcludes(idx, name)
	}
	return nil
}

// lintVariableExcludes validates the excludes array of one variable: a
// string starting with "/" is treated as a /pattern/flags regular
// expression and must be well-formed; only one regex-style exclude is
// honored per variable.
func (l *TemplateLinter) lintVariableExcludes(idx *variableIndex, name string) {
	excludes := idx.valueNodes[name].Property("excludes")
	if excludes == nil || excludes.Kind != jsontree.KindArray {
		return
	}

	var regexNodes []*jsontree.Node
	for _, elem := range excludes.Children {
		s, ok := elem.StringValue()
		if !ok || !strings.HasPrefix(s, "/") {
			continue
		}
		regexNodes = append(regexNodes, elem)
		l.lintRegexExclude(idx.entry.doc, elem, s)
	}

	if len(regexNodes) > 1 {
		related := make([]RelatedInfo, 0, len(regexNodes))
		for _, node := range regexNodes {
			related = append(related, RelatedInfo{Doc: idx.entry.doc, Node: node, Message: "regular expression exclude"})
		}
		l.add(Diagnostic{
			Doc:      idx.entry.doc,
			Message:  "Only one regular expression exclude is supported; only the first will be used",
			Code:     CodeVarsMultipleRegexes,
			Node:     excludes,
			Severity: SeverityWarning,
			Related:  related,
		})
	}
}

// validRegexFlags is the accepted /pattern/flags option set, each
// usable at most once.
const validRegexFlags = "gimsuy"

// lintRegexExclude validates one /pattern/flags exclude string.
func (l *TemplateLinter) lintRegexExclude(doc Document, node *jsontree.Node, s string) {
	closing := strings.LastIndex(s, "/")
	if closing == 0 {
		l.add(Diagnostic{
			Doc:      doc,
			Message:  "Missing closing '/' in regular expression exclude",
			Code:     CodeVarsRegexMissingSlash,
			Node:     node,
			Severity: SeverityWarning,
		})
		return
	}

	pattern := s[1:closing]
	flags := s[closing+1:]

	var badFlags []string
	seen := make(map[rune]bool)
	for _, f := range flags {
		switch {
		case !strings.ContainsRune(validRegexFlags, f):
			badFlags = append(badFlags, fmt.Sprintf("invalid option %q", f))
		case seen[f]:
			badFlags = append(badFlags, fmt.Sprintf("duplicate option %q", f))
		default:
			seen[f] = true
		}
	}
	if len(badFlags) > 0 {
		l.add(Diagnostic{
			Doc:      doc,
			Message:  "Invalid regular expression options: " + strings.Join(badFlags, ", "),
			Code:     CodeVarsInvalidRegexOptions,
			Node:     node,
			Severity: SeverityWarning,
		})
	}

	// Compile with the engine-supported subset of flags folded into the
	// pattern; g, u and y only affect match iteration, not syntax.
	inline := ""
	for _, f := range "ims" {
		if seen[f] {
			inline += string(f)
		}
	}
	expr := pattern
	if inline != "" {
		expr = "(?" + inline + ")" + pattern
	}
	if _, err := regexp.Compile(expr); err != nil {
		// The engine message already names the problem; strip its
		// generic prefix so the diagnostic does not say it twice.
		msg := strings.TrimPrefix(err.Error(), "error parsing regexp: ")
		l.add(Diagnostic{
			Doc:      doc,
			Message:  "Invalid regular expression: " + msg,
			Code:     CodeVarsInvalidRegex,
			Node:     node,
			Severity: SeverityWarning,
		})
	}
}
