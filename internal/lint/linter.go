// Package lint implements the cross-file semantic linter for analytics
// template packages.
//
// A template package is a root manifest (template-info.json) plus the
// definition files it references by relative path: variables, UI pages,
// layout, readiness, auto-install configuration, rules and folder
// metadata. The linter loads and caches those files for one pass and
// runs a battery of per-file and cross-file validations that a plain
// JSON-schema check cannot express:
//   - dangling or malformed relative-path references
//   - duplicate identifiers within and across files
//   - unknown variable references, with fuzzy-match suggestions
//   - type-incompatible variable usages in UI pages and layouts
//   - malformed embedded regular expressions in variable excludes
//   - structural rules selected by the declared template type
//
// The engine is abstract over I/O: a Workspace binding supplies
// locations, stat and open, which keeps the core testable against an
// in-memory tree and reusable from both the CLI and other hosts.
package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"templint/internal/jsontree"
)

// ErrPassInProgress is returned by Lint when a pass is already running
// on the same instance. The per-pass cache and diagnostics map are
// exclusively owned by one pass; overlapping passes would corrupt them,
// so the engine forbids them by construction rather than by convention.
var ErrPassInProgress = errors.New("lint: pass already in progress on this instance")

// ObserverFunc is invoked once per pass, after the manifest has been
// parsed and before the built-in validations run. It is the integration
// seam for collaborators (schema validation, most notably) that want to
// work from the same parsed tree without re-parsing. A non-nil error
// aborts the pass and propagates out of Lint.
type ObserverFunc func(ctx context.Context, manifest Document, tree *jsontree.Node, l *TemplateLinter) error

// TemplateLinter runs full lint passes over one template package.
// Create one with New, optionally register observers, then call Lint.
// Lint calls on one instance must be serialized by the caller; an
// overlapping call fails fast with ErrPassInProgress.
type TemplateLinter struct {
	ws        Workspace
	manifest  Document
	observers []ObserverFunc

	inFlight atomic.Bool

	// Per-pass state below; reset unconditionally at the start of each
	// pass. mu guards diags and cache against the concurrently running
	// validation tasks of a single pass.
	mu       sync.Mutex
	diags    *DiagnosticSet
	cache    map[string]*relPathEntry
	dir      string
	tree     *jsontree.Node
	tmplType string
	typeNode *jsontree.Node
	varsOnce *sync.Once
	vars     *variableIndex
}

// New returns a linter for the given manifest document, bound to the
// workspace that referenced files will be resolved through.
func New(ws Workspace, manifest Document) *TemplateLinter {
	l := &TemplateLinter{ws: ws, manifest: manifest}
	l.resetState()
	return l
}

// Manifest returns the manifest document the linter was created for.
func (l *TemplateLinter) Manifest() Document {
	return l.manifest
}

// OnParsedManifest registers an observer. Observers run in registration
// order at a fixed point in the pass, each awaited before the next.
func (l *TemplateLinter) OnParsedManifest(fn ObserverFunc) {
	l.observers = append(l.observers, fn)
}

// Diagnostics returns the diagnostics of the most recent pass, grouped
// by owning document.
func (l *TemplateLinter) Diagnostics() *DiagnosticSet {
	return l.diags
}

// Reset discards all per-pass state: diagnostics, the relative-path
// cache and the parsed manifest tree. Lint calls it implicitly.
func (l *TemplateLinter) Reset() {
	l.resetState()
}

func (l *TemplateLinter) resetState() {
	l.diags = NewDiagnosticSet()
	l.cache = make(map[string]*relPathEntry)
	l.tree = nil
	l.tmplType = ""
	l.typeNode = nil
	l.varsOnce = new(sync.Once)
	l.vars = nil
}

// Lint performs one full pass: parse the manifest, notify observers,
// then run every validation. Independent I/O-bound validations run as
// concurrent tasks joined before Lint returns; in-memory scans run
// synchronously. The only errors that propagate are a failure to read
// the manifest itself, and errors returned by observers; everything a
// validation hits internally degrades to diagnostics.
func (l *TemplateLinter) Lint(ctx context.Context) error {
	if !l.inFlight.CompareAndSwap(false, true) {
		return ErrPassInProgress
	}
	defer l.inFlight.Store(false)

	l.resetState()

	text, err := l.manifest.Text(ctx)
	if err != nil {
		return fmt.Errorf("lint: read manifest %s: %w", l.manifest.Location(), err)
	}
	l.dir = l.ws.ParentOf(l.manifest.Location())
	l.tree = jsontree.Parse(text)
	if l.tree == nil {
		// Fatal for the pass: nothing else can be validated.
		l.add(Diagnostic{
			Doc:      l.manifest,
			Message:  "File does not contain template json",
			Code:     CodeTmplEmptyFile,
			Severity: SeverityError,
		})
		return nil
	}
	l.resolveTemplateType()

	for _, obs := range l.observers {
		if err := obs(ctx, l.manifest, l.tree, l); err != nil {
			return err
		}
	}

	// In-memory scans over the already-parsed manifest: no suspension
	// points, so they run inline.
	l.lintDuplicateRelPaths()
	l.lintAssetNames()
	l.lintAssetLabels()

	// Everything below may need to stat or open referenced files.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.lintRelPaths(gctx) })
	g.Go(func() error { return l.lintTemplateTypeRules(gctx) })
	g.Go(func() error { return l.lintVariableDefinitions(gctx) })
	g.Go(func() error { return l.lintUIPages(gctx) })
	g.Go(func() error { return l.lintLayout(gctx) })
	g.Go(func() error { return l.lintReadiness(gctx) })
	g.Go(func() error { return l.lintAutoInstall(gctx) })
	g.Go(func() error { return l.lintRulesFiles(gctx) })
	return g.Wait()
}

// add records a diagnostic. Safe to call from concurrent validations
// within one pass.
func (l *TemplateLinter) add(d Diagnostic) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.diags.Add(d)
}

// Report records a diagnostic produced by an observer. It participates
// in the same pass as the built-in validations.
func (l *TemplateLinter) Report(d Diagnostic) {
	l.add(d)
}

// resolveTemplateType reads the templateType field, defaulting to "app"
// when absent or not a string. Matching is case-insensitive throughout.
func (l *TemplateLinter) resolveTemplateType() {
	l.typeNode = jsontree.MatchFirst(l.tree, jsontree.P("templateType"), nil)
	if s, ok := l.typeNode.StringValue(); ok {
		l.tmplType = strings.ToLower(s)
	} else {
		l.tmplType = "app"
	}
}

// relPathEntry is the per-pass memo for one relative path declared in
// the manifest. Keyed by the relative-path string as written, so two
// fields naming the same path share one entry, one load and one set of
// downstream diagnostics. doc and tree stay nil when the file cannot be
// opened or read; dependent validations then skip deterministically,
// and surfacing the missing file is the relative-path checker's job.
type relPathEntry struct {
	rel      string
	once     sync.Once
	location string
	doc      Document
	tree     *jsontree.Node
}

func (e *relPathEntry) load(ctx context.Context, ws Workspace, dir string) {
	e.location = ws.JoinRelative(dir, e.rel)
	doc, err := ws.Open(ctx, e.location)
	if err != nil {
		slog.Debug("templint: cannot open referenced file", "path", e.location, "error", err)
		return
	}
	text, err := doc.Text(ctx)
	if err != nil {
		slog.Debug("templint: cannot read referenced file", "path", e.location, "error", err)
		return
	}
	e.doc = doc
	e.tree = jsontree.Parse(text)
}

// loadRelPath resolves the string value of node as a relative path and
// returns its (memoized) cache entry. Returns nil when the node is not
// a string or not a well-formed relative path.
func (l *TemplateLinter) loadRelPath(ctx context.Context, node *jsontree.Node) *relPathEntry {
	s, ok := node.StringValue()
	if !ok {
		return nil
	}
	rel := strings.TrimSpace(s)
	if !IsValidRelativePath(rel) {
		return nil
	}

	l.mu.Lock()
	entry, seen := l.cache[rel]
	if !seen {
		entry = &relPathEntry{rel: rel}
		l.cache[rel] = entry
	}
	l.mu.Unlock()

	entry.once.Do(func() { entry.load(ctx, l.ws, l.dir) })
	return entry
}

// loadRelPathPattern is loadRelPath for the first string node matching
// pattern in the manifest.
func (l *TemplateLinter) loadRelPathPattern(ctx context.Context, pattern jsontree.Pattern) *relPathEntry {
	node := jsontree.MatchFirst(l.tree, pattern, onlyStrings)
	if node == nil {
		return nil
	}
	return l.loadRelPath(ctx, node)
}

// ResolveRelated resolves and parses the file referenced by the first
// string value matching pattern in the manifest, sharing the pass's
// cache. For collaborators registered through OnParsedManifest; both
// results are nil when the field is absent or the file unusable.
func (l *TemplateLinter) ResolveRelated(ctx context.Context, pattern jsontree.Pattern) (Document, *jsontree.Node) {
	entry := l.loadRelPathPattern(ctx, pattern)
	if entry == nil {
		return nil, nil
	}
	return entry.doc, entry.tree
}

// ResolvedFile is one successfully resolved referenced file.
type ResolvedFile struct {
	Doc  Document
	Tree *jsontree.Node
}

// ResolveRelatedAll is ResolveRelated over every string value matching
// pattern, skipping files that could not be resolved.
func (l *TemplateLinter) ResolveRelatedAll(ctx context.Context, pattern jsontree.Pattern) []ResolvedFile {
	var out []ResolvedFile
	for _, node := range jsontree.MatchAll(l.tree, pattern, onlyStrings) {
		entry := l.loadRelPath(ctx, node)
		if entry == nil || entry.doc == nil || entry.tree == nil {
			continue
		}
		out = append(out, ResolvedFile{Doc: entry.doc, Tree: entry.tree})
	}
	return out
}

// onlyStrings filters pattern matches down to string nodes.
func onlyStrings(n *jsontree.Node) jsontree.VisitResult {
	if n.Kind == jsontree.KindString {
		return jsontree.VisitKeep
	}
	return jsontree.VisitSkip
}
