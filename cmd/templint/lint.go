package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"templint/internal/config"
	"templint/internal/fswork"
	"templint/internal/lint"
	"templint/internal/schemaval"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] <path>",
	Short: "Lint template packages under a directory or a single manifest",
	Long: `Lint a template package. The argument is either a template-info.json
manifest, or a directory that is searched for manifests with the
discovery pattern. The exit status is 1 when any error-severity
diagnostic survives the configuration's filters.`,
	Args:         cobra.ExactArgs(1),
	RunE:         runLint,
	SilenceUsage: true,
}

func init() {
	lintCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	lintCmd.Flags().String("config", "", "path to templint.toml (default: <path>/templint.toml)")
	lintCmd.Flags().String("pattern", "**/template-info.json", "manifest discovery glob for directory arguments")
	lintCmd.Flags().Bool("no-schema", false, "skip JSON Schema validation")
	lintCmd.Flags().Int("jobs", 0, "max packages linted in parallel (0=auto)")
}

// packageResult is the outcome of linting one package.
type packageResult struct {
	Manifest    string
	Diagnostics []lint.Diagnostic
	Err         error
}

func runLint(cmd *cobra.Command, args []string) error {
	root := args[0]
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format %q (want pretty or json)", format)
	}
	pattern, _ := cmd.Flags().GetString("pattern")
	noSchema, _ := cmd.Flags().GetBool("no-schema")
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return err
	}

	manifests, err := discoverManifests(root, pattern)
	if err != nil {
		return err
	}
	if len(manifests) == 0 {
		return fmt.Errorf("no template manifests found under %s", root)
	}
	slog.Debug("discovered template manifests", "count", len(manifests))

	var validator *schemaval.Validator
	if cfg.SchemaEnabled() && !noSchema {
		validator, err = schemaval.New()
		if err != nil {
			return err
		}
	}

	results := lintAll(cmd.Context(), manifests, validator, cfg, jobs)

	var render renderer
	switch format {
	case "json":
		render = renderJSON
	default:
		render = newPrettyRenderer(cmd)
	}
	if err := render(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	errCount := 0
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
		for _, d := range res.Diagnostics {
			if d.Severity == lint.SeverityError {
				errCount++
			}
		}
	}
	if errCount > 0 {
		return fmt.Errorf("found %d error(s)", errCount)
	}
	return nil
}

func loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.Load(path)
	}
	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}
	return config.Load(filepath.Join(dir, "templint.toml"))
}

// discoverManifests resolves the argument to the set of manifests to
// lint: the file itself, or every pattern match under the directory.
func discoverManifests(root, pattern string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// lintAll runs every package through its own linter, a bounded number
// in parallel. Results keep the manifest discovery order.
func lintAll(ctx context.Context, manifests []string, validator *schemaval.Validator, cfg *config.Config, jobs int) []packageResult {
	ws := fswork.New()
	results := make([]packageResult, len(manifests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, manifest := range manifests {
		i, manifest := i, manifest
		g.Go(func() error {
			results[i] = lintOne(gctx, ws, manifest, validator, cfg)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func lintOne(ctx context.Context, ws *fswork.DirWorkspace, manifest string, validator *schemaval.Validator, cfg *config.Config) packageResult {
	res := packageResult{Manifest: manifest}

	doc, err := ws.Open(ctx, manifest)
	if err != nil {
		res.Err = err
		return res
	}
	l := lint.New(ws, doc)
	if validator != nil {
		validator.Register(l)
	}
	if err := l.Lint(ctx); err != nil {
		res.Err = err
		return res
	}

	res.Diagnostics = cfg.Apply(sortDiagnostics(l.Diagnostics()))
	return res
}

// sortDiagnostics flattens a set into reporting order: documents as
// first seen, within a document by source offset, ties by insertion.
func sortDiagnostics(set *lint.DiagnosticSet) []lint.Diagnostic {
	var out []lint.Diagnostic
	for _, doc := range set.Docs() {
		diags := append([]lint.Diagnostic(nil), set.For(doc)...)
		sort.SliceStable(diags, func(i, j int) bool {
			return diagOffset(diags[i]) < diagOffset(diags[j])
		})
		out = append(out, diags...)
	}
	return out
}

func diagOffset(d lint.Diagnostic) int {
	if d.Node == nil {
		return 0
	}
	return d.Node.Offset
}
