package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"templint/internal/jsontree"
	"templint/internal/lint"
)

type renderer func(w io.Writer, results []packageResult) error

// position is a 1-based line/column pair resolved from a byte offset.
type position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// resolvePosition maps a node's starting offset into the document. The
// zero position means the finding covers the whole file.
func resolvePosition(doc lint.Document, node *jsontree.Node) position {
	if doc == nil || node == nil {
		return position{}
	}
	text, err := doc.Text(context.Background())
	if err != nil || node.Offset > len(text) {
		return position{}
	}
	line, col := 1, 1
	for _, r := range text[:node.Offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return position{Line: line, Column: col}
}

// jsonDiagnostic is the machine-readable projection of one finding.
type jsonDiagnostic struct {
	File     string         `json:"file"`
	Line     int            `json:"line,omitempty"`
	Column   int            `json:"column,omitempty"`
	Severity string         `json:"severity"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Args     map[string]any `json:"args,omitempty"`
	Related  []jsonRelated  `json:"related,omitempty"`
}

type jsonRelated struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

type jsonPackage struct {
	Manifest    string           `json:"manifest"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
	Error       string           `json:"error,omitempty"`
}

// renderJSON writes one JSON document covering every linted package.
func renderJSON(w io.Writer, results []packageResult) error {
	packages := make([]jsonPackage, 0, len(results))
	for _, res := range results {
		pkg := jsonPackage{Manifest: res.Manifest, Diagnostics: []jsonDiagnostic{}}
		if res.Err != nil {
			pkg.Error = res.Err.Error()
		}
		for _, d := range res.Diagnostics {
			pos := resolvePosition(d.Doc, d.Node)
			jd := jsonDiagnostic{
				File:     d.Doc.Location(),
				Line:     pos.Line,
				Column:   pos.Column,
				Severity: d.Severity.String(),
				Code:     string(d.Code),
				Message:  d.Message,
				Args:     d.Args,
			}
			for _, rel := range d.Related {
				rpos := resolvePosition(rel.Doc, rel.Node)
				jd.Related = append(jd.Related, jsonRelated{
					File:    rel.Doc.Location(),
					Line:    rpos.Line,
					Column:  rpos.Column,
					Message: rel.Message,
				})
			}
			pkg.Diagnostics = append(pkg.Diagnostics, jd)
		}
		packages = append(packages, pkg)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Packages []jsonPackage `json:"packages"`
	}{packages})
}

// newPrettyRenderer builds the human-readable renderer, honoring the
// global color flag.
func newPrettyRenderer(cmd *cobra.Command) renderer {
	switch mode, _ := cmd.Root().PersistentFlags().GetString("color"); mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}

	severityColor := map[lint.Severity]*color.Color{
		lint.SeverityError:       color.New(color.FgRed, color.Bold),
		lint.SeverityWarning:     color.New(color.FgYellow),
		lint.SeverityInformation: color.New(color.FgCyan),
		lint.SeverityHint:        color.New(color.FgHiBlack),
	}
	codeColor := color.New(color.Faint)

	return func(w io.Writer, results []packageResult) error {
		total := 0
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(w, "%s: %v\n", res.Manifest, res.Err)
				continue
			}
			for _, d := range res.Diagnostics {
				total++
				fmt.Fprintf(w, "%s: %s %s %s\n",
					location(d.Doc, d.Node),
					severityColor[d.Severity].Sprint(d.Severity.String()),
					codeColor.Sprintf("[%s]", d.Code),
					d.Message)
				for _, rel := range d.Related {
					fmt.Fprintf(w, "    %s: %s\n", location(rel.Doc, rel.Node), rel.Message)
				}
			}
		}
		if total == 0 {
			fmt.Fprintf(w, "%d package(s) clean\n", len(results))
		} else {
			fmt.Fprintf(w, "%d finding(s) in %d package(s)\n", total, len(results))
		}
		return nil
	}
}

func location(doc lint.Document, node *jsontree.Node) string {
	pos := resolvePosition(doc, node)
	if pos.Line == 0 {
		return doc.Location()
	}
	return fmt.Sprintf("%s:%d:%d", doc.Location(), pos.Line, pos.Column)
}

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List every diagnostic code",
	Run: func(cmd *cobra.Command, _ []string) {
		var b strings.Builder
		for _, code := range lint.AllCodes {
			b.WriteString(string(code))
			b.WriteByte('\n')
		}
		fmt.Fprint(cmd.OutOrStdout(), b.String())
	},
}
