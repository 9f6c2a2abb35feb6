package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/internal/config"
	"github.com/opal-lang/pysyntax/runtime/syntax"
)

// result is the outcome of checking one input.
type result struct {
	path  string
	src   []byte
	diags []diagnostic.Diagnostic
}

func (a *app) check(path string, src []byte) result {
	tree := syntax.Parse(src, a.parseOptions()...)
	a.logTelemetry(path, tree)

	diags := tree.Errors()
	if !a.cfg.ShowWarnings {
		diags = diagnostic.Filter(diags, diagnostic.SyntaxError)
	}
	return result{path: path, src: src, diags: diags}
}

// counts returns the number of syntax errors and other diagnostics.
func counts(results []result) (errs, warnings int) {
	for _, r := range results {
		for _, d := range r.diags {
			if d.Kind == diagnostic.SyntaxError {
				errs++
			} else {
				warnings++
			}
		}
	}
	return errs, warnings
}

// writeText prints one line per diagnostic as path:line:col: kind: message,
// with a suggestion on the following line when there is one. Lines and
// columns are one-based; columns count bytes.
func writeText(w io.Writer, p palette, r result) {
	idx := text.NewLineIndex(r.src)
	for _, d := range r.diags {
		pos := idx.Position(d.Range.Start)
		loc := fmt.Sprintf("%s:%d:%d:", r.path, pos.Line+1, pos.Column+1)
		_, _ = fmt.Fprintf(w, "%s %s %s\n", p.path.Sprint(loc), p.kind(d.Kind).Sprint(d.Kind.String()+":"), d.Message)
		if d.Suggestion != "" {
			_, _ = fmt.Fprintf(w, "    %s\n", p.hint.Sprint(d.Suggestion))
		}
	}
}

type jsonDiagnostic struct {
	Path       string `json:"path"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	EndLine    int    `json:"endLine"`
	EndColumn  int    `json:"endColumn"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Context    string `json:"context,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func toJSON(results []result) []jsonDiagnostic {
	out := []jsonDiagnostic{}
	for _, r := range results {
		idx := text.NewLineIndex(r.src)
		for _, d := range r.diags {
			start := idx.Position(d.Range.Start)
			end := idx.Position(d.Range.End())
			out = append(out, jsonDiagnostic{
				Path:       r.path,
				Line:       start.Line + 1,
				Column:     start.Column + 1,
				EndLine:    end.Line + 1,
				EndColumn:  end.Column + 1,
				Kind:       d.Kind.String(),
				Message:    d.Message,
				Context:    d.Context,
				Suggestion: d.Suggestion,
			})
		}
	}
	return out
}

func (a *app) report(results []result, format config.Format) error {
	if format == config.FormatJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(toJSON(results)); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}

	p := newPalette(a.useColor(a.stdout))
	for _, r := range results {
		writeText(a.stdout, p, r)
	}
	return nil
}
