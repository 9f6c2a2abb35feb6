// Package diagnostic defines the problems reported by the tokenizer and the
// parser. Diagnostics are plain values; producing one never stops a parse.
package diagnostic

import (
	"fmt"
	"sort"

	"github.com/opal-lang/pysyntax/core/text"
)

// Kind classifies a diagnostic.
type Kind uint8

const (
	// SyntaxError is malformed input. A tree with any SyntaxError reports
	// HasSyntaxErrors.
	SyntaxError Kind = iota
	// VersionWarning is valid syntax that the configured target version
	// does not support yet.
	VersionWarning
	// Warning is accepted input that is probably a mistake, such as an
	// unknown escape sequence.
	Warning
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case VersionWarning:
		return "version warning"
	case Warning:
		return "warning"
	default:
		return "diagnostic"
	}
}

// Diagnostic is a message anchored to a byte range of the source.
type Diagnostic struct {
	Kind       Kind
	Message    string
	Range      text.Range
	Context    string // grammar context, e.g. "if statement"
	Suggestion string // optional fix, e.g. "did you mean 'return'?"
}

// Errorf builds a SyntaxError diagnostic.
func Errorf(r text.Range, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: SyntaxError, Message: fmt.Sprintf(format, args...), Range: r}
}

// Warnf builds a Warning diagnostic.
func Warnf(r text.Range, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: Warning, Message: fmt.Sprintf(format, args...), Range: r}
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Shift returns a copy of d moved by delta bytes.
func (d Diagnostic) Shift(delta int) Diagnostic {
	d.Range = d.Range.Shift(delta)
	return d
}

// HasErrors reports whether any diagnostic in ds is a SyntaxError.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Kind == SyntaxError {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics of the given kinds, preserving order.
func Filter(ds []Diagnostic, kinds ...Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds {
		for _, k := range kinds {
			if d.Kind == k {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// Sort orders diagnostics by start offset; ties keep production order.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Range.Start < ds[j].Range.Start
	})
}
