package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/runtime/syntax"
)

// Diagnostics converts the problems found in tree to protocol form with
// UTF-16 positions. Version warnings and warnings are dropped unless
// showWarnings is set.
func Diagnostics(tree *syntax.Tree, showWarnings bool) []protocol.Diagnostic {
	idx := text.NewLineIndex(tree.Source())
	source := lsName

	out := []protocol.Diagnostic{}
	for _, d := range tree.Errors() {
		if d.Kind != diagnostic.SyntaxError && !showWarnings {
			continue
		}
		severity := severityOf(d.Kind)
		message := d.Message
		if d.Suggestion != "" {
			message += " (" + d.Suggestion + ")"
		}
		out = append(out, protocol.Diagnostic{
			Range:    toRange(idx, d.Range),
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
	}
	return out
}

func severityOf(k diagnostic.Kind) protocol.DiagnosticSeverity {
	switch k {
	case diagnostic.SyntaxError:
		return protocol.DiagnosticSeverityError
	case diagnostic.VersionWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func toRange(idx *text.LineIndex, r text.Range) protocol.Range {
	return protocol.Range{
		Start: toPosition(idx.UTF16Position(r.Start)),
		End:   toPosition(idx.UTF16Position(r.End())),
	}
}

func toPosition(p text.Position) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(p.Line), Character: protocol.UInteger(p.Column)}
}

// applyChange splices an incremental edit into src. A change without a range
// replaces the whole document.
func applyChange(src []byte, change protocol.TextDocumentContentChangeEvent) []byte {
	if change.Range == nil {
		return []byte(change.Text)
	}
	idx := text.NewLineIndex(src)
	start := idx.UTF16Offset(text.Position{Line: int(change.Range.Start.Line), Column: int(change.Range.Start.Character)})
	end := idx.UTF16Offset(text.Position{Line: int(change.Range.End.Line), Column: int(change.Range.End.Character)})
	end = max(end, start)

	out := make([]byte, 0, len(src)-(end-start)+len(change.Text))
	out = append(out, src[:start]...)
	out = append(out, change.Text...)
	return append(out, src[end:]...)
}
