package syntax

import (
	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/runtime/lexer"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

// Interpolation is one replacement field of an f-string with its expression
// parsed by the main grammar.
type Interpolation struct {
	// Range spans the field from '{' to '}' inclusive.
	Range text.Range
	// Expr is an Interpolation node positioned at the expression text. It is
	// nil for an empty field.
	Expr *Node
	// Conversion is "r", "s", "a" or empty.
	Conversion string
	// FormatSpec is the text after ':', verbatim.
	FormatSpec string
}

// Interpolations splits an FString token into replacement fields and parses
// each expression. Diagnostics are absolute in the enclosing source.
func Interpolations(tok *Token, opts ...Option) ([]Interpolation, []diagnostic.Diagnostic) {
	if tok == nil || tok.Kind() != lexer.FString {
		return nil, nil
	}
	return interpolations([]byte(tok.Text()), tok.Range().Start, newConfig(opts))
}

func interpolations(token []byte, base int, cfg config) ([]Interpolation, []diagnostic.Diagnostic) {
	segments, diags := lexer.SplitInterpolation(token, base)

	var out []Interpolation
	var cur *Interpolation
	for _, seg := range segments {
		switch seg.Kind {
		case lexer.SegmentExprStart:
			out = append(out, Interpolation{Range: seg.Range})
			cur = &out[len(out)-1]

		case lexer.SegmentText:
			if cur == nil || cur.Expr != nil {
				continue
			}
			expr, d := parseField([]byte(seg.Text), seg.Range.Start, cfg)
			cur.Expr = expr
			cur.Range = cur.Range.Cover(seg.Range)
			diags = append(diags, d...)

		case lexer.SegmentConversion:
			if cur != nil {
				cur.Conversion = seg.Text
				cur.Range = cur.Range.Cover(seg.Range)
			}

		case lexer.SegmentFormatSpec:
			if cur != nil {
				cur.FormatSpec = seg.Text
				cur.Range = cur.Range.Cover(seg.Range)
			}

		case lexer.SegmentExprEnd:
			if cur != nil {
				cur.Range = cur.Range.Cover(seg.Range)
			}
			cur = nil
		}
	}
	return out, diags
}

// parseField parses the source of one replacement expression found at
// offset base.
func parseField(src []byte, base int, cfg config) (*Node, []diagnostic.Diagnostic) {
	tokens, lexDiags := lexer.Tokenize(src, cfg.lexerOptions(lexer.WithImplicitBracket())...)
	res := parser.ParseExpression(src, tokens, cfg.parserOptions()...)
	green := Build(src, res, cfg.cache)

	diags := make([]diagnostic.Diagnostic, 0, len(lexDiags)+len(res.Diagnostics))
	for _, d := range lexDiags {
		diags = append(diags, d.Shift(base))
	}
	for _, d := range res.Diagnostics {
		diags = append(diags, d.Shift(base))
	}
	// Nested f-strings are strictly shorter, so this terminates.
	for _, tok := range res.Tokens {
		if tok.Kind == lexer.FString {
			_, d := interpolations(tok.Text(src), base+tok.Range.Start, cfg)
			diags = append(diags, d...)
		}
	}
	return &Node{green: green, offset: base}, diags
}
