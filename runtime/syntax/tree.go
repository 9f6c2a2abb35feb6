package syntax

import (
	"time"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/runtime/lexer"
	"github.com/opal-lang/pysyntax/runtime/parser"
)

// Tree is the result of parsing one source file.
type Tree struct {
	src       []byte
	green     *GreenNode
	tokens    []lexer.Token
	diags     []diagnostic.Diagnostic
	telemetry *Telemetry
}

// Parse lexes and parses src as a module. It always returns a tree covering
// every byte of src; problems are reported through Errors.
func Parse(src []byte, opts ...Option) *Tree {
	cfg := newConfig(opts)

	began := time.Now()
	tokens, lexDiags := lexer.Tokenize(src, cfg.lexerOptions()...)
	lexTime := time.Since(began)

	res := parser.Parse(src, tokens, cfg.parserOptions()...)

	began = time.Now()
	green := Build(src, res, cfg.cache)
	buildTime := time.Since(began)

	diags := make([]diagnostic.Diagnostic, 0, len(lexDiags)+len(res.Diagnostics))
	diags = append(diags, lexDiags...)
	diags = append(diags, res.Diagnostics...)

	fields := 0
	for _, tok := range res.Tokens {
		if tok.Kind != lexer.FString {
			continue
		}
		found, d := interpolations(tok.Text(src), tok.Range.Start, cfg)
		fields += len(found)
		diags = append(diags, d...)
	}
	diagnostic.Sort(diags)

	t := &Tree{src: src, green: green, tokens: res.Tokens, diags: diags}
	if res.Telemetry != nil {
		t.telemetry = &Telemetry{
			Telemetry:      *res.Telemetry,
			LexTime:        lexTime,
			BuildTime:      buildTime,
			Interpolations: fields,
		}
	}
	return t
}

// Root returns the positioned Module node.
func (t *Tree) Root() *Node { return NewRoot(t.green) }

// Green returns the green root, which can be shared across trees.
func (t *Tree) Green() *GreenNode { return t.green }

// Source returns the parsed text.
func (t *Tree) Source() []byte { return t.src }

// Tokens returns the token stream the tree was built from, EOF included,
// with '@' tokens already reclassified.
func (t *Tree) Tokens() []lexer.Token { return t.tokens }

// Errors returns every diagnostic ordered by position: lexical and syntax
// errors, version warnings and warnings.
func (t *Tree) Errors() []diagnostic.Diagnostic { return t.diags }

// HasSyntaxErrors reports whether any diagnostic is a SyntaxError.
// Version warnings and warnings do not count.
func (t *Tree) HasSyntaxErrors() bool { return diagnostic.HasErrors(t.diags) }

// Telemetry returns parse metrics, or nil unless WithTelemetry was given.
func (t *Tree) Telemetry() *Telemetry { return t.telemetry }
