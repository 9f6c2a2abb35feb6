// Package parser turns a token stream into a flat list of events that
// describe a concrete syntax tree. The parser never fails: malformed input
// produces Error nodes and diagnostics, and every token ends up in exactly
// one place in the event stream.
package parser

import (
	"context"
	"log/slog"
	"time"

	"github.com/opal-lang/pysyntax/core/diagnostic"
	"github.com/opal-lang/pysyntax/core/invariant"
	"github.com/opal-lang/pysyntax/core/text"
	"github.com/opal-lang/pysyntax/core/version"
	"github.com/opal-lang/pysyntax/runtime/lexer"
)

// Result is the output of a parse.
type Result struct {
	// Tokens is the parser's copy of the input tokens. Ambiguous '@' tokens
	// are reclassified as DecoratorAt or MatMul.
	Tokens      []lexer.Token
	Events      []Event
	Diagnostics []diagnostic.Diagnostic
	Telemetry   *Telemetry // nil unless WithTelemetry
}

// Parse parses a module. tokens must come from lexing src and end with EOF.
func Parse(src []byte, tokens []lexer.Token, opts ...Option) *Result {
	p := newParser(src, tokens, opts)
	began := time.Now()
	p.module()
	return p.finish(began)
}

// ParseExpression parses a standalone expression under an Interpolation
// root, as found in an f-string replacement field. tokens should be lexed
// with lexer.WithImplicitBracket.
func ParseExpression(src []byte, tokens []lexer.Token, opts ...Option) *Result {
	p := newParser(src, tokens, opts)
	began := time.Now()
	p.depth = 1
	p.interpolation()
	return p.finish(began)
}

type parser struct {
	src    []byte
	tokens []lexer.Token
	pos    int // always at a significant token
	cfg    config

	events      []Event
	tokenEvents int        // Token and Trivia events emitted so far
	open        []openNode // unfinished markers, innermost last
	diags       []diagnostic.Diagnostic
	lastTok     int  // last significant token consumed, -1 before any
	depth       int  // bracket nesting since the statement started
	flat        bool // recovery: brackets do not change depth
	maxDepth    int

	docstring bool // the next statement may be a docstring
	suspect   int  // token of a lone identifier statement, or -1
}

func newParser(src []byte, tokens []lexer.Token, opts []Option) *parser {
	invariant.Precondition(len(tokens) > 0 && tokens[len(tokens)-1].Kind == lexer.EOF,
		"token stream must end with EOF")

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Heuristic: ~3 events per token (Open, Token, Close for simple nodes)
	eventCap := max(len(tokens)*3, 16)
	p := &parser{
		src:     src,
		tokens:  append([]lexer.Token(nil), tokens...),
		cfg:     cfg,
		events:  make([]Event, 0, eventCap),
		open:    make([]openNode, 0, 32),
		lastTok: -1,
		suspect: -1,
	}
	return p
}

func (p *parser) finish(began time.Time) *Result {
	invariant.Postcondition(len(p.open) == 0, "%d nodes left open", len(p.open))
	invariant.Postcondition(p.at(lexer.EOF), "parse stopped at %s", p.current())

	res := &Result{Tokens: p.tokens, Events: p.events, Diagnostics: p.diags}
	if p.cfg.telemetry {
		res.Telemetry = &Telemetry{
			ParseTime:  time.Since(began),
			TokenCount: len(p.tokens),
			EventCount: len(p.events),
			ErrorCount: len(diagnostic.Filter(p.diags, diagnostic.SyntaxError)),
			MaxDepth:   p.maxDepth,
		}
	}
	return res
}

// module parses the whole file. EOF is never consumed into the tree.
func (p *parser) module() {
	p.trace("module")
	m := p.start(Module)
	p.eatTrivia()
	p.docstring = true
	p.statementList(func() bool { return false })
	p.complete(m, Module)
}

func (p *parser) interpolation() {
	m := p.start(Interpolation)
	p.eatTrivia()
	depth := len(p.open)
	if !p.at(lexer.EOF) {
		ok := true
		if p.at(lexer.KwYield) {
			_, ok = p.yieldExpr()
		} else {
			_, ok = p.starExpressions()
		}
		if ok && p.at(lexer.Equal) {
			// f"{x=}" echoes the expression text.
			p.bump()
		}
	}
	p.closeTo(depth)
	if !p.at(lexer.EOF) {
		e := p.start(Error)
		p.errorHere("unexpected %s in f-string expression", p.current().Kind.Describe())
		for !p.at(lexer.EOF) {
			p.bump()
		}
		p.complete(e, Error)
	}
	p.complete(m, Interpolation)
}

func (p *parser) trace(rule string) {
	if p.cfg.logger == nil || !p.cfg.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	p.cfg.logger.Debug("enter", "rule", rule, "token", p.pos, "kind", p.current().Kind.String())
}

// current returns the token the parser is looking at.
func (p *parser) current() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) at(kind lexer.TokenKind) bool {
	return p.tokens[p.pos].Kind == kind
}

func (p *parser) atAny(kinds ...lexer.TokenKind) bool {
	k := p.tokens[p.pos].Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// nth returns the kind of the n-th significant token ahead; nth(0) is the
// current token.
func (p *parser) nth(n int) lexer.TokenKind {
	i := p.pos
	for {
		if p.tokens[i].Kind == lexer.EOF {
			return lexer.EOF
		}
		if !p.skippable(i) {
			if n == 0 {
				return p.tokens[i].Kind
			}
			n--
		}
		i++
	}
}

// atSoft reports whether the current token is the identifier word.
func (p *parser) atSoft(word string) bool {
	return p.at(lexer.Name) && string(p.current().Text(p.src)) == word
}

func (p *parser) skippable(i int) bool {
	k := p.tokens[i].Kind
	return k.IsTrivia() || (k == lexer.Newline && p.depth > 0)
}

// bump consumes the current token into the innermost open node, followed by
// any trivia after it.
func (p *parser) bump() {
	tok := p.tokens[p.pos]
	invariant.Precondition(tok.Kind != lexer.EOF, "bump at EOF")
	invariant.Precondition(len(p.open) > 0, "bump with no open node")

	p.events = append(p.events, Event{Kind: EventToken, Token: uint32(p.pos)})
	p.tokenEvents++
	switch {
	case p.flat:
	case tok.Kind == lexer.LParen, tok.Kind == lexer.LSquare, tok.Kind == lexer.LBrace:
		p.depth++
	case tok.Kind == lexer.RParen, tok.Kind == lexer.RSquare, tok.Kind == lexer.RBrace:
		if p.depth > 0 {
			p.depth--
		}
	}
	p.lastTok = p.pos
	p.pos++
	p.eatTrivia()
}

// eatTrivia attaches trivia to the innermost open node. Inside brackets
// newlines are trivia too.
func (p *parser) eatTrivia() {
	for p.pos < len(p.tokens)-1 && p.skippable(p.pos) {
		p.events = append(p.events, Event{Kind: EventTrivia, Token: uint32(p.pos)})
		p.tokenEvents++
		p.pos++
	}
}

// reclassify changes the kind of the current token before it is consumed.
func (p *parser) reclassify(kind lexer.TokenKind) {
	p.tokens[p.pos].Kind = kind
}

// eat consumes the current token if it has the given kind.
func (p *parser) eat(kind lexer.TokenKind) bool {
	if p.at(kind) {
		p.bump()
		return true
	}
	return false
}

// expect consumes kind or reports that it is missing. Nothing is consumed on
// failure.
func (p *parser) expect(kind lexer.TokenKind, context string) bool {
	if p.eat(kind) {
		return true
	}
	d := diagnostic.Errorf(p.missingRange(), "expected %s %s", kind.Describe(), context)
	d.Context = context
	p.report(d)
	return false
}

// missingRange anchors "expected X" diagnostics: the current token, or just
// after the previous token when the current one is layout.
func (p *parser) missingRange() text.Range {
	switch p.current().Kind {
	case lexer.Newline, lexer.EOF, lexer.Indent, lexer.Dedent:
		if p.lastTok >= 0 {
			return text.Empty(p.tokens[p.lastTok].Range.End())
		}
		return text.Empty(p.current().Range.Start)
	default:
		return p.current().Range
	}
}

func (p *parser) errorHere(format string, args ...any) {
	p.report(diagnostic.Errorf(p.missingRange(), format, args...))
}

func (p *parser) errorAt(r text.Range, format string, args ...any) {
	p.report(diagnostic.Errorf(r, format, args...))
}

func (p *parser) report(d diagnostic.Diagnostic) {
	if p.cfg.logger != nil {
		p.cfg.logger.Debug("diagnostic", "kind", d.Kind.String(), "message", d.Message, "range", d.Range.String())
	}
	p.diags = append(p.diags, d)
}

// requireFeature warns when the target version predates f.
func (p *parser) requireFeature(f version.Feature, r text.Range) {
	if p.cfg.version.Supports(f) {
		return
	}
	p.report(diagnostic.Diagnostic{
		Kind:    diagnostic.VersionWarning,
		Message: f.Requirement(p.cfg.version),
		Range:   r,
	})
}

// nodeRange is the span of significant tokens in cm.
func (p *parser) nodeRange(cm CompletedMarker) text.Range {
	if cm.lastTok < cm.firstTok {
		return text.Empty(p.tokens[cm.firstTok].Range.Start)
	}
	return text.NewRange(p.tokens[cm.firstTok].Range.Start, p.tokens[cm.lastTok].Range.End())
}

// tokenText returns the source text of token i.
func (p *parser) tokenText(i int) string {
	return string(p.tokens[i].Text(p.src))
}
