package parser

import (
	"github.com/opal-lang/pysyntax/core/invariant"
	"github.com/opal-lang/pysyntax/runtime/lexer"
)

// statementList parses statements until stop reports true or input ends.
func (p *parser) statementList(stop func() bool) {
	for !p.at(lexer.EOF) && !stop() {
		prev := p.pos
		p.recovering(p.statement)

		// INVARIANT: every iteration consumes at least one token
		invariant.Invariant(p.pos > prev || p.at(lexer.EOF),
			"statement loop stuck at token %d (%s)", p.pos, p.current().Kind)
	}
}

// recovering runs one statement rule. If the rule gives up, nodes it left
// open are closed and the rest of the line is skipped into an Error node.
// A rule that gives up without consuming anything costs one token.
func (p *parser) recovering(rule func() bool) {
	depth := len(p.open)
	start := p.pos
	reported := len(p.diags)
	p.depth = 0

	if rule() {
		return
	}
	p.closeTo(depth)
	if p.pos == start {
		p.unexpectedToken(len(p.diags) > reported)
		return
	}
	p.recoverLine()
}

// unexpectedToken consumes the current token into an Error node.
func (p *parser) unexpectedToken(reported bool) {
	if p.at(lexer.EOF) {
		return
	}
	if !reported && !p.at(lexer.Unknown) {
		p.errorAt(p.current().Range, "unexpected %s", p.current().Kind.Describe())
	}
	m := p.start(Error)
	p.flat = true
	p.bump()
	p.flat = false
	p.complete(m, Error)
}

// recoverLine skips to the end of the logical line, stopping early at
// layout tokens and at keywords that only start statements.
func (p *parser) recoverLine() {
	p.depth = 0
	if p.at(lexer.Newline) {
		p.bump()
		return
	}
	if p.atSync() {
		return
	}

	m := p.start(Error)
	p.flat = true
	for !p.atSync() && !p.at(lexer.Newline) {
		p.bump()
	}
	p.eat(lexer.Newline)
	p.flat = false
	p.complete(m, Error)
}

// atSync reports whether recovery should stop before the current token.
func (p *parser) atSync() bool {
	switch p.current().Kind {
	case lexer.EOF, lexer.Indent, lexer.Dedent,
		lexer.KwDef, lexer.KwClass, lexer.KwReturn, lexer.KwPass, lexer.KwBreak,
		lexer.KwContinue, lexer.KwRaise, lexer.KwTry, lexer.KwWhile, lexer.KwWith,
		lexer.KwDel, lexer.KwGlobal, lexer.KwNonlocal, lexer.KwAssert,
		lexer.KwElif, lexer.KwExcept, lexer.KwFinally:
		return true
	}
	return false
}
